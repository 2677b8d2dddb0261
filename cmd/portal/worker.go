package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/pdt-ict/portal/internal/app"
	jobmetrics "github.com/pdt-ict/portal/internal/jobs"
	"github.com/pdt-ict/portal/jobs"
)

func workerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "process background jobs such as password reset mail",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "concurrency",
				Value:   5,
				Usage:   "number of tasks processed in parallel",
				EnvVars: []string{"WORKER_CONCURRENCY"},
			},
		},
		Action: func(cCtx *cli.Context) error {
			if app.InTestMode() {
				slog.Default().Info("test mode detected, skipping worker startup")
				return nil
			}
			cfg, logger, err := bootstrap()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			sender := jobs.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
			mailJob := jobs.NewSendEmailJob(sender, logger, jobmetrics.NewMetrics(prometheus.DefaultRegisterer))

			worker, err := jobs.NewWorker(jobs.WorkerConfig{
				RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
				Logger:      logger,
				Concurrency: cCtx.Int("concurrency"),
				Handlers: []jobs.TaskHandler{
					{Type: jobs.TaskTypeSendEmail, Handler: mailJob.Handle},
				},
			})
			if err != nil {
				return fmt.Errorf("init worker: %w", err)
			}
			logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
			if err := worker.Run(cCtx.Context); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("worker run: %w", err)
			}
			return nil
		},
	}
}
