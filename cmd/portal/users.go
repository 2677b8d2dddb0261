package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pdt-ict/portal/internal/platform/db"
	"github.com/pdt-ict/portal/internal/users"
)

var flagUserID = &cli.StringFlag{
	Name:     "id",
	Usage:    "account id (uuid)",
	Required: true,
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending database migrations",
		Action: func(cCtx *cli.Context) error {
			return withUsers(cCtx, func(ctx context.Context, _ *users.Service) error {
				fmt.Fprintln(cCtx.App.Writer, "migrations applied")
				return nil
			})
		},
	}
}

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "administrative account operations",
		Subcommands: []*cli.Command{
			{
				Name:  "delete",
				Usage: "permanently delete an account",
				Flags: []cli.Flag{flagUserID},
				Action: func(cCtx *cli.Context) error {
					id := cCtx.String(flagUserID.Name)
					return withUsers(cCtx, func(ctx context.Context, svc *users.Service) error {
						if err := svc.Delete(ctx, id); err != nil {
							return err
						}
						fmt.Fprintf(cCtx.App.Writer, "deleted %s\n", id)
						return nil
					})
				},
			},
			{
				Name:  "rename",
				Usage: "change an account's first or last name",
				Flags: []cli.Flag{
					flagUserID,
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "last-name"},
				},
				Action: func(cCtx *cli.Context) error {
					id := cCtx.String(flagUserID.Name)
					return withUsers(cCtx, func(ctx context.Context, svc *users.Service) error {
						u, err := svc.Rename(ctx, id, cCtx.String("first-name"), cCtx.String("last-name"))
						if err != nil {
							return err
						}
						fmt.Fprintf(cCtx.App.Writer, "%s %s %s\n", u.ID, u.FirstName, u.LastName)
						return nil
					})
				},
			},
		},
	}
}

// withUsers opens the database, applies migrations and runs fn against the account service.
func withUsers(cCtx *cli.Context, fn func(ctx context.Context, svc *users.Service) error) error {
	cfg, _, err := bootstrap()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := cCtx.Context
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	sqlDB := db.OpenSQL(pool)
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB); err != nil {
		return err
	}
	return fn(ctx, users.NewService(users.NewRepository(sqlDB)))
}
