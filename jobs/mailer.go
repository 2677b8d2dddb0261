package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/hibiken/asynq"
)

const resetSubject = "Reset your password"

// Enqueuer is the subset of asynq.Client used to submit tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Mailer turns password reset requests into queued mail tasks.
type Mailer struct {
	client   Enqueuer
	resetURL string
	logger   *slog.Logger
}

// NewMailer constructs a Mailer. resetURL is the page that accepts the token query parameter.
func NewMailer(client Enqueuer, resetURL string, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{client: client, resetURL: resetURL, logger: logger}
}

// NotifyPasswordReset enqueues a mail carrying the reset link for email.
func (m *Mailer) NotifyPasswordReset(ctx context.Context, email, token string) error {
	link, err := m.resetLink(token)
	if err != nil {
		return err
	}
	task, err := NewSendEmailTask(SendEmailPayload{
		To:      email,
		Subject: resetSubject,
		Body: "We received a request to reset your password.\n\n" +
			"Open the link below within one hour to choose a new password:\n" + link + "\n\n" +
			"If you did not ask for this, you can ignore this email.\n",
	})
	if err != nil {
		return err
	}
	info, err := m.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue reset mail: %w", err)
	}
	m.logger.Debug("reset mail queued", slog.String("task_id", info.ID))
	return nil
}

func (m *Mailer) resetLink(token string) (string, error) {
	u, err := url.Parse(m.resetURL)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
