package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/Leganyst/therapy-booking/internal/booking"
)

const (
	TypeEmailSend = "email:send"
	QueueName     = "notifications"
)

// EmailPayload — задача на отправку письма.
type EmailPayload struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

func NewEmailTask(p EmailPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailSend, b, asynq.Queue(QueueName), asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}

// Enqueuer — часть *asynq.Client, которая нужна уведомлениям.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier ставит письмо в очередь asynq; доставку с ретраями делает воркер.
// Ошибка Send означает только, что задача не попала в очередь.
type QueueNotifier struct {
	client Enqueuer
	log    *zap.Logger
}

var _ booking.Notifier = (*QueueNotifier)(nil)

func NewQueueNotifier(client Enqueuer, log *zap.Logger) *QueueNotifier {
	return &QueueNotifier{client: client, log: log}
}

func (n *QueueNotifier) Send(ctx context.Context, recipients []string, subject, body string) error {
	task, err := NewEmailTask(EmailPayload{Recipients: recipients, Subject: subject, Body: body})
	if err != nil {
		return err
	}
	info, err := n.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	n.log.Debug("email enqueued", zap.String("task_id", info.ID), zap.Strings("recipients", recipients))
	return nil
}

// HandleEmailTask — обработчик воркера: отправляет письмо через mailer.
func HandleEmailTask(mailer booking.Notifier, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p EmailPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Error("invalid email payload", zap.Error(err))
			// Битую задачу ретраить бессмысленно.
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		if err := mailer.Send(ctx, p.Recipients, p.Subject, p.Body); err != nil {
			log.Warn("email delivery failed", zap.Strings("recipients", p.Recipients), zap.Error(err))
			return err
		}
		log.Info("email delivered", zap.Strings("recipients", p.Recipients), zap.String("subject", p.Subject))
		return nil
	}
}

// NewServeMux регистрирует обработчики очереди уведомлений.
func NewServeMux(mailer booking.Notifier, log *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailSend, HandleEmailTask(mailer, log))
	return mux
}
