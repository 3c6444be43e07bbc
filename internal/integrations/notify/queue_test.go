package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueName, Type: task.Type()}, nil
}

type recordingMailer struct {
	recipients []string
	subject    string
	body       string
	err        error
}

func (m *recordingMailer) Send(_ context.Context, recipients []string, subject, body string) error {
	m.recipients, m.subject, m.body = recipients, subject, body
	return m.err
}

func TestQueueNotifier_Send(t *testing.T) {
	q := &fakeEnqueuer{}
	n := NewQueueNotifier(q, zap.NewNop())

	require.NoError(t, n.Send(context.Background(), []string{"jane@example.com"}, "Session cancelled", "text"))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, TypeEmailSend, q.tasks[0].Type())

	var p EmailPayload
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &p))
	assert.Equal(t, []string{"jane@example.com"}, p.Recipients)
	assert.Equal(t, "Session cancelled", p.Subject)
	assert.Equal(t, "text", p.Body)
}

func TestQueueNotifier_EnqueueError(t *testing.T) {
	boom := errors.New("redis down")
	n := NewQueueNotifier(&fakeEnqueuer{err: boom}, zap.NewNop())

	err := n.Send(context.Background(), []string{"jane@example.com"}, "s", "b")
	assert.ErrorIs(t, err, boom)
}

func TestHandleEmailTask(t *testing.T) {
	mailer := &recordingMailer{}
	task, err := NewEmailTask(EmailPayload{Recipients: []string{"smith@example.com"}, Subject: "s", Body: "b"})
	require.NoError(t, err)

	require.NoError(t, HandleEmailTask(mailer, zap.NewNop())(context.Background(), task))
	assert.Equal(t, []string{"smith@example.com"}, mailer.recipients)
	assert.Equal(t, "s", mailer.subject)
	assert.Equal(t, "b", mailer.body)
}

func TestHandleEmailTask_Errors(t *testing.T) {
	handler := HandleEmailTask(&recordingMailer{err: errors.New("brevo 500")}, zap.NewNop())

	bad := asynq.NewTask(TypeEmailSend, []byte("{not json"))
	assert.ErrorIs(t, handler(context.Background(), bad), asynq.SkipRetry)

	task, err := NewEmailTask(EmailPayload{Recipients: []string{"a@example.com"}})
	require.NoError(t, err)
	err = handler(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
