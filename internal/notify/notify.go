// Package notify is the notification collaborator: after a successful
// state change the services hand it the group and the affected recipients,
// and delivery happens out of band on an asynq queue. Enqueue failures are
// logged and never roll back the state change that triggered them.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Task types routed to the worker.
const (
	TypeGroupDrawn    = "notify:group_drawn"
	TypeGroupMessage  = "notify:group_message"
	TypeInboxMessage  = "notify:inbox_message"
	TypeMemberJoined  = "notify:member_joined"
	TypeMemberLeft    = "notify:member_left"
	TypeMemberRemoved = "notify:member_removed"
)

// EventPayload is the wire format of every notification task.
type EventPayload struct {
	GroupID      int    `json:"group_id"`
	GroupName    string `json:"group_name"`
	ActorName    string `json:"actor_name,omitempty"`
	RecipientIDs []int  `json:"recipient_ids"`
}

// Notifier is what the service layer sees: fire an event, forget about it.
type Notifier interface {
	Notify(ctx context.Context, taskType string, payload EventPayload)
}

// AsynqNotifier enqueues notification tasks on Redis via asynq.
type AsynqNotifier struct {
	client *asynq.Client
}

// NewAsynqNotifier creates a Notifier backed by the given Redis instance.
func NewAsynqNotifier(redisAddr, redisPassword string) *AsynqNotifier {
	return &AsynqNotifier{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword}),
	}
}

// Notify enqueues one task. Best effort: failures are logged, not returned,
// because the core state change already committed.
func (n *AsynqNotifier) Notify(ctx context.Context, taskType string, payload EventPayload) {
	if len(payload.RecipientIDs) == 0 {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).WithField("type", taskType).Error("Failed to marshal notification payload")
		return
	}
	task := asynq.NewTask(taskType, data, asynq.MaxRetry(5), asynq.Queue("notifications"))
	info, err := n.client.EnqueueContext(ctx, task)
	if err != nil {
		logrus.WithError(err).WithField("type", taskType).Error("Failed to enqueue notification")
		return
	}
	logrus.WithFields(logrus.Fields{
		"type":       taskType,
		"task_id":    info.ID,
		"group_id":   payload.GroupID,
		"recipients": len(payload.RecipientIDs),
	}).Debug("Notification enqueued")
}

// Close releases the underlying client.
func (n *AsynqNotifier) Close() error {
	return n.client.Close()
}

// NopNotifier discards every event. Used in tests.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, string, EventPayload) {}

// Unmarshal decodes a task payload back into an EventPayload.
func Unmarshal(task *asynq.Task) (EventPayload, error) {
	var p EventPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal %s payload: %w", task.Type(), err)
	}
	return p, nil
}
