package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/notify"
	"github.com/caiofrota/migoculto/internal/repository"
)

// Gateway delivers one rendered notification to one user. Implementations
// push to email, mobile push or whatever channel the deployment uses.
type Gateway interface {
	Deliver(ctx context.Context, user *models.User, subject, body string) error
}

// LogGateway writes deliveries to the log. The default until a real
// channel is configured.
type LogGateway struct{}

// Deliver implements Gateway.
func (LogGateway) Deliver(_ context.Context, user *models.User, subject, body string) error {
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
		"subject": subject,
	}).Info(body)
	return nil
}

// EventHandler consumes notification tasks and fans them out to recipients.
type EventHandler struct {
	userRepo *repository.UserRepository
	gateway  Gateway
}

// NewEventHandler creates an EventHandler delivering through the gateway.
func NewEventHandler(gateway Gateway) *EventHandler {
	return &EventHandler{
		userRepo: repository.NewUserRepository(),
		gateway:  gateway,
	}
}

// ProcessTask implements asynq.Handler for every notification task type.
// A recipient that no longer exists is skipped; a gateway failure fails the
// task so asynq retries it.
func (h *EventHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := notify.Unmarshal(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	subject, body := render(t.Type(), payload)
	logCtx := logrus.WithFields(logrus.Fields{
		"task_type": t.Type(),
		"group_id":  payload.GroupID,
	})

	for _, userID := range payload.RecipientIDs {
		user, err := h.userRepo.GetByID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				logCtx.WithField("user_id", userID).Warn("Notification recipient no longer exists")
				continue
			}
			return fmt.Errorf("failed to load recipient %d: %w", userID, err)
		}
		if err := h.gateway.Deliver(ctx, user, subject, body); err != nil {
			return fmt.Errorf("failed to deliver to user %d: %w", userID, err)
		}
	}

	logCtx.WithField("recipients", len(payload.RecipientIDs)).Info("Notification delivered")
	return nil
}

// render produces the subject and body for a task type. Bodies never name
// the sender of anonymous messages.
func render(taskType string, p notify.EventPayload) (subject, body string) {
	switch taskType {
	case notify.TypeGroupDrawn:
		return fmt.Sprintf("%s has been drawn!", p.GroupName),
			fmt.Sprintf("The draw for %q is done. Open the group to see who you got.", p.GroupName)
	case notify.TypeGroupMessage:
		return fmt.Sprintf("New message in %s", p.GroupName),
			fmt.Sprintf("There is a new message in %q.", p.GroupName)
	case notify.TypeInboxMessage:
		return fmt.Sprintf("New secret message in %s", p.GroupName),
			fmt.Sprintf("You received a new anonymous message in %q.", p.GroupName)
	case notify.TypeMemberJoined:
		return fmt.Sprintf("Someone joined %s", p.GroupName),
			fmt.Sprintf("A new participant joined %q.", p.GroupName)
	case notify.TypeMemberLeft:
		return fmt.Sprintf("Someone left %s", p.GroupName),
			fmt.Sprintf("A participant left %q.", p.GroupName)
	case notify.TypeMemberRemoved:
		return fmt.Sprintf("You were removed from %s", p.GroupName),
			fmt.Sprintf("The organizer removed you from %q.", p.GroupName)
	default:
		return p.GroupName, fmt.Sprintf("Update in %q.", p.GroupName)
	}
}
