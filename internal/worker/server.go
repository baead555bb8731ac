// Package worker runs the out-of-band side of notifications: an asynq
// server that consumes the tasks enqueued by the notify package and hands
// rendered notifications to a delivery gateway.
package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/caiofrota/migoculto/internal/notify"
)

// Server wraps the asynq worker server lifecycle.
type Server struct {
	server *asynq.Server
	log    *logrus.Entry
	events *EventHandler
}

// NewServer creates a worker consuming the notifications queue.
func NewServer(redisOpt asynq.RedisClientOpt, events *EventHandler, logger *logrus.Logger) *Server {
	logEntry := logger.WithField("component", "worker")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"notifications": 5,
				"default":       1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retry":     retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &Server{server: server, log: logEntry, events: events}
}

// Start runs the worker server. Blocks until Shutdown is called.
func (s *Server) Start() {
	mux := asynq.NewServeMux()
	for _, taskType := range []string{
		notify.TypeGroupDrawn,
		notify.TypeGroupMessage,
		notify.TypeInboxMessage,
		notify.TypeMemberJoined,
		notify.TypeMemberLeft,
		notify.TypeMemberRemoved,
	} {
		mux.HandleFunc(taskType, s.events.ProcessTask)
	}

	s.log.Info("Worker server starting...")
	if err := s.server.Run(mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
		s.log.Fatalf("Could not run worker server: %v", err)
	}
	s.log.Info("Worker server stopped.")
}

// Shutdown gracefully stops the worker server.
func (s *Server) Shutdown() {
	s.log.Info("Shutting down worker server...")
	s.server.Shutdown()
}
