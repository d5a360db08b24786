package notify

import (
	"context"

	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the application log. It stands in for
// external channels (chat webhooks, email) in deployments that have none
// configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by the given logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notify")}
}

// Notify implements shared.Notifier
func (n *LogNotifier) Notify(ctx context.Context, kind, title, description string, subjectID uuid.UUID) error {
	fields := []zap.Field{
		zap.String("kind", kind),
		zap.String("title", title),
		zap.String("description", description),
	}
	if subjectID != uuid.Nil {
		fields = append(fields, zap.String("subject_id", subjectID.String()))
	}
	n.logger.Info("notification", fields...)
	return nil
}

var _ shared.Notifier = (*LogNotifier)(nil)
