package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/events"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// withTx runs fn inside one database transaction
func withTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// notFoundAs translates a repository miss into the given sentinel
func notFoundAs(err error, sentinel error, op string) error {
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}

// publish emits an event after commit. Delivery failures are logged only.
func publish(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		logger.Error("Failed to publish event", "type", eventType, "error", err)
	}
}

// clampLimit applies the default and maximum page size
func clampLimit(limit int) int {
	if limit < 1 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
