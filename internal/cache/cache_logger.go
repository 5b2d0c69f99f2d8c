package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// Key builders shared by writers and invalidators
func ElectionKey(electionID uint) string        { return fmt.Sprintf("id:%d", electionID) }
func ElectionDetailsKey(electionID uint) string { return fmt.Sprintf("details:%d", electionID) }
func LiveResultsKey(electionID uint) string     { return fmt.Sprintf("live:%d", electionID) }

const DashboardKey = "dashboard"

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateElectionCache drops everything derived from one election:
// its metadata, details tree, live counts and the dashboard aggregates.
func InvalidateElectionCache(ctx context.Context, cm *CacheManager, electionID uint) {
	SafeDelete(ctx, cm.Election, ElectionKey(electionID), ElectionDetailsKey(electionID))
	SafeDelete(ctx, cm.Results, LiveResultsKey(electionID))
	SafeDelete(ctx, cm.Stats, DashboardKey)
}

// InvalidateResultsCache drops vote-count derived entries after a vote
func InvalidateResultsCache(ctx context.Context, cm *CacheManager, electionID uint) {
	SafeDelete(ctx, cm.Results, LiveResultsKey(electionID))
	SafeDelete(ctx, cm.Stats, DashboardKey)
}

// InvalidateAll drops every cached election, result and dashboard entry.
// Used after bulk imports that can touch any election.
func InvalidateAll(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Election, "*")
	SafeInvalidatePattern(ctx, cm.Results, "*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}
