package cache

import (
	"context"
	"log/slog"
)

const dashboardStatsKey = "dashboard"

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

// InvalidateSession drops the cached session record of a user
func InvalidateSession(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.Session, userID)
}

// InvalidateDashboardStats drops every cached dashboard aggregate
func InvalidateDashboardStats(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Stats, dashboardStatsKey+"*")
}

// DashboardStatsKey is the key the dashboard aggregate is cached under
func DashboardStatsKey() string {
	return dashboardStatsKey
}
