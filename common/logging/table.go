package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type dbStatsContextKey string

const dbStatsKey = dbStatsContextKey("dbStats")

type dbStats struct {
	queryCount    int
	queryDuration time.Duration
}

type statsTable struct {
	mu     sync.Mutex
	tables map[string]*dbStats
}

// InitTable attaches an empty per-table query statistics table to ctx.
func InitTable(ctx context.Context) context.Context {
	return context.WithValue(ctx, dbStatsKey, &statsTable{tables: make(map[string]*dbStats)})
}

// ObserveQuery records one statement against table. It is a no-op when ctx carries no table.
func ObserveQuery(ctx context.Context, table string, duration time.Duration) {
	stats, ok := ctx.Value(dbStatsKey).(*statsTable)
	if !ok {
		return
	}
	stats.mu.Lock()
	defer stats.mu.Unlock()

	if _, exists := stats.tables[table]; !exists {
		stats.tables[table] = new(dbStats)
	}
	stats.tables[table].queryCount++
	stats.tables[table].queryDuration += duration
}

// QueryCount returns the number of statements observed against table.
func QueryCount(ctx context.Context, table string) int {
	stats, ok := ctx.Value(dbStatsKey).(*statsTable)
	if !ok {
		return 0
	}
	stats.mu.Lock()
	defer stats.mu.Unlock()
	if s, exists := stats.tables[table]; exists {
		return s.queryCount
	}
	return 0
}

// LogTable emits one wide log line summarising the request and its ledger queries.
func LogTable(ctx context.Context, duration time.Duration) {
	stats, ok := ctx.Value(dbStatsKey).(*statsTable)
	if !ok {
		return
	}

	result := make(map[string]any)
	result["_table"] = "ledger-requests"
	result["duration"] = duration.Seconds()

	totals := dbStats{}

	stats.mu.Lock()
	for table, s := range stats.tables {
		result["database."+table+".queries"] = s.queryCount
		result["database."+table+".duration"] = s.queryDuration.Seconds()

		totals.queryCount += s.queryCount
		totals.queryDuration += s.queryDuration
	}
	stats.mu.Unlock()

	result["database.queries"] = totals.queryCount
	result["database.duration"] = totals.queryDuration.Seconds()

	attrs := make([]slog.Attr, 0, len(result))
	for key, value := range result {
		attrs = append(attrs, slog.Any(key, value))
	}

	GetLoggerFromContext(ctx).LogAttrs(context.Background(), slog.LevelInfo, "", attrs...)
}
