package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings.
const (
	// Identity and context
	FieldRunID      = "run_id"
	FieldDataset    = "dataset"
	FieldRepository = "repository"
	FieldComponent  = "component"

	// Retrieval
	FieldURL         = "url"
	FieldPath        = "path"
	FieldDestination = "destination"
	FieldCacheHit    = "cache_hit"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"
	FieldNodes = "nodes"
	FieldEdges = "edges"
	FieldRows  = "rows"

	// Status
	FieldStatus = "status"
)

type contextKey string

const (
	runIDKey     contextKey = "logger_run_id"
	datasetKey   contextKey = "logger_dataset"
	componentKey contextKey = "logger_component"
)

// WithRunID adds a mining run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithDataset adds a dataset name to the context for logging
func WithDataset(ctx context.Context, dataset string) context.Context {
	return context.WithValue(ctx, datasetKey, dataset)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if dataset, ok := ctx.Value(datasetKey).(string); ok && dataset != "" {
		fields = append(fields, FieldDataset, dataset)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// FromContext returns base with the fields carried by ctx attached.
// A nil base falls back to the global Logger.
func FromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if base == nil {
		base = Logger
	}
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
//
// Example:
//
//	type Miner struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewMiner() *Miner {
//	    return &Miner{logger: logger.ComponentLogger("miner")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
