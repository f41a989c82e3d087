package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/erp/erpcore/internal/infrastructure/config"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound query variables in spans
	SlowQueryThresh time.Duration
	DBSystem        string
}

// NewDBTracingConfig derives database tracing settings from the service config.
func NewDBTracingConfig(tel config.TelemetryConfig, driver string) DBTracingConfig {
	thresh := tel.DBSlowQueryThresh
	if thresh == 0 {
		thresh = 200 * time.Millisecond
	}
	return DBTracingConfig{
		Enabled:         tel.Enabled && tel.DBTraceEnabled,
		LogFullSQL:      tel.DBLogFullSQL,
		SlowQueryThresh: thresh,
		DBSystem:        dbSystem(driver),
	}
}

func dbSystem(driver string) string {
	switch driver {
	case config.DriverSQLite:
		return "sqlite"
	case config.DriverMySQL:
		return "mysql"
	default:
		return "postgresql"
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// DBTracingPlugin wraps the otelgorm plugin with slow query marking.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs otelgorm and the timing callbacks on db. It is a no-op
// when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// registerCallbacks stamps the start time before and annotates the span
// after every gorm operation.
func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	errs := []error{
		cb.Create().Before("gorm:create").Register("otel_timing:before_create", markStart),
		cb.Query().Before("gorm:query").Register("otel_timing:before_query", markStart),
		cb.Update().Before("gorm:update").Register("otel_timing:before_update", markStart),
		cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", markStart),
		cb.Row().Before("gorm:row").Register("otel_timing:before_row", markStart),
		cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", markStart),

		cb.Create().After("gorm:create").Register("otel_slow_query:create", p.afterQuery),
		cb.Query().After("gorm:query").Register("otel_slow_query:query", p.afterQuery),
		cb.Update().After("gorm:update").Register("otel_slow_query:update", p.afterQuery),
		cb.Delete().After("gorm:delete").Register("otel_slow_query:delete", p.afterQuery),
		cb.Row().After("gorm:row").Register("otel_slow_query:row", p.afterQuery),
		cb.Raw().After("gorm:raw").Register("otel_slow_query:raw", p.afterQuery),
	}
	return errors.Join(errs...)
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// afterQuery annotates the current span with row counts, errors and slowness.
func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
