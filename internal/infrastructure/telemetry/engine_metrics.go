package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/erp/erpcore/internal/domain/shared"
)

// Ingestion row outcomes
const (
	OutcomeInserted = "inserted"
	OutcomeUpserted = "upserted"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
	OutcomeOK       = "ok"
)

// EngineMetrics holds the instruments recorded by the CRUD, ingestion and
// report engines. A nil *EngineMetrics records nothing.
type EngineMetrics struct {
	ingestRows     *Counter
	ingestDuration *Histogram
	operations     *Counter
	reportDuration *Histogram
}

// NewEngineMetrics creates the engine instruments on meter.
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	ingestRows, err := NewCounter(meter, "erp.ingest.rows",
		"Rows processed by bulk ingestion by outcome", "{row}")
	if err != nil {
		return nil, err
	}
	ingestDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "erp.ingest.duration",
		Description: "Bulk ingestion duration per file",
		Unit:        "s",
		Boundaries:  DurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	operations, err := NewCounter(meter, "erp.crud.operations",
		"CRUD operations by entity, operation and outcome", "{operation}")
	if err != nil {
		return nil, err
	}
	reportDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "erp.report.duration",
		Description: "Report computation duration",
		Unit:        "s",
		Boundaries:  DurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		ingestRows:     ingestRows,
		ingestDuration: ingestDuration,
		operations:     operations,
		reportDuration: reportDuration,
	}, nil
}

// RecordIngestRows counts n ingested rows with the given outcome.
func (m *EngineMetrics) RecordIngestRows(ctx context.Context, entity, outcome string, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.ingestRows.Add(ctx, n, AttrEntity.String(entity), AttrOutcome.String(outcome))
}

// RecordIngest records how long one file took to ingest.
func (m *EngineMetrics) RecordIngest(ctx context.Context, entity, format string, d time.Duration) {
	if m == nil {
		return
	}
	m.ingestDuration.RecordDuration(ctx, d, AttrEntity.String(entity), AttrFormat.String(format))
}

// RecordOperation counts one CRUD operation. The outcome is "ok" or the
// error code of err.
func (m *EngineMetrics) RecordOperation(ctx context.Context, entity, op string, err error) {
	if m == nil {
		return
	}
	m.operations.Inc(ctx,
		AttrEntity.String(entity),
		AttrOperation.String(op),
		AttrOutcome.String(outcomeOf(err)),
	)
}

// RecordReport records how long a report took.
func (m *EngineMetrics) RecordReport(ctx context.Context, report string, d time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.RecordDuration(ctx, d, AttrReport.String(report))
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := shared.CodeOf(err); code != "" {
		return code
	}
	return "error"
}
