package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/erp/erpcore/internal/application/crud"
	"github.com/erp/erpcore/internal/domain/entity"
	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/logger"
	"github.com/erp/erpcore/internal/infrastructure/tabular"
	"github.com/erp/erpcore/internal/infrastructure/telemetry"
)

// Mode decides what a failing row does to the batch
type Mode string

const (
	// ModeCollect skips failing rows and reports them
	ModeCollect Mode = "collect"
	// ModeAbort rolls back the whole batch on the first failing row
	ModeAbort Mode = "abort"
)

// DefaultMaxErrors caps the reported row errors when nothing is configured
const DefaultMaxErrors = 100

// sniffSize is how many leading bytes are inspected when no hint is usable
const sniffSize = 512

// ParseMode parses "collect" or "abort"; "" is collect
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeCollect:
		return ModeCollect, nil
	case ModeAbort:
		return ModeAbort, nil
	}
	return "", shared.Validation("mode", fmt.Sprintf("mode must be %s or %s, got %q", ModeCollect, ModeAbort, s))
}

// FormatHint describes the uploaded file. Format, when set, wins over the
// file name and content type.
type FormatHint struct {
	Filename    string
	ContentType string
	Format      tabular.Format
	Sheet       string
}

// Options tune one ingestion. Zero values take the engine defaults.
type Options struct {
	Mode      Mode
	MaxErrors int
}

// RowError describes one rejected row
type RowError struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// Result summarizes one ingestion. Counts are exact even when Errors is
// truncated.
type Result struct {
	Entity    string         `json:"entity"`
	Format    tabular.Format `json:"format"`
	Mode      Mode           `json:"mode"`
	Inserted  int            `json:"inserted"`
	Updated   int            `json:"updated"`
	Failed    int            `json:"failed"`
	Skipped   int            `json:"skipped"`
	Errors    []RowError     `json:"errors"`
	Truncated bool           `json:"truncated"`
}

// Engine loads tabular files into entities through the CRUD engine
type Engine struct {
	crud     *crud.Engine
	metrics  *telemetry.EngineMetrics
	defaults Options
}

// Option configures an Engine
type Option func(*Engine)

// WithDefaults sets the mode and error cap used when a call leaves them zero
func WithDefaults(opts Options) Option {
	return func(e *Engine) {
		if opts.Mode != "" {
			e.defaults.Mode = opts.Mode
		}
		if opts.MaxErrors > 0 {
			e.defaults.MaxErrors = opts.MaxErrors
		}
	}
}

// WithMetrics records row counts and durations on m
func WithMetrics(m *telemetry.EngineMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an ingestion engine
func NewEngine(c *crud.Engine, opts ...Option) *Engine {
	e := &Engine{
		crud:     c,
		defaults: Options{Mode: ModeCollect, MaxErrors: DefaultMaxErrors},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest reads r and creates one record per non-blank row. All rows share one
// transaction and each row runs in its own savepoint, so a rejected row never
// leaves partial writes behind. In collect mode rejected rows are reported
// and the rest committed; in abort mode the first rejected row rolls back the
// batch and its error is returned. Store failures always abort.
func (e *Engine) Ingest(ctx context.Context, name string, r io.Reader, hint FormatHint, opts Options) (result *Result, err error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "ingest", "file", telemetry.AttrEntity.String(name))
	defer func() { telemetry.EndSpan(span, err) }()

	d, err := e.crud.Registry().Describe(name)
	if err != nil {
		return nil, err
	}
	opts = e.resolve(opts)

	reader, format, err := open(r, hint)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	columns := knownColumns(d, reader.Headers())
	if len(columns) == 0 {
		return nil, shared.Validationf("no column of the file matches a %s field", d.DisplayName())
	}

	result = &Result{Entity: name, Format: format, Mode: opts.Mode, Errors: []RowError{}}
	err = e.crud.Store().Transaction(ctx, func(tx entity.Store) error {
		return e.ingestRows(ctx, e.crud.WithStore(tx), d, reader, columns, opts, result)
	})
	if err != nil && opts.Mode == ModeAbort {
		result.Inserted, result.Updated = 0, 0
	}

	e.record(ctx, name, format, result, time.Since(start))
	log := logger.L(ctx).With(
		zap.String("entity", name),
		zap.String("format", string(format)),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		log.Warn("Ingestion aborted", zap.Error(err))
		return result, err
	}
	log.Info("Ingestion finished")
	return result, nil
}

func (e *Engine) resolve(opts Options) Options {
	if opts.Mode == "" {
		opts.Mode = e.defaults.Mode
	}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = e.defaults.MaxErrors
	}
	return opts
}

func (e *Engine) ingestRows(ctx context.Context, txc *crud.Engine, d *entity.Descriptor, reader tabular.Reader,
	columns []string, opts Options, result *Result) error {
	last := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// malformed record; the reader stays usable
			last++
			if fatal := e.reject(result, last, shared.Validationf("%v", err), opts); fatal != nil {
				return fatal
			}
			continue
		}
		last = row.Index
		if row.IsEmpty() {
			result.Skipped++
			continue
		}

		fields := make(crud.Fields, len(columns))
		for _, col := range columns {
			fields[col] = row.Get(col)
		}

		if d.HasUpsert() {
			var created bool
			_, created, err = txc.Upsert(ctx, d.Name, fields)
			if err == nil {
				if created {
					result.Inserted++
				} else {
					result.Updated++
				}
				continue
			}
		} else {
			_, err = txc.Create(ctx, d.Name, fields)
			if err == nil {
				result.Inserted++
				continue
			}
		}

		if isFatal(err) {
			return err
		}
		if fatal := e.reject(result, row.Index, err, opts); fatal != nil {
			return fatal
		}
	}
}

// reject records a failed row. In abort mode it returns the error that
// ends the batch.
func (e *Engine) reject(result *Result, index int, err error, opts Options) error {
	result.Failed++
	rowErr := toRowError(index, err)
	if len(result.Errors) < opts.MaxErrors {
		result.Errors = append(result.Errors, rowErr)
	} else {
		result.Truncated = true
	}
	if opts.Mode == ModeAbort {
		return fmt.Errorf("row %d: %w", index, err)
	}
	return nil
}

func (e *Engine) record(ctx context.Context, name string, format tabular.Format, result *Result, d time.Duration) {
	e.metrics.RecordIngestRows(ctx, name, telemetry.OutcomeInserted, int64(result.Inserted))
	e.metrics.RecordIngestRows(ctx, name, telemetry.OutcomeUpserted, int64(result.Updated))
	e.metrics.RecordIngestRows(ctx, name, telemetry.OutcomeFailed, int64(result.Failed))
	e.metrics.RecordIngestRows(ctx, name, telemetry.OutcomeSkipped, int64(result.Skipped))
	e.metrics.RecordIngest(ctx, name, string(format), d)
}

// isFatal reports errors that end the batch in every mode
func isFatal(err error) bool {
	return errors.Is(err, shared.ErrStoreUnavailable) ||
		errors.Is(err, shared.ErrUnknownEntity) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func toRowError(index int, err error) RowError {
	rowErr := RowError{Row: index, Code: shared.CodeValidation, Message: err.Error()}
	var de *shared.DomainError
	if errors.As(err, &de) {
		rowErr.Code = de.Code
		rowErr.Column = de.Field
		rowErr.Message = de.Message
	}
	return rowErr
}

// open picks the format and returns a reader positioned after the header
func open(r io.Reader, hint FormatHint) (tabular.Reader, tabular.Format, error) {
	format := hint.Format
	if format == "" {
		format, _ = tabular.DetectFormat(hint.Filename, hint.ContentType)
	}
	if format == "" {
		buf := bufio.NewReaderSize(r, sniffSize)
		head, err := buf.Peek(sniffSize)
		if err != nil && err != io.EOF {
			return nil, "", shared.Validationf("cannot read upload: %v", err)
		}
		format = tabular.Sniff(head)
		r = buf
	}

	var opts []tabular.Option
	if hint.Sheet != "" {
		opts = append(opts, tabular.WithSheet(hint.Sheet))
	}
	reader, err := tabular.NewReader(r, format, opts...)
	if err != nil {
		return nil, format, shared.Validationf("cannot read %s file: %v", format, err)
	}
	return reader, format, nil
}

// knownColumns returns the headers that name a descriptor field
func knownColumns(d *entity.Descriptor, headers []string) []string {
	var columns []string
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if _, ok := d.Field(h); ok && !seen[h] {
			seen[h] = true
			columns = append(columns, h)
		}
	}
	return columns
}
