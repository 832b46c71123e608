// Package sqllog echoes SQL statements to a logger and records one trace span
// per statement.
package sqllog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/louisbranch/sqltour/internal/platform/storage/sqllog"

// Querier is the statement surface shared by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options configures a wrapped Querier.
type Options struct {
	// Logger receives one entry per statement. Nil disables statement logging.
	Logger logrus.FieldLogger
	// System is reported as the db.system span attribute.
	System string
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// loggedQuerier logs and traces every statement before delegating.
type loggedQuerier struct {
	next   Querier
	logger logrus.FieldLogger
	system string
	tracer trace.Tracer
}

// Wrap returns a Querier that reports each statement before delegating to q.
func Wrap(q Querier, opts Options) Querier {
	if q == nil {
		return nil
	}
	if inner, ok := q.(*loggedQuerier); ok {
		q = inner.next
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &loggedQuerier{
		next:   q,
		logger: opts.Logger,
		system: opts.System,
		tracer: tp.Tracer(instrumentationName),
	}
}

func (l *loggedQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, span := l.start(ctx, query)
	defer span.End()
	started := time.Now()
	result, err := l.next.ExecContext(ctx, query, args...)
	l.finish(span, query, args, started, err)
	return result, err
}

func (l *loggedQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ctx, span := l.start(ctx, query)
	defer span.End()
	started := time.Now()
	rows, err := l.next.QueryContext(ctx, query, args...)
	l.finish(span, query, args, started, err)
	return rows, err
}

// QueryRowContext defers errors to Scan, so the entry carries no error.
func (l *loggedQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	ctx, span := l.start(ctx, query)
	defer span.End()
	started := time.Now()
	row := l.next.QueryRowContext(ctx, query, args...)
	l.finish(span, query, args, started, nil)
	return row
}

func (l *loggedQuerier) start(ctx context.Context, query string) (context.Context, trace.Span) {
	return l.tracer.Start(ctx, SpanName(query),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", l.system),
			attribute.String("db.statement", query),
		),
	)
}

func (l *loggedQuerier) finish(span trace.Span, query string, args []any, started time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if l.logger == nil {
		return
	}
	entry := l.logger.WithFields(logrus.Fields{
		"elapsed": time.Since(started).Round(time.Microsecond),
	})
	if len(args) > 0 {
		entry = entry.WithField("args", args)
	}
	if err != nil {
		entry.WithError(err).Warn(Compact(query))
		return
	}
	entry.Info(Compact(query))
}

// SpanName derives a span name from the statement's leading keyword.
func SpanName(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "db.statement"
	}
	return "db." + strings.ToLower(fields[0])
}

// Compact collapses whitespace so multi-line statements log on one line.
func Compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
