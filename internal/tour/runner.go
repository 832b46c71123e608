package tour

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/sqltour/internal/services/catalog/storage/sqlstore"
)

const tracerName = "github.com/louisbranch/sqltour/internal/tour"

// Runner executes script steps against one store.
type Runner struct {
	Store *sqlstore.Store
	Out   io.Writer
	// Language selects the heading catalog. The zero tag prints English.
	Language language.Tag
	// Logger reports step progress. Nil discards it.
	Logger logrus.FieldLogger
	// TracerProvider receives one span per step. Defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Run executes every step, or only the named ones, in script order. Unknown
// names are rejected before any step runs. The first failing step stops the
// run.
func (r Runner) Run(ctx context.Context, names ...string) error {
	if r.Store == nil {
		return fmt.Errorf("tour store is required")
	}
	if r.Out == nil {
		return fmt.Errorf("tour output is required")
	}
	steps, err := selectSteps(names)
	if err != nil {
		return err
	}

	lang := r.Language
	if lang == language.Und {
		lang = language.English
	}
	printer := message.NewPrinter(lang)
	logger := r.Logger
	if logger == nil {
		logger = discardLogger()
	}
	provider := r.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	tracer := provider.Tracer(tracerName)

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runStep(ctx, tracer, logger, printer, step); err != nil {
			return fmt.Errorf("step %s: %w", step.Name, err)
		}
	}
	return nil
}

func (r Runner) runStep(ctx context.Context, tracer trace.Tracer, logger logrus.FieldLogger, printer *message.Printer, step Step) error {
	ctx, span := tracer.Start(ctx, "tour."+step.Name, trace.WithAttributes(
		attribute.String("tour.step", step.Name),
		attribute.Bool("tour.transaction", !step.NoTx),
	))
	defer span.End()

	log := logger.WithField("step", step.Name)
	log.Debug("step started")
	start := time.Now()

	env := &Env{Store: r.Store, Out: r.Out, Printer: printer}
	env.heading(step)

	var err error
	if step.NoTx {
		err = step.Run(ctx, env)
	} else {
		err = r.Store.InTx(ctx, func(tx *sqlstore.Store) error {
			txEnv := *env
			txEnv.Store = tx
			return step.Run(ctx, &txEnv)
		})
	}
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).WithField("elapsed", elapsed).Error("step failed")
		return err
	}
	log.WithField("elapsed", elapsed).Info("step finished")
	return nil
}

// selectSteps returns the named steps in script order. No names selects the
// whole script.
func selectSteps(names []string) ([]Step, error) {
	steps := Steps()
	if len(names) == 0 {
		return steps, nil
	}

	known := make(map[string]bool, len(steps))
	for _, step := range steps {
		known[step.Name] = true
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !known[name] {
			return nil, fmt.Errorf("unknown step %q (known: %s)", name, strings.Join(StepNames(), ", "))
		}
		wanted[name] = true
	}
	if len(wanted) == 0 {
		return steps, nil
	}

	selected := make([]Step, 0, len(wanted))
	for _, step := range steps {
		if wanted[step.Name] {
			selected = append(selected, step)
		}
	}
	return selected, nil
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
