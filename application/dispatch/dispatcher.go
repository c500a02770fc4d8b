package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"teamchat/pkg/observability"
)

// DefaultHandlerTimeout bounds a single Process call when none is configured.
const DefaultHandlerTimeout = 30 * time.Second

// Summary describes one dispatched batch.
type Summary struct {
	Records     int
	Invocations int
	Failures    int
}

// Dispatcher fans change records out to the handlers of a Registry.
type Dispatcher struct {
	registry       *Registry
	logger         *zap.Logger
	metrics        *observability.Metrics
	tracer         *observability.Tracer
	handlerTimeout time.Duration
}

// NewDispatcher creates a dispatcher. metrics and tracer may be nil.
func NewDispatcher(
	registry *Registry,
	logger *zap.Logger,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	handlerTimeout time.Duration,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if handlerTimeout <= 0 {
		handlerTimeout = DefaultHandlerTimeout
	}
	return &Dispatcher{
		registry:       registry,
		logger:         logger,
		metrics:        metrics,
		tracer:         tracer,
		handlerTimeout: handlerTimeout,
	}
}

// DispatchStream normalizes a DynamoDB stream batch and dispatches it.
func (d *Dispatcher) DispatchStream(ctx context.Context, event events.DynamoDBEvent) Summary {
	records := make([]ChangeRecord, len(event.Records))
	for i, raw := range event.Records {
		rec, err := NormalizeStreamRecord(raw)
		if err != nil {
			d.logNormalizeFailure("stream", i, raw.EventID, err)
			rec = UnknownRecord()
		}
		records[i] = rec
	}
	return d.dispatch(ctx, "stream", records)
}

// DispatchSNS normalizes an SNS batch and dispatches it.
func (d *Dispatcher) DispatchSNS(ctx context.Context, event events.SNSEvent) Summary {
	records := make([]ChangeRecord, len(event.Records))
	for i, raw := range event.Records {
		rec, err := NormalizeSNSRecord(raw)
		if err != nil {
			d.logNormalizeFailure("bus", i, raw.SNS.MessageID, err)
			rec = UnknownRecord()
		}
		records[i] = rec
	}
	return d.dispatch(ctx, "bus", records)
}

// Dispatch offers every record to every handler and runs the supporting ones
// concurrently. It waits for all of them and never fails; failures are logged
// per record and counted in the summary.
func (d *Dispatcher) Dispatch(ctx context.Context, records []ChangeRecord) Summary {
	return d.dispatch(ctx, "direct", records)
}

func (d *Dispatcher) dispatch(ctx context.Context, source string, records []ChangeRecord) Summary {
	start := time.Now()

	// errs[i][j] is the outcome of the j-th supporting handler of record i
	supporting := make([][]Handler, len(records))
	errs := make([][]error, len(records))
	for i, rec := range records {
		supporting[i] = d.registry.Supporting(rec, func(h Handler, p any) {
			d.logger.Error("Handler support check panicked",
				zap.String("handler", h.Name()),
				zap.String("record", rec.String()),
				zap.Any("panic", p),
			)
		})
		errs[i] = make([]error, len(supporting[i]))
	}

	var wg sync.WaitGroup
	for i := range records {
		for j, h := range supporting[i] {
			wg.Add(1)
			go func(i, j int, h Handler) {
				defer wg.Done()
				errs[i][j] = d.invoke(ctx, h, records[i])
			}(i, j, h)
		}
	}
	wg.Wait()

	summary := Summary{Records: len(records)}
	for i, rec := range records {
		summary.Invocations += len(supporting[i])

		combined := multierr.Combine(errs[i]...)
		if combined == nil {
			continue
		}
		failed := len(multierr.Errors(combined))
		summary.Failures += failed

		d.logger.Error("Change record handlers failed",
			zap.Int("failed", failed),
			zap.Int("handlers", len(supporting[i])),
			zap.Errors("errors", multierr.Errors(combined)),
			zap.String("origin", rec.Origin),
			zap.String("kind", string(rec.Kind)),
			zap.String("entityType", string(rec.EntityType())),
			zap.Any("record", rec),
		)
	}

	d.logger.Info("Change batch dispatched",
		zap.String("source", source),
		zap.Int("records", summary.Records),
		zap.Int("invocations", summary.Invocations),
		zap.Int("failed", summary.Failures),
		zap.Duration("duration", time.Since(start)),
	)
	d.metrics.RecordDispatch(ctx, source, summary.Records, summary.Invocations, summary.Failures)

	return summary
}

// invoke runs one Process call under the handler timeout. A handler that
// does not return once its context is done is abandoned; its goroutine is
// left to finish on its own and its result is dropped.
func (d *Dispatcher) invoke(ctx context.Context, h Handler, rec ChangeRecord) error {
	handlerCtx, cancel := context.WithTimeout(ctx, d.handlerTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- d.process(handlerCtx, h, rec)
	}()

	var err error
	select {
	case err = <-done:
	case <-handlerCtx.Done():
		select {
		case err = <-done:
		default:
			err = fmt.Errorf("abandoned: %w", handlerCtx.Err())
			d.logger.Warn("Handler did not return after cancellation",
				zap.String("handler", h.Name()),
				zap.String("record", rec.String()),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}

	d.metrics.RecordHandlerExecution(ctx, h.Name(), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", h.Name(), err)
	}
	return nil
}

func (d *Dispatcher) process(ctx context.Context, h Handler, rec ChangeRecord) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler %s panicked: %v", h.Name(), p)
		}
	}()

	return d.tracer.TraceFunction(ctx, "handler."+h.Name(), func(ctx context.Context) error {
		d.tracer.AddAnnotation(ctx, "entityType", string(rec.EntityType()))
		d.tracer.AddMetadata(ctx, "eventID", rec.EventID)
		return h.Process(ctx, rec)
	})
}

func (d *Dispatcher) logNormalizeFailure(source string, index int, eventID string, err error) {
	d.logger.Warn("Failed to normalize change, dispatching empty record",
		zap.String("source", source),
		zap.Int("index", index),
		zap.String("eventID", eventID),
		zap.Error(err),
	)
}
