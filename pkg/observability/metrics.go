package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the part of *cloudwatch.Client used for metrics.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics publishes dispatch metrics to CloudWatch. A nil *Metrics or one
// without a client records nothing.
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordDispatch records one dispatched batch
func (m *Metrics) RecordDispatch(ctx context.Context, source string, records, invocations, failures int) {
	dims := []types.Dimension{{Name: aws.String("Source"), Value: aws.String(source)}}
	m.put(ctx,
		datum("DispatchedRecords", dims, float64(records), types.StandardUnitCount),
		datum("HandlerInvocations", dims, float64(invocations), types.StandardUnitCount),
		datum("HandlerFailures", dims, float64(failures), types.StandardUnitCount),
	)
}

// RecordHandlerExecution records the latency and outcome of one handler call
func (m *Metrics) RecordHandlerExecution(ctx context.Context, handler string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	dims := []types.Dimension{
		{Name: aws.String("Handler"), Value: aws.String(handler)},
		{Name: aws.String("Status"), Value: aws.String(status)},
	}
	m.put(ctx, datum("HandlerLatency", dims, float64(duration.Milliseconds()), types.StandardUnitMilliseconds))
}

// RecordPublish records integration events sent and rejected
func (m *Metrics) RecordPublish(ctx context.Context, published, failed int) {
	m.put(ctx,
		datum("EventsPublished", nil, float64(published), types.StandardUnitCount),
		datum("EventsRejected", nil, float64(failed), types.StandardUnitCount),
	)
}

func (m *Metrics) put(ctx context.Context, data ...types.MetricDatum) {
	if m == nil || m.client == nil {
		return
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}

	// metrics never fail the caller
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Warn("Failed to send metrics",
			zap.String("namespace", m.namespace),
			zap.Int("metrics", len(data)),
			zap.Error(err),
		)
	}
}

func datum(name string, dims []types.Dimension, value float64, unit types.StandardUnit) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dims,
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
	}
}
