package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(1)
}

func TestMetrics_RecordDispatch(t *testing.T) {
	client := new(mockCloudWatch)
	metrics := NewMetrics("TeamChat", client, zap.NewNop())

	client.On("PutMetricData", mock.Anything, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		if aws.ToString(in.Namespace) != "TeamChat" || len(in.MetricData) != 3 {
			return false
		}
		return aws.ToString(in.MetricData[2].MetricName) == "HandlerFailures" && aws.ToFloat64(in.MetricData[2].Value) == 1
	})).Return(nil, nil)

	metrics.RecordDispatch(context.Background(), "teamchat-table", 4, 6, 1)

	client.AssertExpectations(t)
}

func TestMetrics_FailuresAreSwallowed(t *testing.T) {
	client := new(mockCloudWatch)
	metrics := NewMetrics("TeamChat", client, nil)
	client.On("PutMetricData", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	assert.NotPanics(t, func() {
		metrics.RecordHandlerExecution(context.Background(), "message-sent", 15*time.Millisecond, errors.New("boom"))
	})
	client.AssertNumberOfCalls(t, "PutMetricData", 1)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics
	assert.NotPanics(t, func() {
		metrics.RecordDispatch(context.Background(), "x", 1, 1, 0)
		NewMetrics("TeamChat", nil, nil).RecordPublish(context.Background(), 1, 0)
	})
}

func TestTracer_RunsWithoutSegment(t *testing.T) {
	called := false
	err := NewTracer("teamchat").TraceFunction(context.Background(), "handler", func(context.Context) error {
		called = true
		return errors.New("handler failed")
	})

	assert.True(t, called)
	assert.EqualError(t, err, "handler failed")

	var nilTracer *Tracer
	assert.NoError(t, nilTracer.TraceFunction(context.Background(), "x", func(context.Context) error { return nil }))
}
