package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockHandler struct {
	mock.Mock
	name string
}

func (m *mockHandler) Name() string { return m.name }

func (m *mockHandler) Supports(rec ChangeRecord) bool {
	return m.Called(rec).Bool(0)
}

func (m *mockHandler) Process(ctx context.Context, rec ChangeRecord) error {
	return m.Called(ctx, rec).Error(0)
}

// recordingHandler remembers every record it was offered.
type recordingHandler struct {
	name    string
	mu      sync.Mutex
	offered []ChangeRecord
	process func(context.Context, ChangeRecord) error
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Supports(rec ChangeRecord) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.offered = append(h.offered, rec)
	return true
}

func (h *recordingHandler) Process(ctx context.Context, rec ChangeRecord) error {
	if h.process != nil {
		return h.process(ctx, rec)
	}
	return nil
}

func teamInsert() ChangeRecord {
	return ChangeRecord{
		Origin: "teamchat",
		Kind:   Insert,
		Before: Image{},
		After:  Image{"pk": "team-1", "sk": "team-1", "entityType": "Team", "name": "Platform"},
	}
}

func newDispatcher(t *testing.T, handlers ...Handler) *Dispatcher {
	registry, err := NewRegistry(handlers...)
	require.NoError(t, err)
	return NewDispatcher(registry, zap.NewNop(), nil, nil, time.Second)
}

func TestDispatch_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	// Arrange
	failing := &mockHandler{name: "failing"}
	succeeding := &mockHandler{name: "succeeding"}
	rec := teamInsert()

	failing.On("Supports", rec).Return(true)
	failing.On("Process", mock.Anything, rec).Return(errors.New("downstream unavailable"))
	succeeding.On("Supports", rec).Return(true)
	succeeding.On("Process", mock.Anything, rec).Return(nil)

	dispatcher := newDispatcher(t, failing, succeeding)

	// Act
	var summary Summary
	assert.NotPanics(t, func() {
		summary = dispatcher.Dispatch(context.Background(), []ChangeRecord{rec})
	})

	// Assert
	assert.Equal(t, Summary{Records: 1, Invocations: 2, Failures: 1}, summary)
	failing.AssertExpectations(t)
	succeeding.AssertExpectations(t)
}

func TestDispatch_OnlySupportingHandlersProcess(t *testing.T) {
	interested := &mockHandler{name: "interested"}
	ignoring := &mockHandler{name: "ignoring"}
	rec := teamInsert()

	interested.On("Supports", rec).Return(true)
	interested.On("Process", mock.Anything, rec).Return(nil)
	ignoring.On("Supports", rec).Return(false)

	summary := newDispatcher(t, interested, ignoring).Dispatch(context.Background(), []ChangeRecord{rec})

	assert.Equal(t, 1, summary.Invocations)
	assert.Zero(t, summary.Failures)
	ignoring.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestDispatch_LogsAggregatedFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rec := teamInsert()

	a := &mockHandler{name: "a"}
	b := &mockHandler{name: "b"}
	c := &mockHandler{name: "c"}
	for _, h := range []*mockHandler{a, b, c} {
		h.On("Supports", rec).Return(true)
	}
	a.On("Process", mock.Anything, rec).Return(errors.New("a broke"))
	b.On("Process", mock.Anything, rec).Return(errors.New("b broke"))
	c.On("Process", mock.Anything, rec).Return(nil)

	registry, err := NewRegistry(a, b, c)
	require.NoError(t, err)
	summary := NewDispatcher(registry, zap.New(core), nil, nil, time.Second).
		Dispatch(context.Background(), []ChangeRecord{rec})

	assert.Equal(t, 2, summary.Failures)
	entries := logs.FilterMessage("Change record handlers failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 2, fields["failed"])
	assert.EqualValues(t, 3, fields["handlers"])
	assert.Equal(t, "teamchat", fields["origin"])
	assert.Len(t, fields["errors"], 2)
}

func TestDispatch_PanickingHandlerIsIsolated(t *testing.T) {
	var processed atomic.Int32
	panicking := &recordingHandler{name: "panicking", process: func(context.Context, ChangeRecord) error {
		panic("nil map write")
	}}
	healthy := &recordingHandler{name: "healthy", process: func(context.Context, ChangeRecord) error {
		processed.Add(1)
		return nil
	}}

	summary := newDispatcher(t, panicking, healthy).
		Dispatch(context.Background(), []ChangeRecord{teamInsert(), teamInsert()})

	assert.Equal(t, int32(2), processed.Load())
	assert.Equal(t, Summary{Records: 2, Invocations: 4, Failures: 2}, summary)
}

func TestDispatch_RunsHandlersConcurrently(t *testing.T) {
	// every handler waits until all three have started
	var started sync.WaitGroup
	started.Add(3)
	block := func(ctx context.Context, _ ChangeRecord) error {
		started.Done()
		done := make(chan struct{})
		go func() { started.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	h1 := &recordingHandler{name: "h1", process: block}
	h2 := &recordingHandler{name: "h2", process: block}
	h3 := &recordingHandler{name: "h3", process: block}

	summary := newDispatcher(t, h1, h2, h3).Dispatch(context.Background(), []ChangeRecord{teamInsert()})

	assert.Zero(t, summary.Failures)
}

func TestDispatch_HandlerTimeout(t *testing.T) {
	slow := &recordingHandler{name: "slow", process: func(ctx context.Context, _ ChangeRecord) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	registry, err := NewRegistry(slow)
	require.NoError(t, err)

	summary := NewDispatcher(registry, zap.NewNop(), nil, nil, 20*time.Millisecond).
		Dispatch(context.Background(), []ChangeRecord{teamInsert()})

	assert.Equal(t, 1, summary.Failures)
}

func TestDispatch_CancelledContextReachesHandlers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawCancel atomic.Bool
	h := &recordingHandler{name: "h", process: func(ctx context.Context, _ ChangeRecord) error {
		sawCancel.Store(ctx.Err() != nil)
		return ctx.Err()
	}}

	summary := newDispatcher(t, h).Dispatch(ctx, []ChangeRecord{teamInsert()})

	assert.Equal(t, 1, summary.Failures)
	assert.Eventually(t, sawCancel.Load, time.Second, time.Millisecond)
}

func TestDispatch_AbandonsHandlerIgnoringContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	stuck := &recordingHandler{name: "stuck", process: func(context.Context, ChangeRecord) error {
		<-release
		return nil
	}}
	var processed atomic.Int32
	healthy := &recordingHandler{name: "healthy", process: func(context.Context, ChangeRecord) error {
		processed.Add(1)
		return nil
	}}
	registry, err := NewRegistry(stuck, healthy)
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	dispatcher := NewDispatcher(registry, zap.New(core), nil, nil, 20*time.Millisecond)

	finished := make(chan Summary, 1)
	go func() {
		finished <- dispatcher.Dispatch(context.Background(), []ChangeRecord{teamInsert()})
	}()

	select {
	case summary := <-finished:
		assert.Equal(t, Summary{Records: 1, Invocations: 2, Failures: 1}, summary)
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch waited for a handler that ignores its context")
	}
	assert.Equal(t, int32(1), processed.Load())
	assert.Equal(t, 1, logs.FilterMessage("Handler did not return after cancellation").Len())
}

func TestDispatch_PanickingSupportsCountsAsUnsupported(t *testing.T) {
	broken := &mockHandler{name: "broken"}
	broken.On("Supports", mock.Anything).Panic("bad type assertion")
	healthy := &recordingHandler{name: "healthy"}

	summary := newDispatcher(t, broken, healthy).Dispatch(context.Background(), []ChangeRecord{teamInsert()})

	assert.Equal(t, Summary{Records: 1, Invocations: 1}, summary)
}

func TestDispatchStream_MalformedRecordDegradesToUnknown(t *testing.T) {
	// Arrange
	recorder := &recordingHandler{name: "recorder"}
	other := &recordingHandler{name: "other"}
	dispatcher := newDispatcher(t, recorder, other)

	event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		{EventID: "broken", EventName: "INSERT", EventSourceArn: "not-an-arn"},
		streamInsert("ok", map[string]events.DynamoDBAttributeValue{
			"pk":         events.NewStringAttribute("team-1"),
			"sk":         events.NewStringAttribute("team-1"),
			"entityType": events.NewStringAttribute("Team"),
		}),
	}}

	// Act
	summary := dispatcher.DispatchStream(context.Background(), event)

	// Assert
	assert.Equal(t, 2, summary.Records)
	for _, h := range []*recordingHandler{recorder, other} {
		require.Len(t, h.offered, 2)
		assert.Equal(t, UnknownRecord(), h.offered[0])
		assert.Equal(t, "", h.offered[0].Origin)
		assert.Equal(t, Unknown, h.offered[0].Kind)
		assert.Empty(t, h.offered[0].Before)
		assert.Empty(t, h.offered[0].After)

		assert.Equal(t, "teamchat", h.offered[1].Origin)
		assert.Equal(t, Insert, h.offered[1].Kind)
	}
}

func TestDispatchSNS_MalformedRecordDegradesToUnknown(t *testing.T) {
	recorder := &recordingHandler{name: "recorder"}

	event := events.SNSEvent{Records: []events.SNSEventRecord{
		{SNS: events.SNSEntity{MessageID: "m1", TopicArn: "arn:aws:sns:eu-west-1:123456789012:user-provisioned", Message: "[1,2]"}},
		{SNS: events.SNSEntity{MessageID: "m2", TopicArn: "arn:aws:sns:eu-west-1:123456789012:user-provisioned", Message: `{"id":"user-1"}`}},
	}}

	summary := newDispatcher(t, recorder).DispatchSNS(context.Background(), event)

	assert.Equal(t, Summary{Records: 2, Invocations: 2}, summary)
	require.Len(t, recorder.offered, 2)
	assert.Equal(t, Unknown, recorder.offered[0].Kind)
	assert.Equal(t, "user-provisioned", recorder.offered[1].Origin)
}

// The empty origin of a degraded record must not be mistaken for a real source.
func TestUnknownRecord_DoesNotMatchEmptyOriginHandlers(t *testing.T) {
	rec := UnknownRecord()

	assert.False(t, rec.Is("", Unknown, ""))
	assert.False(t, rec.Is("", Insert, "Team"))
	assert.Equal(t, "", string(rec.EntityType()))
	assert.NotNil(t, rec.Current())
}

func TestNewRegistry(t *testing.T) {
	t.Run("rejects nil handler", func(t *testing.T) {
		_, err := NewRegistry(&recordingHandler{name: "a"}, nil)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := NewRegistry(&recordingHandler{name: "a"}, &recordingHandler{name: "a"})
		assert.Error(t, err)
	})

	t.Run("rejects unnamed handler", func(t *testing.T) {
		_, err := NewRegistry(&recordingHandler{})
		assert.Error(t, err)
	})

	t.Run("keeps registration order", func(t *testing.T) {
		registry, err := NewRegistry(&recordingHandler{name: "b"}, &recordingHandler{name: "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, registry.Names())
		assert.Equal(t, 2, registry.Len())
	})
}

func TestDispatch_EmptyBatch(t *testing.T) {
	summary := newDispatcher(t, &recordingHandler{name: "a"}).Dispatch(context.Background(), nil)
	assert.Equal(t, Summary{}, summary)
}
