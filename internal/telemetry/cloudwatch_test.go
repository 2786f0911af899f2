package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"weatherview/internal/types"
)

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cloudwatch.PutMetricDataOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dimensions(d cwtypes.MetricDatum) map[string]string {
	out := make(map[string]string, len(d.Dimensions))
	for _, dim := range d.Dimensions {
		out[aws.ToString(dim.Name)] = aws.ToString(dim.Value)
	}
	return out
}

func TestCloudWatchRecorder_RecordLookup(t *testing.T) {
	cw := &mockCloudWatch{}
	var captured *cloudwatch.PutMetricDataInput
	cw.On("PutMetricData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*cloudwatch.PutMetricDataInput)
		}).
		Return(&cloudwatch.PutMetricDataOutput{}, nil)

	rec := NewCloudWatchRecorder(cw, "", discardLogger())
	rec.RecordLookup(context.Background(), "forecast", OutcomeFailed, 1500*time.Millisecond)

	cw.AssertNumberOfCalls(t, "PutMetricData", 1)
	require.NotNil(t, captured)
	assert.Equal(t, types.MetricNamespace, aws.ToString(captured.Namespace))
	require.Len(t, captured.MetricData, 2)

	count := captured.MetricData[0]
	assert.Equal(t, types.MetricLookupCompleted, aws.ToString(count.MetricName))
	assert.Equal(t, 1.0, aws.ToFloat64(count.Value))
	assert.Equal(t, map[string]string{
		types.DimQuery:   "forecast",
		types.DimOutcome: "failed",
	}, dimensions(count))

	latency := captured.MetricData[1]
	assert.Equal(t, types.MetricLookupLatency, aws.ToString(latency.MetricName))
	assert.Equal(t, 1500.0, aws.ToFloat64(latency.Value))
	assert.Equal(t, cwtypes.StandardUnitMilliseconds, latency.Unit)
}

func TestCloudWatchRecorder_RecordRequest(t *testing.T) {
	cw := &mockCloudWatch{}
	var captured *cloudwatch.PutMetricDataInput
	cw.On("PutMetricData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*cloudwatch.PutMetricDataInput)
		}).
		Return(&cloudwatch.PutMetricDataOutput{}, nil)

	rec := NewCloudWatchRecorder(cw, "WeatherViewTest", discardLogger())
	rec.RecordRequest("GET", "/v1/weather/current", "200", 12*time.Millisecond)

	require.NotNil(t, captured)
	assert.Equal(t, "WeatherViewTest", aws.ToString(captured.Namespace))
	require.Len(t, captured.MetricData, 2)
	assert.Equal(t, types.MetricAPIRequestCount, aws.ToString(captured.MetricData[0].MetricName))
	assert.Equal(t, map[string]string{
		types.DimMethod:   "GET",
		types.DimEndpoint: "/v1/weather/current",
		types.DimStatus:   "200",
	}, dimensions(captured.MetricData[0]))
	assert.Equal(t, types.MetricAPILatency, aws.ToString(captured.MetricData[1].MetricName))
	assert.Equal(t, 12.0, aws.ToFloat64(captured.MetricData[1].Value))
}

func TestCloudWatchRecorder_PublishErrorIsSwallowed(t *testing.T) {
	cw := &mockCloudWatch{}
	cw.On("PutMetricData", mock.Anything, mock.Anything).
		Return(nil, errors.New("throttled"))

	rec := NewCloudWatchRecorder(cw, "", discardLogger())

	assert.NotPanics(t, func() {
		rec.RecordLookup(context.Background(), "current", OutcomeSucceeded, time.Second)
		rec.RecordRequest("POST", "/v1/weather/forecast", "202", time.Millisecond)
	})
	cw.AssertNumberOfCalls(t, "PutMetricData", 2)
}

func TestNopRecorder(t *testing.T) {
	var rec Recorder = NopRecorder{}
	assert.NotPanics(t, func() {
		rec.RecordLookup(context.Background(), "current", OutcomeSucceeded, time.Second)
		rec.RecordRequest("GET", "/health", "200", time.Millisecond)
	})
}
