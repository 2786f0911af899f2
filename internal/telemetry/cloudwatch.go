package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"weatherview/internal/types"
)

// publishTimeout bounds PutMetricData calls made without a caller context.
const publishTimeout = 2 * time.Second

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder implements Recorder by emitting metrics to AWS CloudWatch.
//
// Metrics emitted:
//   - LookupCompleted: Dims {Query, Outcome}, on every resolved lookup
//   - LookupLatency: Dims {Query}, provider round trip in milliseconds
//   - APIRequestCount: Dims {Method, Endpoint, Status}
//   - APILatency: Dims {Method, Endpoint}
type CloudWatchRecorder struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

var _ Recorder = (*CloudWatchRecorder)(nil)

// NewCloudWatchRecorder creates a recorder publishing to namespace. An empty
// namespace falls back to types.MetricNamespace.
func NewCloudWatchRecorder(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchRecorder {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchRecorder{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordLookup emits LookupCompleted and LookupLatency for one lookup.
func (r *CloudWatchRecorder) RecordLookup(ctx context.Context, query string, outcome Outcome, duration time.Duration) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricLookupCompleted),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(types.DimQuery), Value: aws.String(query)},
					{Name: aws.String(types.DimOutcome), Value: aws.String(string(outcome))},
				},
			},
			{
				MetricName: aws.String(types.MetricLookupLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(types.DimQuery), Value: aws.String(query)},
				},
			},
		},
	}

	if _, err := r.client.PutMetricData(ctx, input); err != nil {
		r.logger.Error("failed to record lookup metric",
			"error", err.Error(),
			"query", query,
			"outcome", string(outcome),
		)
	}
}

// RecordRequest emits APIRequestCount and APILatency for one HTTP request.
func (r *CloudWatchRecorder) RecordRequest(method, endpoint, status string, duration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricAPIRequestCount),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(types.DimMethod), Value: aws.String(method)},
					{Name: aws.String(types.DimEndpoint), Value: aws.String(endpoint)},
					{Name: aws.String(types.DimStatus), Value: aws.String(status)},
				},
			},
			{
				MetricName: aws.String(types.MetricAPILatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(types.DimMethod), Value: aws.String(method)},
					{Name: aws.String(types.DimEndpoint), Value: aws.String(endpoint)},
				},
			},
		},
	}

	if _, err := r.client.PutMetricData(ctx, input); err != nil {
		r.logger.Error("failed to record request metric",
			"error", err.Error(),
			"method", method,
			"endpoint", endpoint,
			"status", status,
		)
	}
}
