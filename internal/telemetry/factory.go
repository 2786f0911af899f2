package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"weatherview/internal/config"
)

// NewRecorder returns a CloudWatchRecorder when metrics are enabled and a
// NopRecorder otherwise. AWS credentials resolve through the default chain.
func NewRecorder(ctx context.Context, cfg config.MetricsConfig, logger *slog.Logger) (Recorder, error) {
	if !cfg.Enabled {
		return NopRecorder{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS SDK config: %w", err)
	}

	return NewCloudWatchRecorder(cloudwatch.NewFromConfig(awsCfg), cfg.Namespace, logger), nil
}
