// Package main implements the Lambda that fans DynamoDB stream batches of the
// shared table out to the registered change handlers.
package main

import (
	"context"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"teamchat/application/dispatch"
	"teamchat/infrastructure/config"
	"teamchat/infrastructure/di"
)

// Global dependencies for Lambda performance optimization
var (
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
)

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	dispatcher = container.Dispatcher
	logger = container.Logger

	logger.Info("Stream dispatcher initialized", zap.String("table", cfg.TableName))
}

// handleStream never fails the batch: handler failures are logged by the
// dispatcher and a retry would redeliver records that already succeeded.
func handleStream(ctx context.Context, event awsevents.DynamoDBEvent) error {
	summary := dispatcher.DispatchStream(ctx, event)

	logger.Debug("Stream batch handled",
		zap.Int("records", summary.Records),
		zap.Int("invocations", summary.Invocations),
		zap.Int("failures", summary.Failures),
	)
	_ = logger.Sync()
	return nil
}

func main() {
	lambda.Start(handleStream)
}
