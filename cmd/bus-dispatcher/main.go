// Package main implements the Lambda that dispatches SNS notifications from
// upstream services, such as newly provisioned users.
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

	logger.Info("Bus dispatcher initialized", zap.String("userTopic", cfg.UserTopicName))
}

func handleNotifications(ctx context.Context, event awsevents.SNSEvent) error {
	summary := dispatcher.DispatchSNS(ctx, event)

	logger.Debug("Notification batch handled",
		zap.Int("records", summary.Records),
		zap.Int("invocations", summary.Invocations),
		zap.Int("failures", summary.Failures),
	)
	_ = logger.Sync()
	return nil
}

func main() {
	lambda.Start(handleNotifications)
}
