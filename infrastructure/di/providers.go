package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"teamchat/application/dispatch"
	"teamchat/application/handlers"
	"teamchat/application/ports"
	"teamchat/application/services"
	"teamchat/domain/core/entities"
	"teamchat/infrastructure/config"
	"teamchat/infrastructure/messaging/eventbridge"
	"teamchat/infrastructure/persistence/dynamodb"
	"teamchat/pkg/observability"
	"teamchat/pkg/utils"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	switch cfg.LogLevel {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
	), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) dynamodb.DynamoDBAPI {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) eventbridge.EventBridgeAPI {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client, or none when metrics are disabled
func ProvideCloudWatchClient(awsCfg aws.Config, cfg *config.Config) observability.CloudWatchAPI {
	if !cfg.EnableMetrics {
		return nil
	}
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTableConfig describes the shared table
func ProvideTableConfig(cfg *config.Config) dynamodb.TableConfig {
	table := dynamodb.NewTableConfig(cfg.TableName)
	table.IndexNames = cfg.IndexNames()
	table.DefaultPageSize = cfg.DefaultPageSize
	return table
}

// Record stores, one per entity type sharing the table

func ProvideUserStore(client dynamodb.DynamoDBAPI, table dynamodb.TableConfig, logger *zap.Logger) ports.RecordStore[entities.User] {
	return dynamodb.NewRecordStore[entities.User](client, table, logger)
}

func ProvideTeamStore(client dynamodb.DynamoDBAPI, table dynamodb.TableConfig, logger *zap.Logger) ports.RecordStore[entities.Team] {
	return dynamodb.NewRecordStore[entities.Team](client, table, logger)
}

func ProvideGroupStore(client dynamodb.DynamoDBAPI, table dynamodb.TableConfig, logger *zap.Logger) ports.RecordStore[entities.Group] {
	return dynamodb.NewRecordStore[entities.Group](client, table, logger)
}

func ProvideMeetingStore(client dynamodb.DynamoDBAPI, table dynamodb.TableConfig, logger *zap.Logger) ports.RecordStore[entities.Meeting] {
	return dynamodb.NewRecordStore[entities.Meeting](client, table, logger)
}

func ProvideMembershipStore(client dynamodb.DynamoDBAPI, table dynamodb.TableConfig, logger *zap.Logger) ports.RecordStore[entities.Membership] {
	return dynamodb.NewRecordStore[entities.Membership](client, table, logger)
}

func ProvideMessageStore(client dynamodb.DynamoDBAPI, table dynamodb.TableConfig, logger *zap.Logger) ports.RecordStore[entities.Message] {
	return dynamodb.NewRecordStore[entities.Message](client, table, logger)
}

// ProvideClock returns the wall clock
func ProvideClock() utils.Clock {
	return utils.SystemClock
}

// Entity services

func ProvideUserService(store ports.RecordStore[entities.User], clock utils.Clock, logger *zap.Logger) ports.UserService {
	return services.NewUserService(store, clock, logger)
}

func ProvideTeamService(store ports.RecordStore[entities.Team], clock utils.Clock, logger *zap.Logger) ports.TeamService {
	return services.NewTeamService(store, clock, logger)
}

func ProvideGroupService(store ports.RecordStore[entities.Group], clock utils.Clock, logger *zap.Logger) ports.GroupService {
	return services.NewGroupService(store, clock, logger)
}

func ProvideMeetingService(store ports.RecordStore[entities.Meeting], clock utils.Clock, logger *zap.Logger) ports.MeetingService {
	return services.NewMeetingService(store, clock, logger)
}

func ProvideMembershipService(store ports.RecordStore[entities.Membership], clock utils.Clock, logger *zap.Logger) ports.MembershipService {
	return services.NewMembershipService(store, clock, logger)
}

func ProvideMessageService(store ports.RecordStore[entities.Message], clock utils.Clock, logger *zap.Logger) ports.MessageService {
	return services.NewMessageService(store, clock, logger)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client observability.CloudWatchAPI, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	return observability.NewMetrics(cfg.MetricsNamespace, client, logger)
}

// ProvideTracer returns nil when tracing is disabled; a nil tracer runs functions untraced.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer(cfg.ServiceName)
}

// ProvideEventPublisher creates the EventBridge publisher
func ProvideEventPublisher(
	client eventbridge.EventBridgeAPI,
	cfg *config.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) ports.EventPublisher {
	return eventbridge.NewEventBridgePublisher(
		client,
		cfg.EventBusName,
		eventbridge.DefaultCircuitBreakerConfig("eventbridge-"+cfg.EventBusName),
		metrics,
		logger,
	)
}

// ProvideOrigins names the table and topic handlers accept records from
func ProvideOrigins(cfg *config.Config) handlers.Origins {
	return handlers.Origins{
		Table:     cfg.TableName,
		UserTopic: cfg.UserTopicName,
	}
}

// ProvideRegistry assembles every change handler
func ProvideRegistry(
	origins handlers.Origins,
	users ports.UserService,
	teams ports.TeamService,
	groups ports.GroupService,
	memberships ports.MembershipService,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) (*dispatch.Registry, error) {
	return dispatch.NewRegistry(
		handlers.NewMessageSentHandler(origins, memberships, teams, groups, publisher, logger),
		handlers.NewReactionChangedHandler(origins, publisher, logger),
		handlers.NewMembershipHandler(origins, publisher),
		handlers.NewMeetingScheduledHandler(origins, memberships, publisher, logger),
		handlers.NewTeamCreatedHandler(origins, memberships, publisher),
		handlers.NewUserProvisionedHandler(origins, users, logger),
	)
}

// ProvideDispatcher creates the change dispatcher
func ProvideDispatcher(
	registry *dispatch.Registry,
	logger *zap.Logger,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	cfg *config.Config,
) *dispatch.Dispatcher {
	return dispatch.NewDispatcher(registry, logger, metrics, tracer, cfg.HandlerTimeout)
}
