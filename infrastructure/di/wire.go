//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"teamchat/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideTableConfig,
	ProvideUserStore,
	ProvideTeamStore,
	ProvideGroupStore,
	ProvideMeetingStore,
	ProvideMembershipStore,
	ProvideMessageStore,
	ProvideClock,
	ProvideUserService,
	ProvideTeamService,
	ProvideGroupService,
	ProvideMeetingService,
	ProvideMembershipService,
	ProvideMessageService,
	ProvideMetrics,
	ProvideTracer,
	ProvideEventPublisher,
	ProvideOrigins,
	ProvideRegistry,
	ProvideDispatcher,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
