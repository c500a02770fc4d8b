package di

import (
	"go.uber.org/zap"

	"teamchat/application/dispatch"
	"teamchat/application/ports"
	"teamchat/infrastructure/config"
	"teamchat/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Dispatcher *dispatch.Dispatcher
	Metrics    *observability.Metrics
	Publisher  ports.EventPublisher

	Users       ports.UserService
	Teams       ports.TeamService
	Groups      ports.GroupService
	Meetings    ports.MeetingService
	Memberships ports.MembershipService
	Messages    ports.MessageService
}

// Shutdown flushes buffered log entries
func (c *Container) Shutdown() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
