package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/keys"
	pkgerrors "teamchat/pkg/errors"
	"teamchat/pkg/utils"
)

// GroupService creates and lists groups
type GroupService struct {
	store  ports.RecordStore[entities.Group]
	clock  utils.Clock
	logger *zap.Logger
}

var _ ports.GroupService = (*GroupService)(nil)

func NewGroupService(store ports.RecordStore[entities.Group], clock utils.Clock, logger *zap.Logger) *GroupService {
	return &GroupService{store: store, clock: clock, logger: logger}
}

func (s *GroupService) Create(ctx context.Context, input ports.CreateGroupInput) (entities.Group, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return entities.Group{}, err
	}

	now := s.clock.Now()
	group := entities.Group{
		ID:             keys.NewID(keys.PrefixGroup),
		OrganizationID: input.OrganizationID,
		TeamID:         input.TeamID,
		Name:           input.Name,
		CreatedBy:      input.CreatedBy,
		CreatedAt:      now,
		LastActiveAt:   now,
	}

	if err := s.store.Put(ctx, group); err != nil {
		return entities.Group{}, pkgerrors.Wrap(err, "create group")
	}

	s.logger.Info("Group created",
		zap.String("groupID", group.ID),
		zap.String("teamID", group.TeamID),
	)
	return group, nil
}

func (s *GroupService) Get(ctx context.Context, groupID string) (entities.Group, error) {
	return s.store.Get(ctx, keys.EntityKey(groupID))
}

// ListByTeam returns the team's groups, most recently active first.
func (s *GroupService) ListByTeam(ctx context.Context, teamID string, page ports.PageRequest) (ports.Page[entities.Group], error) {
	return s.store.Query(ctx, ports.QueryRequest{
		Index:     keys.GSI2,
		Partition: teamID,
		Sort:      ports.SortPrefix(keys.ActivePrefix(entities.TypeGroup)),
		Cursor:    page.Cursor,
		Limit:     page.Limit,
	})
}

// Touch updates the activity timestamp in both the organization and team listings.
func (s *GroupService) Touch(ctx context.Context, groupID string, at time.Time) error {
	sk := keys.ActiveSK(entities.TypeGroup, at)
	_, err := s.store.Update(ctx, keys.EntityKey(groupID), map[string]any{
		"lastActiveAt":       at.UTC(),
		keys.GSI1.SortAttr(): sk,
		keys.GSI2.SortAttr(): sk,
	})
	return err
}
