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

// TeamService creates and lists teams
type TeamService struct {
	store  ports.RecordStore[entities.Team]
	clock  utils.Clock
	logger *zap.Logger
}

var _ ports.TeamService = (*TeamService)(nil)

// NewTeamService creates a new team service
func NewTeamService(store ports.RecordStore[entities.Team], clock utils.Clock, logger *zap.Logger) *TeamService {
	return &TeamService{store: store, clock: clock, logger: logger}
}

// Create stores a new team. Adding the creator as admin happens when the
// insert reaches the stream.
func (s *TeamService) Create(ctx context.Context, input ports.CreateTeamInput) (entities.Team, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return entities.Team{}, err
	}

	now := s.clock.Now()
	team := entities.Team{
		ID:             keys.NewID(keys.PrefixTeam),
		OrganizationID: input.OrganizationID,
		Name:           input.Name,
		CreatedBy:      input.CreatedBy,
		CreatedAt:      now,
		LastActiveAt:   now,
	}

	if err := s.store.Put(ctx, team); err != nil {
		return entities.Team{}, pkgerrors.Wrap(err, "create team")
	}

	s.logger.Info("Team created",
		zap.String("teamID", team.ID),
		zap.String("organizationID", team.OrganizationID),
	)
	return team, nil
}

func (s *TeamService) Get(ctx context.Context, teamID string) (entities.Team, error) {
	return s.store.Get(ctx, keys.EntityKey(teamID))
}

// ListByOrganization returns the organization's teams, most recently active first.
func (s *TeamService) ListByOrganization(ctx context.Context, organizationID string, page ports.PageRequest) (ports.Page[entities.Team], error) {
	return s.store.Query(ctx, ports.QueryRequest{
		Index:     keys.GSI1,
		Partition: organizationID,
		Sort:      ports.SortPrefix(keys.ActivePrefix(entities.TypeTeam)),
		Cursor:    page.Cursor,
		Limit:     page.Limit,
	})
}

// Touch moves the team's activity timestamp and its position in the organization listing.
func (s *TeamService) Touch(ctx context.Context, teamID string, at time.Time) error {
	_, err := s.store.Update(ctx, keys.EntityKey(teamID), map[string]any{
		"lastActiveAt":       at.UTC(),
		keys.GSI1.SortAttr(): keys.ActiveSK(entities.TypeTeam, at),
	})
	return err
}
