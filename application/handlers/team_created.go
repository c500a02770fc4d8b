package handlers

import (
	"context"
	"fmt"

	"teamchat/application/dispatch"
	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/events"
)

// TeamCreatedHandler makes the creator of a new team its admin.
type TeamCreatedHandler struct {
	origins     Origins
	memberships ports.MembershipService
	publisher   ports.EventPublisher
}

func NewTeamCreatedHandler(origins Origins, memberships ports.MembershipService, publisher ports.EventPublisher) *TeamCreatedHandler {
	return &TeamCreatedHandler{origins: origins, memberships: memberships, publisher: publisher}
}

func (h *TeamCreatedHandler) Name() string { return "TeamCreated" }

func (h *TeamCreatedHandler) Supports(rec dispatch.ChangeRecord) bool {
	return rec.Is(h.origins.Table, dispatch.Insert, entities.TypeTeam)
}

func (h *TeamCreatedHandler) Process(ctx context.Context, rec dispatch.ChangeRecord) error {
	team, err := decodeImage[entities.Team](rec.After)
	if err != nil {
		return err
	}

	_, err = h.memberships.Add(ctx, ports.AddMemberInput{
		UserID:           team.CreatedBy,
		ConversationID:   team.ID,
		ConversationType: entities.TypeTeam,
		Role:             entities.RoleAdmin,
	})
	if err = ignoreExisting(err); err != nil {
		return fmt.Errorf("add creator: %w", err)
	}

	return h.publisher.Publish(ctx, events.NewTeamCreated(team.ID, team.OrganizationID, team.CreatedBy, team.CreatedAt))
}
