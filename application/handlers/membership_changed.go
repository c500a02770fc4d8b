package handlers

import (
	"context"
	"fmt"

	"teamchat/application/dispatch"
	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/events"
)

// MembershipHandler announces members joining and leaving conversations.
type MembershipHandler struct {
	origins   Origins
	publisher ports.EventPublisher
}

func NewMembershipHandler(origins Origins, publisher ports.EventPublisher) *MembershipHandler {
	return &MembershipHandler{origins: origins, publisher: publisher}
}

func (h *MembershipHandler) Name() string { return "Membership" }

func (h *MembershipHandler) Supports(rec dispatch.ChangeRecord) bool {
	return rec.Is(h.origins.Table, dispatch.Insert, entities.TypeMembership) ||
		rec.Is(h.origins.Table, dispatch.Remove, entities.TypeMembership)
}

func (h *MembershipHandler) Process(ctx context.Context, rec dispatch.ChangeRecord) error {
	m, err := decodeImage[entities.Membership](rec.Current())
	if err != nil {
		return err
	}

	var event events.DomainEvent
	switch rec.Kind {
	case dispatch.Insert:
		event = events.NewMemberAdded(m.UserID, m.ConversationID, string(m.ConversationType), string(m.Role), dispatchTime(rec))
	case dispatch.Remove:
		event = events.NewMemberRemoved(m.UserID, m.ConversationID, string(m.ConversationType), dispatchTime(rec))
	default:
		return fmt.Errorf("unexpected %s membership change", rec.Kind)
	}
	return h.publisher.Publish(ctx, event)
}
