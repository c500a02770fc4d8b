package handlers

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"teamchat/application/dispatch"
	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/events"
)

// MessageSentHandler marks a new message unread for every other member,
// bumps the conversation's activity and announces the message.
type MessageSentHandler struct {
	origins     Origins
	memberships ports.MembershipService
	teams       ports.TeamService
	groups      ports.GroupService
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

func NewMessageSentHandler(
	origins Origins,
	memberships ports.MembershipService,
	teams ports.TeamService,
	groups ports.GroupService,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *MessageSentHandler {
	return &MessageSentHandler{
		origins:     origins,
		memberships: memberships,
		teams:       teams,
		groups:      groups,
		publisher:   publisher,
		logger:      logger,
	}
}

func (h *MessageSentHandler) Name() string { return "MessageSent" }

func (h *MessageSentHandler) Supports(rec dispatch.ChangeRecord) bool {
	return rec.Is(h.origins.Table, dispatch.Insert, entities.TypeMessage)
}

// Process keeps going after a member fails so one bad membership does not
// hide the message from everyone else.
func (h *MessageSentHandler) Process(ctx context.Context, rec dispatch.ChangeRecord) error {
	msg, err := decodeImage[entities.Message](rec.After)
	if err != nil {
		return err
	}

	var errs error
	var recipients []string
	err = forEachMember(ctx, h.memberships, msg.ConversationID, func(m entities.Membership) error {
		if m.UserID != msg.SenderID {
			recipients = append(recipients, m.UserID)
			errs = multierr.Append(errs, h.memberships.AddUnread(ctx, m.UserID, msg.ConversationID, msg.ID))
		}
		errs = multierr.Append(errs, h.memberships.Touch(ctx, m, msg.SentAt))
		return nil
	})
	if err != nil {
		return err
	}

	errs = multierr.Append(errs, h.touchConversation(ctx, msg.ConversationID, msg.SentAt))
	if errs != nil {
		return errs
	}

	h.logger.Debug("Message fanned out",
		zap.String("messageID", msg.ID),
		zap.String("conversationID", msg.ConversationID),
		zap.Int("recipients", len(recipients)),
	)

	return h.publisher.Publish(ctx, events.NewMessageSent(msg.ID, msg.ConversationID, msg.SenderID, recipients, msg.SentAt))
}

func (h *MessageSentHandler) touchConversation(ctx context.Context, conversationID string, at time.Time) error {
	switch conversationType(conversationID) {
	case entities.TypeTeam:
		return h.teams.Touch(ctx, conversationID, at)
	case entities.TypeGroup:
		return h.groups.Touch(ctx, conversationID, at)
	}
	// meetings are ordered by due time
	return nil
}
