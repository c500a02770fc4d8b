package handlers

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"teamchat/application/dispatch"
	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/events"
)

const dueAtAttr = "dueAt"

// MeetingScheduledHandler adds the organizer to a new meeting, keeps member
// due times in step when the meeting moves and announces the schedule.
type MeetingScheduledHandler struct {
	origins     Origins
	memberships ports.MembershipService
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

func NewMeetingScheduledHandler(origins Origins, memberships ports.MembershipService, publisher ports.EventPublisher, logger *zap.Logger) *MeetingScheduledHandler {
	return &MeetingScheduledHandler{origins: origins, memberships: memberships, publisher: publisher, logger: logger}
}

func (h *MeetingScheduledHandler) Name() string { return "MeetingScheduled" }

func (h *MeetingScheduledHandler) Supports(rec dispatch.ChangeRecord) bool {
	if rec.Is(h.origins.Table, dispatch.Insert, entities.TypeMeeting) {
		return true
	}
	return rec.Is(h.origins.Table, dispatch.Modify, entities.TypeMeeting) &&
		rec.Before.String(dueAtAttr) != rec.After.String(dueAtAttr)
}

func (h *MeetingScheduledHandler) Process(ctx context.Context, rec dispatch.ChangeRecord) error {
	meeting, err := decodeImage[entities.Meeting](rec.After)
	if err != nil {
		return err
	}

	var previous *entities.Meeting
	switch rec.Kind {
	case dispatch.Insert:
		_, err = h.memberships.Add(ctx, ports.AddMemberInput{
			UserID:           meeting.OrganizerID,
			ConversationID:   meeting.ID,
			ConversationType: entities.TypeMeeting,
			Role:             entities.RoleAdmin,
			DueAt:            meeting.DueAt,
		})
		if err = ignoreExisting(err); err != nil {
			return fmt.Errorf("add organizer: %w", err)
		}
	case dispatch.Modify:
		before, err := decodeImage[entities.Meeting](rec.Before)
		if err != nil {
			return err
		}
		previous = &before
		if err := h.moveMembers(ctx, meeting); err != nil {
			return err
		}
	}

	event := events.NewMeetingScheduled(meeting.ID, meeting.TeamID, meeting.DueAt, nil, dispatchTime(rec))
	if previous != nil {
		event.PreviousDueAt = &previous.DueAt
	}
	return h.publisher.Publish(ctx, event)
}

func (h *MeetingScheduledHandler) moveMembers(ctx context.Context, meeting entities.Meeting) error {
	var errs error
	moved := 0
	err := forEachMember(ctx, h.memberships, meeting.ID, func(m entities.Membership) error {
		if err := h.memberships.SetDue(ctx, m.UserID, meeting.ID, meeting.DueAt); err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		moved++
		return nil
	})
	if err != nil {
		return err
	}

	h.logger.Debug("Meeting members moved",
		zap.String("meetingID", meeting.ID),
		zap.Int("moved", moved),
		zap.Int("failed", len(multierr.Errors(errs))),
	)
	return errs
}
