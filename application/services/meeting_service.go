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

// upperBound sorts after every digit of a timestamp.
const upperBound = "~"

// MeetingService schedules meetings
type MeetingService struct {
	store  ports.RecordStore[entities.Meeting]
	clock  utils.Clock
	logger *zap.Logger
}

var _ ports.MeetingService = (*MeetingService)(nil)

func NewMeetingService(store ports.RecordStore[entities.Meeting], clock utils.Clock, logger *zap.Logger) *MeetingService {
	return &MeetingService{store: store, clock: clock, logger: logger}
}

// Schedule stores a new meeting. The organizer joins when the insert reaches the stream.
func (s *MeetingService) Schedule(ctx context.Context, input ports.ScheduleMeetingInput) (entities.Meeting, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return entities.Meeting{}, err
	}
	if input.DueAt.IsZero() {
		return entities.Meeting{}, pkgerrors.NewValidationError("dueat is required")
	}

	meeting := entities.Meeting{
		ID:             keys.NewID(keys.PrefixMeeting),
		OrganizationID: input.OrganizationID,
		TeamID:         input.TeamID,
		Title:          input.Title,
		OrganizerID:    input.OrganizerID,
		DueAt:          input.DueAt.UTC(),
		CreatedAt:      s.clock.Now(),
	}

	if err := s.store.Put(ctx, meeting); err != nil {
		return entities.Meeting{}, pkgerrors.Wrap(err, "schedule meeting")
	}

	s.logger.Info("Meeting scheduled",
		zap.String("meetingID", meeting.ID),
		zap.String("teamID", meeting.TeamID),
		zap.Time("dueAt", meeting.DueAt),
	)
	return meeting, nil
}

func (s *MeetingService) Get(ctx context.Context, meetingID string) (entities.Meeting, error) {
	return s.store.Get(ctx, keys.EntityKey(meetingID))
}

// ListUpcomingByTeam returns the team's meetings due at or after from, soonest first.
func (s *MeetingService) ListUpcomingByTeam(ctx context.Context, teamID string, from time.Time, page ports.PageRequest) (ports.Page[entities.Meeting], error) {
	return s.store.Query(ctx, ports.QueryRequest{
		Index:       keys.GSI2,
		Partition:   teamID,
		Sort:        ports.SortRange(keys.DueSK(from), keys.DuePrefix()+upperBound),
		Cursor:      page.Cursor,
		Limit:       page.Limit,
		ScanForward: true,
	})
}

// Reschedule moves the meeting's due time in both listings.
func (s *MeetingService) Reschedule(ctx context.Context, meetingID string, dueAt time.Time) (entities.Meeting, error) {
	if dueAt.IsZero() {
		return entities.Meeting{}, pkgerrors.NewValidationError("dueat is required")
	}

	sk := keys.DueSK(dueAt)
	return s.store.Update(ctx, keys.EntityKey(meetingID), map[string]any{
		"dueAt":              dueAt.UTC(),
		keys.GSI1.SortAttr(): sk,
		keys.GSI2.SortAttr(): sk,
	})
}
