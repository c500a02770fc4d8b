package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/keys"
	pkgerrors "teamchat/pkg/errors"
	"teamchat/pkg/utils"
)

const unreadMessagesAttr = "unreadMessages"

// MembershipService tracks conversation members and their unread messages
type MembershipService struct {
	store  ports.RecordStore[entities.Membership]
	clock  utils.Clock
	logger *zap.Logger
}

var _ ports.MembershipService = (*MembershipService)(nil)

func NewMembershipService(store ports.RecordStore[entities.Membership], clock utils.Clock, logger *zap.Logger) *MembershipService {
	return &MembershipService{store: store, clock: clock, logger: logger}
}

// Add creates a membership. It fails with ALREADY_EXISTS when the user is
// already a member; the existing role is left untouched.
func (s *MembershipService) Add(ctx context.Context, input ports.AddMemberInput) (entities.Membership, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return entities.Membership{}, err
	}
	if input.ConversationType == entities.TypeMeeting && input.DueAt.IsZero() {
		return entities.Membership{}, pkgerrors.NewValidationError("dueat is required for meeting members")
	}

	role := input.Role
	if role == "" {
		role = entities.RoleMember
	}

	now := s.clock.Now()
	membership := entities.Membership{
		UserID:           input.UserID,
		ConversationID:   input.ConversationID,
		ConversationType: input.ConversationType,
		Role:             role,
		JoinedAt:         now,
		LastActiveAt:     now,
	}
	if input.ConversationType == entities.TypeMeeting {
		membership.DueAt = input.DueAt.UTC()
	}

	if err := s.store.Put(ctx, membership); err != nil {
		return entities.Membership{}, pkgerrors.Wrap(err, "add member")
	}

	s.logger.Debug("Member added",
		zap.String("userID", membership.UserID),
		zap.String("conversationID", membership.ConversationID),
		zap.String("role", string(membership.Role)),
	)
	return membership, nil
}

func (s *MembershipService) Remove(ctx context.Context, userID, conversationID string) error {
	if err := utils.RequireNonEmpty("userId", userID, "conversationId", conversationID); err != nil {
		return err
	}
	return s.store.Delete(ctx, keys.MembershipKey(userID, conversationID))
}

// IsMember reports whether the membership record exists.
func (s *MembershipService) IsMember(ctx context.Context, userID, conversationID string) (bool, error) {
	_, err := s.store.Get(ctx, keys.MembershipKey(userID, conversationID))
	if pkgerrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListForUser returns the user's memberships of one conversation type. Meetings
// are ordered by due time, soonest first; teams and groups by activity, newest first.
func (s *MembershipService) ListForUser(ctx context.Context, userID string, target entities.EntityType, page ports.PageRequest) (ports.Page[entities.Membership], error) {
	if !target.IsConversation() {
		return ports.Page[entities.Membership]{}, pkgerrors.NewValidationError(fmt.Sprintf("%q is not a conversation type", target))
	}

	req := ports.QueryRequest{
		Index:     keys.GSI1,
		Partition: userID,
		Sort:      ports.SortPrefix(keys.ActivePrefix(target)),
		Cursor:    page.Cursor,
		Limit:     page.Limit,
	}
	if target == entities.TypeMeeting {
		req.Sort = ports.SortPrefix(keys.DuePrefix())
		req.ScanForward = true
	}
	return s.store.Query(ctx, req)
}

// ListMembers returns the memberships of a conversation ordered by user id.
func (s *MembershipService) ListMembers(ctx context.Context, conversationID string, page ports.PageRequest) (ports.Page[entities.Membership], error) {
	return s.store.Query(ctx, ports.QueryRequest{
		Index:       keys.GSI2,
		Partition:   conversationID,
		Sort:        ports.SortPrefix(keys.PrefixUser),
		Cursor:      page.Cursor,
		Limit:       page.Limit,
		ScanForward: true,
	})
}

// Touch moves a team or group membership up the user's activity listing.
// Meeting memberships are ordered by due time and only get their timestamp updated.
func (s *MembershipService) Touch(ctx context.Context, membership entities.Membership, at time.Time) error {
	updates := map[string]any{"lastActiveAt": at.UTC()}
	if membership.ConversationType != entities.TypeMeeting {
		updates[keys.GSI1.SortAttr()] = keys.ActiveSK(membership.ConversationType, at)
	}
	_, err := s.store.Update(ctx, keys.MembershipKey(membership.UserID, membership.ConversationID), updates)
	return err
}

// SetDue copies a meeting's due time onto one of its memberships.
func (s *MembershipService) SetDue(ctx context.Context, userID, meetingID string, dueAt time.Time) error {
	_, err := s.store.Update(ctx, keys.MembershipKey(userID, meetingID), map[string]any{
		"dueAt":              dueAt.UTC(),
		keys.GSI1.SortAttr(): keys.DueSK(dueAt),
	})
	return err
}

// AddUnread adds message ids to the member's unread set.
func (s *MembershipService) AddUnread(ctx context.Context, userID, conversationID string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return s.store.AddToSet(ctx, keys.MembershipKey(userID, conversationID), unreadMessagesAttr, messageIDs...)
}

// MarkRead removes message ids from the member's unread set.
func (s *MembershipService) MarkRead(ctx context.Context, userID, conversationID string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return s.store.RemoveFromSet(ctx, keys.MembershipKey(userID, conversationID), unreadMessagesAttr, messageIDs...)
}
