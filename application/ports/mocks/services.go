package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/events"
)

type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *EventPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return m.Called(ctx, batch).Error(0)
}

type TeamService struct {
	mock.Mock
}

func (m *TeamService) Create(ctx context.Context, input ports.CreateTeamInput) (entities.Team, error) {
	args := m.Called(ctx, input)
	v, _ := args.Get(0).(entities.Team)
	return v, args.Error(1)
}

func (m *TeamService) Get(ctx context.Context, teamID string) (entities.Team, error) {
	args := m.Called(ctx, teamID)
	v, _ := args.Get(0).(entities.Team)
	return v, args.Error(1)
}

func (m *TeamService) ListByOrganization(ctx context.Context, organizationID string, page ports.PageRequest) (ports.Page[entities.Team], error) {
	args := m.Called(ctx, organizationID, page)
	v, _ := args.Get(0).(ports.Page[entities.Team])
	return v, args.Error(1)
}

func (m *TeamService) Touch(ctx context.Context, teamID string, at time.Time) error {
	return m.Called(ctx, teamID, at).Error(0)
}

type GroupService struct {
	mock.Mock
}

func (m *GroupService) Create(ctx context.Context, input ports.CreateGroupInput) (entities.Group, error) {
	args := m.Called(ctx, input)
	v, _ := args.Get(0).(entities.Group)
	return v, args.Error(1)
}

func (m *GroupService) Get(ctx context.Context, groupID string) (entities.Group, error) {
	args := m.Called(ctx, groupID)
	v, _ := args.Get(0).(entities.Group)
	return v, args.Error(1)
}

func (m *GroupService) ListByTeam(ctx context.Context, teamID string, page ports.PageRequest) (ports.Page[entities.Group], error) {
	args := m.Called(ctx, teamID, page)
	v, _ := args.Get(0).(ports.Page[entities.Group])
	return v, args.Error(1)
}

func (m *GroupService) Touch(ctx context.Context, groupID string, at time.Time) error {
	return m.Called(ctx, groupID, at).Error(0)
}

type MembershipService struct {
	mock.Mock
}

func (m *MembershipService) Add(ctx context.Context, input ports.AddMemberInput) (entities.Membership, error) {
	args := m.Called(ctx, input)
	v, _ := args.Get(0).(entities.Membership)
	return v, args.Error(1)
}

func (m *MembershipService) Remove(ctx context.Context, userID, conversationID string) error {
	return m.Called(ctx, userID, conversationID).Error(0)
}

func (m *MembershipService) IsMember(ctx context.Context, userID, conversationID string) (bool, error) {
	args := m.Called(ctx, userID, conversationID)
	return args.Bool(0), args.Error(1)
}

func (m *MembershipService) ListForUser(ctx context.Context, userID string, target entities.EntityType, page ports.PageRequest) (ports.Page[entities.Membership], error) {
	args := m.Called(ctx, userID, target, page)
	v, _ := args.Get(0).(ports.Page[entities.Membership])
	return v, args.Error(1)
}

func (m *MembershipService) ListMembers(ctx context.Context, conversationID string, page ports.PageRequest) (ports.Page[entities.Membership], error) {
	args := m.Called(ctx, conversationID, page)
	v, _ := args.Get(0).(ports.Page[entities.Membership])
	return v, args.Error(1)
}

func (m *MembershipService) Touch(ctx context.Context, membership entities.Membership, at time.Time) error {
	return m.Called(ctx, membership, at).Error(0)
}

func (m *MembershipService) SetDue(ctx context.Context, userID, meetingID string, dueAt time.Time) error {
	return m.Called(ctx, userID, meetingID, dueAt).Error(0)
}

func (m *MembershipService) AddUnread(ctx context.Context, userID, conversationID string, messageIDs ...string) error {
	return m.Called(ctx, userID, conversationID, messageIDs).Error(0)
}

func (m *MembershipService) MarkRead(ctx context.Context, userID, conversationID string, messageIDs ...string) error {
	return m.Called(ctx, userID, conversationID, messageIDs).Error(0)
}

type UserService struct {
	mock.Mock
}

func (m *UserService) Provision(ctx context.Context, input ports.ProvisionUserInput) (entities.User, error) {
	args := m.Called(ctx, input)
	v, _ := args.Get(0).(entities.User)
	return v, args.Error(1)
}

func (m *UserService) Get(ctx context.Context, userID string) (entities.User, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(entities.User)
	return v, args.Error(1)
}

func (m *UserService) GetByEmail(ctx context.Context, email string) (entities.User, error) {
	args := m.Called(ctx, email)
	v, _ := args.Get(0).(entities.User)
	return v, args.Error(1)
}

var (
	_ ports.EventPublisher    = (*EventPublisher)(nil)
	_ ports.TeamService       = (*TeamService)(nil)
	_ ports.GroupService      = (*GroupService)(nil)
	_ ports.MembershipService = (*MembershipService)(nil)
	_ ports.UserService       = (*UserService)(nil)
)
