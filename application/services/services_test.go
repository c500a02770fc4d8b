package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamchat/application/ports"
	"teamchat/application/ports/mocks"
	"teamchat/domain/core/entities"
	"teamchat/domain/keys"
	"teamchat/infrastructure/persistence/dynamodb"
	dynamocks "teamchat/infrastructure/persistence/dynamodb/mocks"
	pkgerrors "teamchat/pkg/errors"
	"teamchat/pkg/utils"
)

var (
	ctx   = context.Background()
	now   = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	clock = utils.FixedClock(now)
)

func TestTeamService_Create(t *testing.T) {
	store := new(mocks.RecordStore[entities.Team])
	svc := NewTeamService(store, clock, zap.NewNop())

	store.On("Put", ctx, mock.MatchedBy(func(team entities.Team) bool {
		return strings.HasPrefix(team.ID, keys.PrefixTeam) &&
			team.Name == "Platform" &&
			team.CreatedAt.Equal(now) &&
			team.LastActiveAt.Equal(now)
	})).Return(nil)

	team, err := svc.Create(ctx, ports.CreateTeamInput{
		OrganizationID: "organization-1",
		Name:           "Platform",
		CreatedBy:      "user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "organization-1", team.OrganizationID)
	store.AssertExpectations(t)
}

func TestTeamService_CreateValidates(t *testing.T) {
	store := new(mocks.RecordStore[entities.Team])
	svc := NewTeamService(store, clock, zap.NewNop())

	_, err := svc.Create(ctx, ports.CreateTeamInput{OrganizationID: "organization-1"})

	assert.True(t, pkgerrors.IsValidation(err))
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestTeamService_CreateKeepsStoreErrorType(t *testing.T) {
	store := new(mocks.RecordStore[entities.Team])
	svc := NewTeamService(store, clock, zap.NewNop())
	storeErr := pkgerrors.NewAlreadyExistsError("team")
	store.On("Put", ctx, mock.Anything).Return(storeErr)

	_, err := svc.Create(ctx, ports.CreateTeamInput{OrganizationID: "organization-1", Name: "x", CreatedBy: "user-1"})

	assert.ErrorIs(t, err, pkgerrors.ErrAlreadyExists)
	assert.True(t, pkgerrors.IsAlreadyExists(err))
	assert.Contains(t, err.Error(), "create team: team already exists")
	assert.Equal(t, "team already exists", storeErr.Message)
}

func TestTeamService_CreateWrapsForeignStoreError(t *testing.T) {
	store := new(mocks.RecordStore[entities.Team])
	svc := NewTeamService(store, clock, zap.NewNop())
	boom := errors.New("throttled")
	store.On("Put", ctx, mock.Anything).Return(boom)

	_, err := svc.Create(ctx, ports.CreateTeamInput{OrganizationID: "organization-1", Name: "x", CreatedBy: "user-1"})

	assert.ErrorIs(t, err, boom)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInternal))
}

func TestTeamService_ListAndTouch(t *testing.T) {
	store := new(mocks.RecordStore[entities.Team])
	svc := NewTeamService(store, clock, zap.NewNop())

	store.On("Query", ctx, ports.QueryRequest{
		Index:     keys.GSI1,
		Partition: "organization-1",
		Sort:      ports.SortPrefix("team-active-"),
		Cursor:    "abc",
		Limit:     10,
	}).Return(ports.Page[entities.Team]{Items: []entities.Team{{ID: "team-1"}}}, nil)

	page, err := svc.ListByOrganization(ctx, "organization-1", ports.PageRequest{Cursor: "abc", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	store.On("Update", ctx, keys.EntityKey("team-1"), map[string]any{
		"lastActiveAt": now,
		"gsi1sk":       "team-active-" + keys.Timestamp(now),
	}).Return(entities.Team{}, nil)

	require.NoError(t, svc.Touch(ctx, "team-1", now))
	store.AssertExpectations(t)
}

func TestGroupService_TouchUpdatesBothListings(t *testing.T) {
	store := new(mocks.RecordStore[entities.Group])
	svc := NewGroupService(store, clock, zap.NewNop())

	sk := "group-active-" + keys.Timestamp(now)
	store.On("Update", ctx, keys.EntityKey("group-1"), map[string]any{
		"lastActiveAt": now,
		"gsi1sk":       sk,
		"gsi2sk":       sk,
	}).Return(entities.Group{}, nil)

	require.NoError(t, svc.Touch(ctx, "group-1", now))
	store.AssertExpectations(t)
}

func TestGroupService_ListByTeam(t *testing.T) {
	store := new(mocks.RecordStore[entities.Group])
	svc := NewGroupService(store, clock, zap.NewNop())

	store.On("Query", ctx, mock.MatchedBy(func(req ports.QueryRequest) bool {
		return req.Index == keys.GSI2 && req.Partition == "team-1" && req.Sort.Values[0] == "group-active-"
	})).Return(ports.Page[entities.Group]{}, nil)

	_, err := svc.ListByTeam(ctx, "team-1", ports.PageRequest{})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestMeetingService_Schedule(t *testing.T) {
	store := new(mocks.RecordStore[entities.Meeting])
	svc := NewMeetingService(store, clock, zap.NewNop())
	due := now.Add(48 * time.Hour)

	store.On("Put", ctx, mock.MatchedBy(func(m entities.Meeting) bool {
		return strings.HasPrefix(m.ID, keys.PrefixMeeting) && m.DueAt.Equal(due)
	})).Return(nil)

	meeting, err := svc.Schedule(ctx, ports.ScheduleMeetingInput{
		OrganizationID: "organization-1",
		TeamID:         "team-1",
		Title:          "Planning",
		OrganizerID:    "user-1",
		DueAt:          due,
	})

	require.NoError(t, err)
	assert.Equal(t, "team-1", meeting.TeamID)

	_, err = svc.Schedule(ctx, ports.ScheduleMeetingInput{
		OrganizationID: "organization-1",
		TeamID:         "team-1",
		Title:          "Planning",
		OrganizerID:    "user-1",
	})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestMeetingService_ListUpcomingByTeam(t *testing.T) {
	store := new(mocks.RecordStore[entities.Meeting])
	svc := NewMeetingService(store, clock, zap.NewNop())

	store.On("Query", ctx, ports.QueryRequest{
		Index:       keys.GSI2,
		Partition:   "team-1",
		Sort:        ports.SortRange("meeting-due-"+keys.Timestamp(now), "meeting-due-~"),
		ScanForward: true,
	}).Return(ports.Page[entities.Meeting]{}, nil)

	_, err := svc.ListUpcomingByTeam(ctx, "team-1", now, ports.PageRequest{})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestMeetingService_Reschedule(t *testing.T) {
	store := new(mocks.RecordStore[entities.Meeting])
	svc := NewMeetingService(store, clock, zap.NewNop())
	due := now.Add(time.Hour)
	sk := "meeting-due-" + keys.Timestamp(due)

	store.On("Update", ctx, keys.EntityKey("meeting-1"), map[string]any{
		"dueAt":  due,
		"gsi1sk": sk,
		"gsi2sk": sk,
	}).Return(entities.Meeting{ID: "meeting-1", DueAt: due}, nil)

	meeting, err := svc.Reschedule(ctx, "meeting-1", due)
	require.NoError(t, err)
	assert.Equal(t, due, meeting.DueAt)

	store.On("Update", ctx, keys.EntityKey("meeting-404"), mock.Anything).
		Return(entities.Meeting{}, pkgerrors.NewNotFoundError("meeting-404"))

	_, err = svc.Reschedule(ctx, "meeting-404", due)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestMembershipService_Add(t *testing.T) {
	t.Run("defaults role to member", func(t *testing.T) {
		store := new(mocks.RecordStore[entities.Membership])
		svc := NewMembershipService(store, clock, zap.NewNop())

		store.On("Put", ctx, entities.Membership{
			UserID:           "user-1",
			ConversationID:   "team-1",
			ConversationType: entities.TypeTeam,
			Role:             entities.RoleMember,
			JoinedAt:         now,
			LastActiveAt:     now,
		}).Return(nil)

		m, err := svc.Add(ctx, ports.AddMemberInput{UserID: "user-1", ConversationID: "team-1", ConversationType: entities.TypeTeam})
		require.NoError(t, err)
		assert.Equal(t, entities.RoleMember, m.Role)
		store.AssertExpectations(t)
	})

	t.Run("meeting members need a due time", func(t *testing.T) {
		svc := NewMembershipService(new(mocks.RecordStore[entities.Membership]), clock, zap.NewNop())

		_, err := svc.Add(ctx, ports.AddMemberInput{UserID: "user-1", ConversationID: "meeting-1", ConversationType: entities.TypeMeeting})
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("rejects non conversation types", func(t *testing.T) {
		svc := NewMembershipService(new(mocks.RecordStore[entities.Membership]), clock, zap.NewNop())

		_, err := svc.Add(ctx, ports.AddMemberInput{UserID: "user-1", ConversationID: "message-1", ConversationType: entities.TypeMessage})
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestMembershipService_IsMember(t *testing.T) {
	store := new(mocks.RecordStore[entities.Membership])
	svc := NewMembershipService(store, clock, zap.NewNop())

	store.On("Get", ctx, keys.MembershipKey("user-1", "team-1")).Return(entities.Membership{UserID: "user-1"}, nil)
	store.On("Get", ctx, keys.MembershipKey("user-2", "team-1")).Return(entities.Membership{}, pkgerrors.NewNotFoundError("membership"))
	boom := errors.New("throttled")
	store.On("Get", ctx, keys.MembershipKey("user-3", "team-1")).Return(entities.Membership{}, boom)

	ok, err := svc.IsMember(ctx, "user-1", "team-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsMember(ctx, "user-2", "team-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.IsMember(ctx, "user-3", "team-1")
	assert.Same(t, boom, err)
}

func TestMembershipService_ListForUser(t *testing.T) {
	store := new(mocks.RecordStore[entities.Membership])
	svc := NewMembershipService(store, clock, zap.NewNop())

	store.On("Query", ctx, ports.QueryRequest{
		Index:     keys.GSI1,
		Partition: "user-1",
		Sort:      ports.SortPrefix("group-active-"),
	}).Return(ports.Page[entities.Membership]{}, nil).Once()
	store.On("Query", ctx, ports.QueryRequest{
		Index:       keys.GSI1,
		Partition:   "user-1",
		Sort:        ports.SortPrefix("meeting-due-"),
		ScanForward: true,
	}).Return(ports.Page[entities.Membership]{}, nil).Once()

	_, err := svc.ListForUser(ctx, "user-1", entities.TypeGroup, ports.PageRequest{})
	require.NoError(t, err)
	_, err = svc.ListForUser(ctx, "user-1", entities.TypeMeeting, ports.PageRequest{})
	require.NoError(t, err)
	_, err = svc.ListForUser(ctx, "user-1", entities.TypeUser, ports.PageRequest{})
	assert.True(t, pkgerrors.IsValidation(err))

	store.AssertExpectations(t)
}

func TestMembershipService_ListMembers(t *testing.T) {
	store := new(mocks.RecordStore[entities.Membership])
	svc := NewMembershipService(store, clock, zap.NewNop())

	store.On("Query", ctx, ports.QueryRequest{
		Index:       keys.GSI2,
		Partition:   "team-1",
		Sort:        ports.SortPrefix("user-"),
		Limit:       50,
		ScanForward: true,
	}).Return(ports.Page[entities.Membership]{NextCursor: "next"}, nil)

	page, err := svc.ListMembers(ctx, "team-1", ports.PageRequest{Limit: 50})
	require.NoError(t, err)
	assert.True(t, page.HasMore())
}

func TestMembershipService_Touch(t *testing.T) {
	store := new(mocks.RecordStore[entities.Membership])
	svc := NewMembershipService(store, clock, zap.NewNop())

	store.On("Update", ctx, keys.MembershipKey("user-1", "team-1"), map[string]any{
		"lastActiveAt": now,
		"gsi1sk":       "team-active-" + keys.Timestamp(now),
	}).Return(entities.Membership{}, nil)
	store.On("Update", ctx, keys.MembershipKey("user-1", "meeting-1"), map[string]any{
		"lastActiveAt": now,
	}).Return(entities.Membership{}, nil)

	require.NoError(t, svc.Touch(ctx, entities.Membership{UserID: "user-1", ConversationID: "team-1", ConversationType: entities.TypeTeam}, now))
	require.NoError(t, svc.Touch(ctx, entities.Membership{UserID: "user-1", ConversationID: "meeting-1", ConversationType: entities.TypeMeeting}, now))
	store.AssertExpectations(t)
}

func TestMembershipService_UnreadSet(t *testing.T) {
	store := new(mocks.RecordStore[entities.Membership])
	svc := NewMembershipService(store, clock, zap.NewNop())
	key := keys.MembershipKey("user-1", "team-1")

	store.On("AddToSet", ctx, key, "unreadMessages", []string{"message-1", "message-2"}).Return(nil)
	store.On("RemoveFromSet", ctx, key, "unreadMessages", []string{"message-1"}).Return(nil)

	require.NoError(t, svc.AddUnread(ctx, "user-1", "team-1", "message-1", "message-2"))
	require.NoError(t, svc.MarkRead(ctx, "user-1", "team-1", "message-1"))
	require.NoError(t, svc.MarkRead(ctx, "user-1", "team-1"))

	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "RemoveFromSet", 1)
}

func TestMembershipService_UnreadOnFreshMembership(t *testing.T) {
	client := new(dynamocks.MockClient)
	store := dynamodb.NewRecordStore[entities.Membership](client, dynamodb.NewTableConfig("teamchat"), zap.NewNop())
	svc := NewMembershipService(store, clock, zap.NewNop())

	var stored map[string]types.AttributeValue
	client.On("PutItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*awsdynamodb.PutItemInput).Item }).
		Return(&awsdynamodb.PutItemOutput{}, nil)
	var updates []*awsdynamodb.UpdateItemInput
	client.On("UpdateItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { updates = append(updates, args.Get(1).(*awsdynamodb.UpdateItemInput)) }).
		Return(&awsdynamodb.UpdateItemOutput{}, nil)

	_, err := svc.Add(ctx, ports.AddMemberInput{
		UserID:           "user-2",
		ConversationID:   "team-1",
		ConversationType: entities.TypeTeam,
	})
	require.NoError(t, err)
	assert.NotContains(t, stored, "unreadMessages")

	require.NoError(t, svc.AddUnread(ctx, "user-2", "team-1", "message-1"))
	require.NoError(t, svc.MarkRead(ctx, "user-2", "team-1", "message-1"))

	require.Len(t, updates, 2)
	assert.Equal(t, "ADD #p0 :v0", aws.ToString(updates[0].UpdateExpression))
	assert.Equal(t, "DELETE #p0 :v0", aws.ToString(updates[1].UpdateExpression))
	assert.Equal(t, "unreadMessages", updates[0].ExpressionAttributeNames["#p0"])
}

func TestMembershipService_Remove(t *testing.T) {
	store := new(mocks.RecordStore[entities.Membership])
	svc := NewMembershipService(store, clock, zap.NewNop())
	store.On("Delete", ctx, keys.MembershipKey("user-1", "team-1")).Return(nil)

	require.NoError(t, svc.Remove(ctx, "user-1", "team-1"))
	assert.True(t, pkgerrors.IsValidation(svc.Remove(ctx, "", "team-1")))
}

func TestMessageService_Send(t *testing.T) {
	store := new(mocks.RecordStore[entities.Message])
	svc := NewMessageService(store, clock, zap.NewNop())

	store.On("Put", ctx, mock.MatchedBy(func(m entities.Message) bool {
		return strings.HasPrefix(m.ID, keys.PrefixMessage) && m.Reactions != nil && m.SentAt.Equal(now)
	})).Return(nil)

	msg, err := svc.Send(ctx, ports.SendMessageInput{ConversationID: "team-1", SenderID: "user-1", Body: "hello"})
	require.NoError(t, err)
	assert.NotNil(t, msg.Reactions)
	store.AssertExpectations(t)
}

func TestMessageService_Reactions(t *testing.T) {
	store := new(mocks.RecordStore[entities.Message])
	svc := NewMessageService(store, clock, zap.NewNop())
	key := keys.MessageKey("message-1")

	store.On("AddToSet", ctx, key, "reactions.thumbsup", []string{"user-2"}).Return(nil)
	store.On("RemoveFromSet", ctx, key, "reactions.thumbsup", []string{"user-2"}).Return(nil)

	require.NoError(t, svc.AddReaction(ctx, "message-1", "thumbsup", "user-2"))
	require.NoError(t, svc.RemoveReaction(ctx, "message-1", "thumbsup", "user-2"))

	assert.True(t, pkgerrors.IsValidation(svc.AddReaction(ctx, "message-1", "a.b", "user-2")))
	assert.True(t, pkgerrors.IsValidation(svc.AddReaction(ctx, "message-1", "", "user-2")))
	store.AssertExpectations(t)
}

func TestMessageService_ListAndDelete(t *testing.T) {
	store := new(mocks.RecordStore[entities.Message])
	svc := NewMessageService(store, clock, zap.NewNop())

	store.On("Query", ctx, ports.QueryRequest{
		Index:     keys.GSI1,
		Partition: "team-1",
		Sort:      ports.SortPrefix("message-sent-"),
	}).Return(ports.Page[entities.Message]{}, nil)
	store.On("Delete", ctx, keys.MessageKey("message-1")).Return(nil)

	_, err := svc.ListForConversation(ctx, "team-1", ports.PageRequest{})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "message-1"))
	store.AssertExpectations(t)
}

func TestUserService_Provision(t *testing.T) {
	store := new(mocks.RecordStore[entities.User])
	svc := NewUserService(store, clock, zap.NewNop())

	store.On("Put", ctx, mock.MatchedBy(func(u entities.User) bool {
		return u.ID == "user-42" && u.Email == "ann@example.com"
	})).Return(nil)

	user, err := svc.Provision(ctx, ports.ProvisionUserInput{
		ID:             "user-42",
		OrganizationID: "organization-1",
		Email:          " Ann@Example.com",
		DisplayName:    "Ann",
	})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)

	_, err = svc.Provision(ctx, ports.ProvisionUserInput{
		ID:             "42",
		OrganizationID: "organization-1",
		Email:          "ann@example.com",
		DisplayName:    "Ann",
	})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestUserService_GetByEmail(t *testing.T) {
	store := new(mocks.RecordStore[entities.User])
	svc := NewUserService(store, clock, zap.NewNop())

	store.On("Query", ctx, ports.QueryRequest{Index: keys.GSI2, Partition: "ann@example.com", Limit: 1}).
		Return(ports.Page[entities.User]{Items: []entities.User{{ID: "user-1"}}}, nil)
	store.On("Query", ctx, ports.QueryRequest{Index: keys.GSI2, Partition: "bob@example.com", Limit: 1}).
		Return(ports.Page[entities.User]{}, nil)

	user, err := svc.GetByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	_, err = svc.GetByEmail(ctx, "bob@example.com")
	assert.True(t, pkgerrors.IsNotFound(err))
}
