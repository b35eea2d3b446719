package memberships

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/internal/groups"
	"github.com/squadlog/squadlog-backend/internal/notifications"
	"github.com/squadlog/squadlog-backend/pkg/config"
	"github.com/squadlog/squadlog-backend/pkg/db"
	"github.com/squadlog/squadlog-backend/pkg/db/dbtest"
	"github.com/squadlog/squadlog-backend/pkg/db/models"
	"github.com/squadlog/squadlog-backend/pkg/enums"
	pkgerrors "github.com/squadlog/squadlog-backend/pkg/errors"
	"github.com/squadlog/squadlog-backend/pkg/invitecode"
	"github.com/squadlog/squadlog-backend/pkg/logger"
	"github.com/squadlog/squadlog-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inviteCodePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

type recordingSink struct {
	mu  sync.Mutex
	got []notifications.Request
	err error
}

func (s *recordingSink) Emit(_ context.Context, req notifications.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, req)
	return s.err
}

func (s *recordingSink) sent() []notifications.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notifications.Request(nil), s.got...)
}

type sequenceGenerator struct {
	mu    sync.Mutex
	codes []string
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.codes) == 0 {
		return "", errors.New("no codes left")
	}
	code := g.codes[0]
	if len(g.codes) > 1 {
		g.codes = g.codes[1:]
	}
	return code, nil
}

type harness struct {
	engine  Engine
	client  *db.Client
	groups  groups.Repository
	members Repository
	sink    *recordingSink
}

func newHarness(t *testing.T, opts ...func(*EngineDeps)) *harness {
	t.Helper()
	client := dbtest.Open(t)
	h := &harness{
		client:  client,
		groups:  groups.NewRepository(client.DB()),
		members: NewRepository(client.DB()),
		sink:    &recordingSink{},
	}
	deps := EngineDeps{
		Tx:          client,
		Groups:      h.groups,
		Memberships: h.members,
		Codes:       invitecode.NewRandomGenerator(nil),
		Sink:        h.sink,
		Logger:      logger.Nop(),
		Rules: config.GroupsConfig{
			MaxApprovedGroups:     2,
			InviteCodeMaxAttempts: 16,
		},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	engine, err := NewEngine(deps)
	require.NoError(t, err)
	h.engine = engine
	return h
}

func (h *harness) createGroup(t *testing.T, leader uuid.UUID, name string) groups.GroupDTO {
	t.Helper()
	res, err := h.engine.CreateGroup(context.Background(), CreateGroupInput{ActorID: leader, Name: name})
	require.NoError(t, err)
	return res.Group
}

func (h *harness) addMember(t *testing.T, groupID, leader, user uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	_, err := h.engine.RequestJoin(ctx, user, JoinTarget{GroupID: groupID})
	require.NoError(t, err)
	_, err = h.engine.ApproveRequest(ctx, MemberActionInput{ActorID: leader, GroupID: groupID, TargetUserID: user})
	require.NoError(t, err)
}

func (h *harness) membership(t *testing.T, groupID, userID uuid.UUID) *models.GroupMember {
	t.Helper()
	m, err := h.members.GetMembership(context.Background(), groupID, userID)
	if err != nil {
		return nil
	}
	return m
}

func (h *harness) countRows(t *testing.T, where string, args ...any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.client.DB().Model(&models.GroupMember{}).Where(where, args...).Count(&count).Error)
	return count
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestNewEngineValidatesDependencies(t *testing.T) {
	_, err := NewEngine(EngineDeps{})
	require.Error(t, err)

	h := newHarness(t)
	_, err = NewEngine(EngineDeps{
		Tx:          h.client,
		Groups:      h.groups,
		Memberships: h.members,
		Codes:       invitecode.NewRandomGenerator(nil),
		Sink:        h.sink,
		Logger:      logger.Nop(),
	})
	require.Error(t, err)
}

func TestCreateGroup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader := uuid.New()

	res, err := h.engine.CreateGroup(ctx, CreateGroupInput{ActorID: leader, Name: "  Foo "})
	require.NoError(t, err)
	assert.Equal(t, "Foo", res.Group.Name)
	assert.Regexp(t, inviteCodePattern, res.Group.InviteCode)
	assert.False(t, res.Group.IsPublic)
	assert.Equal(t, leader, res.Group.CreatorID)
	assert.Equal(t, enums.GroupRoleLeader, res.Leader.Role)
	assert.Equal(t, enums.MembershipStatusApproved, res.Leader.Status)

	m := h.membership(t, res.Group.ID, leader)
	require.NotNil(t, m)
	assert.True(t, m.IsApprovedLeader())
	assert.Empty(t, h.sink.sent())
}

func TestCreateGroupValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.engine.CreateGroup(ctx, CreateGroupInput{ActorID: uuid.New(), Name: "   "})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = h.engine.CreateGroup(ctx, CreateGroupInput{Name: "Foo"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestCreateGroupRetriesInviteCodeCollision(t *testing.T) {
	gen := &sequenceGenerator{codes: []string{"AAAA1111", "AAAA1111", "BBBB2222"}}
	h := newHarness(t, func(d *EngineDeps) { d.Codes = gen })

	first := h.createGroup(t, uuid.New(), "first")
	second := h.createGroup(t, uuid.New(), "second")

	assert.Equal(t, "AAAA1111", first.InviteCode)
	assert.Equal(t, "BBBB2222", second.InviteCode)
	assert.Zero(t, h.countRows(t, "group_id NOT IN (?, ?)", first.ID, second.ID))
}

func TestCreateGroupCodeSpaceExhausted(t *testing.T) {
	gen := &sequenceGenerator{codes: []string{"SAME0000"}}
	h := newHarness(t, func(d *EngineDeps) {
		d.Codes = gen
		d.Rules.InviteCodeMaxAttempts = 3
	})

	h.createGroup(t, uuid.New(), "first")
	_, err := h.engine.CreateGroup(context.Background(), CreateGroupInput{ActorID: uuid.New(), Name: "second"})
	requireCode(t, err, pkgerrors.CodeCodeSpaceExhausted)
}

func TestScenarioB_RequestAndApprove(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, requester := uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")

	res, err := h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)
	assert.Equal(t, group.ID, res.GroupID)
	assert.Equal(t, enums.MembershipStatusPending, res.Request.Status)
	assert.Equal(t, enums.GroupRoleMember, res.Request.Role)

	sent := h.sink.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, leader, sent[0].RecipientID)
	assert.Equal(t, requester, sent[0].SenderID)
	assert.Equal(t, enums.NotificationTypeGroupRequest, sent[0].Kind)

	approved, err := h.engine.ApproveRequest(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: requester})
	require.NoError(t, err)
	assert.Equal(t, enums.MembershipStatusApproved, approved.Status)

	m := h.membership(t, group.ID, requester)
	require.NotNil(t, m)
	assert.Equal(t, enums.MembershipStatusApproved, m.Status)
	assert.Equal(t, enums.GroupRoleMember, m.Role)

	sent = h.sink.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, requester, sent[1].RecipientID)
	assert.Equal(t, enums.NotificationTypeGroupApproved, sent[1].Kind)
	assert.Equal(t, "/groups/"+group.ID.String(), sent[1].Link)

	assert.Zero(t, h.countRows(t, "group_id = ? AND status = ?", group.ID, enums.MembershipStatusPending))
}

func TestRequestJoinByInviteCodeIsCaseInsensitive(t *testing.T) {
	h := newHarness(t)
	group := h.createGroup(t, uuid.New(), "Foo")

	res, err := h.engine.RequestJoin(context.Background(), uuid.New(), JoinTarget{InviteCode: " " + strings.ToLower(group.InviteCode) + " "})
	require.NoError(t, err)
	assert.Equal(t, group.ID, res.GroupID)
}

func TestRequestJoinErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, requester := uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")

	_, err := h.engine.RequestJoin(ctx, requester, JoinTarget{})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = h.engine.RequestJoin(ctx, requester, JoinTarget{InviteCode: "short"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = h.engine.RequestJoin(ctx, requester, JoinTarget{InviteCode: "ZZZZZZZZ"})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: uuid.New()})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = h.engine.RequestJoin(ctx, leader, JoinTarget{GroupID: group.ID})
	requireCode(t, err, pkgerrors.CodeAlreadyMember)

	_, err = h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)
	_, err = h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	requireCode(t, err, pkgerrors.CodeAlreadyRequested)

	assert.EqualValues(t, 1, h.countRows(t, "group_id = ? AND user_id = ?", group.ID, requester))
}

func TestScenarioD_GroupLimit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()
	h.createGroup(t, user, "one")
	h.createGroup(t, user, "two")
	third := h.createGroup(t, uuid.New(), "three")

	_, err := h.engine.RequestJoin(ctx, user, JoinTarget{GroupID: third.ID})
	requireCode(t, err, pkgerrors.CodeGroupLimitExceeded)
	assert.Nil(t, h.membership(t, third.ID, user))

	_, err = h.engine.CreateGroup(ctx, CreateGroupInput{ActorID: user, Name: "four"})
	require.NoError(t, err, "creating a group is not gated by the request-time cap")
}

func TestPendingRequestsDoNotCountTowardsLimit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()
	h.createGroup(t, user, "mine")

	for i := 0; i < 3; i++ {
		g := h.createGroup(t, uuid.New(), "other")
		_, err := h.engine.RequestJoin(ctx, user, JoinTarget{GroupID: g.ID})
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, h.countRows(t, "user_id = ? AND status = ?", user, enums.MembershipStatusPending))
}

func TestScenarioC_LeaderLeaves(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, member := uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")
	h.addMember(t, group.ID, leader, member)

	_, err := h.engine.LeaveGroup(ctx, leader, group.ID)
	requireCode(t, err, pkgerrors.CodeLeaderMustTransferFirst)

	require.NoError(t, h.engine.KickMember(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: member}))
	assert.Nil(t, h.membership(t, group.ID, member))

	pending := uuid.New()
	_, err = h.engine.RequestJoin(ctx, pending, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)

	res, err := h.engine.LeaveGroup(ctx, leader, group.ID)
	require.NoError(t, err)
	assert.True(t, res.GroupDeleted)

	_, err = h.groups.FindByID(ctx, group.ID)
	require.Error(t, err)
	assert.Zero(t, h.countRows(t, "group_id = ?", group.ID))

	_, err = h.engine.LeaveGroup(ctx, leader, group.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestMemberLeaves(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, member := uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")
	h.addMember(t, group.ID, leader, member)

	res, err := h.engine.LeaveGroup(ctx, member, group.ID)
	require.NoError(t, err)
	assert.False(t, res.GroupDeleted)
	assert.Nil(t, h.membership(t, group.ID, member))

	_, err = h.engine.LeaveGroup(ctx, member, group.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestPendingRequesterCannotLeave(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	group := h.createGroup(t, uuid.New(), "Foo")
	requester := uuid.New()
	_, err := h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)

	_, err = h.engine.LeaveGroup(ctx, requester, group.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestScenarioE_ConcurrentRequestJoin(t *testing.T) {
	h := newHarness(t)
	group := h.createGroup(t, uuid.New(), "Foo")
	requester := uuid.New()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = h.engine.RequestJoin(context.Background(), requester, JoinTarget{GroupID: group.ID})
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, already int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case pkgerrors.HasCode(err, pkgerrors.CodeAlreadyRequested):
			already++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, already)
	assert.EqualValues(t, 1, h.countRows(t, "group_id = ? AND user_id = ?", group.ID, requester))
}

func TestCancelThenRequestReproducesPendingRow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	group := h.createGroup(t, uuid.New(), "Foo")
	requester := uuid.New()

	first, err := h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)
	require.NoError(t, h.engine.CancelJoinRequest(ctx, requester, group.ID))
	assert.Nil(t, h.membership(t, group.ID, requester))

	second, err := h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)

	assert.Equal(t, first.Request.GroupID, second.Request.GroupID)
	assert.Equal(t, first.Request.UserID, second.Request.UserID)
	assert.Equal(t, first.Request.Role, second.Request.Role)
	assert.Equal(t, first.Request.Status, second.Request.Status)
	assert.EqualValues(t, 1, h.countRows(t, "group_id = ? AND user_id = ?", group.ID, requester))

	err = h.engine.CancelJoinRequest(ctx, uuid.New(), group.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestApproveDoesNotRecheckLimitByDefault(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, user := uuid.New(), uuid.New()
	target := h.createGroup(t, leader, "target")
	h.createGroup(t, user, "own one")

	_, err := h.engine.RequestJoin(ctx, user, JoinTarget{GroupID: target.ID})
	require.NoError(t, err)
	h.createGroup(t, user, "own two")

	_, err = h.engine.ApproveRequest(ctx, MemberActionInput{ActorID: leader, GroupID: target.ID, TargetUserID: user})
	require.NoError(t, err)
	assert.EqualValues(t, 3, h.countRows(t, "user_id = ? AND status = ?", user, enums.MembershipStatusApproved))
}

func TestApproveRechecksLimitWhenEnabled(t *testing.T) {
	h := newHarness(t, func(d *EngineDeps) { d.Rules.RecheckLimitOnApprove = true })
	ctx := context.Background()
	leader, user := uuid.New(), uuid.New()
	target := h.createGroup(t, leader, "target")
	h.createGroup(t, user, "own one")

	_, err := h.engine.RequestJoin(ctx, user, JoinTarget{GroupID: target.ID})
	require.NoError(t, err)
	h.createGroup(t, user, "own two")

	_, err = h.engine.ApproveRequest(ctx, MemberActionInput{ActorID: leader, GroupID: target.ID, TargetUserID: user})
	requireCode(t, err, pkgerrors.CodeGroupLimitExceeded)

	m := h.membership(t, target.ID, user)
	require.NotNil(t, m)
	assert.Equal(t, enums.MembershipStatusPending, m.Status)
}

func TestApproveAndRejectAuthorization(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, member, requester := uuid.New(), uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")
	h.addMember(t, group.ID, leader, member)
	_, err := h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)

	_, err = h.engine.ApproveRequest(ctx, MemberActionInput{ActorID: member, GroupID: group.ID, TargetUserID: requester})
	requireCode(t, err, pkgerrors.CodeForbidden)

	err = h.engine.RejectRequest(ctx, MemberActionInput{ActorID: requester, GroupID: group.ID, TargetUserID: requester})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = h.engine.ApproveRequest(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: uuid.New()})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = h.engine.ApproveRequest(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: member})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = h.engine.ApproveRequest(ctx, MemberActionInput{ActorID: leader, GroupID: uuid.New(), TargetUserID: requester})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestRejectRequest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, requester := uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")
	_, err := h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)

	require.NoError(t, h.engine.RejectRequest(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: requester}))
	assert.Nil(t, h.membership(t, group.ID, requester))

	sent := h.sink.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, requester, sent[1].RecipientID)
	assert.Equal(t, enums.NotificationTypeGroupRequest, sent[1].Kind)
	assert.Equal(t, "/groups/explore", sent[1].Link)

	err = h.engine.RejectRequest(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: requester})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestKickMemberErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, member, requester := uuid.New(), uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")
	h.addMember(t, group.ID, leader, member)
	_, err := h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)

	err = h.engine.KickMember(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: leader})
	requireCode(t, err, pkgerrors.CodeSelfKickForbidden)

	err = h.engine.KickMember(ctx, MemberActionInput{ActorID: member, GroupID: group.ID, TargetUserID: leader})
	requireCode(t, err, pkgerrors.CodeForbidden)

	err = h.engine.KickMember(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: requester})
	requireCode(t, err, pkgerrors.CodeNotFound)

	err = h.engine.KickMember(ctx, MemberActionInput{ActorID: leader, GroupID: uuid.New(), TargetUserID: member})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteGroupRemovesAllRows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, member, requester := uuid.New(), uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")
	h.addMember(t, group.ID, leader, member)
	_, err := h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)

	err = h.engine.DeleteGroup(ctx, member, group.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	require.NoError(t, h.engine.DeleteGroup(ctx, leader, group.ID))
	assert.Zero(t, h.countRows(t, "group_id = ?", group.ID))
	_, err = h.groups.FindByID(ctx, group.ID)
	require.Error(t, err)

	err = h.engine.DeleteGroup(ctx, leader, group.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateGroupSettingsPartial(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, member := uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")
	h.addMember(t, group.ID, leader, member)

	public := true
	updated, err := h.engine.UpdateGroupSettings(ctx, UpdateSettingsInput{
		ActorID:      leader,
		GroupID:      group.ID,
		IsPublic:     &public,
		WhatsappLink: types.SetString("https://chat.whatsapp.com/abc"),
	})
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)
	require.NotNil(t, updated.WhatsappLink)
	assert.Equal(t, "https://chat.whatsapp.com/abc", *updated.WhatsappLink)

	updated, err = h.engine.UpdateGroupSettings(ctx, UpdateSettingsInput{
		ActorID:      leader,
		GroupID:      group.ID,
		WhatsappLink: types.SetNull(),
	})
	require.NoError(t, err)
	assert.True(t, updated.IsPublic, "omitted field stays unchanged")
	assert.Nil(t, updated.WhatsappLink)

	updated, err = h.engine.UpdateGroupSettings(ctx, UpdateSettingsInput{
		ActorID:      leader,
		GroupID:      group.ID,
		WhatsappLink: types.SetString(""),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.WhatsappLink)
	assert.Equal(t, "", *updated.WhatsappLink)

	unchanged, err := h.engine.UpdateGroupSettings(ctx, UpdateSettingsInput{ActorID: leader, GroupID: group.ID})
	require.NoError(t, err)
	assert.True(t, unchanged.IsPublic)

	_, err = h.engine.UpdateGroupSettings(ctx, UpdateSettingsInput{ActorID: member, GroupID: group.ID, IsPublic: &public})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = h.engine.UpdateGroupSettings(ctx, UpdateSettingsInput{ActorID: uuid.New(), GroupID: group.ID, IsPublic: &public})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestTransferLeadership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, member := uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")
	h.addMember(t, group.ID, leader, member)

	err := h.engine.TransferLeadership(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: leader})
	requireCode(t, err, pkgerrors.CodeValidation)

	err = h.engine.TransferLeadership(ctx, MemberActionInput{ActorID: member, GroupID: group.ID, TargetUserID: leader})
	requireCode(t, err, pkgerrors.CodeForbidden)

	err = h.engine.TransferLeadership(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: uuid.New()})
	requireCode(t, err, pkgerrors.CodeNotFound)

	require.NoError(t, h.engine.TransferLeadership(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: member}))
	assert.EqualValues(t, 1, h.countRows(t, "group_id = ? AND role = ? AND status = ?", group.ID, enums.GroupRoleLeader, enums.MembershipStatusApproved))
	assert.True(t, h.membership(t, group.ID, member).IsApprovedLeader())
	assert.Equal(t, enums.GroupRoleMember, h.membership(t, group.ID, leader).Role)

	sent := h.sink.sent()
	last := sent[len(sent)-1]
	assert.Equal(t, member, last.RecipientID)
	assert.Equal(t, enums.NotificationTypeGroupLeadership, last.Kind)

	res, err := h.engine.LeaveGroup(ctx, leader, group.ID)
	require.NoError(t, err)
	assert.False(t, res.GroupDeleted)
}

func TestNotificationFailureDoesNotUndoTransition(t *testing.T) {
	h := newHarness(t)
	h.sink.err = errors.New("sink offline")
	ctx := context.Background()
	group := h.createGroup(t, uuid.New(), "Foo")
	requester := uuid.New()

	res, err := h.engine.RequestJoin(ctx, requester, JoinTarget{GroupID: group.ID})
	require.NoError(t, err)
	assert.Equal(t, enums.MembershipStatusPending, res.Request.Status)
	assert.NotNil(t, h.membership(t, group.ID, requester))
	assert.Len(t, h.sink.sent(), 1)
}

func TestFailedOperationEmitsNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	leader, member := uuid.New(), uuid.New()
	group := h.createGroup(t, leader, "Foo")

	_, err := h.engine.ApproveRequest(ctx, MemberActionInput{ActorID: leader, GroupID: group.ID, TargetUserID: member})
	requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Empty(t, h.sink.sent())
}
