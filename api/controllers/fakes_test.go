package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/squadlog/squadlog-backend/api/middleware"
	"github.com/squadlog/squadlog-backend/internal/groups"
	"github.com/squadlog/squadlog-backend/internal/memberships"
	"github.com/squadlog/squadlog-backend/internal/visibility"
	"github.com/squadlog/squadlog-backend/pkg/logger"
)

type fakeEngine struct {
	createFn   func(ctx context.Context, input memberships.CreateGroupInput) (*memberships.CreateGroupResult, error)
	joinFn     func(ctx context.Context, actorID uuid.UUID, target memberships.JoinTarget) (*memberships.JoinRequestResult, error)
	cancelFn   func(ctx context.Context, actorID, groupID uuid.UUID) error
	approveFn  func(ctx context.Context, input memberships.MemberActionInput) (*memberships.MembershipDTO, error)
	rejectFn   func(ctx context.Context, input memberships.MemberActionInput) error
	leaveFn    func(ctx context.Context, actorID, groupID uuid.UUID) (*memberships.LeaveResult, error)
	kickFn     func(ctx context.Context, input memberships.MemberActionInput) error
	deleteFn   func(ctx context.Context, actorID, groupID uuid.UUID) error
	updateFn   func(ctx context.Context, input memberships.UpdateSettingsInput) (*groups.GroupDTO, error)
	transferFn func(ctx context.Context, input memberships.MemberActionInput) error
}

func (f *fakeEngine) CreateGroup(ctx context.Context, input memberships.CreateGroupInput) (*memberships.CreateGroupResult, error) {
	return f.createFn(ctx, input)
}

func (f *fakeEngine) RequestJoin(ctx context.Context, actorID uuid.UUID, target memberships.JoinTarget) (*memberships.JoinRequestResult, error) {
	return f.joinFn(ctx, actorID, target)
}

func (f *fakeEngine) CancelJoinRequest(ctx context.Context, actorID, groupID uuid.UUID) error {
	return f.cancelFn(ctx, actorID, groupID)
}

func (f *fakeEngine) ApproveRequest(ctx context.Context, input memberships.MemberActionInput) (*memberships.MembershipDTO, error) {
	return f.approveFn(ctx, input)
}

func (f *fakeEngine) RejectRequest(ctx context.Context, input memberships.MemberActionInput) error {
	return f.rejectFn(ctx, input)
}

func (f *fakeEngine) LeaveGroup(ctx context.Context, actorID, groupID uuid.UUID) (*memberships.LeaveResult, error) {
	return f.leaveFn(ctx, actorID, groupID)
}

func (f *fakeEngine) KickMember(ctx context.Context, input memberships.MemberActionInput) error {
	return f.kickFn(ctx, input)
}

func (f *fakeEngine) DeleteGroup(ctx context.Context, actorID, groupID uuid.UUID) error {
	return f.deleteFn(ctx, actorID, groupID)
}

func (f *fakeEngine) UpdateGroupSettings(ctx context.Context, input memberships.UpdateSettingsInput) (*groups.GroupDTO, error) {
	return f.updateFn(ctx, input)
}

func (f *fakeEngine) TransferLeadership(ctx context.Context, input memberships.MemberActionInput) error {
	return f.transferFn(ctx, input)
}

type fakeVisibility struct {
	mineFn    func(ctx context.Context, actorID uuid.UUID) ([]visibility.MyGroupDTO, error)
	exploreFn func(ctx context.Context, actorID uuid.UUID) ([]visibility.PublicGroupDTO, error)
	detailFn  func(ctx context.Context, actorID, groupID uuid.UUID) (*visibility.GroupDetailDTO, error)
	pendingFn func(ctx context.Context, actorID, groupID uuid.UUID) ([]visibility.PendingRequestDTO, error)
}

func (f *fakeVisibility) ListMyGroups(ctx context.Context, actorID uuid.UUID) ([]visibility.MyGroupDTO, error) {
	return f.mineFn(ctx, actorID)
}

func (f *fakeVisibility) ExplorePublicGroups(ctx context.Context, actorID uuid.UUID) ([]visibility.PublicGroupDTO, error) {
	return f.exploreFn(ctx, actorID)
}

func (f *fakeVisibility) GetGroupDetail(ctx context.Context, actorID, groupID uuid.UUID) (*visibility.GroupDetailDTO, error) {
	return f.detailFn(ctx, actorID, groupID)
}

func (f *fakeVisibility) ListPendingRequests(ctx context.Context, actorID, groupID uuid.UUID) ([]visibility.PendingRequestDTO, error) {
	return f.pendingFn(ctx, actorID, groupID)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newRequest(method, target string, body any, actorID uuid.UUID) *http.Request {
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if actorID != uuid.Nil {
		req = req.WithContext(middleware.WithUserID(req.Context(), actorID.String()))
	}
	return req
}

func addRouteParams(req *http.Request, kv ...string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		routeCtx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	handler(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Error.Code
}
