package memberships

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/internal/groups"
	"github.com/squadlog/squadlog-backend/internal/notifications"
	"github.com/squadlog/squadlog-backend/pkg/config"
	"github.com/squadlog/squadlog-backend/pkg/db"
	"github.com/squadlog/squadlog-backend/pkg/db/models"
	"github.com/squadlog/squadlog-backend/pkg/enums"
	pkgerrors "github.com/squadlog/squadlog-backend/pkg/errors"
	"github.com/squadlog/squadlog-backend/pkg/invitecode"
	"github.com/squadlog/squadlog-backend/pkg/logger"
	"github.com/squadlog/squadlog-backend/pkg/metrics"
	"gorm.io/gorm"
)

// Operation names used for logging and metrics.
const (
	OpCreateGroup         = "create_group"
	OpRequestJoin         = "request_join"
	OpCancelJoinRequest   = "cancel_join_request"
	OpApproveRequest      = "approve_request"
	OpRejectRequest       = "reject_request"
	OpLeaveGroup          = "leave_group"
	OpKickMember          = "kick_member"
	OpDeleteGroup         = "delete_group"
	OpUpdateGroupSettings = "update_group_settings"
	OpTransferLeadership  = "transfer_leadership"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Engine drives the membership state machine. Every operation takes the
// authenticated actor explicitly and runs in a single transaction; the
// notifications it produces are emitted after commit.
type Engine interface {
	CreateGroup(ctx context.Context, input CreateGroupInput) (*CreateGroupResult, error)
	RequestJoin(ctx context.Context, actorID uuid.UUID, target JoinTarget) (*JoinRequestResult, error)
	CancelJoinRequest(ctx context.Context, actorID, groupID uuid.UUID) error
	ApproveRequest(ctx context.Context, input MemberActionInput) (*MembershipDTO, error)
	RejectRequest(ctx context.Context, input MemberActionInput) error
	LeaveGroup(ctx context.Context, actorID, groupID uuid.UUID) (*LeaveResult, error)
	KickMember(ctx context.Context, input MemberActionInput) error
	DeleteGroup(ctx context.Context, actorID, groupID uuid.UUID) error
	UpdateGroupSettings(ctx context.Context, input UpdateSettingsInput) (*groups.GroupDTO, error)
	TransferLeadership(ctx context.Context, input MemberActionInput) error
}

// EngineDeps wires the engine. Metrics is optional.
type EngineDeps struct {
	Tx          txRunner
	Groups      groups.Repository
	Memberships Repository
	Codes       invitecode.Generator
	Sink        notifications.Sink
	Metrics     *metrics.MembershipMetrics
	Logger      *logger.Logger
	Rules       config.GroupsConfig
}

type engine struct {
	tx          txRunner
	groups      groups.Repository
	memberships Repository
	codes       invitecode.Generator
	sink        notifications.Sink
	metrics     *metrics.MembershipMetrics
	logg        *logger.Logger
	rules       config.GroupsConfig
}

// NewEngine builds the membership engine with the required dependencies.
func NewEngine(deps EngineDeps) (Engine, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Groups == nil {
		return nil, fmt.Errorf("groups repository required")
	}
	if deps.Memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if deps.Codes == nil {
		return nil, fmt.Errorf("invite code generator required")
	}
	if deps.Sink == nil {
		return nil, fmt.Errorf("notification sink required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Rules.MaxApprovedGroups <= 0 {
		return nil, fmt.Errorf("max approved groups must be positive")
	}
	if deps.Rules.InviteCodeMaxAttempts <= 0 {
		return nil, fmt.Errorf("invite code attempts must be positive")
	}
	return &engine{
		tx:          deps.Tx,
		groups:      deps.Groups,
		memberships: deps.Memberships,
		codes:       deps.Codes,
		sink:        deps.Sink,
		metrics:     deps.Metrics,
		logg:        deps.Logger,
		rules:       deps.Rules,
	}, nil
}

func (e *engine) CreateGroup(ctx context.Context, input CreateGroupInput) (*CreateGroupResult, error) {
	var result *CreateGroupResult
	err := e.run(ctx, OpCreateGroup, func(ctx context.Context) ([]notifications.Request, error) {
		if input.ActorID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
		}
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "group name required")
		}

		for attempt := 1; attempt <= e.rules.InviteCodeMaxAttempts; attempt++ {
			code, err := e.codes.Generate()
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invite code")
			}

			group := &models.Group{Name: name, InviteCode: code, CreatorID: input.ActorID}
			leader := &models.GroupMember{
				UserID: input.ActorID,
				Role:   enums.GroupRoleLeader,
				Status: enums.MembershipStatusApproved,
			}
			// Each attempt gets its own transaction: a failed insert poisons a
			// Postgres transaction.
			err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
				if err := e.groups.WithTx(tx).Create(ctx, group); err != nil {
					return err
				}
				leader.GroupID = group.ID
				leader.JoinedAt = group.CreatedAt
				return e.memberships.WithTx(tx).CreateMembership(ctx, leader)
			})
			if err == nil {
				result = &CreateGroupResult{Group: groups.FromModel(*group), Leader: ToDTO(leader)}
				return nil, nil
			}
			if db.IsUniqueViolation(err, groups.InviteCodeConstraint, groups.InviteCodeConstraintSQLite) {
				e.logg.Warn(e.logg.WithField(ctx, "attempt", attempt), "invite code collision")
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create group")
		}
		return nil, pkgerrors.New(pkgerrors.CodeCodeSpaceExhausted, "could not allocate a unique invite code")
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *engine) RequestJoin(ctx context.Context, actorID uuid.UUID, target JoinTarget) (*JoinRequestResult, error) {
	var result *JoinRequestResult
	err := e.run(ctx, OpRequestJoin, func(ctx context.Context) ([]notifications.Request, error) {
		if actorID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
		}
		code := ""
		if target.GroupID == uuid.Nil {
			if strings.TrimSpace(target.InviteCode) == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id or invite code required")
			}
			code = invitecode.Normalize(target.InviteCode)
			if !invitecode.IsValid(code) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invite code")
			}
		}

		var outbound []notifications.Request
		err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			groupRepo := e.groups.WithTx(tx)
			memberRepo := e.memberships.WithTx(tx)

			groupID := target.GroupID
			if groupID == uuid.Nil {
				found, err := groupRepo.FindByInviteCode(ctx, code)
				if err != nil {
					return notFoundOr(err, "group not found", "lookup invite code")
				}
				groupID = found.ID
			}
			group, err := lockGroup(ctx, groupRepo, groupID)
			if err != nil {
				return err
			}

			existing, err := memberRepo.GetMembership(ctx, group.ID, actorID)
			switch {
			case err == nil:
				if existing.Status == enums.MembershipStatusPending {
					return pkgerrors.New(pkgerrors.CodeAlreadyRequested, "join request already pending")
				}
				return pkgerrors.New(pkgerrors.CodeAlreadyMember, "already a member of this group")
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
			}

			if err := e.checkGroupLimit(ctx, memberRepo, actorID); err != nil {
				return err
			}

			request := &models.GroupMember{
				GroupID: group.ID,
				UserID:  actorID,
				Role:    enums.GroupRoleMember,
				Status:  enums.MembershipStatusPending,
			}
			if err := memberRepo.CreateMembership(ctx, request); err != nil {
				if db.IsUniqueViolation(err, GroupUserConstraint, GroupUserConstraintSQLite) {
					return pkgerrors.Wrap(pkgerrors.CodeAlreadyRequested, err, "join request already pending")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create join request")
			}

			leader, err := memberRepo.FindLeader(ctx, group.ID)
			switch {
			case err == nil:
				outbound = append(outbound, notifications.JoinRequested(*group, actorID, leader.UserID))
			case errors.Is(err, gorm.ErrRecordNotFound):
				e.logg.Warn(e.logg.WithGroupID(ctx, group.ID.String()), "group has no approved leader to notify")
			default:
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group leader")
			}

			result = &JoinRequestResult{GroupID: group.ID, GroupName: group.Name, Request: ToDTO(request)}
			return nil
		})
		return outbound, err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *engine) CancelJoinRequest(ctx context.Context, actorID, groupID uuid.UUID) error {
	return e.run(ctx, OpCancelJoinRequest, func(ctx context.Context) ([]notifications.Request, error) {
		if err := requireIDs(actorID, groupID); err != nil {
			return nil, err
		}
		return nil, e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			memberRepo := e.memberships.WithTx(tx)
			if _, err := lockGroup(ctx, e.groups.WithTx(tx), groupID); err != nil {
				return err
			}
			request, err := memberRepo.GetMembership(ctx, groupID, actorID)
			if err != nil {
				return notFoundOr(err, "no pending join request", "load join request")
			}
			if request.Status != enums.MembershipStatusPending {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no pending join request")
			}
			if _, err := memberRepo.DeleteMembership(ctx, request.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete join request")
			}
			return nil
		})
	})
}

func (e *engine) ApproveRequest(ctx context.Context, input MemberActionInput) (*MembershipDTO, error) {
	var approved *MembershipDTO
	err := e.run(ctx, OpApproveRequest, func(ctx context.Context) ([]notifications.Request, error) {
		if err := requireIDs(input.ActorID, input.GroupID); err != nil {
			return nil, err
		}
		if input.TargetUserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "target user id required")
		}

		var outbound []notifications.Request
		err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			memberRepo := e.memberships.WithTx(tx)
			group, err := lockGroup(ctx, e.groups.WithTx(tx), input.GroupID)
			if err != nil {
				return err
			}
			if _, err := requireLeader(ctx, memberRepo, group.ID, input.ActorID); err != nil {
				return err
			}
			request, err := pendingRequest(ctx, memberRepo, group.ID, input.TargetUserID)
			if err != nil {
				return err
			}
			if e.rules.RecheckLimitOnApprove {
				if err := e.checkGroupLimit(ctx, memberRepo, input.TargetUserID); err != nil {
					return err
				}
			}
			if err := memberRepo.ApproveMembership(ctx, request.ID); err != nil {
				return notFoundOr(err, "pending request not found", "approve join request")
			}

			request.Status = enums.MembershipStatusApproved
			dto := ToDTO(request)
			approved = &dto
			outbound = append(outbound, notifications.RequestApproved(*group, input.ActorID, input.TargetUserID))
			return nil
		})
		return outbound, err
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func (e *engine) RejectRequest(ctx context.Context, input MemberActionInput) error {
	return e.run(ctx, OpRejectRequest, func(ctx context.Context) ([]notifications.Request, error) {
		if err := requireIDs(input.ActorID, input.GroupID); err != nil {
			return nil, err
		}
		if input.TargetUserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "target user id required")
		}

		var outbound []notifications.Request
		err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			memberRepo := e.memberships.WithTx(tx)
			group, err := lockGroup(ctx, e.groups.WithTx(tx), input.GroupID)
			if err != nil {
				return err
			}
			if _, err := requireLeader(ctx, memberRepo, group.ID, input.ActorID); err != nil {
				return err
			}
			request, err := pendingRequest(ctx, memberRepo, group.ID, input.TargetUserID)
			if err != nil {
				return err
			}
			if _, err := memberRepo.DeleteMembership(ctx, request.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete join request")
			}
			outbound = append(outbound, notifications.RequestRejected(*group, input.ActorID, input.TargetUserID))
			return nil
		})
		return outbound, err
	})
}

func (e *engine) LeaveGroup(ctx context.Context, actorID, groupID uuid.UUID) (*LeaveResult, error) {
	result := &LeaveResult{GroupID: groupID}
	err := e.run(ctx, OpLeaveGroup, func(ctx context.Context) ([]notifications.Request, error) {
		if err := requireIDs(actorID, groupID); err != nil {
			return nil, err
		}
		return nil, e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			groupRepo := e.groups.WithTx(tx)
			memberRepo := e.memberships.WithTx(tx)
			if _, err := lockGroup(ctx, groupRepo, groupID); err != nil {
				return err
			}
			membership, err := approvedMember(ctx, memberRepo, groupID, actorID)
			if err != nil {
				return err
			}

			if membership.Role == enums.GroupRoleLeader {
				others, err := memberRepo.CountOtherApproved(ctx, groupID, actorID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count group members")
				}
				if others > 0 {
					return pkgerrors.New(pkgerrors.CodeLeaderMustTransferFirst, "kick or promote remaining members before leaving").
						WithDetails(map[string]any{"remaining_members": others})
				}
			}

			if _, err := memberRepo.DeleteMembership(ctx, membership.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
			}
			if membership.Role != enums.GroupRoleLeader {
				return nil
			}
			if err := teardownGroup(ctx, groupRepo, memberRepo, groupID); err != nil {
				return err
			}
			result.GroupDeleted = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *engine) KickMember(ctx context.Context, input MemberActionInput) error {
	return e.run(ctx, OpKickMember, func(ctx context.Context) ([]notifications.Request, error) {
		if err := requireIDs(input.ActorID, input.GroupID); err != nil {
			return nil, err
		}
		if input.TargetUserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "target user id required")
		}
		if input.TargetUserID == input.ActorID {
			return nil, pkgerrors.New(pkgerrors.CodeSelfKickForbidden, "use leave to exit the group")
		}
		return nil, e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			memberRepo := e.memberships.WithTx(tx)
			if _, err := lockGroup(ctx, e.groups.WithTx(tx), input.GroupID); err != nil {
				return err
			}
			if _, err := requireLeader(ctx, memberRepo, input.GroupID, input.ActorID); err != nil {
				return err
			}
			target, err := approvedMember(ctx, memberRepo, input.GroupID, input.TargetUserID)
			if err != nil {
				return err
			}
			if _, err := memberRepo.DeleteMembership(ctx, target.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
			}
			return nil
		})
	})
}

func (e *engine) DeleteGroup(ctx context.Context, actorID, groupID uuid.UUID) error {
	return e.run(ctx, OpDeleteGroup, func(ctx context.Context) ([]notifications.Request, error) {
		if err := requireIDs(actorID, groupID); err != nil {
			return nil, err
		}
		return nil, e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			groupRepo := e.groups.WithTx(tx)
			memberRepo := e.memberships.WithTx(tx)
			if _, err := lockGroup(ctx, groupRepo, groupID); err != nil {
				return err
			}
			if _, err := requireLeader(ctx, memberRepo, groupID, actorID); err != nil {
				return err
			}
			return teardownGroup(ctx, groupRepo, memberRepo, groupID)
		})
	})
}

func (e *engine) UpdateGroupSettings(ctx context.Context, input UpdateSettingsInput) (*groups.GroupDTO, error) {
	var updated *groups.GroupDTO
	err := e.run(ctx, OpUpdateGroupSettings, func(ctx context.Context) ([]notifications.Request, error) {
		if err := requireIDs(input.ActorID, input.GroupID); err != nil {
			return nil, err
		}
		patch := groups.SettingsPatch{IsPublic: input.IsPublic, WhatsappLink: input.WhatsappLink}

		return nil, e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			groupRepo := e.groups.WithTx(tx)
			memberRepo := e.memberships.WithTx(tx)
			group, err := lockGroup(ctx, groupRepo, input.GroupID)
			if err != nil {
				return err
			}

			membership, err := memberRepo.GetMembership(ctx, input.GroupID, input.ActorID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeForbidden, "only the group leader can change settings")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
			}
			if membership.Role != enums.GroupRoleLeader {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the group leader can change settings")
			}
			if membership.Status != enums.MembershipStatusApproved {
				return pkgerrors.New(pkgerrors.CodeForbidden, "leader membership is not approved")
			}

			if !patch.Empty() {
				if err := groupRepo.ApplySettings(ctx, group.ID, patch); err != nil {
					return notFoundOr(err, "group not found", "update group settings")
				}
				if group, err = groupRepo.FindByID(ctx, group.ID); err != nil {
					return notFoundOr(err, "group not found", "reload group")
				}
			}
			dto := groups.FromModel(*group)
			updated = &dto
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *engine) TransferLeadership(ctx context.Context, input MemberActionInput) error {
	return e.run(ctx, OpTransferLeadership, func(ctx context.Context) ([]notifications.Request, error) {
		if err := requireIDs(input.ActorID, input.GroupID); err != nil {
			return nil, err
		}
		if input.TargetUserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "target user id required")
		}
		if input.TargetUserID == input.ActorID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "already the group leader")
		}

		var outbound []notifications.Request
		err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			memberRepo := e.memberships.WithTx(tx)
			group, err := lockGroup(ctx, e.groups.WithTx(tx), input.GroupID)
			if err != nil {
				return err
			}
			current, err := requireLeader(ctx, memberRepo, group.ID, input.ActorID)
			if err != nil {
				return err
			}
			next, err := approvedMember(ctx, memberRepo, group.ID, input.TargetUserID)
			if err != nil {
				return err
			}

			// Demote first: the single-leader index is checked per statement.
			if err := memberRepo.UpdateRole(ctx, current.ID, enums.GroupRoleMember); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "demote leader")
			}
			if err := memberRepo.UpdateRole(ctx, next.ID, enums.GroupRoleLeader); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote member")
			}
			outbound = append(outbound, notifications.LeadershipTransferred(*group, input.ActorID, input.TargetUserID))
			return nil
		})
		return outbound, err
	})
}

// run wraps one operation with logging, metrics and post-commit delivery of
// the notifications it produced.
func (e *engine) run(ctx context.Context, op string, fn func(ctx context.Context) ([]notifications.Request, error)) error {
	start := time.Now()
	ctx = e.logg.WithOperation(ctx, op)

	outbound, err := fn(ctx)
	if err != nil && pkgerrors.As(err) == nil {
		err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "membership transaction failed")
	}

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = string(pkgerrors.As(err).Code())
	}
	e.metrics.ObserveOperation(op, outcome, time.Since(start))

	if err != nil {
		if pkgerrors.MetadataFor(pkgerrors.As(err).Code()).HTTPStatus >= 500 {
			e.logg.Error(ctx, "membership operation failed", err)
		} else {
			e.logg.Debug(e.logg.WithField(ctx, "code", outcome), "membership operation rejected")
		}
		return err
	}

	e.emit(ctx, outbound)
	return nil
}

// emit hands notifications to the sink. Failures are logged and counted; the
// membership change has already committed.
func (e *engine) emit(ctx context.Context, outbound []notifications.Request) {
	if len(outbound) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, req := range outbound {
		logCtx := e.logg.WithFields(ctx, map[string]any{
			"notification_id":   req.ID.String(),
			"notification_kind": req.Kind.String(),
			"recipient_id":      req.RecipientID.String(),
		})
		if err := e.sink.Emit(ctx, req); err != nil {
			e.metrics.IncNotification(req.Kind.String(), metrics.ResultFailed)
			e.logg.Error(logCtx, "failed to emit notification", err)
			continue
		}
		e.metrics.IncNotification(req.Kind.String(), metrics.ResultSent)
	}
}

func (e *engine) checkGroupLimit(ctx context.Context, repo Repository, userID uuid.UUID) error {
	approved, err := repo.CountApprovedForUser(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count approved groups")
	}
	if approved >= int64(e.rules.MaxApprovedGroups) {
		return pkgerrors.New(pkgerrors.CodeGroupLimitExceeded, "approved group limit reached").
			WithDetails(map[string]any{"limit": e.rules.MaxApprovedGroups, "approved": approved})
	}
	return nil
}

func requireIDs(actorID, groupID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if groupID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	return nil
}

func lockGroup(ctx context.Context, repo groups.Repository, groupID uuid.UUID) (*models.Group, error) {
	group, err := repo.LockByID(ctx, groupID)
	if err != nil {
		return nil, notFoundOr(err, "group not found", "load group")
	}
	return group, nil
}

func requireLeader(ctx context.Context, repo Repository, groupID, actorID uuid.UUID) (*models.GroupMember, error) {
	membership, err := repo.GetMembership(ctx, groupID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the group leader can do this")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	if !membership.IsApprovedLeader() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the group leader can do this")
	}
	return membership, nil
}

func pendingRequest(ctx context.Context, repo Repository, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	request, err := repo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return nil, notFoundOr(err, "pending request not found", "load join request")
	}
	if request.Status != enums.MembershipStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pending request not found")
	}
	return request, nil
}

func approvedMember(ctx context.Context, repo Repository, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	membership, err := repo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return nil, notFoundOr(err, "membership not found", "load membership")
	}
	if membership.Status != enums.MembershipStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	return membership, nil
}

// teardownGroup deletes member rows before the group itself.
func teardownGroup(ctx context.Context, groupRepo groups.Repository, memberRepo Repository, groupID uuid.UUID) error {
	if _, err := memberRepo.DeleteGroupMemberships(ctx, groupID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete group memberships")
	}
	deleted, err := groupRepo.Delete(ctx, groupID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete group")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
	}
	return nil
}

func notFoundOr(err error, notFoundMsg, dependencyMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, dependencyMsg)
}
