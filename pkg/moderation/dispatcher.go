package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/ToxicGuard/ChatGuard/pkg/infra/httpx"
	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/sirupsen/logrus"
)

// Enforcer is the external enforcement surface. Its calls are expected to be
// idempotent-or-harmless on repeat (deleting an already-deleted message,
// banning an already-banned user), so the dispatcher applies no dedup of its
// own.
type Enforcer interface {
	DeleteMessage(ctx context.Context, messageID string) error
	BanUser(ctx context.Context, userID string) error
}

// Dispatcher executes enforcement orders and classifies failures. A failed
// dispatch never propagates: the outcome records what happened and the batch
// moves on.
type Dispatcher struct {
	enforcer Enforcer
	breaker  httpx.CircuitBreaker
	logger   *logrus.Logger
}

func NewDispatcher(enforcer Enforcer, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		enforcer: enforcer,
		breaker:  httpx.NewCircuitBreaker("enforcement", 30*time.Second, 5),
		logger:   logger,
	}
}

// Dispatch applies the order against the enforcement surface.
//
// Warnings are internal bookkeeping only; the upstream surface has no native
// timeout primitive either, so Timeout is the implied delete plus the counter
// the engine already bumped.
func (d *Dispatcher) Dispatch(ctx context.Context, order types.EnforcementOrder) types.EnforcementOutcome {
	var err error
	switch order.Action {
	case types.ActionNone:
		// nothing to do
	case types.ActionWarn:
		d.logger.WithFields(logrus.Fields{
			"user_id": order.TargetUserID,
			"reason":  order.Reason,
		}).Warn("warning issued")
	case types.ActionDelete, types.ActionTimeout:
		err = d.breaker.Execute(func() error {
			return d.enforcer.DeleteMessage(ctx, order.MessageID)
		})
	case types.ActionBan:
		err = d.breaker.Execute(func() error {
			return d.enforcer.BanUser(ctx, order.TargetUserID)
		})
	}

	outcome := types.EnforcementOutcome{Order: order}
	if err == nil {
		outcome.Succeeded = true
		return outcome
	}

	outcome.FailureKind = classifyFailure(err)
	d.logFailure(order, outcome.FailureKind, err)
	return outcome
}

func classifyFailure(err error) types.FailureKind {
	switch {
	case errors.Is(err, types.ErrPermissionDenied):
		return types.FailurePermissionDenied
	case errors.Is(err, types.ErrTransient):
		return types.FailureTransient
	default:
		return types.FailureFatal
	}
}

func (d *Dispatcher) logFailure(order types.EnforcementOrder, kind types.FailureKind, err error) {
	fields := logrus.Fields{
		"action":  order.Action.String(),
		"user_id": order.TargetUserID,
		"kind":    kind.String(),
	}
	if kind == types.FailurePermissionDenied {
		d.logger.WithFields(fields).Warn("permission denied; make the bot account a channel moderator to enable full moderation")
		return
	}
	d.logger.WithFields(fields).WithError(err).Error("enforcement action failed")
}
