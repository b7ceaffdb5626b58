package moderation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ToxicGuard/ChatGuard/pkg/moderation"
	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newDispatcher(enforcer *mockEnforcer) *moderation.Dispatcher {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return moderation.NewDispatcher(enforcer, logger)
}

func TestDispatch_NoneAndWarnSucceedWithoutExternalCalls(t *testing.T) {
	enforcer := new(mockEnforcer)
	dispatcher := newDispatcher(enforcer)

	for _, action := range []types.ActionKind{types.ActionNone, types.ActionWarn} {
		outcome := dispatcher.Dispatch(context.Background(), types.EnforcementOrder{
			TargetUserID: "u1",
			MessageID:    "m1",
			Action:       action,
		})
		assert.True(t, outcome.Succeeded)
		assert.Equal(t, types.FailureNone, outcome.FailureKind)
	}

	enforcer.AssertNotCalled(t, "DeleteMessage")
	enforcer.AssertNotCalled(t, "BanUser")
}

func TestDispatch_DeleteCallsEnforcer(t *testing.T) {
	enforcer := new(mockEnforcer)
	dispatcher := newDispatcher(enforcer)

	enforcer.On("DeleteMessage", mock.Anything, "m1").Return(nil).Once()

	outcome := dispatcher.Dispatch(context.Background(), types.EnforcementOrder{
		TargetUserID: "u1",
		MessageID:    "m1",
		Action:       types.ActionDelete,
	})

	assert.True(t, outcome.Succeeded)
	enforcer.AssertExpectations(t)
}

func TestDispatch_DeletePermissionDenied(t *testing.T) {
	enforcer := new(mockEnforcer)
	dispatcher := newDispatcher(enforcer)

	enforcer.On("DeleteMessage", mock.Anything, "m1").
		Return(fmt.Errorf("youtube API returned 403: %w", types.ErrPermissionDenied)).
		Once()

	outcome := dispatcher.Dispatch(context.Background(), types.EnforcementOrder{
		TargetUserID: "u1",
		MessageID:    "m1",
		Action:       types.ActionDelete,
	})

	assert.False(t, outcome.Succeeded)
	assert.Equal(t, types.FailurePermissionDenied, outcome.FailureKind)
}

func TestDispatch_TimeoutPerformsImpliedDelete(t *testing.T) {
	enforcer := new(mockEnforcer)
	dispatcher := newDispatcher(enforcer)

	enforcer.On("DeleteMessage", mock.Anything, "m1").Return(nil).Once()

	outcome := dispatcher.Dispatch(context.Background(), types.EnforcementOrder{
		TargetUserID: "u1",
		MessageID:    "m1",
		Action:       types.ActionTimeout,
	})

	assert.True(t, outcome.Succeeded)
	enforcer.AssertNotCalled(t, "BanUser")
	enforcer.AssertExpectations(t)
}

func TestDispatch_BanCallsEnforcer(t *testing.T) {
	enforcer := new(mockEnforcer)
	dispatcher := newDispatcher(enforcer)

	enforcer.On("BanUser", mock.Anything, "u1").Return(nil).Once()

	outcome := dispatcher.Dispatch(context.Background(), types.EnforcementOrder{
		TargetUserID: "u1",
		MessageID:    "m1",
		Action:       types.ActionBan,
	})

	assert.True(t, outcome.Succeeded)
	enforcer.AssertExpectations(t)
}

func TestDispatch_TransientFailureClassified(t *testing.T) {
	enforcer := new(mockEnforcer)
	dispatcher := newDispatcher(enforcer)

	enforcer.On("BanUser", mock.Anything, "u1").
		Return(fmt.Errorf("youtube API returned 503: %w", types.ErrTransient)).
		Once()

	outcome := dispatcher.Dispatch(context.Background(), types.EnforcementOrder{
		TargetUserID: "u1",
		Action:       types.ActionBan,
	})

	assert.False(t, outcome.Succeeded)
	assert.Equal(t, types.FailureTransient, outcome.FailureKind)
}

func TestDispatch_UnknownFailureIsFatal(t *testing.T) {
	enforcer := new(mockEnforcer)
	dispatcher := newDispatcher(enforcer)

	enforcer.On("DeleteMessage", mock.Anything, "m1").
		Return(errors.New("connection reset")).
		Once()

	outcome := dispatcher.Dispatch(context.Background(), types.EnforcementOrder{
		MessageID: "m1",
		Action:    types.ActionDelete,
	})

	assert.False(t, outcome.Succeeded)
	assert.Equal(t, types.FailureFatal, outcome.FailureKind)
}

func TestDispatch_RepeatDispatchIsSafe(t *testing.T) {
	enforcer := new(mockEnforcer)
	dispatcher := newDispatcher(enforcer)

	order := types.EnforcementOrder{TargetUserID: "u1", MessageID: "m1", Action: types.ActionDelete}
	enforcer.On("DeleteMessage", mock.Anything, "m1").Return(nil).Twice()

	first := dispatcher.Dispatch(context.Background(), order)
	second := dispatcher.Dispatch(context.Background(), order)

	assert.True(t, first.Succeeded)
	assert.True(t, second.Succeeded)
	enforcer.AssertExpectations(t)
}
