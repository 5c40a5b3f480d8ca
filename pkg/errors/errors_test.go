package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/followup-compliance/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.ErrCodeInternal, "unexpected failure"},
		{"plan not found", errors.ErrCodePlanNotFound, "plan p-1 not found"},
		{"duplicate", errors.ErrCodeSubmissionDuplicate, "already submitted"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ae := errors.New(tc.code, tc.message)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestError_Format(t *testing.T) {
	ae := errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail("id=b-1")
	assert.Equal(t, "[BND_001] binding not found: id=b-1", ae.Error())

	wrapped := errors.Wrap(fmt.Errorf("conn reset"), errors.ErrCodeDatabaseError, "list bindings")
	assert.Equal(t, "[COMMON_012] list bindings: conn reset", wrapped.Error())
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "x"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrCodeInternal, "x %d", 1))
}

func TestWrap_UnknownKeepsInnerCode(t *testing.T) {
	inner := errors.New(errors.ErrCodeSubmissionDuplicate, "dup")
	outer := errors.Wrap(inner, errors.ErrCodeUnknown, "submit")
	assert.Equal(t, errors.ErrCodeSubmissionDuplicate, outer.Code)

	plain := errors.Wrap(stderrors.New("boom"), errors.ErrCodeUnknown, "submit")
	assert.Equal(t, errors.ErrCodeInternal, plain.Code)
}

func TestWrap_ChainIsTraversable(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	ae := errors.Wrap(sentinel, errors.ErrCodeDatabaseError, "query")
	assert.True(t, stderrors.Is(ae, sentinel))

	var target *errors.AppError
	require.True(t, stderrors.As(fmt.Errorf("ctx: %w", ae), &target))
	assert.Equal(t, errors.ErrCodeDatabaseError, target.Code)
}

func TestIsCode_FindsNestedCode(t *testing.T) {
	inner := errors.New(errors.ErrCodePlanDiscarded, "discarded")
	outer := errors.Wrap(inner, errors.ErrCodeInternal, "bind")
	assert.True(t, errors.IsCode(outer, errors.ErrCodePlanDiscarded))
	assert.True(t, errors.IsCode(outer, errors.ErrCodeInternal))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeNotFound))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeNotFound))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.ErrCodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.ErrCodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeConflict, errors.GetCode(errors.Conflict("x")))
}

func TestStatusPredicates(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		notFound   bool
		conflict   bool
		validation bool
		forbidden  bool
	}{
		{"generic not found", errors.NotFound("x"), true, false, false, false},
		{"plan not found", errors.New(errors.ErrCodePlanNotFound, "x"), true, false, false, false},
		{"binding not found", errors.New(errors.ErrCodeBindingNotFound, "x"), true, false, false, false},
		{"duplicate submission", errors.New(errors.ErrCodeSubmissionDuplicate, "x"), false, true, false, false},
		{"missing answers", errors.New(errors.ErrCodeSubmissionMissingAnswers, "x"), false, false, true, false},
		{"validation", errors.New(errors.ErrCodeValidation, "x"), false, false, true, false},
		{"forbidden", errors.Forbidden("x"), false, false, false, true},
		{"plain", stderrors.New("x"), false, false, false, false},
		{"wrapped by fmt", fmt.Errorf("outer: %w", errors.NotFound("x")), true, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.notFound, errors.IsNotFound(tc.err))
			assert.Equal(t, tc.conflict, errors.IsConflict(tc.err))
			assert.Equal(t, tc.validation, errors.IsValidation(tc.err))
			assert.Equal(t, tc.forbidden, errors.IsForbidden(tc.err))
		})
	}
}

func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	base := errors.InvalidParam("bad date")
	withDetail := base.WithDetail("surgeryDate=2024-13-01")
	assert.Empty(t, base.Detail)
	assert.Equal(t, "surgeryDate=2024-13-01", withDetail.Detail)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithDetail("x"))
	assert.Nil(t, nilErr.WithCause(stderrors.New("x")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 409, errors.New(errors.ErrCodeSubmissionDuplicate, "dup").HTTPStatus())
	assert.Equal(t, 401, errors.Unauthorized("who").HTTPStatus())
	assert.Equal(t, 500, errors.Internal("oops").HTTPStatus())
}
