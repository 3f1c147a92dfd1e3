package vmerrors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "TypeError", TypeError.String())
	assert.Equal(t, "NotFoundError", NotFoundError.String())
	assert.Equal(t, "SyntaxError", SyntaxError.String())
	assert.Equal(t, "Internal", Internal.String())
	assert.Equal(t, "Internal", Kind(99).String())
}

func TestTracebackAccumulatesFramesInnermostFirst(t *testing.T) {
	err := TypeErrorf("expected a number", "operator_add#block1").
		PushType("evaluating operand", "operator_add#block1").
		PushInternal("running thread", "green flag hat")

	require.Len(t, err.Trace, 3)
	assert.Equal(t, TypeError, err.Trace[0].Kind)
	assert.Equal(t, "expected a number", err.Trace[0].Description)
	assert.Equal(t, Internal, err.Trace[2].Kind)

	text := err.Error()
	assert.True(t, strings.HasPrefix(text, "Runtime error occured. Traceback:\n"))
	assert.Contains(t, text, "TypeError: expected a number")
	assert.Contains(t, text, "Internal: running thread")
	assert.True(t, strings.HasSuffix(text, "See the above traceback for details.\n"))

	firstIdx := strings.Index(text, "expected a number")
	lastIdx := strings.Index(text, "running thread")
	assert.Less(t, firstIdx, lastIdx, "inner frame should print before outer frame")
}

func TestAsScratchError(t *testing.T) {
	assert.Nil(t, AsScratchError(nil, "x"))

	se := NotFoundErrorf("missing variable", "data_variable#b1")
	assert.Same(t, se, AsScratchError(se, "irrelevant"))

	wrapped := AsScratchError(errors.New("boom"), "somewhere")
	require.Len(t, wrapped.Trace, 1)
	assert.Equal(t, Internal, wrapped.Trace[0].Kind)
	assert.Equal(t, "boom", wrapped.Trace[0].Description)
	assert.Equal(t, "somewhere", wrapped.Trace[0].Location)
}

func TestIsStopThisScript(t *testing.T) {
	assert.True(t, IsStopThisScript(ErrStopThisScript))
	assert.False(t, IsStopThisScript(errors.New("some other error")))
	assert.False(t, IsStopThisScript(nil))
}
