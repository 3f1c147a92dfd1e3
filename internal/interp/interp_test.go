package interp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/state"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

// noopDispatcher satisfies Dispatcher for tests that never broadcast,
// clone, or stop anything.
type noopDispatcher struct{}

func (noopDispatcher) Broadcast(uint32) []<-chan struct{}          { return nil }
func (noopDispatcher) CreateClone(int) error                       { return nil }
func (noopDispatcher) DeleteClone(int) error                       { return nil }
func (noopDispatcher) StopAllScripts()                              {}
func (noopDispatcher) StopOtherScriptsInSprite(int, uint64) uint64 { return 0 }
func (noopDispatcher) Println(string)                               {}

func newTestContext() *Context {
	store := state.NewStore(state.NewLocalState("Sprite1"), state.NewGlobalState(), &state.StopAll{})
	startup := &transform.VMStartup{}
	return NewContext(store, startup, 0, 0, noopDispatcher{}, rand.New(rand.NewSource(1)), 1.0)
}

// TestRunThreadTypeErrorTraceback builds a single operator_add block whose
// second operand is a non-numeric string directly (bypassing the
// Transformer entirely) and checks the resulting error is a ScratchError
// whose traceback carries at least two frames.
func TestRunThreadTypeErrorTraceback(t *testing.T) {
	ctx := newTestContext()

	addExpr := transform.Expression{
		Kind: transform.ExprStack,
		Stack: &transform.StackExpression{
			Opcode: ast.OperatorAdd,
			BlockID: "add1",
			Dependencies: map[string]transform.Evaluable{
				"NUM1": {Kind: transform.EvBare, Bare: ast.RVNumber(1)},
				"NUM2": {Kind: transform.EvBare, Bare: ast.RVString("not a number")},
			},
		},
	}
	thread := &transform.Thread{Code: []transform.Expression{addExpr}}

	err := RunThread(thread, ctx)
	require.Error(t, err)

	se, ok := err.(*vmerrors.ScratchError)
	require.True(t, ok, "expected a *vmerrors.ScratchError, got %T", err)
	assert.GreaterOrEqual(t, len(se.Trace), 2, "traceback should carry at least two frames")
}

// TestRunThreadCleanFinish confirms a Thread with no errors returns nil
// and applies the effect of its one data_setvariableto Expression.
func TestRunThreadCleanFinish(t *testing.T) {
	ctx := newTestContext()

	cell := state.NewCell(ast.PVInteger(0))
	ctx.Store.Local.Variables[0] = cell

	setExpr := transform.Expression{
		Kind: transform.ExprStack,
		Stack: &transform.StackExpression{
			Opcode:  ast.DataSetVariableTo,
			BlockID: "set1",
			Dependencies: map[string]transform.Evaluable{
				"VALUE":    {Kind: transform.EvBare, Bare: ast.RVInteger(7)},
				"VARIABLE": {Kind: transform.EvPointer, Pointer: transform.ValuePointer{Kind: transform.PointerVariable, Name: "n", ID: 0}},
			},
		},
	}
	thread := &transform.Thread{Code: []transform.Expression{setExpr}}

	err := RunThread(thread, ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cell.Get().Int)
}

// generationBumpDispatcher mimics the real Scheduler's
// StopOtherScriptsInSprite: bump the Target's shared StopGeneration
// counter and hand the new value back to the caller.
type generationBumpDispatcher struct {
	noopDispatcher
	local *state.LocalState
}

func (d generationBumpDispatcher) StopOtherScriptsInSprite(int, uint64) uint64 {
	return d.local.StopGeneration.Add(1)
}

// TestControlStopOtherScriptsInSpriteExemptsCaller exercises
// control_stop "other scripts in sprite": the calling Thread must not
// see itself as stopped afterward, only a sibling Thread still holding
// the stale generation it captured at spawn.
func TestControlStopOtherScriptsInSpriteExemptsCaller(t *testing.T) {
	local := state.NewLocalState("Sprite1")
	store := state.NewStore(local, state.NewGlobalState(), &state.StopAll{})
	dispatcher := generationBumpDispatcher{local: local}

	startGen := local.StopGeneration.Load()
	callerCtx := NewContext(store, &transform.VMStartup{}, 0, startGen, dispatcher, rand.New(rand.NewSource(1)), 1.0)
	siblingCtx := NewContext(store, &transform.VMStartup{}, 0, startGen, dispatcher, rand.New(rand.NewSource(1)), 1.0)

	stopExpr := &transform.StackExpression{
		Opcode:  ast.ControlStop,
		BlockID: "stop1",
		Dependencies: map[string]transform.Evaluable{
			"STOP_OPTION": {Kind: transform.EvBare, Bare: ast.RVString("other scripts in sprite")},
		},
	}

	_, err := evalControl(stopExpr, callerCtx)
	require.NoError(t, err)

	assert.False(t, callerCtx.Stopped(), "the thread that issued the stop must not stop itself")
	assert.True(t, siblingCtx.Stopped(), "a sibling thread spawned under the earlier generation must stop")
}

// TestStoppedRespectsStopAllAndGeneration exercises both halves of
// Context.Stopped: the process-wide flag, and a Thread's own stale
// generation after "stop other scripts in sprite" bumps it.
func TestStoppedRespectsStopAllAndGeneration(t *testing.T) {
	ctx := newTestContext()
	assert.False(t, ctx.Stopped())

	ctx.Store.Stop.Set()
	assert.True(t, ctx.Stopped())
	ctx.Store.Stop.Reset()
	assert.False(t, ctx.Stopped())

	ctx.Store.Local.StopGeneration.Add(1)
	assert.True(t, ctx.Stopped(), "thread spawned under an earlier generation should now see itself as stopped")
}
