package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/config"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

func emptyStage() ast.Target {
	return ast.Target{
		Name: "Stage", IsStage: true,
		Variables: map[string]ast.Variable{}, Lists: map[string]ast.List{},
		Broadcasts: map[string]ast.Broadcast{}, Blocks: map[string]ast.Block{},
	}
}

// arithmeticProject: `when green flag clicked / set total to (2 + 3)`.
func arithmeticProject() ast.Project {
	sprite := ast.Target{
		Name: "Sprite1",
		Variables: map[string]ast.Variable{
			"totalVar": {ID: "totalVar", Name: "total", Value: ast.PVInteger(0)},
		},
		Lists:      map[string]ast.List{},
		Broadcasts: map[string]ast.Broadcast{},
		Blocks: map[string]ast.Block{
			"hat1": {ID: "hat1", Opcode: ast.EventWhenFlagClicked, TopLevel: true, Next: "set1"},
			"set1": {
				ID:     "set1",
				Opcode: ast.DataSetVariableTo,
				Inputs: map[string]ast.Evaluable{"VALUE": {BlockID: "add1"}},
				Fields: map[string]ast.Field{
					"VARIABLE": {Name: "VARIABLE", Value: "total", Ref: &ast.Pointer{Kind: ast.PointerVariable, ID: "totalVar", Name: "total"}},
				},
			},
			"add1": {
				ID:     "add1",
				Opcode: ast.OperatorAdd,
				Inputs: map[string]ast.Evaluable{
					"NUM1": {Shadow: &ast.ShadowValue{Kind: ast.RKNumber, Num: 2}},
					"NUM2": {Shadow: &ast.ShadowValue{Kind: ast.RKNumber, Num: 3}},
				},
			},
		},
	}
	return ast.Project{Targets: []ast.Target{emptyStage(), sprite}}
}

func TestRunArithmeticHatSetsVariable(t *testing.T) {
	startup, err := transform.Transform(arithmeticProject())
	require.NoError(t, err)

	result := Run(startup, config.Default())
	require.False(t, result.Errored())
	require.Len(t, result.Threads, 1)

	cell, ok := startup.Locals[1].Variables[0]
	require.True(t, ok)
	assert.Equal(t, 5.0, cell.Get().Num)
}

// listLengthProject: `when green flag clicked / add "x" to mylist`, then
// asserts the list has length 1 via the StateStore directly (no reporter
// chain needed beyond the single data_addtolist statement).
func listLengthProject() ast.Project {
	sprite := ast.Target{
		Name:      "Sprite1",
		Variables: map[string]ast.Variable{},
		Lists: map[string]ast.List{
			"listID": {ID: "listID", Name: "mylist", Value: nil},
		},
		Broadcasts: map[string]ast.Broadcast{},
		Blocks: map[string]ast.Block{
			"hat1": {ID: "hat1", Opcode: ast.EventWhenFlagClicked, TopLevel: true, Next: "add1"},
			"add1": {
				ID:     "add1",
				Opcode: ast.DataAddToList,
				Inputs: map[string]ast.Evaluable{"ITEM": {Shadow: &ast.ShadowValue{Kind: ast.RKString, Str: "x"}}},
				Fields: map[string]ast.Field{
					"LIST": {Name: "LIST", Value: "mylist", Ref: &ast.Pointer{Kind: ast.PointerList, ID: "listID", Name: "mylist"}},
				},
			},
		},
	}
	return ast.Project{Targets: []ast.Target{emptyStage(), sprite}}
}

func TestRunListAppend(t *testing.T) {
	startup, err := transform.Transform(listLengthProject())
	require.NoError(t, err)

	result := Run(startup, config.Default())
	require.False(t, result.Errored())

	list, ok := startup.Locals[1].Lists[0]
	require.True(t, ok)
	assert.Equal(t, 1, list.Len())
	assert.Equal(t, "x", list.At(0).Get().Str)
}

// mathopSqrtProject: `when green flag clicked / set result to (sqrt of 9)`.
func mathopSqrtProject() ast.Project {
	sprite := ast.Target{
		Name: "Sprite1",
		Variables: map[string]ast.Variable{
			"resultVar": {ID: "resultVar", Name: "result", Value: ast.PVInteger(0)},
		},
		Lists:      map[string]ast.List{},
		Broadcasts: map[string]ast.Broadcast{},
		Blocks: map[string]ast.Block{
			"hat1": {ID: "hat1", Opcode: ast.EventWhenFlagClicked, TopLevel: true, Next: "set1"},
			"set1": {
				ID:     "set1",
				Opcode: ast.DataSetVariableTo,
				Inputs: map[string]ast.Evaluable{"VALUE": {BlockID: "math1"}},
				Fields: map[string]ast.Field{
					"VARIABLE": {Name: "VARIABLE", Value: "result", Ref: &ast.Pointer{Kind: ast.PointerVariable, ID: "resultVar", Name: "result"}},
				},
			},
			"math1": {
				ID:     "math1",
				Opcode: ast.OperatorMathop,
				Inputs: map[string]ast.Evaluable{"NUM": {Shadow: &ast.ShadowValue{Kind: ast.RKNumber, Num: 9}}},
				Fields: map[string]ast.Field{"OPERATOR": {Name: "OPERATOR", Value: "sqrt"}},
			},
		},
	}
	return ast.Project{Targets: []ast.Target{emptyStage(), sprite}}
}

func TestRunMathopSqrt(t *testing.T) {
	startup, err := transform.Transform(mathopSqrtProject())
	require.NoError(t, err)

	result := Run(startup, config.Default())
	require.False(t, result.Errored())

	cell, ok := startup.Locals[1].Variables[0]
	require.True(t, ok)
	assert.Equal(t, 3.0, cell.Get().Num)
}

// typeErrorProject: `when green flag clicked / set n to (1 + "not a number")`
// — operator_add on a non-numeric string must fail with a traceback that
// carries at least two frames (the failed number conversion plus the
// operator_add argument frame wrapped around it).
func typeErrorProject() ast.Project {
	sprite := ast.Target{
		Name: "Sprite1",
		Variables: map[string]ast.Variable{
			"nVar": {ID: "nVar", Name: "n", Value: ast.PVInteger(0)},
		},
		Lists:      map[string]ast.List{},
		Broadcasts: map[string]ast.Broadcast{},
		Blocks: map[string]ast.Block{
			"hat1": {ID: "hat1", Opcode: ast.EventWhenFlagClicked, TopLevel: true, Next: "set1"},
			"set1": {
				ID:     "set1",
				Opcode: ast.DataSetVariableTo,
				Inputs: map[string]ast.Evaluable{"VALUE": {BlockID: "add1"}},
				Fields: map[string]ast.Field{
					"VARIABLE": {Name: "VARIABLE", Value: "n", Ref: &ast.Pointer{Kind: ast.PointerVariable, ID: "nVar", Name: "n"}},
				},
			},
			"add1": {
				ID:     "add1",
				Opcode: ast.OperatorAdd,
				Inputs: map[string]ast.Evaluable{
					"NUM1": {Shadow: &ast.ShadowValue{Kind: ast.RKNumber, Num: 1}},
					"NUM2": {Shadow: &ast.ShadowValue{Kind: ast.RKString, Str: "not a number"}},
				},
			},
		},
	}
	return ast.Project{Targets: []ast.Target{emptyStage(), sprite}}
}

func TestRunTypeErrorProducesMultiFrameTraceback(t *testing.T) {
	startup, err := transform.Transform(typeErrorProject())
	require.NoError(t, err)

	result := Run(startup, config.Default())
	require.True(t, result.Errored())
	require.Len(t, result.Threads, 1)
	require.Error(t, result.Threads[0].Err)

	se, ok := result.Threads[0].Err.(*vmerrors.ScratchError)
	require.True(t, ok, "expected a *vmerrors.ScratchError, got %T", result.Threads[0].Err)
	assert.GreaterOrEqual(t, len(se.Trace), 2, "traceback should carry at least two frames")
}

// concurrentAppendProject spawns many sprites, each green-flag hat
// appending one item to a single Stage-scoped (global) list, to exercise
// the StateStore's per-list locking under real concurrency.
func concurrentAppendProject(n int) ast.Project {
	stage := ast.Target{
		Name:    "Stage",
		IsStage: true,
		Variables: map[string]ast.Variable{},
		Lists: map[string]ast.List{
			"sharedList": {ID: "sharedList", Name: "shared", Value: nil},
		},
		Broadcasts: map[string]ast.Broadcast{},
		Blocks:     map[string]ast.Block{},
	}

	targets := []ast.Target{stage}
	for i := 0; i < n; i++ {
		targets = append(targets, ast.Target{
			Name:       spriteName(i),
			Variables:  map[string]ast.Variable{},
			Lists:      map[string]ast.List{},
			Broadcasts: map[string]ast.Broadcast{},
			Blocks: map[string]ast.Block{
				"hat1": {ID: "hat1", Opcode: ast.EventWhenFlagClicked, TopLevel: true, Next: "add1"},
				"add1": {
					ID:     "add1",
					Opcode: ast.DataAddToList,
					Inputs: map[string]ast.Evaluable{"ITEM": {Shadow: &ast.ShadowValue{Kind: ast.RKString, Str: "x"}}},
					Fields: map[string]ast.Field{
						"LIST": {Name: "LIST", Value: "shared", Ref: &ast.Pointer{Kind: ast.PointerList, ID: "sharedList", Name: "shared"}},
					},
				},
			},
		})
	}
	return ast.Project{Targets: targets}
}

func spriteName(i int) string {
	return "Sprite" + string(rune('A'+i))
}

func TestRunConcurrentListAppendsReachExpectedLength(t *testing.T) {
	const n = 200
	startup, err := transform.Transform(concurrentAppendProject(n))
	require.NoError(t, err)

	result := Run(startup, config.Default())
	require.False(t, result.Errored())
	require.Len(t, result.Threads, n)

	list, ok := startup.Global.Lists[0]
	require.True(t, ok)
	assert.Equal(t, n, list.Len())
}

// daysSince2000Project: `when green flag clicked / set d to (days since 2000)`
// — just asserts the reporter runs without error and writes a Number.
func daysSince2000Project() ast.Project {
	sprite := ast.Target{
		Name: "Sprite1",
		Variables: map[string]ast.Variable{
			"dVar": {ID: "dVar", Name: "d", Value: ast.PVInteger(0)},
		},
		Lists:      map[string]ast.List{},
		Broadcasts: map[string]ast.Broadcast{},
		Blocks: map[string]ast.Block{
			"hat1": {ID: "hat1", Opcode: ast.EventWhenFlagClicked, TopLevel: true, Next: "set1"},
			"set1": {
				ID:     "set1",
				Opcode: ast.DataSetVariableTo,
				Inputs: map[string]ast.Evaluable{"VALUE": {BlockID: "days1"}},
				Fields: map[string]ast.Field{
					"VARIABLE": {Name: "VARIABLE", Value: "d", Ref: &ast.Pointer{Kind: ast.PointerVariable, ID: "dVar", Name: "d"}},
				},
			},
			"days1": {ID: "days1", Opcode: ast.SensingDaysSince2000},
		},
	}
	return ast.Project{Targets: []ast.Target{emptyStage(), sprite}}
}

func TestRunDaysSince2000(t *testing.T) {
	startup, err := transform.Transform(daysSince2000Project())
	require.NoError(t, err)

	result := Run(startup, config.Default())
	require.False(t, result.Errored())

	cell, ok := startup.Locals[1].Variables[0]
	require.True(t, ok)
	assert.Equal(t, ast.PrimNumber, cell.Get().Kind)
}
