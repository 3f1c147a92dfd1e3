package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockvm/corevm/internal/ast"
)

// simpleProject builds a one-sprite project: a green-flag hat sets a
// sprite-local variable "score" to the sum of two literal numbers via
// operator_add, i.e. `set score to (2 + 3)`.
func simpleProject() ast.Project {
	stage := ast.Target{
		Name:       "Stage",
		IsStage:    true,
		Variables:  map[string]ast.Variable{},
		Lists:      map[string]ast.List{},
		Broadcasts: map[string]ast.Broadcast{},
		Blocks:     map[string]ast.Block{},
	}

	addBlock := ast.Block{
		ID:     "add1",
		Opcode: ast.OperatorAdd,
		Inputs: map[string]ast.Evaluable{
			"NUM1": {Shadow: &ast.ShadowValue{Kind: ast.RKNumber, Num: 2}},
			"NUM2": {Shadow: &ast.ShadowValue{Kind: ast.RKNumber, Num: 3}},
		},
	}

	setBlock := ast.Block{
		ID:     "set1",
		Opcode: ast.DataSetVariableTo,
		Next:   "",
		Inputs: map[string]ast.Evaluable{
			"VALUE": {BlockID: "add1"},
		},
		Fields: map[string]ast.Field{
			"VARIABLE": {Name: "VARIABLE", Value: "score", Ref: &ast.Pointer{Kind: ast.PointerVariable, ID: "scoreVar", Name: "score"}},
		},
	}

	hatBlock := ast.Block{
		ID:       "hat1",
		Opcode:   ast.EventWhenFlagClicked,
		TopLevel: true,
		Next:     "set1",
	}

	sprite := ast.Target{
		Name:    "Sprite1",
		IsStage: false,
		Variables: map[string]ast.Variable{
			"scoreVar": {ID: "scoreVar", Name: "score", Value: ast.PVInteger(0)},
		},
		Lists:      map[string]ast.List{},
		Broadcasts: map[string]ast.Broadcast{},
		Blocks: map[string]ast.Block{
			"hat1": hatBlock,
			"set1": setBlock,
			"add1": addBlock,
		},
	}

	return ast.Project{Targets: []ast.Target{stage, sprite}}
}

func TestTransformBuildsOneGreenFlagThread(t *testing.T) {
	startup, err := Transform(simpleProject())
	require.NoError(t, err)

	require.Len(t, startup.Targets, 2)
	assert.True(t, startup.Targets[0].IsStage)
	assert.Equal(t, "Sprite1", startup.Targets[1].Name)

	sprite := startup.Targets[1]
	require.Len(t, sprite.Threads, 1)
	thread := sprite.Threads[0]
	assert.Equal(t, TriggerGreenFlag, thread.Trigger.Kind)
	require.Len(t, thread.Code, 2)
	assert.Equal(t, ast.EventWhenFlagClicked, thread.Code[0].Stack.Opcode)

	exp := thread.Code[1]
	require.Equal(t, ExprStack, exp.Kind)
	assert.Equal(t, ast.DataSetVariableTo, exp.Stack.Opcode)

	valueDep := exp.Stack.Dependencies["VALUE"]
	require.Equal(t, EvBlock, valueDep.Kind)
	assert.Equal(t, ast.OperatorAdd, valueDep.Block.Opcode)

	varDep := exp.Stack.Dependencies["VARIABLE"]
	require.Equal(t, EvField, varDep.Kind)
	require.NotNil(t, varDep.Field.Pointer)
	assert.Equal(t, "score", varDep.Field.Pointer.Name)
}

func TestTransformRejectsProjectWithoutStage(t *testing.T) {
	_, err := Transform(ast.Project{Targets: []ast.Target{{Name: "Sprite1"}}})
	assert.Error(t, err)
}

func TestTransformInternsGlobalAndLocalVariableNamesSeparately(t *testing.T) {
	proj := simpleProject()
	startup, err := Transform(proj)
	require.NoError(t, err)

	sprite := startup.Targets[1]
	var found bool
	for _, name := range sprite.VarNames {
		if name == "score" {
			found = true
		}
	}
	assert.True(t, found, "sprite-local var name table should carry the variable's display name")
	assert.Empty(t, startup.GlobalVarNames, "a variable declared on a sprite must not leak into global name table")
}

func TestTransformCompilesSubstackAsEvStack(t *testing.T) {
	ifBlock := ast.Block{
		ID:        "if1",
		Opcode:    ast.ControlIf,
		TopLevel:  false,
		Substacks: map[string]string{"SUBSTACK": "inner1"},
		Inputs: map[string]ast.Evaluable{
			"CONDITION": {Shadow: &ast.ShadowValue{Kind: ast.RKBoolean}},
		},
	}
	innerBlock := ast.Block{
		ID:     "inner1",
		Opcode: ast.LooksShow,
	}
	hat := ast.Block{ID: "hat1", Opcode: ast.EventWhenFlagClicked, TopLevel: true, Next: "if1"}

	sprite := ast.Target{
		Name:       "Sprite1",
		Variables:  map[string]ast.Variable{},
		Lists:      map[string]ast.List{},
		Broadcasts: map[string]ast.Broadcast{},
		Blocks: map[string]ast.Block{
			"hat1":   hat,
			"if1":    ifBlock,
			"inner1": innerBlock,
		},
	}
	stage := ast.Target{Name: "Stage", IsStage: true, Variables: map[string]ast.Variable{}, Lists: map[string]ast.List{}, Broadcasts: map[string]ast.Broadcast{}, Blocks: map[string]ast.Block{}}

	startup, err := Transform(ast.Project{Targets: []ast.Target{stage, sprite}})
	require.NoError(t, err)

	thread := startup.Targets[1].Threads[0]
	ifExp := thread.Code[1].Stack
	body := ifExp.Dependencies["SUBSTACK"]
	require.Equal(t, EvStack, body.Kind)
	require.Len(t, body.Body, 1)
	assert.Equal(t, ast.LooksShow, body.Body[0].Stack.Opcode)
}
