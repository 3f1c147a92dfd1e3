package interp

import (
	"strings"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

// evalTopLevel runs one compiled Expression — either a plain StackExpression
// or a transformed custom block invocation — and is what both a Thread's
// top-level loop and every nested substack call into.
func evalTopLevel(exp transform.Expression, ctx *Context) (ast.RichValue, error) {
	switch exp.Kind {
	case transform.ExprStack:
		return evalExp(exp.Stack, ctx)
	case transform.ExprInvokeCustomBlock:
		return invokeCustomBlock(exp.InvokeCustomBlock, ctx)
	}
	return ast.RichValue{}, vmerrors.Internalf("unrecognized expression kind", "evalTopLevel")
}

// evalExp dispatches a single compiled block by its opcode's category
// prefix ("motion_", "looks_", "operator_", ...) to the evaluator that
// owns that category, mirroring the opcode namespacing Scratch itself
// uses in project.json.
func evalExp(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	opcode := string(se.Opcode)

	var rv ast.RichValue
	var err error

	switch {
	case strings.HasPrefix(opcode, "motion_"):
		rv, err = evalMotion(se, ctx)
	case strings.HasPrefix(opcode, "looks_"):
		rv, err = evalLooks(se, ctx)
	case strings.HasPrefix(opcode, "sound_"):
		rv, err = evalSound(se, ctx)
	case strings.HasPrefix(opcode, "event_"):
		rv, err = evalEvent(se, ctx)
	case strings.HasPrefix(opcode, "control_"):
		rv, err = evalControl(se, ctx)
	case strings.HasPrefix(opcode, "sensing_"):
		rv, err = evalSensing(se, ctx)
	case strings.HasPrefix(opcode, "operator_"):
		rv, err = evalOperator(se, ctx)
	case strings.HasPrefix(opcode, "data_"):
		rv, err = evalData(se, ctx)
	case strings.HasPrefix(opcode, "procedures_"), strings.HasPrefix(opcode, "argument_"):
		rv, err = evalProcedures(se, ctx)
	case strings.HasPrefix(opcode, "math_"), strings.HasPrefix(opcode, "colour_"),
		opcode == "text", opcode == "note":
		rv, err = evalLiteral(se, ctx)
	default:
		return ast.RichValue{}, vmerrors.Internalf("unhandled opcode "+opcode, location(se))
	}

	if err != nil {
		if vmerrors.IsStopThisScript(err) {
			return ast.RichValue{}, err
		}
		return ast.RichValue{}, vmerrors.AsScratchError(err, location(se))
	}
	return rv, nil
}
