package interp

import (
	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

// evalLiteral handles the shadow-only opcodes (math_*, colour_picker,
// text, note): blocks that exist purely as an input slot's literal editor
// widget. The transformer folds these into a Bare Evaluable via
// ast.ShadowValue whenever they sit directly in a slot, so reaching one
// here only happens when a project nests one as a real detached block —
// still handled, since nothing stops a malformed/hand-edited project from
// doing so.
func evalLiteral(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	switch se.Opcode {
	case ast.MathPositiveNumber, ast.MathWholeNumber, ast.MathInteger, ast.MathAngle:
		v, err := sargfloat(ctx, se, "NUM")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVNumber(v), nil

	case ast.ColourPicker:
		v, err := sargstr(ctx, se, "COLOUR")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVColor(v), nil

	case ast.Text:
		v, err := sargstr(ctx, se, "TEXT")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVString(v), nil

	case ast.Note:
		return ast.RVSuccess(), nil
	}

	return ast.RichValue{}, vmerrors.Internalf("not a literal opcode", string(se.Opcode))
}
