package interp

import (
	"time"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/state"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

// epoch2000 is 2000-01-01T00:00:00Z, the reference point SensingDaysSince2000
// measures against.
var epoch2000 = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func evalSensing(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	rt := ctx.Store.Local.Runtime

	switch se.Opcode {
	case ast.SensingTouchingObject, ast.SensingTouchingColor, ast.SensingColorIsTouchingColor:
		// No renderer, so no two targets ever overlap.
		return ast.RVBoolean(false), nil

	case ast.SensingDistanceTo:
		return ast.RVNumber(0), nil

	case ast.SensingKeyPressed, ast.SensingMouseDown:
		// No input device is wired into this headless runtime.
		return ast.RVBoolean(false), nil

	case ast.SensingMouseX, ast.SensingMouseY:
		return ast.RVNumber(0), nil

	case ast.SensingSetDragMode:
		return ast.RVSuccess(), nil

	case ast.SensingResetTimer:
		rt.With(func(r *state.RuntimeTarget) { r.Timer = 0 })
		return ast.RVSuccess(), nil

	case ast.SensingDaysSince2000:
		return ast.RVNumber(time.Since(epoch2000).Hours() / 24), nil

	case ast.SensingUsername:
		return ast.RVString(""), nil
	}

	return ast.RichValue{}, vmerrors.Internalf("not a sensing opcode", string(se.Opcode))
}
