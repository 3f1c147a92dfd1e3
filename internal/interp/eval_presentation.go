package interp

import (
	"fmt"
	"math"
	"time"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/state"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

func evalMotion(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	rt := ctx.Store.Local.Runtime

	switch se.Opcode {
	case ast.MotionMoveSteps:
		steps, err := sargfloat(ctx, se, "STEPS")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) {
			rad := (90 - r.Direction) * math.Pi / 180
			r.X += steps * math.Cos(rad)
			r.Y += steps * math.Sin(rad)
		})
		return ast.RVSuccess(), nil

	case ast.MotionTurnRight:
		deg, err := sargfloat(ctx, se, "DEGREES")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.Direction = normalizeDirection(r.Direction + deg) })
		return ast.RVSuccess(), nil

	case ast.MotionTurnLeft:
		deg, err := sargfloat(ctx, se, "DEGREES")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.Direction = normalizeDirection(r.Direction - deg) })
		return ast.RVSuccess(), nil

	case ast.MotionGoToXY:
		x, err := sargfloat(ctx, se, "X")
		if err != nil {
			return ast.RichValue{}, err
		}
		y, err := sargfloat(ctx, se, "Y")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.X, r.Y = x, y })
		return ast.RVSuccess(), nil

	case ast.MotionGoTo, ast.MotionGlideTo:
		// No other targets are positioned by this headless runtime;
		// accepted as a no-op destination.
		return ast.RVSuccess(), nil

	case ast.MotionGlideSecsToXY:
		secs, err := sargfloat(ctx, se, "SECS")
		if err != nil {
			return ast.RichValue{}, err
		}
		x, err := sargfloat(ctx, se, "X")
		if err != nil {
			return ast.RichValue{}, err
		}
		y, err := sargfloat(ctx, se, "Y")
		if err != nil {
			return ast.RichValue{}, err
		}
		if secs > 0 {
			time.Sleep(time.Duration(secs * ctx.WaitScale * float64(time.Second)))
		}
		rt.With(func(r *state.RuntimeTarget) { r.X, r.Y = x, y })
		return ast.RVSuccess(), nil

	case ast.MotionPointInDirection:
		deg, err := sargfloat(ctx, se, "DIRECTION")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.Direction = normalizeDirection(deg) })
		return ast.RVSuccess(), nil

	case ast.MotionPointTowards:
		return ast.RVSuccess(), nil

	case ast.MotionChangeXBy:
		dx, err := sargfloat(ctx, se, "DX")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.X += dx })
		return ast.RVSuccess(), nil

	case ast.MotionSetX:
		x, err := sargfloat(ctx, se, "X")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.X = x })
		return ast.RVSuccess(), nil

	case ast.MotionChangeYBy:
		dy, err := sargfloat(ctx, se, "DY")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.Y += dy })
		return ast.RVSuccess(), nil

	case ast.MotionSetY:
		y, err := sargfloat(ctx, se, "Y")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.Y = y })
		return ast.RVSuccess(), nil

	case ast.MotionIfOnEdgeBounce, ast.MotionSetRotationStyle:
		return ast.RVSuccess(), nil
	}

	return ast.RichValue{}, vmerrors.Internalf("not a motion opcode", string(se.Opcode))
}

func normalizeDirection(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}

func evalLooks(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	rt := ctx.Store.Local.Runtime

	switch se.Opcode {
	case ast.LooksSayForSecs, ast.LooksThinkForSecs:
		msg, err := sargstr(ctx, se, "MESSAGE")
		if err != nil {
			return ast.RichValue{}, err
		}
		secs, err := sargfloat(ctx, se, "SECS")
		if err != nil {
			return ast.RichValue{}, err
		}
		ctx.Dispatcher.Println(fmt.Sprintf("%s: %s", ctx.Store.Local.Name, msg))
		if secs > 0 {
			time.Sleep(time.Duration(secs * ctx.WaitScale * float64(time.Second)))
		}
		return ast.RVSuccess(), nil

	case ast.LooksSay, ast.LooksThink:
		msg, err := sargstr(ctx, se, "MESSAGE")
		if err != nil {
			return ast.RichValue{}, err
		}
		ctx.Dispatcher.Println(fmt.Sprintf("%s: %s", ctx.Store.Local.Name, msg))
		return ast.RVSuccess(), nil

	case ast.LooksSwitchBackdropTo, ast.LooksSwitchBackdropToAndWait, ast.LooksNextBackdrop, ast.LooksNextCostume:
		rt.With(func(r *state.RuntimeTarget) { r.Costume++ })
		return ast.RVSuccess(), nil

	case ast.LooksChangeSizeBy:
		d, err := sargfloat(ctx, se, "CHANGE")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.Size += d })
		return ast.RVSuccess(), nil

	case ast.LooksSetSizeTo:
		v, err := sargfloat(ctx, se, "SIZE")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.Size = v })
		return ast.RVSuccess(), nil

	case ast.LooksChangeEffectBy:
		effect, err := sargstr(ctx, se, "EFFECT")
		if err != nil {
			return ast.RichValue{}, err
		}
		d, err := sargfloat(ctx, se, "CHANGE")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.GraphicEffects[effect] += d })
		return ast.RVSuccess(), nil

	case ast.LooksSetEffectTo:
		effect, err := sargstr(ctx, se, "EFFECT")
		if err != nil {
			return ast.RichValue{}, err
		}
		v, err := sargfloat(ctx, se, "VALUE")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.GraphicEffects[effect] = v })
		return ast.RVSuccess(), nil

	case ast.LooksClearGraphicEffects:
		rt.With(func(r *state.RuntimeTarget) { r.GraphicEffects = make(map[string]float64) })
		return ast.RVSuccess(), nil

	case ast.LooksShow:
		rt.With(func(r *state.RuntimeTarget) { r.Visible = true })
		return ast.RVSuccess(), nil

	case ast.LooksHide:
		rt.With(func(r *state.RuntimeTarget) { r.Visible = false })
		return ast.RVSuccess(), nil

	case ast.LooksGoToFrontBack, ast.LooksGoForwardBackwardLayers:
		return ast.RVSuccess(), nil
	}

	return ast.RichValue{}, vmerrors.Internalf("not a looks opcode", string(se.Opcode))
}

func evalSound(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	rt := ctx.Store.Local.Runtime

	switch se.Opcode {
	case ast.SoundStopAllSounds:
		return ast.RVSuccess(), nil

	case ast.SoundChangeEffectBy:
		effect, err := sargstr(ctx, se, "EFFECT")
		if err != nil {
			return ast.RichValue{}, err
		}
		d, err := sargfloat(ctx, se, "VALUE")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.SoundEffects[effect] += d })
		return ast.RVSuccess(), nil

	case ast.SoundSetEffectTo:
		effect, err := sargstr(ctx, se, "EFFECT")
		if err != nil {
			return ast.RichValue{}, err
		}
		v, err := sargfloat(ctx, se, "VALUE")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.SoundEffects[effect] = v })
		return ast.RVSuccess(), nil

	case ast.SoundClearEffects:
		rt.With(func(r *state.RuntimeTarget) { r.SoundEffects = make(map[string]float64) })
		return ast.RVSuccess(), nil

	case ast.SoundChangeVolumeBy:
		d, err := sargfloat(ctx, se, "VOLUME")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.Volume += d })
		return ast.RVSuccess(), nil

	case ast.SoundSetVolumeTo:
		v, err := sargfloat(ctx, se, "VOLUME")
		if err != nil {
			return ast.RichValue{}, err
		}
		rt.With(func(r *state.RuntimeTarget) { r.Volume = v })
		return ast.RVSuccess(), nil
	}

	return ast.RichValue{}, vmerrors.Internalf("not a sound opcode", string(se.Opcode))
}

// evalEvent handles the hat opcodes themselves, which simply succeed when
// reached as the first statement of a running Thread (their real effect —
// deciding whether and when the Thread runs at all — already happened in
// the Scheduler's dispatch). EventBroadcast/EventBroadcastAndWait are the
// two event_ opcodes that act as statements mid-script.
func evalEvent(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	switch se.Opcode {
	case ast.EventWhenFlagClicked, ast.EventWhenBroadcastReceived, ast.EventWhenKeyPressed,
		ast.EventWhenThisSpriteClicked, ast.EventWhenStageClicked, ast.EventWhenBackdropSwitchesTo,
		ast.EventWhenGreaterThan:
		return ast.RVSuccess(), nil

	case ast.EventBroadcast:
		ptr, err := sargptr(se, "BROADCAST_INPUT")
		if err != nil {
			return ast.RichValue{}, err
		}
		ctx.Dispatcher.Broadcast(ptr.ID)
		return ast.RVSuccess(), nil

	case ast.EventBroadcastAndWait:
		ptr, err := sargptr(se, "BROADCAST_INPUT")
		if err != nil {
			return ast.RichValue{}, err
		}
		done := ctx.Dispatcher.Broadcast(ptr.ID)
		for _, d := range done {
			<-d
		}
		return ast.RVSuccess(), nil
	}

	return ast.RichValue{}, vmerrors.Internalf("not an event opcode", string(se.Opcode))
}
