package interp

import (
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/petermattis/goid"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

// waitPoll is how often a sleeping ControlWait checks for a stop signal.
// Short enough that "stop all" feels immediate, long enough not to burn
// CPU busy-waiting a script full of short waits.
const waitPoll = 20 * time.Millisecond

// sleepInterruptible sleeps for d, checking ctx.Stopped() every waitPoll
// instead of blocking the whole duration uninterruptibly — so
// ControlStop "all" and "other scripts in sprite" take effect mid-wait
// rather than only between top-level statements.
func sleepInterruptible(d time.Duration, ctx *Context) {
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		if ctx.Stopped() {
			log.Printf("goroutine %d: wait interrupted, %s", goid.Get(), humanize.RelTime(time.Now(), deadline, "ago", "from now"))
			return
		}
		step := waitPoll
		if remaining < step {
			step = remaining
		}
		time.Sleep(step)
	}
}

// execBody runs a flattened substack sequentially, stopping early (with a
// nil error) the instant the enclosing Thread should exit, and stopping
// early (with ErrStopThisScript) when a nested ControlStop "this script"
// unwinds through it.
func execBody(body []transform.Expression, ctx *Context) error {
	for _, exp := range body {
		if ctx.Stopped() {
			return nil
		}
		if _, err := evalTopLevel(exp, ctx); err != nil {
			return err
		}
	}
	return nil
}

func evalControl(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	switch se.Opcode {
	case ast.ControlWait:
		secs, err := sargfloat(ctx, se, "DURATION")
		if err != nil {
			return ast.RichValue{}, err
		}
		if secs > 0 {
			sleepInterruptible(time.Duration(secs*ctx.WaitScale*float64(time.Second)), ctx)
		}
		return ast.RVSuccess(), nil

	case ast.ControlRepeat:
		times, err := sargfloat(ctx, se, "TIMES")
		if err != nil {
			return ast.RichValue{}, err
		}
		body := argBody(se, "SUBSTACK")
		for i := 0; i < int(times); i++ {
			if ctx.Stopped() {
				return ast.RVSuccess(), nil
			}
			if err := execBody(body, ctx); err != nil {
				return ast.RichValue{}, err
			}
		}
		return ast.RVSuccess(), nil

	case ast.ControlForever:
		body := argBody(se, "SUBSTACK")
		for {
			if ctx.Stopped() {
				return ast.RVSuccess(), nil
			}
			if err := execBody(body, ctx); err != nil {
				return ast.RichValue{}, err
			}
		}

	case ast.ControlIf:
		cond, err := sargbool(ctx, se, "CONDITION")
		if err != nil {
			return ast.RichValue{}, err
		}
		if cond {
			if err := execBody(argBody(se, "SUBSTACK"), ctx); err != nil {
				return ast.RichValue{}, err
			}
		}
		return ast.RVSuccess(), nil

	case ast.ControlIfElse:
		cond, err := sargbool(ctx, se, "CONDITION")
		if err != nil {
			return ast.RichValue{}, err
		}
		branch := "SUBSTACK2"
		if cond {
			branch = "SUBSTACK"
		}
		if err := execBody(argBody(se, branch), ctx); err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVSuccess(), nil

	case ast.ControlStop:
		opt, err := sargstr(ctx, se, "STOP_OPTION")
		if err != nil {
			return ast.RichValue{}, err
		}
		switch opt {
		case "all":
			ctx.Store.Stop.Set()
			ctx.Dispatcher.StopAllScripts()
			return ast.RichValue{}, vmerrors.ErrStopThisScript
		case "this script":
			return ast.RichValue{}, vmerrors.ErrStopThisScript
		case "other scripts in sprite":
			ctx.ThreadGen = ctx.Dispatcher.StopOtherScriptsInSprite(ctx.TargetIdx, ctx.ThreadGen)
			return ast.RVSuccess(), nil
		}
		return ast.RichValue{}, vmerrors.SyntaxErrorf("unknown control_stop option "+opt, location(se))

	case ast.ControlCreateCloneOf:
		target, err := resolveCloneTarget(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		if err := ctx.Dispatcher.CreateClone(target); err != nil {
			return ast.RichValue{}, vmerrors.AsScratchError(err, location(se))
		}
		return ast.RVSuccess(), nil

	case ast.ControlStartAsClone:
		return ast.RVSuccess(), nil

	case ast.ControlDeleteThisClone:
		if err := ctx.Dispatcher.DeleteClone(ctx.TargetIdx); err != nil {
			return ast.RichValue{}, vmerrors.AsScratchError(err, location(se))
		}
		return ast.RichValue{}, vmerrors.ErrStopThisScript
	}

	return ast.RichValue{}, vmerrors.Internalf("not a control opcode", string(se.Opcode))
}

func resolveCloneTarget(ctx *Context, se *transform.StackExpression) (int, error) {
	name, err := sargstr(ctx, se, "CLONE_OPTION")
	if err != nil {
		return 0, err
	}
	if name == "_myself_" {
		return ctx.TargetIdx, nil
	}
	for i, tgt := range ctx.Startup.Targets {
		if tgt.Name == name {
			return i, nil
		}
	}
	return 0, vmerrors.NotFoundErrorf("clone target "+name+" not found", location(se))
}
