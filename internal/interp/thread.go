package interp

import (
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

// RunThread drives one hat-rooted Thread's compiled code from start to
// finish against ctx. It is the goroutine entrypoint a Scheduler spawns
// per Thread: green flag and message hats that never loop still return
// once their code runs out, while control_forever/control_repeat hold
// the goroutine until ControlStop or Stopped() ends them.
//
// A nil error means the Thread finished cleanly, whether by running off
// the end of its code or by unwinding through ControlStop "this script"
// or "delete this clone". Any other error is the Thread's final,
// traceback-carrying failure.
func RunThread(thread *transform.Thread, ctx *Context) error {
	for _, exp := range thread.Code {
		if ctx.Stopped() {
			return nil
		}
		if _, err := evalTopLevel(exp, ctx); err != nil {
			if vmerrors.IsStopThisScript(err) {
				return nil
			}
			return err
		}
	}
	return nil
}
