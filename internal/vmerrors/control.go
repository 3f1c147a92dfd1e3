package vmerrors

import "errors"

// ErrStopThisScript is the sentinel a ControlStop "this script" mutation
// unwinds with. A Thread catches it at its top-level Expression loop and
// finishes cleanly — it is never surfaced as a Errored traceback.
var ErrStopThisScript = errors.New("stop this script")

// IsStopThisScript reports whether err is (or wraps) ErrStopThisScript.
func IsStopThisScript(err error) bool {
	return errors.Is(err, ErrStopThisScript)
}
