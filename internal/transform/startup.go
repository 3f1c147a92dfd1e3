package transform

import "github.com/blockvm/corevm/internal/state"

// VMStartup is the complete output of Transform: the interned global
// state, one compiled TargetStartup plus one freshly-built LocalState per
// Target (in the same order), and an index from a custom block's dense
// proc id to where its definition thread lives.
type VMStartup struct {
	Global  *state.GlobalState
	Locals  []*state.LocalState
	Targets []TargetStartup

	// ProcIndex resolves a proc id (as carried on an InvokeCustomBlockExpr)
	// to the target/thread that defines it.
	ProcIndex map[uint32]ProcInfo

	// GlobalVarNames and GlobalListNames map a Stage-scoped variable/list's
	// dense id back to its display name. Nothing at runtime needs this —
	// StackExpression dependencies already carry resolved dense ids — but
	// the debug inspection surface addresses variables by name, so the
	// name is kept here rather than threaded back out of ast.Project.
	GlobalVarNames  map[uint32]string
	GlobalListNames map[uint32]string
}
