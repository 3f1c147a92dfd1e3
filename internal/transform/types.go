// Package transform compiles a parsed ast.Project into a VMStartup: every
// Variable/List/Broadcast id is interned from its project.json string into
// a dense uint32, and every hat-rooted chain of blocks is flattened into a
// linear []Expression a Thread's goroutine walks top to bottom.
package transform

import "github.com/blockvm/corevm/internal/ast"

// PointerKind mirrors ast.PointerKind, but against dense ids.
type PointerKind = ast.PointerKind

const (
	PointerVariable  = ast.PointerVariable
	PointerList      = ast.PointerList
	PointerBroadcast = ast.PointerBroadcast
)

// ValuePointer is the post-transform counterpart of ast.Pointer: the same
// Variable/List/Broadcast reference, now addressed by the dense id the
// StateStore actually indexes with.
type ValuePointer struct {
	Kind PointerKind
	Name string
	ID   uint32
}

// FieldRef is a transformed ast.Field: its display text, plus a resolved
// ValuePointer when the field names a Variable/List/Broadcast rather than
// a plain literal.
type FieldRef struct {
	DisplayValue string
	Pointer      *ValuePointer
}

// EvalKind discriminates Evaluable's variants.
type EvalKind int

const (
	EvBare EvalKind = iota
	EvPointer
	EvBlock
	EvField
	EvDefault
	EvStack
)

// Evaluable is one resolved input-slot dependency of a StackExpression:
// a literal RichValue, a Variable/List/Broadcast pointer, a nested
// reporter block, a field, an empty slot, or (the one variant with no
// counterpart in the original source, which left every control-flow
// opcode unimplemented) a Stack — the flattened body of a substack input
// like SUBSTACK/SUBSTACK2, produced by recursively applying the same
// hat-extraction walk to the substack's first block id.
type Evaluable struct {
	Kind    EvalKind
	Bare    ast.RichValue
	Pointer ValuePointer
	Block   *StackExpression
	Field   FieldRef
	Body    []Expression
}

// StackExpression is a single compiled block: its opcode, its resolved
// input/field dependencies by project.json input/field name, and the
// original block id (kept for error location strings).
type StackExpression struct {
	Opcode       ast.BlockType
	Dependencies map[string]Evaluable
	BlockID      string
}

// InvokeCustomBlockExpr replaces a ProceduresCall expression at transform
// time: the call site no longer needs the callee's proccode string, only
// its dense proc id and the caller's actual argument values keyed by the
// callee's dense argument ids.
type InvokeCustomBlockExpr struct {
	Target    uint32
	Arguments map[uint32]Evaluable
	BlockID   string
}

// ExprKind discriminates Expression's two variants.
type ExprKind int

const (
	ExprStack ExprKind = iota
	ExprInvokeCustomBlock
)

// Expression is one entry of a Thread's flattened code: either a plain
// compiled block, or (when the original block was a ProceduresCall) an
// InvokeCustomBlock naming the callee by dense id.
type Expression struct {
	Kind              ExprKind
	Stack             *StackExpression
	InvokeCustomBlock *InvokeCustomBlockExpr
}

// TriggerKind is what starts a Thread running. The original source left
// every hat but green-flag and custom-block-definition defaulting to a
// single GreenFlag trigger; this enumerates one trigger per hat block so
// key-press, broadcast, clone-start, and the rest actually dispatch
// correctly instead of all firing at launch.
type TriggerKind int

const (
	TriggerGreenFlag TriggerKind = iota
	TriggerKeyPressed
	TriggerSpriteClicked
	TriggerStageClicked
	TriggerBackdropSwitchesTo
	TriggerGreaterThan
	TriggerBroadcastReceived
	TriggerStartAsClone
	TriggerCustomBlock
)

// ThreadTrigger is the resolved condition under which a Thread's goroutine
// is spawned.
type ThreadTrigger struct {
	Kind TriggerKind

	Key             string  // TriggerKeyPressed: the key name, or "any"
	BroadcastID     uint32  // TriggerBroadcastReceived
	BackdropName    string  // TriggerBackdropSwitchesTo
	GreaterThanWhat string  // TriggerGreaterThan: "TIMER" or "LOUDNESS"
	GreaterThanExpr Evaluable // TriggerGreaterThan: the threshold reporter
	ProcID          uint32  // TriggerCustomBlock
}

// Thread is one hat block's compiled body, ready to run as a goroutine
// whenever its ThreadTrigger fires.
type Thread struct {
	Trigger ThreadTrigger
	Code    []Expression

	// CustomBlockArguments holds a custom block's declared argument ids
	// mapped to their editor-default PrimitiveValue, used to seed a call
	// frame for any argument id the caller didn't supply.
	CustomBlockArguments map[uint32]ast.PrimitiveValue
	// CustomBlockArgNames maps an argument's display name (as referenced
	// by argument_reporter_string_number/_boolean blocks in the body) to
	// its dense argument id.
	CustomBlockArgNames map[string]uint32
}

// ProcInfo locates a compiled custom block definition: which target owns
// it and which of that target's Threads is its body.
type ProcInfo struct {
	TargetIndex int
	ThreadIndex int
}

// TargetStartup is one compiled Target: its own LocalState id space and
// its compiled Threads.
type TargetStartup struct {
	Name    string
	IsStage bool
	Threads []Thread

	// VarNames and ListNames map this Target's own local variable/list
	// dense ids back to their display names, for the debug inspection
	// surface; see VMStartup.GlobalVarNames for why this is kept at all.
	VarNames  map[uint32]string
	ListNames map[uint32]string
}
