package ast

// PointerKind discriminates what a string-id reference points at.
type PointerKind int

const (
	PointerVariable PointerKind = iota
	PointerList
	PointerBroadcast
)

// Pointer is a reference to a Variable, List, or Broadcast by its
// project.json string id. The transformer interns these into dense
// integer ids; everything upstream of that still deals in strings, since
// that's the unit project.json itself uses.
type Pointer struct {
	Kind PointerKind
	ID   string
	Name string
}

// ShadowType distinguishes whether an input slot's attached shadow block
// (the literal editor widget, e.g. a number box) is actually in effect, or
// has been obscured by a real block plugged into the same slot.
type ShadowType int

const (
	ShadowOnly ShadowType = iota
	ShadowObscured
	NoShadow
)

// ShadowValue is the literal payload carried directly in an input slot,
// as opposed to a reference to another block. When Pointer is set, the
// shadow names a Variable/List/Broadcast directly (project.json's array
// shapes 12/13 for a bare variable/list reporter dropped into a slot,
// plus the broadcast menu's own shape) rather than carrying a literal;
// otherwise exactly one of Kind/Num/Int/Str is meaningful.
type ShadowValue struct {
	Kind    RichKind
	Num     float64
	Int     int64
	Str     string
	Pointer *Pointer
}

// Field is a dropdown/menu value attached directly to a block (e.g. the
// key name in "when key _ pressed"), never itself a nested block.
type Field struct {
	Name  string
	Value string
	// Ref is set when the field names a Variable/List/Broadcast rather
	// than a plain literal (e.g. data_variable's VARIABLE field).
	Ref *Pointer
}

// Evaluable is an input slot: either a nested Block (by id), a literal
// ShadowValue, or both (obscured shadow retains the literal for when the
// block is later detached in the editor — irrelevant to execution, which
// always prefers the Block when present).
type Evaluable struct {
	ShadowKind ShadowType
	BlockID    string       // set when a real block occupies the slot
	Shadow     *ShadowValue // the literal, when present
}

// MutationKind discriminates the three custom-block-adjacent mutation
// payloads a block can carry.
type MutationKind int

const (
	MutationNone MutationKind = iota
	MutationProcedureCall
	MutationProcedurePrototype
	MutationControlStop
)

// Mutation carries the extra, block-specific metadata Scratch stores
// outside the normal inputs/fields shape: custom block call signatures,
// custom block prototypes, and control_stop's "hasnext" flag.
type Mutation struct {
	Kind MutationKind

	// MutationProcedureCall / MutationProcedurePrototype
	ProcCode  string
	ArgIDs    []string
	ArgNames  []string
	ArgDefaults []string
	Warp      bool

	// MutationControlStop
	HasNext bool
}

// Block is one node of the block graph: an opcode plus its inputs,
// fields, optional mutation, and linked-list position within its stack.
type Block struct {
	ID       string
	Opcode   BlockType
	Parent   string // empty if top-level
	Next     string // empty if last in its stack
	TopLevel bool
	Shadow   bool // true for blocks that exist only as input-slot shadows

	Inputs map[string]Evaluable
	Fields map[string]Field

	Mutation *Mutation

	// Substacks are the bodies of control-flow blocks (control_if's
	// SUBSTACK, control_if_else's SUBSTACK2, control_repeat's SUBSTACK,
	// ...), keyed by the project.json input name. They hold the id of
	// the first block in the nested stack, same as Next does for the
	// top-level chain.
	Substacks map[string]string

	X, Y float64
}
