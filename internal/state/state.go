// Package state is the StateStore: concurrent storage for every Variable
// and List a Project declares, addressed by the dense integer ids the
// transformer assigns. Each cell carries its own lock, so unrelated
// variables never contend, and lists use an outer lock for shape changes
// (push/insert/remove) wrapping per-element locked cells so a read of one
// element never blocks a write to another.
package state

import (
	"sync"
	"sync/atomic"

	"github.com/blockvm/corevm/internal/ast"
)

// Cell is a single lockable storage location holding one PrimitiveValue.
type Cell struct {
	mu  sync.RWMutex
	val ast.PrimitiveValue
}

func NewCell(v ast.PrimitiveValue) *Cell {
	return &Cell{val: v}
}

func (c *Cell) Get() ast.PrimitiveValue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

func (c *Cell) Set(v ast.PrimitiveValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val = v
}

// Update atomically reads and writes a Cell's value under a single lock
// acquisition, for compound operations like DataChangeVariableBy where the
// read-then-write of one cell must not interleave with another write to
// the same cell. Note this gives per-cell atomicity only: a change that
// spans multiple cells (or re-reads a List's Length before writing) is
// never atomic as a whole.
func (c *Cell) Update(f func(ast.PrimitiveValue) ast.PrimitiveValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val = f(c.val)
}

// ListHandle is a List's storage: an outer lock guards the slice's shape
// (append/insert/delete/clear/replace-by-growing), while each element is
// independently a *Cell so plain index reads/writes don't need the outer
// lock beyond a brief RLock to snapshot the slice header.
type ListHandle struct {
	mu    sync.RWMutex
	cells []*Cell
}

func NewListHandle(initial []ast.PrimitiveValue) *ListHandle {
	cells := make([]*Cell, len(initial))
	for i, v := range initial {
		cells[i] = NewCell(v)
	}
	return &ListHandle{cells: cells}
}

// Len returns the current element count.
func (l *ListHandle) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cells)
}

// At returns the Cell at a 0-based index, or nil if out of range. Callers
// implementing Scratch's 1-based list opcodes convert before calling this.
func (l *ListHandle) At(i int) *Cell {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.cells) {
		return nil
	}
	return l.cells[i]
}

// Append adds one element to the end.
func (l *ListHandle) Append(v ast.PrimitiveValue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cells = append(l.cells, NewCell(v))
}

// InsertAt inserts v so it becomes the element at 0-based index i. Silently
// clamps into [0, len] rather than erroring; callers enforce the 1-based
// bounds policy before reaching here.
func (l *ListHandle) InsertAt(i int, v ast.PrimitiveValue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if i > len(l.cells) {
		i = len(l.cells)
	}
	l.cells = append(l.cells, nil)
	copy(l.cells[i+1:], l.cells[i:])
	l.cells[i] = NewCell(v)
}

// DeleteAt removes the 0-based index i. Returns false (no-op) if out of
// range — per the runtime's defensive out-of-bounds policy, not an error.
func (l *ListHandle) DeleteAt(i int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.cells) {
		return false
	}
	l.cells = append(l.cells[:i], l.cells[i+1:]...)
	return true
}

// Clear removes every element.
func (l *ListHandle) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cells = l.cells[:0]
}

// ReplaceAt overwrites the 0-based index i in place. Returns false (no-op)
// if out of range.
func (l *ListHandle) ReplaceAt(i int, v ast.PrimitiveValue) bool {
	cell := l.At(i)
	if cell == nil {
		return false
	}
	cell.Set(v)
	return true
}

// Snapshot copies out every element's current value. Used by the list
// contents, item-number and contains reporters and by clone creation
// (which deep-copies a target's lists).
func (l *ListHandle) Snapshot() []ast.PrimitiveValue {
	l.mu.RLock()
	cells := make([]*Cell, len(l.cells))
	copy(cells, l.cells)
	l.mu.RUnlock()

	out := make([]ast.PrimitiveValue, len(cells))
	for i, c := range cells {
		out[i] = c.Get()
	}
	return out
}

// GlobalState holds every Variable/List/Broadcast declared on the Stage:
// shared across all Targets' Threads for the lifetime of a run.
type GlobalState struct {
	Variables  map[uint32]*Cell
	Lists      map[uint32]*ListHandle
	Broadcasts map[uint32]string
}

func NewGlobalState() *GlobalState {
	return &GlobalState{
		Variables:  make(map[uint32]*Cell),
		Lists:      make(map[uint32]*ListHandle),
		Broadcasts: make(map[uint32]string),
	}
}

// LocalState holds one Target's own Variables/Lists/Broadcasts, shared by
// every Thread of that Target (and, for a clone, its own fresh copy).
type LocalState struct {
	Name       string
	Variables  map[uint32]*Cell
	Lists      map[uint32]*ListHandle
	Broadcasts map[uint32]string
	Runtime    *RuntimeTarget

	// StopGeneration is bumped by "stop other scripts in sprite"; every
	// Thread of this Target checks it against the generation it captured
	// at spawn time and exits cleanly the instant it no longer matches.
	StopGeneration atomic.Uint64
}

func NewLocalState(name string) *LocalState {
	return &LocalState{
		Name:       name,
		Variables:  make(map[uint32]*Cell),
		Lists:      make(map[uint32]*ListHandle),
		Broadcasts: make(map[uint32]string),
		Runtime:    NewRuntimeTarget(),
	}
}

// Clone deep-copies a LocalState's Variables and Lists (fresh Cells/
// ListHandles with the same current values) for control_create_clone_of.
// Broadcasts are shared by name/id, never copied.
func (l *LocalState) Clone(newName string) *LocalState {
	c := NewLocalState(newName)
	for id, cell := range l.Variables {
		c.Variables[id] = NewCell(cell.Get())
	}
	for id, list := range l.Lists {
		c.Lists[id] = NewListHandle(list.Snapshot())
	}
	for id, name := range l.Broadcasts {
		c.Broadcasts[id] = name
	}
	return c
}
