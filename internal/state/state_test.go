package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockvm/corevm/internal/ast"
)

func TestCellGetSet(t *testing.T) {
	c := NewCell(ast.PVInteger(1))
	assert.Equal(t, ast.PVInteger(1), c.Get())
	c.Set(ast.PVString("hi"))
	assert.Equal(t, ast.PVString("hi"), c.Get())
}

func TestCellUpdateIsAtomicPerCell(t *testing.T) {
	c := NewCell(ast.PVInteger(0))
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(v ast.PrimitiveValue) ast.PrimitiveValue {
				return ast.PVInteger(v.Int + 1)
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(100), c.Get().Int)
}

func TestListHandleAppendAndAt(t *testing.T) {
	l := NewListHandle(nil)
	l.Append(ast.PVString("a"))
	l.Append(ast.PVString("b"))
	require.Equal(t, 2, l.Len())
	assert.Equal(t, ast.PVString("a"), l.At(0).Get())
	assert.Equal(t, ast.PVString("b"), l.At(1).Get())
	assert.Nil(t, l.At(-1))
	assert.Nil(t, l.At(2))
}

func TestListHandleInsertAt(t *testing.T) {
	l := NewListHandle([]ast.PrimitiveValue{ast.PVString("a"), ast.PVString("c")})
	l.InsertAt(1, ast.PVString("b"))
	require.Equal(t, 3, l.Len())
	assert.Equal(t, "a", l.At(0).Get().Str)
	assert.Equal(t, "b", l.At(1).Get().Str)
	assert.Equal(t, "c", l.At(2).Get().Str)
}

func TestListHandleInsertAtClampsOutOfRange(t *testing.T) {
	l := NewListHandle([]ast.PrimitiveValue{ast.PVString("a")})
	l.InsertAt(99, ast.PVString("z"))
	require.Equal(t, 2, l.Len())
	assert.Equal(t, "z", l.At(1).Get().Str)
}

func TestListHandleDeleteAt(t *testing.T) {
	l := NewListHandle([]ast.PrimitiveValue{ast.PVString("a"), ast.PVString("b")})
	assert.True(t, l.DeleteAt(0))
	require.Equal(t, 1, l.Len())
	assert.Equal(t, "b", l.At(0).Get().Str)
	assert.False(t, l.DeleteAt(5))
}

func TestListHandleClear(t *testing.T) {
	l := NewListHandle([]ast.PrimitiveValue{ast.PVString("a"), ast.PVString("b")})
	l.Clear()
	assert.Equal(t, 0, l.Len())
}

func TestListHandleReplaceAt(t *testing.T) {
	l := NewListHandle([]ast.PrimitiveValue{ast.PVString("a")})
	assert.True(t, l.ReplaceAt(0, ast.PVString("z")))
	assert.Equal(t, "z", l.At(0).Get().Str)
	assert.False(t, l.ReplaceAt(3, ast.PVString("z")))
}

func TestListHandleSnapshot(t *testing.T) {
	l := NewListHandle([]ast.PrimitiveValue{ast.PVInteger(1), ast.PVInteger(2)})
	snap := l.Snapshot()
	assert.Equal(t, []ast.PrimitiveValue{ast.PVInteger(1), ast.PVInteger(2)}, snap)
}

func TestStoreResolveVarPrefersLocalOverGlobal(t *testing.T) {
	global := NewGlobalState()
	global.Variables[1] = NewCell(ast.PVString("global"))

	local := NewLocalState("Sprite1")
	local.Variables[1] = NewCell(ast.PVString("local"))

	store := NewStore(local, global, &StopAll{})
	cell, ok := store.ResolveVar(1)
	require.True(t, ok)
	assert.Equal(t, "local", cell.Get().Str)

	// A global-only id still resolves.
	global.Variables[2] = NewCell(ast.PVString("global-only"))
	cell, ok = store.ResolveVar(2)
	require.True(t, ok)
	assert.Equal(t, "global-only", cell.Get().Str)

	_, ok = store.ResolveVar(99)
	assert.False(t, ok)
}

func TestLocalStateCloneDeepCopiesAndSharesBroadcasts(t *testing.T) {
	l := NewLocalState("Sprite1")
	l.Variables[1] = NewCell(ast.PVInteger(10))
	l.Lists[2] = NewListHandle([]ast.PrimitiveValue{ast.PVString("x")})
	l.Broadcasts[3] = "go"

	clone := l.Clone("Sprite1-clone")
	assert.Equal(t, "Sprite1-clone", clone.Name)
	assert.Equal(t, int64(10), clone.Variables[1].Get().Int)
	assert.Equal(t, "go", clone.Broadcasts[3])

	// Mutating the clone's cell must not affect the original.
	clone.Variables[1].Set(ast.PVInteger(99))
	assert.Equal(t, int64(10), l.Variables[1].Get().Int)

	clone.Lists[2].Append(ast.PVString("y"))
	assert.Equal(t, 1, l.Lists[2].Len())
	assert.Equal(t, 2, clone.Lists[2].Len())
}

func TestStopAll(t *testing.T) {
	var s StopAll
	assert.False(t, s.IsSet())
	s.Set()
	assert.True(t, s.IsSet())
	s.Reset()
	assert.False(t, s.IsSet())
}
