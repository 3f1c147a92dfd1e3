// Package interp is the recursive Interpreter: it walks the Expressions a
// Thread was compiled into and evaluates each one against the shared
// StateStore, dispatching on BlockType the way a tree-walking evaluator
// does for any AST.
package interp

import (
	"math/rand"
	"sync"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/state"
	"github.com/blockvm/corevm/internal/transform"
)

// Dispatcher is the Scheduler-side hook the interpreter calls out to for
// anything that spans multiple Threads or Targets: broadcasting an event,
// spawning or deleting a clone, stopping scripts, or printing a say/think
// line. Keeping this as an interface (rather than importing
// internal/scheduler directly) avoids a cyclic dependency, since the
// Scheduler is what constructs Interpreters in the first place.
type Dispatcher interface {
	Broadcast(broadcastID uint32) []<-chan struct{}
	CreateClone(sourceTargetIndex int) error
	DeleteClone(targetIndex int) error
	StopAllScripts()
	StopOtherScriptsInSprite(targetIndex int, exceptThread uint64) uint64
	Println(line string)
}

// CallFrame holds one custom block invocation's argument values, looked
// up by argument_reporter_string_number/_boolean via the enclosing
// Thread's CustomBlockArgNames.
type CallFrame struct {
	Values map[uint32]ast.RichValue
}

// Context is everything one Thread's goroutine needs to evaluate its
// Expressions: the resolved StateStore view for its own Target, the
// compiled program it was built from (for resolving custom block calls
// and clone targets), and a stack of CallFrames for nested custom block
// invocation.
type Context struct {
	Store      *state.Store
	Startup    *transform.VMStartup
	TargetIdx  int
	ThreadGen  uint64 // StopGeneration captured when this Thread was spawned
	Dispatcher Dispatcher
	WaitScale  float64

	rngMu sync.Mutex
	rng   *rand.Rand

	frames        []*CallFrame
	customThreads []*transform.Thread
}

func NewContext(store *state.Store, startup *transform.VMStartup, targetIdx int, threadGen uint64, dispatcher Dispatcher, rng *rand.Rand, waitScale float64) *Context {
	return &Context{
		Store:      store,
		Startup:    startup,
		TargetIdx:  targetIdx,
		ThreadGen:  threadGen,
		Dispatcher: dispatcher,
		WaitScale:  waitScale,
		rng:        rng,
	}
}

func (c *Context) PushFrame(f *CallFrame) { c.frames = append(c.frames, f) }
func (c *Context) PopFrame()              { c.frames = c.frames[:len(c.frames)-1] }

func (c *Context) CurrentFrame() *CallFrame {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

func (c *Context) pushCustomBlockThread(th *transform.Thread) {
	c.customThreads = append(c.customThreads, th)
}

func (c *Context) popCustomBlockThread() {
	c.customThreads = c.customThreads[:len(c.customThreads)-1]
}

func (c *Context) currentCustomBlockThread() *transform.Thread {
	if len(c.customThreads) == 0 {
		return nil
	}
	return c.customThreads[len(c.customThreads)-1]
}

// Stopped reports whether this Thread should exit cleanly right now: the
// process-wide stop-all flag is set, or this Target's stop generation has
// moved past the one this Thread was spawned with.
func (c *Context) Stopped() bool {
	if c.Store.Stop.IsSet() {
		return true
	}
	return c.Store.Local.StopGeneration.Load() != c.ThreadGen
}

// Float64 returns a uniform random float in [lo, hi).
func (c *Context) Float64(lo, hi float64) float64 {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return lo + c.rng.Float64()*(hi-lo)
}

// IntRange returns a uniform random integer in [lo, hi] inclusive, matching
// Scratch's pick-random semantics for two whole numbers.
func (c *Context) IntRange(lo, hi int64) int64 {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	if hi <= lo {
		return lo
	}
	return lo + c.rng.Int63n(hi-lo+1)
}
