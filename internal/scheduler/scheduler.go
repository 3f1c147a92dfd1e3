// Package scheduler composes the StateStore, Transformer output, and
// Interpreter into a running program: it spawns one goroutine per Thread,
// implements interp.Dispatcher for broadcasts/clones/stop signals, and
// collects every Thread's outcome so it can print tracebacks once the
// whole run has settled.
package scheduler

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/blockvm/corevm/internal/config"
	"github.com/blockvm/corevm/internal/interp"
	"github.com/blockvm/corevm/internal/state"
	"github.com/blockvm/corevm/internal/transform"
)

// ThreadResult records how one spawned Thread ended, for the final
// traceback report and for tests asserting on scenario outcomes.
type ThreadResult struct {
	TargetName string
	TriggerKey string // a short label identifying which hat spawned this
	Err        error  // nil on a clean finish
}

// Result is everything Run collected once every spawned Thread — the
// original hats plus every broadcast- and clone-triggered Thread fanned
// out along the way — has finished.
type Result struct {
	Threads []ThreadResult
}

// Errored reports whether any Thread ended with a non-nil error.
func (r Result) Errored() bool {
	for _, t := range r.Threads {
		if t.Err != nil {
			return true
		}
	}
	return false
}

// instance is one live Target: an original sprite/stage, or a clone of
// one. Every instance gets its own dense, Scheduler-assigned id distinct
// from the compile-time Targets index, so a clone's "stop other scripts
// in sprite" / "delete this clone" never reaches back into the sprite it
// was cloned from.
type instance struct {
	store     *state.Store
	staticIdx int // index into startup.Targets, for Name/Threads lookups
	name      string
}

// Scheduler runs one compiled VMStartup to completion. It is not reused
// across runs — call New for each Run.
type Scheduler struct {
	startup *transform.VMStartup
	cfg     config.RuntimeConfig
	stopAll *state.StopAll
	group   *errgroup.Group

	rngMu sync.Mutex
	rng   *rand.Rand

	mu             sync.Mutex
	instances      map[int]*instance
	nextInstanceID int
	results        []ThreadResult
	clonesDeleted  int
}

// New builds a Scheduler for one VMStartup. Every original Target (Stage
// plus every Sprite) is registered as an instance with its already-built
// LocalState from startup.Locals.
func New(startup *transform.VMStartup, cfg config.RuntimeConfig) *Scheduler {
	stopAll := &state.StopAll{}
	s := &Scheduler{
		startup:   startup,
		cfg:       cfg,
		stopAll:   stopAll,
		group:     &errgroup.Group{},
		rng:       rand.New(rand.NewSource(seedOrRandom(cfg.Seed))),
		instances: make(map[int]*instance),
	}
	for i, local := range startup.Locals {
		id := s.nextInstanceID
		s.nextInstanceID++
		s.instances[id] = &instance{
			store:     state.NewStore(local, startup.Global, stopAll),
			staticIdx: i,
			name:      startup.Targets[i].Name,
		}
	}
	return s
}

func seedOrRandom(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return rand.Int63()
}

// Run launches every green-flag-triggered Thread across every Target,
// waits for the whole resulting fan-out (original threads, plus anything
// they broadcast or clone along the way) to finish, prints any resulting
// tracebacks to stderr, and returns the aggregate Result.
func Run(startup *transform.VMStartup, cfg config.RuntimeConfig) Result {
	return New(startup, cfg).Run()
}

// Run drives this already-built Scheduler to completion. Split out from
// the package-level Run so a caller that wants to expose the Scheduler to
// internal/inspect while it runs (scratchrun's --debug-addr flag) can call
// New and Run separately instead of only getting a finished Result back.
func (s *Scheduler) Run() Result {
	for id, inst := range s.instances {
		for ti, th := range s.startup.Targets[inst.staticIdx].Threads {
			if th.Trigger.Kind != transform.TriggerGreenFlag {
				continue
			}
			s.spawn(id, ti, "green flag")
		}
	}

	_ = s.group.Wait()

	s.mu.Lock()
	results := append([]ThreadResult(nil), s.results...)
	s.mu.Unlock()

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", r.Err.Error())
		}
	}

	return Result{Threads: results}
}

// spawn runs one Thread of the given instance's Target as a new goroutine
// tracked by the Scheduler's errgroup, recording its outcome into results
// once it finishes. It never cancels sibling goroutines on error — each
// Thread's failure is independent, matching spec's "peer threads continue"
// requirement.
func (s *Scheduler) spawn(instanceID, threadIdx int, triggerKey string) {
	s.mu.Lock()
	inst := s.instances[instanceID]
	s.mu.Unlock()
	if inst == nil {
		return
	}
	thread := startupThread(s.startup, inst.staticIdx, threadIdx)
	gen := inst.store.Local.StopGeneration.Load()

	s.group.Go(func() error {
		ctx := interp.NewContext(inst.store, s.startup, instanceID, gen, s, s.threadRand(), s.cfg.WaitScale)
		err := interp.RunThread(&thread, ctx)
		log.Printf("thread %s (%s) finished, err=%v", inst.name, triggerKey, err)
		s.mu.Lock()
		s.results = append(s.results, ThreadResult{TargetName: inst.name, TriggerKey: triggerKey, Err: err})
		s.mu.Unlock()
		return nil
	})
}

func startupThread(startup *transform.VMStartup, staticIdx, threadIdx int) transform.Thread {
	return startup.Targets[staticIdx].Threads[threadIdx]
}

// threadRand hands each spawned Thread its own independent *rand.Rand,
// seeded from the Scheduler's single shared generator under lock. A
// *rand.Rand is not itself safe for concurrent use, so sharing one
// generator instance across goroutines would race; drawing a fresh seed
// per Thread keeps every Thread's draws independent while still making
// the whole run reproducible from one RuntimeConfig.Seed.
func (s *Scheduler) threadRand() *rand.Rand {
	s.rngMu.Lock()
	seed := s.rng.Int63()
	s.rngMu.Unlock()
	return rand.New(rand.NewSource(seed))
}
