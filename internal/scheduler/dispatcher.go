package scheduler

import (
	"fmt"
	"log"

	"github.com/blockvm/corevm/internal/interp"
	"github.com/blockvm/corevm/internal/state"
	"github.com/blockvm/corevm/internal/transform"
)

// Broadcast starts every Thread, across every live instance, whose
// trigger is BroadcastReceived for this broadcastID, and returns one
// done-channel per Thread spawned so EventBroadcastAndWait can block
// until all of them finish. A broadcast with no listeners returns an
// empty slice, matching Scratch's own silent-no-op behavior.
func (s *Scheduler) Broadcast(broadcastID uint32) []<-chan struct{} {
	s.mu.Lock()
	targets := make([]*instance, 0, len(s.instances))
	for _, inst := range s.instances {
		targets = append(targets, inst)
	}
	s.mu.Unlock()

	var dones []<-chan struct{}
	for _, inst := range targets {
		for ti, th := range s.startup.Targets[inst.staticIdx].Threads {
			if th.Trigger.Kind != transform.TriggerBroadcastReceived || th.Trigger.BroadcastID != broadcastID {
				continue
			}
			done := make(chan struct{})
			s.spawnWithDone(inst, ti, "broadcast", done)
			dones = append(dones, done)
		}
	}
	return dones
}

// spawnWithDone is spawn plus a channel closed once the Thread finishes,
// for callers (Broadcast's AndWait variant) that need to block on it.
func (s *Scheduler) spawnWithDone(inst *instance, threadIdx int, triggerKey string, done chan struct{}) {
	thread := startupThread(s.startup, inst.staticIdx, threadIdx)
	gen := inst.store.Local.StopGeneration.Load()

	s.mu.Lock()
	instanceID := s.instanceIDOf(inst)
	s.mu.Unlock()

	s.group.Go(func() error {
		defer close(done)
		ctx := interp.NewContext(inst.store, s.startup, instanceID, gen, s, s.threadRand(), s.cfg.WaitScale)
		err := interp.RunThread(&thread, ctx)
		log.Printf("thread %s (%s) finished, err=%v", inst.name, triggerKey, err)
		s.recordResult(inst.name, triggerKey, err)
		return nil
	})
}

// instanceIDOf reverse-looks-up an *instance's key. Callers hold s.mu.
func (s *Scheduler) instanceIDOf(target *instance) int {
	for id, inst := range s.instances {
		if inst == target {
			return id
		}
	}
	return -1
}

// CreateClone deep-copies the LocalState of the instance addressed by
// sourceTargetIndex (either "_myself_", which is the calling Thread's own
// instance id, or a sprite name, which resolves to that original
// sprite's instance id — Scratch's own "clone of" dropdown only ever
// names originals, never other clones) and starts every
// control_start_as_clone Thread of that sprite against the new instance.
func (s *Scheduler) CreateClone(sourceTargetIndex int) error {
	s.mu.Lock()
	source := s.instances[sourceTargetIndex]
	s.mu.Unlock()
	if source == nil {
		return fmt.Errorf("clone source instance %d no longer exists", sourceTargetIndex)
	}

	cloneName := fmt.Sprintf("%s-clone", source.name)
	clonedLocal := source.store.Local.Clone(cloneName)
	cloneStore := state.NewStore(clonedLocal, s.startup.Global, s.stopAll)

	s.mu.Lock()
	id := s.nextInstanceID
	s.nextInstanceID++
	inst := &instance{store: cloneStore, staticIdx: source.staticIdx, name: cloneName}
	s.instances[id] = inst
	s.mu.Unlock()

	for ti, th := range s.startup.Targets[source.staticIdx].Threads {
		if th.Trigger.Kind != transform.TriggerStartAsClone {
			continue
		}
		s.spawn(id, ti, "start as clone")
	}
	return nil
}

// DeleteClone removes a clone instance's bookkeeping entry. It is a
// no-op, not an error, when asked to delete an original (never-cloned)
// instance, since Scratch's own "delete this clone" silently does
// nothing outside a clone.
func (s *Scheduler) DeleteClone(targetIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if targetIndex < len(s.startup.Locals) {
		return nil
	}
	delete(s.instances, targetIndex)
	s.clonesDeleted++
	return nil
}

// StopAllScripts sets the process-wide stop flag every Thread checks
// between top-level Expressions. ControlStop "all" already sets this
// directly on its own Store; this method additionally lets Dispatcher
// callers outside the interpreter (tests, the debug service) trigger the
// same shutdown.
func (s *Scheduler) StopAllScripts() {
	s.stopAll.Set()
}

// StopOtherScriptsInSprite bumps the stop generation of exactly one
// instance — targetIndex is a Scheduler-assigned instance id, so this
// never reaches across from a clone into the sprite it was cloned from
// or vice versa. exceptThread is the calling Thread's own generation;
// bumping the counter would otherwise make that same Thread see itself
// as stale on its very next Context.Stopped() check, stopping the
// caller along with every other script in the sprite. The new
// generation is returned so the caller can adopt it as its own,
// exempting itself from the stop it just triggered.
func (s *Scheduler) StopOtherScriptsInSprite(targetIndex int, exceptThread uint64) uint64 {
	s.mu.Lock()
	inst := s.instances[targetIndex]
	s.mu.Unlock()
	if inst == nil {
		return exceptThread
	}
	return inst.store.Local.StopGeneration.Add(1)
}

// Println is the Dispatcher hook LooksSay/LooksThink and similar blocks
// use to surface text from a headless run; it writes straight to
// standard output, one line per call.
func (s *Scheduler) Println(line string) {
	fmt.Println(line)
}

func (s *Scheduler) recordResult(targetName, triggerKey string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, ThreadResult{TargetName: targetName, TriggerKey: triggerKey, Err: err})
}
