package state

import "sync/atomic"

// StopAll is the process-wide flag ControlStop "all" sets. Every Thread's
// top-level Expression loop checks it between statements and exits
// cleanly the instant it is set.
type StopAll struct {
	flag atomic.Bool
}

func (s *StopAll) Set()          { s.flag.Store(true) }
func (s *StopAll) IsSet() bool   { return s.flag.Load() }
func (s *StopAll) Reset()        { s.flag.Store(false) }

// Store is the per-Thread view into shared state: its own Target's
// LocalState plus the run's single GlobalState. Variable/list/broadcast
// lookups try Local first, then fall back to Global, matching Scratch's
// own shadowing rule (a sprite-local variable of the same name as a
// global one wins).
type Store struct {
	Local  *LocalState
	Global *GlobalState
	Stop   *StopAll
}

func NewStore(local *LocalState, global *GlobalState, stop *StopAll) *Store {
	return &Store{Local: local, Global: global, Stop: stop}
}

// ResolveVar returns the Cell for a dense variable id, checking Local
// before Global. ok is false if neither scope declares it.
func (s *Store) ResolveVar(id uint32) (*Cell, bool) {
	if c, ok := s.Local.Variables[id]; ok {
		return c, true
	}
	c, ok := s.Global.Variables[id]
	return c, ok
}

// ResolveList returns the ListHandle for a dense list id, Local then
// Global.
func (s *Store) ResolveList(id uint32) (*ListHandle, bool) {
	if l, ok := s.Local.Lists[id]; ok {
		return l, true
	}
	l, ok := s.Global.Lists[id]
	return l, ok
}

// ResolveBroadcast returns the display name for a dense broadcast id,
// Local then Global.
func (s *Store) ResolveBroadcast(id uint32) (string, bool) {
	if n, ok := s.Local.Broadcasts[id]; ok {
		return n, true
	}
	n, ok := s.Global.Broadcasts[id]
	return n, ok
}
