package state

import "sync"

// RuntimeTarget holds the mutable, non-script-visible presentation state
// of a Target (position, direction, size, graphic effects, visibility).
// There is no renderer in this runtime: Motion/Looks/Sound blocks update
// these fields so scripts that read them back (e.g. via a later reporter)
// observe consistent values, without drawing anything.
type RuntimeTarget struct {
	mu sync.Mutex

	X, Y      float64
	Direction float64
	Size      float64
	Volume    float64
	Visible   bool
	Costume   int
	Layer     int

	GraphicEffects map[string]float64
	SoundEffects   map[string]float64

	Timer float64 // seconds since last SensingResetTimer
}

func NewRuntimeTarget() *RuntimeTarget {
	return &RuntimeTarget{
		Direction:      90,
		Size:           100,
		Volume:         100,
		Visible:        true,
		GraphicEffects: make(map[string]float64),
		SoundEffects:   make(map[string]float64),
	}
}

func (r *RuntimeTarget) With(f func(*RuntimeTarget)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f(r)
}
