package scheduler

import "github.com/blockvm/corevm/internal/ast"

// ThreadInfo is a point-in-time summary of one finished Thread, surfaced
// by internal/inspect's debug gRPC service.
type ThreadInfo struct {
	TargetName string
	TriggerKey string
	State      string // "finished" or "errored"
}

// ListThreads reports every Thread that has finished so far. A run still
// in progress simply omits threads that haven't completed yet — there is
// no separately tracked "running" state beyond the errgroup itself.
func (s *Scheduler) ListThreads() []ThreadInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ThreadInfo, len(s.results))
	for i, r := range s.results {
		state := "finished"
		if r.Err != nil {
			state = "errored"
		}
		out[i] = ThreadInfo{TargetName: r.TargetName, TriggerKey: r.TriggerKey, State: state}
	}
	return out
}

// GetVariable looks up a variable by its owning Target's declared name
// and the variable's own display name, checking the Target's locals then
// Global, and returns its current PrimitiveValue.
func (s *Scheduler) GetVariable(targetName, varName string) (ast.PrimitiveValue, bool) {
	s.mu.Lock()
	var found *instance
	for _, inst := range s.instances {
		if inst.name == targetName {
			found = inst
			break
		}
	}
	s.mu.Unlock()
	if found == nil {
		return ast.PrimitiveValue{}, false
	}

	target := s.startup.Targets[found.staticIdx]
	if id, ok := nameToID(target.VarNames, varName); ok {
		if cell, ok := found.store.Local.Variables[id]; ok {
			return cell.Get(), true
		}
	}
	if id, ok := nameToID(s.startup.GlobalVarNames, varName); ok {
		if cell, ok := found.store.Global.Variables[id]; ok {
			return cell.Get(), true
		}
	}
	return ast.PrimitiveValue{}, false
}

func nameToID(names map[uint32]string, want string) (uint32, bool) {
	for id, name := range names {
		if name == want {
			return id, true
		}
	}
	return 0, false
}
