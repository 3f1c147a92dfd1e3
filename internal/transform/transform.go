package transform

import (
	"fmt"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/state"
	"github.com/blockvm/corevm/internal/vmerrors"
)

// idspace is a per-target (or global) string-id -> dense-id interning
// table for one category of name (variable, list, or broadcast).
type idspace map[string]uint32

// Transformer carries the counters and global tables that must be shared
// across every Target while compiling one Project. It is a value you
// construct once per Transform call, never a package-level global, so
// multiple projects can be compiled in the same process without sharing
// counters (each test compiles its own fresh project).
type Transformer struct {
	nextID   uint32
	nextProc uint32

	procByCode  map[string]uint32
	argIDByStr  map[string]uint32
	argNameToID map[string]uint32

	procIndex map[uint32]ProcInfo
}

func newTransformer() *Transformer {
	return &Transformer{
		procByCode:  make(map[string]uint32),
		argIDByStr:  make(map[string]uint32),
		argNameToID: make(map[string]uint32),
		procIndex:   make(map[uint32]ProcInfo),
	}
}

func (t *Transformer) allocID() uint32 {
	id := t.nextID
	t.nextID++
	return id
}

func (t *Transformer) internProc(code string) uint32 {
	if id, ok := t.procByCode[code]; ok {
		return id
	}
	id := t.nextProc
	t.nextProc++
	t.procByCode[code] = id
	return id
}

func (t *Transformer) internArg(strID, name string) uint32 {
	if id, ok := t.argIDByStr[strID]; ok {
		return id
	}
	id := t.allocID()
	t.argIDByStr[strID] = id
	t.argNameToID[name] = id
	return id
}

// Transform compiles a fully parsed Project into a VMStartup. The Stage is
// processed first so its Variables/Lists/Broadcasts populate GlobalState
// before any Sprite's local id space is built; Sprites never see each
// other's locals.
func Transform(project ast.Project) (*VMStartup, error) {
	t := newTransformer()

	global := state.NewGlobalState()
	globalVars := idspace{}
	globalLists := idspace{}
	globalBroadcasts := idspace{}

	out := &VMStartup{Global: global, GlobalVarNames: map[uint32]string{}, GlobalListNames: map[uint32]string{}}

	stage, hasStage := project.Stage()
	if !hasStage {
		return nil, vmerrors.SyntaxErrorf("project has no Stage target", "project")
	}

	t.internVars(stage.Variables, globalVars, global.Variables, out.GlobalVarNames)
	t.internLists(stage.Lists, globalLists, global.Lists, out.GlobalListNames)
	t.internBroadcasts(stage.Broadcasts, globalBroadcasts, global.Broadcasts)

	// Process Stage's own threads against empty local maps: every
	// reference inside them resolves straight through to Global.
	stageLocal := state.NewLocalState(stage.Name)
	stageThreads, err := t.extractThreads(stage.Blocks, idspace{}, idspace{}, idspace{}, globalVars, globalLists, globalBroadcasts)
	if err != nil {
		return nil, err
	}
	out.Locals = append(out.Locals, stageLocal)
	out.Targets = append(out.Targets, TargetStartup{Name: stage.Name, IsStage: true, Threads: stageThreads, VarNames: map[uint32]string{}, ListNames: map[uint32]string{}})
	t.recordProcIndex(0, stageThreads)

	for _, sprite := range project.Sprites() {
		localVars := idspace{}
		localLists := idspace{}
		localBroadcasts := idspace{}
		varNames := map[uint32]string{}
		listNames := map[uint32]string{}

		local := state.NewLocalState(sprite.Name)
		t.internVars(sprite.Variables, localVars, local.Variables, varNames)
		t.internLists(sprite.Lists, localLists, local.Lists, listNames)
		t.internBroadcasts(sprite.Broadcasts, localBroadcasts, local.Broadcasts)

		threads, err := t.extractThreads(sprite.Blocks, localVars, localLists, localBroadcasts, globalVars, globalLists, globalBroadcasts)
		if err != nil {
			return nil, err
		}

		idx := len(out.Targets)
		out.Locals = append(out.Locals, local)
		out.Targets = append(out.Targets, TargetStartup{Name: sprite.Name, IsStage: false, Threads: threads, VarNames: varNames, ListNames: listNames})
		t.recordProcIndex(idx, threads)
	}

	out.ProcIndex = t.procIndex
	return out, nil
}

func (t *Transformer) recordProcIndex(targetIdx int, threads []Thread) {
	for ti, th := range threads {
		if th.Trigger.Kind == TriggerCustomBlock {
			t.procIndex[th.Trigger.ProcID] = ProcInfo{TargetIndex: targetIdx, ThreadIndex: ti}
		}
	}
}

func (t *Transformer) internVars(vars map[string]ast.Variable, ids idspace, cells map[uint32]*state.Cell, names map[uint32]string) {
	for strID, v := range vars {
		id := t.allocID()
		ids[strID] = id
		cells[id] = state.NewCell(v.Value)
		names[id] = v.Name
	}
}

func (t *Transformer) internLists(lists map[string]ast.List, ids idspace, handles map[uint32]*state.ListHandle, names map[uint32]string) {
	for strID, l := range lists {
		id := t.allocID()
		ids[strID] = id
		handles[id] = state.NewListHandle(l.Value)
		names[id] = l.Name
	}
}

func (t *Transformer) internBroadcasts(bs map[string]ast.Broadcast, ids idspace, names map[uint32]string) {
	for strID, b := range bs {
		id := t.allocID()
		ids[strID] = id
		names[id] = b.Name
	}
}

// resolveIDs looks a string id up in the local table, then the global one.
func resolveIDs(strID string, local, global idspace) (uint32, bool) {
	if id, ok := local[strID]; ok {
		return id, true
	}
	id, ok := global[strID]
	return id, ok
}

type idTables struct {
	localVar, localList, localBroadcast    idspace
	globalVar, globalList, globalBroadcast idspace
}

func (t *Transformer) extractThreads(blocks map[string]ast.Block, localVar, localList, localBroadcast, globalVar, globalList, globalBroadcast idspace) ([]Thread, error) {
	tbl := idTables{localVar, localList, localBroadcast, globalVar, globalList, globalBroadcast}

	var threads []Thread
	for id, b := range blocks {
		if !ast.HatBlocks[b.Opcode] {
			continue
		}
		th, err := t.extractThread(id, blocks, tbl)
		if err != nil {
			return nil, err
		}
		threads = append(threads, th)
	}
	return threads, nil
}

func (t *Transformer) extractThread(hatID string, blocks map[string]ast.Block, tbl idTables) (Thread, error) {
	code, err := t.compileChain(hatID, blocks, tbl)
	if err != nil {
		return Thread{}, err
	}

	thread := Thread{Code: code}

	hatBlock, ok := blocks[hatID]
	if !ok {
		return Thread{}, vmerrors.Internalf("hat block vanished during compile", hatID)
	}

	trigger, customArgs, argNames, err := t.resolveTrigger(hatBlock, blocks, tbl)
	if err != nil {
		return Thread{}, err
	}
	thread.Trigger = trigger
	thread.CustomBlockArguments = customArgs
	thread.CustomBlockArgNames = argNames

	// Second pass: rewrite every ProceduresCall in this thread — in its
	// top-level chain and in every substack body nested inside it — into
	// an InvokeCustomBlock, now that dependencies are already compiled
	// Evaluables.
	var rewrite func(code []Expression)
	rewrite = func(code []Expression) {
		for i := range code {
			if code[i].Kind != ExprStack {
				continue
			}
			se := code[i].Stack
			for _, dep := range se.Dependencies {
				if dep.Kind == EvStack {
					rewrite(dep.Body)
				}
			}
			if se.Opcode != ast.ProceduresCall {
				continue
			}
			block := blocks[se.BlockID]
			if block.Mutation == nil || block.Mutation.Kind != ast.MutationProcedureCall {
				continue
			}
			target := t.internProc(block.Mutation.ProcCode)
			args := make(map[uint32]Evaluable, len(se.Dependencies))
			for strID, ev := range se.Dependencies {
				argID := t.internArg(strID, strID)
				args[argID] = ev
			}
			code[i] = Expression{
				Kind: ExprInvokeCustomBlock,
				InvokeCustomBlock: &InvokeCustomBlockExpr{
					Target:    target,
					Arguments: args,
					BlockID:   se.BlockID,
				},
			}
		}
	}
	rewrite(thread.Code)

	return thread, nil
}

// resolveTrigger inspects a hat block's own opcode and fields to decide
// its ThreadTrigger, and (for procedures_definition) interns the custom
// block's proccode and argument ids.
func (t *Transformer) resolveTrigger(hat ast.Block, blocks map[string]ast.Block, tbl idTables) (ThreadTrigger, map[uint32]ast.PrimitiveValue, map[string]uint32, error) {
	switch hat.Opcode {
	case ast.EventWhenFlagClicked:
		return ThreadTrigger{Kind: TriggerGreenFlag}, nil, nil, nil

	case ast.EventWhenKeyPressed:
		key := ""
		if f, ok := hat.Fields["KEY_OPTION"]; ok {
			key = f.Value
		}
		return ThreadTrigger{Kind: TriggerKeyPressed, Key: key}, nil, nil, nil

	case ast.EventWhenThisSpriteClicked:
		return ThreadTrigger{Kind: TriggerSpriteClicked}, nil, nil, nil

	case ast.EventWhenStageClicked:
		return ThreadTrigger{Kind: TriggerStageClicked}, nil, nil, nil

	case ast.EventWhenBackdropSwitchesTo:
		name := ""
		if f, ok := hat.Fields["BACKDROP"]; ok {
			name = f.Value
		}
		return ThreadTrigger{Kind: TriggerBackdropSwitchesTo, BackdropName: name}, nil, nil, nil

	case ast.EventWhenGreaterThan:
		what := ""
		if f, ok := hat.Fields["WHENGREATERTHANMENU"]; ok {
			what = f.Value
		}
		var threshold Evaluable
		if ev, ok := hat.Inputs["VALUE"]; ok {
			compiled, err := t.compileEvaluable(ev, blocks, tbl)
			if err != nil {
				return ThreadTrigger{}, nil, nil, err
			}
			threshold = compiled
		}
		return ThreadTrigger{Kind: TriggerGreaterThan, GreaterThanWhat: what, GreaterThanExpr: threshold}, nil, nil, nil

	case ast.EventWhenBroadcastReceived:
		var id uint32
		if f, ok := hat.Fields["BROADCAST_OPTION"]; ok && f.Ref != nil {
			if resolved, ok := resolveIDs(f.Ref.ID, tbl.localBroadcast, tbl.globalBroadcast); ok {
				id = resolved
			}
		}
		return ThreadTrigger{Kind: TriggerBroadcastReceived, BroadcastID: id}, nil, nil, nil

	case ast.ControlStartAsClone:
		return ThreadTrigger{Kind: TriggerStartAsClone}, nil, nil, nil

	case ast.ProceduresDefinition:
		proto, ok := hat.Inputs["custom_block"]
		if !ok || proto.BlockID == "" {
			return ThreadTrigger{}, nil, nil, vmerrors.SyntaxErrorf("custom block definition missing its prototype", hat.ID)
		}
		protoBlock, ok := blocks[proto.BlockID]
		if !ok || protoBlock.Mutation == nil || protoBlock.Mutation.Kind != ast.MutationProcedurePrototype {
			return ThreadTrigger{}, nil, nil, vmerrors.SyntaxErrorf("custom block prototype malformed", proto.BlockID)
		}
		m := protoBlock.Mutation
		procID := t.internProc(m.ProcCode)

		defaults := make(map[uint32]ast.PrimitiveValue, len(m.ArgIDs))
		names := make(map[string]uint32, len(m.ArgIDs))
		for i, strID := range m.ArgIDs {
			name := ""
			if i < len(m.ArgNames) {
				name = m.ArgNames[i]
			}
			argID := t.internArg(strID, name)
			names[name] = argID
			var def string
			if i < len(m.ArgDefaults) {
				def = m.ArgDefaults[i]
			}
			defaults[argID] = ast.PVString(def)
		}
		return ThreadTrigger{Kind: TriggerCustomBlock, ProcID: procID}, defaults, names, nil
	}

	return ThreadTrigger{}, nil, nil, vmerrors.Internalf(fmt.Sprintf("unrecognized hat opcode %s", hat.Opcode), hat.ID)
}

// compileChain flattens the linear Next chain starting at firstID into a
// []Expression, used both for a hat's own top-level body and (via
// compileEvaluable's EvStack case) for every substack.
func (t *Transformer) compileChain(firstID string, blocks map[string]ast.Block, tbl idTables) ([]Expression, error) {
	var code []Expression
	id := firstID
	for id != "" {
		block, ok := blocks[id]
		if !ok {
			return nil, vmerrors.Internalf(fmt.Sprintf("project references nonexistent block %q", id), id)
		}
		se, err := t.compileStackExpr(id, block, blocks, tbl)
		if err != nil {
			return nil, err
		}
		code = append(code, Expression{Kind: ExprStack, Stack: se})
		id = block.Next
	}
	return code, nil
}

func (t *Transformer) compileStackExpr(id string, block ast.Block, blocks map[string]ast.Block, tbl idTables) (*StackExpression, error) {
	deps := make(map[string]Evaluable, len(block.Inputs)+len(block.Fields)+len(block.Substacks))

	for name, ev := range block.Inputs {
		compiled, err := t.compileEvaluable(ev, blocks, tbl)
		if err != nil {
			return nil, err
		}
		deps[name] = compiled
	}

	for name, f := range block.Fields {
		deps[name] = t.compileField(name, f, tbl)
	}

	for name, subFirstID := range block.Substacks {
		if subFirstID == "" {
			deps[name] = Evaluable{Kind: EvStack, Body: nil}
			continue
		}
		body, err := t.compileChain(subFirstID, blocks, tbl)
		if err != nil {
			return nil, err
		}
		deps[name] = Evaluable{Kind: EvStack, Body: body}
	}

	return &StackExpression{Opcode: block.Opcode, Dependencies: deps, BlockID: id}, nil
}

func (t *Transformer) compileField(name string, f ast.Field, tbl idTables) Evaluable {
	fr := FieldRef{DisplayValue: f.Value}
	if f.Ref != nil {
		var kind PointerKind
		var local, global idspace
		switch name {
		case "VARIABLE":
			kind, local, global = PointerVariable, tbl.localVar, tbl.globalVar
		case "LIST":
			kind, local, global = PointerList, tbl.localList, tbl.globalList
		case "BROADCAST_OPTION":
			kind, local, global = PointerBroadcast, tbl.localBroadcast, tbl.globalBroadcast
		default:
			return Evaluable{Kind: EvField, Field: fr}
		}
		if id, ok := resolveIDs(f.Ref.ID, local, global); ok {
			fr.Pointer = &ValuePointer{Kind: kind, Name: f.Ref.Name, ID: id}
		}
	}
	return Evaluable{Kind: EvField, Field: fr}
}

func (t *Transformer) compileEvaluable(ev ast.Evaluable, blocks map[string]ast.Block, tbl idTables) (Evaluable, error) {
	if ev.BlockID != "" {
		block, ok := blocks[ev.BlockID]
		if !ok {
			return Evaluable{}, vmerrors.Internalf(fmt.Sprintf("input references nonexistent block %q", ev.BlockID), ev.BlockID)
		}
		se, err := t.compileStackExpr(ev.BlockID, block, blocks, tbl)
		if err != nil {
			return Evaluable{}, err
		}
		return Evaluable{Kind: EvBlock, Block: se}, nil
	}

	if ev.Shadow == nil {
		return Evaluable{Kind: EvDefault}, nil
	}
	return t.compileShadow(*ev.Shadow, tbl)
}

func (t *Transformer) compileShadow(sv ast.ShadowValue, tbl idTables) (Evaluable, error) {
	if sv.Pointer != nil {
		var kind PointerKind
		var local, global idspace
		switch sv.Pointer.Kind {
		case ast.PointerVariable:
			kind, local, global = PointerVariable, tbl.localVar, tbl.globalVar
		case ast.PointerList:
			kind, local, global = PointerList, tbl.localList, tbl.globalList
		case ast.PointerBroadcast:
			kind, local, global = PointerBroadcast, tbl.localBroadcast, tbl.globalBroadcast
		}
		if id, ok := resolveIDs(sv.Pointer.ID, local, global); ok {
			return Evaluable{Kind: EvPointer, Pointer: ValuePointer{Kind: kind, Name: sv.Pointer.Name, ID: id}}, nil
		}
		return Evaluable{}, vmerrors.NotFoundErrorf(fmt.Sprintf("%q referenced by shadow not found", sv.Pointer.Name), sv.Pointer.ID)
	}

	rv := ast.RichValue{Kind: sv.Kind, Num: sv.Num, Int: sv.Int, Str: sv.Str}
	return Evaluable{Kind: EvBare, Bare: rv}, nil
}
