package loader

import (
	"encoding/json"
	"fmt"

	"github.com/blockvm/corevm/internal/ast"
)

// wireProject mirrors project.json's top-level shape closely enough to
// decode; anything this runtime doesn't use (costumes, sounds, monitors,
// extensions) is simply left undecoded by omission.
type wireProject struct {
	Targets []wireTarget `json:"targets"`
	Meta    wireMeta     `json:"meta"`
}

type wireMeta struct {
	Semver string `json:"semver"`
	VM     string `json:"vm"`
	Agent  string `json:"agent"`
}

type wireTarget struct {
	IsStage        bool                        `json:"isStage"`
	Name           string                      `json:"name"`
	Variables      map[string][]json.RawMessage `json:"variables"`
	Lists          map[string][]json.RawMessage `json:"lists"`
	Broadcasts     map[string]string           `json:"broadcasts"`
	Blocks         map[string]wireBlock        `json:"blocks"`
	Comments       map[string]wireComment      `json:"comments"`
	CurrentCostume int                         `json:"currentCostume"`
	Volume         float64                     `json:"volume"`
	LayerOrder     int                         `json:"layerOrder"`
	Visible        *bool                       `json:"visible"`
	X              float64                     `json:"x"`
	Y              float64                     `json:"y"`
	Size           float64                     `json:"size"`
	Direction      float64                     `json:"direction"`
	Draggable      bool                        `json:"draggable"`
	RotationStyle  string                      `json:"rotationStyle"`
}

type wireComment struct {
	BlockID   string `json:"blockId"`
	Text      string `json:"text"`
	Minimized bool   `json:"minimized"`
}

type wireBlock struct {
	Opcode   string                       `json:"opcode"`
	Next     *string                      `json:"next"`
	Parent   *string                      `json:"parent"`
	Inputs   map[string][]json.RawMessage `json:"inputs"`
	Fields   map[string][]json.RawMessage `json:"fields"`
	Shadow   bool                         `json:"shadow"`
	TopLevel bool                         `json:"topLevel"`
	X        float64                      `json:"x"`
	Y        float64                      `json:"y"`
	Mutation *wireMutation                `json:"mutation"`
}

type wireMutation struct {
	TagName       string `json:"tagName"`
	ProcCode      string `json:"proccode"`
	ArgumentIDs   string `json:"argumentids"`
	ArgumentNames string `json:"argumentnames"`
	ArgDefaults   string `json:"argumentdefaults"`
	Warp          string `json:"warp"`
	HasNext       string `json:"hasnext"`
}

// pointerIndex maps every declared Variable/List/Broadcast id across the
// whole project to its Kind and display name, built once up front so a
// Field or shadow array's bare id can be resolved without knowing which
// Target declared it (project.json lets a sprite-local block reference a
// Stage-global id and vice versa).
type pointerIndex map[string]ast.Pointer

func (w *wireProject) toAST() (ast.Project, error) {
	idx := make(pointerIndex)
	for _, t := range w.Targets {
		for id, v := range t.Variables {
			name := ""
			if len(v) > 0 {
				json.Unmarshal(v[0], &name)
			}
			idx[id] = ast.Pointer{Kind: ast.PointerVariable, ID: id, Name: name}
		}
		for id, l := range t.Lists {
			name := ""
			if len(l) > 0 {
				json.Unmarshal(l[0], &name)
			}
			idx[id] = ast.Pointer{Kind: ast.PointerList, ID: id, Name: name}
		}
		for id, name := range t.Broadcasts {
			idx[id] = ast.Pointer{Kind: ast.PointerBroadcast, ID: id, Name: name}
		}
	}

	out := ast.Project{
		Meta: ast.Metadata{Semver: w.Meta.Semver, VM: w.Meta.VM, Agent: w.Meta.Agent},
	}
	for _, t := range w.Targets {
		target, err := t.toAST(idx)
		if err != nil {
			return ast.Project{}, fmt.Errorf("target %q: %w", t.Name, err)
		}
		out.Targets = append(out.Targets, target)
	}
	return out, nil
}

func (t *wireTarget) toAST(idx pointerIndex) (ast.Target, error) {
	visible := true
	if t.Visible != nil {
		visible = *t.Visible
	}

	target := ast.Target{
		Name:           t.Name,
		IsStage:        t.IsStage,
		Variables:      make(map[string]ast.Variable),
		Lists:          make(map[string]ast.List),
		Broadcasts:     make(map[string]ast.Broadcast),
		Blocks:         make(map[string]ast.Block),
		Comments:       make(map[string]ast.Comment),
		CurrentCostume: t.CurrentCostume,
		Volume:         t.Volume,
		LayerOrder:     t.LayerOrder,
		Visible:        visible,
		X:              t.X,
		Y:              t.Y,
		Size:           t.Size,
		Direction:      t.Direction,
		Draggable:      t.Draggable,
		RotationStyle:  ast.RotationStyle(t.RotationStyle),
	}
	if target.Size == 0 {
		target.Size = 100
	}

	for id, v := range t.Variables {
		var name string
		var raw json.RawMessage
		cloud := false
		if len(v) > 0 {
			json.Unmarshal(v[0], &name)
		}
		if len(v) > 1 {
			raw = v[1]
		}
		if len(v) > 2 {
			json.Unmarshal(v[2], &cloud)
		}
		target.Variables[id] = ast.Variable{ID: id, Name: name, Value: decodePrimitive(raw), Cloud: cloud, Visible: true}
	}

	for id, l := range t.Lists {
		var name string
		var rawValues []json.RawMessage
		if len(l) > 0 {
			json.Unmarshal(l[0], &name)
		}
		if len(l) > 1 {
			json.Unmarshal(l[1], &rawValues)
		}
		values := make([]ast.PrimitiveValue, len(rawValues))
		for i, raw := range rawValues {
			values[i] = decodePrimitive(raw)
		}
		target.Lists[id] = ast.List{ID: id, Name: name, Value: values, Visible: true}
	}

	for id, name := range t.Broadcasts {
		target.Broadcasts[id] = ast.Broadcast{ID: id, Name: name}
	}

	for id, c := range t.Comments {
		target.Comments[id] = ast.Comment{ID: id, BlockID: c.BlockID, Text: c.Text, Minimized: c.Minimized}
	}

	for id, b := range t.Blocks {
		block, err := b.toAST(id, idx)
		if err != nil {
			return ast.Target{}, err
		}
		target.Blocks[id] = block
	}

	return target, nil
}

// decodePrimitive converts project.json's untyped JSON scalar (a
// variable's current value, or one element of a list) into a
// PrimitiveValue: numbers become Number, everything else becomes String,
// matching the original source's permissive load-time coercion.
func decodePrimitive(raw json.RawMessage) ast.PrimitiveValue {
	if raw == nil {
		return ast.PVString("")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return ast.PVNumber(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ast.PVString(s)
	}
	return ast.PVString(string(raw))
}

func (b *wireBlock) toAST(id string, idx pointerIndex) (ast.Block, error) {
	block := ast.Block{
		ID:        id,
		Opcode:    ast.BlockType(b.Opcode),
		TopLevel:  b.TopLevel,
		Shadow:    b.Shadow,
		Inputs:    make(map[string]ast.Evaluable),
		Fields:    make(map[string]ast.Field),
		Substacks: make(map[string]string),
		X:         b.X,
		Y:         b.Y,
	}
	if b.Parent != nil {
		block.Parent = *b.Parent
	}
	if b.Next != nil {
		block.Next = *b.Next
	}

	for name, arr := range b.Inputs {
		ev, substackID, err := decodeInput(arr, idx)
		if err != nil {
			return ast.Block{}, fmt.Errorf("block %s input %s: %w", id, name, err)
		}
		block.Inputs[name] = ev
		if substackID != "" && (name == "SUBSTACK" || name == "SUBSTACK2") {
			block.Substacks[name] = substackID
		}
	}

	for name, arr := range b.Fields {
		field, err := decodeField(name, arr, idx)
		if err != nil {
			return ast.Block{}, fmt.Errorf("block %s field %s: %w", id, name, err)
		}
		block.Fields[name] = field
	}

	if b.Mutation != nil {
		block.Mutation = b.Mutation.toAST(b.Opcode)
	}

	return block, nil
}

// decodeInput handles one [shadowStatus, value, ...] input entry.
// SUBSTACK/SUBSTACK2 arrive with exactly this shape too (a plain block-id
// value); the caller distinguishes a substack by field name, so this
// returns the referenced block id back out whenever the value names a
// block rather than a literal, and the caller decides whether to treat
// it as Evaluable.BlockID or as a Substacks entry.
func decodeInput(arr []json.RawMessage, idx pointerIndex) (ast.Evaluable, string, error) {
	if len(arr) == 0 {
		return ast.Evaluable{ShadowKind: ast.NoShadow}, "", nil
	}
	var shadowStatus int
	if err := json.Unmarshal(arr[0], &shadowStatus); err != nil {
		return ast.Evaluable{}, "", err
	}
	// project.json's own numbering: 1 = shadow only (no real block plugged
	// in), 2 = a real block with no shadow beneath it, 3 = a real block
	// obscuring a different shadow.
	var kind ast.ShadowType
	switch shadowStatus {
	case 1:
		kind = ast.ShadowOnly
	case 3:
		kind = ast.ShadowObscured
	default:
		kind = ast.NoShadow
	}
	if len(arr) < 2 {
		return ast.Evaluable{ShadowKind: kind}, "", nil
	}

	// value is either a bare block-id string, null, or a literal array.
	var blockID string
	if err := json.Unmarshal(arr[1], &blockID); err == nil && blockID != "" {
		return ast.Evaluable{ShadowKind: kind, BlockID: blockID}, blockID, nil
	}

	var literal []json.RawMessage
	if err := json.Unmarshal(arr[1], &literal); err != nil || len(literal) == 0 {
		// null / empty slot.
		return ast.Evaluable{ShadowKind: kind}, "", nil
	}

	shadow, err := decodeShadowLiteral(literal, idx)
	if err != nil {
		return ast.Evaluable{}, "", err
	}
	return ast.Evaluable{ShadowKind: kind, Shadow: shadow}, "", nil
}

// decodeShadowLiteral decodes a [typeCode, value, ...] shadow array, where
// typeCode is the standard 4..13 wire tag: 4-9 are literal numeric/color
// shapes, 10 is a bare string, and 11/12/13 are broadcast/variable/list
// pointer references packaged as [name, id].
func decodeShadowLiteral(arr []json.RawMessage, idx pointerIndex) (*ast.ShadowValue, error) {
	var typeCode int
	if err := json.Unmarshal(arr[0], &typeCode); err != nil {
		return nil, err
	}

	switch typeCode {
	case 4, 5, 6, 7, 8:
		var raw string
		if len(arr) > 1 {
			json.Unmarshal(arr[1], &raw)
		}
		var f float64
		json.Unmarshal([]byte(jsonNumberOrQuoted(raw)), &f)
		kind := map[int]ast.RichKind{4: ast.RKNumber, 5: ast.RKPositiveNumber, 6: ast.RKPositiveInteger, 7: ast.RKInteger, 8: ast.RKAngle}[typeCode]
		return &ast.ShadowValue{Kind: kind, Num: f, Int: int64(f)}, nil
	case 9:
		var s string
		if len(arr) > 1 {
			json.Unmarshal(arr[1], &s)
		}
		return &ast.ShadowValue{Kind: ast.RKColor, Str: s}, nil
	case 10:
		var s string
		if len(arr) > 1 {
			json.Unmarshal(arr[1], &s)
		}
		return &ast.ShadowValue{Kind: ast.RKString, Str: s}, nil
	case 11, 12, 13:
		if len(arr) < 3 {
			return &ast.ShadowValue{Kind: ast.RKString}, nil
		}
		var name, id string
		json.Unmarshal(arr[1], &name)
		json.Unmarshal(arr[2], &id)
		kind := map[int]ast.PointerKind{11: ast.PointerBroadcast, 12: ast.PointerVariable, 13: ast.PointerList}[typeCode]
		ptr := idx[id]
		if ptr.ID == "" {
			ptr = ast.Pointer{Kind: kind, ID: id, Name: name}
		}
		return &ast.ShadowValue{Pointer: &ptr}, nil
	}
	return &ast.ShadowValue{Kind: ast.RKString}, nil
}

// jsonNumberOrQuoted re-marshals a decoded string back into something
// json.Unmarshal will parse as a float64, since shadow literals are
// always carried as JSON strings even for numeric types.
func jsonNumberOrQuoted(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func decodeField(name string, arr []json.RawMessage, idx pointerIndex) (ast.Field, error) {
	field := ast.Field{Name: name}
	if len(arr) > 0 {
		json.Unmarshal(arr[0], &field.Value)
	}
	if len(arr) > 1 {
		var id string
		if err := json.Unmarshal(arr[1], &id); err == nil && id != "" {
			if ptr, ok := idx[id]; ok {
				field.Ref = &ptr
			}
		}
	}
	return field, nil
}

func (m *wireMutation) toAST(opcode string) *ast.Mutation {
	mut := &ast.Mutation{
		ProcCode:    m.ProcCode,
		ArgIDs:      splitJSONStringArray(m.ArgumentIDs),
		ArgNames:    splitJSONStringArray(m.ArgumentNames),
		ArgDefaults: splitJSONStringArray(m.ArgDefaults),
		Warp:        m.Warp == "true",
		HasNext:     m.HasNext != "false",
	}
	switch ast.BlockType(opcode) {
	case ast.ProceduresCall:
		mut.Kind = ast.MutationProcedureCall
	case ast.ProceduresPrototype:
		mut.Kind = ast.MutationProcedurePrototype
	case ast.ControlStop:
		mut.Kind = ast.MutationControlStop
	}
	return mut
}

// splitJSONStringArray parses project.json's mutation fields, which are
// themselves JSON arrays re-encoded as a single string
// (e.g. `"[\"arg1\",\"arg2\"]"`).
func splitJSONStringArray(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
