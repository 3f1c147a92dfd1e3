package interp

import (
	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/state"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

// listIndex converts a 1-based Scratch list index into a 0-based slice
// index. ok is false when the index falls outside [1, length] — callers
// then apply the runtime's defensive out-of-bounds policy (empty-string
// reads, no-op writes) rather than erroring, per the interpreter's fixed
// resolution of the original's 0-based/1-based inconsistency.
func listIndex(raw float64, length int) (int, bool) {
	i := int(raw)
	if float64(i) != raw || i < 1 || i > length {
		return 0, false
	}
	return i - 1, true
}

func evalData(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	switch se.Opcode {
	case ast.DataVariable:
		ptr, err := sargptr(se, "VARIABLE")
		if err != nil {
			return ast.RichValue{}, err
		}
		pv, err := resolvePointerValue(ctx, ptr)
		if err != nil {
			return ast.RichValue{}, err
		}
		return pv.ToRich(), nil

	case ast.DataListContents:
		list, err := resolveListArg(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		out := ""
		for i, v := range list.Snapshot() {
			if i > 0 {
				out += " "
			}
			out += v.String()
		}
		return ast.RVString(out), nil

	case ast.DataSetVariableTo:
		ev, err := sargraw(se, "VALUE")
		if err != nil {
			return ast.RichValue{}, err
		}
		value, err := evalDependency(ctx, ev)
		if err != nil {
			return ast.RichValue{}, err
		}
		ptr, err := sargptr(se, "VARIABLE")
		if err != nil {
			return ast.RichValue{}, err
		}
		if err := setVar(ctx, ptr, value.ToPrimitive()); err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVSuccess(), nil

	case ast.DataChangeVariableBy:
		ev, err := sargraw(se, "VALUE")
		if err != nil {
			return ast.RichValue{}, err
		}
		deltaRV, err := evalDependency(ctx, ev)
		if err != nil {
			return ast.RichValue{}, err
		}
		delta, ok := deltaRV.ToPrimitive().Float64()
		if !ok {
			return ast.RichValue{}, vmerrors.TypeErrorf("change-by amount is not a number", location(se))
		}
		ptr, err := sargptr(se, "VARIABLE")
		if err != nil {
			return ast.RichValue{}, err
		}
		if ptr.Kind != transform.PointerVariable {
			return ast.RichValue{}, vmerrors.TypeErrorf("DataChangeVariableBy's VARIABLE does not point to a variable", location(se))
		}
		cell, ok := ctx.Store.ResolveVar(ptr.ID)
		if !ok {
			return ast.RichValue{}, vmerrors.NotFoundErrorf("variable not found", location(se))
		}
		// Per-cell atomic read+write; not atomic as a compound operation
		// across any other cell.
		cell.Update(func(cur ast.PrimitiveValue) ast.PrimitiveValue {
			f, _ := cur.Float64()
			return ast.PVNumber(f + delta)
		})
		return ast.RVSuccess(), nil

	case ast.DataShowVariable, ast.DataHideVariable, ast.DataListShow, ast.DataListHide:
		// No renderer: visibility of the stage monitor has no observable
		// effect, so these are accepted no-ops.
		return ast.RVSuccess(), nil

	case ast.DataAddToList:
		list, err := resolveListArg(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		ev, err := sargraw(se, "ITEM")
		if err != nil {
			return ast.RichValue{}, err
		}
		item, err := evalDependency(ctx, ev)
		if err != nil {
			return ast.RichValue{}, err
		}
		list.Append(item.ToPrimitive())
		return ast.RVSuccess(), nil

	case ast.DataListDeleteElement:
		list, err := resolveListArg(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		raw, err := sargfloat(ctx, se, "INDEX")
		if err != nil {
			return ast.RichValue{}, err
		}
		if i, ok := listIndex(raw, list.Len()); ok {
			list.DeleteAt(i)
		}
		return ast.RVSuccess(), nil

	case ast.DataListClear:
		list, err := resolveListArg(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		list.Clear()
		return ast.RVSuccess(), nil

	case ast.DataListInsertAt:
		list, err := resolveListArg(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		ev, err := sargraw(se, "ITEM")
		if err != nil {
			return ast.RichValue{}, err
		}
		item, err := evalDependency(ctx, ev)
		if err != nil {
			return ast.RichValue{}, err
		}
		raw, err := sargfloat(ctx, se, "INDEX")
		if err != nil {
			return ast.RichValue{}, err
		}
		// Insertion accepts the one-past-the-end position too.
		i := int(raw)
		if float64(i) == raw && i >= 1 && i <= list.Len()+1 {
			list.InsertAt(i-1, item.ToPrimitive())
		}
		return ast.RVSuccess(), nil

	case ast.DataListReplaceItem:
		list, err := resolveListArg(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		ev, err := sargraw(se, "ITEM")
		if err != nil {
			return ast.RichValue{}, err
		}
		item, err := evalDependency(ctx, ev)
		if err != nil {
			return ast.RichValue{}, err
		}
		raw, err := sargfloat(ctx, se, "INDEX")
		if err != nil {
			return ast.RichValue{}, err
		}
		if i, ok := listIndex(raw, list.Len()); ok {
			list.ReplaceAt(i, item.ToPrimitive())
		}
		return ast.RVSuccess(), nil

	case ast.DataListItemAt:
		list, err := resolveListArg(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		raw, err := sargfloat(ctx, se, "INDEX")
		if err != nil {
			return ast.RichValue{}, err
		}
		i, ok := listIndex(raw, list.Len())
		if !ok {
			return ast.RVString(""), nil
		}
		return list.At(i).Get().ToRich(), nil

	case ast.DataListIndexOf:
		list, err := resolveListArg(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		ev, err := sargraw(se, "ITEM")
		if err != nil {
			return ast.RichValue{}, err
		}
		item, err := evalDependency(ctx, ev)
		if err != nil {
			return ast.RichValue{}, err
		}
		for i, v := range list.Snapshot() {
			if v.ToRich().Equal(item) {
				return ast.RVNumber(float64(i + 1)), nil
			}
		}
		return ast.RVNumber(0), nil

	case ast.DataListLengthOf:
		list, err := resolveListArg(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVNumber(float64(list.Len())), nil

	case ast.DataListContainsItem:
		list, err := resolveListArg(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		ev, err := sargraw(se, "ITEM")
		if err != nil {
			return ast.RichValue{}, err
		}
		item, err := evalDependency(ctx, ev)
		if err != nil {
			return ast.RichValue{}, err
		}
		for _, v := range list.Snapshot() {
			if v.ToRich().Equal(item) {
				return ast.RVBoolean(true), nil
			}
		}
		return ast.RVBoolean(false), nil
	}

	return ast.RichValue{}, vmerrors.Internalf("not a data opcode", string(se.Opcode))
}

func resolveListArg(ctx *Context, se *transform.StackExpression) (*state.ListHandle, error) {
	ptr, err := sargptr(se, "LIST")
	if err != nil {
		return nil, err
	}
	if ptr.Kind != transform.PointerList {
		return nil, vmerrors.TypeErrorf("LIST argument does not point to a list", location(se))
	}
	list, ok := ctx.Store.ResolveList(ptr.ID)
	if !ok {
		return nil, vmerrors.NotFoundErrorf("list not found", location(se))
	}
	return list, nil
}
