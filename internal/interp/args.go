package interp

import (
	"fmt"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

// argraw returns the raw compiled Evaluable for an input/field name,
// without evaluating it.
func argraw(se *transform.StackExpression, name string) (transform.Evaluable, error) {
	ev, ok := se.Dependencies[name]
	if !ok {
		return transform.Evaluable{}, vmerrors.NotFoundErrorf(fmt.Sprintf("argument %q not found", name), fmt.Sprintf("lookup %q", name))
	}
	return ev, nil
}

// resolvePointerValue reads a ValuePointer's current value as a
// PrimitiveValue, Local before Global.
func resolvePointerValue(ctx *Context, p transform.ValuePointer) (ast.PrimitiveValue, error) {
	switch p.Kind {
	case transform.PointerVariable:
		cell, ok := ctx.Store.ResolveVar(p.ID)
		if !ok {
			return ast.PrimitiveValue{}, vmerrors.NotFoundErrorf(fmt.Sprintf("variable %q not found", p.Name), fmt.Sprintf("resolving variable pointer %q (id=%d)", p.Name, p.ID))
		}
		return cell.Get(), nil
	case transform.PointerBroadcast:
		name, ok := ctx.Store.ResolveBroadcast(p.ID)
		if !ok {
			return ast.PrimitiveValue{}, vmerrors.NotFoundErrorf(fmt.Sprintf("broadcast %q not found", p.Name), fmt.Sprintf("resolving broadcast pointer %q (id=%d)", p.Name, p.ID))
		}
		return ast.PVString(name), nil
	}
	return ast.PrimitiveValue{}, vmerrors.TypeErrorf("lists cannot be converted into strings, you may have accidentally dragged a list reporter inside a block slot that only accepts strings", fmt.Sprintf("resolving pointer %q (id=%d) as value", p.Name, p.ID))
}

// evalDependency evaluates a compiled Evaluable into a RichValue.
func evalDependency(ctx *Context, ev transform.Evaluable) (ast.RichValue, error) {
	switch ev.Kind {
	case transform.EvBare:
		return ev.Bare, nil
	case transform.EvField:
		if ev.Field.Pointer != nil {
			pv, err := resolvePointerValue(ctx, *ev.Field.Pointer)
			if err != nil {
				if ev.Field.Pointer.Kind == transform.PointerBroadcast {
					return ast.RVBroadcast(ev.Field.Pointer.Name), nil
				}
				return ast.RichValue{}, err
			}
			return pv.ToRich(), nil
		}
		return ast.RVString(ev.Field.DisplayValue), nil
	case transform.EvPointer:
		if ev.Pointer.Kind == transform.PointerBroadcast {
			return ast.RVBroadcast(ev.Pointer.Name), nil
		}
		pv, err := resolvePointerValue(ctx, ev.Pointer)
		if err != nil {
			return ast.RichValue{}, err
		}
		return pv.ToRich(), nil
	case transform.EvBlock:
		return evalExp(ev.Block, ctx)
	case transform.EvDefault:
		return ast.RVString(""), nil
	}
	return ast.RichValue{}, vmerrors.Internalf("unevaluable dependency kind", "evalDependency")
}

func argstr(ctx *Context, se *transform.StackExpression, name string) (string, error) {
	ev, err := argraw(se, name)
	if err != nil {
		return "", err
	}
	rv, err := evalDependency(ctx, ev)
	if err != nil {
		return "", err
	}
	return rv.ToPrimitive().String(), nil
}

func argfloat(ctx *Context, se *transform.StackExpression, name string) (float64, error) {
	ev, err := argraw(se, name)
	if err != nil {
		return 0, err
	}
	if ev.Kind == transform.EvPointer && ev.Pointer.Kind != transform.PointerVariable {
		return 0, vmerrors.TypeErrorf(fmt.Sprintf("lists and broadcasts cannot be converted into numbers; argument %q points to a %v", name, ev.Pointer.Kind), fmt.Sprintf("fetching argument %q as float", name))
	}
	rv, err := evalDependency(ctx, ev)
	if err != nil {
		return 0, err
	}
	f, ok := rv.ToPrimitive().Float64()
	if !ok {
		return 0, vmerrors.TypeErrorf(fmt.Sprintf("cannot convert argument %q to a number", name), fmt.Sprintf("fetching argument %q as float", name))
	}
	return f, nil
}

func argbool(ctx *Context, se *transform.StackExpression, name string) (bool, error) {
	ev, err := argraw(se, name)
	if err != nil {
		return false, err
	}
	rv, err := evalDependency(ctx, ev)
	if err != nil {
		return false, err
	}
	b, ok := rv.ToPrimitive().Bool()
	if !ok {
		return false, vmerrors.TypeErrorf(fmt.Sprintf("cannot convert argument %q to a boolean", name), fmt.Sprintf("fetching argument %q as bool", name))
	}
	return b, nil
}

func argptr(se *transform.StackExpression, name string) (transform.ValuePointer, error) {
	ev, err := argraw(se, name)
	if err != nil {
		return transform.ValuePointer{}, err
	}
	if ev.Kind == transform.EvPointer {
		return ev.Pointer, nil
	}
	if ev.Kind == transform.EvField && ev.Field.Pointer != nil {
		return *ev.Field.Pointer, nil
	}
	return transform.ValuePointer{}, vmerrors.TypeErrorf(fmt.Sprintf("argument %q does not reference a variable, list, or broadcast", name), fmt.Sprintf("fetching argument %q as pointer", name))
}

// argBody returns the flattened Expression sequence of a substack input,
// e.g. "SUBSTACK" on control_if. An absent or empty substack yields nil,
// not an error: an empty body is a legal, no-op block of script.
func argBody(se *transform.StackExpression, name string) []transform.Expression {
	ev, ok := se.Dependencies[name]
	if !ok || ev.Kind != transform.EvStack {
		return nil
	}
	return ev.Body
}

// location renders the block-level context string used by sarg* errors
// and by top-level traceback frames.
func location(se *transform.StackExpression) string {
	return fmt.Sprintf("block %s (id=%s)", se.Opcode, se.BlockID)
}

func sargf(err error, name string, se *transform.StackExpression) error {
	se2 := vmerrors.AsScratchError(err, location(se))
	return se2.PushNotFound(fmt.Sprintf("required argument %s not found", name), location(se))
}

func sargstr(ctx *Context, se *transform.StackExpression, name string) (string, error) {
	v, err := argstr(ctx, se, name)
	if err != nil {
		return "", sargf(err, name, se)
	}
	return v, nil
}

func sargfloat(ctx *Context, se *transform.StackExpression, name string) (float64, error) {
	v, err := argfloat(ctx, se, name)
	if err != nil {
		return 0, sargf(err, name, se)
	}
	return v, nil
}

func sargbool(ctx *Context, se *transform.StackExpression, name string) (bool, error) {
	v, err := argbool(ctx, se, name)
	if err != nil {
		return false, sargf(err, name, se)
	}
	return v, nil
}

func sargptr(se *transform.StackExpression, name string) (transform.ValuePointer, error) {
	v, err := argptr(se, name)
	if err != nil {
		return transform.ValuePointer{}, sargf(err, name, se)
	}
	return v, nil
}

func sargraw(se *transform.StackExpression, name string) (transform.Evaluable, error) {
	v, err := argraw(se, name)
	if err != nil {
		return transform.Evaluable{}, sargf(err, name, se)
	}
	return v, nil
}

// setVar writes a PrimitiveValue through a ValuePointer, Local before
// Global.
func setVar(ctx *Context, p transform.ValuePointer, v ast.PrimitiveValue) error {
	if p.Kind != transform.PointerVariable {
		return vmerrors.TypeErrorf(fmt.Sprintf("pointer %q does not reference a variable", p.Name), fmt.Sprintf("setting %q (id=%d)", p.Name, p.ID))
	}
	cell, ok := ctx.Store.ResolveVar(p.ID)
	if !ok {
		return vmerrors.NotFoundErrorf(fmt.Sprintf("variable %q not found", p.Name), fmt.Sprintf("setting %q (id=%d)", p.Name, p.ID))
	}
	cell.Set(v)
	return nil
}
