package interp

import (
	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

func evalProcedures(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	switch se.Opcode {
	case ast.ProceduresDefinition:
		return ast.RVSuccess(), nil

	case ast.ProceduresPrototype, ast.ArgumentEditorBoolean, ast.ArgumentEditorStringNumber:
		// Editor-only shadows; never meaningfully reached at runtime.
		return ast.RVSuccess(), nil

	case ast.ProceduresCall:
		// The transformer rewrites every ProceduresCall into an
		// InvokeCustomBlock before a Thread ever runs; reaching this case
		// means a call site's mutation was missing or malformed.
		return ast.RichValue{}, vmerrors.SyntaxErrorf("procedures_call block missing its custom block mutation", location(se))

	case ast.ArgumentReporterStringNumber, ast.ArgumentReporterBoolean:
		name, err := sargstr(ctx, se, "VALUE")
		if err != nil {
			return ast.RichValue{}, err
		}
		frame := ctx.CurrentFrame()
		if frame == nil {
			return ast.RichValue{}, vmerrors.TypeErrorf("argument reporter used outside of a custom block call", location(se))
		}
		thread := ctx.currentCustomBlockThread()
		if thread == nil {
			return ast.RichValue{}, vmerrors.Internalf("no custom block thread context for argument reporter", location(se))
		}
		id, ok := thread.CustomBlockArgNames[name]
		if !ok {
			return ast.RichValue{}, vmerrors.NotFoundErrorf("custom block argument "+name+" not declared", location(se))
		}
		if v, ok := frame.Values[id]; ok {
			return v, nil
		}
		return ast.RVString(""), nil
	}

	return ast.RichValue{}, vmerrors.Internalf("not a procedures opcode", string(se.Opcode))
}

func invokeCustomBlock(call *transform.InvokeCustomBlockExpr, ctx *Context) (ast.RichValue, error) {
	info, ok := ctx.Startup.ProcIndex[call.Target]
	if !ok {
		return ast.RichValue{}, vmerrors.NotFoundErrorf("custom block definition not found", "block id="+call.BlockID)
	}
	thread := ctx.Startup.Targets[info.TargetIndex].Threads[info.ThreadIndex]

	values := make(map[uint32]ast.RichValue, len(thread.CustomBlockArguments))
	for id, def := range thread.CustomBlockArguments {
		values[id] = def.ToRich()
	}
	for id, ev := range call.Arguments {
		rv, err := evalDependency(ctx, ev)
		if err != nil {
			return ast.RichValue{}, err
		}
		values[id] = rv
	}

	ctx.PushFrame(&CallFrame{Values: values})
	ctx.pushCustomBlockThread(&thread)
	defer ctx.popCustomBlockThread()
	defer ctx.PopFrame()

	if err := execBody(thread.Code, ctx); err != nil {
		if vmerrors.IsStopThisScript(err) {
			return ast.RVSuccess(), nil
		}
		return ast.RichValue{}, err
	}
	return ast.RVSuccess(), nil
}
