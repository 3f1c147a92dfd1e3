package interp

import (
	"fmt"
	"math"
	"strings"

	"github.com/blockvm/corevm/internal/ast"
	"github.com/blockvm/corevm/internal/transform"
	"github.com/blockvm/corevm/internal/vmerrors"
)

func evalOperator(se *transform.StackExpression, ctx *Context) (ast.RichValue, error) {
	switch se.Opcode {
	case ast.OperatorAdd:
		n1, err := sargfloat(ctx, se, "NUM1")
		if err != nil {
			return ast.RichValue{}, err
		}
		n2, err := sargfloat(ctx, se, "NUM2")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVNumber(n1 + n2), nil

	case ast.OperatorSubtract:
		n1, err := sargfloat(ctx, se, "NUM1")
		if err != nil {
			return ast.RichValue{}, err
		}
		n2, err := sargfloat(ctx, se, "NUM2")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVNumber(n1 - n2), nil

	case ast.OperatorMultiply:
		n1, err := sargfloat(ctx, se, "NUM1")
		if err != nil {
			return ast.RichValue{}, err
		}
		n2, err := sargfloat(ctx, se, "NUM2")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVNumber(n1 * n2), nil

	case ast.OperatorDivide:
		n1, err := sargfloat(ctx, se, "NUM1")
		if err != nil {
			return ast.RichValue{}, err
		}
		n2, err := sargfloat(ctx, se, "NUM2")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVNumber(n1 / n2), nil

	case ast.OperatorRandom:
		lower, err := sargfloat(ctx, se, "FROM")
		if err != nil {
			return ast.RichValue{}, err
		}
		upper, err := sargfloat(ctx, se, "TO")
		if err != nil {
			return ast.RichValue{}, err
		}
		if lower > upper {
			lower, upper = upper, lower
		}
		if lower == math.Trunc(lower) && upper == math.Trunc(upper) {
			return ast.RVInteger(ctx.IntRange(int64(lower), int64(upper))), nil
		}
		return ast.RVNumber(ctx.Float64(lower, upper)), nil

	case ast.OperatorGt:
		n1, n2, err := binFloat(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVBoolean(n1 > n2), nil

	case ast.OperatorLt:
		n1, n2, err := binFloat(ctx, se)
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVBoolean(n1 < n2), nil

	case ast.OperatorEquals:
		ev1, err := sargraw(se, "OPERAND1")
		if err != nil {
			return ast.RichValue{}, err
		}
		ev2, err := sargraw(se, "OPERAND2")
		if err != nil {
			return ast.RichValue{}, err
		}
		rv1, err := evalDependency(ctx, ev1)
		if err != nil {
			return ast.RichValue{}, err
		}
		rv2, err := evalDependency(ctx, ev2)
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVBoolean(rv1.Equal(rv2)), nil

	case ast.OperatorAnd:
		n1, err := sargbool(ctx, se, "OPERAND1")
		if err != nil {
			return ast.RichValue{}, err
		}
		n2, err := sargbool(ctx, se, "OPERAND2")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVBoolean(n1 && n2), nil

	case ast.OperatorOr:
		n1, err := sargbool(ctx, se, "OPERAND1")
		if err != nil {
			return ast.RichValue{}, err
		}
		n2, err := sargbool(ctx, se, "OPERAND2")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVBoolean(n1 || n2), nil

	case ast.OperatorNot:
		n1, err := sargbool(ctx, se, "OPERAND")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVBoolean(!n1), nil

	case ast.OperatorJoin:
		n1, err := sargstr(ctx, se, "STRING1")
		if err != nil {
			return ast.RichValue{}, err
		}
		n2, err := sargstr(ctx, se, "STRING2")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVString(n1 + n2), nil

	case ast.OperatorLetterOf:
		idx, err := sargfloat(ctx, se, "LETTER")
		if err != nil {
			return ast.RichValue{}, err
		}
		s, err := sargstr(ctx, se, "STRING")
		if err != nil {
			return ast.RichValue{}, err
		}
		runes := []rune(s)
		i := int(idx) - 1
		if i < 0 || i >= len(runes) {
			return ast.RVString(""), nil
		}
		return ast.RVString(string(runes[i])), nil

	case ast.OperatorLength:
		s, err := sargstr(ctx, se, "STRING")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVNumber(float64(len([]rune(s)))), nil

	case ast.OperatorContains:
		n1, err := sargstr(ctx, se, "STRING1")
		if err != nil {
			return ast.RichValue{}, err
		}
		n2, err := sargstr(ctx, se, "STRING2")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVBoolean(strings.Contains(strings.ToLower(n1), strings.ToLower(n2))), nil

	case ast.OperatorMod:
		n1, err := sargfloat(ctx, se, "NUM1")
		if err != nil {
			return ast.RichValue{}, err
		}
		n2, err := sargfloat(ctx, se, "NUM2")
		if err != nil {
			return ast.RichValue{}, err
		}
		r := math.Mod(n1, n2)
		if r != 0 && (r < 0) != (n2 < 0) {
			r += n2
		}
		return ast.RVNumber(r), nil

	case ast.OperatorRound:
		n1, err := sargfloat(ctx, se, "NUM")
		if err != nil {
			return ast.RichValue{}, err
		}
		return ast.RVInteger(int64(math.Round(n1))), nil

	case ast.OperatorMathop:
		n, err := sargfloat(ctx, se, "NUM")
		if err != nil {
			return ast.RichValue{}, err
		}
		op, err := sargstr(ctx, se, "OPERATOR")
		if err != nil {
			return ast.RichValue{}, err
		}
		return mathop(op, n, se)
	}

	return ast.RichValue{}, vmerrors.Internalf("not an operator opcode", string(se.Opcode))
}

func binFloat(ctx *Context, se *transform.StackExpression) (float64, float64, error) {
	n1, err := sargfloat(ctx, se, "OPERAND1")
	if err != nil {
		return 0, 0, err
	}
	n2, err := sargfloat(ctx, se, "OPERAND2")
	if err != nil {
		return 0, 0, err
	}
	return n1, n2, nil
}

func mathop(op string, n float64, se *transform.StackExpression) (ast.RichValue, error) {
	switch op {
	case "abs":
		return ast.RVNumber(math.Abs(n)), nil
	case "floor":
		return ast.RVNumber(math.Floor(n)), nil
	case "ceiling":
		return ast.RVNumber(math.Ceil(n)), nil
	case "sqrt":
		return ast.RVNumber(math.Sqrt(n)), nil
	case "sin":
		return ast.RVNumber(math.Sin(n * math.Pi / 180)), nil
	case "cos":
		return ast.RVNumber(math.Cos(n * math.Pi / 180)), nil
	case "tan":
		return ast.RVNumber(math.Tan(n * math.Pi / 180)), nil
	case "asin":
		return ast.RVNumber(math.Asin(n) * 180 / math.Pi), nil
	case "acos":
		return ast.RVNumber(math.Acos(n) * 180 / math.Pi), nil
	case "atan":
		return ast.RVNumber(math.Atan(n) * 180 / math.Pi), nil
	case "ln":
		return ast.RVNumber(math.Log(n)), nil
	case "log":
		return ast.RVNumber(math.Log10(n)), nil
	case "e ^":
		return ast.RVNumber(math.Exp(n)), nil
	case "10 ^":
		return ast.RVNumber(math.Pow(10, n)), nil
	}
	return ast.RichValue{}, vmerrors.SyntaxErrorf(fmt.Sprintf("unknown math operator %q", op), location(se))
}
