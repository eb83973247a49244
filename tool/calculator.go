package tool

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

const maxExpressionLength = 256

// CalculatorArgs defines arguments for the calculator tool.
type CalculatorArgs struct {
	Expression string `json:"expression" jsonschema:"required" jsonschema_description:"A mathematical expression, e.g. 25 * 4 + 10 or sqrt(16) / 2"`
}

// Calculator creates the calculator tool.
func Calculator() Spec {
	return Func("calculator",
		"Perform mathematical calculations. Use this for any math operations like addition, multiplication, percentages, etc.",
		func(ctx context.Context, args CalculatorArgs) (string, error) {
			value, err := Evaluate(args.Expression)
			if err != nil {
				return fmt.Sprintf("Calculation error: %v. Please use valid math expressions.", err), nil
			}
			return fmt.Sprintf("Result: %s = %s", args.Expression, value), nil
		})
}

var constants = map[string]any{
	"pi": math.Pi,
	"e":  math.E,
}

var unaryMath = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"log":   math.Log,
	"log10": math.Log10,
	"exp":   math.Exp,
}

// Builtins of the expression language that are purely numeric.
var numericBuiltins = map[string]bool{
	"abs":   true,
	"ceil":  true,
	"floor": true,
	"round": true,
	"max":   true,
	"min":   true,
}

var arithmeticOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true, "^": true,
}

// Evaluate computes a numeric expression and formats the result.
//
// Only number literals, arithmetic operators, parentheses, the constants pi
// and e, and a fixed set of math functions are accepted. Everything else is
// rejected before evaluation.
func Evaluate(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("empty expression")
	}
	if len(input) > maxExpressionLength {
		return "", fmt.Errorf("expression longer than %d characters", maxExpressionLength)
	}

	tree, err := parser.Parse(input)
	if err != nil {
		return "", err
	}
	v := &arithmeticOnly{}
	ast.Walk(&tree.Node, v)
	if v.err != nil {
		return "", v.err
	}

	opts := []expr.Option{expr.Env(constants), expr.Patch(floatLiterals{})}
	for name, fn := range unaryMath {
		opts = append(opts, expr.Function(name, unaryFunc(name, fn)))
	}
	opts = append(opts, expr.Function("pow", func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		y, err := toFloat(params[1])
		if err != nil {
			return nil, err
		}
		return math.Pow(x, y), nil
	}))

	opts = append(opts, expr.Function(moduloFunc, func(params ...any) (any, error) {
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		y, err := toFloat(params[1])
		if err != nil {
			return nil, err
		}
		return math.Mod(x, y), nil
	}))

	program, err := expr.Compile(input, opts...)
	if err != nil {
		return "", err
	}
	out, err := expr.Run(program, constants)
	if err != nil {
		return "", err
	}
	return formatResult(out)
}

func unaryFunc(name string, fn func(float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func formatResult(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", errors.New("result is not a finite number")
		}
		return strconv.FormatFloat(n, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("expression produced %T, not a number", v)
	}
}

// moduloFunc replaces the % operator, which the expression language only
// defines for integers.
const moduloFunc = "__mod"

// floatLiterals rewrites integer literals as floats so arithmetic cannot
// wrap around on int64 overflow.
type floatLiterals struct{}

func (floatLiterals) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IntegerNode:
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	case *ast.BinaryNode:
		if n.Operator == "%" {
			ast.Patch(node, &ast.CallNode{
				Callee:    &ast.IdentifierNode{Value: moduloFunc},
				Arguments: []ast.Node{n.Left, n.Right},
			})
		}
	}
}

// arithmeticOnly rejects any node outside the numeric grammar.
type arithmeticOnly struct {
	err error
}

func (v *arithmeticOnly) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.IntegerNode, *ast.FloatNode:
	case *ast.UnaryNode:
		if n.Operator != "-" && n.Operator != "+" {
			v.err = fmt.Errorf("operator %q is not allowed", n.Operator)
		}
	case *ast.BinaryNode:
		if !arithmeticOperators[n.Operator] {
			v.err = fmt.Errorf("operator %q is not allowed", n.Operator)
		}
	case *ast.IdentifierNode:
		if _, ok := constants[n.Value]; ok {
			return
		}
		if _, ok := unaryMath[n.Value]; ok || n.Value == "pow" {
			return
		}
		v.err = fmt.Errorf("unknown name %q", n.Value)
	case *ast.CallNode:
		id, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			v.err = errors.New("only named math functions can be called")
			return
		}
		if _, ok := unaryMath[id.Value]; !ok && id.Value != "pow" {
			v.err = fmt.Errorf("function %q is not allowed", id.Value)
		}
	case *ast.BuiltinNode:
		if !numericBuiltins[n.Name] {
			v.err = fmt.Errorf("function %q is not allowed", n.Name)
		}
	default:
		v.err = fmt.Errorf("unsupported syntax %T", n)
	}
}
