package blocks

import (
	"math"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/registry"
	"github.com/lixenwraith/scratchrun/value"
)

func init() {
	registry.RegisterFamily("operators", operatorHandlers)
}

func operatorHandlers() map[string]engine.Handler {
	return map[string]engine.Handler{
		"operator_add":       arith(func(a, b float64) float64 { return a + b }),
		"operator_subtract":  arith(func(a, b float64) float64 { return a - b }),
		"operator_multiply":  arith(func(a, b float64) float64 { return a * b }),
		"operator_divide":    arith(func(a, b float64) float64 { return a / b }),
		"operator_mod":       arith(Mod),
		"operator_random":    random,
		"operator_gt":        compare(func(c int) bool { return c > 0 }),
		"operator_lt":        compare(func(c int) bool { return c < 0 }),
		"operator_equals":    equals,
		"operator_and":       and,
		"operator_or":        or,
		"operator_not":       not,
		"operator_join":      join,
		"operator_letter_of": letterOf,
		"operator_length":    length,
		"operator_contains":  contains,
		"operator_round":     round,
		"operator_mathop":    mathOp,
	}
}

// ===== Arithmetic =====

func arith(op func(a, b float64) float64) engine.Handler {
	return func(t *engine.Thread, id project.BlockID) (string, error) {
		p := t.Evaluate(id)
		return num(op(p.Num("NUM1"), p.Num("NUM2"))), nil
	}
}

// Mod is the floored modulo: the result takes the sign of the divisor
func Mod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// Round rounds half up
func Round(x float64) float64 { return math.Floor(x + 0.5) }

// random picks an integer when both bounds are integral literals, a float otherwise
func random(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	from, to := p.Num("FROM"), p.Num("TO")
	if from > to {
		from, to = to, from
	}
	decimal := strings.Contains(p.Str("FROM"), ".") || strings.Contains(p.Str("TO"), ".")
	if !decimal && from == math.Trunc(from) && to == math.Trunc(to) && math.Abs(from) < 1<<52 && math.Abs(to) < 1<<52 {
		lo, hi := int64(from), int64(to)
		return num(float64(lo + rand.Int64N(hi-lo+1))), nil
	}
	return num(from + rand.Float64()*(to-from)), nil
}

func round(t *engine.Thread, id project.BlockID) (string, error) {
	return num(Round(t.Evaluate(id).Num("NUM"))), nil
}

// MathOp applies a mathop menu function; trigonometry works in degrees
func MathOp(op string, x float64) float64 {
	switch op {
	case "abs":
		return math.Abs(x)
	case "floor":
		return math.Floor(x)
	case "ceiling":
		return math.Ceil(x)
	case "sqrt":
		return math.Sqrt(x)
	case "sin":
		return roundTrig(math.Sin(x * math.Pi / 180))
	case "cos":
		return roundTrig(math.Cos(x * math.Pi / 180))
	case "tan":
		return tanDegrees(x)
	case "asin":
		return math.Asin(x) * 180 / math.Pi
	case "acos":
		return math.Acos(x) * 180 / math.Pi
	case "atan":
		return math.Atan(x) * 180 / math.Pi
	case "ln":
		return math.Log(x)
	case "log":
		return math.Log10(x)
	case "e ^":
		return math.Exp(x)
	case "10 ^":
		return math.Pow(10, x)
	}
	return 0
}

// roundTrig drops float noise so sin 180 reports 0
func roundTrig(v float64) float64 { return math.Round(v*1e10) / 1e10 }

func tanDegrees(x float64) float64 {
	switch Mod(x, 360) {
	case 90:
		return math.Inf(1)
	case 270:
		return math.Inf(-1)
	}
	return roundTrig(math.Tan(x * math.Pi / 180))
}

func mathOp(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	return num(MathOp(p.Str("OPERATOR"), p.Num("NUM"))), nil
}

// ===== Comparison and logic =====

func compare(accept func(int) bool) engine.Handler {
	return func(t *engine.Thread, id project.BlockID) (string, error) {
		p := t.Evaluate(id)
		return value.FromBool(accept(value.Compare(p.Str("OPERAND1"), p.Str("OPERAND2")))), nil
	}
}

func equals(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	return value.FromBool(value.Equal(p.Str("OPERAND1"), p.Str("OPERAND2"))), nil
}

// and, or and not treat an empty slot as false
func and(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	return value.FromBool(p.Bool("OPERAND1") && p.Bool("OPERAND2")), nil
}

func or(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	return value.FromBool(p.Bool("OPERAND1") || p.Bool("OPERAND2")), nil
}

func not(t *engine.Thread, id project.BlockID) (string, error) {
	return value.FromBool(!t.Evaluate(id).Bool("OPERAND")), nil
}

// ===== Strings =====

func join(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	return p.Str("STRING1") + p.Str("STRING2"), nil
}

// letterOf is 1-indexed over runes; out of range yields ""
func letterOf(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	runes := []rune(p.Str("STRING"))
	i := p.Int("LETTER") - 1
	if i < 0 || i >= len(runes) {
		return "", nil
	}
	return string(runes[i]), nil
}

func length(t *engine.Thread, id project.BlockID) (string, error) {
	return num(float64(utf8.RuneCountInString(t.Evaluate(id).Str("STRING")))), nil
}

// contains ignores case
func contains(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	return value.FromBool(strings.Contains(strings.ToLower(p.Str("STRING1")), strings.ToLower(p.Str("STRING2")))), nil
}
