// Package operation defines the scalar functions used to combine joined cells.
package operation

import (
	"fmt"
	"math"
	"strings"

	"github.com/chewxy/math32"
)

// Op identifies a binary scalar function.
type Op int

// Supported operations.
const (
	Add Op = iota
	Sub
	Mul
	Div
	Max
	Min
	Pow
	Mod
	Hypot
)

var names = [...]string{
	Add:   "add",
	Sub:   "sub",
	Mul:   "mul",
	Div:   "div",
	Max:   "max",
	Min:   "min",
	Pow:   "pow",
	Mod:   "mod",
	Hypot: "hypot",
}

// String returns the operation name.
func (op Op) String() string {
	if op < 0 || int(op) >= len(names) {
		return fmt.Sprintf("op(%d)", int(op))
	}
	return names[op]
}

// Parse returns the operation with the given name.
func Parse(name string) (Op, error) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return Op(i), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// Float64 returns the operation on float64 operands.
func (op Op) Float64() func(a, b float64) float64 {
	switch op {
	case Add:
		return func(a, b float64) float64 { return a + b }
	case Sub:
		return func(a, b float64) float64 { return a - b }
	case Mul:
		return func(a, b float64) float64 { return a * b }
	case Div:
		return func(a, b float64) float64 { return a / b }
	case Max:
		return math.Max
	case Min:
		return math.Min
	case Pow:
		return math.Pow
	case Mod:
		return math.Mod
	case Hypot:
		return math.Hypot
	default:
		panic(fmt.Sprintf("operation: unknown op %d", int(op)))
	}
}

// Float32 returns the operation on float32 operands.
func (op Op) Float32() func(a, b float32) float32 {
	switch op {
	case Add:
		return func(a, b float32) float32 { return a + b }
	case Sub:
		return func(a, b float32) float32 { return a - b }
	case Mul:
		return func(a, b float32) float32 { return a * b }
	case Div:
		return func(a, b float32) float32 { return a / b }
	case Max:
		return math32.Max
	case Min:
		return math32.Min
	case Pow:
		return math32.Pow
	case Mod:
		return math32.Mod
	case Hypot:
		return math32.Hypot
	default:
		panic(fmt.Sprintf("operation: unknown op %d", int(op)))
	}
}
