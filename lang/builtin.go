package lang

import (
	"io"
	"math"
	"strings"
)

// numeric lists the operand types of the arithmetic and comparison operators.
// bool operands take the values 0 and 1.
var numeric = []Type{TypeInt, TypeDouble, TypeBool}

func toInt(v Value) int64 {
	switch v := v.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
	}

	return 0
}

func toDouble(v Value) float64 {
	switch v := v.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
	}

	return 0
}

// arith returns an arithmetic implementation computed in float64 when double
// is set and in int64 otherwise.
func arith(
	double bool,
	i func(a, b int64) (int64, error),
	f func(a, b float64) float64,
) BinaryFunc {
	if double {
		return func(l, r Value) (Value, error) {
			return f(toDouble(l), toDouble(r)), nil
		}
	}

	return func(l, r Value) (Value, error) {
		v, err := i(toInt(l), toInt(r))
		if err != nil {
			return nil, err
		}

		return v, nil
	}
}

// compare returns a numeric comparison computed in float64 when double is
// set and in int64 otherwise.
func compare(double bool, cmp func(c int) bool) BinaryFunc {
	if double {
		return func(l, r Value) (Value, error) {
			a, b := toDouble(l), toDouble(r)

			switch {
			case a < b:
				return cmp(-1), nil
			case a > b:
				return cmp(1), nil
			case a == b:
				return cmp(0), nil
			}

			// NaN compares unequal to everything.
			return false, nil
		}
	}

	return func(l, r Value) (Value, error) {
		a, b := toInt(l), toInt(r)

		switch {
		case a < b:
			return cmp(-1), nil
		case a > b:
			return cmp(1), nil
		}

		return cmp(0), nil
	}
}

var comparisons = map[Op]func(c int) bool{
	OpLess:         func(c int) bool { return c < 0 },
	OpLessEqual:    func(c int) bool { return c <= 0 },
	OpGreater:      func(c int) bool { return c > 0 },
	OpGreaterEqual: func(c int) bool { return c >= 0 },
	OpEqual:        func(c int) bool { return c == 0 },
	OpNotEqual:     func(c int) bool { return c != 0 },
}

func mustBinary(p *OperatorProvider, op Op, l, r Type, fn BinaryFunc) {
	if err := p.RegisterBinary(op, l, r, fn); err != nil {
		panic(err)
	}
}

func mustUnary(p *OperatorProvider, op Op, t Type, fn UnaryFunc) {
	if err := p.RegisterUnary(op, t, fn); err != nil {
		panic(err)
	}
}

func registerBuiltins(p *OperatorProvider) {
	for _, l := range numeric {
		for _, r := range numeric {
			double := l == TypeDouble || r == TypeDouble

			mustBinary(p, OpAdd, l, r, arith(double,
				func(a, b int64) (int64, error) { return a + b, nil },
				func(a, b float64) float64 { return a + b }))
			mustBinary(p, OpSubtract, l, r, arith(double,
				func(a, b int64) (int64, error) { return a - b, nil },
				func(a, b float64) float64 { return a - b }))
			mustBinary(p, OpDivide, l, r, arith(double,
				func(a, b int64) (int64, error) {
					if b == 0 {
						return 0, ErrDivisionByZero
					}

					return a / b, nil
				},
				func(a, b float64) float64 { return a / b }))

			if !(l == TypeBool && r == TypeDouble) &&
				!(l == TypeDouble && r == TypeBool) {
				mustBinary(p, OpMultiply, l, r, arith(double,
					func(a, b int64) (int64, error) { return a * b, nil },
					func(a, b float64) float64 { return a * b }))
				mustBinary(p, OpModulo, l, r, arith(double,
					func(a, b int64) (int64, error) {
						if b == 0 {
							return 0, ErrDivisionByZero
						}

						return a % b, nil
					},
					math.Mod))
			}

			for op, cmp := range comparisons {
				mustBinary(p, op, l, r, compare(double, cmp))
			}
		}
	}

	concat := func(l, r Value) (Value, error) {
		return FormatValue(l) + FormatValue(r), nil
	}

	mustBinary(p, OpAdd, TypeString, TypeString, concat)

	for _, t := range numeric {
		mustBinary(p, OpAdd, TypeString, t, concat)
		mustBinary(p, OpAdd, t, TypeString, concat)
	}

	for op, cmp := range comparisons {
		mustBinary(p, op, TypeString, TypeString, func(l, r Value) (Value, error) {
			return cmp(strings.Compare(l.(string), r.(string))), nil
		})
	}

	mustUnary(p, OpBool, TypeBool, func(v Value) (Value, error) {
		return v.(bool), nil
	})
	mustUnary(p, OpBool, TypeInt, func(v Value) (Value, error) {
		return v.(int64) != 0, nil
	})
	mustUnary(p, OpBool, TypeDouble, func(v Value) (Value, error) {
		return v.(float64) != 0, nil
	})
	mustUnary(p, OpBool, TypeString, func(v Value) (Value, error) {
		return v.(string) != "", nil
	})

	mustUnary(p, OpNegate, TypeInt, func(v Value) (Value, error) {
		return -v.(int64), nil
	})
	mustUnary(p, OpNegate, TypeDouble, func(v Value) (Value, error) {
		return -v.(float64), nil
	})
	mustUnary(p, OpNegate, TypeBool, func(v Value) (Value, error) {
		return -toInt(v), nil
	})

	mustUnary(p, OpPositive, TypeInt, func(v Value) (Value, error) {
		return v, nil
	})
	mustUnary(p, OpPositive, TypeDouble, func(v Value) (Value, error) {
		return v, nil
	})
	mustUnary(p, OpPositive, TypeBool, func(v Value) (Value, error) {
		return toInt(v), nil
	})

	write := func(v Value) (Value, error) {
		if _, err := io.WriteString(p.out, FormatValue(v)); err != nil {
			return nil, err
		}

		return v, nil
	}

	for _, t := range []Type{TypeBool, TypeInt, TypeDouble, TypeString} {
		mustUnary(p, OpPrint, t, write)
	}
}
