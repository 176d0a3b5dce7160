package engine

import "math"

// argList is the flattened value list of a single argument: a scalar
// contributes one value, a range contributes its member cells in
// row-major order.
type argList []Value

// builtin describes one entry of the function library. maxArgs of -1
// means variadic.
type builtin struct {
	minArgs int
	maxArgs int
	fn      func(name string, args []argList) (Value, *EvalError)
}

// builtins is the function library, keyed by uppercase name.
var builtins = map[string]builtin{
	"SUM":     {0, -1, fnSum},
	"AVERAGE": {0, -1, fnAverage},
	"AVG":     {0, -1, fnAverage},
	"MIN":     {0, -1, fnMin},
	"MAX":     {0, -1, fnMax},
	"COUNT":   {0, -1, fnCount},
	"COUNTA":  {0, -1, fnCountA},
	"ABS":     {1, 1, fnAbs},
	"ROUND":   {1, 2, fnRound},
	"FLOOR":   {1, 2, fnFloor},
	"CEILING": {1, 2, fnCeiling},
	"IF":      {2, 3, fnIf},
}

// callFunction dispatches a call to the library, enforcing arity before
// invoking the implementation.
func callFunction(name string, args []argList) (Value, *EvalError) {
	b, ok := builtins[name]
	if !ok {
		return nil, newEvalError(ErrCodeUnsupportedFunction, "unsupported function %s", name)
	}
	if len(args) < b.minArgs {
		return nil, newEvalError(ErrCodeArgumentCount, "%s expects at least %d argument(s), got %d", name, b.minArgs, len(args))
	}
	if b.maxArgs >= 0 && len(args) > b.maxArgs {
		return nil, newEvalError(ErrCodeArgumentCount, "%s expects at most %d argument(s), got %d", name, b.maxArgs, len(args))
	}
	return b.fn(name, args)
}

// flatten concatenates all argument lists into one value list.
func flatten(args []argList) []Value {
	var all []Value
	for _, arg := range args {
		all = append(all, arg...)
	}
	return all
}

// scalar extracts the single value of an argument. Empty arguments are the
// empty value; multi-value arguments (ranges) are rejected.
func scalar(name string, arg argList) (Value, *EvalError) {
	switch len(arg) {
	case 0:
		return Empty{}, nil
	case 1:
		return arg[0], nil
	}
	return nil, newEvalError(ErrCodeRangeNotAllowed, "%s expects a single value, got a range", name)
}

func fnSum(_ string, args []argList) (Value, *EvalError) {
	total := 0.0
	for _, v := range flatten(args) {
		f, err := CoerceNumber(v)
		if err != nil {
			return nil, err
		}
		total += f
	}
	return Number(total), nil
}

func fnAverage(_ string, args []argList) (Value, *EvalError) {
	total := 0.0
	count := 0
	for _, v := range flatten(args) {
		f, err := CoerceNumber(v)
		if err != nil {
			continue // non-numeric values are ignored, not an error
		}
		total += f
		count++
	}
	if count == 0 {
		return Number(0), nil
	}
	return Number(total / float64(count)), nil
}

func fnMin(_ string, args []argList) (Value, *EvalError) {
	return fold(args, math.Min)
}

func fnMax(_ string, args []argList) (Value, *EvalError) {
	return fold(args, math.Max)
}

func fold(args []argList, pick func(a, b float64) float64) (Value, *EvalError) {
	values := flatten(args)
	if len(values) == 0 {
		return Number(0), nil
	}
	var acc float64
	for i, v := range values {
		f, err := CoerceNumber(v)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			acc = f
			continue
		}
		acc = pick(acc, f)
	}
	return Number(acc), nil
}

// fnCount counts values that are numeric, boolean, or numeric-parseable
// strings. Empty cells are never counted.
func fnCount(_ string, args []argList) (Value, *EvalError) {
	count := 0
	for _, v := range flatten(args) {
		switch v.(type) {
		case Empty:
		case Number, Bool:
			count++
		case String:
			if _, err := CoerceNumber(v); err == nil && v.Display() != "" {
				count++
			}
		}
	}
	return Number(count), nil
}

// fnCountA counts all non-empty values.
func fnCountA(_ string, args []argList) (Value, *EvalError) {
	count := 0
	for _, v := range flatten(args) {
		switch val := v.(type) {
		case Empty:
		case String:
			if string(val) != "" {
				count++
			}
		default:
			count++
		}
	}
	return Number(count), nil
}

func fnAbs(name string, args []argList) (Value, *EvalError) {
	v, err := scalar(name, args[0])
	if err != nil {
		return nil, err
	}
	f, err := CoerceNumber(v)
	if err != nil {
		return nil, err
	}
	return Number(math.Abs(f)), nil
}

func fnRound(name string, args []argList) (Value, *EvalError) {
	f, precision, err := numericPair(name, args, 0)
	if err != nil {
		return nil, err
	}
	factor := math.Pow(10, math.Trunc(precision))
	return Number(math.Round(f*factor) / factor), nil
}

func fnFloor(name string, args []argList) (Value, *EvalError) {
	f, significance, err := numericPair(name, args, 1)
	if err != nil {
		return nil, err
	}
	if significance == 0 {
		return nil, newEvalError(ErrCodeZeroSignificance, "%s significance must not be zero", name)
	}
	return Number(math.Floor(f/significance) * significance), nil
}

func fnCeiling(name string, args []argList) (Value, *EvalError) {
	f, significance, err := numericPair(name, args, 1)
	if err != nil {
		return nil, err
	}
	if significance == 0 {
		return nil, newEvalError(ErrCodeZeroSignificance, "%s significance must not be zero", name)
	}
	return Number(math.Ceil(f/significance) * significance), nil
}

// numericPair coerces the first argument and the optional second argument
// (defaulting to def) to numbers.
func numericPair(name string, args []argList, def float64) (float64, float64, *EvalError) {
	v, err := scalar(name, args[0])
	if err != nil {
		return 0, 0, err
	}
	first, err := CoerceNumber(v)
	if err != nil {
		return 0, 0, err
	}
	second := def
	if len(args) > 1 {
		v, err := scalar(name, args[1])
		if err != nil {
			return 0, 0, err
		}
		second, err = CoerceNumber(v)
		if err != nil {
			return 0, 0, err
		}
	}
	return first, second, nil
}

func fnIf(name string, args []argList) (Value, *EvalError) {
	cond, err := scalar(name, args[0])
	if err != nil {
		return nil, err
	}
	if CoerceBool(cond) {
		return scalar(name, args[1])
	}
	if len(args) > 2 {
		return scalar(name, args[2])
	}
	return Empty{}, nil
}
