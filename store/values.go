package store

import (
	"fmt"
	"math"
)

// asBool and asInt accept what a JSON decode of a store value produces.

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, ErrNotFound
	case bool:
		return b, nil
	}
	return false, fmt.Errorf("%w: want bool, have %T", ErrType, v)
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, ErrNotFound
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%w: %v is not a number", ErrType, n)
		}
		// saturate first; int() of an out-of-range float is undefined
		if n >= math.MaxInt {
			return math.MaxInt, nil
		}
		if n <= math.MinInt {
			return math.MinInt, nil
		}
		return int(n), nil // truncate like the store's own integer accessor
	}
	return 0, fmt.Errorf("%w: want int, have %T", ErrType, v)
}

func checkFloat(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("unsupported value: %v", v)
	}
	return nil
}
