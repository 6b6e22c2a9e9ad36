// Package value converts between the loosely typed values that flow through
// block programs. Every conversion is total: bad input yields a fallback, never a panic.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical truth strings returned by boolean reporters
const (
	True  = "true"
	False = "false"
)

// FromBool returns the canonical truth string for b
func FromBool(b bool) string {
	if b {
		return True
	}
	return False
}

// ToString renders any runtime value the way reporters display it
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return FormatNumber(x)
	case float32:
		return FormatNumber(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return FromBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// FormatNumber prints integral floats without a fractional part
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// parseNumber reports whether s holds a number, accepting surrounding space
// and the Infinity spellings reporters produce
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	// ParseFloat accepts "inf"/"nan" spellings which are strings here
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return 0, false
	}
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "-0x") {
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsNumber reports whether v would compare numerically
func IsNumber(v any) bool {
	switch x := v.(type) {
	case float64:
		return !math.IsNaN(x)
	case float32, int, int64:
		return true
	case bool, nil:
		return false
	case string:
		_, ok := parseNumber(x)
		return ok
	default:
		_, ok := parseNumber(ToString(v))
		return ok
	}
}

// ToNumber converts v to a float64; non-numeric input and NaN become 0
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(x) {
			return 0
		}
		return x
	case float32:
		return ToNumber(float64(x))
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, ok := parseNumber(x)
		if !ok {
			return 0
		}
		return f
	default:
		f, _ := parseNumber(ToString(v))
		return f
	}
}

// ToInt truncates the numeric value of v toward zero, saturating at the int range
func ToInt(v any) int {
	f := ToNumber(v)
	switch {
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	}
	return int(f)
}

// MaxDuration is the longest wait a block can request
const MaxDuration = time.Duration(math.MaxInt64)

// Seconds converts a block's seconds input to a duration; negative and NaN become 0
// and anything past MaxDuration (Infinity included) saturates
func Seconds(secs float64) time.Duration {
	ns := secs * float64(time.Second)
	switch {
	case !(ns > 0):
		return 0
	case ns >= float64(MaxDuration):
		return MaxDuration
	}
	return time.Duration(ns)
}

// ToBool applies truthiness: "", "0", "false" (any case) and 0 are false
func ToBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == "0" || strings.EqualFold(s, False) {
			return false
		}
		return true
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	default:
		return ToBool(ToString(v))
	}
}

// Compare orders a and b: numerically when both look numeric,
// otherwise by case-insensitive string comparison
func Compare(a, b any) int {
	if IsNumber(a) && IsNumber(b) {
		fa, fb := ToNumber(a), ToNumber(b)
		switch {
		case fa == fb:
			return 0
		case fa < fb:
			return -1
		default:
			return 1
		}
	}
	sa := strings.ToLower(ToString(a))
	sb := strings.ToLower(ToString(b))
	return strings.Compare(sa, sb)
}

// Equal reports Compare(a, b) == 0, with a tolerance for float noise
func Equal(a, b any) bool {
	if IsNumber(a) && IsNumber(b) {
		fa, fb := ToNumber(a), ToNumber(b)
		if fa == fb {
			return true
		}
		diff := math.Abs(fa - fb)
		return diff <= 1e-9*math.Max(math.Abs(fa), math.Abs(fb))
	}
	return Compare(a, b) == 0
}
