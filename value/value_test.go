package value

import (
	"math"
	"testing"
	"time"
)

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"integral float", 3.0, "3"},
		{"fraction", 0.5, "0.5"},
		{"negative", -12.25, "-12.25"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"inf", math.Inf(1), "Infinity"},
		{"neg inf", math.Inf(-1), "-Infinity"},
		{"nan", math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToString(tt.in); got != tt.want {
				t.Errorf("ToString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToNumberFallbacks(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"10", 10},
		{" 2.5 ", 2.5},
		{"abc", 0},
		{"", 0},
		{"nan", 0},
		{"inf", 0},
		{"Infinity", math.Inf(1)},
		{"0x10", 16},
		{true, 1},
		{nil, 0},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := ToNumber(tt.in); got != tt.want {
			t.Errorf("ToNumber(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{"3.9", 3},
		{"-3.9", -3},
		{"Infinity", math.MaxInt},
		{"-Infinity", math.MinInt},
		{"1e300", math.MaxInt},
		{math.Inf(1), math.MaxInt},
		{"junk", 0},
	}
	for _, tt := range tests {
		if got := ToInt(tt.in); got != tt.want {
			t.Errorf("ToInt(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want time.Duration
	}{
		{0.25, 250 * time.Millisecond},
		{0, 0},
		{-2, 0},
		{math.NaN(), 0},
		{math.Inf(1), MaxDuration},
		{1e300, MaxDuration},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		if got := Seconds(tt.in); got != tt.want {
			t.Errorf("Seconds(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToBool(t *testing.T) {
	falsy := []any{nil, "", "0", "false", "FALSE", " false ", 0.0, false}
	for _, v := range falsy {
		if ToBool(v) {
			t.Errorf("ToBool(%#v) = true, want false", v)
		}
	}
	truthy := []any{"true", "True", "1", "hello", 2.0, true, "0.0"}
	for _, v := range truthy {
		if !ToBool(v) {
			t.Errorf("ToBool(%#v) = false, want true", v)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b any
		want int
	}{
		{"10", "9", 1},
		{"9", "10", -1},
		{"abc", "ABC", 0},
		{"apple", "banana", -1},
		{"10", "abc", -1},
		{1.0, "1", 0},
	}

	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEqualTolerance(t *testing.T) {
	if !Equal(0.1+0.2, "0.3") {
		t.Error("expected 0.1+0.2 to equal 0.3")
	}
	if Equal("1", "2") {
		t.Error("1 should not equal 2")
	}
	if !Equal("Hello", "hello") {
		t.Error("string equality should ignore case")
	}
}
