package rag

import (
	"reflect"
	"testing"
)

func TestOverlapStrategy_String(t *testing.T) {
	tests := []struct {
		strategy OverlapStrategy
		want     string
	}{
		{OverlapNone, "none"},
		{OverlapWords, "words"},
		{OverlapStrategy(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.strategy.String(); got != tt.want {
			t.Errorf("OverlapStrategy(%d).String() = %q, want %q", tt.strategy, got, tt.want)
		}
	}
}

func TestTailWords(t *testing.T) {
	words := []string{"a", "b", "c", "d"}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"zero", 0, nil},
		{"negative", -1, nil},
		{"two", 2, []string{"c", "d"}},
		{"all", 4, []string{"a", "b", "c", "d"}},
		{"more than available", 10, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TailWords(words, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TailWords(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestTailWords_DoesNotAlias(t *testing.T) {
	words := []string{"a", "b", "c"}
	tail := TailWords(words, 2)
	tail[0] = "x"
	if words[1] != "b" {
		t.Errorf("TailWords result aliases its input: %v", words)
	}
}

func TestCarryOver(t *testing.T) {
	prev := []string{"a", "b", "c"}
	next := []string{"d", "e"}

	got := carryOver(OverlapWords, 2, prev, next)
	want := []string{"b", "c", "d", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("carryOver(words) = %v, want %v", got, want)
	}

	got = carryOver(OverlapNone, 2, prev, next)
	if !reflect.DeepEqual(got, next) {
		t.Errorf("carryOver(none) = %v, want %v", got, next)
	}
}
