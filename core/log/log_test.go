package log

import (
	"errors"
	"testing"
	"time"
)

func TestPairs(t *testing.T) {
	tests := []struct {
		name string
		got  any
		key  string
		want any
	}{
		{name: "str", got: Str("key", "value"), key: "key", want: "value"},
		{name: "int", got: Int("count", 42), key: "count", want: 42},
		{name: "bool", got: Bool("ok", true), key: "ok", want: true},
		{name: "dur", got: Dur("latency", 5*time.Second), key: "latency", want: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slice, ok := tt.got.([]any)
			if !ok {
				t.Fatalf("%s should return []any, got %T", tt.name, tt.got)
			}
			if len(slice) != 2 {
				t.Fatalf("expected 2 elements, got %d", len(slice))
			}
			if slice[0] != tt.key || slice[1] != tt.want {
				t.Fatalf("got %v, want [%s %v]", slice, tt.key, tt.want)
			}
		})
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	if logger.With("k", "v") == nil {
		t.Fatal("With should return a logger")
	}
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error(errors.New("boom"), "error")
}
