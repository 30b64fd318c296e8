package logging

import (
	"fmt"
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

func Activity(label string) Field {
	return String("activity", label)
}

func NodeIndex(index int) Field {
	return Int("node", index)
}

// Edge renders an edge as "source->target"
func Edge(source, target int) Field {
	return String("edge", fmt.Sprintf("%d->%d", source, target))
}

// Step names a filter step
func Step(name string) Field {
	return String("step", name)
}

func RunID(id fmt.Stringer) Field {
	return String("run_id", id.String())
}

// Stamp records which graph version an artifact belongs to
func Stamp(s fmt.Stringer) Field {
	return String("graph", s.String())
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
