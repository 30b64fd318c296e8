package filter

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-dfg/pkg/validation"
)

// Default thresholds
const (
	DefaultDependencyThreshold  = 0.95
	DefaultPositiveObservations = 0.01
	DefaultRelativeToBest       = 0.05
)

// StructuringTime selects when block structuring runs relative to discovery
type StructuringTime int

const (
	StructuringNone StructuringTime = iota
	StructuringPre
	StructuringPost
)

var structuringNames = []string{"NONE", "PRE", "POST"}

func (s StructuringTime) String() string {
	if s < 0 || int(s) >= len(structuringNames) {
		return fmt.Sprintf("StructuringTime(%d)", int(s))
	}
	return structuringNames[s]
}

// ParseStructuringTime accepts NONE, PRE or POST in any case. An empty string is NONE.
func ParseStructuringTime(s string) (StructuringTime, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return StructuringNone, nil
	}
	for i, n := range structuringNames {
		if n == name {
			return StructuringTime(i), nil
		}
	}
	return StructuringNone, fmt.Errorf("%w: structuring time %q must be one of %v",
		ErrInvalidConfiguration, s, structuringNames)
}

// Configuration holds the thresholds of one filter run. It is a value:
// the Disable helpers return modified copies.
type Configuration struct {
	DependencyThreshold  float64
	PositiveObservations float64
	RelativeToBest       float64

	// Carried for downstream structuring; the filter itself does not act on them
	StructuringTime StructuringTime
	ReplaceIORs     bool

	// Designated endpoints by label. Empty means the activities observed
	// first and last in traces.
	StartActivities []string
	EndActivities   []string
}

// DefaultConfiguration returns the standard thresholds
func DefaultConfiguration() Configuration {
	return Configuration{
		DependencyThreshold:  DefaultDependencyThreshold,
		PositiveObservations: DefaultPositiveObservations,
		RelativeToBest:       DefaultRelativeToBest,
		StructuringTime:      StructuringNone,
	}
}

// DisablePositiveObservations turns off the noise prune
func (c Configuration) DisablePositiveObservations() Configuration {
	c.PositiveObservations = 0
	return c
}

// DisableRelativeToBest turns off the relative-to-best prune
func (c Configuration) DisableRelativeToBest() Configuration {
	c.RelativeToBest = 1.0
	return c
}

// PositiveObservationsEnabled reports whether step one prunes anything
func (c Configuration) PositiveObservationsEnabled() bool {
	return c.PositiveObservations > 0
}

// RelativeToBestEnabled reports whether step three prunes anything
func (c Configuration) RelativeToBestEnabled() bool {
	return c.RelativeToBest < 1.0
}

// Validate checks every threshold and returns all problems at once
func (c Configuration) Validate() error {
	cv := validation.NewConfigValidator("filter")
	validation.Range(cv, "DependencyThreshold", c.DependencyThreshold, -1.0, 1.0)
	cv.Fraction("PositiveObservations", c.PositiveObservations).
		Fraction("RelativeToBest", c.RelativeToBest).
		OneOf("StructuringTime", c.StructuringTime.String(), structuringNames).
		Distinct("StartActivities", c.StartActivities).
		Distinct("EndActivities", c.EndActivities)

	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}
