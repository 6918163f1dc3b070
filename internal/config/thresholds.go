package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical threshold defaults file.
const DefaultConfigPath = "config/thresholds.defaults.json"

// ErrConfigOutOfRange is returned by Validate when a configured bound would
// make a score computation divide by zero or invert sign.
var ErrConfigOutOfRange = errors.New("config out of range")

// Built-in defaults used when a field is absent from the loaded file.
const (
	defaultMinReactionTime    = 100.0
	defaultMaxReactionTime    = 1000.0
	defaultMinMovementTime    = 200.0
	defaultMaxMovementTime    = 3000.0
	defaultMinDirectness      = 0.5
	defaultMaxVelocity        = 4000.0
	defaultGoodReactionTime   = 150.0
	defaultGoodMovementTime   = 1500.0
	defaultGoodDirectness     = 0.8
	defaultMaxMovementUnits   = 10.0
	defaultMaxCorrections     = 5.0
	defaultSamplingRate       = 10.0
	defaultVelocityThreshold  = 50.0
	defaultStoppingThreshold  = 10.0
	defaultReactionTimeWeight = 0.3
	defaultMovementTimeWeight = 0.3
	defaultDirectnessWeight   = 0.2
	defaultSmoothnessWeight   = 0.1
	defaultCorrectionsWeight  = 0.1
)

// weightSumTolerance absorbs float rounding when checking that the blend
// weights do not exceed 1.
const weightSumTolerance = 1e-9

// ThresholdConfig holds the validation thresholds for a session. Every field
// is optional in the file; the Get* accessors fall back to the built-in
// defaults. Unknown keys in the file are ignored.
//
// A ThresholdConfig is treated as immutable once loaded and may be read
// concurrently from any number of trial evaluations.
type ThresholdConfig struct {
	// Physiological bounds
	MinReactionTime *float64 `json:"min_reaction_time,omitempty" yaml:"min_reaction_time,omitempty"` // ms
	MaxReactionTime *float64 `json:"max_reaction_time,omitempty" yaml:"max_reaction_time,omitempty"` // ms
	MinMovementTime *float64 `json:"min_movement_time,omitempty" yaml:"min_movement_time,omitempty"` // ms
	MaxMovementTime *float64 `json:"max_movement_time,omitempty" yaml:"max_movement_time,omitempty"` // ms
	MinDirectness   *float64 `json:"min_directness,omitempty" yaml:"min_directness,omitempty"`
	MaxVelocity     *float64 `json:"max_velocity,omitempty" yaml:"max_velocity,omitempty"` // px/s

	// Quality references
	GoodReactionTime  *float64 `json:"good_reaction_time,omitempty" yaml:"good_reaction_time,omitempty"`
	GoodMovementTime  *float64 `json:"good_movement_time,omitempty" yaml:"good_movement_time,omitempty"`
	GoodDirectness    *float64 `json:"good_directness,omitempty" yaml:"good_directness,omitempty"`
	MaxMovementUnits  *float64 `json:"max_movement_units,omitempty" yaml:"max_movement_units,omitempty"`
	MaxCorrections    *float64 `json:"max_corrections,omitempty" yaml:"max_corrections,omitempty"`
	SamplingRate      *float64 `json:"sampling_rate,omitempty" yaml:"sampling_rate,omitempty"`           // ms
	VelocityThreshold *float64 `json:"velocity_threshold,omitempty" yaml:"velocity_threshold,omitempty"` // px/s, movement onset
	StoppingThreshold *float64 `json:"stopping_threshold,omitempty" yaml:"stopping_threshold,omitempty"` // px/s, movement end

	// Blend weights
	ReactionTimeWeight *float64 `json:"reaction_time_weight,omitempty" yaml:"reaction_time_weight,omitempty"`
	MovementTimeWeight *float64 `json:"movement_time_weight,omitempty" yaml:"movement_time_weight,omitempty"`
	DirectnessWeight   *float64 `json:"directness_weight,omitempty" yaml:"directness_weight,omitempty"`
	SmoothnessWeight   *float64 `json:"smoothness_weight,omitempty" yaml:"smoothness_weight,omitempty"`
	CorrectionsWeight  *float64 `json:"corrections_weight,omitempty" yaml:"corrections_weight,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }

// EmptyThresholdConfig returns a ThresholdConfig with all fields unset, so
// every accessor reports its built-in default.
func EmptyThresholdConfig() *ThresholdConfig {
	return &ThresholdConfig{}
}

// DefaultThresholdConfig returns a ThresholdConfig with every field set to
// its built-in default.
func DefaultThresholdConfig() *ThresholdConfig {
	return &ThresholdConfig{
		MinReactionTime:    ptrFloat64(defaultMinReactionTime),
		MaxReactionTime:    ptrFloat64(defaultMaxReactionTime),
		MinMovementTime:    ptrFloat64(defaultMinMovementTime),
		MaxMovementTime:    ptrFloat64(defaultMaxMovementTime),
		MinDirectness:      ptrFloat64(defaultMinDirectness),
		MaxVelocity:        ptrFloat64(defaultMaxVelocity),
		GoodReactionTime:   ptrFloat64(defaultGoodReactionTime),
		GoodMovementTime:   ptrFloat64(defaultGoodMovementTime),
		GoodDirectness:     ptrFloat64(defaultGoodDirectness),
		MaxMovementUnits:   ptrFloat64(defaultMaxMovementUnits),
		MaxCorrections:     ptrFloat64(defaultMaxCorrections),
		SamplingRate:       ptrFloat64(defaultSamplingRate),
		VelocityThreshold:  ptrFloat64(defaultVelocityThreshold),
		StoppingThreshold:  ptrFloat64(defaultStoppingThreshold),
		ReactionTimeWeight: ptrFloat64(defaultReactionTimeWeight),
		MovementTimeWeight: ptrFloat64(defaultMovementTimeWeight),
		DirectnessWeight:   ptrFloat64(defaultDirectnessWeight),
		SmoothnessWeight:   ptrFloat64(defaultSmoothnessWeight),
		CorrectionsWeight:  ptrFloat64(defaultCorrectionsWeight),
	}
}

// LoadThresholdConfig loads a ThresholdConfig from a JSON or YAML file.
// The extension selects the decoder (.json, .yaml, .yml). Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadThresholdConfig(path string) (*ThresholdConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseThresholdConfig(data, ext)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseThresholdConfig decodes and validates raw config bytes. format is a
// file extension (".json", ".yaml" or ".yml").
func ParseThresholdConfig(data []byte, format string) (*ThresholdConfig, error) {
	cfg := EmptyThresholdConfig()
	switch format {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ThresholdConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/<pkg>/
		"../../../" + DefaultConfigPath, // from cmd/<tool>/ nested one deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadThresholdConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that every value is finite, that paired bounds are ordered
// so that every score computation has a positive denominator, and that the
// blend weights are non-negative. Errors wrap ErrConfigOutOfRange.
//
// It also rejects blend weights summing above 1. This is an extra guard on
// top of the bound checks: weights are still applied as configured, never
// renormalized, and the guard only keeps the quality score within [0,1].
func (c *ThresholdConfig) Validate() error {
	for _, f := range c.values() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %g", ErrConfigOutOfRange, f.name, f.value)
		}
	}

	pairs := []struct {
		lowName, highName string
		low, high         float64
	}{
		{"min_reaction_time", "max_reaction_time", c.GetMinReactionTime(), c.GetMaxReactionTime()},
		{"good_reaction_time", "max_reaction_time", c.GetGoodReactionTime(), c.GetMaxReactionTime()},
		{"min_movement_time", "max_movement_time", c.GetMinMovementTime(), c.GetMaxMovementTime()},
		{"good_movement_time", "max_movement_time", c.GetGoodMovementTime(), c.GetMaxMovementTime()},
		{"min_directness", "good_directness", c.GetMinDirectness(), c.GetGoodDirectness()},
	}
	for _, p := range pairs {
		if !(p.high > p.low) {
			return fmt.Errorf("%w: %s (%g) must be greater than %s (%g)",
				ErrConfigOutOfRange, p.highName, p.high, p.lowName, p.low)
		}
	}

	if c.GetVelocityThreshold() < 0 {
		return fmt.Errorf("%w: velocity_threshold must be non-negative, got %g",
			ErrConfigOutOfRange, c.GetVelocityThreshold())
	}
	if c.GetMaxMovementUnits() < 0 {
		return fmt.Errorf("%w: max_movement_units must be non-negative, got %g",
			ErrConfigOutOfRange, c.GetMaxMovementUnits())
	}

	weights := []namedValue{
		{"reaction_time_weight", c.GetReactionTimeWeight()},
		{"movement_time_weight", c.GetMovementTimeWeight()},
		{"directness_weight", c.GetDirectnessWeight()},
		{"smoothness_weight", c.GetSmoothnessWeight()},
		{"corrections_weight", c.GetCorrectionsWeight()},
	}
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %g", ErrConfigOutOfRange, w.name, w.value)
		}
	}

	// corrections_weight is not part of the blend.
	blend := c.GetReactionTimeWeight() + c.GetMovementTimeWeight() +
		c.GetDirectnessWeight() + c.GetSmoothnessWeight()
	if blend > 1+weightSumTolerance {
		return fmt.Errorf("%w: blend weights sum to %g, must not exceed 1", ErrConfigOutOfRange, blend)
	}

	return nil
}

type namedValue struct {
	name  string
	value float64
}

// values lists every parameter with its resolved value.
func (c *ThresholdConfig) values() []namedValue {
	return []namedValue{
		{"min_reaction_time", c.GetMinReactionTime()},
		{"max_reaction_time", c.GetMaxReactionTime()},
		{"min_movement_time", c.GetMinMovementTime()},
		{"max_movement_time", c.GetMaxMovementTime()},
		{"min_directness", c.GetMinDirectness()},
		{"max_velocity", c.GetMaxVelocity()},
		{"good_reaction_time", c.GetGoodReactionTime()},
		{"good_movement_time", c.GetGoodMovementTime()},
		{"good_directness", c.GetGoodDirectness()},
		{"max_movement_units", c.GetMaxMovementUnits()},
		{"max_corrections", c.GetMaxCorrections()},
		{"sampling_rate", c.GetSamplingRate()},
		{"velocity_threshold", c.GetVelocityThreshold()},
		{"stopping_threshold", c.GetStoppingThreshold()},
		{"reaction_time_weight", c.GetReactionTimeWeight()},
		{"movement_time_weight", c.GetMovementTimeWeight()},
		{"directness_weight", c.GetDirectnessWeight()},
		{"smoothness_weight", c.GetSmoothnessWeight()},
		{"corrections_weight", c.GetCorrectionsWeight()},
	}
}

func getOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// GetMinReactionTime returns the min_reaction_time value or the default.
func (c *ThresholdConfig) GetMinReactionTime() float64 {
	return getOr(c.MinReactionTime, defaultMinReactionTime)
}

// GetMaxReactionTime returns the max_reaction_time value or the default.
func (c *ThresholdConfig) GetMaxReactionTime() float64 {
	return getOr(c.MaxReactionTime, defaultMaxReactionTime)
}

// GetMinMovementTime returns the min_movement_time value or the default.
func (c *ThresholdConfig) GetMinMovementTime() float64 {
	return getOr(c.MinMovementTime, defaultMinMovementTime)
}

// GetMaxMovementTime returns the max_movement_time value or the default.
func (c *ThresholdConfig) GetMaxMovementTime() float64 {
	return getOr(c.MaxMovementTime, defaultMaxMovementTime)
}

// GetMinDirectness returns the min_directness value or the default.
func (c *ThresholdConfig) GetMinDirectness() float64 {
	return getOr(c.MinDirectness, defaultMinDirectness)
}

// GetMaxVelocity returns the max_velocity value or the default.
func (c *ThresholdConfig) GetMaxVelocity() float64 {
	return getOr(c.MaxVelocity, defaultMaxVelocity)
}

// GetGoodReactionTime returns the good_reaction_time value or the default.
func (c *ThresholdConfig) GetGoodReactionTime() float64 {
	return getOr(c.GoodReactionTime, defaultGoodReactionTime)
}

// GetGoodMovementTime returns the good_movement_time value or the default.
func (c *ThresholdConfig) GetGoodMovementTime() float64 {
	return getOr(c.GoodMovementTime, defaultGoodMovementTime)
}

// GetGoodDirectness returns the good_directness value or the default.
func (c *ThresholdConfig) GetGoodDirectness() float64 {
	return getOr(c.GoodDirectness, defaultGoodDirectness)
}

// GetMaxMovementUnits returns the max_movement_units value or the default.
func (c *ThresholdConfig) GetMaxMovementUnits() float64 {
	return getOr(c.MaxMovementUnits, defaultMaxMovementUnits)
}

// GetMaxCorrections returns the max_corrections value or the default.
func (c *ThresholdConfig) GetMaxCorrections() float64 {
	return getOr(c.MaxCorrections, defaultMaxCorrections)
}

// GetSamplingRate returns the sampling_rate value (ms) or the default.
func (c *ThresholdConfig) GetSamplingRate() float64 {
	return getOr(c.SamplingRate, defaultSamplingRate)
}

// GetVelocityThreshold returns the velocity_threshold value or the default.
func (c *ThresholdConfig) GetVelocityThreshold() float64 {
	return getOr(c.VelocityThreshold, defaultVelocityThreshold)
}

// GetStoppingThreshold returns the stopping_threshold value or the default.
func (c *ThresholdConfig) GetStoppingThreshold() float64 {
	return getOr(c.StoppingThreshold, defaultStoppingThreshold)
}

// GetReactionTimeWeight returns the reaction_time_weight value or the default.
func (c *ThresholdConfig) GetReactionTimeWeight() float64 {
	return getOr(c.ReactionTimeWeight, defaultReactionTimeWeight)
}

// GetMovementTimeWeight returns the movement_time_weight value or the default.
func (c *ThresholdConfig) GetMovementTimeWeight() float64 {
	return getOr(c.MovementTimeWeight, defaultMovementTimeWeight)
}

// GetDirectnessWeight returns the directness_weight value or the default.
func (c *ThresholdConfig) GetDirectnessWeight() float64 {
	return getOr(c.DirectnessWeight, defaultDirectnessWeight)
}

// GetSmoothnessWeight returns the smoothness_weight value or the default.
func (c *ThresholdConfig) GetSmoothnessWeight() float64 {
	return getOr(c.SmoothnessWeight, defaultSmoothnessWeight)
}

// GetCorrectionsWeight returns the corrections_weight value or the default.
func (c *ThresholdConfig) GetCorrectionsWeight() float64 {
	return getOr(c.CorrectionsWeight, defaultCorrectionsWeight)
}
