// Package validation scores a trial's kinematic metrics against
// physiological bounds and quality references.
package validation

import (
	"fmt"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/kinematics"
)

// Thresholds holds the resolved validation parameters.
type Thresholds struct {
	MinReactionTime  float64 // ms
	MaxReactionTime  float64 // ms
	GoodReactionTime float64 // ms
	MinMovementTime  float64 // ms
	MaxMovementTime  float64 // ms
	GoodMovementTime float64 // ms
	MinDirectness    float64
	GoodDirectness   float64
	MaxMovementUnits float64

	ReactionTimeWeight float64
	MovementTimeWeight float64
	DirectnessWeight   float64
	SmoothnessWeight   float64

	// Carried for reporting; no criterion reads these yet.
	MaxCorrections    float64
	CorrectionsWeight float64
	MaxVelocity       float64
}

// ThresholdsFromConfig builds Thresholds from a loaded ThresholdConfig.
func ThresholdsFromConfig(cfg *config.ThresholdConfig) Thresholds {
	return Thresholds{
		MinReactionTime:    cfg.GetMinReactionTime(),
		MaxReactionTime:    cfg.GetMaxReactionTime(),
		GoodReactionTime:   cfg.GetGoodReactionTime(),
		MinMovementTime:    cfg.GetMinMovementTime(),
		MaxMovementTime:    cfg.GetMaxMovementTime(),
		GoodMovementTime:   cfg.GetGoodMovementTime(),
		MinDirectness:      cfg.GetMinDirectness(),
		GoodDirectness:     cfg.GetGoodDirectness(),
		MaxMovementUnits:   cfg.GetMaxMovementUnits(),
		ReactionTimeWeight: cfg.GetReactionTimeWeight(),
		MovementTimeWeight: cfg.GetMovementTimeWeight(),
		DirectnessWeight:   cfg.GetDirectnessWeight(),
		SmoothnessWeight:   cfg.GetSmoothnessWeight(),
		MaxCorrections:     cfg.GetMaxCorrections(),
		CorrectionsWeight:  cfg.GetCorrectionsWeight(),
		MaxVelocity:        cfg.GetMaxVelocity(),
	}
}

// ComponentScores are the per-criterion scores, each in [0,1].
type ComponentScores struct {
	ReactionTime float64 `json:"rt_score"`
	MovementTime float64 `json:"mt_score"`
	Directness   float64 `json:"directness_score"`
	Smoothness   float64 `json:"smoothness_score"`
}

// Result is the outcome of validating one trial.
// QualityScore is always 0 when IsValid is false.
type Result struct {
	IsValid      bool            `json:"is_valid"`
	QualityScore float64         `json:"quality_score"`
	Issues       []string        `json:"issues"`
	Components   ComponentScores `json:"components"`
}

// Validator scores trials against a fixed set of thresholds. It holds no
// mutable state and is safe for concurrent use.
type Validator struct {
	th Thresholds
}

// NewValidator creates a validator for the given thresholds.
func NewValidator(th Thresholds) *Validator {
	return &Validator{th: th}
}

// Validate evaluates reaction time, movement time, directness and
// smoothness, in that order. The first three are hard criteria: failing any
// of them marks the trial invalid and forces the quality score to 0.
// Smoothness only discounts the score.
//
// Corrective movements are not consulted.
func (v *Validator) Validate(m *kinematics.KinematicMetrics) Result {
	th := v.th
	res := Result{IsValid: true, Issues: []string{}}

	// 1. Reaction time
	rt := m.ReactionTimeMs
	switch {
	case rt < th.MinReactionTime:
		res.IsValid = false
		res.Issues = append(res.Issues, fmt.Sprintf("Reaction time too fast: %.1fms", rt))
	case rt > th.MaxReactionTime:
		res.IsValid = false
		res.Issues = append(res.Issues, fmt.Sprintf("Reaction time too slow: %.1fms", rt))
	default:
		res.Components.ReactionTime = descendingScore(rt, th.GoodReactionTime, th.MaxReactionTime)
	}

	// 2. Movement time
	mt := m.MovementTimeMs
	switch {
	case mt < th.MinMovementTime:
		res.IsValid = false
		res.Issues = append(res.Issues, fmt.Sprintf("Movement time too fast: %.1fms", mt))
	case mt > th.MaxMovementTime:
		res.IsValid = false
		res.Issues = append(res.Issues, fmt.Sprintf("Movement time too slow: %.1fms", mt))
	default:
		res.Components.MovementTime = descendingScore(mt, th.GoodMovementTime, th.MaxMovementTime)
	}

	// 3. Path directness (no upper bound)
	d := m.DirectnessRatio
	if d < th.MinDirectness {
		res.IsValid = false
		res.Issues = append(res.Issues, fmt.Sprintf("Path too indirect: %.3f", d))
	} else {
		res.Components.Directness = clamp01((d - th.MinDirectness) / (th.GoodDirectness - th.MinDirectness))
	}

	// 4. Smoothness (soft)
	units := float64(m.MovementUnits)
	if units > th.MaxMovementUnits {
		res.Components.Smoothness = SmoothnessScore(m.MovementUnits, th.MaxMovementUnits)
		res.Issues = append(res.Issues, fmt.Sprintf("Jerky movement: %d units", m.MovementUnits))
	} else {
		res.Components.Smoothness = 1.0
	}

	if res.IsValid {
		res.QualityScore = res.Components.ReactionTime*th.ReactionTimeWeight +
			res.Components.MovementTime*th.MovementTimeWeight +
			res.Components.Directness*th.DirectnessWeight +
			res.Components.Smoothness*th.SmoothnessWeight
	}
	return res
}

// descendingScore is 1 at or below good, falling linearly to 0 at upper.
func descendingScore(value, good, upper float64) float64 {
	return clamp01(1 - (value-good)/(upper-good))
}

// SmoothnessScore loses 0.1 per movement unit above maxUnits, floored at 0.
func SmoothnessScore(units int, maxUnits float64) float64 {
	excess := float64(units) - maxUnits
	if excess <= 0 {
		return 1.0
	}
	s := 1 - excess/10
	if s < 0 {
		return 0
	}
	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
