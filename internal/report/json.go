package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/motion.report/internal/session"
)

// jsonReport is the on-disk layout of analysis_results_*.json.
type jsonReport struct {
	RunID         string                `json:"run_id"`
	GeneratedAt   time.Time             `json:"generated_at"`
	ParticipantID string                `json:"participant_id,omitempty"`
	Source        string                `json:"source,omitempty"`
	DistanceUnit  string                `json:"distance_unit"`
	Summary       session.Summary       `json:"summary"`
	TrialResults  []session.TrialResult `json:"trial_results"`
	Warnings      []string              `json:"warnings,omitempty"`
}

// WriteJSON writes the report as indented JSON, including the per-sample
// velocity, acceleration and timestamp sequences of each trial.
func WriteJSON(w io.Writer, r *Report) error {
	doc := jsonReport{
		RunID:         r.RunID,
		GeneratedAt:   r.GeneratedAt,
		ParticipantID: r.ParticipantID,
		Source:        r.Source,
		DistanceUnit:  r.Unit,
		Summary:       r.Summary,
		TrialResults:  r.Results,
		Warnings:      r.Warnings,
	}
	if doc.TrialResults == nil {
		doc.TrialResults = []session.TrialResult{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode analysis results: %w", err)
	}
	return nil
}
