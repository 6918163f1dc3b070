package testutil

import (
	"strings"
	"testing"

	"github.com/banshee-data/motion.report/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRampSamples(t *testing.T) {
	t.Parallel()

	s := RampSamples(4, 20)
	require.Len(t, s, 21)
	assert.Equal(t, 0.0, s[4].X)
	assert.Equal(t, 25.0, s[5].X)
	assert.Equal(t, 400.0, s[20].X)
	assert.Equal(t, 1000.0, s[20].TimestampMs)
	for _, p := range s {
		assert.Equal(t, 20.0, p.Y)
	}
}

func TestRampTrajectory(t *testing.T) {
	t.Parallel()

	traj := RampTrajectory(t, 7, 3)
	assert.Equal(t, 7, traj.TrialNumber)
	assert.Equal(t, 21, traj.Len())
}

func TestSessionCSVRoundTripsThroughIngest(t *testing.T) {
	t.Parallel()

	doc := SessionCSV("P01",
		SessionBlock{Trial: 1, Samples: RampSamples(4, 0)},
		SessionBlock{Trial: 2, Samples: ScenarioSamples()},
		SessionBlock{Trial: 3},
	)

	sess, err := ingest.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "P01", sess.ParticipantID)
	assert.Equal(t, 3, sess.SummaryRows)
	require.Len(t, sess.Trials, 2)
	assert.Equal(t, 21, sess.Trials[0].Len())
	assert.Equal(t, 5, sess.Trials[1].Len())
	require.Len(t, sess.Rejected, 1)
	assert.Equal(t, 3, sess.Rejected[0].TrialNumber)
	assert.Empty(t, sess.Warnings)
}
