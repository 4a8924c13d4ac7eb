package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knitli/codeweaver/internal/types"
)

func TestDetectIntent_Explicit(t *testing.T) {
	t.Parallel()

	explicit := types.IntentDebug
	intent, confidence := DetectIntent("anything at all", &explicit)

	assert.Equal(t, types.IntentDebug, intent)
	assert.Equal(t, float32(1.0), confidence)
}

func TestDetectIntent_Keywords(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query string
		want  types.IntentType
	}{
		{"why does this crash on startup", types.IntentDebug},
		{"how do I implement a retry policy", types.IntentImplement},
		{"explain how the chunker works", types.IntentUnderstand},
		{"where is the manifest loaded", types.IntentDiscover},
	}

	for _, tc := range cases {
		intent, confidence := DetectIntent(tc.query, nil)
		assert.Equal(t, tc.want, intent, tc.query)
		assert.Equal(t, detectionConfidence, confidence)
	}
}

func TestDetectIntent_NoMatchFallsBackToDiscover(t *testing.T) {
	t.Parallel()

	intent, confidence := DetectIntent("zzz qqq unrecognized gibberish", nil)

	assert.Equal(t, types.IntentDiscover, intent)
	assert.Equal(t, defaultConfidence, confidence)
}
