package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFile_EmitsFilePathField(t *testing.T) {
	var buf bytes.Buffer
	l := New(logrus.InfoLevel, &buf)

	WithFile(l, "internal/indexer/pipeline.go").Info("skipping malformed chunk")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "internal/indexer/pipeline.go", decoded[FieldFilePath])
}

func TestWithError_EmitsErrorTypeField(t *testing.T) {
	var buf bytes.Buffer
	l := New(logrus.InfoLevel, &buf)

	WithError(l, errors.New("boom"), "provider").Error("embedding call failed")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "provider", decoded[FieldErrorType])
	assert.Equal(t, "boom", decoded["error"])
}

func TestWithPhase_EmitsPhaseField(t *testing.T) {
	var buf bytes.Buffer
	l := New(logrus.InfoLevel, &buf)

	WithPhase(l, "discovery").Info("starting")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "discovery", decoded[FieldPhase])
}
