package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := NewWithOutput(&buf, "debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("club", "rotary").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "rotary", line["club"])
}

func TestNewWithOutput_RejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewWithOutput(&bytes.Buffer{}, "loud", "text")
	require.Error(t, err)

	_, err = NewWithOutput(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)
}
