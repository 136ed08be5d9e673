package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]logrus.Level{
		"silent": logrus.PanicLevel,
		"1":      logrus.ErrorLevel,
		"warn":   logrus.WarnLevel,
		"":       logrus.InfoLevel,
		"DEBUG":  logrus.DebugLevel,
		"5":      logrus.TraceLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, logrus.InfoLevel)
	l.Debugf("hidden %d", 1)
	l.WithField("upload_id", "abc").Info("file processed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "file processed")
	assert.Contains(t, out, "upload_id=abc")
}
