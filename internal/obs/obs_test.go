package obs

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetVerbosityMapsCountToLevel(t *testing.T) {
	SetVerbosity(0)
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())

	SetVerbosity(1)
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())

	SetVerbosity(3)
	assert.Equal(t, logrus.TraceLevel, Log.GetLevel())
}

func TestStatsDumpWritesRegisteredCounters(t *testing.T) {
	s := NewStats()
	s.SeedsDrawn.Add(3)
	s.MUSes.Inc()

	var buf bytes.Buffer
	s.Dump(&buf)

	out := buf.String()
	assert.Contains(t, out, "marco_seeds_drawn_total 3")
	assert.Contains(t, out, "marco_mus_total 1")
}
