package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGetLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":     logrus.DebugLevel,
		"error":     logrus.ErrorLevel,
		"fatal":     logrus.FatalLevel,
		"info":      logrus.InfoLevel,
		"INFO":      logrus.InfoLevel,
		"trace":     logrus.TraceLevel,
		"warn":      logrus.WarnLevel,
		"gibberish": logrus.TraceLevel,
		"":          logrus.TraceLevel,
	}
	for level, expected := range cases {
		assert.Equal(t, expected, GetLevel(level), "level: %s", level)
	}
}

func TestSentryHook_levels(t *testing.T) {
	hook := NewSentryHook([]logrus.Level{logrus.ErrorLevel, logrus.FatalLevel})
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel}, hook.Levels())
}
