package cmd

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABC-KANG/abc-res-link/lib/testutils"
)

func TestSetupLoggerVerbose(t *testing.T) {
	t.Parallel()
	logger := logrus.New()
	hook := testutils.NewLogHook(logrus.DebugLevel)
	logger.AddHook(hook)

	require.NoError(t, setupLogger(logger, true, ""))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.Debug("link starting")
	assert.True(t, testutils.LogContains(hook.Drain(), logrus.DebugLevel, "link starting"))
}

func TestSetupLoggerFormats(t *testing.T) {
	t.Parallel()
	logger := logrus.New()

	require.NoError(t, setupLogger(logger, false, "json"))
	_, ok := logger.Formatter.(*structuredJSONFormatter)
	assert.True(t, ok)

	require.NoError(t, setupLogger(logger, false, "text"))
	_, ok = logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)

	assert.Error(t, setupLogger(logger, false, "bogus"))
}
