package logging_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleep-tracker/internal/logging"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { _ = logging.SetLevel("info") })

	require.NoError(t, logging.SetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, logging.New().GetLevel())

	assert.Error(t, logging.SetLevel("loud"))
	assert.Equal(t, logrus.DebugLevel, logging.New().GetLevel())
}
