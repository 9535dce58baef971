package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New("warn", &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("dropped")
	logger.WithField("key", "posts").Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
	assert.Contains(t, buf.String(), "key=posts")
}

func TestNew_InvalidLevel(t *testing.T) {
	logger, err := New("loud", &bytes.Buffer{})

	require.Error(t, err)
	assert.Nil(t, logger)
}

func TestWithSpinner(t *testing.T) {
	called := false
	err := WithSpinner("Loading", func() error {
		called = true

		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)

	expected := errors.New("boom")
	assert.ErrorIs(t, WithSpinner("Loading", func() error { return expected }), expected)
}
