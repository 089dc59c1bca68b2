package scanner

import (
	"context"
	"io"
	"strings"
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitFor(t *testing.T) {
	tests := []struct {
		code  evdev.EvCode
		digit byte
		ok    bool
	}{
		{evdev.KEY_0, '0', true},
		{evdev.KEY_9, '9', true},
		{evdev.KEY_KP5, '5', true},
		{evdev.KEY_A, 0, false},
		{evdev.KEY_ENTER, 0, false},
	}
	for _, tt := range tests {
		d, ok := digitFor(tt.code)
		assert.Equal(t, tt.ok, ok)
		if tt.ok {
			assert.Equal(t, tt.digit, d)
		}
	}
}

func TestIsEndOfScan(t *testing.T) {
	assert.True(t, isEndOfScan(evdev.KEY_ENTER))
	assert.True(t, isEndOfScan(evdev.KEY_KPENTER))
	assert.False(t, isEndOfScan(evdev.KEY_0))
}

func TestStdinSource(t *testing.T) {
	src := NewStdinSource(strings.NewReader("0123456789012\n\n   \n4009900484510\n"))
	defer src.Close()

	code, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0123456789012", code)

	// Blank lines are skipped, not delivered as empty scans.
	code, err = src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4009900484510", code)

	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestStdinSourceHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewStdinSource(strings.NewReader("0123456789012\n"))
	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
