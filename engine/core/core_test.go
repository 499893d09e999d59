package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		err         error
		recoverable bool
	}{
		{fmt.Errorf("%w: mesh `cube`", ErrResourceLoad), true},
		{fmt.Errorf("%w: handle 3/1", ErrResourceNotRegistered), true},
		{ErrSwapchainStale, true},
		{fmt.Errorf("%w: creating logical device: %w", ErrInitialization, ErrUnknown), false},
		{fmt.Errorf("waiting on frame 7: %w", ErrSynchronizationTimeout), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.recoverable, IsRecoverable(c.err), c.err.Error())
		assert.Equal(t, !c.recoverable, IsFatal(c.err), c.err.Error())
	}
	assert.False(t, IsFatal(nil))
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, lvl)

	lvl, err = ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, lvl)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)

	SetLogLevel(WarnLevel)
	assert.Equal(t, WarnLevel, GetLogLevel())
	SetLogLevel(DebugLevel)
}

func TestClock(t *testing.T) {
	now := time.Unix(100, 0)
	c := &Clock{now: func() time.Time { return now }}

	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	now = now.Add(1500 * time.Millisecond)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 61; i++ {
		m.Update(1.0 / 60.0)
	}
	assert.InDelta(t, 1000.0/60.0, m.FrameTime(), 1e-6)
	assert.InDelta(t, 60, m.FPS(), 1)
}

func TestEventsAndInput(t *testing.T) {
	require.True(t, EventSystemInitialize())
	defer EventSystemShutdown()
	require.NoError(t, InputInitialize())
	defer InputShutdown()

	var got []KeyCode
	EventRegister(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) {
		got = append(got, ctx.Data.(*KeyEvent).KeyCode)
	})

	require.NoError(t, InputProcessKey(KEY_ESCAPE, true))
	// no state change, no event
	require.NoError(t, InputProcessKey(KEY_ESCAPE, true))
	assert.Equal(t, []KeyCode{KEY_ESCAPE}, got)
	assert.True(t, InputIsKeyDown(KEY_ESCAPE))
	assert.False(t, InputWasKeyDown(KEY_ESCAPE))

	require.NoError(t, InputUpdate(0))
	assert.True(t, InputWasKeyDown(KEY_ESCAPE))

	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.True(t, EventUnregisterAll(EVENT_CODE_KEY_PRESSED))
	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_KEY_PRESSED}))
}

func TestIdentifierShort(t *testing.T) {
	id := IdentifierAquireNewID()
	assert.Len(t, IdentifierShort(id), 8)
	assert.NotEqual(t, id, IdentifierAquireNewID())
}
