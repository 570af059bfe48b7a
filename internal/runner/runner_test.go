// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/barline/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testShell = "/bin/sh"

type sent struct {
	message string
	at      time.Time
}

// recordingSender collects updates and signals every send on notify.
type recordingSender struct {
	mu     sync.Mutex
	sent   []sent
	closed bool
	notify chan struct{}
}

func newRecordingSender() *recordingSender {
	return &recordingSender{notify: make(chan struct{}, 1024)}
}

func (s *recordingSender) Send(message string) bool {
	s.mu.Lock()
	s.sent = append(s.sent, sent{message: message, at: time.Now()})
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}

	return true
}

func (s *recordingSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
}

func (s *recordingSender) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.sent))
	for i, m := range s.sent {
		out[i] = m.message
	}

	return out
}

func (s *recordingSender) times() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]time.Time, len(s.sent))
	for i, m := range s.sent {
		out[i] = m.at
	}

	return out
}

func (s *recordingSender) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// waitFor blocks until at least n updates have been sent.
func (s *recordingSender) waitFor(t *testing.T, n int) {
	t.Helper()

	deadline := time.After(10 * time.Second)

	for len(s.messages()) < n {
		select {
		case <-s.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d updates, got %v", n, s.messages())
		}
	}
}

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("runner tests use /bin/sh")
	}
}

func spec(name, command string, policy item.Policy) item.Spec {
	return item.Spec{
		Name:    name,
		Command: command,
		Shell:   testShell,
		Policy:  policy,
	}
}

// runAsync starts r and returns a channel that receives its result.
func runAsync(ctx context.Context, r *Runner) <-chan error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- r.Run(ctx)
	}()

	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()

	select {
	case err := <-errCh:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not return")
		return nil
	}
}

func TestRun_StaticEmitsOnce(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	s := newRecordingSender()
	r := New(spec("clock", "printf '12:00\\n'", item.StaticPolicy()), s)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"12:00"}, s.messages())
	assert.True(t, s.isClosed(), "sender is closed when a static runner finishes")
	assert.Equal(t, int64(1), r.Runs())
	assert.Equal(t, "clock", r.Spec().Name)
}

func TestRun_StaticTrimsOnlyLineEndings(t *testing.T) {
	skipOnWindows(t)

	s := newRecordingSender()
	r := New(spec("load", "printf ' 0.42 \\r\\n\\n'", item.StaticPolicy()), s)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{" 0.42 "}, s.messages())
}

func TestRun_StaticIgnoresExitStatusAndStderr(t *testing.T) {
	skipOnWindows(t)

	s := newRecordingSender()
	r := New(spec("battery", "echo 87%; echo oops >&2; exit 3", item.StaticPolicy()), s)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"87%"}, s.messages())
}

func TestRun_StaticEmptyOutput(t *testing.T) {
	skipOnWindows(t)

	s := newRecordingSender()
	r := New(spec("empty", "true", item.StaticPolicy()), s)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{""}, s.messages())
}

func TestRun_SpawnFailureIsFatal(t *testing.T) {
	skipOnWindows(t)

	policies := []item.Policy{item.StaticPolicy(), item.PeriodicPolicy(time.Millisecond), item.StreamingPolicy()}

	for _, p := range policies {
		t.Run(p.Kind.String(), func(t *testing.T) {
			s := newRecordingSender()
			sp := spec("broken", "echo hi", p)
			sp.Shell = "/nonexistent/shell"

			err := New(sp, s).Run(context.Background())
			require.ErrorIs(t, err, ErrSpawn)
			assert.Contains(t, err.Error(), `"broken"`)
			assert.Empty(t, s.messages())
			assert.True(t, s.isClosed())
		})
	}
}

func TestRun_UnknownPolicy(t *testing.T) {
	s := newRecordingSender()
	err := New(spec("odd", "true", item.Policy{Kind: item.Kind(9)}), s).Run(context.Background())
	require.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestRun_OutputIsBounded(t *testing.T) {
	skipOnWindows(t)

	s := newRecordingSender()
	r := New(spec("big", "printf 'abcdefghij'", item.StaticPolicy()), s, WithMaxOutput(4))

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"abcd"}, s.messages())
}

func TestRun_PeriodicHonoursInterval(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	const interval = 60 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newRecordingSender()
	r := New(spec("tick", "echo tick", item.PeriodicPolicy(interval)), s)
	errCh := runAsync(ctx, r)

	s.waitFor(t, 3)
	cancel()
	require.NoError(t, waitErr(t, errCh))

	times := s.times()
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), interval, "runs %d and %d are too close", i-1, i)
	}

	for _, m := range s.messages() {
		assert.Equal(t, "tick", m)
	}

	// Each completed execution produced exactly one update; a run interrupted by
	// cancellation produces none.
	assert.LessOrEqual(t, int64(len(times)), r.Runs())
	assert.GreaterOrEqual(t, int64(len(times))+1, r.Runs())
	assert.True(t, s.isClosed())
}

func TestRun_PeriodicCancelKillsCommand(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	s := newRecordingSender()
	errCh := runAsync(ctx, New(spec("slow", "sleep 30; echo never", item.PeriodicPolicy(time.Second)), s))

	time.Sleep(50 * time.Millisecond)
	cancel()

	require.NoError(t, waitErr(t, errCh))
	assert.Empty(t, s.messages())
}

func TestRun_StreamingEmitsLinesAndRestarts(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newRecordingSender()
	r := New(spec("stream", "printf 'a\\nb\\r\\nc'", item.StreamingPolicy()), s, WithRestartDelay(5*time.Millisecond))
	errCh := runAsync(ctx, r)

	s.waitFor(t, 6)
	cancel()
	require.NoError(t, waitErr(t, errCh))

	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, s.messages()[:6])
	assert.GreaterOrEqual(t, r.Runs(), int64(2))
}

func TestRun_StreamingLineIsBounded(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newRecordingSender()
	r := New(spec("noisy", "head -c 100000 /dev/zero | tr '\\000' x; printf '\\nok\\n'", item.StreamingPolicy()), s,
		WithMaxOutput(16),
		WithRestartDelay(time.Second),
	)
	errCh := runAsync(ctx, r)

	s.waitFor(t, 2)
	cancel()
	require.NoError(t, waitErr(t, errCh))

	assert.Equal(t, []string{strings.Repeat("x", 16), "ok"}, s.messages()[:2])
}

func TestRun_StreamingRestartPause(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	const pause = 80 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newRecordingSender()
	errCh := runAsync(ctx, New(spec("flap", "echo up", item.StreamingPolicy()), s, WithRestartDelay(pause)))

	s.waitFor(t, 3)
	cancel()
	require.NoError(t, waitErr(t, errCh))

	times := s.times()
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), pause)
	}
}

func TestRun_StreamingCancelKillsLongRunningCommand(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	s := newRecordingSender()
	errCh := runAsync(ctx, New(spec("tail", "echo first; sleep 30 | cat", item.StreamingPolicy()), s))

	s.waitFor(t, 1)
	cancel()

	require.NoError(t, waitErr(t, errCh))
	assert.Equal(t, []string{"first"}, s.messages())
}
