package sched

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatherFailsFastWithoutCancellingSiblings(t *testing.T) {
	s, rec := newTestScheduler(t, DefaultConfig())
	boom := errors.New("boom")

	var slowA, failing, slowC *Handle
	_, err := s.RunUntilComplete(bg, func(co *Co) (any, error) {
		slowA = co.Spawn(sleeper(5*time.Second, "a"), WithName("a"))
		failing = co.Spawn(func(co *Co) (any, error) {
			if err := co.Wait(0); err != nil {
				return nil, err
			}
			return nil, boom
		}, WithName("b"))
		slowC = co.Spawn(sleeper(5*time.Second, "c"), WithName("c"))
		return co.Join(co.Gather(slowA, failing, slowC))
	})

	require.ErrorIs(t, err, boom)
	var tf *TaskFailure
	require.ErrorAs(t, err, &tf)
	assert.Equal(t, failing.ID(), tf.Task)
	assert.Equal(t, time.Duration(0), s.Now())
	assert.Equal(t, StateWaiting, slowA.State())
	assert.Equal(t, StateWaiting, slowC.State())

	v, err := s.Await(bg, slowA)
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	v, err = s.Await(bg, slowC)
	require.NoError(t, err)
	assert.Equal(t, "c", v)

	assert.Equal(t, []effect{
		{at: 5 * time.Second, task: slowA.ID(), msg: "a"},
		{at: 5 * time.Second, task: slowC.ID(), msg: "c"},
	}, rec.effects())
	assert.Equal(t, 5*time.Second, s.Now())
}

func TestGatherKeepsInputOrder(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())

	v, err := s.RunUntilComplete(bg, func(co *Co) (any, error) {
		slow := co.Spawn(sleeper(3*time.Second, "slow"))
		fast := co.Spawn(sleeper(time.Second, "fast"))
		done := co.Spawn(func(co *Co) (any, error) { return "done", nil })
		return co.Join(co.Gather(slow, fast, done, slow))
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"slow", "fast", "done", "slow"}, v)
}

func TestGatherEmpty(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())

	h := s.Gather()
	assert.Equal(t, "gather", h.Name())
	v, err := s.Await(bg, h)
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestGatherOfTerminalHandles(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())
	boom := errors.New("boom")

	ok := s.Spawn(func(co *Co) (any, error) { return 1, nil })
	bad := s.Spawn(func(co *Co) (any, error) { return nil, boom })
	_, err := s.Await(bg, bad)
	require.Error(t, err)
	require.True(t, ok.IsDone())

	_, err = s.Await(bg, s.Gather(ok, bad))
	assert.ErrorIs(t, err, boom)

	v, err := s.Await(bg, s.Gather(ok, ok))
	require.NoError(t, err)
	assert.Equal(t, []any{1, 1}, v)
}

func TestGatherSurfacesCancellation(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())

	var victim *Handle
	_, err := s.RunUntilComplete(bg, func(co *Co) (any, error) {
		victim = co.Spawn(sleeper(10*time.Second, nil))
		g := co.Gather(victim, co.Spawn(sleeper(time.Second, nil)))
		if err := co.Wait(2 * time.Second); err != nil {
			return nil, err
		}
		victim.Cancel()
		return co.Join(g)
	})
	require.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 2*time.Second, s.Now())
}

func TestCancelGatherLeavesChildrenRunning(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())

	child := s.Spawn(sleeper(time.Second, "child"))
	g := s.Gather(child)
	_, err := s.RunUntilComplete(bg, func(co *Co) (any, error) {
		return nil, co.Wait(0)
	})
	require.NoError(t, err)

	require.True(t, g.Cancel())
	v, err := s.Await(bg, child)
	require.NoError(t, err)
	assert.Equal(t, "child", v)
	_, err = g.Result()
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestGatherForeignHandle(t *testing.T) {
	s, _ := newTestScheduler(t, DefaultConfig())
	other, _ := newTestScheduler(t, DefaultConfig())

	_, err := s.Await(bg, s.Gather(other.Spawn(func(co *Co) (any, error) { return nil, nil })))
	assert.ErrorIs(t, err, ErrForeignHandle)
}
