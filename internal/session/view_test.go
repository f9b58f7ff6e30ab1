package session_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/mocks"
	"github.com/feral-file/ff-social/internal/session"
)

func upper(_ context.Context, in string) (string, error) {
	return strings.ToUpper(in), nil
}

func TestView_LoadCommits(t *testing.T) {
	v := session.NewView(t.Context(), "test", adapter.NewClock(), upper)
	defer v.Close()

	assert.False(t, v.Current().Loaded)

	res, err := v.Load("a")
	require.NoError(t, err)
	assert.Equal(t, "A", res.Data)
	assert.Equal(t, res, v.Current())
	assert.True(t, v.Current().Loaded)
	assert.False(t, v.Loading())

	in, ok := v.Input()
	assert.True(t, ok)
	assert.Equal(t, "a", in)
}

func TestView_SupersededLoadIsDropped(t *testing.T) {
	aStarted := make(chan struct{})
	releaseA := make(chan struct{})
	var aCtxErr error

	v := session.NewView(t.Context(), "test", adapter.NewClock(), func(ctx context.Context, in string) (string, error) {
		if in == "a" {
			close(aStarted)
			<-releaseA
			aCtxErr = ctx.Err()
			return "A", nil
		}
		return strings.ToUpper(in), nil
	})
	defer v.Close()

	var changes []string
	v.OnChange(func(r session.Result[string]) {
		changes = append(changes, r.Data)
	})

	first := make(chan error, 1)
	go func() {
		_, err := v.Load("a")
		first <- err
	}()
	<-aStarted

	res, err := v.Load("b")
	require.NoError(t, err)
	assert.Equal(t, "B", res.Data)

	close(releaseA)
	select {
	case err := <-first:
		assert.ErrorIs(t, err, session.ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("first load did not return")
	}

	assert.ErrorIs(t, aCtxErr, context.Canceled)
	assert.Equal(t, "B", v.Current().Data)
	assert.Equal(t, []string{"B"}, changes)
}

func TestView_Refresh(t *testing.T) {
	var fail atomic.Bool
	calls := 0
	v := session.NewView(t.Context(), "test", adapter.NewClock(), func(_ context.Context, in string) (string, error) {
		calls++
		if fail.Load() {
			return "", errors.New("store unavailable")
		}
		return strings.Repeat(in, calls), nil
	})
	defer v.Close()

	_, err := v.Refresh()
	assert.ErrorIs(t, err, session.ErrNoInput)

	_, err = v.Load("x")
	require.NoError(t, err)

	res, err := v.Refresh()
	require.NoError(t, err)
	assert.Equal(t, "xx", res.Data)

	fail.Store(true)
	res, err = v.Refresh()
	assert.Error(t, err)
	assert.Equal(t, "xx", res.Data)
	assert.Equal(t, err, v.Current().Err)
}

func TestView_FailedLoadWithNewInputShowsNoData(t *testing.T) {
	v := session.NewView(t.Context(), "test", adapter.NewClock(), func(_ context.Context, in string) (string, error) {
		if in == "bad" {
			return "", errors.New("boom")
		}
		return in, nil
	})
	defer v.Close()

	_, err := v.Load("good")
	require.NoError(t, err)

	res, err := v.Load("bad")
	assert.Error(t, err)
	assert.Empty(t, res.Data)
	assert.True(t, res.Loaded)
}

func TestView_OnChangeUnsubscribe(t *testing.T) {
	v := session.NewView(t.Context(), "test", adapter.NewClock(), upper)
	defer v.Close()

	var seen []string
	unsubscribe := v.OnChange(func(r session.Result[string]) {
		seen = append(seen, r.Data)
	})

	_, _ = v.Load("a")
	unsubscribe()
	_, _ = v.Load("b")

	assert.Equal(t, []string{"A"}, seen)
}

func TestView_CloseCancelsInFlightLoad(t *testing.T) {
	started := make(chan struct{})
	v := session.NewView(t.Context(), "test", adapter.NewClock(), func(ctx context.Context, _ string) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})

	done := make(chan error, 1)
	go func() {
		_, err := v.Load("a")
		done <- err
	}()
	<-started

	v.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, session.ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("load was not cancelled")
	}

	_, err := v.Load("b")
	assert.ErrorIs(t, err, session.ErrClosed)
	assert.ErrorIs(t, v.StartAutoRefresh(time.Second), session.ErrClosed)
	v.Close()
}

func TestView_AutoRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	ticker := mocks.NewMockTicker(ctrl)
	ticks := make(chan time.Time)

	clock.EXPECT().Now().Return(time.Unix(0, 0)).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).Return(time.Millisecond).AnyTimes()
	clock.EXPECT().NewTicker(20 * time.Second).Return(ticker)
	ticker.EXPECT().C().DoAndReturn(func() <-chan time.Time { return ticks }).AnyTimes()
	ticker.EXPECT().Stop().Times(1)

	var loads atomic.Int32
	v := session.NewView(t.Context(), "test", clock, func(_ context.Context, in string) (string, error) {
		loads.Add(1)
		return in, nil
	})

	committed := make(chan struct{}, 4)
	v.OnChange(func(session.Result[string]) { committed <- struct{}{} })

	require.NoError(t, v.StartAutoRefresh(20*time.Second))
	assert.Error(t, v.StartAutoRefresh(20*time.Second))

	// a tick before the first load has nothing to refresh
	ticks <- time.Unix(20, 0)

	_, err := v.Load("feed")
	require.NoError(t, err)
	<-committed

	ticks <- time.Unix(40, 0)
	select {
	case <-committed:
	case <-time.After(5 * time.Second):
		t.Fatal("tick did not refresh the view")
	}
	assert.Equal(t, int32(2), loads.Load())

	v.Close()
}

func TestView_StartAutoRefreshRejectsBadInterval(t *testing.T) {
	v := session.NewView(t.Context(), "test", adapter.NewClock(), upper)
	defer v.Close()
	assert.Error(t, v.StartAutoRefresh(0))
}
