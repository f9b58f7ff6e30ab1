package mutation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-social/internal/domain"
)

// fakeFinder reveals the token after a number of scans
type fakeFinder struct {
	visibleAfter int
	err          error
	scans        int
	lastKind     domain.RelationshipKind
}

func (f *fakeFinder) find(kind domain.RelationshipKind) (string, bool, error) {
	f.scans++
	f.lastKind = kind
	if f.err != nil {
		return "", false, f.err
	}
	if f.visibleAfter > 0 && f.scans >= f.visibleAfter {
		return "0xtoken", true, nil
	}
	return "", false, nil
}

func (f *fakeFinder) FindFollowToken(_ context.Context, _, _ string) (string, bool, error) {
	return f.find(domain.RelationshipFollow)
}

func (f *fakeFinder) FindLikeToken(_ context.Context, _, _ string) (string, bool, error) {
	return f.find(domain.RelationshipLike)
}

func TestDiscover_FoundAfterRetries(t *testing.T) {
	finder := &fakeFinder{visibleAfter: 3}
	d := NewDiscoverer(DiscoveryConfig{PollInterval: 0, MaxAttempts: 5}, finder)

	id, ok, err := d.Discover(t.Context(), domain.RelationshipLike, "0xme", "0xpost")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xtoken", id)
	assert.Equal(t, 3, finder.scans)
	assert.Equal(t, domain.RelationshipLike, finder.lastKind)
}

func TestDiscover_GivesUpWithoutError(t *testing.T) {
	finder := &fakeFinder{}
	d := NewDiscoverer(DiscoveryConfig{PollInterval: time.Millisecond, MaxAttempts: 4}, finder)

	id, ok, err := d.Discover(t.Context(), domain.RelationshipFollow, "0xme", "0xthem")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.Equal(t, 4, finder.scans)
}

func TestDiscover_StoreErrorStopsPolling(t *testing.T) {
	boom := errors.New("boom")
	finder := &fakeFinder{err: boom}
	d := NewDiscoverer(DiscoveryConfig{PollInterval: 0, MaxAttempts: 10}, finder)

	_, ok, err := d.Discover(t.Context(), domain.RelationshipFollow, "0xme", "0xthem")
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
	assert.Equal(t, 1, finder.scans)
}

func TestDiscover_Cancelled(t *testing.T) {
	finder := &fakeFinder{}
	d := NewDiscoverer(DiscoveryConfig{PollInterval: time.Hour, MaxAttempts: 20}, finder)

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, _, err := d.Discover(ctx, domain.RelationshipFollow, "0xme", "0xthem")
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("discovery did not stop after cancellation")
	}
	assert.Equal(t, 1, finder.scans)
}

func TestDiscover_MissingInputs(t *testing.T) {
	finder := &fakeFinder{visibleAfter: 1}
	d := NewDiscoverer(DefaultDiscoveryConfig(), finder)

	_, ok, err := d.Discover(t.Context(), domain.RelationshipFollow, "", "0xthem")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, finder.scans)

	_, _, err = d.Discover(t.Context(), "block", "0xme", "0xthem")
	assert.Error(t, err)
}
