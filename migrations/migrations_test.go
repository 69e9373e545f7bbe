package migrations

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(files, ".")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	r, _, err := src.ReadUp(first)
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(body), "uq_votes_voter_category (voter_id, category_id)")
	assert.Contains(t, string(body), "ON DELETE CASCADE")
}

type fakeLock struct {
	attempts  int
	grantAt   int
	err       error
	refreshes atomic.Int32
	released  atomic.Bool
}

func (f *fakeLock) AcquireLock(name string, timeout time.Duration) (bool, error) {
	f.attempts++
	if f.err != nil {
		return false, f.err
	}
	return f.attempts >= f.grantAt, nil
}

func (f *fakeLock) RefreshLock(name string, timeout time.Duration) (bool, error) {
	f.refreshes.Add(1)
	return true, nil
}

func (f *fakeLock) ReleaseLock(name string) error {
	f.released.Store(true)
	return nil
}

func (f *fakeLock) ReleaseAllLocks() {}
func (f *fakeLock) Close() error     { return nil }

func TestAcquire(t *testing.T) {
	t.Run("granted after retry", func(t *testing.T) {
		l := &fakeLock{grantAt: 2}
		require.NoError(t, acquire(l, 5*time.Second))
		assert.Equal(t, 2, l.attempts)
	})

	t.Run("lock error", func(t *testing.T) {
		l := &fakeLock{err: errors.New("etcd down")}
		assert.Error(t, acquire(l, time.Second))
	})

	t.Run("timeout", func(t *testing.T) {
		l := &fakeLock{grantAt: 1000}
		assert.Error(t, acquire(l, -time.Second))
	})
}

func TestWithLock(t *testing.T) {
	t.Run("refreshes while running", func(t *testing.T) {
		l := &fakeLock{grantAt: 1}
		err := withLock(l, 40*time.Millisecond, slog.Default(), func() error {
			time.Sleep(150 * time.Millisecond)
			return nil
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, l.refreshes.Load(), int32(2))
		assert.True(t, l.released.Load())
	})

	t.Run("releases on failure", func(t *testing.T) {
		l := &fakeLock{grantAt: 1}
		boom := errors.New("dirty database")
		err := withLock(l, time.Minute, slog.Default(), func() error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.True(t, l.released.Load())
		assert.Zero(t, l.refreshes.Load())
	})

	t.Run("no refresh after return", func(t *testing.T) {
		l := &fakeLock{grantAt: 1}
		require.NoError(t, withLock(l, 20*time.Millisecond, slog.Default(), func() error { return nil }))
		n := l.refreshes.Load()
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, n, l.refreshes.Load())
	})

	t.Run("nil lock runs directly", func(t *testing.T) {
		called := false
		require.NoError(t, withLock(nil, time.Second, slog.Default(), func() error {
			called = true
			return nil
		}))
		assert.True(t, called)
	})

	t.Run("acquire failure skips fn", func(t *testing.T) {
		l := &fakeLock{err: errors.New("etcd down")}
		err := withLock(l, time.Second, slog.Default(), func() error {
			t.Fatal("fn must not run without the lock")
			return nil
		})
		assert.Error(t, err)
		assert.False(t, l.released.Load())
	})
}
