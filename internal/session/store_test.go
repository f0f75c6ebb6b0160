package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(ttl, idle time.Duration) (*Store, *time.Time) {
	store := NewStore(ttl, idle)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestStoreGetPut(t *testing.T) {
	t.Run("missing key is absent", func(t *testing.T) {
		store, _ := newTestStore(30*time.Minute, 30*time.Minute)
		_, ok := store.Get("distri")
		assert.False(t, ok)
	})

	t.Run("put then get returns the session", func(t *testing.T) {
		store, _ := newTestStore(30*time.Minute, 30*time.Minute)
		store.Put("distri", "JSESSIONID=abc123")

		sess, ok := store.Get("distri")
		require.True(t, ok)
		assert.Equal(t, "distri", sess.Key)
		assert.Equal(t, "JSESSIONID=abc123", sess.Token)
	})

	t.Run("put replaces the previous session for the same key", func(t *testing.T) {
		store, _ := newTestStore(30*time.Minute, 30*time.Minute)
		store.Put("distri", "JSESSIONID=old")
		store.Put("distri", "JSESSIONID=new")

		sess, ok := store.Get("distri")
		require.True(t, ok)
		assert.Equal(t, "JSESSIONID=new", sess.Token)
		assert.Equal(t, 1, store.Count())
	})

	t.Run("returned session is a copy", func(t *testing.T) {
		store, _ := newTestStore(30*time.Minute, 30*time.Minute)
		store.Put("distri", "JSESSIONID=abc")

		sess, ok := store.Get("distri")
		require.True(t, ok)
		sess.Token = "tampered"

		again, ok := store.Get("distri")
		require.True(t, ok)
		assert.Equal(t, "JSESSIONID=abc", again.Token)
	})
}

func TestStoreFreshness(t *testing.T) {
	t.Run("get after TTL expiry is absent and evicts", func(t *testing.T) {
		store, now := newTestStore(30*time.Minute, time.Hour)
		store.Put("distri", "JSESSIONID=abc")

		*now = now.Add(31 * time.Minute)

		_, ok := store.Get("distri")
		assert.False(t, ok)
		assert.Equal(t, 0, store.Count())
	})

	t.Run("get past the idle limit is absent and evicts", func(t *testing.T) {
		store, now := newTestStore(2*time.Hour, 30*time.Minute)
		store.Put("distri", "JSESSIONID=abc")

		*now = now.Add(31 * time.Minute)

		_, ok := store.Get("distri")
		assert.False(t, ok)
		assert.Equal(t, 0, store.Count())
	})

	t.Run("touch keeps an idle session alive", func(t *testing.T) {
		store, now := newTestStore(2*time.Hour, 30*time.Minute)
		store.Put("distri", "JSESSIONID=abc")

		*now = now.Add(25 * time.Minute)
		store.Touch("distri")
		*now = now.Add(25 * time.Minute)

		_, ok := store.Get("distri")
		assert.True(t, ok)
	})

	t.Run("touch does not extend the absolute TTL", func(t *testing.T) {
		store, now := newTestStore(30*time.Minute, time.Hour)
		store.Put("distri", "JSESSIONID=abc")

		*now = now.Add(29 * time.Minute)
		store.Touch("distri")
		*now = now.Add(2 * time.Minute)

		_, ok := store.Get("distri")
		assert.False(t, ok)
	})
}

func TestStoreSweep(t *testing.T) {
	store, now := newTestStore(30*time.Minute, 30*time.Minute)
	store.Put("alive", "JSESSIONID=a")

	*now = now.Add(20 * time.Minute)
	store.Touch("alive")
	store.Put("fresh", "JSESSIONID=b")

	*now = now.Add(15 * time.Minute)

	// "alive" is past TTL (35m old), "fresh" is 15m old
	removed := store.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Count())

	_, ok := store.Get("fresh")
	assert.True(t, ok)
}

func TestStoreRemove(t *testing.T) {
	store, _ := newTestStore(30*time.Minute, 30*time.Minute)
	store.Put("distri", "JSESSIONID=abc")

	store.Remove("distri")
	_, ok := store.Get("distri")
	assert.False(t, ok)

	// removing again is a no-op
	store.Remove("distri")
}
