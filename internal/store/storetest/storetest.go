// Package storetest checks a store.Backend against the behaviour every
// backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfoliotracker/internal/store"
)

type doc struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Symbol    string     `json:"symbol"`
	Shares    float64    `json:"shares"`
	Triggered bool       `json:"triggered"`
	At        *time.Time `json:"at"`
}

// Run exercises the backend returned by open. Each subtest gets a fresh one.
func Run(t *testing.T, open func(t *testing.T) store.Backend) {
	ctx := context.Background()
	newColl := func(t *testing.T) *store.Collection[doc] {
		return store.NewCollection(open(t), "docs", func(d doc) string { return d.ID })
	}
	seed := func(t *testing.T, c *store.Collection[doc]) {
		for _, d := range []doc{
			{ID: "1", OwnerID: "alice", Symbol: "AAPL", Shares: 10},
			{ID: "2", OwnerID: "alice", Symbol: "MSFT", Shares: 5, Triggered: true},
			{ID: "3", OwnerID: "bob", Symbol: "AAPL", Shares: 1},
		} {
			require.NoError(t, c.Insert(ctx, d))
		}
	}

	t.Run("FindByConjunction", func(t *testing.T) {
		c := newColl(t)
		seed(t, c)

		all, err := c.Find(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, "1", all[0].ID, "insertion order")

		got, err := c.Find(ctx, store.Filter{"owner_id": "alice", "symbol": "AAPL"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, 10.0, got[0].Shares)

		got, err = c.Find(ctx, store.Filter{"triggered": true})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "2", got[0].ID)

		got, err = c.Find(ctx, store.Filter{"triggered": false, "owner_id": "alice"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "1", got[0].ID)

		n, err := c.Count(ctx, store.Filter{"shares": 5})
		require.NoError(t, err)
		require.Equal(t, 1, n)

		n, err = c.Count(ctx, store.Filter{"at": nil})
		require.NoError(t, err)
		require.Equal(t, 3, n)
	})

	t.Run("FindOneNotFound", func(t *testing.T) {
		c := newColl(t)
		seed(t, c)
		_, err := c.FindOne(ctx, store.Filter{"owner_id": "bob", "id": "1"})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("DuplicateID", func(t *testing.T) {
		c := newColl(t)
		seed(t, c)
		err := c.Insert(ctx, doc{ID: "1", OwnerID: "carol"})
		require.True(t, errors.Is(err, store.ErrDuplicate), "got %v", err)
	})

	t.Run("UpdateMergesFields", func(t *testing.T) {
		c := newColl(t)
		seed(t, c)
		at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, c.Update(ctx, store.Filter{"id": "1", "owner_id": "alice"}, map[string]any{
			"shares": 12.5, "triggered": true, "at": at,
		}))
		got, err := c.FindOne(ctx, store.Filter{"id": "1"})
		require.NoError(t, err)
		require.Equal(t, 12.5, got.Shares)
		require.Equal(t, "AAPL", got.Symbol, "untouched fields survive")
		require.True(t, got.Triggered)
		require.NotNil(t, got.At)
		require.True(t, at.Equal(*got.At))

		require.NoError(t, c.Update(ctx, store.Filter{"id": "1"}, map[string]any{"at": nil, "triggered": false}))
		got, err = c.FindOne(ctx, store.Filter{"id": "1"})
		require.NoError(t, err)
		require.Nil(t, got.At)
		require.False(t, got.Triggered)

		err = c.Update(ctx, store.Filter{"id": "1", "owner_id": "bob"}, map[string]any{"shares": 0})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		c := newColl(t)
		seed(t, c)
		n, err := c.Delete(ctx, store.Filter{"owner_id": "alice"})
		require.NoError(t, err)
		require.Equal(t, 2, n)
		n, err = c.Delete(ctx, store.Filter{"owner_id": "alice"})
		require.NoError(t, err)
		require.Zero(t, n)
		left, err := c.Find(ctx, nil)
		require.NoError(t, err)
		require.Len(t, left, 1)
	})

	t.Run("RejectsBadFieldNames", func(t *testing.T) {
		c := newColl(t)
		_, err := c.Find(ctx, store.Filter{"x') OR 1=1 --": "a"})
		require.Error(t, err)
		_, err = c.Find(ctx, store.Filter{"symbol": []string{"a"}})
		require.Error(t, err)
	})
}
