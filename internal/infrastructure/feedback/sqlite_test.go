package feedback

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listwise/backend/internal/domain"
)

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "feedback.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath, 3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordFeedback(ctx, correction("chiken", "chicken_breast")))
	}
	alias, ok := store.LookupAlias("chiken")
	require.True(t, ok)
	assert.Equal(t, "chicken_breast", alias.ProductID)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath, 3)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	alias, ok = reopened.LookupAlias("chiken")
	require.True(t, ok, "alias lost across reopen")
	assert.Equal(t, "chicken_breast", alias.ProductID)
	assert.InDelta(t, domain.AliasBirthWeight, alias.Weight, 1e-9)
	assert.Equal(t, 3, alias.SupportingCount)
	assert.False(t, alias.UpdatedAt.IsZero())
}

func TestSQLiteStore_TallyPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "feedback.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath, 3)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		require.NoError(t, store.RecordFeedback(ctx, correction("oje", "juice_orange")))
	}
	_, ok := store.LookupAlias("oje")
	require.False(t, ok, "two corrections must not promote")
	require.NoError(t, store.Close())

	// The third correction after a restart completes the tally
	reopened, err := NewSQLiteStore(dbPath, 3)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	require.NoError(t, reopened.RecordFeedback(ctx, correction("oje", "juice_orange")))
	alias, ok := reopened.LookupAlias("oje")
	require.True(t, ok, "tally forgotten across reopen")
	assert.Equal(t, "juice_orange", alias.ProductID)
	assert.Equal(t, 3, alias.SupportingCount)
}

func TestSQLiteStore_MirrorsMemoryLifecycle(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "feedback.db")
	ctx := context.Background()

	sqlStore, err := NewSQLiteStore(dbPath, 3)
	require.NoError(t, err)
	defer func() { _ = sqlStore.Close() }()
	memStore := NewMemoryStore(3)

	feed := func(rec *domain.FeedbackRecord) {
		require.NoError(t, sqlStore.RecordFeedback(ctx, rec))
		require.NoError(t, memStore.RecordFeedback(ctx, rec))
	}

	for i := 0; i < 3; i++ {
		feed(correction("chiken", "chicken_breast"))
	}
	feed(acceptance("chiken", "chicken_breast"))
	feed(correction("oje", "juice_orange"))
	feed(correction("oje", "juice_orange"))
	feed(rejection("chiken", "chicken_breast"))
	for i := 0; i < 3; i++ {
		feed(correction("grape pop", "juice_grape"))
	}

	sqlAliases, err := sqlStore.ListAliases(ctx)
	require.NoError(t, err)
	memAliases, err := memStore.ListAliases(ctx)
	require.NoError(t, err)

	require.Equal(t, len(memAliases), len(sqlAliases))
	for i := range memAliases {
		assert.Equal(t, memAliases[i].Term, sqlAliases[i].Term)
		assert.Equal(t, memAliases[i].ProductID, sqlAliases[i].ProductID)
		assert.Equal(t, memAliases[i].SupportingCount, sqlAliases[i].SupportingCount)
		assert.InDelta(t, memAliases[i].Weight, sqlAliases[i].Weight, 1e-9)
	}
}

func TestSQLiteStore_PruneRemovesRow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "feedback.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath, 3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordFeedback(ctx, correction("chiken", "chicken_breast")))
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, store.RecordFeedback(ctx, rejection("chiken", "chicken_breast")))
	}
	_, ok := store.LookupAlias("chiken")
	require.False(t, ok, "alias should be pruned")
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath, 3)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	_, ok = reopened.LookupAlias("chiken")
	assert.False(t, ok, "pruned alias resurrected across reopen")
}

func TestSQLiteStore_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStore("", 3)
	assert.ErrorIs(t, err, domain.ErrFeedbackStore)
}

func TestSQLiteStore_WriteFailureIsStoreError(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "feedback.db")

	store, err := NewSQLiteStore(dbPath, 3)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.RecordFeedback(context.Background(), correction("chiken", "chicken_breast"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFeedbackStore)

	_, ok := store.LookupAlias("chiken")
	assert.False(t, ok, "failed write must not touch the mirror")
}
