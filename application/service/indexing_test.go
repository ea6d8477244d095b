package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/domain/index"
)

func TestIndexing_IndexPending(t *testing.T) {
	env := newTestEnv(t, 2)
	ctx := context.Background()

	docA := env.createDocument(t, "a.pdf")
	docB := env.createDocument(t, "b.pdf")

	require.NoError(t, env.indexing.IndexPending(ctx))
	assert.ElementsMatch(t, []int64{docA.ID(), docB.ID()}, env.indexer.indexed())

	for _, id := range []int64{docA.ID(), docB.ID()} {
		doc, err := env.docs.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, doc.Indexed())
	}

	// Everything indexed; the next sweep does nothing.
	require.NoError(t, env.indexing.IndexPending(ctx))
	assert.Len(t, env.indexer.indexed(), 2)
}

func TestIndexing_FailureIsolatedPerDocument(t *testing.T) {
	env := newTestEnv(t, 1)
	ctx := context.Background()

	docA := env.createDocument(t, "a.pdf")
	docB := env.createDocument(t, "b.pdf")
	env.indexer.indexErrs[docA.ID()] = index.ErrIndexingFailed

	err := env.indexing.IndexPending(ctx)
	require.ErrorIs(t, err, index.ErrIndexingFailed)

	// The failing document stays unindexed, the other one went through.
	a, err2 := env.docs.Get(ctx, docA.ID())
	require.NoError(t, err2)
	assert.False(t, a.Indexed())

	b, err2 := env.docs.Get(ctx, docB.ID())
	require.NoError(t, err2)
	assert.True(t, b.Indexed())

	// A later sweep retries only the failed one.
	delete(env.indexer.indexErrs, docA.ID())
	require.NoError(t, env.indexing.IndexPending(ctx))
	a, err2 = env.docs.Get(ctx, docA.ID())
	require.NoError(t, err2)
	assert.True(t, a.Indexed())
}

func TestIndexing_ConcurrentSweepsIndexOnce(t *testing.T) {
	env := newTestEnv(t, 1)
	ctx := context.Background()

	doc := env.createDocument(t, "a.pdf")

	env.indexer.started = make(chan int64, 1)
	env.indexer.proceed = make(chan struct{})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = env.indexing.IndexPending(ctx)
	}()

	// Wait until the first sweep is inside Index, then run a second sweep:
	// it must skip the in-flight document rather than index it again.
	<-env.indexer.started
	require.NoError(t, env.indexing.IndexPending(ctx))

	close(env.indexer.proceed)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, []int64{doc.ID()}, env.indexer.indexed())

	got, err := env.docs.Get(ctx, doc.ID())
	require.NoError(t, err)
	assert.True(t, got.Indexed())
}
