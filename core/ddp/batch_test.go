package ddp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resale-pricing/core/ddp"
)

func batchItems() []ddp.BatchItem {
	good := baseInput()

	bad := baseInput()
	bad.ClassificationCode = "99999999"

	heavy := baseInput()
	heavy.Weight.ActualKg = 30

	return []ddp.BatchItem{
		{ID: "good-1", Input: good},
		{ID: "bad-code", Input: bad},
		{ID: "good-2", Input: good},
		{ID: "too-heavy", Input: heavy},
	}
}

func TestOptimizeBatchOrderAndIsolation(t *testing.T) {
	opt := newOptimizer(policyFixture())

	results := opt.OptimizeBatch(context.Background(), batchItems(), ddp.BatchOptions{})
	require.Len(t, results, 4)

	// Output order matches input order
	for i, wantID := range []string{"good-1", "bad-code", "good-2", "too-heavy"} {
		assert.Equal(t, wantID, results[i].ID)
	}

	// Failures stay in their slots without aborting the batch
	assert.True(t, results[0].Result.Success)
	assert.False(t, results[1].Result.Success)
	assert.Contains(t, results[1].Result.Error, "99999999")
	assert.True(t, results[2].Result.Success)
	assert.False(t, results[3].Result.Success)
}

func TestOptimizeBatchConcurrentMatchesSequential(t *testing.T) {
	opt := newOptimizer(policyFixture())
	items := batchItems()

	sequential := opt.OptimizeBatch(context.Background(), items, ddp.BatchOptions{})
	concurrent := opt.OptimizeBatch(context.Background(), items, ddp.BatchOptions{Concurrency: 4})

	require.Len(t, concurrent, len(sequential))
	for i := range sequential {
		assert.Equal(t, sequential[i].ID, concurrent[i].ID)
		assert.Equal(t, sequential[i].Result.Success, concurrent[i].Result.Success)
		if sequential[i].Result.Success {
			assert.True(t, sequential[i].Result.Recommended.ProductPrice.
				Equal(concurrent[i].Result.Recommended.ProductPrice))
		}
	}
}

func TestOptimizeBatchEmpty(t *testing.T) {
	opt := newOptimizer(policyFixture())
	results := opt.OptimizeBatch(context.Background(), nil, ddp.BatchOptions{})
	assert.Empty(t, results)
}
