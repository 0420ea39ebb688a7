// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/transparency-engine/internal/facts"
	"github.com/pdiddy/transparency-engine/internal/rules"
	"github.com/pdiddy/transparency-engine/pkg/types"
)

const testQuery = "Wie viel gab die Gemeinde 2023 für Straßen aus?"

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func validRaw() map[string]any {
	return map[string]any{
		"jahr":         2023,
		"kategorie":    "infrastruktur",
		"beschreibung": "Straßenreparatur",
		"betrag":       25000.0,
	}
}

func testRules(t *testing.T) *rules.Set {
	t.Helper()
	rs := rules.Default(testNow)
	require.NoError(t, rs.Compile())
	return rs
}

func testChecker(t *testing.T, source FactSource) *Checker {
	t.Helper()
	return New(testRules(t), source, types.DefaultVerifierConfig(), nil)
}

func liveStore(t *testing.T) *facts.Store {
	t.Helper()
	store, err := facts.NewStore(types.FactsStoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestVerifyValidRecord(t *testing.T) {
	checker := testChecker(t, liveStore(t))

	rec, outcome := checker.Verify(context.Background(), validRaw(), testQuery)

	assert.True(t, outcome.Verified)
	assert.GreaterOrEqual(t, outcome.Confidence, 0.7)
	assert.Empty(t, outcome.Issues)
	require.NotNil(t, rec.Year)
	assert.Equal(t, 2023, *rec.Year)
	assert.Len(t, outcome.Methods, 6, "all six checks must run")
}

func TestVerifyImplausibleRecordRejected(t *testing.T) {
	store := liveStore(t)
	checker := testChecker(t, store)
	ctx := context.Background()

	raw := map[string]any{"jahr": 2045, "betrag": 5.0, "beschreibung": "x"}
	_, outcome := checker.Verify(ctx, raw, testQuery)

	assert.False(t, outcome.Verified)
	assert.LessOrEqual(t, outcome.Confidence, 0.48,
		"range and plausibility failures alone already cap at 0.6*0.8")
	assert.Contains(t, outcome.FailedChecks, types.CheckRange)
	assert.Contains(t, outcome.FailedChecks, types.CheckPlausibility)
	assert.Contains(t, outcome.FailedChecks, types.CheckPattern,
		"year 2045 also trips the impossible-year pattern")
}

func TestVerifyAmountOverCeilingNeverVerifies(t *testing.T) {
	checker := testChecker(t, liveStore(t))

	raw := validRaw()
	raw["betrag"] = 500_000_000.0
	raw["beschreibung"] = "Bauprojekt Umfahrung"
	_, outcome := checker.Verify(context.Background(), raw, testQuery)

	assert.False(t, outcome.Verified)
	assert.Contains(t, outcome.FailedChecks, types.CheckRange)
	assert.Contains(t, outcome.FailedChecks, types.CheckPattern)
}

func TestVerifyCoercionFailureIsFinding(t *testing.T) {
	checker := testChecker(t, liveStore(t))

	raw := validRaw()
	raw["jahr"] = "irgendwann"
	_, outcome := checker.Verify(context.Background(), raw, testQuery)

	assert.Contains(t, outcome.FailedChecks, types.CheckStructural)
	require.NotEmpty(t, outcome.Issues)
	assert.Contains(t, outcome.Issues[0], "jahr")
}

func TestVerifyConsistencyShortCircuit(t *testing.T) {
	store := liveStore(t)
	checker := testChecker(t, store)
	ctx := context.Background()

	rec, _ := types.RecordFromMap(validRaw())
	fp := facts.Fingerprint(rec)
	require.NoError(t, store.StoreVerified(ctx, fp, rec, 0.95, []string{"manual"}))

	_, outcome := checker.Verify(ctx, validRaw(), testQuery)

	assert.True(t, outcome.Verified)
	assert.InDelta(t, 0.95, outcome.Confidence, 1e-9,
		"stored confidence replaces the similarity heuristic")
	assert.Empty(t, outcome.Issues)
}

func TestVerifySuspiciousEntryPenalized(t *testing.T) {
	store := liveStore(t)
	checker := testChecker(t, store)
	ctx := context.Background()

	rec, _ := types.RecordFromMap(validRaw())
	require.NoError(t, store.FlagSuspicious(ctx, facts.Fingerprint(rec), rec,
		[]string{"manueller Verdacht"}))

	_, outcome := checker.Verify(ctx, validRaw(), testQuery)

	assert.False(t, outcome.Verified)
	assert.InDelta(t, 0.3, outcome.Confidence, 1e-9)
	require.NotEmpty(t, outcome.Issues)
	assert.Contains(t, outcome.Issues[0], "verdächtig")
}

func TestVerifyWithoutStore(t *testing.T) {
	checker := testChecker(t, nil)

	_, outcome := checker.Verify(context.Background(), validRaw(), testQuery)

	assert.True(t, outcome.Verified)
	assert.InDelta(t, 1.0, outcome.Confidence, 1e-9,
		"without a store the consistency check is neutral")
}

func TestVerifyBatchThreeWaySplit(t *testing.T) {
	store := liveStore(t)
	checker := testChecker(t, store)
	ctx := context.Background()

	flagged := validRaw()
	delete(flagged, "beschreibung")

	raws := []map[string]any{
		validRaw(),
		flagged,
		{"jahr": 2045, "betrag": 5.0, "beschreibung": "x"},
	}

	result := checker.VerifyBatch(ctx, raws, testQuery)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Verified)
	assert.Equal(t, 1, result.Suspicious)
	assert.Equal(t, 1, result.Filtered)
	assert.Equal(t, result.Total, result.Verified+result.Suspicious+result.Filtered)
	assert.Len(t, result.Records, 2, "filtered records are dropped from output")
	assert.NotEmpty(t, result.RejectedIssues)

	// The rejected record lands in the suspicious store.
	rec, _ := types.RecordFromMap(raws[2])
	lookup, err := store.Lookup(ctx, facts.Fingerprint(rec))
	require.NoError(t, err)
	assert.NotNil(t, lookup.Suspicious)
}

func TestVerifyBatchEmpty(t *testing.T) {
	checker := testChecker(t, nil)

	result := checker.VerifyBatch(context.Background(), nil, testQuery)

	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Records)
}

// panicSource simulates a programming error inside the store integration.
type panicSource struct{}

func (panicSource) Lookup(context.Context, string) (facts.Lookup, error) {
	panic("boom")
}

func (panicSource) StoreVerified(context.Context, string, types.Record, float64, []string) error {
	return nil
}

func (panicSource) FlagSuspicious(context.Context, string, types.Record, []string) error {
	return nil
}

func TestVerifyBatchIsolatesPanics(t *testing.T) {
	checker := testChecker(t, panicSource{})

	result := checker.VerifyBatch(context.Background(), []map[string]any{validRaw()}, testQuery)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Filtered, "a panicking record is rejected, not propagated")
	assert.Equal(t, 0, result.Verified)
}

func TestVerifyWriteThrough(t *testing.T) {
	store := liveStore(t)
	checker := testChecker(t, store)
	ctx := context.Background()

	// Seed at exactly the store threshold, then re-verify: the refreshed
	// fact must persist with the short-circuited confidence.
	rec, _ := types.RecordFromMap(validRaw())
	fp := facts.Fingerprint(rec)
	require.NoError(t, store.StoreVerified(ctx, fp, rec, 0.9, []string{"manual"}))

	_, outcome := checker.Verify(ctx, validRaw(), testQuery)
	require.True(t, outcome.Verified)

	lookup, err := store.Lookup(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, lookup.Verified)
	assert.InDelta(t, 0.9, lookup.Verified.Confidence, 1e-9)
	assert.Equal(t, outcome.Methods, lookup.Verified.Methods,
		"write-through records the checks that ran")
}
