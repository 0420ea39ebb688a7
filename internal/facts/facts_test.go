// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package facts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/transparency-engine/pkg/types"
)

func testRecord() types.Record {
	year := 2023
	amount := 25000.0
	return types.Record{
		Year:        &year,
		Amount:      &amount,
		Category:    "infrastruktur",
		Description: "Straßenreparatur Hauptstraße",
	}
}

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.FactsStoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFingerprintStable(t *testing.T) {
	rec := testRecord()

	fp1 := Fingerprint(rec)
	fp2 := Fingerprint(rec)

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, fingerprintLen)
}

func TestFingerprintIgnoresMetadata(t *testing.T) {
	rec := testRecord()
	withExtra := testRecord()
	withExtra.Date = "2023-05-12"
	withExtra.Extra = map[string]string{"quelle": "import-42"}

	assert.Equal(t, Fingerprint(rec), Fingerprint(withExtra),
		"fields outside the hash subset must not change the fingerprint")
}

func TestFingerprintDistinguishesContent(t *testing.T) {
	rec := testRecord()
	other := testRecord()
	*other.Amount = 26000.0

	assert.NotEqual(t, Fingerprint(rec), Fingerprint(other))
}

func TestStoreVerifiedRoundtrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	rec := testRecord()
	fp := Fingerprint(rec)

	require.NoError(t, store.StoreVerified(ctx, fp, rec, 0.95,
		[]string{"structural", "range", "plausibility"}))

	lookup, err := store.Lookup(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, lookup.Verified)
	assert.Nil(t, lookup.Suspicious)
	assert.Equal(t, fp, lookup.Verified.Fingerprint)
	assert.InDelta(t, 0.95, lookup.Verified.Confidence, 1e-9)
	assert.Equal(t, []string{"structural", "range", "plausibility"}, lookup.Verified.Methods)
}

func TestStoreVerifiedUpsert(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	rec := testRecord()
	fp := Fingerprint(rec)

	require.NoError(t, store.StoreVerified(ctx, fp, rec, 0.91, []string{"structural"}))
	require.NoError(t, store.StoreVerified(ctx, fp, rec, 0.97, []string{"structural", "range"}))

	lookup, err := store.Lookup(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, lookup.Verified)
	assert.InDelta(t, 0.97, lookup.Verified.Confidence, 1e-9)

	stats, err := store.ReadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VerifiedFacts, "upsert must not duplicate")
}

func TestFlagAndResolveSuspicious(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	rec := testRecord()
	fp := Fingerprint(rec)

	require.NoError(t, store.FlagSuspicious(ctx, fp, rec,
		[]string{"Verdächtiges Muster erkannt", "Jahr außerhalb des Bereichs"}))

	lookup, err := store.Lookup(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, lookup.Suspicious)
	assert.Contains(t, lookup.Suspicious.Reason, "Verdächtiges Muster")

	n, err := store.ResolveAllSuspicious(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Resolved entries no longer shadow lookups.
	lookup, err = store.Lookup(ctx, fp)
	require.NoError(t, err)
	assert.Nil(t, lookup.Suspicious)
	assert.Nil(t, lookup.Verified)
}

func TestVerifiedFactWinsOverSuspicious(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	rec := testRecord()
	fp := Fingerprint(rec)

	require.NoError(t, store.FlagSuspicious(ctx, fp, rec, []string{"alter Verdacht"}))
	require.NoError(t, store.StoreVerified(ctx, fp, rec, 0.92, []string{"consistency"}))

	lookup, err := store.Lookup(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, lookup.Verified)
	assert.Nil(t, lookup.Suspicious)
}

func TestLookupMiss(t *testing.T) {
	store := testStore(t)

	lookup, err := store.Lookup(context.Background(), "deadbeefdeadbeef")
	require.NoError(t, err)
	assert.Nil(t, lookup.Verified)
	assert.Nil(t, lookup.Suspicious)
}

func TestReadStats(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	recs := []struct {
		desc string
		conf float64
	}{
		{"Straßenreparatur", 0.92},
		{"Parkpflege", 0.96},
	}
	for _, r := range recs {
		rec := testRecord()
		rec.Description = r.desc
		require.NoError(t, store.StoreVerified(ctx, Fingerprint(rec), rec, r.conf,
			[]string{"structural", "range"}))
	}

	bad := testRecord()
	bad.Description = "dummy"
	require.NoError(t, store.FlagSuspicious(ctx, Fingerprint(bad), bad, []string{"Testeintrag"}))

	stats, err := store.ReadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.VerifiedFacts)
	assert.Equal(t, 1, stats.OpenSuspicious)
	assert.InDelta(t, 0.94, stats.AverageConfidence, 1e-9)
	assert.Equal(t, 2, stats.TopMethods["structural+range"])
}
