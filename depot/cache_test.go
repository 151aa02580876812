package depot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var depotTime = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func snapshotWith(entries ...BaseTemplate) *Snapshot {
	return &Snapshot{Depot: Depot(entries), SHA: "sha", LastUpdated: depotTime}
}

func TestResolveTieBreak(t *testing.T) {
	cached := entry("https://example.com/a.zip", "a", "1.0.0")
	resolver := NewResolver(snapshotWith(cached))

	testCases := []struct {
		name      string
		updatedAt time.Time
		wantCache bool
	}{
		{name: "older", updatedAt: depotTime.Add(-time.Hour), wantCache: true},
		{name: "equal", updatedAt: depotTime, wantCache: true},
		{name: "one microsecond later", updatedAt: depotTime.Add(time.Microsecond), wantCache: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			zip := DownloadableZip{AssetID: 1, DownloadURL: cached.Metadata.Location, UpdatedAt: tc.updatedAt}
			got := resolver.Resolve(zip)
			if tc.wantCache {
				require.NotNil(t, got.Result)
				assert.Equal(t, cached, *got.Result)
			} else {
				assert.Nil(t, got.Result)
			}
			assert.Nil(t, zip.Result)
		})
	}
}

func TestResolveForcesRefetchOfFreshAsset(t *testing.T) {
	cached := entry("https://example.com/a.zip", "a", "1.0.0")
	resolver := NewResolver(snapshotWith(cached))

	stale := &BaseTemplate{Name: "stale"}
	zip := DownloadableZip{DownloadURL: cached.Metadata.Location, UpdatedAt: depotTime.Add(time.Minute), Result: stale}

	assert.Nil(t, resolver.Resolve(zip).Result)
}

func TestResolveIsIdempotent(t *testing.T) {
	cached := entry("https://example.com/a.zip", "a", "1.0.0")
	resolver := NewResolver(snapshotWith(cached))

	zips := []DownloadableZip{
		{DownloadURL: cached.Metadata.Location, UpdatedAt: depotTime.Add(-time.Minute)},
		{DownloadURL: cached.Metadata.Location, UpdatedAt: depotTime.Add(time.Minute)},
		{DownloadURL: "https://example.com/unknown.zip", UpdatedAt: depotTime.Add(-time.Minute)},
	}

	for _, zip := range zips {
		once := resolver.Resolve(zip)
		twice := resolver.Resolve(once)
		assert.Equal(t, once, twice)
	}
}

func TestPartitionDropsKnownInvalidAssets(t *testing.T) {
	cached := entry("https://example.com/a.zip", "a", "1.0.0")
	resolver := NewResolver(snapshotWith(cached))

	zips := []DownloadableZip{
		{AssetID: 1, DownloadURL: cached.Metadata.Location, UpdatedAt: depotTime},
		{AssetID: 2, DownloadURL: "https://example.com/broken.zip", UpdatedAt: depotTime.Add(-time.Hour)},
		{AssetID: 3, DownloadURL: "https://example.com/new.zip", UpdatedAt: depotTime.Add(time.Hour)},
	}

	kept, dropped := resolver.Partition(zips)

	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 2)
	assert.Equal(t, int64(1), kept[0].AssetID)
	require.NotNil(t, kept[0].Result)
	assert.Equal(t, int64(3), kept[1].AssetID)
	assert.Nil(t, kept[1].Result)
}

func TestPartitionWithoutSnapshotKeepsEverything(t *testing.T) {
	resolver := NewResolver(nil)

	zips := []DownloadableZip{
		{AssetID: 1, DownloadURL: "https://example.com/a.zip", UpdatedAt: time.Time{}},
		{AssetID: 2, DownloadURL: "https://example.com/b.zip", UpdatedAt: depotTime},
	}

	kept, dropped := resolver.Partition(zips)

	assert.Zero(t, dropped)
	require.Len(t, kept, 2)
	for _, zip := range kept {
		assert.Nil(t, zip.Result)
	}
}
