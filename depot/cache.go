package depot

import "time"

// Resolver reuses depot entries computed by a previous run for assets that
// have not changed since the depot was last written.
type Resolver struct {
	known       map[string]BaseTemplate
	lastUpdated time.Time
	hasSnapshot bool
}

// NewResolver builds a resolver over previous. A nil snapshot means no depot
// could be read, in which case every asset gets fetched.
func NewResolver(previous *Snapshot) *Resolver {
	if previous == nil {
		return &Resolver{known: map[string]BaseTemplate{}}
	}
	return &Resolver{
		known:       previous.Depot.Index(),
		lastUpdated: previous.LastUpdated,
		hasSnapshot: true,
	}
}

// IsFresh reports whether the asset changed after the depot was written.
// An asset updated at exactly the depot time is not fresh: the depot time
// comes from the commit that already included it.
func (r *Resolver) IsFresh(zip DownloadableZip) bool {
	return zip.UpdatedAt.After(r.lastUpdated)
}

// Resolve returns a copy of zip whose Result is the previous entry for its
// download URL, or nil when the asset is fresh or has no previous entry.
func (r *Resolver) Resolve(zip DownloadableZip) DownloadableZip {
	if r.IsFresh(zip) {
		return zip.WithResult(nil)
	}
	entry, ok := r.known[zip.DownloadURL]
	if !ok {
		return zip.WithResult(nil)
	}
	return zip.WithResult(&entry)
}

// Keep reports whether zip is worth processing. Assets that predate the
// previous depot without appearing in it already failed to parse and are
// dropped.
func (r *Resolver) Keep(zip DownloadableZip) bool {
	if !r.hasSnapshot || r.IsFresh(zip) {
		return true
	}
	_, ok := r.known[zip.DownloadURL]
	return ok
}

// Partition resolves every zip and drops the known-invalid ones. Kept zips
// with a nil Result still need fetching.
func (r *Resolver) Partition(zips []DownloadableZip) (kept []DownloadableZip, dropped int) {
	kept = make([]DownloadableZip, 0, len(zips))
	for _, zip := range zips {
		if !r.Keep(zip) {
			dropped++
			continue
		}
		kept = append(kept, r.Resolve(zip))
	}
	return kept, dropped
}
