package domain

// MergeProperty applies a fresh upstream pull onto an existing record.
//
// Upstream-owned fields (title, summary, details, raw payload) always follow
// upstream. Curated fields keep the local value unless upstream actually
// changed since the last applied snapshot: lastUpstream is the record as
// mapped from existing.RawUpstream, so an admin edit survives any number of
// re-syncs while a genuine upstream correction still lands.
func MergeProperty(existing, upstream, lastUpstream Property) Property {
	merged := existing

	merged.Title = upstream.Title
	merged.Summary = upstream.Summary
	merged.Details = upstream.Details
	merged.RawUpstream = upstream.RawUpstream

	// A property present in the pull is live again regardless of any
	// earlier soft delete.
	merged.IsActive = true
	merged.LastSync = upstream.LastSync

	if upstream.Category != "" && upstream.Category != lastUpstream.Category {
		merged.Category = upstream.Category
	}
	return merged
}
