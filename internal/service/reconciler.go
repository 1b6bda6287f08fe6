package service

import "github.com/pooler-app/pooler/models"

type reconciler struct{}

// NewReconciler returns the last-write-wins replace merge.
//
// The policy is deliberately not a CRDT: every field is only ever mutated by
// its originating device except status and confirmations, which a stale
// concurrent write can clobber because the record timestamp is not bumped
// for those field changes. That is a known, accepted limitation of the wire
// format.
func NewReconciler() Reconciler {
	return reconciler{}
}

// Reconcile implements [Reconciler]. For each remote record: unknown id ->
// appended verbatim and counted as new; known id with a strictly later
// remote timestamp -> the whole local record is replaced (field-level union
// is not supported); otherwise the local copy wins. Ties favor the local
// copy, so merging the same remote set twice is idempotent and never
// duplicates an id.
func (reconciler) Reconcile(local, remote []models.Report) models.MergeResult {
	merged := make([]models.Report, len(local))
	copy(merged, local)

	index := make(map[string]int, len(merged))
	for i := range merged {
		index[merged[i].ID] = i
	}

	var res models.MergeResult
	for _, r := range remote {
		i, known := index[r.ID]
		if !known {
			merged = append(merged, r)
			index[r.ID] = len(merged) - 1
			res.Added = append(res.Added, r)
			continue
		}

		if r.NewerThan(merged[i]) {
			merged[i] = r
			res.Refreshed = append(res.Refreshed, r.ID)
		}
	}

	res.Records = merged
	return res
}
