package queue

import (
	"context"

	"github.com/google/uuid"

	"instalabel/internal"
)

// Merge combines every marked entry into one new entry that inherits their
// documents and previews in queue order. Requires at least two marked
// entries, otherwise a no-op. Partially edited fields of the sources are
// deliberately discarded; the merged entry re-enters extraction from
// scratch. Preview ownership transfers, so the sources are removed without
// releasing.
func (q *Queue) Merge(ctx context.Context) (string, bool) {
	q.mu.Lock()
	if len(q.marked) < 2 {
		q.mu.Unlock()
		return "", false
	}

	merged := &entry{
		id:     uuid.NewString(),
		status: internal.EntryPending,
		fields: internal.OrderFields{PaymentMode: internal.PaymentCOD},
	}
	kept := make([]*entry, 0, len(q.entries))
	for _, e := range q.entries {
		if _, ok := q.marked[e.id]; ok {
			merged.docs = append(merged.docs, e.docs...)
			merged.previews = append(merged.previews, e.previews...)
		} else {
			kept = append(kept, e)
		}
	}

	q.entries = append([]*entry{merged}, kept...)
	q.marked = map[string]struct{}{}
	q.selectedID = merged.id
	q.mu.Unlock()

	q.Process(ctx, merged.id)
	return merged.id, true
}
