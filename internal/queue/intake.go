package queue

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"instalabel/internal"
)

// Add creates one entry per document, appends them in arrival order and
// schedules extraction for each, fire and forget. An empty input is a no-op.
func (q *Queue) Add(ctx context.Context, docs []internal.Document) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, q.AddGroup(ctx, []internal.Document{doc}))
	}
	return ids
}

// AddGroup creates a single entry owning all given documents, for intake
// sources where several images are known upfront to belong to one order
// (e.g. attachments of one mail). Returns the new entry's id, or "" when
// docs is empty.
func (q *Queue) AddGroup(ctx context.Context, docs []internal.Document) string {
	if len(docs) == 0 {
		return ""
	}

	e := &entry{
		id:     uuid.NewString(),
		status: internal.EntryPending,
		fields: internal.OrderFields{PaymentMode: internal.PaymentCOD},
	}
	for _, doc := range docs {
		e.docs = append(e.docs, doc)
		e.previews = append(e.previews, q.newPreview(doc))
	}

	q.mu.Lock()
	q.entries = append(q.entries, e)
	q.mu.Unlock()

	q.Process(ctx, e.id)
	return e.id
}

// newPreview materializes a display copy of one document. Preview failures
// degrade to a handle without a backing file; the pipeline does not depend
// on previews existing.
func (q *Queue) newPreview(doc internal.Document) *Preview {
	if q.opts.PreviewsDir == "" {
		return &Preview{}
	}
	if err := os.MkdirAll(q.opts.PreviewsDir, 0o755); err != nil {
		return &Preview{}
	}
	path := filepath.Join(q.opts.PreviewsDir, uuid.NewString()+filepath.Ext(doc.Name))
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return &Preview{}
	}
	return &Preview{Path: path}
}
