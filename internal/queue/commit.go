package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"instalabel/internal"
	"instalabel/internal/util"
)

// ValidationError rejects a commit before any side effect has happened.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// CommitResult reports what a successful commit produced.
type CommitResult struct {
	Order     internal.OrderRecord
	LabelPath string
}

// Commit persists the entry: uploads every source document to the blob
// store (all or nothing), inserts one order record, renders the label and
// only then removes the entry from the queue and releases its previews.
// Upload and insert failures leave the queue untouched so the operator can
// retry without re-entering data.
func (q *Queue) Commit(ctx context.Context, id string) (CommitResult, error) {
	q.mu.Lock()
	e := q.findLocked(id)
	if e == nil {
		q.mu.Unlock()
		return CommitResult{}, fmt.Errorf("no queue entry with id %s", id)
	}
	fields := e.fields
	docs := e.docs
	q.mu.Unlock()

	var missing []string
	if strings.TrimSpace(fields.CustomerName) == "" {
		missing = append(missing, FieldCustomerName)
	}
	if strings.TrimSpace(fields.Address) == "" {
		missing = append(missing, FieldAddress)
	}
	if len(missing) > 0 {
		return CommitResult{}, &ValidationError{Missing: missing}
	}

	refs := make([]string, len(docs))
	ts := time.Now().UnixMilli()
	g, _ := errgroup.WithContext(ctx)
	for i, doc := range docs {
		refs[i] = fmt.Sprintf("%s/%d_%d_%s", util.SanitizeFilename(q.opts.UserID), ts, i, util.SanitizeFilename(doc.Name))
		ref, blob := refs[i], doc.Data
		g.Go(func() error {
			if err := q.deps.Blobs.Upload(ref, blob); err != nil {
				return fmt.Errorf("upload %s: %w", ref, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CommitResult{}, err
	}

	order := internal.OrderRecord{
		UserID:         q.opts.UserID,
		ScreenshotRefs: refs,
		Fields:         fields,
		Status:         internal.OrderPending,
	}
	orderID, err := q.deps.Orders.InsertOrder(order)
	if err != nil {
		return CommitResult{}, fmt.Errorf("insert order: %w", err)
	}
	order.ID = orderID

	labelPath, err := q.deps.Labels.Render(fields, q.opts.Profile)
	if err != nil {
		// The order record exists at this point; the entry stays queued so
		// the operator can re-print.
		return CommitResult{Order: order}, fmt.Errorf("render label: %w", err)
	}

	q.mu.Lock()
	if committed := q.findLocked(id); committed != nil {
		q.removeLocked(id)
		releasePreviews(committed)
	}
	q.mu.Unlock()

	return CommitResult{Order: order, LabelPath: labelPath}, nil
}
