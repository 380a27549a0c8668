package queue

import (
	"context"

	"instalabel/internal"
	"instalabel/internal/util"
)

// Process schedules extraction for an entry, fire and forget. It is also
// the retry path for entries in the error state.
func (q *Queue) Process(ctx context.Context, id string) {
	q.schedule(func() { q.process(ctx, id) })
}

// process runs the entry state machine: pending/error -> processing ->
// done|error. One oracle call covers all documents of the entry so the
// model can reconcile duplicate or partial information across them.
func (q *Queue) process(ctx context.Context, id string) {
	var docs []internal.Document
	started := q.update(id, func(e *entry) {
		if e.status == internal.EntryProcessing {
			return
		}
		e.status = internal.EntryProcessing
		docs = e.docs
	})
	if !started || docs == nil {
		return
	}

	payload, err := q.deps.Extractor.Extract(ctx, q.opts.Instruction, docs)
	if err != nil {
		// Fields stay untouched so a prior manual edit survives a retry.
		q.update(id, func(e *entry) { e.status = internal.EntryError })
		return
	}

	fields := payload.Fields()
	q.update(id, func(e *entry) {
		e.fields = fields
		e.status = internal.EntryDone
	})

	// Enrichment is opportunistic and never blocks the done transition.
	if len(util.Digits(fields.Phone)) >= 10 {
		q.scheduleRisk(id, fields.Phone)
	}
	if len(fields.Pincode) == 6 && util.IsDigits(fields.Pincode) {
		q.schedulePostal(ctx, id, fields.Pincode)
	}
}

func (q *Queue) scheduleRisk(id, phone string) {
	q.schedule(func() { q.checkRisk(id, phone) })
}

// checkRisk looks up return history for a phone number and attaches it to
// the entry. No history clears the risk info; a failed lookup changes
// nothing. Safe to call repeatedly, last call wins.
func (q *Queue) checkRisk(id, phone string) {
	if len(util.Digits(phone)) < 10 {
		return
	}
	statuses, err := q.deps.History.PhoneHistory(phone)
	if err != nil {
		return
	}
	if len(statuses) == 0 {
		q.update(id, func(e *entry) { e.risk = nil })
		return
	}

	returns := 0
	for _, status := range statuses {
		if status == internal.OrderReturned {
			returns++
		}
	}
	risk := internal.RiskInfo{PastOrders: len(statuses), PastReturns: returns}
	q.update(id, func(e *entry) { e.risk = &risk })
}

func (q *Queue) schedulePostal(ctx context.Context, id, code string) {
	if len(code) != 6 || !util.IsDigits(code) {
		return
	}

	q.mu.Lock()
	if q.selectedID == id {
		q.postalBusy = id
	}
	q.mu.Unlock()

	q.schedule(func() { q.resolveCity(ctx, id, code) })
}

// resolveCity overwrites only the city field of its target entry. Failures
// are silent and a resolution against an entry that has since left the
// queue updates nothing.
func (q *Queue) resolveCity(ctx context.Context, id, code string) {
	district, err := q.deps.Postal.Resolve(ctx, code)

	q.mu.Lock()
	if q.postalBusy == id {
		q.postalBusy = ""
	}
	q.mu.Unlock()

	if err != nil {
		return
	}
	q.update(id, func(e *entry) { e.fields.City = district })
}
