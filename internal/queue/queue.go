// Package queue implements the batch intake pipeline: uploaded order
// documents become queue entries, an extraction oracle fills their fields,
// enrichment lookups and manual edits refine them, and a commit persists
// the order and emits a printable label.
//
// Entries are mutated exclusively through id-keyed merge updates under one
// lock. In-flight lookups whose target entry has left the queue (committed
// or merged away) therefore resolve as safe no-ops.
package queue

import (
	"context"
	"os"
	"sync"

	"instalabel/internal"
	"instalabel/internal/oracle"
)

type Extractor interface {
	Extract(ctx context.Context, instruction string, docs []internal.Document) (oracle.Payload, error)
}

type History interface {
	PhoneHistory(phone string) ([]string, error)
}

type PostalResolver interface {
	Resolve(ctx context.Context, code string) (string, error)
}

type BlobStore interface {
	Upload(path string, blob []byte) error
}

type OrderStore interface {
	InsertOrder(order internal.OrderRecord) (int64, error)
}

type LabelRenderer interface {
	Render(fields internal.OrderFields, profile *internal.StoreProfile) (string, error)
}

type Deps struct {
	Extractor Extractor
	History   History
	Postal    PostalResolver
	Blobs     BlobStore
	Orders    OrderStore
	Labels    LabelRenderer
}

type Options struct {
	UserID      string
	PreviewsDir string
	// Profile is fetched once per session; nil is valid and falls back to
	// the renderer's defaults.
	Profile     *internal.StoreProfile
	Instruction string
}

// Preview is a display handle onto one source document, backed by a file in
// the previews directory. It is owned by exactly one entry and released
// exactly once, when that entry is destroyed. Merge transfers ownership to
// the merged entry without releasing.
type Preview struct {
	Path     string
	released bool
}

func (p *Preview) release() {
	if p.released {
		return
	}
	p.released = true
	if p.Path != "" {
		_ = os.Remove(p.Path)
	}
}

// entry is the mutable unit of work. All access goes through the queue lock.
type entry struct {
	id       string
	docs     []internal.Document
	previews []*Preview
	status   internal.EntryStatus
	fields   internal.OrderFields
	risk     *internal.RiskInfo
}

// EntryView is an immutable snapshot of one entry for display and tests.
type EntryView struct {
	ID           string
	Status       internal.EntryStatus
	Fields       internal.OrderFields
	Risk         *internal.RiskInfo
	DocNames     []string
	PreviewPaths []string
	Marked       bool
	Selected     bool
}

type Queue struct {
	deps Deps
	opts Options

	mu         sync.Mutex
	entries    []*entry
	selectedID string
	marked     map[string]struct{}
	postalBusy string

	tasks sync.WaitGroup
}

func New(deps Deps, opts Options) *Queue {
	if opts.Instruction == "" {
		opts.Instruction = oracle.Instruction
	}
	return &Queue{
		deps:   deps,
		opts:   opts,
		marked: map[string]struct{}{},
	}
}

// Wait blocks until every scheduled extraction and enrichment task has
// finished. Meant for shutdown and batch CLI runs.
func (q *Queue) Wait() {
	q.tasks.Wait()
}

// Close releases the previews of every remaining entry and empties the
// queue. Call after Wait.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		releasePreviews(e)
	}
	q.entries = nil
	q.selectedID = ""
	q.marked = map[string]struct{}{}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *Queue) Entries() []EntryView {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]EntryView, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, q.viewLocked(e))
	}
	return out
}

func (q *Queue) Entry(id string) (EntryView, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.findLocked(id)
	if e == nil {
		return EntryView{}, false
	}
	return q.viewLocked(e), true
}

// Select makes the given entry active in the editor. An empty id clears the
// selection.
func (q *Queue) Select(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if id == "" {
		q.selectedID = ""
		return true
	}
	if q.findLocked(id) == nil {
		return false
	}
	q.selectedID = id
	return true
}

func (q *Queue) Selected() (EntryView, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.findLocked(q.selectedID)
	if e == nil {
		return EntryView{}, false
	}
	return q.viewLocked(e), true
}

// ToggleMark flips an entry's membership in the merge selection set.
func (q *Queue) ToggleMark(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.findLocked(id) == nil {
		return false
	}
	if _, ok := q.marked[id]; ok {
		delete(q.marked, id)
	} else {
		q.marked[id] = struct{}{}
	}
	return true
}

func (q *Queue) MarkedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.marked))
	for _, e := range q.entries {
		if _, ok := q.marked[e.id]; ok {
			out = append(out, e.id)
		}
	}
	return out
}

// PostalBusy reports whether the currently selected entry has a postal
// lookup in flight. The flag is scoped to the lookup's target entry, so a
// stale response cannot toggle the indicator of a different selection.
func (q *Queue) PostalBusy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.postalBusy != "" && q.postalBusy == q.selectedID
}

// Remove discards an entry outright, releasing its previews.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.findLocked(id)
	if e == nil {
		return false
	}
	q.removeLocked(id)
	releasePreviews(e)
	return true
}

// update applies a merge-by-id mutation: the entry is located by id and the
// mutator sees only that entry, so concurrent writers cannot stomp each
// other's unrelated fields. A missing id is a no-op.
func (q *Queue) update(id string, fn func(*entry)) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.findLocked(id)
	if e == nil {
		return false
	}
	fn(e)
	return true
}

func (q *Queue) findLocked(id string) *entry {
	if id == "" {
		return nil
	}
	for _, e := range q.entries {
		if e.id == id {
			return e
		}
	}
	return nil
}

func (q *Queue) removeLocked(id string) {
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.id != id {
			kept = append(kept, e)
		}
	}
	q.entries = kept
	delete(q.marked, id)
	if q.selectedID == id {
		q.selectedID = ""
		if len(q.entries) > 0 {
			q.selectedID = q.entries[0].id
		}
	}
}

func (q *Queue) viewLocked(e *entry) EntryView {
	view := EntryView{
		ID:       e.id,
		Status:   e.status,
		Fields:   e.fields,
		Selected: e.id == q.selectedID,
	}
	if e.risk != nil {
		risk := *e.risk
		view.Risk = &risk
	}
	for _, doc := range e.docs {
		view.DocNames = append(view.DocNames, doc.Name)
	}
	for _, p := range e.previews {
		view.PreviewPaths = append(view.PreviewPaths, p.Path)
	}
	_, view.Marked = q.marked[e.id]
	return view
}

func (q *Queue) schedule(fn func()) {
	q.tasks.Add(1)
	go func() {
		defer q.tasks.Done()
		fn()
	}()
}

func releasePreviews(e *entry) {
	for _, p := range e.previews {
		p.release()
	}
}
