package connectors

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"

	"instalabel/internal"
	"instalabel/internal/intake"
	"instalabel/internal/storage"
)

// MailOrder is one fetched message with its usable order documents. All
// attachments of one message are treated as screenshots of the same order.
type MailOrder struct {
	Mail internal.MailRow
	Docs []internal.Document
}

type FetchService struct {
	db        *storage.DB
	connector MailConnector
	store     *MailStoreService
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir),
	}
}

// FetchOrders pulls new messages, archives them and extracts their image
// and PDF attachments. Messages already queued or skipped on a previous
// cycle are left alone; messages without usable attachments are marked
// skipped.
func (s *FetchService) FetchOrders(label string, max int) ([]MailOrder, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return nil, err
	}

	out := make([]MailOrder, 0, len(messages))
	for _, msg := range messages {
		existing, err := s.db.GetMailByProviderMessageID(msg.Provider, msg.MessageID)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.Status != "fetched" {
			continue
		}

		row, err := s.store.Store(msg)
		if err != nil {
			return nil, err
		}

		docs, err := ExtractDocuments(msg.Raw)
		if err != nil {
			return nil, fmt.Errorf("parse mail %s: %w", msg.MessageID, err)
		}
		if len(docs) == 0 {
			_ = s.db.UpdateMailStatus(row.ID, "skipped")
			continue
		}

		out = append(out, MailOrder{Mail: row, Docs: docs})
	}

	return out, nil
}

func (s *FetchService) MarkQueued(mailID int) error {
	return s.db.UpdateMailStatus(mailID, "queued")
}

// ExtractDocuments pulls supported attachments out of a raw MIME message.
func ExtractDocuments(raw []byte) ([]internal.Document, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	var docs []internal.Document
	for _, att := range append(env.Attachments, env.Inlines...) {
		name := strings.TrimSpace(att.FileName)
		if name == "" || !intake.SupportedFile(name) {
			continue
		}
		doc, err := intake.FromBytes(name, att.Content)
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
