package connectors

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"instalabel/internal"
	"instalabel/internal/storage"
)

func rawMessage(t *testing.T, attachments map[string][]byte) []byte {
	t.Helper()
	var b strings.Builder
	b.WriteString("From: customer@example.com\r\n")
	b.WriteString("To: orders@boutique.example\r\n")
	b.WriteString("Subject: new order\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/mixed; boundary=BOUNDARY\r\n\r\n")
	b.WriteString("--BOUNDARY\r\n")
	b.WriteString("Content-Type: text/plain\r\n\r\n")
	b.WriteString("please ship asap\r\n")
	for name, content := range attachments {
		b.WriteString("--BOUNDARY\r\n")
		b.WriteString(fmt.Sprintf("Content-Type: application/octet-stream; name=%q\r\n", name))
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", name))
		b.WriteString(base64.StdEncoding.EncodeToString(content))
		b.WriteString("\r\n")
	}
	b.WriteString("--BOUNDARY--\r\n")
	return []byte(b.String())
}

func TestExtractDocuments(t *testing.T) {
	raw := rawMessage(t, map[string][]byte{
		"order screenshot.jpg": []byte("jpeg bytes"),
		"invoice.txt":          []byte("ignored"),
	})

	docs, err := ExtractDocuments(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want only the supported attachment", len(docs))
	}
	if docs[0].Name != "order screenshot.jpg" || docs[0].MIME != "image/jpeg" {
		t.Fatalf("doc = %+v", docs[0])
	}
	if string(docs[0].Data) != "jpeg bytes" {
		t.Fatal("attachment content corrupted")
	}
}

func TestExtractDocumentsNoAttachments(t *testing.T) {
	docs, err := ExtractDocuments(rawMessage(t, nil))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("docs = %v", docs)
	}
}

type fakeConnector struct {
	messages []internal.FetchedMailMessage
}

func (f *fakeConnector) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	return f.messages, nil
}

func TestFetchOrders(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	withDocs := internal.FetchedMailMessage{
		Provider:  "gmail",
		MessageID: "msg-1",
		Subject:   "order",
		From:      "customer@example.com",
		Raw:       rawMessage(t, map[string][]byte{"shot.jpg": []byte("jpeg")}),
	}
	noDocs := internal.FetchedMailMessage{
		Provider:  "gmail",
		MessageID: "msg-2",
		Subject:   "just text",
		From:      "customer@example.com",
		Raw:       rawMessage(t, nil),
	}

	svc := NewFetchService(db, filepath.Join(dir, "raw"), &fakeConnector{
		messages: []internal.FetchedMailMessage{withDocs, noDocs},
	})

	orders, err := svc.FetchOrders("INBOX", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	if len(orders[0].Docs) != 1 || orders[0].Docs[0].Name != "shot.jpg" {
		t.Fatalf("docs = %+v", orders[0].Docs)
	}

	skipped, _ := db.GetMailByProviderMessageID("gmail", "msg-2")
	if skipped == nil || skipped.Status != "skipped" {
		t.Fatalf("attachment-less mail row = %+v, want skipped", skipped)
	}

	if err := svc.MarkQueued(orders[0].Mail.ID); err != nil {
		t.Fatalf("mark queued: %v", err)
	}

	// A second cycle must not hand the queued message out again.
	orders, err = svc.FetchOrders("INBOX", 10)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("refetch returned %d orders, want 0", len(orders))
	}
}
