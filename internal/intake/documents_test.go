package intake

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSupportedFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.webp", "e.pdf"} {
		if !SupportedFile(name) {
			t.Errorf("%s rejected", name)
		}
	}
	for _, name := range []string{"a.txt", "b.exe", "noext", "c.jpg.zip"} {
		if SupportedFile(name) {
			t.Errorf("%s accepted", name)
		}
	}
}

func TestFromBytes(t *testing.T) {
	doc, err := FromBytes("order.PNG", []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("from bytes: %v", err)
	}
	if doc.MIME != "image/png" || doc.Name != "order.PNG" {
		t.Fatalf("doc = %+v", doc)
	}

	if _, err := FromBytes("order.txt", []byte("x")); err == nil {
		t.Fatal("unsupported extension accepted")
	}
}

func TestFromBytesBrokenPDF(t *testing.T) {
	doc, err := FromBytes("order.pdf", []byte("not really a pdf"))
	if err != nil {
		t.Fatalf("broken pdf must still wrap: %v", err)
	}
	if doc.TextHint != "" {
		t.Fatalf("text hint = %q, want empty on unreadable pdf", doc.TextHint)
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := LoadFiles([]string{path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "shot.jpg" || string(docs[0].Data) != "jpeg" {
		t.Fatalf("docs = %+v", docs)
	}

	if _, err := LoadFiles([]string{filepath.Join(dir, "missing.jpg")}); err == nil {
		t.Fatal("missing file must fail")
	}
}
