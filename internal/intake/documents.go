package intake

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pdfreader "github.com/ledongthuc/pdf"

	"instalabel/internal"
)

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

// SupportedFile reports whether a filename looks like an order document.
func SupportedFile(name string) bool {
	_, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]
	return ok
}

// LoadFiles reads order documents from disk, one Document per file.
func LoadFiles(paths []string) ([]internal.Document, error) {
	out := make([]internal.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		doc, err := FromBytes(filepath.Base(path), data)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// FromBytes wraps a raw blob as an order document. PDF inputs additionally
// get their text layer extracted as an oracle hint; extraction failures are
// not fatal, the raw bytes still go to the oracle.
func FromBytes(name string, data []byte) (internal.Document, error) {
	mime, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return internal.Document{}, fmt.Errorf("unsupported document type: %s", name)
	}

	doc := internal.Document{Name: name, MIME: mime, Data: data}
	if mime == "application/pdf" {
		doc.TextHint = pdfText(data)
	}
	return doc, nil
}

func pdfText(content []byte) (text string) {
	// The reader panics on some malformed files; a hint is optional anyway.
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	reader, err := pdfreader.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
