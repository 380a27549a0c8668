package label

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"instalabel/internal"
)

func TestRender(t *testing.T) {
	dir := t.TempDir()
	fields := internal.OrderFields{
		CustomerName: "Priya Sharma",
		Phone:        "9876543210",
		Address:      "12 MG Road, near the old post office, Shanthala Nagar",
		City:         "Bengaluru",
		Pincode:      "560001",
		Amount:       499,
		PaymentMode:  internal.PaymentCOD,
	}

	path, err := NewRenderer(dir).Render(fields, &internal.StoreProfile{
		StoreName:    "Meera Boutique",
		StoreAddress: "4 Brigade Road, Bengaluru",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("label written outside output dir: %s", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "label_Priya_Sharma_") {
		t.Fatalf("label filename = %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a pdf")
	}
}

func TestRenderWithoutProfile(t *testing.T) {
	path, err := NewRenderer(t.TempDir()).Render(internal.OrderFields{
		CustomerName: "Priya",
		Address:      "12 MG Road",
		PaymentMode:  internal.PaymentPrepaid,
	}, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("label file empty or missing: %v", err)
	}
}
