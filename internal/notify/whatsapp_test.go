package notify

import (
	"strings"
	"testing"

	"instalabel/internal"
)

func TestWhatsAppLink(t *testing.T) {
	order := internal.OrderRecord{
		Fields: internal.OrderFields{
			CustomerName: "Priya",
			Phone:        "98765 43210",
			Amount:       499,
			Items:        "2x kurti",
			PaymentMode:  internal.PaymentCOD,
		},
	}

	link := WhatsAppLink(order, "91")
	if !strings.HasPrefix(link, "https://wa.me/919876543210?text=") {
		t.Fatalf("link = %q", link)
	}
	if !strings.Contains(link, "Priya") || !strings.Contains(link, "499") {
		t.Fatalf("message missing order details: %q", link)
	}
	if strings.Contains(link, " ") {
		t.Fatal("message not url-encoded")
	}
}

func TestWhatsAppLinkKeepsFullNumbers(t *testing.T) {
	order := internal.OrderRecord{Fields: internal.OrderFields{Phone: "+91 9876543210"}}
	link := WhatsAppLink(order, "91")
	if !strings.HasPrefix(link, "https://wa.me/919876543210?") {
		t.Fatalf("12-digit number must not be double-prefixed: %q", link)
	}
}
