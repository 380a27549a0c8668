package oracle

import (
	"testing"

	"instalabel/internal"
)

func TestParsePayload(t *testing.T) {
	text := "```json\n" + `{
		"customer_name": "Priya Sharma",
		"phone": "9876543210",
		"address": "12 MG Road",
		"city": "Bengaluru",
		"pincode": "560001",
		"amount": 499.5,
		"items": "2x kurti",
		"is_prepaid": true
	}` + "\n```"

	p, err := ParsePayload(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.CustomerName != "Priya Sharma" || p.Amount != 499.5 || !p.Prepaid {
		t.Fatalf("unexpected payload: %+v", p)
	}

	fields := p.Fields()
	if fields.PaymentMode != internal.PaymentPrepaid {
		t.Fatalf("payment mode = %s, want prepaid", fields.PaymentMode)
	}
}

func TestParsePayloadNameFallbacks(t *testing.T) {
	cases := []struct {
		json string
		want string
	}{
		{`{"customer_name": "A"}`, "A"},
		{`{"name": "B"}`, "B"},
		{`{"customer": "C"}`, "C"},
		{`{"receiver": "D"}`, "D"},
		{`{"name": "", "receiver": "E"}`, "E"},
		{`{}`, ""},
	}
	for _, tc := range cases {
		p, err := ParsePayload(tc.json)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.json, err)
		}
		if p.CustomerName != tc.want {
			t.Errorf("%s: customer name = %q, want %q", tc.json, p.CustomerName, tc.want)
		}
	}
}

func TestParsePayloadLooseTypes(t *testing.T) {
	p, err := ParsePayload(`{"pincode": 560001, "amount": "1,250".`)
	if err == nil {
		t.Fatal("truncated json must fail")
	}

	p, err = ParsePayload(`{"pincode": 560001, "amount": "750", "phone": 9876543210}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Pincode != "560001" {
		t.Fatalf("numeric pincode = %q, want string form", p.Pincode)
	}
	if p.Amount != 750 {
		t.Fatalf("string amount = %v, want 750", p.Amount)
	}
	if p.Phone != "9876543210" {
		t.Fatalf("numeric phone = %q", p.Phone)
	}
}

func TestParsePayloadNotJSON(t *testing.T) {
	if _, err := ParsePayload("I could not read the image, sorry."); err == nil {
		t.Fatal("prose reply must fail to parse")
	}
}

func TestParsePayloadDefaultsToCOD(t *testing.T) {
	p, err := ParsePayload(`{"customer_name": "A", "is_prepaid": "yes"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Prepaid {
		t.Fatal("non-boolean is_prepaid must not mark the order prepaid")
	}
	if p.Fields().PaymentMode != internal.PaymentCOD {
		t.Fatal("payment mode must default to COD")
	}
}
