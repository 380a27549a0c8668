package oracle

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"instalabel/internal"
)

// Payload is the structured result of one extraction call. Every field is
// independently defaulted: partial extraction is the common case and the
// operator fixes the rest by hand.
type Payload struct {
	CustomerName string
	Phone        string
	Address      string
	City         string
	Pincode      string
	Amount       float64
	Items        string
	Prepaid      bool
}

func (p Payload) Fields() internal.OrderFields {
	mode := internal.PaymentCOD
	if p.Prepaid {
		mode = internal.PaymentPrepaid
	}
	return internal.OrderFields{
		CustomerName: p.CustomerName,
		Phone:        p.Phone,
		Address:      p.Address,
		City:         p.City,
		Pincode:      p.Pincode,
		Amount:       p.Amount,
		Items:        p.Items,
		PaymentMode:  mode,
	}
}

// ParsePayload parses the model's reply. The model has no schema guarantee,
// so keys are resolved defensively: the customer name falls back through
// alternate key names, numbers may arrive as strings and strings as numbers.
func ParsePayload(text string) (Payload, error) {
	cleaned := stripFences(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return Payload{}, fmt.Errorf("unparseable extraction payload: %w", err)
	}

	payload := Payload{
		CustomerName: firstString(raw, "customer_name", "name", "customer", "receiver"),
		Phone:        firstString(raw, "phone"),
		Address:      firstString(raw, "address"),
		City:         firstString(raw, "city"),
		Pincode:      firstString(raw, "pincode"),
		Items:        firstString(raw, "items"),
		Amount:       toNumber(raw["amount"]),
	}
	if prepaid, ok := raw["is_prepaid"].(bool); ok {
		payload.Prepaid = prepaid
	}

	return payload, nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := toString(raw[key]); s != "" {
			return s
		}
	}
	return ""
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func toNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return 0
}
