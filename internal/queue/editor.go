package queue

import (
	"context"
	"strconv"
	"strings"

	"instalabel/internal"
	"instalabel/internal/util"
)

// Editable field names, matching the oracle's payload keys.
const (
	FieldCustomerName = "customer_name"
	FieldPhone        = "phone"
	FieldAddress      = "address"
	FieldCity         = "city"
	FieldPincode      = "pincode"
	FieldAmount       = "amount"
	FieldItems        = "items"
	FieldPaymentMode  = "payment_mode"
)

// SetField edits one field of the currently selected entry. Without a
// selection it is a no-op. Status never changes on edit.
func (q *Queue) SetField(ctx context.Context, field, value string) bool {
	q.mu.Lock()
	id := q.selectedID
	q.mu.Unlock()
	if id == "" {
		return false
	}
	return q.SetEntryField(ctx, id, field, value)
}

// SetEntryField applies a merge-by-id update setting exactly one field.
// Editing the phone re-triggers the risk lookup and a 6-character pincode
// re-triggers the postal lookup, both fire and forget.
func (q *Queue) SetEntryField(ctx context.Context, id, field, value string) bool {
	known := true
	ok := q.update(id, func(e *entry) {
		switch field {
		case FieldCustomerName:
			e.fields.CustomerName = value
		case FieldPhone:
			e.fields.Phone = value
		case FieldAddress:
			e.fields.Address = value
		case FieldCity:
			e.fields.City = value
		case FieldPincode:
			e.fields.Pincode = value
		case FieldItems:
			e.fields.Items = value
		case FieldAmount:
			amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err == nil {
				e.fields.Amount = amount
			}
		case FieldPaymentMode:
			if strings.EqualFold(value, string(internal.PaymentPrepaid)) {
				e.fields.PaymentMode = internal.PaymentPrepaid
			} else {
				e.fields.PaymentMode = internal.PaymentCOD
			}
		default:
			known = false
		}
	})
	if !ok || !known {
		return false
	}

	switch field {
	case FieldPhone:
		if len(util.Digits(value)) >= 10 {
			q.scheduleRisk(id, value)
		}
	case FieldPincode:
		if len(value) == 6 {
			q.schedulePostal(ctx, id, value)
		}
	}
	return true
}
