package notify

import (
	"fmt"
	"net/url"

	"instalabel/internal"
	"instalabel/internal/util"
)

// WhatsAppLink builds a wa.me deep link with a canned shipping message for
// one order. Bare 10-digit numbers get the country code prefixed.
func WhatsAppLink(order internal.OrderRecord, countryCode string) string {
	phone := util.Digits(order.Fields.Phone)
	if len(phone) == 10 {
		phone = countryCode + phone
	}

	items := order.Fields.Items
	if items == "" {
		items = "items"
	}
	text := fmt.Sprintf(
		"Hi %s!\n\nThanks for your order of %s.\nYour parcel is packed and ready to ship!\n\nTotal %s Amount: Rs. %.0f\n\nThanks for shopping with us!",
		order.Fields.CustomerName, items, order.Fields.PaymentMode, order.Fields.Amount,
	)

	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(text)
}
