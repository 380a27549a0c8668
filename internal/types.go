package internal

// EntryStatus tracks extraction progress of one queue entry. It is distinct
// from the fulfillment status stored on committed orders.
type EntryStatus string

const (
	EntryPending    EntryStatus = "pending"
	EntryProcessing EntryStatus = "processing"
	EntryDone       EntryStatus = "done"
	EntryError      EntryStatus = "error"
)

type PaymentMode string

const (
	PaymentCOD     PaymentMode = "COD"
	PaymentPrepaid PaymentMode = "Prepaid"
)

// Fulfillment statuses of a persisted order.
const (
	OrderPending  = "pending"
	OrderShipped  = "shipped"
	OrderReturned = "returned"
)

// Document is one uploaded source artifact of an order: a screenshot or a
// chat export. TextHint carries the text layer of PDF inputs and is passed
// to the oracle alongside the raw bytes.
type Document struct {
	Name     string
	MIME     string
	Data     []byte
	TextHint string
}

// OrderFields is the editable field set of a queue entry and the payload of
// a committed order record.
type OrderFields struct {
	CustomerName string
	Phone        string
	Address      string
	City         string
	Pincode      string
	Amount       float64
	Items        string
	PaymentMode  PaymentMode
}

// RiskInfo summarizes the return history found for a phone number. Nil
// means no history was found, or the number was never checked.
type RiskInfo struct {
	PastOrders  int
	PastReturns int
}

type StoreProfile struct {
	StoreName    string
	StoreAddress string
	StorePhone   string
}

type OrderRecord struct {
	ID             int64
	UserID         string
	ScreenshotRefs []string
	Fields         OrderFields
	Status         string
	CreatedAt      string
}

// MailRow mirrors one row of the intake_mail dedupe table.
type MailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

// FetchedMailMessage is one raw message pulled from a mailbox connector.
type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
