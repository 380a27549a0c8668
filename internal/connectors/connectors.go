package connectors

import "instalabel/internal"

// MailConnector pulls raw messages from a mailbox where customers or the
// operator forward order screenshots.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
