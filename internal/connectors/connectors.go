// Package connectors pulls raw purchase-order emails from a mailbox and
// stores them for processing.
package connectors

import (
	"context"

	"pepco/internal"
)

const (
	ProviderGmail = "gmail"
	ProviderIMAP  = "imap"
)

// MailConnector returns up to max recent messages of a label or folder.
type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error)
}
