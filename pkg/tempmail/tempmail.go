// Package tempmail holds the domain types and error taxonomy shared by the tempbucket packages.
package tempmail

// Fallback values for MessageDetail fields the upstream did not provide.
const (
	DefaultSender    = "Unknown"
	DefaultSubject   = "No Subject"
	DefaultTimestamp = "Unknown Time"
)

// DefaultKind is the address kind requested when the caller does not name one.
const DefaultKind = "dotGmail"

// EmailAddress is a disposable address produced by the upstream.
type EmailAddress string

// String returns the address as a plain string.
func (a EmailAddress) String() string {
	return string(a)
}

// MessageSummary is one entry of a mailbox listing, passed through as the upstream returned it.
type MessageSummary map[string]interface{}

// MessageDetail is the normalized content of a single message.
type MessageDetail struct {
	Sender      string
	Subject     string
	Timestamp   string
	CleanedText string
	RawPayload  string
}
