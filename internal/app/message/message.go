/*
Package message implements the durable, time-ordered message log.

Every direct message is appended here before any live delivery is attempted.
Content is stored exactly as received from the sender, which means it is
ciphertext: the server never holds a message in plaintext.
*/
package message

import "time"

// Message is one stored direct message. Records are immutable once appended;
// nothing in the system updates or deletes them.
type Message struct {
	// ID is the server-assigned unique identifier.
	ID string `json:"id"`

	// Sender and Recipient are user names, always non-empty and distinct.
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`

	// Content is the transit-encrypted message body.
	Content string `json:"content"`

	// Timestamp is the server-assigned creation instant (UTC).
	Timestamp time.Time `json:"timestamp"`

	// Seq is the insertion order assigned by the repository, used only to
	// break ordering ties between equal timestamps.
	Seq int64 `json:"-"`
}
