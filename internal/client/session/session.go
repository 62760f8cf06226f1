/*
Package session implements the client-resident reconciler: the state machine
that merges fetched history, live-pushed messages, and the user's own sends
into one consistent per-contact view, tracking unread flags for contacts
that are not currently on screen.
*/
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"dmchat/internal/app/message"
	"dmchat/internal/pkg/cipher"
)

// UnreadablePlaceholder is rendered in place of any message whose content
// fails to decrypt. The failure stays local to that one message.
const UnreadablePlaceholder = "[unreadable message]"

// ErrNoSelection reports a send attempted with no conversation open.
var ErrNoSelection = errors.New("session: no contact selected")

// HistoryFetcher is the slice of the REST client the reconciler depends on.
type HistoryFetcher interface {
	History(ctx context.Context, contact string) ([]message.Message, error)
}

// Sender is the slice of the realtime connection the reconciler depends on.
type Sender interface {
	Send(recipient, ciphertext string) error
}

// Entry is one displayed message: decrypted content plus the stored metadata.
type Entry struct {
	ID         string
	Sender     string
	Recipient  string
	Text       string
	Timestamp  time.Time
	Unreadable bool
}

// Session holds the per-session reconciler state. Every transition
// (SelectContact, HandleLivePush, Send) is applied as a discrete step under
// one mutex, so transitions never interleave even though fetches and pushes
// arrive asynchronously.
type Session struct {
	self   string
	api    HistoryFetcher
	out    Sender
	cipher *cipher.Cipher

	mu       sync.Mutex
	selected string
	entries  []Entry
	unread   map[string]bool

	// fetchSeq is the stale-response guard: each SelectContact bumps it, and
	// a resolving fetch whose generation no longer matches is discarded.
	fetchSeq uint64

	// fetching marks an in-flight history fetch for the current selection.
	// Pushes for the open conversation queue here until the fetch resolves.
	fetching bool
	queued   []message.Message

	now func() time.Time
}

// New constructs a Session for the named user.
func New(self string, api HistoryFetcher, out Sender, c *cipher.Cipher) *Session {
	return &Session{
		self:   self,
		api:    api,
		out:    out,
		cipher: c,
		unread: make(map[string]bool),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SelectContact opens the conversation with contact: it clears the contact's
// unread flag immediately, then fetches and decrypts history. If the
// selection changed while the fetch was in flight, the stale result is
// discarded without touching state. Pushes that arrived during the fetch are
// applied afterward in arrival order, deduplicated against the fetched
// history by message id.
func (s *Session) SelectContact(ctx context.Context, contact string) error {
	s.mu.Lock()
	s.selected = contact
	s.unread[contact] = false
	s.fetchSeq++
	generation := s.fetchSeq
	s.fetching = true
	s.queued = nil
	s.mu.Unlock()

	history, err := s.api.History(ctx, contact)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fetchSeq != generation {
		// A newer selection owns the view now.
		return nil
	}
	s.fetching = false

	if err != nil {
		// A failed fetch leaves the already-rendered state in place, but
		// pushes that raced it belong to the current selection and are
		// appended so they are not lost with the fetch.
		for _, m := range s.queued {
			s.entries = append(s.entries, s.entryFrom(m))
		}
		s.queued = nil
		return err
	}

	entries := make([]Entry, 0, len(history))
	seen := make(map[string]struct{}, len(history))
	for _, m := range history {
		entries = append(entries, s.entryFrom(m))
		seen[m.ID] = struct{}{}
	}

	for _, m := range s.queued {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		entries = append(entries, s.entryFrom(m))
	}
	s.queued = nil

	s.entries = entries
	return nil
}

// HandleLivePush applies one pushed message. A push from a contact other
// than the selected one flags that contact unread; a push belonging to the
// open conversation is appended (or queued while a history fetch is in
// flight, so it is not lost to the fetch's replacement of the view).
func (s *Session) HandleLivePush(m message.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.Sender != s.self && m.Sender != s.selected {
		s.unread[m.Sender] = true
	}

	if s.selected == "" {
		return
	}

	if m.Sender == s.selected || m.Recipient == s.selected {
		if s.fetching {
			s.queued = append(s.queued, m)
			return
		}
		s.entries = append(s.entries, s.entryFrom(m))
	}
}

// Send encrypts text, emits the send event for the selected contact, and
// optimistically appends the plaintext echo without waiting for the server.
// There is no rollback on a later delivery failure; the echo stands.
func (s *Session) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == "" {
		return ErrNoSelection
	}

	ciphertext, err := s.cipher.Encrypt(text)
	if err != nil {
		return err
	}

	if err := s.out.Send(s.selected, ciphertext); err != nil {
		return err
	}

	s.entries = append(s.entries, Entry{
		Sender:    s.self,
		Recipient: s.selected,
		Text:      text,
		Timestamp: s.now(),
	})

	return nil
}

// Selected returns the currently open contact, empty when none.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Messages returns a copy of the open conversation, ordered as displayed.
func (s *Session) Messages() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// HasUnread reports whether the named contact has unseen messages. The
// selected contact never does.
func (s *Session) HasUnread(contact string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread[contact]
}

// entryFrom decrypts one stored message for display. A decrypt failure
// renders the unreadable placeholder instead of propagating.
func (s *Session) entryFrom(m message.Message) Entry {
	e := Entry{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Timestamp: m.Timestamp,
	}

	text, err := s.cipher.Decrypt(m.Content)
	if err != nil {
		e.Text = UnreadablePlaceholder
		e.Unreadable = true
		return e
	}

	e.Text = text
	return e
}
