// Package chat defines the transport-neutral shapes exchanged between the
// conversation core and the messenger: inbound events, outbound messages and
// the limits the messenger enforces on them.
package chat

import "context"

// EventKind classifies an inbound event.
type EventKind int

const (
	EventText EventKind = iota + 1
	EventAttachment
	EventButton
	// EventOther is any content that is neither text nor a usable attachment,
	// such as voice, stickers, contacts or locations.
	EventOther
)

// MediaKind is the kind of an attachment or outbound media message.
type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaDocument MediaKind = "document"
)

// Attachment references media uploaded by a user. Ref is opaque and resolved
// back to bytes by the transport.
type Attachment struct {
	Ref  string
	Kind MediaKind
}

// Event is one inbound update from a user.
type Event struct {
	UserID int64
	Handle string
	Kind   EventKind

	Text       string
	Attachment *Attachment

	// Action and Payload are set for button presses.
	Action  string
	Payload string
}

// MessageKind selects how an outbound message is rendered.
type MessageKind int

const (
	KindText MessageKind = iota
	KindPhoto
	KindDocument
)

// Button is an inline control. Action routes the press, Payload is echoed back.
type Button struct {
	Text    string
	Action  string
	Payload string
}

// Message is one outbound message.
type Message struct {
	To   int64
	Kind MessageKind
	// Text is the body for text messages and the caption for media.
	Text string
	// Ref is the media reference: a transport file id, URL or local path.
	Ref      string
	Markdown bool
	// Replace asks the transport to edit the message that triggered the event
	// instead of sending a new one, when possible.
	Replace  bool
	Controls [][]Button
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Text builds a plain text message.
func Text(to int64, text string) Message {
	return Message{To: to, Kind: KindText, Text: text}
}

// Media builds a photo or document message from an attachment reference.
func Media(to int64, kind MediaKind, ref, caption string) Message {
	k := KindPhoto
	if kind == MediaDocument {
		k = KindDocument
	}
	return Message{To: to, Kind: k, Ref: ref, Text: caption}
}

// WithControls returns a copy of m with the given rows of buttons.
func (m Message) WithControls(rows ...[]Button) Message {
	m.Controls = rows
	return m
}

// AsMarkdown returns a copy of m rendered with Markdown.
func (m Message) AsMarkdown() Message {
	m.Markdown = true
	return m
}

// Replacing returns a copy of m that edits the triggering message.
func (m Message) Replacing() Message {
	m.Replace = true
	return m
}
