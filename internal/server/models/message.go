// Package models defines the persistent data model of the transfery feed:
// messages, remembered devices and multipart-upload parts.
package models

// MessageType discriminates feed entries.
type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeFile MessageType = "file"
)

// Message is a single feed entry. ID is assigned by the database on insert
// and establishes the total order used by sync cursors. Timestamp is the
// client-supplied display time in milliseconds since epoch; it may diverge
// from ID order.
//
// FileName and IsComplete are only meaningful for file messages. A file
// message with IsComplete == false exists in the feed but is not yet
// downloadable.
type Message struct {
	ID         int64       `json:"id"`
	Content    string      `json:"content"`
	Timestamp  int64       `json:"timestamp"`
	IsPrivate  bool        `json:"isPrivate"`
	Type       MessageType `json:"type"`
	FileName   *string     `json:"fileName,omitempty"`
	IsComplete *bool       `json:"isComplete,omitempty"`
}
