// Package model defines the core memory data types.
package model

import "time"

// Memory is a single remembered fact extracted from a conversation.
type Memory struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Keywords  []string   `json:"keywords"`
	Character string     `json:"character,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// Entry is a raw lore entry as held by the persistent record store.
// Comment follows the "label | timestamp" convention.
type Entry struct {
	ID             string     `json:"id"`
	Namespace      string     `json:"namespace"`
	Comment        string     `json:"comment"`
	Keywords       []string   `json:"keywords"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	AccessCount    int        `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

// Turn is one message of the chat history.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// NoticeKind classifies a user-visible notification.
type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)
