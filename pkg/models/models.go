package models

import (
	"encoding/json"
	"strings"
)

// Domain models matching the database schema in db/migrations/0001_init.sql

type User struct {
	ID              int64  `json:"id" db:"id"`
	Username        string `json:"username" db:"username" validate:"required"`
	Email           string `json:"email" db:"email" validate:"required,email"`
	PasswordHash    string `json:"-" db:"password_hash"`
	ProfileImageURL string `json:"profile_image_url,omitempty" db:"profile_image_url"`
	Created         int64  `json:"created_at" db:"created_at"`
	Updated         int64  `json:"updated_at" db:"updated_at"`
}

// Session groups the questions prepared for one target role. The user
// reference is set at creation and never changes.
type Session struct {
	ID            int64  `json:"id" db:"id"`
	UserID        int64  `json:"user_id" db:"user_id"`
	Role          string `json:"role" db:"role" validate:"required"`
	Experience    string `json:"experience" db:"experience" validate:"required"`
	TopicsToFocus string `json:"topics_to_focus" db:"topics_to_focus" validate:"required"`
	Description   string `json:"description,omitempty" db:"description"`
	Created       int64  `json:"created_at" db:"created_at"`
	Updated       int64  `json:"updated_at" db:"updated_at"`

	// Questions is populated on reads; the store keeps only the link rows.
	Questions []Question `json:"questions,omitempty" db:"-"`
}

// Question belongs to exactly one session. Answer is opaque at the storage
// layer; use DecodeAnswer to interpret it.
type Question struct {
	ID        int64  `json:"id" db:"id"`
	SessionID int64  `json:"session_id" db:"session_id"`
	Question  string `json:"question" db:"question"`
	Answer    string `json:"answer" db:"answer"`
	IsPinned  bool   `json:"is_pinned" db:"is_pinned"`
	Note      string `json:"note" db:"note"`
	Created   int64  `json:"created_at" db:"created_at"`
	Updated   int64  `json:"updated_at" db:"updated_at"`
}

// GeneratedQuestion is one item produced by the content generation client.
// Ordinals are 1-based and follow provider response order.
type GeneratedQuestion struct {
	Ordinal int    `json:"ordinal"`
	Text    string `json:"question"`
}

// Explanation is the structured teaching payload generated for a question.
type Explanation struct {
	Title         string   `json:"title"`
	Explanation   string   `json:"explanation"`
	KeyPoints     []string `json:"keyPoints"`
	Examples      []string `json:"examples"`
	BestPractices []string `json:"bestPractices"`
}

// AnswerKind discriminates the two shapes an answer can take.
type AnswerKind string

const (
	AnswerPlain      AnswerKind = "plain"
	AnswerStructured AnswerKind = "structured"
)

// Answer is the decoded form of a question's answer field: either free-form
// text or a structured explanation. The store never sees this type.
type Answer struct {
	Kind       AnswerKind   `json:"kind"`
	Text       string       `json:"text,omitempty"`
	Structured *Explanation `json:"structured,omitempty"`
}

// EncodeAnswer serializes an answer back to the opaque storage form.
func EncodeAnswer(a Answer) (string, error) {
	if a.Kind == AnswerStructured && a.Structured != nil {
		b, err := json.Marshal(a.Structured)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return a.Text, nil
}

// DecodeAnswer interprets the opaque answer column. A value that parses as a
// JSON object carrying the explanation fields is structured; anything else,
// including the empty string, is plain text.
func DecodeAnswer(raw string) Answer {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "{") {
		return Answer{Kind: AnswerPlain, Text: raw}
	}

	var e Explanation
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return Answer{Kind: AnswerPlain, Text: raw}
	}
	if e.Title == "" && e.Explanation == "" && len(e.KeyPoints) == 0 {
		return Answer{Kind: AnswerPlain, Text: raw}
	}

	return Answer{Kind: AnswerStructured, Structured: &e}
}

// Job is a queued background task (bulk answer generation, orphan sweeps).
type Job struct {
	ID          int64           `json:"id" db:"id"`
	Type        string          `json:"type" db:"type"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	Status      string          `json:"status" db:"status"`
	Attempts    int             `json:"attempts" db:"attempts"`
	MaxAttempts int             `json:"max_attempts" db:"max_attempts"`
	LastError   string          `json:"last_error,omitempty" db:"last_error"`
	Created     int64           `json:"created_at" db:"created_at"`
	Updated     int64           `json:"updated_at" db:"updated_at"`
}
