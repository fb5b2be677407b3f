package engine

import (
	"time"

	"github.com/google/uuid"
)

// QueryStatus is the lifecycle state of a query.
type QueryStatus string

const (
	// QueryStatusPending marks a query awaiting its server outcome.
	QueryStatusPending QueryStatus = "pending"
	// QueryStatusCompleted marks a query that received a response.
	QueryStatusCompleted QueryStatus = "completed"
	// QueryStatusFailed marks a query whose send failed.
	QueryStatusFailed QueryStatus = "failed"
)

// UploadedFile describes an attachment carried by a query.
type UploadedFile struct {
	ID         string
	Name       string
	UploadedAt time.Time
}

// Query is a single prompt/response exchange within a chat.
// A query is never mutated field by field after creation: reconciliation
// substitutes a whole new value at the same position.
type Query struct {
	// ID is client-generated for optimistic entries and replaced by the
	// server id on reconciliation.
	ID             string
	ChatID         string
	Message        string
	Response       string
	AgentUsed      string
	SelectedAgents []string
	TokenUsage     map[string]int
	Status         QueryStatus
	ErrorMessage   string
	FilesUploaded  []UploadedFile
	CreatedAt      time.Time
}

// Chat holds a conversation and the window of queries loaded for it.
type Chat struct {
	// ID is server-assigned. Empty for the unsaved temp chat.
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	// TotalQueries is a running counter adjusted by deltas rather than
	// re-derived from len(Queries), to tolerate partial pagination.
	TotalQueries int
	// Queries in insertion order. Never contains two entries with the
	// same ID.
	Queries []*Query
}

// newPendingQuery synthesizes the optimistic placeholder shown before the
// server responds.
func newPendingQuery(chatID, message string) *Query {
	return &Query{
		ID:        uuid.New().String()[:8],
		ChatID:    chatID,
		Message:   message,
		Status:    QueryStatusPending,
		CreatedAt: time.Now(),
	}
}

// failedFrom turns a placeholder into its failed outcome, keeping the
// placeholder id and message so the failure renders where the pending
// bubble was.
func failedFrom(placeholder *Query, err error) *Query {
	return &Query{
		ID:           placeholder.ID,
		ChatID:       placeholder.ChatID,
		Message:      placeholder.Message,
		Status:       QueryStatusFailed,
		ErrorMessage: err.Error(),
		CreatedAt:    placeholder.CreatedAt,
	}
}

// copyChat returns a snapshot of a chat. Query pointers are shared: queries
// are immutable once created, only the containing slice changes.
func copyChat(chat *Chat) *Chat {
	queries := make([]*Query, len(chat.Queries))
	copy(queries, chat.Queries)
	copied := *chat
	copied.Queries = queries
	return &copied
}
