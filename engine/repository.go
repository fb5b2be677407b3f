package engine

import "context"

// SendRequest carries a user message into a chat. ChatID is empty when
// starting a new conversation.
type SendRequest struct {
	ChatID  string
	Message string
	// Files are local paths uploaded alongside the message.
	Files []string
	// Agents to route the message to.
	Agents []string
	// SyncCounts opts the optimistic append into TotalQueries bookkeeping.
	SyncCounts bool
}

// Repository performs the raw CRUD calls against the backend and maps wire
// payloads to domain entities.
type Repository interface {
	// ListChats returns the full chat list, without queries.
	ListChats(ctx context.Context) ([]*Chat, error)
	// GetChat returns a single chat hydrated with its queries.
	GetChat(ctx context.Context, id string) (*Chat, error)
	// ListChatQueries returns one page of a chat's queries.
	ListChatQueries(ctx context.Context, chatID string, page int) ([]*Query, error)
	// CreateChat starts a new conversation with the request's message and
	// returns the resulting query, whose ChatID names the new chat. A nil
	// query with a nil error is a degraded success: the server accepted
	// but returned nothing usable.
	CreateChat(ctx context.Context, request *SendRequest) (*Query, error)
	// SendQuery sends a message into an existing chat and returns the
	// resulting query. A nil query with a nil error is a silent no-op.
	SendQuery(ctx context.Context, request *SendRequest) (*Query, error)
	// DeleteChat deletes a chat and all its queries.
	DeleteChat(ctx context.Context, id string) error
}
