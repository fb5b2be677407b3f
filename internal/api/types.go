package api

import (
	"time"

	"github.com/agenthub/hubchat/engine"
)

// Wire payloads, field names as the backend serves them.

type chatSummaryPayload struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	TotalQueries int       `json:"total_queries"`
}

type chatPayload struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Title     string          `json:"title"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Queries   []*queryPayload `json:"queries"`
}

type queryPayload struct {
	ID             string                 `json:"id"`
	ChatID         string                 `json:"chat_id"`
	Message        string                 `json:"message"`
	Response       string                 `json:"response"`
	AgentUsed      string                 `json:"agent_used"`
	TokenUsage     map[string]int         `json:"token_usage"`
	FilesUploaded  []uploadedFilePayload  `json:"files_uploaded"`
	SelectedAgents []string               `json:"selected_agents"`
	Status         string                 `json:"status"`
	ErrorMessage   string                 `json:"error_message"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type uploadedFilePayload struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type paginatedChatsPayload struct {
	Items []*chatSummaryPayload `json:"items"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Size  int                   `json:"size"`
	Pages int                   `json:"pages"`
}

type paginatedQueriesPayload struct {
	Items []*queryPayload `json:"items"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
	Pages int             `json:"pages"`
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type errorPayload struct {
	Detail string `json:"detail"`
}

func (p *chatSummaryPayload) toDomain() *engine.Chat {
	return &engine.Chat{
		ID:           p.ID,
		Title:        p.Title,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		TotalQueries: p.TotalQueries,
	}
}

func (p *chatPayload) toDomain() *engine.Chat {
	queries := make([]*engine.Query, 0, len(p.Queries))
	for _, query := range p.Queries {
		queries = append(queries, query.toDomain())
	}
	return &engine.Chat{
		ID:           p.ID,
		Title:        p.Title,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		TotalQueries: len(queries),
		Queries:      queries,
	}
}

func (p *queryPayload) toDomain() *engine.Query {
	files := make([]engine.UploadedFile, 0, len(p.FilesUploaded))
	for _, file := range p.FilesUploaded {
		files = append(files, engine.UploadedFile{
			ID:         file.ID,
			Name:       file.Name,
			UploadedAt: file.UploadedAt,
		})
	}
	return &engine.Query{
		ID:             p.ID,
		ChatID:         p.ChatID,
		Message:        p.Message,
		Response:       p.Response,
		AgentUsed:      p.AgentUsed,
		SelectedAgents: p.SelectedAgents,
		TokenUsage:     p.TokenUsage,
		Status:         queryStatus(p.Status, p.Response),
		ErrorMessage:   p.ErrorMessage,
		FilesUploaded:  files,
		CreatedAt:      p.CreatedAt,
	}
}

// queryStatus maps the wire status. Older payloads omit it; a query with a
// non-empty response counts as completed.
func queryStatus(status, response string) engine.QueryStatus {
	switch status {
	case "pending":
		return engine.QueryStatusPending
	case "completed":
		return engine.QueryStatusCompleted
	case "failed":
		return engine.QueryStatusFailed
	}
	if response != "" {
		return engine.QueryStatusCompleted
	}
	return engine.QueryStatusPending
}
