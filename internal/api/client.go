package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/agenthub/hubchat/engine"
	"github.com/agenthub/hubchat/internal/auth"
)

// chatPageSize is the page size requested when walking the chat list.
const chatPageSize = 100

// Doer issues an HTTP request. Satisfied by *auth.Transport and by
// *http.Client.
type Doer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Client is the REST repository for the Agent Hub backend. Authenticated
// calls go through the refresh-aware transport; the auth endpoints
// themselves use the plain client.
type Client struct {
	host   string
	authed Doer
	plain  *http.Client
}

// NewClient returns a client rooted at host, e.g. "https://hub.example.com".
func NewClient(host string, authed Doer, plain *http.Client) *Client {
	return &Client{
		host:   strings.TrimRight(host, "/"),
		authed: authed,
		plain:  plain,
	}
}

// ListChats walks the paginated chat list to completion.
func (c *Client) ListChats(ctx context.Context) ([]*engine.Chat, error) {
	var chats []*engine.Chat
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/chats/?page=%d&size=%d", c.host, page, chatPageSize)
		var payload paginatedChatsPayload
		if err := c.getJSON(ctx, url, &payload); err != nil {
			return nil, err
		}
		for _, item := range payload.Items {
			chats = append(chats, item.toDomain())
		}
		if page >= payload.Pages || len(payload.Items) == 0 {
			return chats, nil
		}
	}
}

// GetChat fetches one chat with all its queries.
func (c *Client) GetChat(ctx context.Context, id string) (*engine.Chat, error) {
	var payload chatPayload
	if err := c.getJSON(ctx, fmt.Sprintf("%s/chats/%s", c.host, id), &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// ListChatQueries fetches one page of a chat's queries. Page size is fixed
// server-side.
func (c *Client) ListChatQueries(ctx context.Context, chatID string, page int) ([]*engine.Query, error) {
	url := fmt.Sprintf("%s/chats/%s/queries?page=%d", c.host, chatID, page)
	var payload paginatedQueriesPayload
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	queries := make([]*engine.Query, 0, len(payload.Items))
	for _, item := range payload.Items {
		queries = append(queries, item.toDomain())
	}
	return queries, nil
}

// CreateChat starts a new conversation through the multi-agent endpoint.
func (c *Client) CreateChat(ctx context.Context, request *engine.SendRequest) (*engine.Query, error) {
	return c.multiAgentQuery(ctx, request, "")
}

// SendQuery sends a message into an existing chat.
func (c *Client) SendQuery(ctx context.Context, request *engine.SendRequest) (*engine.Query, error) {
	return c.multiAgentQuery(ctx, request, request.ChatID)
}

func (c *Client) multiAgentQuery(ctx context.Context, request *engine.SendRequest, chatID string) (*engine.Query, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("prompt", request.Message); err != nil {
		return nil, errors.Wrap(err, "writing prompt field")
	}
	if len(request.Agents) > 0 {
		if err := writer.WriteField("agent_name", strings.Join(request.Agents, ",")); err != nil {
			return nil, errors.Wrap(err, "writing agent_name field")
		}
	}
	if chatID != "" {
		if err := writer.WriteField("chat_id", chatID); err != nil {
			return nil, errors.Wrap(err, "writing chat_id field")
		}
	}
	for _, path := range request.Files {
		if err := attachFile(writer, path); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "finalizing multipart body")
	}

	url := c.host + "/agents/multi-agent-query"
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	httpRequest.Header.Set("Content-Type", writer.FormDataContentType())

	response, err := c.authed.Do(httpRequest)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, decodeError(response)
	}

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		// Degraded success: accepted with an empty body.
		return nil, nil
	}
	payload := &queryPayload{}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, errors.Wrap(err, "decoding query result")
	}
	if payload.ID == "" && payload.ChatID == "" {
		return nil, nil
	}
	return payload.toDomain(), nil
}

// DeleteChat deletes a chat and all its queries.
func (c *Client) DeleteChat(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/chats/%s", c.host, id)
	request, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	response, err := c.authed.Do(request)
	if err != nil {
		return err
	}
	defer auth.Drain(response.Body)
	if response.StatusCode != http.StatusOK {
		return decodeError(response)
	}
	return nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	return c.tokenCall(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, fullName, email, password string) (*auth.TokenPair, error) {
	return c.tokenCall(ctx, "/auth/signup", map[string]string{
		"full_name": fullName,
		"email":     email,
		"password":  password,
	})
}

// Logout revokes the refresh token server-side.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return errors.Wrap(err, "marshaling logout request")
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/auth/logout", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := c.plain.Do(request)
	if err != nil {
		return err
	}
	defer auth.Drain(response.Body)
	if response.StatusCode != http.StatusOK {
		return decodeError(response)
	}
	return nil
}

func (c *Client) tokenCall(ctx context.Context, path string, fields map[string]string) (*auth.TokenPair, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling request")
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := c.plain.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, decodeError(response)
	}
	var payload tokenPayload
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decoding token response")
	}
	return &auth.TokenPair{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	response, err := c.authed.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return decodeError(response)
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding response")
	}
	return nil
}

func attachFile(writer *multipart.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer file.Close()
	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return errors.Wrap(err, "creating file part")
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.Wrapf(err, "copying %s", path)
	}
	return nil
}

// decodeError turns a non-200 response into an error carrying the
// backend's detail message when present.
func decodeError(response *http.Response) error {
	raw, _ := io.ReadAll(response.Body)
	payload := &errorPayload{}
	if err := json.Unmarshal(raw, payload); err == nil && payload.Detail != "" {
		return errors.Errorf("server returned %d: %s", response.StatusCode, payload.Detail)
	}
	return errors.Errorf("server returned %d", response.StatusCode)
}
