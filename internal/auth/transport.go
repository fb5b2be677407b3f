package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// ErrAuthenticationFailed is returned once a refresh attempt has also
// failed (or no refresh token exists). The session is cleared before the
// error is raised; redirecting to a login surface is the caller's job.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Transport wraps an HTTP client with bearer-token injection and the
// 401-triggered refresh-and-retry-once protocol.
type Transport struct {
	client     *http.Client
	store      *Store
	refreshURL string
}

// NewTransport wraps the given client. refreshURL is the full URL of the
// token refresh endpoint.
func NewTransport(client *http.Client, store *Store, refreshURL string) *Transport {
	return &Transport{
		client:     client,
		store:      store,
		refreshURL: refreshURL,
	}
}

// Do issues the request with the current access token. On a 401 it
// refreshes the token pair once and retries the request exactly once; the
// retry's response is final. Any non-401 response is returned as-is.
func (t *Transport) Do(request *http.Request) (*http.Response, error) {
	pair, err := t.store.Tokens()
	if err != nil {
		return nil, errors.Wrap(err, "reading tokens")
	}
	if pair != nil && request.Header.Get("Authorization") == "" {
		request.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	response, err := t.client.Do(request)
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusUnauthorized {
		return response, nil
	}

	if pair == nil || pair.RefreshToken == "" {
		response.Body.Close()
		return nil, t.fail()
	}

	refreshed, err := t.refresh(request.Context(), pair.RefreshToken)
	if err != nil {
		response.Body.Close()
		return nil, t.fail()
	}
	if err := t.store.Save(refreshed); err != nil {
		response.Body.Close()
		return nil, errors.Wrap(err, "saving refreshed tokens")
	}

	retry, err := cloneRequest(request)
	if err != nil {
		response.Body.Close()
		return nil, err
	}
	retry.Header.Set("Authorization", "Bearer "+refreshed.AccessToken)
	response.Body.Close()
	return t.client.Do(retry)
}

// fail clears the session and raises ErrAuthenticationFailed.
func (t *Transport) fail() error {
	if err := t.store.Clear(); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return ErrAuthenticationFailed
}

// refresh exchanges the refresh token for a new pair.
func (t *Transport) refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, errors.Wrap(err, "marshaling refresh request")
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building refresh request")
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := t.client.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "calling refresh endpoint")
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("refresh endpoint returned %d", response.StatusCode)
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decoding refresh response")
	}
	if payload.AccessToken == "" {
		return nil, errors.New("refresh response missing access token")
	}
	return &TokenPair{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}, nil
}

// cloneRequest rebuilds a request so its body can be sent again.
func cloneRequest(request *http.Request) (*http.Request, error) {
	clone := request.Clone(request.Context())
	if request.Body == nil || request.GetBody == nil {
		return clone, nil
	}
	body, err := request.GetBody()
	if err != nil {
		return nil, errors.Wrap(err, "rewinding request body")
	}
	clone.Body = body
	return clone, nil
}

// Drain exhausts and closes a response body so the connection can be
// reused.
func Drain(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
