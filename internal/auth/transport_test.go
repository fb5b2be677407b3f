package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport(t *testing.T) {
	t.Run("injects the bearer token", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save(&TokenPair{AccessToken: "access", RefreshToken: "refresh"}))

		var authorization string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization = r.Header.Get("Authorization")
		}))
		defer server.Close()

		transport := NewTransport(server.Client(), store, server.URL+"/auth/refresh")
		request, err := http.NewRequest(http.MethodGet, server.URL+"/chats/", nil)
		require.NoError(t, err)
		response, err := transport.Do(request)
		require.NoError(t, err)
		response.Body.Close()

		assert.Equal(t, "Bearer access", authorization)
	})

	t.Run("never overwrites a caller-supplied header", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save(&TokenPair{AccessToken: "access", RefreshToken: "refresh"}))

		var authorization string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization = r.Header.Get("Authorization")
		}))
		defer server.Close()

		transport := NewTransport(server.Client(), store, server.URL+"/auth/refresh")
		request, err := http.NewRequest(http.MethodGet, server.URL+"/chats/", nil)
		require.NoError(t, err)
		request.Header.Set("Authorization", "Bearer caller-owned")
		response, err := transport.Do(request)
		require.NoError(t, err)
		response.Body.Close()

		assert.Equal(t, "Bearer caller-owned", authorization)
	})

	t.Run("passes unauthenticated requests through", func(t *testing.T) {
		store := newTestStore(t)

		var authorization string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization = r.Header.Get("Authorization")
		}))
		defer server.Close()

		transport := NewTransport(server.Client(), store, server.URL+"/auth/refresh")
		request, err := http.NewRequest(http.MethodGet, server.URL+"/chats/", nil)
		require.NoError(t, err)
		response, err := transport.Do(request)
		require.NoError(t, err)
		response.Body.Close()

		assert.Empty(t, authorization)
	})

	t.Run("refreshes once on 401 and retries with the new token", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save(&TokenPair{AccessToken: "stale", RefreshToken: "refresh"}))

		var refreshCalls int
		var retryAuthorization string
		var retryBody string
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			refreshCalls++
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "refresh", payload["refresh_token"])
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "fresh",
				"refresh_token": "fresh-refresh",
				"token_type":    "bearer",
				"expires_in":    3600,
			})
		})
		mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			retryAuthorization = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			retryBody = string(raw)
			w.Write([]byte("ok"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		transport := NewTransport(server.Client(), store, server.URL+"/auth/refresh")
		request, err := http.NewRequest(http.MethodPost, server.URL+"/protected", bytes.NewReader([]byte("payload")))
		require.NoError(t, err)

		response, err := transport.Do(request)
		require.NoError(t, err)
		defer response.Body.Close()

		assert.Equal(t, http.StatusOK, response.StatusCode)
		assert.Equal(t, 1, refreshCalls)
		assert.Equal(t, "Bearer fresh", retryAuthorization)
		// The body was replayed on the retry.
		assert.Equal(t, "payload", retryBody)

		pair, err := store.Tokens()
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.Equal(t, "fresh", pair.AccessToken)
		assert.Equal(t, "fresh-refresh", pair.RefreshToken)
	})

	t.Run("401 without a refresh token clears the session", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save(&TokenPair{AccessToken: "stale"}))

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		transport := NewTransport(server.Client(), store, server.URL+"/auth/refresh")
		request, err := http.NewRequest(http.MethodGet, server.URL+"/protected", nil)
		require.NoError(t, err)

		_, err = transport.Do(request)
		assert.ErrorIs(t, err, ErrAuthenticationFailed)

		pair, err := store.Tokens()
		require.NoError(t, err)
		assert.Nil(t, pair)
	})

	t.Run("failed refresh clears the session", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save(&TokenPair{AccessToken: "stale", RefreshToken: "revoked"}))

		mux := http.NewServeMux()
		mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		transport := NewTransport(server.Client(), store, server.URL+"/auth/refresh")
		request, err := http.NewRequest(http.MethodGet, server.URL+"/protected", nil)
		require.NoError(t, err)

		_, err = transport.Do(request)
		assert.ErrorIs(t, err, ErrAuthenticationFailed)

		pair, err := store.Tokens()
		require.NoError(t, err)
		assert.Nil(t, pair)
	})

	t.Run("retries exactly once", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save(&TokenPair{AccessToken: "stale", RefreshToken: "refresh"}))

		var protectedCalls int
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "fresh",
				"refresh_token": "fresh-refresh",
			})
		})
		mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
			protectedCalls++
			// Still unauthorized after the refresh.
			w.WriteHeader(http.StatusUnauthorized)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		transport := NewTransport(server.Client(), store, server.URL+"/auth/refresh")
		request, err := http.NewRequest(http.MethodGet, server.URL+"/protected", nil)
		require.NoError(t, err)

		response, err := transport.Do(request)
		require.NoError(t, err)
		response.Body.Close()

		// The retry's response is final, no loop.
		assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
		assert.Equal(t, 2, protectedCalls)
	})

	t.Run("non-401 errors pass through untouched", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Save(&TokenPair{AccessToken: "access", RefreshToken: "refresh"}))

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		transport := NewTransport(server.Client(), store, server.URL+"/auth/refresh")
		request, err := http.NewRequest(http.MethodGet, server.URL+"/protected", nil)
		require.NoError(t, err)

		response, err := transport.Do(request)
		require.NoError(t, err)
		response.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, response.StatusCode)
		pair, err := store.Tokens()
		require.NoError(t, err)
		assert.NotNil(t, pair)
	})
}
