package meetings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_AddParticipant(t *testing.T) {
	req := require.New(t)

	var gotMethod, gotPath, gotAuth string
	var gotBody participantPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		req.NoError(json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Token: "secret-token"})

	err := client.AddParticipant(context.Background(), "meeting-1", "user-a", "Alice")
	req.NoError(err)

	req.Equal(http.MethodPost, gotMethod)
	req.Equal("/api/meetings/meeting-1/participants", gotPath)
	req.Equal("Bearer secret-token", gotAuth)
	req.Equal("user-a", gotBody.UserID)
	req.Equal("Alice", gotBody.Name)
}

func TestClient_RemoveParticipant(t *testing.T) {
	req := require.New(t)

	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	err := client.RemoveParticipant(context.Background(), "meeting-1", "user-a", "Alice")
	req.NoError(err)

	req.Equal(http.MethodDelete, gotMethod)
	req.Equal("/api/meetings/meeting-1/participants/user-a", gotPath)
}

func TestClient_Non2xx_Is_Error(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	err := client.AddParticipant(context.Background(), "meeting-1", "user-a", "Alice")
	req.Error(err)
	req.Contains(err.Error(), "403")
}

func TestClient_Escapes_Path_Segments(t *testing.T) {
	req := require.New(t)

	var gotEscapedPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEscapedPath = r.URL.EscapedPath()
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	err := client.RemoveParticipant(context.Background(), "meeting/1", "user a", "Alice")
	req.NoError(err)
	req.Equal("/api/meetings/meeting%2F1/participants/user%20a", gotEscapedPath)
}

func TestClient_No_Token_No_Auth_Header(t *testing.T) {
	req := require.New(t)

	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	req.NoError(client.AddParticipant(context.Background(), "m", "u", "n"))
	req.Empty(gotAuth)
}
