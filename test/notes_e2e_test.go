//go:build e2e

package test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotesE2E(t *testing.T) {
	env := SetupTestEnvironment(t)
	testEmail := "noteuser@example.com"
	testPassword := "Password123"
	authToken := setupTestUser(t, env, testEmail, testPassword)
	headers := map[string]string{"Authorization": "Bearer " + authToken}

	var noteAID string

	t.Run("create_note_with_defaults", func(t *testing.T) {
		note := makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint, map[string]any{}, headers, http.StatusCreated)

		assert.Equal(t, "New Note", note["title"])
		assert.Equal(t, "", note["content"])
		assert.Contains(t, note, "id")
		assert.Contains(t, note, "created_at")
		assert.Contains(t, note, "updated_at")
	})

	t.Run("create_note_A", func(t *testing.T) {
		note := makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint, map[string]any{
			"title":   "A",
			"content": "Note A content",
		}, headers, http.StatusCreated)

		assert.Equal(t, "A", note["title"])
		assert.Equal(t, "Note A content", note["content"])

		noteAID = note["id"].(string)
		require.NotEmpty(t, noteAID)
	})

	t.Run("list_is_bare_array_most_recent_first", func(t *testing.T) {
		notes := listNotes(t, env, headers)
		require.Len(t, notes, 2)

		// note A was created last, so it leads
		first := notes[0].(map[string]any)
		assert.Equal(t, noteAID, first["id"])
	})

	t.Run("update_partial_bumps_recency", func(t *testing.T) {
		// touch the default note so A is no longer most recent
		notes := listNotes(t, env, headers)
		older := notes[1].(map[string]any)
		olderID := older["id"].(string)

		updated := makeHTTPRequest(t, "PUT", env.BaseURL+notesEndpoint+"/"+olderID, map[string]any{
			"title": "Renamed",
		}, headers, http.StatusOK)

		assert.Equal(t, "Renamed", updated["title"])
		assert.Equal(t, older["content"], updated["content"], "omitted field must keep its value")

		notes = listNotes(t, env, headers)
		first := notes[0].(map[string]any)
		assert.Equal(t, olderID, first["id"], "updated note should move to the front")
	})

	t.Run("websocket_and_crud_operations", func(t *testing.T) {
		testWebSocketCRUDOperations(t, env, authToken, headers, noteAID)
	})

	t.Run("note_not_found_cross_user", func(t *testing.T) {
		testCrossUserAuthorization(t, env, testPassword, noteAID)
	})

	t.Run("unauthenticated_requests_are_401", func(t *testing.T) {
		resp, err := httpJSON("GET", env.BaseURL+notesEndpoint, nil, nil)
		require.NoError(t, err)
		defer func() {
			if err := resp.Body.Close(); err != nil {
				t.Errorf(msgFailedToCloseResponseBody, err)
			}
		}()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

// testWebSocketCRUDOperations drives create/update/delete and asserts the
// broadcast events arrive on the stream.
func testWebSocketCRUDOperations(t *testing.T, env *TestEnvironment, authToken string, headers map[string]string, noteAID string) {
	ws := setupWebSocket(t, env, authToken)
	defer ws.Close()

	messages := make(chan map[string]any, 10)
	startWebSocketListener(ws, messages)
	time.Sleep(100 * time.Millisecond) // Allow connection to establish

	// Create note B and verify WebSocket event
	noteB := makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint, map[string]any{
		"title":   "B",
		"content": "Note B content",
	}, headers, http.StatusCreated)
	noteBID := noteB["id"].(string)
	verifyWebSocketMessage(t, messages, "created", noteBID, "B", "Note B content", "")

	// Update note A and verify WebSocket event
	makeHTTPRequest(t, "PUT", env.BaseURL+notesEndpoint+"/"+noteAID, map[string]any{
		"title":   "A Updated",
		"content": "Updated content for note A",
	}, headers, http.StatusOK)
	verifyWebSocketMessage(t, messages, "updated", noteAID, "A Updated", "Updated content for note A", "")

	// Delete note B and verify both the response body and the event
	delResp := makeHTTPRequest(t, "DELETE", env.BaseURL+notesEndpoint+"/"+noteBID, nil, headers, http.StatusOK)
	assert.Equal(t, true, delResp["success"])
	verifyWebSocketMessage(t, messages, "deleted", noteBID, "", "", "deleted")
}

// setupWebSocket creates and returns a WebSocket connection
func setupWebSocket(t *testing.T, env *TestEnvironment, authToken string) *websocket.Conn {
	wsURL := "ws://localhost" + env.BaseURL[len("http://localhost"):] + "/ws/notes/stream?token=" + authToken
	c, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return c
}

// startWebSocketListener starts a goroutine to read WebSocket messages
func startWebSocketListener(c *websocket.Conn, messages chan map[string]any) {
	go func() {
		for {
			var msg map[string]any
			if c.ReadJSON(&msg) != nil {
				return
			}
			messages <- msg
		}
	}()
}

// verifyWebSocketMessage waits for and verifies a WebSocket message
func verifyWebSocketMessage(t *testing.T, messages chan map[string]any, eventType, noteID, expectedTitle, expectedContent, specialCase string) {
	select {
	case msg := <-messages:
		assert.Equal(t, eventType, msg["type"])
		assert.Contains(t, msg, "note")
		wsNote := msg["note"].(map[string]any)
		assert.Equal(t, noteID, wsNote["id"])

		if specialCase == "deleted" {
			assert.NotContains(t, wsNote, "title")
			assert.NotContains(t, wsNote, "content")
		} else {
			if expectedTitle != "" {
				assert.Equal(t, expectedTitle, wsNote["title"])
			}
			if expectedContent != "" {
				assert.Equal(t, expectedContent, wsNote["content"])
			}
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("did not receive %s event within 1 second", eventType)
	}
}

// testCrossUserAuthorization verifies foreign notes look exactly like missing ones
func testCrossUserAuthorization(t *testing.T, env *TestEnvironment, testPassword, noteAID string) {
	otherToken := setupTestUser(t, env, "otheruser@example.com", testPassword)
	otherHeaders := map[string]string{"Authorization": "Bearer " + otherToken}

	testUnauthorizedNoteAccess(t, env, otherHeaders, noteAID, "PUT", map[string]any{"title": "Hacked"})
	testUnauthorizedNoteAccess(t, env, otherHeaders, noteAID, "DELETE", nil)
}

// testUnauthorizedNoteAccess expects a 404 with the shared not-found message
func testUnauthorizedNoteAccess(t *testing.T, env *TestEnvironment, headers map[string]string, noteID, method string, payload map[string]any) {
	url := env.BaseURL + notesEndpoint + "/" + noteID
	errorResp := makeHTTPRequest(t, method, url, payload, headers, http.StatusNotFound)

	msg, ok := errorResp["error"].(string)
	require.True(t, ok, "error body should carry an error field")
	assert.Contains(t, msg, "note not found or you don't have permission")
}

// listNotes fetches the notes list, which is a bare JSON array
func listNotes(t *testing.T, env *TestEnvironment, headers map[string]string) []any {
	t.Helper()
	resp, err := httpJSON("GET", env.BaseURL+notesEndpoint, nil, headers)
	require.NoError(t, err)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(msgFailedToCloseResponseBody, err)
		}
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var notes []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notes))
	return notes
}

// makeHTTPRequest is a helper function to make HTTP requests with proper cleanup
func makeHTTPRequest(t *testing.T, method, url string, payload map[string]any, headers map[string]string, expectedStatus int) map[string]any {
	t.Helper()
	resp, err := httpJSON(method, url, payload, headers)
	require.NoError(t, err)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(msgFailedToCloseResponseBody, err)
		}
	}()

	require.Equal(t, expectedStatus, resp.StatusCode)

	var result map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	}

	return result
}

// setupTestUser creates a test user and returns the auth token
func setupTestUser(t *testing.T, env *TestEnvironment, email, password string) string {
	signUpPayload := map[string]string{
		"email":    email,
		"password": password,
	}

	resp, err := httpJSON("POST", env.BaseURL+signUpEndpoint, signUpPayload, nil)
	require.NoError(t, err)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(msgFailedToCloseResponseBody, err)
		}
	}()

	if resp.StatusCode == http.StatusBadRequest {
		// User might already exist, try sign in
		resp, err = httpJSON("POST", env.BaseURL+signInEndpoint, signUpPayload, nil)
		require.NoError(t, err)
		defer func() {
			if err := resp.Body.Close(); err != nil {
				t.Errorf(msgFailedToCloseResponseBody, err)
			}
		}()
	}

	require.True(t, resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK)

	var authResp map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&authResp))

	token, ok := authResp["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	return token
}
