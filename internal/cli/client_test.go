package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmooo/ll-xq/internal/session"
)

func TestClientDecodesEnvelopeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"room_id":"room-1"}}`))
	}))
	defer srv.Close()

	var trace bytes.Buffer
	c := NewClient(srv.URL + "/")
	c.SetTrace(&trace)

	var result session.CreateRoomData
	require.NoError(t, c.Post("/api/v1/rooms", map[string]string{"creator_name": "Alice"}, &result))
	assert.Equal(t, "room-1", result.RoomID)
	assert.Contains(t, trace.String(), "> POST "+srv.URL+"/api/v1/rooms")
	assert.Contains(t, trace.String(), "< 201 Created")
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"ROOM_FULL","message":"Room is full"}}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Get("/api/v1/rooms", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "ROOM_FULL", apiErr.Code)
	assert.Equal(t, "Room is full (ROOM_FULL)", apiErr.Error())
}

func TestClientRejectsNonEnvelopeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Get("/api/v1/rooms", nil)
	assert.ErrorContains(t, err, "HTTP 502: upstream down")
}

func TestRoomPathEscapes(t *testing.T) {
	assert.Equal(t, "/api/v1/rooms/a%2Fb/state?player_id=p", roomPath("a/b", "state", map[string][]string{"player_id": {"p"}}))
}
