package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmooo/ll-xq/internal/api"
	"github.com/benmooo/ll-xq/internal/cli"
	"github.com/benmooo/ll-xq/internal/config"
	"github.com/benmooo/ll-xq/internal/factory"
	"github.com/benmooo/ll-xq/internal/testutil"
)

// cliRunner executes xqctl commands in-process against a server
type cliRunner struct {
	serverURL   string
	sessionFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	return &cliRunner{
		serverURL:   serverURL,
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	return r.runContext(context.Background(), &bytes.Buffer{}, args...)
}

// output collects what a command writes
type output interface {
	io.Writer
	String() string
}

func (r *cliRunner) runContext(ctx context.Context, w output, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--session-file", r.sessionFile,
		"--output", "json",
	}, args...)

	cmd := cli.NewRootCmd()
	cmd.SetArgs(fullArgs)
	cmd.SetOut(w)
	cmd.SetErr(w)
	err := cmd.ExecuteContext(ctx)
	return w.String(), err
}

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:  logger,
		Session: app.Session,
	})
	server := api.NewServer(router, config.Default().Server, logger)

	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			_ = app.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type createRoomResponse struct {
	RoomID string `json:"room_id"`
}

type playerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Side string `json:"side"`
}

type roomResponse struct {
	ID      string           `json:"id"`
	Status  string           `json:"status"`
	Players []playerResponse `json:"players"`
}

type stateResponse struct {
	RoomID  string `json:"room_id"`
	Status  string `json:"status"`
	FEN     string `json:"fen"`
	Turn    string `json:"turn"`
	Players []struct {
		Name   string `json:"name"`
		Side   string `json:"side"`
		Online bool   `json:"online"`
	} `json:"players"`
}

type moveResponse struct {
	Side string `json:"side"`
	From string `json:"from"`
	To   string `json:"to"`
	Turn string `json:"turn"`
}

type legalMovesResponse struct {
	Square string   `json:"square"`
	Moves  []string `json:"moves"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_RoomCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("room", "create", "Alice")
	require.NoError(t, err, "output: %s", output)

	var created createRoomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	require.NotEmpty(t, created.RoomID)

	output, err = cli.run("room", "join", created.RoomID, "Alice")
	require.NoError(t, err, "output: %s", output)

	var alice playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &alice))
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, "r", alice.Side)

	// Rejoining from the same session reclaims the seat
	output, err = cli.run("room", "join", created.RoomID, "Alice")
	require.NoError(t, err, "output: %s", output)

	var again playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &again))
	assert.Equal(t, alice.ID, again.ID)

	output, err = cli.run("room", "list")
	require.NoError(t, err, "output: %s", output)

	var rooms []roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, created.RoomID, rooms[0].ID)
	assert.Equal(t, "waiting", rooms[0].Status)
	assert.Len(t, rooms[0].Players, 1)
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	// Two runners with separate session files
	cli1 := newCLIRunner(t, ts.addr)
	cli2 := newCLIRunner(t, ts.addr)

	output, err := cli1.run("room", "create", "Alice")
	require.NoError(t, err, "output: %s", output)
	var created createRoomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	roomID := created.RoomID

	output, err = cli1.run("room", "join", roomID, "Alice")
	require.NoError(t, err, "output: %s", output)

	output, err = cli2.run("room", "join", roomID, "Bob")
	require.NoError(t, err, "output: %s", output)
	var bob playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &bob))
	assert.Equal(t, "b", bob.Side)

	output, err = cli1.run("room", "state")
	require.NoError(t, err, "output: %s", output)
	var state stateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &state))
	assert.Equal(t, "playing", state.Status)
	assert.Equal(t, "r", state.Turn)
	assert.Len(t, state.Players, 2)

	output, err = cli1.run("room", "legal-moves", "a3")
	require.NoError(t, err, "output: %s", output)
	var legal legalMovesResponse
	require.NoError(t, json.Unmarshal([]byte(output), &legal))
	assert.Equal(t, []string{"a4"}, legal.Moves)

	// Black cannot move first
	output, err = cli2.run("move", "a6", "a5")
	require.Error(t, err)
	assert.Contains(t, output, "NOT_YOUR_TURN")

	output, err = cli1.run("move", "a3", "a4")
	require.NoError(t, err, "output: %s", output)
	var move moveResponse
	require.NoError(t, json.Unmarshal([]byte(output), &move))
	assert.Equal(t, "r", move.Side)
	assert.Equal(t, "b", move.Turn)

	output, err = cli2.run("ping")
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "pong", msg.Message)

	output, err = cli2.run("results", roomID)
	require.Error(t, err)
	assert.Contains(t, output, "RESULT_NOT_FOUND")

	output, err = cli2.run("results")
	require.NoError(t, err, "output: %s", output)
	assert.JSONEq(t, "[]", output)
}

func TestCLI_RequiresSeat(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("move", "a3", "a4")
	require.Error(t, err)
	assert.Contains(t, output, "no room")
}

func TestCLI_EventsStream(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("room", "create", "Alice")
	require.NoError(t, err, "output: %s", output)
	var created createRoomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))

	output, err = cli.run("room", "join", created.RoomID, "Alice")
	require.NoError(t, err, "output: %s", output)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		_, err := cli.runContext(ctx, out, "events")
		done <- err
	}()

	// The server subscribes before it answers, so this line means the stream is live
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Connected to room "+created.RoomID)
	}, 5*time.Second, 20*time.Millisecond)

	// Bob joins over plain HTTP while the stream is open
	body := strings.NewReader(`{"player_name":"Bob"}`)
	resp, err := http.Post(ts.addr+"/api/v1/rooms/"+created.RoomID+"/join", "application/json", body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "gameStart: Alice (red) vs Bob (black), red to move")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "joinSuccess: Bob joined as black")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("events command did not stop")
	}
}
