package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rscasurvey/internal/flow"
	"rscasurvey/internal/model"
)

type recordedActions struct {
	mu    sync.Mutex
	calls []string
	value interface{}
}

func (a *recordedActions) add(call string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
}

func (a *recordedActions) list() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *recordedActions) Start()                              { a.add("start") }
func (a *recordedActions) SelectStudy(s model.StudyType)       { a.add("study:" + string(s)) }
func (a *recordedActions) SelectVignette(v model.VignetteType) { a.add("vignette:" + string(v)) }
func (a *recordedActions) Next()                               { a.add("next") }
func (a *recordedActions) Continue()                           { a.add("continue") }
func (a *recordedActions) TryAgain()                           { a.add("tryAgain") }

func (a *recordedActions) Answer(value interface{}) {
	a.mu.Lock()
	a.value = value
	a.mu.Unlock()
	a.add("answer")
}

func dial(t *testing.T, hub *Hub, actions Actions) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub, actions).ServeWS))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestPublishReachesClientAndReplaysLatest(t *testing.T) {
	hub := NewHub()
	first := dial(t, hub, &recordedActions{})
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(flow.Snapshot{State: flow.StateAnswering, Index: 3, Total: 44, RemainingMs: 9000})

	msg := readMessage(t, first)
	assert.Equal(t, MsgState, msg.Type)
	var snap flow.Snapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, flow.StateAnswering, snap.State)
	assert.Equal(t, 3, snap.Index)
	assert.EqualValues(t, 9000, snap.RemainingMs)

	late := dial(t, hub, &recordedActions{})
	msg = readMessage(t, late)
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, flow.StateAnswering, snap.State)
}

func TestIncomingMessagesDriveActions(t *testing.T) {
	actions := &recordedActions{}
	conn := dial(t, NewHub(), actions)

	send := func(raw string) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
	}
	send(`{"type":"start"}`)
	send(`{"type":"selectStudy","payload":{"study":"withoutParsons"}}`)
	send(`{"type":"selectVignette","payload":{"vignette":"control"}}`)
	send(`{"type":"answer","payload":{"value":"Agree"}}`)
	send(`{"type":"next"}`)
	send(`{"type":"continue"}`)
	send(`{"type":"tryAgain"}`)

	want := []string{"start", "study:withoutParsons", "vignette:control", "answer", "next", "continue", "tryAgain"}
	require.Eventually(t, func() bool { return len(actions.list()) == len(want) }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, want, actions.list())
	actions.mu.Lock()
	defer actions.mu.Unlock()
	assert.Equal(t, "Agree", actions.value)
}

func TestInvalidMessagesGetErrorReply(t *testing.T) {
	actions := &recordedActions{}
	conn := dial(t, NewHub(), actions)

	for _, raw := range []string{
		`not json`,
		`{"type":"dance"}`,
		`{"type":"selectStudy","payload":{"study":"sometimes"}}`,
		`{"type":"selectVignette","payload":{"vignette":"horror"}}`,
	} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
		msg := readMessage(t, conn)
		assert.Equal(t, MsgError, msg.Type, raw)
	}
	assert.Empty(t, actions.list())
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, &recordedActions{})
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
}
