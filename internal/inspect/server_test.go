package inspect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/slotdb/slotdb/internal/core/objdb"
	"github.com/slotdb/slotdb/internal/core/observability/log"
)

func newTestServer(t *testing.T) (*Server, *objdb.ObjectDB, *httptest.Server) {
	t.Helper()

	db := objdb.New()
	srv := NewServer(db, Config{Addr: ":0", Interval: 10 * time.Millisecond}, log.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", srv.handleSnapshot)
	mux.HandleFunc("/ws", srv.handleStream)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return srv, db, ts
}

func TestServer_Snapshot(t *testing.T) {
	_, db, ts := newTestServer(t)

	l := db.ReserveLock("physics")
	s := db.MustNewSession(l)
	objdb.NewObjIn(s, l, 42)
	defer s.Close()

	resp, err := http.Get(ts.URL + "/snapshot")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap objdb.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.Equal(t, db.ID().String(), snap.ID)
	require.Equal(t, int64(1), snap.LiveSlots)
	require.Len(t, snap.Locks, 1)
	require.Equal(t, "physics", snap.Locks[0].Name)
	require.True(t, snap.Locks[0].Held)
}

func TestServer_Stream(t *testing.T) {
	_, db, ts := newTestServer(t)
	db.ReserveLock("render")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var snap objdb.Snapshot
	require.NoError(t, json.Unmarshal(msg, &snap))
	require.Len(t, snap.Locks, 1)
	require.Equal(t, "render", snap.Locks[0].Name)
	require.False(t, snap.Locks[0].Held)
}
