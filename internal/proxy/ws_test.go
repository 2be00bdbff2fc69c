package proxy

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestChannelFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/ws/servers/s1/console", ChannelConsole},
		{"/ws/servers/s1/status", ChannelStatus},
		{"/ws/servers/s1", ChannelStatus},
		{"/ws/servers/s1/anything", ChannelStatus},
	}
	for _, tc := range cases {
		if got := ChannelFromPath(tc.path); got != tc.want {
			t.Errorf("ChannelFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func newProxyServer(t *testing.T, backendURL string) *httptest.Server {
	t.Helper()
	p := NewWSProxy(backendURL)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/servers/{id}/{channel}", func(w http.ResponseWriter, r *http.Request) {
		p.Serve(w, r, r.PathValue("id"), ChannelFromPath(r.URL.Path))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNonUpgradeRequestRejectedBeforeUpstream(t *testing.T) {
	var upstreamHits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamHits.Add(1)
	}))
	defer upstream.Close()

	srv := newProxyServer(t, upstream.URL)

	resp, err := http.Get(srv.URL + "/ws/servers/s1/console")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a plain GET, got %d", resp.StatusCode)
	}
	if hits := upstreamHits.Load(); hits != 0 {
		t.Errorf("upstream contacted %d times; must be 0", hits)
	}
}

func TestFailedUpstreamHandshakeIsGatewayError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	srv := newProxyServer(t, upstream.URL)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/servers/s1/console"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadGateway {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Errorf("expected 502, got %d", status)
	}
}

func TestSpliceForwardsFramesBothWays(t *testing.T) {
	var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	var upstreamPath atomic.Value
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamPath.Store(r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			msgType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(msgType, append([]byte("echo: "), payload...)); err != nil {
				return
			}
		}
	}))
	defer upstream.Close()

	srv := newProxyServer(t, upstream.URL)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/servers/s1/console"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial through proxy failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("list")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(payload) != "echo: list" {
		t.Errorf("unexpected payload %q", payload)
	}

	if got := upstreamPath.Load(); got != "/ws/servers/s1/console" {
		t.Errorf("unexpected upstream path %v", got)
	}
}
