package proxy

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	ChannelStatus  = "status"
	ChannelConsole = "console"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChannelFromPath derives the channel name from the last path segment.
// Anything other than an explicit console channel is a status channel.
func ChannelFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 0 && segments[len(segments)-1] == ChannelConsole {
		return ChannelConsole
	}
	return ChannelStatus
}

// WSProxy bridges the panel's upgrade endpoints onto the backend's native
// sockets: handshake both sides, then splice frames verbatim until either
// peer closes.
type WSProxy struct {
	backendURL string
	dialer     *websocket.Dialer
}

func NewWSProxy(backendURL string) *WSProxy {
	return &WSProxy{
		backendURL: backendURL,
		dialer:     websocket.DefaultDialer,
	}
}

// Serve handles one upgrade request for the given server and channel. A
// request that is not an upgrade is rejected before the upstream is ever
// contacted; a failed upstream handshake maps to a gateway error.
func (p *WSProxy) Serve(w http.ResponseWriter, r *http.Request, serverID, channel string) {
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, `{"error": "websocket upgrade required"}`, http.StatusBadRequest)
		return
	}

	upstreamURL, err := p.upstreamURL(serverID, channel)
	if err != nil {
		http.Error(w, `{"error": "bad backend address"}`, http.StatusInternalServerError)
		return
	}

	// Forward the negotiated upgrade headers to the upstream handshake.
	header := http.Header{}
	if proto := r.Header.Get("Sec-WebSocket-Protocol"); proto != "" {
		header.Set("Sec-WebSocket-Protocol", proto)
	}

	upstream, resp, err := p.dialer.Dial(upstreamURL, header)
	if err != nil {
		status := http.StatusBadGateway
		if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
			status = resp.StatusCode
		}
		http.Error(w, fmt.Sprintf(`{"error": "backend handshake failed: %v"}`, err), status)
		return
	}
	defer upstream.Close()

	responseHeader := http.Header{}
	if proto := upstream.Subprotocol(); proto != "" {
		responseHeader.Set("Sec-WebSocket-Protocol", proto)
	}

	client, err := upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		log.Printf("ws proxy: client upgrade failed: %v", err)
		return
	}
	defer client.Close()

	splice(client, upstream)
}

func (p *WSProxy) upstreamURL(serverID, channel string) (string, error) {
	u, err := url.Parse(p.backendURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = fmt.Sprintf("/ws/servers/%s/%s", url.PathEscape(serverID), channel)
	return u.String(), nil
}

// splice copies frames in both directions until either side fails, then
// tears both connections down.
func splice(client, upstream *websocket.Conn) {
	done := make(chan struct{}, 2)
	copyFrames := func(dst, src *websocket.Conn) {
		defer func() { done <- struct{}{} }()
		for {
			msgType, payload, err := src.ReadMessage()
			if err != nil {
				return
			}
			if err := dst.WriteMessage(msgType, payload); err != nil {
				return
			}
		}
	}

	go copyFrames(upstream, client)
	go copyFrames(client, upstream)
	<-done
}
