package api

import (
	"encoding/json"
	"log"
	"net/http"

	"mcpanel/internal/app"
	"mcpanel/internal/proxy"
	"mcpanel/internal/storage"
	"mcpanel/pkg/sdk"
)

// Server is the panel-facing HTTP surface: a 1:1 mirror of the process
// backend under /api plus the streaming and upgrade proxy endpoints.
type Server struct {
	Backend *sdk.Client
	Store   *storage.GormStore
	Relay   *proxy.Relay
	WSProxy *proxy.WSProxy
}

func NewAPIServer(container *app.Container) *Server {
	return &Server{
		Backend: container.Backend,
		Store:   container.Store,
		Relay:   container.Relay,
		WSProxy: container.WSProxy,
	}
}

func (api *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", api.handleHealth)
	mux.HandleFunc("GET /api/servers", api.handleListServers)
	mux.HandleFunc("GET /api/servers/{id}/status", api.handleStatus)
	mux.HandleFunc("POST /api/servers/{id}/control", api.handleControl)
	mux.HandleFunc("GET /api/servers/{id}/console", api.handleGetConsole)
	mux.HandleFunc("POST /api/servers/{id}/console", api.handleSendCommand)
	mux.HandleFunc("GET /api/servers/{id}/console/stream", api.handleConsoleStream)
	mux.HandleFunc("GET /api/servers/{id}/history", api.handleCommandHistory)
	mux.HandleFunc("POST /api/servers/{id}/properties", api.handleProperties)

	mux.HandleFunc("GET /api/system/stats", api.handleHostStats)
	mux.HandleFunc("GET /api/settings", api.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", api.handlePutSettings)

	mux.HandleFunc("/ws/servers/{id}", api.handleUpgrade)
	mux.HandleFunc("/ws/servers/{id}/{channel}", api.handleUpgrade)

	return api.corsMiddleware(mux)
}

func (api *Server) Start(listenAddr string) error {
	log.Printf("Panel API listening on http://0.0.0.0%s", listenAddr)
	return http.ListenAndServe(listenAddr, api.Handler())
}

func (api *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError renders the uniform error shape every panel endpoint uses.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
