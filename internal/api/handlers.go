package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mcpanel/internal/domain"
	"mcpanel/internal/ports"
	"mcpanel/internal/proxy"
	"mcpanel/internal/stats"
	"mcpanel/internal/storage"
	"mcpanel/pkg/sdk"
)

func (api *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "panel is running",
	})
}

func (api *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	servers, err := api.Backend.ListServers(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if servers == nil {
		servers = []sdk.Server{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"servers": servers,
	})
}

func (api *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	srv, err := api.Backend.GetStatus(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, srv)
}

func (api *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req sdk.ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Action {
	case domain.ActionStart, domain.ActionStop, domain.ActionRestart, domain.ActionForceStop:
	default:
		writeError(w, http.StatusBadRequest, "invalid action")
		return
	}

	// Starts are gated here: two servers must never run on one port.
	if req.Action == domain.ActionStart {
		conflict, err := api.findStartConflict(r, id)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		if conflict != nil {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error":    "port conflict: " + conflict.Conflicting.Name + " is already running on port " + conflict.Conflicting.Port,
				"conflict": conflict,
			})
			return
		}
	}

	result, err := api.Backend.Control(r.Context(), id, req.Action, req.RequestID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *Server) findStartConflict(r *http.Request, id string) (*ports.Conflict, error) {
	listed, err := api.Backend.ListServers(r.Context())
	if err != nil {
		return nil, err
	}

	all := make([]domain.ServerSummary, len(listed))
	var candidate *domain.ServerSummary
	for i, s := range listed {
		all[i] = domain.ServerSummary{
			ID:      s.ID,
			Name:    s.Name,
			MOTD:    s.MOTD,
			Status:  s.Status,
			Players: domain.PlayerCount{Online: s.Players.Online, Max: s.Players.Max},
			Version: s.Version,
			Port:    s.Port,
		}
		if s.ID == id {
			candidate = &all[i]
		}
	}
	if candidate == nil {
		// Unknown locally; let the backend decide.
		return nil, nil
	}
	return ports.FindConflict(*candidate, all), nil
}

func (api *Server) handleGetConsole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	page, err := api.Backend.GetConsole(r.Context(), id, limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if page.Logs == nil {
		page.Logs = []sdk.LogEntry{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (api *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "command is required")
		return
	}

	result, err := api.Backend.SendCommand(r.Context(), id, req.Command)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if result.Success {
		if err := api.Store.RecordCommand(id, req.Command); err != nil {
			// History is best-effort; the command already went through.
			writeJSON(w, http.StatusOK, result)
			return
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *Server) handleConsoleStream(w http.ResponseWriter, r *http.Request) {
	api.Relay.ServeConsoleStream(w, r, r.PathValue("id"))
}

func (api *Server) handleCommandHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := api.Store.RecentCommands(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]sdk.CommandRecord, len(records))
	for i, rec := range records {
		out[i] = sdk.CommandRecord{
			ID:        rec.ID,
			ServerID:  rec.ServerID,
			Command:   rec.Command,
			CreatedAt: rec.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (api *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var props map[string]string
	if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(props) == 0 {
		writeError(w, http.StatusBadRequest, "no properties provided")
		return
	}
	if port, ok := props["server-port"]; ok {
		if err := ports.ValidatePort(port); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := api.Backend.UpdateProperties(r.Context(), id, props); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "server properties updated",
	})
}

func (api *Server) handleHostStats(w http.ResponseWriter, r *http.Request) {
	hostStats, err := stats.Collect()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, hostStats)
}

func (api *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	theme, err := api.Store.GetSetting(storage.SettingTheme)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sidebar, err := api.Store.GetSetting(storage.SettingSidebar)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sdk.Settings{
		Theme:            theme,
		SidebarCollapsed: sidebar == "true",
	})
}

func (api *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings sdk.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := api.Store.SetSetting(storage.SettingTheme, settings.Theme); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := api.Store.SetSetting(storage.SettingSidebar, strconv.FormatBool(settings.SidebarCollapsed)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (api *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing server id")
		return
	}
	api.WSProxy.Serve(w, r, id, proxy.ChannelFromPath(r.URL.Path))
}
