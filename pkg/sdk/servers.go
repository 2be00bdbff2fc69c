package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func (c *Client) ListServers(ctx context.Context) ([]Server, error) {
	var resp struct {
		Success bool     `json:"success"`
		Servers []Server `json:"servers"`
	}
	err := c.get(ctx, "/api/servers", &resp)
	return resp.Servers, err
}

func (c *Client) GetStatus(ctx context.Context, id string) (*Server, error) {
	var srv Server
	err := c.get(ctx, fmt.Sprintf("/api/servers/%s/status", url.PathEscape(id)), &srv)
	if err != nil {
		return nil, err
	}
	if srv.ID == "" {
		srv.ID = id
	}
	return &srv, nil
}

// Control issues a lifecycle command. A non-nil error means the call failed;
// a false Success means the backend refused the action.
func (c *Client) Control(ctx context.Context, id, action, requestID string) (*ControlResult, error) {
	var result ControlResult
	req := ControlRequest{Action: action, RequestID: requestID}
	err := c.post(ctx, fmt.Sprintf("/api/servers/%s/control", url.PathEscape(id)), req, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetConsole fetches the last limit console entries plus the resume cursor.
func (c *Client) GetConsole(ctx context.Context, id string, limit int) (*ConsolePage, error) {
	var page ConsolePage
	path := fmt.Sprintf("/api/servers/%s/console?limit=%d", url.PathEscape(id), limit)
	err := c.get(ctx, path, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) SendCommand(ctx context.Context, id, command string) (*CommandResult, error) {
	var result CommandResult
	body := map[string]string{"command": command}
	err := c.post(ctx, fmt.Sprintf("/api/servers/%s/console", url.PathEscape(id)), body, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// OpenConsoleStream opens the live feed from the given resume cursor. The
// caller owns the returned body and must close it.
func (c *Client) OpenConsoleStream(ctx context.Context, id, since string) (*http.Response, error) {
	path := fmt.Sprintf("%s/api/servers/%s/console/stream", c.baseURL, url.PathEscape(id))
	if since != "" {
		path += "?since=" + url.QueryEscape(since)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}
	return resp, nil
}

// UpdateProperties applies configuration keys to the server's persisted
// configuration. Port changes go through here as {"server-port": "25566"}.
func (c *Client) UpdateProperties(ctx context.Context, id string, props map[string]string) error {
	var result ControlResult
	return c.post(ctx, fmt.Sprintf("/api/servers/%s/properties", url.PathEscape(id)), props, &result)
}

func (c *Client) GetCommandHistory(ctx context.Context, id string, limit int) ([]CommandRecord, error) {
	var records []CommandRecord
	path := fmt.Sprintf("/api/servers/%s/history?limit=%d", url.PathEscape(id), limit)
	err := c.get(ctx, path, &records)
	return records, err
}

func (c *Client) GetHostStats(ctx context.Context) (*HostStats, error) {
	var stats HostStats
	err := c.get(ctx, "/api/system/stats", &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var settings Settings
	err := c.get(ctx, "/api/settings", &settings)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) UpdateSettings(ctx context.Context, settings Settings) error {
	return c.put(ctx, "/api/settings", settings)
}
