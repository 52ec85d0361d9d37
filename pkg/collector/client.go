package collector

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Signature is the exact string the collector must answer from /.identity.
// Anything else means we are talking to some other local server and every
// dependent operation stays blocked.
const Signature = "mcp-browser-connector-24x7"

const (
	// Identity probes gate user-visible actions and must fail fast.
	IdentityTimeout = 3 * time.Second
	// Data pushes are background traffic and tolerate more latency.
	PushTimeout = 5 * time.Second
)

// Client talks to the collector server. Connection settings are resolved
// through the store on every call.
type Client struct {
	store SettingsStore
	http  *http.Client
}

func NewClient(store SettingsStore) *Client {
	return &Client{
		store: store,
		// Per-call deadlines come from contexts; the client itself has no
		// global timeout so the two budgets stay independent.
		http: &http.Client{},
	}
}

func (c *Client) baseURL(ctx context.Context) (string, error) {
	s, err := c.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("collector: load settings: %w", err)
	}
	return fmt.Sprintf("http://%s:%d", s.Host, s.Port), nil
}

type identityResponse struct {
	Signature string `json:"signature"`
	Name      string `json:"name"`
	Version   string `json:"version"`
}

// ValidateIdentity probes /.identity and checks the signature. It fails
// closed: any network error, non-2xx status, timeout or signature mismatch
// yields false. No retries; this is a cheap gate callers invoke liberally.
func (c *Client) ValidateIdentity(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, IdentityTimeout)
	defer cancel()

	base, err := c.baseURL(ctx)
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/.identity", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	var identity identityResponse
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return false
	}
	return identity.Signature == Signature
}

// AnnounceStart notifies the collector that a recording session began.
func (c *Client) AnnounceStart(ctx context.Context, tabID, recordingID, description string) error {
	body := map[string]interface{}{
		"tabId":       tabID,
		"recordingId": recordingID,
		"description": description,
		"timestamp":   time.Now().UnixMilli(),
	}
	return c.postJSON(ctx, "/start-recording", body, nil)
}

// AnnounceStop notifies the collector that a recording session stopped and
// returns the path the collector reports for it.
func (c *Client) AnnounceStop(ctx context.Context, tabID, recordingID string) (string, error) {
	body := map[string]interface{}{
		"tabId":       tabID,
		"recordingId": recordingID,
		"timestamp":   time.Now().UnixMilli(),
	}
	var out struct {
		Path string `json:"path"`
	}
	if err := c.postJSON(ctx, "/stop-recording", body, &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

// UploadRecording sends a finished artifact as a base64 data URL, the way the
// platform FileReader encodes blobs. Single attempt; the caller decides what
// a failure means.
func (c *Client) UploadRecording(ctx context.Context, artifact []byte, description string, duration time.Duration) (string, error) {
	body := map[string]interface{}{
		"data":        "data:video/webm;base64," + base64.StdEncoding.EncodeToString(artifact),
		"description": description,
		"duration":    duration.Milliseconds(),
		"timestamp":   time.Now().UnixMilli(),
	}
	var out struct {
		Filename string `json:"filename"`
	}
	if err := c.postJSON(ctx, "/recording-data", body, &out); err != nil {
		return "", err
	}
	return out.Filename, nil
}

// UploadScreenshot sends a captured image (png data URL) and returns the
// saved path.
func (c *Client) UploadScreenshot(ctx context.Context, dataURL, path string) (string, error) {
	body := map[string]interface{}{
		"data": dataURL,
		"path": path,
	}
	var out struct {
		Path  string `json:"path"`
		Error string `json:"error"`
	}
	if err := c.postJSON(ctx, "/screenshot", body, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("collector: screenshot rejected: %s", out.Error)
	}
	return out.Path, nil
}

// PushCurrentURL sends one navigation telemetry update. Retry policy lives in
// the tracker, not here.
func (c *Client) PushCurrentURL(ctx context.Context, tabID, url, source string) error {
	body := map[string]interface{}{
		"url":       url,
		"tabId":     tabID,
		"timestamp": time.Now().UnixMilli(),
		"source":    source,
	}
	return c.postJSON(ctx, "/current-url", body, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	base, err := c.baseURL(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("collector: marshal %s body: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("collector: POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector: POST %s: unexpected status %d", path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("collector: decode %s response: %w", path, err)
		}
	}
	return nil
}
