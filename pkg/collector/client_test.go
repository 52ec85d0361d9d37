package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFor points a settings store at a httptest server.
func storeFor(t *testing.T, srv *httptest.Server) SettingsStore {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	store := NewMemorySettingsStore()
	require.NoError(t, store.Save(context.Background(), Settings{Host: u.Hostname(), Port: port}))
	return store
}

func TestValidateIdentityMatchesSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/.identity", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"signature": Signature,
			"name":      "capture-connector",
			"version":   "1.2.0",
		})
	}))
	defer srv.Close()

	c := NewClient(storeFor(t, srv))
	assert.True(t, c.ValidateIdentity(context.Background()))
}

func TestValidateIdentityRejectsWrongSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"signature": "some-other-server"})
	}))
	defer srv.Close()

	c := NewClient(storeFor(t, srv))
	assert.False(t, c.ValidateIdentity(context.Background()))
}

func TestValidateIdentityFailsClosedOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(storeFor(t, srv))
	assert.False(t, c.ValidateIdentity(context.Background()))
}

func TestValidateIdentityFailsClosedWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewClient(storeFor(t, srv))
	assert.False(t, c.ValidateIdentity(context.Background()))
}

func TestAnnounceStopReturnsPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stop-recording", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "recording_42_1", body["recordingId"])

		json.NewEncoder(w).Encode(map[string]string{"path": "recordings/recording_42_1.webm"})
	}))
	defer srv.Close()

	c := NewClient(storeFor(t, srv))
	path, err := c.AnnounceStop(context.Background(), "42", "recording_42_1")
	require.NoError(t, err)
	assert.Equal(t, "recordings/recording_42_1.webm", path)
}

func TestUploadRecordingSendsDataURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data     string `json:"data"`
			Duration int64  `json:"duration"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, strings.HasPrefix(body.Data, "data:video/webm;base64,"))
		assert.Equal(t, int64(1500), body.Duration)

		json.NewEncoder(w).Encode(map[string]string{"filename": "recording_123.webm"})
	}))
	defer srv.Close()

	c := NewClient(storeFor(t, srv))
	filename, err := c.UploadRecording(context.Background(), []byte{0x1A, 0x45, 0xDF, 0xA3}, "demo", 1500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "recording_123.webm", filename)
}

func TestUploadScreenshotSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "disk full"})
	}))
	defer srv.Close()

	c := NewClient(storeFor(t, srv))
	_, err := c.UploadScreenshot(context.Background(), "data:image/png;base64,aGk=", "")
	assert.ErrorContains(t, err, "disk full")
}

func TestPushCurrentURLRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(storeFor(t, srv))
	err := c.PushCurrentURL(context.Background(), "42", "https://example.com", "tab_updated")
	assert.Error(t, err)
}

func TestSettingsReloadedPerCall(t *testing.T) {
	srvA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"signature": Signature})
	}))
	defer srvA.Close()
	srvB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"signature": "impostor"})
	}))
	defer srvB.Close()

	store := storeFor(t, srvA).(*MemorySettingsStore)
	c := NewClient(store)
	assert.True(t, c.ValidateIdentity(context.Background()))

	// Repoint the store; the next call must see the new address.
	u, _ := url.Parse(srvB.URL)
	port, _ := strconv.Atoi(u.Port())
	require.NoError(t, store.Save(context.Background(), Settings{Host: u.Hostname(), Port: port}))
	assert.False(t, c.ValidateIdentity(context.Background()))
}
