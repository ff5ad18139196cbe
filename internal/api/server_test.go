package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitdelayed/internal/daemon"
	"gitdelayed/internal/domain"
	"gitdelayed/internal/infra/filestore"
	"gitdelayed/internal/ports"
)

type stubGit struct{ ports.Git }

func (stubGit) Discover(ctx context.Context, dir string) (string, error) { return dir, nil }

func (stubGit) CurrentBranch(ctx context.Context, repo string) (string, error) { return "main", nil }

type stubDaemon struct{ st daemon.Status }

func (d stubDaemon) Status() (daemon.Status, error) { return d.st, nil }

func newTestServer(t *testing.T) (*httptest.Server, *filestore.Store) {
	t.Helper()
	store := filestore.New(filepath.Join(t.TempDir(), "git-delayed"), filestore.WithLockPolicy(3, time.Millisecond))
	srv := httptest.NewServer(NewServer(store, stubGit{}, stubDaemon{st: daemon.Status{Running: true, PID: 42}}).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestOperationRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/operations", scheduleReq{
		RepositoryPath: "/work/repo",
		Type:           domain.TypePush,
		When:           "+3 hours",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Operation](t, resp)
	assert.Equal(t, "/work/repo", created.RepositoryPath)
	assert.Equal(t, "main", created.Branch)

	resp = do(t, http.MethodGet, srv.URL+"/operations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ops := decode[[]domain.Operation](t, resp)
	require.Len(t, ops, 1)
	assert.Equal(t, created.ID, ops[0].ID)

	resp = do(t, http.MethodGet, srv.URL+"/operations/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodDelete, srv.URL+"/operations/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/operations/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/logs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	logs := decode[[]domain.LogEntry](t, resp)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.StatusCancelled, logs[0].Status)
}

func TestScheduleErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"bad time", scheduleReq{RepositoryPath: "/r", Type: domain.TypePush, When: "later"}, http.StatusBadRequest},
		{"commit without message", scheduleReq{RepositoryPath: "/r", Type: domain.TypeCommit, When: "+1 hour"}, http.StatusBadRequest},
		{"missing repo", scheduleReq{Type: domain.TypePush, When: "+1 hour"}, http.StatusBadRequest},
		{"not json", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/operations", tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, decode[errorResp](t, resp).Error)
		})
	}

	resp := do(t, http.MethodDelete, srv.URL+"/operations/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDaemonStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/daemon", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[daemonResp](t, resp)
	assert.True(t, st.Running)
	assert.Equal(t, 42, st.PID)
}

func TestScheduleRejectsBrowserCrossSite(t *testing.T) {
	srv, store := newTestServer(t)
	body := `{"repository_path":"/home/someone/repo","operation_type":"push","when":"+1 hour"}`

	tests := []struct {
		name        string
		contentType string
		origin      string
		want        int
	}{
		{"text/plain body", "text/plain", "", http.StatusUnsupportedMediaType},
		{"form body", "application/x-www-form-urlencoded", "", http.StatusUnsupportedMediaType},
		{"foreign origin", "application/json", "https://evil.example", http.StatusForbidden},
		{"foreign origin, simple request", "text/plain", "https://evil.example", http.StatusForbidden},
		{"loopback origin", "application/json", "http://127.0.0.1:7466", http.StatusCreated},
		{"localhost origin", "application/json; charset=utf-8", "http://localhost:3000", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, srv.URL+"/operations", strings.NewReader(body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", tt.contentType)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	ops, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ops, 2)
}

func TestIsLocalOrigin(t *testing.T) {
	assert.True(t, isLocalOrigin("http://localhost"))
	assert.True(t, isLocalOrigin("http://[::1]:8080"))
	assert.False(t, isLocalOrigin("null"))
	assert.False(t, isLocalOrigin("https://127.0.0.1.evil.example"))
}
