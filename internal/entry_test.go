package internal

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bwservices06-art/bwservicesweb/internal/testutil"
)

func testServer(t *testing.T) (*server, *httptest.Server, func(path string, fields map[string]any)) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	cfg.Admin.Email = "admin@example.com"
	cfg.Admin.PasswordHash = string(hash)
	cfg.Admin.SessionSecret = strings.Repeat("k", 32)
	cfg.Uploads.Path = filepath.Join(t.TempDir(), "uploads")
	cfg.Intake.RatePerMinute = 0

	s := testutil.TestStore(t)
	srv, err := newServer(cfg, s, testutil.Logger())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	ts := httptest.NewServer(srv.handler)
	t.Cleanup(func() {
		srv.close()
		ts.Close()
	})
	return srv, ts, func(path string, fields map[string]any) {
		testutil.Append(t, s, path, fields)
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Routes(t *testing.T) {
	_, ts, _ := testServer(t)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/health/live", http.StatusOK, `"ok"`},
		{"/health/ready", http.StatusOK, `"ok"`},
		{"/api/schema", http.StatusOK, `"inquiries"`},
		{"/api/collections/services", http.StatusOK, `"records"`},
		{"/", http.StatusOK, "App Development"},
		{"/static/live.js", http.StatusOK, "EventSource"},
		{"/uploads/missing.png", http.StatusNotFound, ""},
		{"/admin", http.StatusOK, "csrf_token"}, // redirected to the login page
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := get(t, ts.URL+tt.path)
			if status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}

	status, body := get(t, ts.URL+"/metrics")
	if status != http.StatusOK || !strings.Contains(body, "site_http_requests_total") {
		t.Errorf("metrics: status %d", status)
	}
}

func TestServer_StoreWritesReachThePage(t *testing.T) {
	_, ts, appendRecord := testServer(t)

	appendRecord("faqs", map[string]any{"question": "Do you host?", "answer": "Yes."})

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, body := get(t, ts.URL+"/")
		if strings.Contains(body, "Do you host?") {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("page never showed the new faq")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestServer_LiveStreamStartsWithSnapshot(t *testing.T) {
	_, ts, _ := testServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/live/services", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if line != "event: snapshot\n" {
		t.Errorf("first line = %q", line)
	}
}
