package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bwservices06-art/bwservicesweb/internal/contentservice"
	"github.com/bwservices06-art/bwservicesweb/internal/store"
	"github.com/bwservices06-art/bwservicesweb/internal/testutil"
)

var pngData = append([]byte("\x89PNG\r\n\x1a\n"), []byte("fake-png-data")...)

// testEnv sets up a temp store, service, and router for testing.
// An empty authToken means disabled mode; otherwise token mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	router, _ := testEnvWithUploads(t, authToken)
	return router
}

func testEnvWithUploads(t *testing.T, authToken string) (http.Handler, string) {
	t.Helper()
	router, _, uploads := testEnvWithStore(t, authToken)
	return router, uploads
}

// testEnvWithStore also returns the store so tests can place records the API
// refuses to create.
func testEnvWithStore(t *testing.T, authToken string) (http.Handler, *store.SQLite, string) {
	t.Helper()
	uploads := filepath.Join(t.TempDir(), "uploads")
	s := testutil.TestStore(t)
	svc := contentservice.NewService(s)
	return NewRouter(svc, authToken != "", authToken, uploads), s, uploads
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetRecord(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/collections/services", map[string]any{"title": "Web", "icon": "Layout"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created struct {
		ID     string         `json:"id"`
		Record map[string]any `json:"record"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" || created.Record["id"] != created.ID {
		t.Fatalf("created = %+v", created)
	}

	w = do(t, router, http.MethodGet, "/collections/services/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var rec map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if rec["title"] != "Web" {
		t.Errorf("title = %v, want Web", rec["title"])
	}
}

func TestCreate_ClientIDIgnored(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/collections/faqs", map[string]any{"id": "mine", "question": "Q"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	var created CreatedResponse
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "mine" {
		t.Error("client supplied id was used")
	}
}

func TestCreate_BadBodies(t *testing.T) {
	router := testEnv(t, "")

	cases := map[string]any{
		"empty object":  map[string]any{},
		"unknown field": map[string]any{"owner": "x"},
		"wrong type":    map[string]any{"title": 5},
		"not an object": []string{"a"},
	}
	for name, body := range cases {
		w := do(t, router, http.MethodPost, "/collections/services", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func TestUnknownPath(t *testing.T) {
	router := testEnv(t, "")

	if w := do(t, router, http.MethodGet, "/collections/users", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown collection = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/collections/hero", nil); w.Code != http.StatusNotFound {
		t.Errorf("singleton as collection = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/singletons/faqs", nil); w.Code != http.StatusNotFound {
		t.Errorf("collection as singleton = %d, want 404", w.Code)
	}
}

func TestListNewestFirst(t *testing.T) {
	router, s, _ := testEnvWithStore(t, "")

	for _, ts := range []int{100, 300, 200} {
		testutil.Append(t, s, "inquiries", map[string]any{"name": "n", "timestamp": ts})
	}

	w := do(t, router, http.MethodGet, "/collections/inquiries", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp struct {
		Records []map[string]any `json:"records"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(resp.Records))
	}
	for i, want := range []float64{300, 200, 100} {
		if resp.Records[i]["timestamp"] != want {
			t.Errorf("records[%d].timestamp = %v, want %v", i, resp.Records[i]["timestamp"], want)
		}
	}
}

func TestIntakeCollectionsReadOnly(t *testing.T) {
	router, s, _ := testEnvWithStore(t, "")
	id := testutil.Append(t, s, "inquiries", map[string]any{"name": "Jane", "message": "hi", "timestamp": 100})

	if w := do(t, router, http.MethodPost, "/collections/inquiries", map[string]any{"name": "x", "timestamp": 1}); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("create inquiry = %d, want 405", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/collections/orders", map[string]any{"name": "x"}); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("create order = %d, want 405", w.Code)
	}
	w := do(t, router, http.MethodPatch, "/collections/inquiries/"+id, map[string]any{"message": "rewritten", "timestamp": 999})
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("update inquiry = %d, want 405", w.Code)
	}

	w = do(t, router, http.MethodGet, "/collections/inquiries/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	var rec map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if rec["message"] != "hi" || rec["timestamp"] != float64(100) {
		t.Errorf("inquiry changed: %v", rec)
	}

	if w := do(t, router, http.MethodDelete, "/collections/inquiries/"+id, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete inquiry = %d, want 204", w.Code)
	}
}

func TestListEmpty(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/collections/projects", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if recs, ok := resp["records"].([]any); !ok || len(recs) != 0 {
		t.Errorf("records = %v, want empty array", resp["records"])
	}
}

func TestUpdate_MergesFields(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/collections/pricing", map[string]any{"name": "Pro", "price": "$10", "popular": true})
	var created CreatedResponse
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = do(t, router, http.MethodPatch, "/collections/pricing/"+created.ID, map[string]any{"price": "$20", "popular": nil})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d, body = %s", w.Code, w.Body.String())
	}
	var rec map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if rec["name"] != "Pro" || rec["price"] != "$20" {
		t.Errorf("record = %v", rec)
	}
	if _, ok := rec["popular"]; ok {
		t.Error("null did not remove the field")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodPatch, "/collections/faqs/"+uuid.NewString(), map[string]any{"answer": "A"})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing record = %d, want 404", w.Code)
	}
	w = do(t, router, http.MethodPatch, "/collections/faqs/not-an-id", map[string]any{"answer": "A"})
	if w.Code != http.StatusNotFound {
		t.Errorf("malformed id = %d, want 404", w.Code)
	}
}

func TestDeleteRecord(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/collections/faqs", map[string]any{"question": "Q"})
	var created CreatedResponse
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	for i := 0; i < 2; i++ {
		w = do(t, router, http.MethodDelete, "/collections/faqs/"+created.ID, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("delete #%d = %d, want 204", i+1, w.Code)
		}
	}
	if w = do(t, router, http.MethodGet, "/collections/faqs/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestSingleton(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/singletons/hero", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get unwritten = %d", w.Code)
	}

	w = do(t, router, http.MethodPatch, "/singletons/hero", map[string]any{"badge": "Now booking"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPatch, "/singletons/hero", map[string]any{"title1": "We build"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/singletons/hero", nil)
	var rec map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if rec["badge"] != "Now booking" || rec["title1"] != "We build" || rec["id"] != "hero" {
		t.Errorf("hero = %v", rec)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/schema", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("schema = %d", w.Code)
	}
	var schemas []contentservice.SchemaInfo
	_ = json.Unmarshal(w.Body.Bytes(), &schemas)
	if len(schemas) != 11 {
		t.Errorf("schemas = %d, want 11", len(schemas))
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")
	do(t, router, http.MethodPost, "/collections/faqs", map[string]any{"question": "Is hosting included?", "answer": "Yes"})
	do(t, router, http.MethodPost, "/collections/services", map[string]any{"title": "Design"})

	w := do(t, router, http.MethodGet, "/search?q=uniquetoken", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/search?q=HOSTING", nil)
	var resp struct {
		Query   string `json:"query"`
		Results []struct {
			Path    string         `json:"path"`
			Record  map[string]any `json:"record"`
			Field   string         `json:"field"`
			Snippet string         `json:"snippet"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("search results = %d, want 1", len(resp.Results))
	}
	hit := resp.Results[0]
	if hit.Path != "faqs" || hit.Field != "question" || hit.Record["answer"] != "Yes" {
		t.Errorf("hit = %+v", hit)
	}

	w = do(t, router, http.MethodGet, "/search?q=design&path=faqs", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 0 {
		t.Errorf("path filter ignored: %+v", resp.Results)
	}
}

func TestSearchBadRequests(t *testing.T) {
	router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/search?q=x&path=nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("search unknown path = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")

	body, _ := json.Marshal(map[string]string{"question": "Q"})
	req := httptest.NewRequest(http.MethodPost, "/collections/faqs", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/collections/faqs", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/collections/faqs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/collections/faqs", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func uploadFile(t *testing.T, router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAndServe(t *testing.T) {
	router, dir := testEnvWithUploads(t, "")

	w := uploadFile(t, router, "team.png", pngData)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	var resp UploadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.URL != "/uploads/team.png" || resp.Size != int64(len(pngData)) {
		t.Errorf("resp = %+v", resp)
	}

	data, err := os.ReadFile(filepath.Join(dir, "team.png"))
	if err != nil {
		t.Fatalf("file not on disk: %v", err)
	}
	if !bytes.Equal(data, pngData) {
		t.Error("content mismatch")
	}

	if w = uploadFile(t, router, "team.png", pngData); w.Code != http.StatusConflict {
		t.Errorf("second upload = %d, want 409", w.Code)
	}

	files := chi.NewRouter()
	files.Get("/uploads/{filename}", NewUploadHandler(dir).ServeFile)
	req := httptest.NewRequest(http.MethodGet, "/uploads/team.png", nil)
	w = httptest.NewRecorder()
	files.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), pngData) {
		t.Errorf("serve = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil)
	w = httptest.NewRecorder()
	files.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("serve missing = %d, want 404", w.Code)
	}
}

func TestUpload_RejectsNonImages(t *testing.T) {
	router, _ := testEnvWithUploads(t, "")

	if w := uploadFile(t, router, "notes.txt", []byte("hello")); w.Code != http.StatusBadRequest {
		t.Errorf("txt upload = %d, want 400", w.Code)
	}
	if w := uploadFile(t, router, "fake.png", []byte("<html>not a png</html>")); w.Code != http.StatusBadRequest {
		t.Errorf("mislabelled upload = %d, want 400", w.Code)
	}
	if w := uploadFile(t, router, ".hidden.png", pngData); w.Code != http.StatusBadRequest {
		t.Errorf("dotfile upload = %d, want 400", w.Code)
	}
}

func TestUpload_AuthProtected(t *testing.T) {
	router, _ := testEnvWithUploads(t, "secret")

	if w := uploadFile(t, router, "x.png", pngData); w.Code != http.StatusUnauthorized {
		t.Errorf("upload no auth = %d, want 401", w.Code)
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("wrong", "data")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field = %d, want 400", w.Code)
	}
}
