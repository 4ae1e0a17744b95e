package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docx2md/internal/config"
	"github.com/dgallion1/docx2md/internal/pipeline"
)

const (
	testKey  = "secret"
	manualMD = "# 1. Общие сведения\n\nТекст.\n\n# 2. Установка\n\n## Подготовка\n\nШаг.\n"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:         testKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, config.DefaultRules(), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg)
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	io.WriteString(fw, content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func submit(t *testing.T, s *Server, filename, content string, fields map[string]string) string {
	t.Helper()
	rec := do(s, uploadRequest(t, filename, content, fields))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.JobID
}

func waitCompleted(t *testing.T, s *Server, jobID string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := do(s, httptest.NewRequest(http.MethodGet, "/api/convert/"+jobID+"/status", nil))
		var resp struct {
			Status pipeline.JobStatus `json:"status"`
		}
		json.NewDecoder(rec.Body).Decode(&resp)
		switch resp.Status {
		case pipeline.StatusCompleted:
			return
		case pipeline.StatusFailed:
			t.Fatalf("job %s failed", jobID)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not complete", jobID)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic " + testKey},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestConvert_Split(t *testing.T) {
	s := newTestServer(t)
	jobID := submit(t, s, "manual.md", manualMD, map[string]string{"split": "true", "fixup": "true"})
	waitCompleted(t, s, jobID)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/convert/"+jobID+"/result", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Result struct {
			Chapters []struct {
				Filename string `json:"filename"`
				Markdown string `json:"markdown"`
			} `json:"chapters"`
		} `json:"result"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	chapters := resp.Result.Chapters
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[1].Filename != "2.installation.md" {
		t.Errorf("expected %q, got %q", "2.installation.md", chapters[1].Filename)
	}
	if !strings.Contains(chapters[1].Markdown, "## 2.1 Подготовка") {
		t.Errorf("expected renumbered heading in %q", chapters[1].Markdown)
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/convert/"+jobID+"/chapters/1.common.md", nil))
	if got := rec.Body.String(); got != "# Общие сведения\n\nТекст.\n" {
		t.Errorf("unexpected chapter body %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("expected markdown content type, got %q", ct)
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/convert/"+jobID+"/chapters/1.common.md?format=html", nil))
	if !strings.Contains(rec.Body.String(), "<h1>Общие сведения</h1>") {
		t.Errorf("expected rendered heading, got %q", rec.Body.String())
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/convert/"+jobID+"/chapters/9.missing.md", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestConvert_SingleMarkdown(t *testing.T) {
	s := newTestServer(t)
	jobID := submit(t, s, "notes.txt", "Первый абзац.\n", nil)
	waitCompleted(t, s, jobID)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/convert/"+jobID+"/result?format=markdown", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "Первый абзац.\n" {
		t.Errorf("expected %q, got %q", "Первый абзац.\n", got)
	}
}

func TestConvert_BadRequests(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name     string
		filename string
		fields   map[string]string
		want     int
	}{
		{"unsupported type", "legacy.doc", nil, http.StatusBadRequest},
		{"bad flag", "a.md", map[string]string{"split": "maybe"}, http.StatusBadRequest},
		{"relative nav base path", "a.md", map[string]string{"nav_base_path": "docs"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, uploadRequest(t, tt.filename, "# A\n", tt.fields))
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestConvert_UnknownJob(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		path string
		want int
	}{
		{"/api/convert/01J9Z3K4M5N6P7Q8R9S0T1V2W3/status", http.StatusNotFound},
		{"/api/convert/not-a-job/result", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := do(s, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, rec.Code)
		}
	}
}

func TestBatchConvert(t *testing.T) {
	s := newTestServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range map[string]string{"a.md": "# A\n", "b.exe": "MZ"} {
		fw, _ := mw.CreateFormFile("files", name)
		io.WriteString(fw, content)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/convert/batch", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := do(s, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.Jobs))
	}
	var queued, rejected int
	for _, j := range resp.Jobs {
		if _, ok := j["job_id"]; ok {
			queued++
		}
		if _, ok := j["error"]; ok {
			rejected++
		}
	}
	if queued != 1 || rejected != 1 {
		t.Errorf("expected 1 queued and 1 rejected, got %d and %d", queued, rejected)
	}
}

func TestFixup(t *testing.T) {
	s := newTestServer(t)
	input := "# Установка\n\n## Подготовка\n\na;\n\nb.\n"
	req := httptest.NewRequest(http.MethodPost, "/api/fixup?chapter=3", strings.NewReader(input))
	rec := do(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := "# Установка\n\n## 3.1 Подготовка\n\n- a;\n- b.\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	rec = do(s, httptest.NewRequest(http.MethodPost, "/api/fixup?chapter=x", strings.NewReader(input)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	jobID := submit(t, s, "a.md", "# A\n", nil)
	waitCompleted(t, s, jobID)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	var resp struct {
		QueueDepth  int                        `json:"queue_depth"`
		Jobs        map[pipeline.JobStatus]int `json:"jobs"`
		Conversions pipeline.StatsSnapshot     `json:"conversions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Jobs[pipeline.StatusCompleted] != 1 {
		t.Errorf("expected 1 completed job, got %v", resp.Jobs)
	}
	if resp.Conversions.Count != 1 {
		t.Errorf("expected 1 conversion, got %d", resp.Conversions.Count)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.docx", "report.docx"},
		{"../../etc/passwd", "passwd"},
		{`C:\docs\manual.docx`, "manual.docx"},
		{"..", "unnamed"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
