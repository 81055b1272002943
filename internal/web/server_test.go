package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/linecap/internal/config"
	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/metrics"
)

const linesCSV = "区分,電圧,番号,名称,容量,備考\n" +
	"基幹,275kV,5,君津線,\"1,200\",♯1\n" +
	"基幹,154kV,7,北変電所,300,\n" +
	"基幹,154kV,9,南線,12.0,-\n"

const wantRecords = `{"5":{"name":"君津線","voltage_kv":275,"capacity_mw":1200,"note":"♯1"},` +
	`"9":{"name":"南線","voltage_kv":154,"capacity_mw":12.0,"note":null}}`

func registerTestLayout(t *testing.T) {
	t.Helper()
	core.ClearLayouts()
	t.Cleanup(core.ClearLayouts)
	core.RegisterLayout(core.Layout{
		Key:                 "web-test",
		Label:               "Web test lines",
		MinColumns:          5,
		CompleteColumns:     6,
		CodeColumn:          2,
		LabelColumn:         3,
		RequiredLabelMarker: "線",
		ExcludedLabelMarker: "変",
		Fields: []core.FieldSpec{
			{Name: "name", Column: 3},
			{Name: "voltage_kv", Column: 1, Units: []string{"kV"}},
			{Name: "capacity_mw", Column: 4},
			{Name: "note", Column: 5},
		},
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Extract: config.ExtractConfig{
			Layout:      "web-test",
			MaxFileSize: 1 << 20,
			Timeout:     time.Minute,
			PreviewRows: 1,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) (*Server, *metrics.Metrics) {
	t.Helper()
	registerTestLayout(t)

	m := metrics.New()
	limiter := core.NewRunLimiter(1, 20*time.Millisecond)
	m.TrackLimiter(limiter)
	svc := core.NewService(
		core.WithObserver(m),
		core.WithRunLimiter(limiter),
		core.WithLogger(discardLogger()),
	)
	return NewServer(svc, cfg, append([]Option{WithMetrics(m)}, opts...)...), m
}

func uploadRequest(t *testing.T, target, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(fw, content)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

type recordingSink struct {
	mu      sync.Mutex
	results []*core.Result
	err     error
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Write(ctx context.Context, res *core.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	if r.err != nil {
		return errors.Join(core.ErrSink, r.err)
	}
	return nil
}

func TestHandleExtract_JSON(t *testing.T) {
	out := &recordingSink{}
	s, _ := newTestServer(t, testConfig(), WithSink(out))

	rec := serve(s, uploadRequest(t, "/api/extract/web-test", "lines.csv", linesCSV, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RunID   string          `json:"runId"`
		Layout  string          `json:"layout"`
		Partial bool            `json:"partial"`
		Stats   core.Stats      `json:"stats"`
		Records json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if string(resp.Records) != wantRecords {
		t.Errorf("records = %s\nwant %s", resp.Records, wantRecords)
	}
	if resp.RunID == "" {
		t.Error("runId is empty")
	}
	if resp.Layout != "web-test" || resp.Partial {
		t.Errorf("layout = %q, partial = %v", resp.Layout, resp.Partial)
	}
	if resp.Stats.Accepted != 2 {
		t.Errorf("stats.accepted = %d, want 2", resp.Stats.Accepted)
	}

	if len(out.results) != 1 || out.results[0].RunID != resp.RunID {
		t.Errorf("sink saw %d results, want the response run", len(out.results))
	}
}

func TestHandleExtract_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		filename   string
		content    string
		fields     map[string]string
		maxSize    int64
		wantStatus int
		wantCode   string
	}{
		{"unknown layout", "/api/extract/nope", "lines.csv", linesCSV, nil, 0, http.StatusNotFound, "LAY001"},
		{"unsupported format", "/api/extract/web-test", "scan.png", "png", nil, 0, http.StatusUnsupportedMediaType, "EXT002"},
		{"no file", "/api/extract/web-test", "", "", map[string]string{"pages": "1"}, 0, http.StatusBadRequest, "FILE002"},
		{"empty file", "/api/extract/web-test", "lines.csv", "", nil, 0, http.StatusBadRequest, "FILE003"},
		{"too large", "/api/extract/web-test", "lines.csv", linesCSV, nil, 64, http.StatusRequestEntityTooLarge, "FILE001"},
		{"bad pages", "/api/extract/web-test", "lines.csv", linesCSV, map[string]string{"pages": "0"}, 0, http.StatusBadRequest, "REQ001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.maxSize > 0 {
				cfg.Extract.MaxFileSize = tt.maxSize
			}
			s, _ := newTestServer(t, cfg)

			rec := serve(s, uploadRequest(t, tt.target, tt.filename, tt.content, tt.fields))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v (%s)", err, rec.Body.String())
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleExtract_SinkFailure(t *testing.T) {
	out := &recordingSink{err: errors.New("disk full")}
	s, _ := newTestServer(t, testConfig(), WithSink(out))

	rec := serve(s, uploadRequest(t, "/api/extract/web-test", "lines.csv", linesCSV, nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != "SNK001" || resp.RunID == "" {
		t.Errorf("response = %+v, want SNK001 with run id", resp)
	}
}

func TestHandleExtract_Busy(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	limiter := s.service.Limiter()
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire() = false")
	}
	defer limiter.Release()

	rec := serve(s, uploadRequest(t, "/api/extract/web-test", "lines.csv", linesCSV, nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestHandleExtract_XLSX(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, uploadRequest(t, "/api/extract/web-test?format=xlsx", "lines.csv", linesCSV, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "web-test.xlsx") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[1][0] != "5" || rows[1][1] != "君津線" || rows[2][0] != "9" {
		t.Errorf("rows = %v", rows)
	}
}

func TestHandlePreview(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := uploadRequest(t, "/preview", "lines.csv", linesCSV, map[string]string{"layout": "web-test"})
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"君津線", "Showing first 1 of 2 records."} {
		if !strings.Contains(body, want) {
			t.Errorf("preview missing %q: %s", want, body)
		}
	}
	if strings.Contains(body, "南線") {
		t.Error("preview shows more rows than configured")
	}
}

func TestHandlePreview_ErrorFragment(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := uploadRequest(t, "/preview/nope", "lines.csv", linesCSV, nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<code>LAY001</code>") {
		t.Errorf("body = %s, want LAY001 alert", rec.Body.String())
	}
}

func TestHandleLayouts(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/layouts", nil))
	var layouts []core.Layout
	if err := json.Unmarshal(rec.Body.Bytes(), &layouts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(layouts) != 1 || layouts[0].Key != "web-test" || len(layouts[0].Fields) != 4 {
		t.Errorf("layouts = %+v", layouts)
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/layouts/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET missing layout status = %d, want 404", rec.Code)
	}
}

func TestHandleHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	serve(s, uploadRequest(t, "/api/extract/web-test", "lines.csv", linesCSV, nil))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if health.Status != "ok" || health.Runs == nil || health.Runs.Capacity != 1 {
		t.Errorf("health = %+v", health)
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`linecap_runs_total{layout="web-test",status="ok"} 1`,
		`linecap_rows_total{layout="web-test",outcome="accepted"} 2`,
		`linecap_runs_capacity 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<option value="web-test" selected>Web test lines</option>`) {
		t.Errorf("index missing layout option")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}
}
