package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bookdist/internal/blob"
	"bookdist/internal/core"
	"bookdist/internal/infra/persistence/memory"
	"bookdist/pkg/domain"
)

func newTestRouter(t *testing.T) (*gin.Engine, *core.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := core.NewService(context.Background(), memory.NewStore(), core.WithBlobStore(blob.NewMemory()))
	t.Cleanup(func() { _ = svc.Close() })
	return NewRouter(svc, WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("bookdist_operations_total 1\n"))
	}))), svc
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestTreeRoutes(t *testing.T) {
	r, svc := newTestRouter(t)
	tree := svc.Schools()
	school, class, subject := tree[0].ID, tree[0].Classes[0].ID, tree[0].Classes[0].Subjects[0].ID
	base := "/api/schools/" + school

	if w := do(t, r, http.MethodPost, "/api/schools", ""); w.Code != http.StatusCreated {
		t.Fatalf("add school: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodPost, base+"/classes", ""); w.Code != http.StatusCreated {
		t.Fatalf("add class: %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/last-school/classes", ""); w.Code != http.StatusCreated {
		t.Fatalf("add class to last school: %d", w.Code)
	}
	w := do(t, r, http.MethodPost, base+"/classes/"+class+"/subjects", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("add subject: %d", w.Code)
	}
	var added domain.Subject
	decode(t, w, &added)
	if added.ID == "" || added.Distribution != 100 {
		t.Fatalf("unexpected subject %+v", added)
	}
	if w := do(t, r, http.MethodPatch, base, `{"name":"مدرسة الفجر"}`); w.Code != http.StatusOK {
		t.Fatalf("update school: %d", w.Code)
	}
	if w := do(t, r, http.MethodPatch, base+"/classes/"+class, `{"name":"الصف 3"}`); w.Code != http.StatusOK {
		t.Fatalf("update class: %d", w.Code)
	}
	if w := do(t, r, http.MethodPatch, base+"/classes/"+class, `{"name":"Grade 9"}`); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"changed":false`) {
		t.Fatalf("expected non-canonical label to be ignored: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPatch, base+"/classes/"+class+"/subjects/"+subject, `{"name":"لغة","students":"32 ","distribution":50,"booksPerCarton":"x"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"changed":true`) {
		t.Fatalf("update subject: %d %s", w.Code, w.Body.String())
	}
	got := svc.Schools()[0]
	s := got.Classes[0].Subjects[0]
	if got.Name != "مدرسة الفجر" || got.Classes[0].Name != "الصف 3" {
		t.Fatalf("unexpected names %+v", got)
	}
	if s.Name != "لغة" || s.Students != 32 || s.Distribution != 50 || s.BooksPerCarton != 0 {
		t.Fatalf("unexpected subject %+v", s)
	}
	if w := do(t, r, http.MethodPatch, "/api/schools/missing", `{"name":"x"}`); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"changed":false`) {
		t.Fatalf("stale update: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodPatch, base, `{`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", w.Code)
	}
}

func TestDefaultsRoute(t *testing.T) {
	r, svc := newTestRouter(t)
	school := svc.Schools()[0].ID
	if w := do(t, r, http.MethodPut, "/api/schools/"+school+"/defaults/students", `{"value":"25"}`); w.Code != http.StatusOK {
		t.Fatalf("set default: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodPut, "/api/schools/"+school+"/defaults/booksPerCarton", `{"value":40}`); w.Code != http.StatusOK {
		t.Fatalf("set default number: %d", w.Code)
	}
	d := svc.Schools()[0].Defaults()
	if d.Students != 25 || d.BooksPerCarton != 40 {
		t.Fatalf("unexpected defaults %+v", d)
	}
	if w := do(t, r, http.MethodPut, "/api/schools/"+school+"/defaults/colour", `{"value":1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", w.Code)
	}
}

func TestRemoveFlowThroughConfirmation(t *testing.T) {
	r, svc := newTestRouter(t)
	school := svc.Schools()[0].ID

	if w := do(t, r, http.MethodDelete, "/api/schools/"+school, ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for last school, got %d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/api/schools/missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	do(t, r, http.MethodPost, "/api/schools", "")
	w := do(t, r, http.MethodDelete, "/api/schools/"+school, "")
	if w.Code != http.StatusAccepted || !strings.Contains(w.Body.String(), `"isOpen":true`) {
		t.Fatalf("request removal: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodGet, "/api/confirmation", ""); !strings.Contains(w.Body.String(), `"isOpen":true`) {
		t.Fatalf("expected pending confirmation, got %s", w.Body.String())
	}
	if w := do(t, r, http.MethodPost, "/api/confirmation", ""); w.Code != http.StatusOK {
		t.Fatalf("confirm: %d %s", w.Code, w.Body.String())
	}
	if tree := svc.Schools(); len(tree) != 1 || tree[0].ID == school {
		t.Fatalf("expected school removed, got %+v", tree)
	}
	if w := do(t, r, http.MethodPost, "/api/confirmation", ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for idle confirm, got %d", w.Code)
	}
}

func TestCancelRoute(t *testing.T) {
	r, svc := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/log", "")
	if w := do(t, r, http.MethodDelete, "/api/log", ""); w.Code != http.StatusAccepted {
		t.Fatalf("clear request: %d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/api/confirmation", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"isOpen":false`) {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}
	if len(svc.Log()) != 1 {
		t.Fatalf("cancel must keep the log")
	}
}

func TestLogRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/log", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("archive: %d", w.Code)
	}
	var entry domain.LogEntry
	decode(t, w, &entry)

	w = do(t, r, http.MethodGet, "/api/log", "")
	var list struct {
		Entries []domain.LogEntry `json:"entries"`
		Count   int               `json:"count"`
	}
	decode(t, w, &list)
	if list.Count != 1 || list.Entries[0].ID != entry.ID {
		t.Fatalf("unexpected log %+v", list)
	}
	if w := do(t, r, http.MethodGet, "/api/log/"+entry.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("get entry: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/log/missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/api/log/"+entry.ID, ""); w.Code != http.StatusAccepted {
		t.Fatalf("delete request: %d", w.Code)
	}
	do(t, r, http.MethodPost, "/api/confirmation", "")
	w = do(t, r, http.MethodGet, "/api/log", "")
	decode(t, w, &list)
	if list.Count != 0 {
		t.Fatalf("expected empty log, got %d", list.Count)
	}
}

func TestSettingsRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	if w := do(t, r, http.MethodPut, "/api/settings", `{"theme":"dark","fontSize":"small"}`); w.Code != http.StatusOK {
		t.Fatalf("update settings: %d %s", w.Code, w.Body.String())
	}
	var got domain.Settings
	decode(t, do(t, r, http.MethodGet, "/api/settings", ""), &got)
	if got.Theme != domain.ThemeDark || got.FontSize != domain.FontSmall {
		t.Fatalf("unexpected settings %+v", got)
	}
	if w := do(t, r, http.MethodPut, "/api/settings", `{"theme":"sepia","fontSize":"small"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestResultAndCalcRoutes(t *testing.T) {
	r, svc := newTestRouter(t)
	tree := svc.Schools()
	school, class, subject := tree[0].ID, tree[0].Classes[0].ID, tree[0].Classes[0].Subjects[0].ID
	do(t, r, http.MethodPatch, "/api/schools/"+school+"/classes/"+class+"/subjects/"+subject, `{"students":35,"booksPerCarton":20}`)

	w := do(t, r, http.MethodGet, "/api/schools/"+school+"/classes/"+class+"/result", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"kind":"subtract"`) {
		t.Fatalf("result: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodGet, "/api/schools/"+school+"/classes/"+class+"/result?view=summary", "")
	var summary struct {
		Lines []string `json:"lines"`
	}
	decode(t, w, &summary)
	if len(summary.Lines) != 2 || !strings.HasPrefix(summary.Lines[0], "ملخص: ") {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if w := do(t, r, http.MethodGet, "/api/schools/"+school+"/classes/missing/result", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/calc?students=25&perCarton=10", "")
	var calcBody struct {
		Incomplete bool   `json:"incomplete"`
		Total      string `json:"total"`
		Result     struct {
			Kind      string `json:"kind"`
			Remainder int    `json:"remainder"`
		} `json:"result"`
	}
	decode(t, w, &calcBody)
	if calcBody.Incomplete || calcBody.Result.Kind != "add" || calcBody.Result.Remainder != 5 || calcBody.Total == "" {
		t.Fatalf("unexpected calc %+v", calcBody)
	}
}

func TestExportRoutes(t *testing.T) {
	r, svc := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/exports", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "exports/current/") {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodPost, "/api/exports", `{"formats":["pdf"]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/exports", `{"snapshotId":"missing"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown snapshot, got %d", w.Code)
	}
	list, _ := svc.Blobs().List(context.Background(), "exports/")
	if len(list) != 2 {
		t.Fatalf("expected two published files, got %d", len(list))
	}

	w = do(t, r, http.MethodGet, "/api/export/xls", "")
	if w.Code != http.StatusOK {
		t.Fatalf("download: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/vnd.ms-excel") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, ".xls") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\ufeff")) {
		t.Fatalf("expected BOM-prefixed spreadsheet")
	}
	if w := do(t, r, http.MethodGet, "/api/export/pdf", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/export/doc?snapshot=missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPublishedExportRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	if w := do(t, r, http.MethodGet, "/api/exports", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"count":0`) {
		t.Fatalf("empty listing: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodPost, "/api/exports", ""); w.Code != http.StatusOK {
		t.Fatalf("export: %d", w.Code)
	}
	w := do(t, r, http.MethodGet, "/api/exports", "")
	var listing struct {
		Exports []blob.Info `json:"exports"`
		Count   int         `json:"count"`
	}
	decode(t, w, &listing)
	if listing.Count != 2 || listing.Exports[0].Key != "exports/current/بيانات_الكتب_الحالية.xls" {
		t.Fatalf("unexpected listing %+v", listing)
	}

	file := "/api/exports/current/" + url.PathEscape("بيانات_الكتب_الحالية.xls")
	w = do(t, r, http.MethodGet, file, "")
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("\ufeff")) {
		t.Fatalf("download published: %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if int64(w.Body.Len()) != listing.Exports[0].Size {
		t.Fatalf("expected %d bytes, got %d", listing.Exports[0].Size, w.Body.Len())
	}
	head := do(t, r, http.MethodHead, file, "")
	if head.Code != http.StatusOK || head.Header().Get("Content-Length") != strconv.Itoa(w.Body.Len()) {
		t.Fatalf("head: %d %v", head.Code, head.Header())
	}
	if w := do(t, r, http.MethodGet, "/api/exports/current/missing.xls", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := do(t, r, http.MethodHead, "/api/exports/current/missing.xls", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from head, got %d", w.Code)
	}
}

func TestOversizedCountsAreClamped(t *testing.T) {
	r, svc := newTestRouter(t)
	tree := svc.Schools()
	school, class, subject := tree[0].ID, tree[0].Classes[0].ID, tree[0].Classes[0].Subjects[0].ID
	base := "/api/schools/" + school + "/classes/" + class
	w := do(t, r, http.MethodPatch, base+"/subjects/"+subject, `{"students":"99999999999999999999","booksPerCarton":24}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update subject: %d", w.Code)
	}
	if got := svc.Schools()[0].Classes[0].Subjects[0].Students; got != math.MaxInt32 {
		t.Fatalf("expected students clamped to %d, got %d", math.MaxInt32, got)
	}
	w = do(t, r, http.MethodGet, base+"/result", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"totalBooksNeeded":2147483647`) {
		t.Fatalf("unexpected result: %d %s", w.Code, w.Body.String())
	}
}

func TestObservabilityRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	if w := do(t, r, http.MethodGet, "/metrics", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "bookdist_operations_total") {
		t.Fatalf("metrics: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodGet, "/debug/vars", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "memstats") {
		t.Fatalf("expvar: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/state", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"logCount":0`) {
		t.Fatalf("state: %d %s", w.Code, w.Body.String())
	}
}
