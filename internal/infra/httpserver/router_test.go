package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/inspecta/internal/application"
	appai "github.com/bryanwahyu/inspecta/internal/application/ai"
	appinspections "github.com/bryanwahyu/inspecta/internal/application/inspections"
	appsettings "github.com/bryanwahyu/inspecta/internal/application/settings"
	appuploads "github.com/bryanwahyu/inspecta/internal/application/uploads"
	domai "github.com/bryanwahyu/inspecta/internal/domain/ai"
	"github.com/bryanwahyu/inspecta/internal/infra/db/sqlite"
	"github.com/bryanwahyu/inspecta/internal/infra/db/sqlstore"
	"github.com/bryanwahyu/inspecta/internal/middleware"
)

type scriptedGenerator struct {
	text   string
	err    error
	prompt string
}

func (g *scriptedGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	if g.text != "" {
		return g.text, nil
	}
	return "eco: " + prompt, nil
}

type memBlobs struct {
	deleted []string
	keys    []string
}

func (m *memBlobs) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	m.keys = append(m.keys, key)
	return "http://minio:9000/inspection-photos/" + key, nil
}

func (m *memBlobs) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

type testEnv struct {
	handler http.Handler
	gen     *scriptedGenerator
	blobs   *memBlobs
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Connect(ctx, filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck

	schema := sqlstore.NewSchema(db, sqlite.Dialect)
	require.NoError(t, schema.Bootstrap(ctx))

	gen := &scriptedGenerator{}
	blobs := &memBlobs{}
	metrics, err := middleware.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	settings := &appsettings.Service{Repo: sqlstore.NewConfigRepository(db, sqlite.Dialect)}
	batcher := &appai.Batcher{Generator: gen, Observer: metrics}
	seq := 0
	clock := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	handler := NewRouter(Deps{
		Inspections: &appinspections.Service{
			Inspections: sqlstore.NewInspectionRepository(db, sqlite.Dialect),
			Findings:    sqlstore.NewFindingRepository(db, sqlite.Dialect),
			Schema:      schema,
			Enricher:    batcher,
			Zones:       settings,
			Clock:       application.FixedClock{T: clock},
			NewID: func() string {
				seq++
				return fmt.Sprintf("id-%02d", seq)
			},
		},
		Settings: settings,
		Uploads:  &appuploads.Service{Store: blobs, BestEffortDelete: true, NewID: func() string { return "photo" }},
		AI:       appai.NewService(gen, batcher),
		Metrics:  metrics,
		Health: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: schema},
		},
		Ready:          &middleware.DatabaseHealthChecker{DB: schema},
		MaxUploadBytes: 1 << 20,
	})
	return &testEnv{handler: handler, gen: gen, blobs: blobs}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func (e *testEnv) list(t *testing.T, path string) []map[string]any {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestMigrateThenInspectionsAndFindings(t *testing.T) {
	env := newEnv(t)

	code, body := env.do(t, http.MethodGet, "/migrate", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "OK", body["migrations"].(map[string]any)["zone_id"])

	code, body = env.do(t, http.MethodPost, "/inspections", `{"title":"Nave 1","location":"Monterrey","inspector":"Ana"}`)
	require.Equal(t, http.StatusOK, code)
	inspID := body["id"].(string)

	code, _ = env.do(t, http.MethodPost, "/findings", fmt.Sprintf(
		`{"inspectionId":%q,"zoneId":"z1","itemLabel":"Extintor","description":"vencido","severity":"alta","photoUrl":"http://minio:9000/inspection-photos/findings/a.jpg","aiAnalysis":"viejo"}`, inspID))
	require.Equal(t, http.StatusOK, code)

	inspections := env.list(t, "/inspections")
	require.Len(t, inspections, 1)
	assert.Equal(t, "Nave 1", inspections[0]["title"])

	findings := env.list(t, "/findings?inspectionId="+inspID)
	require.Len(t, findings, 1)
	assert.Equal(t, "Extintor", findings[0]["item_label"])
	assert.Nil(t, findings[0]["ai_analysis"])
	assert.Nil(t, findings[0]["description_ai"])
	assert.Empty(t, env.list(t, "/findings?inspectionId=other"))
}

func TestFindingsOnFreshDatabase(t *testing.T) {
	env := newEnv(t)

	_, body := env.do(t, http.MethodPost, "/inspections", `{"title":"Nave 2"}`)
	inspID := body["id"].(string)

	code, body := env.do(t, http.MethodPost, "/findings", fmt.Sprintf(`{"inspectionId":%q,"zoneId":"z1","description":"sin señal"}`, inspID))
	require.Equal(t, http.StatusOK, code, body)

	findings := env.list(t, "/findings?inspectionId="+inspID)
	require.Len(t, findings, 1)
	assert.Equal(t, "z1", findings[0]["zone_id"])
	assert.Nil(t, findings[0]["description_ai"])
	assert.Nil(t, findings[0]["recommendations"])
}

func TestValidationErrors(t *testing.T) {
	env := newEnv(t)
	env.do(t, http.MethodGet, "/migrate", "")

	cases := []struct{ method, path, body string }{
		{http.MethodPost, "/inspections", `{"title":""}`},
		{http.MethodPost, "/inspections", `{"title":"__cfg__"}`},
		{http.MethodPost, "/inspections", `not json`},
		{http.MethodPost, "/findings", `{"inspectionId":"i1","photoUrl":"ftp://x/y"}`},
		{http.MethodPost, "/findings", `{"description":"sin inspección"}`},
		{http.MethodPost, "/findings", `{"inspectionId":"a b","description":"x"}`},
		{http.MethodPost, "/findings", `{"inspectionId":"../x","description":"x"}`},
		{http.MethodPost, "/ai", `{"mode":"poem","prompt":"x"}`},
		{http.MethodPost, "/ai", `{"mode":"prompt"}`},
		{http.MethodPost, "/ai", `{"mode":"summary"}`},
		{http.MethodGet, "/findings?inspectionId=../x", ""},
	}
	for _, c := range cases {
		code, body := env.do(t, c.method, c.path, c.body)
		assert.Equal(t, http.StatusBadRequest, code, "%s %s %s", c.method, c.path, c.body)
		assert.NotEmpty(t, body["error"])
	}
}

func TestAIModes(t *testing.T) {
	env := newEnv(t)

	code, body := env.do(t, http.MethodPost, "/ai", `{"prompt":"hola"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "eco: hola", body["text"])

	code, body = env.do(t, http.MethodPost, "/ai", `{"mode":"summary","context":"3 hallazgos"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body["text"], "3 hallazgos")

	env.gen.text = "```json\n[{\"id\":\"a\",\"description_ai\":\"mejorado\",\"recommendations\":\"x | y\"}]\n```"
	code, body = env.do(t, http.MethodPost, "/ai", `{"mode":"findings","findings":[{"id":"a","itemLabel":"i","description":"d"},{"id":"b","itemLabel":"i","description":"d"}]}`)
	require.Equal(t, http.StatusOK, code)
	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "mejorado", results[0].(map[string]any)["description_ai"])

	code, body = env.do(t, http.MethodPost, "/ai", `{"mode":"findings","findings":[]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["results"])
}

func TestAIErrors(t *testing.T) {
	env := newEnv(t)

	env.gen.err = domai.ErrServiceUnavailable
	code, body := env.do(t, http.MethodPost, "/ai", `{"prompt":"hola"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "ai service is not configured", body["error"])

	env.gen.err = &domai.CallError{Provider: "openai", Status: 502, Err: fmt.Errorf("bad gateway")}
	code, body = env.do(t, http.MethodPost, "/ai", `{"mode":"summary","context":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body["error"], "bad gateway")

	code, body = env.do(t, http.MethodPost, "/ai", `{"mode":"findings","findings":[{"id":"a","itemLabel":"i","description":"d"}]}`)
	require.Equal(t, http.StatusOK, code, "findings mode degrades instead of failing")
	result := body["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "a", result["id"])
	assert.Equal(t, "", result["description_ai"])

	env.gen.err = domai.ErrServiceUnavailable
	code, body = env.do(t, http.MethodPost, "/ai", `{"mode":"findings","findings":[{"id":"a","itemLabel":"i","description":"d"}]}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "ai service is not configured", body["error"])
}

func TestEnrichInspectionWithoutCredential(t *testing.T) {
	env := newEnv(t)
	_, body := env.do(t, http.MethodPost, "/inspections", `{"title":"Planta"}`)
	inspID := body["id"].(string)
	env.do(t, http.MethodPost, "/findings", fmt.Sprintf(`{"inspectionId":%q,"description":"vencido"}`, inspID))

	env.gen.err = domai.ErrServiceUnavailable
	code, body := env.do(t, http.MethodPost, "/inspections/"+inspID+"/enrich", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "ai service is not configured", body["error"])
}

func TestAIFindingsAcceptsSnakeCaseFields(t *testing.T) {
	env := newEnv(t)
	env.gen.text = `[{"id":"a","description_ai":"mejorado"}]`

	code, _ := env.do(t, http.MethodPost, "/ai", `{"mode":"findings","findings":[{"id":"a","zone_name":"Almacén","item_label":"Extintor","description":"d"}]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, env.gen.prompt, "Almacén")
	assert.Contains(t, env.gen.prompt, "Extintor")
}

func TestConfigRoundTrip(t *testing.T) {
	env := newEnv(t)

	code, body := env.do(t, http.MethodPut, "/config", `{"zones_config":"[{\"id\":\"z1\"}]","maxPhotos":5}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"maxPhotos", "zones_config"}, body["saved"])

	code, body = env.do(t, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"zones_config": `[{"id":"z1"}]`, "maxPhotos": "5"}, body)
}

func TestEnrichInspectionRoute(t *testing.T) {
	env := newEnv(t)
	env.do(t, http.MethodGet, "/migrate", "")
	env.do(t, http.MethodPut, "/config", `{"zones_config":"[{\"id\":\"z1\",\"name\":\"Almacén\"}]"}`)

	_, body := env.do(t, http.MethodPost, "/inspections", `{"title":"Planta"}`)
	inspID := body["id"].(string)
	_, body = env.do(t, http.MethodPost, "/findings", fmt.Sprintf(`{"inspectionId":%q,"zoneId":"z1","itemLabel":"Extintor","description":"vencido"}`, inspID))
	findingID := body["id"].(string)

	env.gen.text = fmt.Sprintf(`[{"id":%q,"description_ai":"Extintor con carga vencida","recommendations":["Recargar","Etiquetar"]}]`, findingID)
	code, body := env.do(t, http.MethodPost, "/inspections/"+inspID+"/enrich", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["updated"])

	findings := env.list(t, "/findings?inspectionId="+inspID)
	require.Len(t, findings, 1)
	assert.Equal(t, "Extintor con carga vencida", findings[0]["description_ai"])
	assert.Equal(t, "Recargar | Etiquetar", findings[0]["recommendations"])

	code, _ = env.do(t, http.MethodPost, "/inspections/missing/enrich", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func multipartBody(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withFile {
		fw, err := mw.CreateFormFile("file", "foto.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("jpegdata"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func upload(env *testEnv, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadWithoutPreviousURL(t *testing.T) {
	env := newEnv(t)
	body, ct := multipartBody(t, nil, true)

	rec := upload(env, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "http://minio:9000/inspection-photos/findings/photo.jpg", out["url"])
	assert.Empty(t, env.blobs.deleted)
}

func TestUploadReplacesPrevious(t *testing.T) {
	env := newEnv(t)
	prev := "http://minio:9000/inspection-photos/findings/old.jpg"
	body, ct := multipartBody(t, map[string]string{"previousUrl": prev}, true)

	rec := upload(env, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{prev}, env.blobs.deleted)
}

func TestUploadRequiresFile(t *testing.T) {
	env := newEnv(t)
	body, ct := multipartBody(t, map[string]string{"previousUrl": ""}, false)

	rec := upload(env, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file is required")
	assert.Empty(t, env.blobs.keys)
}

func TestAdminResetKeepsConfig(t *testing.T) {
	env := newEnv(t)
	env.do(t, http.MethodGet, "/migrate", "")
	env.do(t, http.MethodPut, "/config", `{"company":"ACME"}`)
	_, body := env.do(t, http.MethodPost, "/inspections", `{"title":"Planta"}`)
	env.do(t, http.MethodPost, "/findings", fmt.Sprintf(`{"inspectionId":%q,"description":"d"}`, body["id"]))

	code, body := env.do(t, http.MethodDelete, "/admin", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	assert.Empty(t, env.list(t, "/inspections"))
	assert.Empty(t, env.list(t, "/findings"))
	_, body = env.do(t, http.MethodGet, "/config", "")
	assert.Equal(t, "ACME", body["company"])
}

func TestOperationalRoutes(t *testing.T) {
	env := newEnv(t)

	code, body := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])

	code, _ = env.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, code)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	env := newEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/config", nil)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Contains(t, []string{"*", "http://app.local"}, rec.Header().Get("Access-Control-Allow-Origin"))
}
