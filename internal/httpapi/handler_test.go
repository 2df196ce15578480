package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"lombada-bot/internal/catalog"
	"lombada-bot/internal/form"
	"lombada-bot/internal/lombada"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.PaperType{
		{Name: "Offset", Weights: []catalog.WeightEntry{
			{Label: "56", BaseDivisor: 56},
			{Label: "75", BaseDivisor: 46},
		}},
		{Name: "Pólen Soft", Weights: []catalog.WeightEntry{
			{Label: "65 2.0", BaseDivisor: 65},
		}},
		{Name: "Reciclado"},
	})
}

func serve(t *testing.T, res catalog.Result, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := New(res, zap.NewNop())

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func loaded() catalog.Result {
	return catalog.Result{Catalog: testCatalog()}
}

func failed() catalog.Result {
	return catalog.Result{Err: catalog.ErrLoadFailed}
}

func TestPapers(t *testing.T) {
	rec := serve(t, loaded(), http.MethodGet, "/api/papeis", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[selectResponse](t, rec)
	assert.False(t, resp.Disabled)
	assert.Nil(t, resp.Message)
	require.Len(t, resp.Options, 4)
	assert.Equal(t, optionResponse{Text: form.PaperPlaceholder, Disabled: true}, resp.Options[0])
	assert.Equal(t, optionResponse{Value: "Pólen Soft", Text: "Pólen Soft"}, resp.Options[2])
}

func TestPapersCatalogFailure(t *testing.T) {
	rec := serve(t, failed(), http.MethodGet, "/api/papeis", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	resp := decode[selectResponse](t, rec)
	assert.True(t, resp.Disabled)
	assert.Empty(t, resp.Options)
	require.NotNil(t, resp.Message)
	assert.Equal(t, form.SeverityError, resp.Message.Severity)
	assert.Equal(t, form.CatalogLoadError, resp.Message.Message)
}

func TestWeights(t *testing.T) {
	tests := []struct {
		name     string
		paper    string
		disabled bool
		texts    []string
	}{
		{name: "numeric labels", paper: "Offset", texts: []string{form.WeightPlaceholder, "56g", "75g"}},
		{name: "free text label", paper: "Pólen Soft", texts: []string{form.WeightPlaceholder, "65 2.0"}},
		{name: "no weights", paper: "Reciclado", disabled: true, texts: []string{form.NoWeights}},
		{name: "unknown paper", paper: "Kraft", disabled: true, texts: []string{form.NoWeights}},
		{name: "empty paper", paper: "", disabled: true, texts: []string{form.NoWeights}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/api/papeis/gramaturas?papel=" + url.QueryEscape(tt.paper)
			rec := serve(t, loaded(), http.MethodGet, target, "")
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decode[selectResponse](t, rec)
			assert.Equal(t, tt.disabled, resp.Disabled)

			var texts []string
			for _, o := range resp.Options {
				texts = append(texts, o.Text)
			}
			assert.Equal(t, tt.texts, texts)
		})
	}
}

func TestWeightsCatalogFailure(t *testing.T) {
	rec := serve(t, failed(), http.MethodGet, "/api/papeis/gramaturas?papel=Offset", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    int
		message string
		spine   float64
	}{
		{
			name:    "case bound",
			body:    `{"papel":"Offset","gramatura":"56","paginas":200,"cartonado":true}`,
			code:    http.StatusOK,
			message: "A lombada (Cartonado) é: 7.6 mm",
			spine:   7.6,
		},
		{
			name:    "pages as string",
			body:    `{"papel":"Pólen Soft","gramatura":"65 2.0","paginas":" 150 ","fresado":true,"costurado":true}`,
			code:    http.StatusOK,
			message: "A lombada (Costurado e Fresado) é: 3.3 mm",
			spine:   3.3,
		},
		{
			name:    "no binding",
			body:    `{"papel":"Offset","gramatura":"56","paginas":200}`,
			code:    http.StatusUnprocessableEntity,
			message: lombada.ErrNoBinding.Msg,
		},
		{
			name:    "fractional pages",
			body:    `{"papel":"Offset","gramatura":"56","paginas":12.5,"fresado":true}`,
			code:    http.StatusUnprocessableEntity,
			message: lombada.ErrIncompleteForm.Msg,
		},
		{
			name:    "missing pages",
			body:    `{"papel":"Offset","gramatura":"56","fresado":true}`,
			code:    http.StatusUnprocessableEntity,
			message: lombada.ErrIncompleteForm.Msg,
		},
		{
			name:    "unknown weight",
			body:    `{"papel":"Offset","gramatura":"90","paginas":"100","fresado":true}`,
			code:    http.StatusUnprocessableEntity,
			message: lombada.ErrBaseNotFound.Msg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, loaded(), http.MethodPost, "/api/lombada", tt.body)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())

			resp := decode[messageResponse](t, rec)
			assert.Equal(t, tt.message, resp.Message)

			if tt.code == http.StatusOK {
				assert.Equal(t, form.SeveritySuccess, resp.Severity)
				require.NotNil(t, resp.SpineMM)
				assert.InDelta(t, tt.spine, *resp.SpineMM, 1e-9)
				assert.NotEmpty(t, resp.Binding)
			} else {
				assert.Equal(t, form.SeverityError, resp.Severity)
				assert.Nil(t, resp.SpineMM)
			}
		})
	}
}

func TestCalculateBadBody(t *testing.T) {
	rec := serve(t, loaded(), http.MethodPost, "/api/lombada", `{"papel":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateRejectsNonScalarPages(t *testing.T) {
	for _, pages := range []string{`true`, `[200]`, `{"n":200}`} {
		body := `{"papel":"Offset","gramatura":"56","paginas":` + pages + `,"fresado":true}`
		rec := serve(t, loaded(), http.MethodPost, "/api/lombada", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, pages)
	}
}

func TestCalculateCatalogFailure(t *testing.T) {
	rec := serve(t, failed(), http.MethodPost, "/api/lombada",
		`{"papel":"Offset","gramatura":"56","paginas":200,"cartonado":true}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, form.CatalogLoadError, decode[messageResponse](t, rec).Message)
}

func TestHealth(t *testing.T) {
	rec := serve(t, loaded(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","catalog":"loaded","papers":3}`, rec.Body.String())

	rec = serve(t, failed(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","catalog":"failed","papers":0}`, rec.Body.String())
}

func TestRequestsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := New(loaded(), zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/api/papeis", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/papeis", entries[0].ContextMap()["uri"])
	assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
}

func TestPageCountUnmarshal(t *testing.T) {
	tests := map[string]PageCount{
		`12`:    "12",
		`"12"`:  "12",
		`" 7 "`: " 7 ",
		`null`:  "",
		`12.5`:  "12.5",
		`"abc"`: "abc",
	}
	for in, want := range tests {
		var p PageCount
		require.NoError(t, json.Unmarshal([]byte(in), &p), in)
		assert.Equal(t, want, p, in)
	}

	for _, in := range []string{`true`, `false`, `[1]`, `{}`} {
		var p PageCount
		assert.Error(t, json.Unmarshal([]byte(in), &p), in)
	}
}
