package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spendwise-dev/spendwise/internal/categories"
	"github.com/spendwise-dev/spendwise/internal/categorize"
	"github.com/spendwise-dev/spendwise/internal/config"
	"github.com/spendwise-dev/spendwise/internal/database"
	"github.com/spendwise-dev/spendwise/internal/importer"
	"github.com/spendwise-dev/spendwise/internal/logger"
	"github.com/spendwise-dev/spendwise/internal/store"
)

const statement = "Date,Description,Amount\n" +
	"2024-03-01,Whole Foods,-23.45\n" +
	"2024-03-02,Employer Payroll,2000.00\n" +
	"2024-03-31,Wells Fargo Mortgage,-1200.00\n" +
	"2024-03-15,Mystery Vendor,-10.00\n" +
	"2024-02-15,Shell Gas,-40.00\n"

type testServer struct {
	router  *gin.Engine
	store   *store.Store
	handler *Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newLoggedTestServer(t, logger.Nop())
}

func newLoggedTestServer(t *testing.T, log zerolog.Logger) *testServer {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	st := store.New(db)
	imp := importer.NewService(st, categorize.NewEngine(nil, st), log)
	h := NewHandler(st, imp, log)
	cfg := config.ServerConfig{Mode: gin.TestMode, AllowedOrigins: []string{"http://localhost:5173"}}
	return &testServer{router: NewRouter(cfg, h), store: st, handler: h}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req)
}

func (s *testServer) upload(t *testing.T, csv string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if csv != "" {
		fw, err := mw.CreateFormFile("file", "statement.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(csv))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(t, req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	dec := json.NewDecoder(w.Body)
	dec.UseNumber()
	var m map[string]any
	require.NoError(t, dec.Decode(&m), w.Body.String())
	return m
}

func TestDBPing(t *testing.T) {
	s := newTestServer(t)

	w := s.get(t, "/api/db-ping")
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)
	assert.Equal(t, "ok", m["db"])
	assert.NotEmpty(t, m["version"])
}

func TestImportCSV_PreviewByDefault(t *testing.T) {
	s := newTestServer(t)

	w := s.upload(t, statement, map[string]string{"month": "2024-03"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	m := decode(t, w)
	assert.Equal(t, "preview", m["mode"])
	assert.Equal(t, "2024-03", m["month"])
	assert.Equal(t, json.Number("5"), m["totalRows"])

	rows := m["rows"].([]any)
	require.Len(t, rows, 5)
	first := rows[0].(map[string]any)
	assert.Equal(t, "Groceries", first["suggestedCategory"])
	assert.Equal(t, "ESSENTIAL", first["categoryGroup"])
	assert.Equal(t, json.Number("-23.45"), first["amount"])
	assert.Equal(t, true, first["wouldImport"])
	assert.Equal(t, false, rows[4].(map[string]any)["inTargetMonth"])

	txns, err := s.store.ListTransactions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestImportCSV_CommitThenQuery(t *testing.T) {
	s := newTestServer(t)

	preview := decode(t, s.upload(t, statement, map[string]string{"month": "2024-03"}))
	excluded := preview["rows"].([]any)[3].(map[string]any)["hash"].(string)
	payroll := preview["rows"].([]any)[1].(map[string]any)["hash"].(string)

	w := s.upload(t, statement, map[string]string{
		"month":         "2024-03",
		"dryRun":        "false",
		"exclude":       `["` + excluded + `"]`,
		"descOverrides": `{"` + payroll + `":"ACME payroll"}`,
		"overrides":     "not json",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	m := decode(t, w)
	assert.Equal(t, "commit", m["mode"])
	assert.Equal(t, json.Number("3"), m["inserted"])
	assert.Equal(t, json.Number("2"), m["skipped"])
	assert.NotContains(t, m, "rows")

	w = s.get(t, "/api/transactions?month=2024-03")
	require.Equal(t, http.StatusOK, w.Code)
	var txns []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txns))
	require.Len(t, txns, 3)
	assert.Equal(t, "2024-03-01", txns[0]["postedAt"])
	assert.Equal(t, "ACME payroll", txns[1]["description"])
	assert.Equal(t, "Income", txns[1]["category"].(map[string]any)["name"])
	assert.Nil(t, txns[1]["category"].(map[string]any)["group"])

	w = s.get(t, "/api/months")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"months":["2024-03"]}`, w.Body.String())
}

func TestImportCSV_LogsWithRequestFields(t *testing.T) {
	var buf bytes.Buffer
	s := newLoggedTestServer(t, logger.New("info", "json", &buf))

	w := s.upload(t, statement, map[string]string{"month": "2024-03"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	lines := map[string]map[string]any{}
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m), l)
		lines[m["message"].(string)] = m
	}
	finished, ok := lines["import finished"]
	require.True(t, ok, buf.String())
	request, ok := lines["request"]
	require.True(t, ok, buf.String())

	assert.Equal(t, "/api/import/csv", finished["path"])
	assert.Equal(t, "importer", finished["component"])
	assert.NotEmpty(t, finished["request_id"])
	assert.Equal(t, request["request_id"], finished["request_id"])
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in        string
		value, ok bool
	}{
		{"true", true, true},
		{" YES ", true, true},
		{"on", true, true},
		{"1", true, true},
		{"false", false, true},
		{"No", false, true},
		{"off", false, true},
		{"0", false, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			value, ok := parseFlag(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestImportCSV_DryRunSpellings(t *testing.T) {
	s := newTestServer(t)

	w := s.upload(t, statement, map[string]string{"month": "2024-03", "dryRun": "off"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "commit", decode(t, w)["mode"])

	w = s.upload(t, statement, map[string]string{"month": "2024-03", "dryRun": "yes"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "preview", decode(t, w)["mode"])
}

func TestImportCSV_BadRequests(t *testing.T) {
	s := newTestServer(t)

	w := s.upload(t, "", map[string]string{"month": "2024-03"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload(t, statement, map[string]string{"month": "2024-3x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "invalid month")

	w = s.upload(t, statement, map[string]string{"dryRun": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportCSV_CreditStatementFromQuery(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "card.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Date,Description,Amount\n2024-03-01,Starbucks,5.75\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/csv?statementType=credit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := s.do(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	row := decode(t, w)["rows"].([]any)[0].(map[string]any)
	assert.Equal(t, json.Number("-5.75"), row["amount"])
	assert.Equal(t, "Coffee", row["suggestedCategory"])
}

func TestCategories_CreateAndList(t *testing.T) {
	s := newTestServer(t)

	w := s.postJSON(t, "/api/categories", `{"name":" Gym ","group":"surplus"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	gym := decode(t, w)
	assert.Equal(t, "Gym", gym["name"])
	assert.Equal(t, "SURPLUS", gym["group"])
	assert.Equal(t, false, gym["isIncome"])

	w = s.postJSON(t, "/api/categories", `{"name":"GYM","group":"DEBT"}`)
	require.Equal(t, http.StatusOK, w.Code)
	again := decode(t, w)
	assert.Equal(t, gym["id"], again["id"])
	assert.Equal(t, "SURPLUS", again["group"], "existing category is returned unchanged")

	w = s.postJSON(t, "/api/categories", `{"name":"Salary","group":"DEBT","isIncome":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	salary := decode(t, w)
	assert.Nil(t, salary["group"])
	assert.Equal(t, true, salary["isIncome"])

	w = s.postJSON(t, "/api/categories", `{"name":"apples"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SURPLUS", decode(t, w)["group"], "expense categories always have a group")

	w = s.get(t, "/api/categories")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Categories []categoryDTO `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	var names []string
	for _, c := range list.Categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"apples", "Gym", "Salary"}, names)
}

func TestCategories_CreateErrors(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.postJSON(t, "/api/categories", `{"name":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.postJSON(t, "/api/categories", `{"name":"X","group":"luxury"}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.postJSON(t, "/api/categories", `{"name":`).Code)
}

func TestMonthlyByGroup(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.upload(t, statement, map[string]string{"dryRun": "false"}).Code)

	w := s.get(t, "/api/summary/monthly/by-group?month=2024-03")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	m := decode(t, w)
	assert.Equal(t, "2024-03", m["month"])
	assert.Equal(t, json.Number("2000.00"), m["income"])
	assert.Equal(t, json.Number("1233.45"), m["expenses"])
	assert.Equal(t, json.Number("766.55"), m["net"])
	assert.Equal(t, map[string]any{
		"ESSENTIAL": json.Number("23.45"),
		"SURPLUS":   json.Number("10.00"),
		"DEBT":      json.Number("1200.00"),
	}, m["byGroup"])

	w = s.get(t, "/api/summary/monthly/by-group?month=2024-01")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, json.Number("0.00"), decode(t, w)["net"])

	assert.Equal(t, http.StatusBadRequest, s.get(t, "/api/summary/monthly/by-group").Code)
	assert.Equal(t, http.StatusBadRequest, s.get(t, "/api/summary/monthly/by-group?month=march").Code)
}

func TestMonths_Empty(t *testing.T) {
	s := newTestServer(t)

	w := s.get(t, "/api/months")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"months":[]}`, w.Body.String())
}

func TestAddSample(t *testing.T) {
	s := newTestServer(t)
	s.handler.now = func() time.Time { return time.Date(2024, 5, 7, 21, 30, 0, 0, time.Local) }

	w := s.do(t, httptest.NewRequest(http.MethodPost, "/api/transactions/sample", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	_, err := categories.Bootstrap(context.Background(), s.store, categories.DefaultSeeds())
	require.NoError(t, err)

	w = s.do(t, httptest.NewRequest(http.MethodPost, "/api/transactions/sample", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	m := decode(t, w)
	assert.Equal(t, "2024-05-07", m["postedAt"])
	assert.Equal(t, "Whole Foods", m["description"])
	assert.Equal(t, json.Number("-23.45"), m["amount"])
	assert.Equal(t, "Groceries", m["category"].(map[string]any)["name"])
}

func TestExportTransactions(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.upload(t, statement, map[string]string{"dryRun": "false"}).Code)

	w := s.get(t, "/api/transactions/export?month=2024-03")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transactions_2024-03.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, []string{"2024-03-01", "Whole Foods", "-23.45", "Groceries", "ESSENTIAL"}, rows[1])

	assert.Equal(t, http.StatusBadRequest, s.get(t, "/api/transactions/export?month=bad").Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/months", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := s.do(t, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/months", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = s.do(t, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig(t *testing.T) {
	_, ok := corsConfig(nil)
	assert.False(t, ok)

	c, ok := corsConfig([]string{"*"})
	require.True(t, ok)
	assert.True(t, c.AllowAllOrigins)
	assert.Empty(t, c.AllowOrigins)
}
