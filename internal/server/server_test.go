package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"shoplist/internal/config"
	"shoplist/internal/model"
	"shoplist/internal/shoplist"
	"shoplist/internal/store"
)

type stubMappings struct {
	rows []model.MappingRow
	err  error
}

func (s stubMappings) LoadMappings(context.Context) ([]model.MappingRow, error) {
	return s.rows, s.err
}

func (s stubMappings) Source() string { return "https://example.com/map.xlsx" }

func orderUpload(t *testing.T, rows [][]interface{}) (*bytes.Buffer, string) {
	t.Helper()

	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()
	sheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	for i, row := range rows {
		row := row
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	data, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "Order.toship.20250101.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(data.Bytes()); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return body, mw.FormDataContentType()
}

func newTestServer(t *testing.T, mappings shoplist.MappingLoader) (*Server, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New(filepath.Join(t.TempDir(), store.DBFileName))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	return NewServer(cfg, mappings, st), st
}

func TestCreateShoppingList(t *testing.T) {
	srv, st := newTestServer(t, stubMappings{rows: []model.MappingRow{
		{ProductName: "【Acme】x", Vendor: "Acme Shop"},
	}})

	body, contentType := orderUpload(t, [][]interface{}{
		{"Product Name", "Variation Name", "Quantity"},
		{"【Acme】Widget", "", 3},
		{"【Acme】Widget", "", 2},
		{"NoBrand", "L", 1},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/shopping-list", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		RunID string             `json:"runId"`
		List  model.ShoppingList `json:"list"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
	}
	if resp.RunID == "" {
		t.Fatalf("missing run id")
	}
	if len(resp.List.Vendors) != 2 || resp.List.Vendors[0].Vendor != "Acme Shop" {
		t.Fatalf("unexpected vendors: %+v", resp.List.Vendors)
	}
	if got := resp.List.Vendors[0].Items[0].TotalQuantity.String(); got != "5" {
		t.Fatalf("Acme quantity=%s, want 5", got)
	}

	runs, err := st.ListRuns(10)
	if err != nil || len(runs) != 1 || runs[0].Status != store.RunStatusSucceeded {
		t.Fatalf("unexpected runs: %+v err=%v", runs, err)
	}
}

func TestCreateShoppingList_RemoteFailure(t *testing.T) {
	srv, st := newTestServer(t, stubMappings{err: &shoplist.LoadError{
		Side:   shoplist.SideRemote,
		Source: "https://example.com/map.xlsx",
		Err:    errors.New("received text/html"),
	}})

	body, contentType := orderUpload(t, [][]interface{}{
		{"Product Name", "Variation Name", "Quantity"},
		{"【Acme】Widget", "", 3},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/shopping-list", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	runs, _ := st.ListRuns(10)
	if len(runs) != 1 || runs[0].Status != store.RunStatusFailed || runs[0].ErrorKind != "load" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestCreateShoppingList_MappingFileFailure(t *testing.T) {
	srv, _ := newTestServer(t, stubMappings{err: &shoplist.LoadError{
		Side:   shoplist.SideMappingFile,
		Source: "mapping.xlsx",
		Err:    errors.New("no such file"),
	}})

	body, contentType := orderUpload(t, [][]interface{}{
		{"Product Name", "Variation Name", "Quantity"},
		{"【Acme】Widget", "", 3},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/shopping-list", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateShoppingList_BadUpload(t *testing.T) {
	srv, _ := newTestServer(t, stubMappings{})

	req := httptest.NewRequest(http.MethodPost, "/api/shopping-list", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing file: status=%d", w.Code)
	}

	body, contentType := orderUpload(t, [][]interface{}{{"Product Name"}, {"x"}})
	req = httptest.NewRequest(http.MethodPost, "/api/shopping-list", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing columns: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestStatusAndRuns(t *testing.T) {
	srv, _ := newTestServer(t, stubMappings{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("runs: %d", w.Code)
	}
	var resp struct {
		Items []store.Run `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || len(resp.Items) != 0 {
		t.Fatalf("unexpected runs response: %s", w.Body.String())
	}
}
