package source

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shoplist/internal/parser"
	"shoplist/internal/shoplist"
)

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()
	sheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	for i, row := range rows {
		row := row
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestFindLatestOrderFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Order.toship.20250101_20250107.xlsx", []byte("a"))
	writeFile(t, dir, "Order.toship.20250108_20250114.xlsx", []byte("b"))
	writeFile(t, dir, "Order.completed.20250201.xlsx", []byte("c"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Order.toship.zzz.xlsx"), 0755))

	got, err := FindLatestOrderFile(dir, DefaultOrderPattern)
	require.NoError(t, err)
	assert.Equal(t, "Order.toship.20250108_20250114.xlsx", filepath.Base(got))
}

func TestFindLatestOrderFile_NoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", []byte("x"))

	_, err := FindLatestOrderFile(dir, "")
	var discoveryErr *shoplist.FileDiscoveryError
	require.True(t, errors.As(err, &discoveryErr))
	assert.Equal(t, DefaultOrderPattern, discoveryErr.Pattern)
	assert.Equal(t, shoplist.KindFileDiscovery, shoplist.Classify(err))
}

func TestLocalOrderLoader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Order.toship.1.xlsx", workbookBytes(t, [][]interface{}{
		{"Product Name", "Variation Name", "Quantity"},
		{"【Acme】Widget", "", 3},
	}))

	orders, err := NewLocalOrderLoader(path, parser.DefaultOrderColumns()).LoadOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "3", orders[0].Quantity.String())
}

func TestReadLimited(t *testing.T) {
	data, err := readLimited(strings.NewReader("abcdef"), 6)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(data))

	_, err = readLimited(strings.NewReader("abcdefg"), 6)
	assert.Error(t, err)
}

func TestUploadedOrderLoader(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"Product Name", "Variation Name", "Quantity"},
		{"【Acme】Widget", "Red", 2},
	})
	loader, err := NewUploadedOrderLoader("Order.toship.up.xlsx", bytes.NewReader(data), parser.DefaultOrderColumns())
	require.NoError(t, err)
	orders, err := loader.LoadOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "【Acme】Widget", orders[0].ProductName)
}

func TestFileMappingLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	notExcel := writeFile(t, dir, "mapping.bad.xlsx", []byte("not a workbook"))

	for _, path := range []string{filepath.Join(dir, "missing.xlsx"), notExcel} {
		_, err := NewFileMappingLoader(path, parser.DefaultMappingColumns()).LoadMappings(context.Background())
		var loadErr *shoplist.LoadError
		require.True(t, errors.As(err, &loadErr), "path %s: %v", path, err)
		assert.Equal(t, shoplist.SideMappingFile, loadErr.Side)
		assert.Equal(t, path, loadErr.Source)
		assert.Contains(t, shoplist.Hints(err)[0], "對應表")
	}
}

func TestLocalOrderLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	notExcel := writeFile(t, dir, "Order.toship.bad.xlsx", []byte("not a workbook"))
	missingCols := writeFile(t, dir, "Order.toship.cols.xlsx", workbookBytes(t, [][]interface{}{
		{"Product Name"},
		{"【Acme】Widget"},
	}))

	for _, path := range []string{filepath.Join(dir, "missing.xlsx"), notExcel, missingCols} {
		_, err := NewLocalOrderLoader(path, parser.DefaultOrderColumns()).LoadOrders(context.Background())
		var loadErr *shoplist.LoadError
		require.True(t, errors.As(err, &loadErr), "path %s: %v", path, err)
		assert.Equal(t, shoplist.SideLocal, loadErr.Side)
		assert.Equal(t, path, loadErr.Source)
	}
}

func TestRemoteMappingLoader(t *testing.T) {
	xlsx := workbookBytes(t, [][]interface{}{
		{"商品名稱", "採購店家"},
		{"【Acme】x", "Acme Shop"},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/raw/map.xlsx":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(xlsx)
		case "/view/map.xlsx":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<!DOCTYPE html><html><head><title>map.xlsx</title></head><body>preview</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	t.Run("raw link", func(t *testing.T) {
		loader := NewRemoteMappingLoader(srv.URL+"/raw/map.xlsx", parser.DefaultMappingColumns(), 0).WithHTTPClient(srv.Client())
		mappings, err := loader.LoadMappings(ctx)
		require.NoError(t, err)
		require.Len(t, mappings, 1)
		assert.Equal(t, "Acme Shop", mappings[0].Vendor)
	})

	t.Run("viewer page", func(t *testing.T) {
		loader := NewRemoteMappingLoader(srv.URL+"/view/map.xlsx", parser.DefaultMappingColumns(), 0).WithHTTPClient(srv.Client())
		_, err := loader.LoadMappings(ctx)
		var loadErr *shoplist.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, shoplist.SideRemote, loadErr.Side)
		assert.ErrorIs(t, err, ErrNotSpreadsheet)
	})

	t.Run("not found", func(t *testing.T) {
		loader := NewRemoteMappingLoader(srv.URL+"/missing.xlsx", parser.DefaultMappingColumns(), 0).WithHTTPClient(srv.Client())
		_, err := loader.LoadMappings(ctx)
		var loadErr *shoplist.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, shoplist.SideRemote, loadErr.Side)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("unreachable", func(t *testing.T) {
		loader := NewRemoteMappingLoader("http://127.0.0.1:1/map.xlsx", parser.DefaultMappingColumns(), 0)
		_, err := loader.LoadMappings(ctx)
		var loadErr *shoplist.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, shoplist.SideRemote, loadErr.Side)
	})
}

func TestNewMappingLoader_SelectsByScheme(t *testing.T) {
	_, remote := NewMappingLoader("https://example.com/a.xlsx", parser.DefaultMappingColumns(), 0).(*RemoteMappingLoader)
	assert.True(t, remote)
	_, local := NewMappingLoader("mapping.xlsx", parser.DefaultMappingColumns(), 0).(*FileMappingLoader)
	assert.True(t, local)
}

func TestNormalizeRawURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		changed bool
	}{
		{
			in:      "https://github.com/owner/repo/blob/4f1ad69/mapping.xlsx",
			want:    "https://raw.githubusercontent.com/owner/repo/4f1ad69/mapping.xlsx",
			changed: true,
		},
		{
			in:      "https://github.com/owner/repo/raw/main/dir/mapping.xlsx",
			want:    "https://raw.githubusercontent.com/owner/repo/main/dir/mapping.xlsx",
			changed: true,
		},
		{
			in:      "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0",
			want:    "https://docs.google.com/spreadsheets/d/abc123/export?format=xlsx",
			changed: true,
		},
		{
			in:   "https://raw.githubusercontent.com/owner/repo/main/mapping.xlsx",
			want: "https://raw.githubusercontent.com/owner/repo/main/mapping.xlsx",
		},
		{
			in:   "https://github.com/owner/repo",
			want: "https://github.com/owner/repo",
		},
	}

	for _, tt := range tests {
		got, changed := NormalizeRawURL(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.changed, changed, tt.in)
	}
}
