package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"shoplist/internal/model"
	"shoplist/internal/parser"
	"shoplist/internal/shoplist"
)

const (
	defaultFetchTimeout = 30 * time.Second
	maxMappingBytes     = 32 << 20
)

// ErrNotSpreadsheet 遠端返回的不是 xlsx 內容（多半是預覽頁面）
var ErrNotSpreadsheet = errors.New("response is not an xlsx spreadsheet")

// RemoteMappingLoader 從遠端連結下載商品店家對應表
type RemoteMappingLoader struct {
	url     string
	columns parser.MappingColumns
	client  *http.Client
}

// NewRemoteMappingLoader 創建遠端對應表載入器；timeout<=0 時使用預設值
func NewRemoteMappingLoader(rawURL string, columns parser.MappingColumns, timeout time.Duration) *RemoteMappingLoader {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	normalized, changed := NormalizeRawURL(rawURL)
	if changed {
		log.WithFields(log.Fields{
			"from": rawURL,
			"to":   normalized,
		}).Warn("對應表連結不是 Raw 連結，已自動改寫")
	}
	return &RemoteMappingLoader{
		url:     normalized,
		columns: columns,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient 替換 HTTP client（測試用）
func (l *RemoteMappingLoader) WithHTTPClient(c *http.Client) *RemoteMappingLoader {
	l.client = c
	return l
}

// Source 返回實際下載的連結
func (l *RemoteMappingLoader) Source() string {
	return l.url
}

// LoadMappings 下載並解析對應表
func (l *RemoteMappingLoader) LoadMappings(ctx context.Context) ([]model.MappingRow, error) {
	data, err := l.fetch(ctx)
	if err != nil {
		return nil, l.fail(err)
	}

	if err := checkSpreadsheet(data); err != nil {
		return nil, l.fail(err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, l.fail(fmt.Errorf("failed to open excel: %w", err))
	}
	defer func() { _ = wb.Close() }()

	mappings, err := parser.NewSheetReader(wb).ReadMappings(l.columns)
	if err != nil {
		return nil, l.fail(err)
	}
	return mappings, nil
}

func (l *RemoteMappingLoader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download mapping table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("mapping table returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := readLimited(resp.Body, maxMappingBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping table: %w", err)
	}
	return data, nil
}

func (l *RemoteMappingLoader) fail(err error) error {
	return &shoplist.LoadError{Side: shoplist.SideRemote, Source: l.url, Err: err}
}

// checkSpreadsheet 依內容判斷是否為 xlsx；HTML/文字內容代表連結指向預覽頁
func checkSpreadsheet(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty response", ErrNotSpreadsheet)
	}
	mime := mimetype.Detect(data)
	switch {
	case mime.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
		mime.Is("application/zip"):
		return nil
	case mime.Is("application/vnd.ms-excel"):
		return fmt.Errorf("%w: legacy .xls is not supported, save the table as .xlsx", ErrNotSpreadsheet)
	case mime.Is("text/html"), strings.HasPrefix(mime.String(), "text/"):
		return fmt.Errorf("%w: received %s, the link is probably a viewer page instead of the raw file", ErrNotSpreadsheet, mime.String())
	default:
		return fmt.Errorf("%w: received %s", ErrNotSpreadsheet, mime.String())
	}
}

// FileMappingLoader 從本機檔案讀取對應表（離線使用）
type FileMappingLoader struct {
	path    string
	columns parser.MappingColumns
}

// NewFileMappingLoader 創建本機對應表載入器
func NewFileMappingLoader(path string, columns parser.MappingColumns) *FileMappingLoader {
	return &FileMappingLoader{path: path, columns: columns}
}

// Source 返回檔案路徑
func (l *FileMappingLoader) Source() string {
	return l.path
}

// LoadMappings 讀取對應表
func (l *FileMappingLoader) LoadMappings(ctx context.Context) ([]model.MappingRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, &shoplist.LoadError{Side: shoplist.SideMappingFile, Source: l.path, Err: err}
	}
	wb, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, &shoplist.LoadError{Side: shoplist.SideMappingFile, Source: l.path, Err: fmt.Errorf("failed to open excel: %w", err)}
	}
	defer func() { _ = wb.Close() }()

	mappings, err := parser.NewSheetReader(wb).ReadMappings(l.columns)
	if err != nil {
		return nil, &shoplist.LoadError{Side: shoplist.SideMappingFile, Source: l.path, Err: err}
	}
	return mappings, nil
}

// NewMappingLoader 依位置選擇載入器：http(s) 連結走遠端下載，其餘視為本機檔案
func NewMappingLoader(location string, columns parser.MappingColumns, timeout time.Duration) shoplist.MappingLoader {
	lower := strings.ToLower(strings.TrimSpace(location))
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewRemoteMappingLoader(strings.TrimSpace(location), columns, timeout)
	}
	return NewFileMappingLoader(location, columns)
}
