package source

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"shoplist/internal/model"
	"shoplist/internal/parser"
	"shoplist/internal/shoplist"
)

// LocalOrderLoader 從本機 Excel 檔讀取訂單
type LocalOrderLoader struct {
	path    string
	columns parser.OrderColumns
}

// NewLocalOrderLoader 創建本機訂單載入器
func NewLocalOrderLoader(path string, columns parser.OrderColumns) *LocalOrderLoader {
	return &LocalOrderLoader{path: path, columns: columns}
}

// Source 返回檔案路徑
func (l *LocalOrderLoader) Source() string {
	return l.path
}

// LoadOrders 讀取訂單明細
func (l *LocalOrderLoader) LoadOrders(ctx context.Context) ([]model.OrderRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wb, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, l.fail(fmt.Errorf("failed to open excel: %w", err))
	}
	defer func() { _ = wb.Close() }()

	orders, err := parser.NewSheetReader(wb).ReadOrders(l.columns)
	if err != nil {
		return nil, l.fail(err)
	}
	return orders, nil
}

func (l *LocalOrderLoader) fail(err error) error {
	return &shoplist.LoadError{Side: shoplist.SideLocal, Source: l.path, Err: err}
}

// maxUploadBytes 上傳訂單檔大小上限
const maxUploadBytes = 32 << 20

// readLimited 讀取至多 limit 位元組，超過時返回錯誤
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}

// UploadedOrderLoader 讀取已在記憶體中的訂單檔（HTTP 上傳）
type UploadedOrderLoader struct {
	name    string
	data    []byte
	columns parser.OrderColumns
}

// NewUploadedOrderLoader 讀入上傳內容並創建載入器
func NewUploadedOrderLoader(name string, r io.Reader, columns parser.OrderColumns) (*UploadedOrderLoader, error) {
	data, err := readLimited(r, maxUploadBytes)
	if err != nil {
		return nil, &shoplist.LoadError{Side: shoplist.SideLocal, Source: name, Err: err}
	}
	return &UploadedOrderLoader{name: name, data: data, columns: columns}, nil
}

// Source 返回上傳檔名
func (l *UploadedOrderLoader) Source() string {
	return l.name
}

// LoadOrders 讀取訂單明細
func (l *UploadedOrderLoader) LoadOrders(ctx context.Context) ([]model.OrderRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wb, err := excelize.OpenReader(bytes.NewReader(l.data))
	if err != nil {
		return nil, &shoplist.LoadError{Side: shoplist.SideLocal, Source: l.name, Err: fmt.Errorf("failed to open excel: %w", err)}
	}
	defer func() { _ = wb.Close() }()

	orders, err := parser.NewSheetReader(wb).ReadOrders(l.columns)
	if err != nil {
		return nil, &shoplist.LoadError{Side: shoplist.SideLocal, Source: l.name, Err: err}
	}
	return orders, nil
}
