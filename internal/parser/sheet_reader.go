package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"shoplist/internal/model"
)

const (
	keyProductName   = "product_name"
	keyVariationName = "variation_name"
	keyQuantity      = "quantity"
	keyVendor        = "vendor"
)

// ErrEmptySheet 工作表沒有表頭
var ErrEmptySheet = errors.New("sheet has no header row")

// OrderColumns 訂單檔欄位名稱
type OrderColumns struct {
	ProductName   string
	VariationName string
	Quantity      string
}

// MappingColumns 對應表欄位名稱
type MappingColumns struct {
	ProductName string
	Vendor      string
}

// DefaultOrderColumns 蝦皮訂單匯出的預設欄位
func DefaultOrderColumns() OrderColumns {
	return OrderColumns{
		ProductName:   "Product Name",
		VariationName: "Variation Name",
		Quantity:      "Quantity",
	}
}

// DefaultMappingColumns 商品店家對應表的預設欄位
func DefaultMappingColumns() MappingColumns {
	return MappingColumns{
		ProductName: "商品名稱",
		Vendor:      "採購店家",
	}
}

func (c OrderColumns) specs() []ColumnSpec {
	return []ColumnSpec{
		{Key: keyProductName, Names: mergeNames(c.ProductName, "Product Name", "商品名稱", "商品名称")},
		{Key: keyVariationName, Names: mergeNames(c.VariationName, "Variation Name", "規格", "规格", "商品規格")},
		{Key: keyQuantity, Names: mergeNames(c.Quantity, "Quantity", "數量", "数量")},
	}
}

func (c MappingColumns) specs() []ColumnSpec {
	return []ColumnSpec{
		{Key: keyProductName, Names: mergeNames(c.ProductName, "商品名稱", "商品名称", "Product Name")},
		{Key: keyVendor, Names: mergeNames(c.Vendor, "採購店家", "采购店家", "店家", "Vendor")},
	}
}

// RowError 資料行解析錯誤
type RowError struct {
	Sheet  string
	RowNo  int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("sheet %q row %d column %q: invalid value %q: %v", e.Sheet, e.RowNo, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// SheetReader 讀取工作簿第一個工作表
type SheetReader struct {
	file *excelize.File
}

// NewSheetReader 創建讀取器
func NewSheetReader(file *excelize.File) *SheetReader {
	return &SheetReader{file: file}
}

// firstSheetRows 讀取第一個工作表的所有行（原始值，不套用數字格式）
func (r *SheetReader) firstSheetRows() (string, [][]string, error) {
	if r.file == nil {
		return "", nil, errors.New("workbook is nil")
	}
	sheets := r.file.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := r.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return sheet, nil, fmt.Errorf("sheet %q: %w", sheet, ErrEmptySheet)
	}
	return sheet, rows, nil
}

// ReadOrders 解析訂單明細
func (r *SheetReader) ReadOrders(cols OrderColumns) ([]model.OrderRow, error) {
	sheet, rows, err := r.firstSheetRows()
	if err != nil {
		return nil, err
	}

	index, err := ResolveColumns(rows[0], cols.specs())
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	orders := make([]model.OrderRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		rowNo := i + 1

		rawQty := cellAt(row, index[keyQuantity])
		qty, err := ParseQuantity(rawQty)
		if err != nil {
			return nil, &RowError{Sheet: sheet, RowNo: rowNo, Column: cols.Quantity, Value: rawQty, Err: err}
		}

		order := model.OrderRow{
			RowNo:       rowNo,
			ProductName: cellAt(row, index[keyProductName]),
			Quantity:    qty,
		}
		if v := cellAt(row, index[keyVariationName]); v != "" {
			order.VariationName = model.StringPtr(v)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// ReadMappings 解析商品店家對應表
func (r *SheetReader) ReadMappings(cols MappingColumns) ([]model.MappingRow, error) {
	sheet, rows, err := r.firstSheetRows()
	if err != nil {
		return nil, err
	}

	index, err := ResolveColumns(rows[0], cols.specs())
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	mappings := make([]model.MappingRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		mappings = append(mappings, model.MappingRow{
			RowNo:       i + 1,
			ProductName: cellAt(row, index[keyProductName]),
			Vendor:      strings.TrimSpace(cellAt(row, index[keyVendor])),
		})
	}

	return mappings, nil
}

// ParseQuantity 解析數量，空值視為 0，移除千分位
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
