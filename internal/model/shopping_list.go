package model

import "github.com/shopspring/decimal"

// AggregateRow 依 (店家, 商品名稱, 規格) 彙總後的採購品項
type AggregateRow struct {
	Vendor        string          `json:"vendor"`
	ProductName   string          `json:"productName"`
	VariationName *string         `json:"variationName"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
}

// DisplayVariation 返回用於顯示的規格，缺失時使用 placeholder
func (r AggregateRow) DisplayVariation(placeholder string) string {
	if r.VariationName == nil {
		return placeholder
	}
	return *r.VariationName
}

// VendorSection 單一店家的採購清單
type VendorSection struct {
	Vendor string         `json:"vendor"`
	Items  []AggregateRow `json:"items"`
}

// TotalQuantity 店家所有品項的數量合計
func (s VendorSection) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.TotalQuantity)
	}
	return total
}

// ListStats 清單統計資訊
type ListStats struct {
	OrderRows     int             `json:"orderRows"`
	MappingRows   int             `json:"mappingRows"`
	UnmatchedRows int             `json:"unmatchedRows"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
}

// ShoppingList 依店家分組的採購清單，店家依字典序排列
type ShoppingList struct {
	Vendors []VendorSection `json:"vendors"`
	Stats   ListStats       `json:"stats"`
}

// Rows 依輸出順序攤平所有彙總品項
func (l *ShoppingList) Rows() []AggregateRow {
	if l == nil {
		return nil
	}
	rows := make([]AggregateRow, 0)
	for _, s := range l.Vendors {
		rows = append(rows, s.Items...)
	}
	return rows
}

// VendorNames 返回所有店家名稱（已排序）
func (l *ShoppingList) VendorNames() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.Vendors))
	for _, s := range l.Vendors {
		names = append(names, s.Vendor)
	}
	return names
}
