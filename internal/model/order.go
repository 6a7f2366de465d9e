package model

import "github.com/shopspring/decimal"

// VendorNotFound 找不到對應店家時使用的預設店家名稱
const VendorNotFound = "Vendor Not Found"

// VariationPlaceholder 規格缺失時的顯示文字（僅用於輸出）
const VariationPlaceholder = "-"

// OrderRow 訂單明細（一行一個購買品項）
type OrderRow struct {
	RowNo         int             `json:"rowNo"`         // Excel 行號
	ProductName   string          `json:"productName"`   // 商品名稱
	VariationName *string         `json:"variationName"` // 規格；nil 表示缺失
	Quantity      decimal.Decimal `json:"quantity"`      // 數量
}

// MappingRow 商品店家對應表的一行
type MappingRow struct {
	RowNo       int    `json:"rowNo"`
	ProductName string `json:"productName"` // 含【品牌】標記的商品名稱
	Vendor      string `json:"vendor"`      // 採購店家；空字串表示未填
}

// JoinedRow 訂單與對應表左連接後的結果
type JoinedRow struct {
	OrderRow
	Brand   *string `json:"brand"`
	Vendor  string  `json:"vendor"`
	Matched bool    `json:"matched"` // 是否找到對應店家
}

// Variation 返回規格，缺失時返回 ok=false
func (r OrderRow) Variation() (string, bool) {
	if r.VariationName == nil {
		return "", false
	}
	return *r.VariationName, true
}

// StringPtr 返回字串指標
func StringPtr(s string) *string {
	return &s
}
