package config

import (
	"time"

	"shoplist/internal/parser"
)

// OrderColumns 訂單檔欄位設定
func (c *AppConfig) OrderColumns() parser.OrderColumns {
	return parser.OrderColumns{
		ProductName:   c.Columns.OrderProductName,
		VariationName: c.Columns.OrderVariationName,
		Quantity:      c.Columns.OrderQuantity,
	}
}

// MappingColumns 對應表欄位設定
func (c *AppConfig) MappingColumns() parser.MappingColumns {
	return parser.MappingColumns{
		ProductName: c.Columns.MappingProductName,
		Vendor:      c.Columns.MappingVendor,
	}
}

// FetchTimeout 下載對應表的逾時
func (c *AppConfig) FetchTimeout() time.Duration {
	if c.Source.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}
