package shoplist

import (
	"sort"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
	"shoplist/internal/parser"
)

// Options 清單產生選項
type Options struct {
	// NotFoundVendor 找不到店家時使用的名稱，空值時使用 model.VendorNotFound
	NotFoundVendor string
}

func (o Options) notFoundVendor() string {
	if o.NotFoundVendor == "" {
		return model.VendorNotFound
	}
	return o.NotFoundVendor
}

// aggKey 彙總鍵；規格缺失與任何字串（包括 "-"）都不相等
type aggKey struct {
	vendor       string
	product      string
	hasVariation bool
	variation    string
}

// vendorIndex 建立 品牌 -> 店家 索引；同一品牌出現多次時以第一筆為準
func vendorIndex(mappings []model.MappingRow) map[string]string {
	index := make(map[string]string, len(mappings))
	for _, m := range mappings {
		brand, ok := parser.ExtractBrand(m.ProductName)
		if !ok {
			continue
		}
		if _, exists := index[brand]; exists {
			continue
		}
		index[brand] = m.Vendor
	}
	return index
}

// Join 以品牌左連接訂單與對應表，每筆訂單恰好產生一筆結果
//
// 對應表的商品名稱欄位不帶入結果；找不到店家或店家為空時填入 NotFoundVendor。
func Join(orders []model.OrderRow, mappings []model.MappingRow, opts Options) []model.JoinedRow {
	index := vendorIndex(mappings)
	fallback := opts.notFoundVendor()

	joined := make([]model.JoinedRow, 0, len(orders))
	for _, o := range orders {
		row := model.JoinedRow{
			OrderRow: o,
			Vendor:   fallback,
		}
		if brand, ok := parser.ExtractBrand(o.ProductName); ok {
			row.Brand = model.StringPtr(brand)
			if vendor, found := index[brand]; found && vendor != "" {
				row.Vendor = vendor
				row.Matched = true
			}
		}
		joined = append(joined, row)
	}
	return joined
}

// Aggregate 依 (店家, 商品名稱, 規格) 加總數量，輸出順序為各組第一次出現的順序
func Aggregate(joined []model.JoinedRow) []model.AggregateRow {
	positions := make(map[aggKey]int)
	rows := make([]model.AggregateRow, 0)

	for _, j := range joined {
		variation, hasVariation := j.Variation()
		key := aggKey{
			vendor:       j.Vendor,
			product:      j.ProductName,
			hasVariation: hasVariation,
			variation:    variation,
		}
		if pos, ok := positions[key]; ok {
			rows[pos].TotalQuantity = rows[pos].TotalQuantity.Add(j.Quantity)
			continue
		}
		agg := model.AggregateRow{
			Vendor:        j.Vendor,
			ProductName:   j.ProductName,
			TotalQuantity: j.Quantity,
		}
		if hasVariation {
			agg.VariationName = model.StringPtr(variation)
		}
		positions[key] = len(rows)
		rows = append(rows, agg)
	}
	return rows
}

// Build 由訂單與對應表產生依店家分組的採購清單（純函式，不做 I/O）
func Build(orders []model.OrderRow, mappings []model.MappingRow, opts Options) *model.ShoppingList {
	joined := Join(orders, mappings, opts)
	aggregated := Aggregate(joined)

	list := &model.ShoppingList{
		Vendors: make([]model.VendorSection, 0),
		Stats: model.ListStats{
			OrderRows:     len(orders),
			MappingRows:   len(mappings),
			TotalQuantity: decimal.Zero,
		},
	}
	for _, j := range joined {
		if !j.Matched {
			list.Stats.UnmatchedRows++
		}
		list.Stats.TotalQuantity = list.Stats.TotalQuantity.Add(j.Quantity)
	}

	byVendor := make(map[string][]model.AggregateRow)
	for _, r := range aggregated {
		byVendor[r.Vendor] = append(byVendor[r.Vendor], r)
	}

	vendors := make([]string, 0, len(byVendor))
	for v := range byVendor {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)

	for _, v := range vendors {
		items := byVendor[v]
		sortItems(items)
		list.Vendors = append(list.Vendors, model.VendorSection{Vendor: v, Items: items})
	}
	return list
}

// sortItems 依商品名稱、規格排序；規格缺失排在最前
func sortItems(items []model.AggregateRow) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		if (a.VariationName == nil) != (b.VariationName == nil) {
			return a.VariationName == nil
		}
		if a.VariationName == nil {
			return false
		}
		return *a.VariationName < *b.VariationName
	})
}
