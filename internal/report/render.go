package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"shoplist/internal/model"
)

// DefaultTitle 報表標題
const DefaultTitle = "✨ 本週自動化採購清單 ✨"

const separatorWidth = 40

// Headers 表格欄位名稱
type Headers struct {
	Vendor      string
	ProductName string
	Variation   string
	Quantity    string
}

// DefaultHeaders 繁體中文欄位名稱
func DefaultHeaders() Headers {
	return Headers{
		Vendor:      "店家",
		ProductName: "商品名稱",
		Variation:   "規格",
		Quantity:    "數量",
	}
}

// Options 輸出選項
type Options struct {
	Title                string
	Headers              Headers
	VariationPlaceholder string
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	def := DefaultHeaders()
	if o.Headers.Vendor == "" {
		o.Headers.Vendor = def.Vendor
	}
	if o.Headers.ProductName == "" {
		o.Headers.ProductName = def.ProductName
	}
	if o.Headers.Variation == "" {
		o.Headers.Variation = def.Variation
	}
	if o.Headers.Quantity == "" {
		o.Headers.Quantity = def.Quantity
	}
	if o.VariationPlaceholder == "" {
		o.VariationPlaceholder = model.VariationPlaceholder
	}
	return o
}

// Renderer 將採購清單輸出為文字報表
type Renderer struct {
	opts Options
}

// NewRenderer 創建輸出器
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts.withDefaults()}
}

// Render 先在記憶體中完成整份報表，成功後一次寫出
func (r *Renderer) Render(w io.Writer, list *model.ShoppingList) error {
	if list == nil {
		return fmt.Errorf("shopping list is nil")
	}

	var buf bytes.Buffer
	rule := strings.Repeat("=", separatorWidth)

	fmt.Fprintf(&buf, "\n%s\n", rule)
	fmt.Fprintf(&buf, "      %s\n", r.opts.Title)
	fmt.Fprintf(&buf, "%s\n", rule)

	for _, section := range list.Vendors {
		fmt.Fprintf(&buf, "\n🛒 %s: %s\n\n", r.opts.Headers.Vendor, section.Vendor)
		r.renderTable(&buf, section)
		fmt.Fprintf(&buf, "\n%s\n", rule)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// renderTable 輸出 markdown 格式表格
func (r *Renderer) renderTable(w io.Writer, section model.VendorSection) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{r.opts.Headers.ProductName, r.opts.Headers.Variation, r.opts.Headers.Quantity})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, it := range section.Items {
		table.Append([]string{
			it.ProductName,
			it.DisplayVariation(r.opts.VariationPlaceholder),
			it.TotalQuantity.String(),
		})
	}
	table.Render()
}
