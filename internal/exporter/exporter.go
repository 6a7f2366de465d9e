package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"shoplist/internal/model"
	"shoplist/internal/report"
)

const (
	summarySheet  = "採購清單"
	maxSheetName  = 31
	invalidSheetC = `[]:*?/\`
)

// Exporter 採購清單 Excel 匯出器
//
// 產生一個彙總工作表，並為每個店家各建立一個工作表。
type Exporter struct {
	headers     report.Headers
	placeholder string
}

// NewExporter 創建匯出器
func NewExporter(headers report.Headers, placeholder string) *Exporter {
	def := report.DefaultHeaders()
	if headers.Vendor == "" {
		headers = def
	}
	if placeholder == "" {
		placeholder = model.VariationPlaceholder
	}
	return &Exporter{headers: headers, placeholder: placeholder}
}

// Export 建立工作簿
func (e *Exporter) Export(list *model.ShoppingList, progress func(ProgressEvent)) (*excelize.File, error) {
	if list == nil {
		return nil, fmt.Errorf("shopping list is nil")
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("建立彙總工作表失敗: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("建立樣式失敗: %w", err)
	}

	reportProgress(progress, 0, "summary")
	if err := e.writeSummary(f, list, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}

	used := map[string]struct{}{summarySheet: {}}
	total := len(list.Vendors)
	for i, section := range list.Vendors {
		name := uniqueSheetName(section.Vendor, used)
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("建立工作表 %s 失敗: %w", name, err)
		}
		if err := e.writeVendorSheet(f, name, section, headerStyle); err != nil {
			_ = f.Close()
			return nil, err
		}
		reportProgress(progress, (i+1)*100/total, section.Vendor)
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "done")
	return f, nil
}

// SaveFile 匯出並存檔到 dir，返回檔案路徑
func (e *Exporter) SaveFile(list *model.ShoppingList, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("建立匯出目錄失敗: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("採購清單_%s.xlsx", now.Format("20060102_150405")))
	f, err := e.Export(list, LogProgress(path))
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("儲存匯出檔失敗: %w", err)
	}
	return path, nil
}

func (e *Exporter) writeSummary(f *excelize.File, list *model.ShoppingList, style int) error {
	header := []interface{}{e.headers.Vendor, e.headers.ProductName, e.headers.Variation, e.headers.Quantity}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("寫入表頭失敗: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, "A1", "D1", style); err != nil {
		return err
	}

	rowNo := 2
	for _, it := range list.Rows() {
		row := []interface{}{it.Vendor, it.ProductName, it.DisplayVariation(e.placeholder)}
		cell, _ := excelize.CoordinatesToCellName(1, rowNo)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("寫入第 %d 行失敗: %w", rowNo, err)
		}
		if err := setQuantity(f, summarySheet, 4, rowNo, it); err != nil {
			return err
		}
		rowNo++
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 24)
	_ = f.SetColWidth(summarySheet, "B", "B", 48)
	_ = f.SetColWidth(summarySheet, "C", "C", 16)
	return nil
}

func (e *Exporter) writeVendorSheet(f *excelize.File, sheet string, section model.VendorSection, style int) error {
	header := []interface{}{e.headers.ProductName, e.headers.Variation, e.headers.Quantity}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("寫入 %s 表頭失敗: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", style); err != nil {
		return err
	}

	for i, it := range section.Items {
		row := []interface{}{it.ProductName, it.DisplayVariation(e.placeholder)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("寫入 %s 第 %d 行失敗: %w", sheet, i+2, err)
		}
		if err := setQuantity(f, sheet, 3, i+2, it); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 48)
	_ = f.SetColWidth(sheet, "B", "B", 16)
	return nil
}

// setQuantity 以數值儲存格寫入精確的十進位字串，不經 float64
func setQuantity(f *excelize.File, sheet string, col, row int, it model.AggregateRow) error {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	if err := f.SetCellDefault(sheet, cell, it.TotalQuantity.String()); err != nil {
		return fmt.Errorf("寫入 %s 數量失敗: %w", cell, err)
	}
	return nil
}

// uniqueSheetName 依店家名稱產生合法且不重複的工作表名稱
func uniqueSheetName(vendor string, used map[string]struct{}) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetC, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(vendor))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "店家"
	}
	name = truncateRunes(name, maxSheetName)

	candidate := name
	for i := 2; ; i++ {
		if _, ok := used[strings.ToLower(candidate)]; !ok {
			break
		}
		suffix := fmt.Sprintf("(%d)", i)
		candidate = truncateRunes(name, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
