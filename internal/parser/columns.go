package parser

import (
	"fmt"
	"strings"
)

// ColumnSpec 欄位需求：Key 為內部欄位名，Names 為可接受的表頭名稱
type ColumnSpec struct {
	Key   string
	Names []string
}

// MissingColumnsError 缺少必要欄位
type MissingColumnsError struct {
	Missing []string
	Headers []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns %s (found: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Headers, ", "))
}

// ResolveColumns 依表頭解析每個欄位的索引，任何欄位找不到即返回 *MissingColumnsError
func ResolveColumns(headers []string, specs []ColumnSpec) (map[string]int, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeColumnName(h)
	}

	index := make(map[string]int, len(specs))
	var missing []string
	for _, spec := range specs {
		idx := findColumn(normalized, spec.Names)
		if idx < 0 {
			label := spec.Key
			if len(spec.Names) > 0 {
				label = spec.Names[0]
			}
			missing = append(missing, label)
			continue
		}
		index[spec.Key] = idx
	}

	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing, Headers: headers}
	}
	return index, nil
}

// findColumn 按別名優先順序尋找，同名欄位取第一個
func findColumn(normalized []string, names []string) int {
	for _, name := range names {
		want := NormalizeColumnName(name)
		if want == "" {
			continue
		}
		for i, h := range normalized {
			if h == want {
				return i
			}
		}
	}
	return -1
}

// mergeNames 設定的欄位名稱優先，其後附加內建別名（去重）
func mergeNames(primary string, aliases ...string) []string {
	out := make([]string, 0, len(aliases)+1)
	seen := make(map[string]struct{})
	add := func(n string) {
		key := NormalizeColumnName(n)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	add(primary)
	for _, a := range aliases {
		add(a)
	}
	return out
}
