package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"shoplist/internal/shoplist"
)

// DefaultOrderPattern 蝦皮「待出貨」訂單匯出檔名
const DefaultOrderPattern = "Order.toship.*.xlsx"

// FindLatestOrderFile 在 dir 中尋找符合 pattern 的訂單檔，取字典序最後一個
//
// 檔名內含日期，字典序最後即為最新；不看檔案修改時間。
func FindLatestOrderFile(dir, pattern string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if pattern == "" {
		pattern = DefaultOrderPattern
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("invalid order file pattern %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		return "", &shoplist.FileDiscoveryError{Dir: dir, Pattern: pattern}
	}

	sort.Strings(files)
	return files[len(files)-1], nil
}
