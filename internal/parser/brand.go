package parser

import (
	"regexp"
	"strings"
)

// 非貪婪：只取第一個【到其後第一個】之間的內容
var brandRe = regexp.MustCompile(`【(.*?)】`)

// ExtractBrand 從商品名稱中擷取【品牌】標記
//
// 非字串或找不到括號對時 ok=false。"【】" 會得到空字串且 ok=true。
func ExtractBrand(v any) (brand string, ok bool) {
	var name string
	switch s := v.(type) {
	case string:
		name = s
	case *string:
		if s == nil {
			return "", false
		}
		name = *s
	default:
		return "", false
	}

	m := brandRe.FindStringSubmatch(name)
	if len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
