package source

import (
	"net/url"
	"strings"
)

// NormalizeRawURL 將常見的「預覽頁」連結改寫為可直接下載檔案的連結
//
// 支援 GitHub blob 連結與 Google 試算表編輯連結；其他連結原樣返回，changed=false。
func NormalizeRawURL(raw string) (normalized string, changed bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw, false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch strings.ToLower(u.Host) {
	case "github.com", "www.github.com":
		// /{owner}/{repo}/blob/{ref}/{path...}
		if len(parts) >= 5 && (parts[2] == "blob" || parts[2] == "raw") {
			out := url.URL{
				Scheme: "https",
				Host:   "raw.githubusercontent.com",
				Path:   "/" + strings.Join(append(parts[:2:2], parts[3:]...), "/"),
			}
			return out.String(), true
		}
	case "docs.google.com":
		// /spreadsheets/d/{id}/edit
		if len(parts) >= 3 && parts[0] == "spreadsheets" && parts[1] == "d" {
			if len(parts) >= 4 && parts[3] == "export" {
				return raw, false
			}
			out := url.URL{
				Scheme:   "https",
				Host:     "docs.google.com",
				Path:     "/spreadsheets/d/" + parts[2] + "/export",
				RawQuery: "format=xlsx",
			}
			return out.String(), true
		}
	}
	return raw, false
}
