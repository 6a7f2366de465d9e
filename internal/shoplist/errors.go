package shoplist

import (
	"errors"
	"fmt"
)

// Side 載入失敗發生在哪一端
type Side string

const (
	SideLocal       Side = "local"        // 本機訂單檔
	SideRemote      Side = "remote"       // 遠端對應表
	SideMappingFile Side = "mapping_file" // 本機對應表檔案
)

// ErrorKind 錯誤分類，供入口程式決定提示與結束碼
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindFileDiscovery
	KindLoad
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFileDiscovery:
		return "file_discovery"
	case KindLoad:
		return "load"
	default:
		return "unexpected"
	}
}

// FileDiscoveryError 找不到符合命名規則的訂單檔
type FileDiscoveryError struct {
	Dir     string
	Pattern string
}

func (e *FileDiscoveryError) Error() string {
	return fmt.Sprintf("no order file matching %q found in %q", e.Pattern, e.Dir)
}

// Hint 給使用者的排查提示
func (e *FileDiscoveryError) Hint() []string {
	return []string{
		fmt.Sprintf("在資料夾中找不到 '%s' 格式的訂單檔案。", e.Pattern),
		"請確認您的訂單檔案名稱是否正確，並與此程式放在同一個資料夾下。",
	}
}

// LoadError 讀取訂單檔或對應表失敗
type LoadError struct {
	Side   Side
	Source string // 檔案路徑或連結
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s source %q: %v", e.Side, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Hint 依失敗端給出不同的排查提示
func (e *LoadError) Hint() []string {
	switch e.Side {
	case SideRemote:
		return []string{
			"無法讀取商品店家對應表，請檢查：",
			"1. 對應表連結是否為 'Raw' 連結（直接下載檔案，而非預覽頁面）。",
			"2. 專案或檔案是否為公開，網路是否可連線。",
		}
	case SideMappingFile:
		return []string{
			"無法讀取本機商品店家對應表，請檢查：",
			"1. 對應表檔案路徑是否正確。",
			"2. 檔案是否為有效的 Excel (.xlsx) 檔案，且包含「商品名稱」與「採購店家」欄位。",
		}
	}
	return []string{
		"無法讀取本機訂單檔案，請檢查：",
		"1. 本機訂單檔案路徑是否正確。",
		"2. 檔案是否為有效的 Excel (.xlsx) 檔案，且包含必要欄位。",
	}
}

// UnexpectedError 處理或輸出過程中的其他錯誤
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// Classify 判斷錯誤分類
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var discoveryErr *FileDiscoveryError
	if errors.As(err, &discoveryErr) {
		return KindFileDiscovery
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return KindLoad
	}
	return KindUnexpected
}

// Hints 取得錯誤附帶的提示，沒有時返回 nil
func Hints(err error) []string {
	var h interface{ Hint() []string }
	if errors.As(err, &h) {
		return h.Hint()
	}
	return nil
}

// asLoadError 將錯誤包裝成指定端的 LoadError（已是 LoadError 則原樣返回）
func asLoadError(err error, side Side, source string) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return err
	}
	return &LoadError{Side: side, Source: source, Err: err}
}
