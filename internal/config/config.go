package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 應用設定
type AppConfig struct {
	Source  SourceConfig  `toml:"source"`
	Columns ColumnsConfig `toml:"columns"`
	Report  ReportConfig  `toml:"report"`
	Export  ExportConfig  `toml:"export"`
	Data    DataConfig    `toml:"data"`
	Server  ServerConfig  `toml:"server"`
}

// SourceConfig 輸入來源設定
type SourceConfig struct {
	OrderDir       string `toml:"order_dir"`
	OrderPattern   string `toml:"order_pattern"`
	MappingURL     string `toml:"mapping_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ColumnsConfig 兩份表格的欄位名稱
type ColumnsConfig struct {
	OrderProductName   string `toml:"order_product_name"`
	OrderVariationName string `toml:"order_variation_name"`
	OrderQuantity      string `toml:"order_quantity"`
	MappingProductName string `toml:"mapping_product_name"`
	MappingVendor      string `toml:"mapping_vendor"`
}

// ReportConfig 報表輸出設定
type ReportConfig struct {
	Title                string `toml:"title"`
	NotFoundVendor       string `toml:"not_found_vendor"`
	VariationPlaceholder string `toml:"variation_placeholder"`
}

// ExportConfig Excel 匯出設定
type ExportConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// DataConfig 資料目錄設定
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	History bool   `toml:"history"` // 是否以 SQLite 記錄每次執行
}

// ServerConfig HTTP 模式設定
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// LoadConfigInfo 設定載入資訊
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultMappingURL 預設的商品店家對應表 Raw 連結
const DefaultMappingURL = "https://raw.githubusercontent.com/missfoodietw/shopping-list-automation/4f1ad69dd41c42edd320f12058a10194b966f949/%E5%95%86%E5%93%81%E5%BA%97%E5%AE%B6%E5%B0%8D%E6%87%89%E8%A1%A8.xlsx"

// DefaultConfig 預設設定
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Source: SourceConfig{
			OrderDir:       ".",
			OrderPattern:   "Order.toship.*.xlsx",
			MappingURL:     DefaultMappingURL,
			TimeoutSeconds: 30,
		},
		Columns: ColumnsConfig{
			OrderProductName:   "Product Name",
			OrderVariationName: "Variation Name",
			OrderQuantity:      "Quantity",
			MappingProductName: "商品名稱",
			MappingVendor:      "採購店家",
		},
		Report: ReportConfig{
			Title:                "✨ 本週自動化採購清單 ✨",
			NotFoundVendor:       "Vendor Not Found",
			VariationPlaceholder: "-",
		},
		Export: ExportConfig{
			Enabled: false,
			Dir:     "exports",
		},
		Data: DataConfig{
			DataDir: "data",
			History: false,
		},
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 取得執行檔所在目錄
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 執行檔同目錄下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigFrom 從指定路徑載入設定；檔案不存在時使用預設設定
func LoadConfigFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(config)
			return config, info, nil
		}
		return nil, info, err
	}
	info.FileFound = true
	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	applyEnv(config)
	return config, info, nil
}

// applyEnv 環境變數覆蓋
func applyEnv(config *AppConfig) {
	if v := os.Getenv("SHOPLIST_MAPPING_URL"); v != "" {
		config.Source.MappingURL = v
	}
	if v := os.Getenv("SHOPLIST_ORDER_DIR"); v != "" {
		config.Source.OrderDir = v
	}
}

// SaveConfig 將設定寫入指定路徑
func SaveConfig(configPath string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 確保資料目錄存在，相對路徑以執行檔目錄為基準
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}
