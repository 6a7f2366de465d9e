package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"

	"shoplist/internal/config"
	"shoplist/internal/exporter"
	"shoplist/internal/report"
	"shoplist/internal/server"
	"shoplist/internal/shoplist"
	"shoplist/internal/source"
	"shoplist/internal/store"
	"shoplist/internal/util"
)

// 結束碼
const (
	exitOK            = 0
	exitUnexpected    = 1
	exitFileDiscovery = 2
	exitLoad          = 3
)

type options struct {
	configPath string
	initConfig bool
	dir        string
	pattern    string
	mapping    string
	export     bool
	exportDir  string
	record     bool
	history    int
	serve      bool
	port       int
	devMode    bool
	verbose    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("shoplist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "設定檔路徑 (預設為執行檔同目錄的 config.toml)")
	fs.BoolVar(&opts.initConfig, "init", false, "在設定檔路徑寫入預設 config.toml 後結束")
	fs.StringVar(&opts.dir, "dir", "", "訂單檔所在資料夾 (覆蓋設定檔)")
	fs.StringVar(&opts.pattern, "pattern", "", "訂單檔名稱規則 (覆蓋設定檔)")
	fs.StringVar(&opts.mapping, "mapping", "", "商品店家對應表連結或本機路徑 (覆蓋設定檔)")
	fs.BoolVar(&opts.export, "export", false, "同時匯出 Excel 採購清單")
	fs.StringVar(&opts.exportDir, "out", "", "Excel 匯出資料夾 (覆蓋設定檔)")
	fs.BoolVar(&opts.record, "record", false, "以 SQLite 記錄本次執行")
	fs.IntVar(&opts.history, "history", 0, "列出最近 N 筆執行紀錄後結束")
	fs.BoolVar(&opts.serve, "serve", false, "啟動 HTTP 模式")
	fs.IntVar(&opts.port, "port", 0, "HTTP 端口 (config.toml 優先；僅當未明確設定 port 時生效)")
	fs.BoolVar(&opts.devMode, "dev", false, "開發模式")
	fs.BoolVar(&opts.verbose, "v", false, "輸出除錯日誌")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitUnexpected
	}

	log.SetHandler(cli.New(stderr))
	log.SetLevel(log.InfoLevel)
	if opts.verbose {
		log.SetLevel(log.DebugLevel)
	}

	if opts.initConfig {
		return writeDefaultConfig(opts.configPath, stdout)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		log.WithError(err).Error("載入設定失敗")
		return exitUnexpected
	}

	switch {
	case opts.history > 0:
		return printHistory(cfg, opts.history, stdout)
	case opts.serve:
		return serve(cfg)
	}

	return generate(cfg, opts, stdout, stderr)
}

// writeDefaultConfig 寫入預設設定檔；已存在時不覆蓋
func writeDefaultConfig(path string, stdout io.Writer) int {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		log.WithField("path", path).Error("設定檔已存在，未覆蓋")
		return exitUnexpected
	}
	if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
		log.WithError(err).Error("寫入設定檔失敗")
		return exitUnexpected
	}
	fmt.Fprintf(stdout, "已建立設定檔: %s\n", path)
	return exitOK
}

func loadConfig(opts *options) (*config.AppConfig, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, info, err := config.LoadConfigFrom(path)
	if err != nil {
		return nil, err
	}
	if info.FileFound {
		log.WithField("path", info.Path).Debug("已載入設定檔")
	}

	// 命令列參數覆蓋設定
	if opts.dir != "" {
		cfg.Source.OrderDir = opts.dir
	}
	if opts.pattern != "" {
		cfg.Source.OrderPattern = opts.pattern
	}
	if opts.mapping != "" {
		cfg.Source.MappingURL = opts.mapping
	}
	if opts.export {
		cfg.Export.Enabled = true
	}
	if opts.exportDir != "" {
		cfg.Export.Dir = opts.exportDir
	}
	if opts.record {
		cfg.Data.History = true
	}
	if opts.port > 0 && !info.PortSpecified {
		cfg.Server.Port = opts.port
	}
	if opts.devMode {
		cfg.Server.DevMode = true
	}
	return cfg, nil
}

// generate 單次產生採購清單，報表只在全部步驟成功後才輸出
func generate(cfg *config.AppConfig, opts *options, stdout, stderr io.Writer) int {
	ctx := context.Background()

	orderFile, err := source.FindLatestOrderFile(cfg.Source.OrderDir, cfg.Source.OrderPattern)
	if err != nil {
		return fail(stderr, err)
	}
	log.WithField("file", filepath.Base(orderFile)).Info("找到最新的訂單檔案")

	mappings := source.NewMappingLoader(cfg.Source.MappingURL, cfg.MappingColumns(), cfg.FetchTimeout())
	svc := shoplist.NewService(
		source.NewLocalOrderLoader(orderFile, cfg.OrderColumns()),
		mappings,
		shoplist.Options{NotFoundVendor: cfg.Report.NotFoundVendor},
	)

	st := openStore(cfg)
	if st != nil {
		defer st.Close()
	}
	runID := ""
	if st != nil {
		if runID, err = st.CreateRun(orderFile, mappings.Source()); err != nil {
			log.WithError(err).Warn("建立執行紀錄失敗")
		}
	}

	list, err := svc.Generate(ctx)
	if err == nil {
		var buf bytes.Buffer
		renderer := report.NewRenderer(report.Options{
			Title:                cfg.Report.Title,
			VariationPlaceholder: cfg.Report.VariationPlaceholder,
		})
		if err = renderer.Render(&buf, list); err == nil {
			_, err = stdout.Write(buf.Bytes())
		}
		if err != nil {
			err = &shoplist.UnexpectedError{Err: err}
		}
	}

	if err != nil {
		if st != nil && runID != "" {
			if ferr := st.FailRun(runID, shoplist.Classify(err).String(), err.Error()); ferr != nil {
				log.WithError(ferr).Warn("更新執行紀錄失敗")
			}
		}
		return fail(stderr, err)
	}

	if st != nil && runID != "" {
		if err := st.CompleteRun(runID, list); err != nil {
			log.WithError(err).Warn("更新執行紀錄失敗")
		}
	}

	if cfg.Export.Enabled {
		exp := exporter.NewExporter(report.DefaultHeaders(), cfg.Report.VariationPlaceholder)
		path, err := exp.SaveFile(list, cfg.Export.Dir, time.Now())
		if err != nil {
			log.WithError(err).Error("匯出 Excel 失敗")
			return exitUnexpected
		}
		log.WithField("path", path).Info("已匯出 Excel 採購清單")
	}
	return exitOK
}

// openStore 啟用執行紀錄時開啟資料庫；失敗只記錄警告，不影響產生清單
func openStore(cfg *config.AppConfig) *store.Store {
	if !cfg.Data.History {
		return nil
	}
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.WithError(err).Warn("建立資料目錄失敗，略過執行紀錄")
		return nil
	}
	st, err := store.New(filepath.Join(dataDir, store.DBFileName))
	if err != nil {
		log.WithError(err).Warn("開啟執行紀錄資料庫失敗")
		return nil
	}
	return st
}

func printHistory(cfg *config.AppConfig, limit int, stdout io.Writer) int {
	cfg.Data.History = true
	st := openStore(cfg)
	if st == nil {
		return exitUnexpected
	}
	defer st.Close()

	runs, err := st.ListRuns(limit)
	if err != nil {
		log.WithError(err).Error("讀取執行紀錄失敗")
		return exitUnexpected
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-10s  %s  店家 %d  數量 %s",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, filepath.Base(r.OrderFile),
			r.VendorCount, r.TotalQuantity)
		if r.ErrorKind != "" {
			line += fmt.Sprintf("  [%s] %s", r.ErrorKind, r.ErrorMessage)
		}
		fmt.Fprintln(stdout, line)
	}
	return exitOK
}

func serve(cfg *config.AppConfig) int {
	fmt.Println("==========================================")
	fmt.Println("  Shoplist - 自動化採購清單")
	fmt.Println("==========================================")

	st := openStore(cfg)
	if st != nil {
		defer st.Close()
	}

	mappings := source.NewMappingLoader(cfg.Source.MappingURL, cfg.MappingColumns(), cfg.FetchTimeout())
	srv := server.NewServer(cfg, mappings, st)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d/api/status", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("服務啟動中，監聽端口 %d ...\n", cfg.Server.Port)
		errCh <- srv.Run(addr)
	}()

	if !cfg.Server.DevMode {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("無法自動開啟瀏覽器，請手動訪問: %s\n", url)
		}
	} else {
		fmt.Printf("開發模式: 請訪問 %s\n", url)
	}

	fmt.Println("\n按 Ctrl+C 停止服務...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		fmt.Println("\n正在關閉服務...")
		return exitOK
	case err := <-errCh:
		log.WithError(err).Error("服務啟動失敗")
		return exitUnexpected
	}
}

// fail 輸出錯誤與提示並返回對應結束碼
func fail(stderr io.Writer, err error) int {
	kind := shoplist.Classify(err)
	switch kind {
	case shoplist.KindFileDiscovery:
		fmt.Fprintln(stderr, "❌ 錯誤：找不到訂單檔案")
	case shoplist.KindLoad:
		fmt.Fprintln(stderr, "❌ 錯誤：讀取檔案時發生問題")
	default:
		fmt.Fprintln(stderr, "❌ 發生了預期外的錯誤")
	}
	fmt.Fprintf(stderr, "   %v\n", err)
	for _, h := range shoplist.Hints(err) {
		fmt.Fprintf(stderr, "   %s\n", h)
	}
	return exitCode(kind)
}

func exitCode(kind shoplist.ErrorKind) int {
	switch kind {
	case shoplist.KindNone:
		return exitOK
	case shoplist.KindFileDiscovery:
		return exitFileDiscovery
	case shoplist.KindLoad:
		return exitLoad
	default:
		return exitUnexpected
	}
}
