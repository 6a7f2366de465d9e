package server

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"shoplist/internal/config"
	"shoplist/internal/shoplist"
	"shoplist/internal/source"
	"shoplist/internal/store"
)

// Server HTTP 服務
type Server struct {
	router   *gin.Engine
	cfg      *config.AppConfig
	mappings shoplist.MappingLoader
	store    *store.Store
}

// NewServer 創建服務；st 為 nil 時不記錄執行紀錄
func NewServer(cfg *config.AppConfig, mappings shoplist.MappingLoader, st *store.Store) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:   gin.New(),
		cfg:      cfg,
		mappings: mappings,
		store:    st,
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		api.GET("/status", s.getStatus)
		api.POST("/shopping-list", s.createShoppingList)
		api.GET("/runs", s.listRuns)
	}
}

// Handler 返回 http.Handler（測試用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 啟動服務
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"mappingSource": s.mappings.Source(),
		"history":       s.store != nil,
	})
}

// createShoppingList 上傳訂單檔並產生採購清單
// POST /api/shopping-list
func (s *Server) createShoppingList(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上傳檔案"})
		return
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無法讀取上傳檔案"})
		return
	}
	defer file.Close()

	orders, err := source.NewUploadedOrderLoader(fh.Filename, file, s.cfg.OrderColumns())
	if err != nil {
		s.writeError(c, "", err)
		return
	}

	runID := s.startRun(fh.Filename)

	svc := shoplist.NewService(orders, s.mappings, shoplist.Options{NotFoundVendor: s.cfg.Report.NotFoundVendor})
	list, err := svc.Generate(c.Request.Context())
	if err != nil {
		s.failRun(runID, err)
		s.writeError(c, runID, err)
		return
	}

	if s.store != nil && runID != "" {
		if err := s.store.CompleteRun(runID, list); err != nil {
			log.WithError(err).Warn("更新執行紀錄失敗")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"runId": runID,
		"list":  list,
	})
}

func (s *Server) listRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"items": []store.Run{}})
		return
	}
	runs, err := s.store.ListRuns(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": runs})
}

func (s *Server) startRun(orderFile string) string {
	if s.store == nil {
		return ""
	}
	id, err := s.store.CreateRun(orderFile, s.mappings.Source())
	if err != nil {
		log.WithError(err).Warn("建立執行紀錄失敗")
		return ""
	}
	return id
}

func (s *Server) failRun(runID string, runErr error) {
	if s.store == nil || runID == "" {
		return
	}
	if err := s.store.FailRun(runID, shoplist.Classify(runErr).String(), runErr.Error()); err != nil {
		log.WithError(err).Warn("更新執行紀錄失敗")
	}
}

// writeError 依錯誤分類選擇狀態碼：上傳檔案問題 400、遠端對應表問題 502
func (s *Server) writeError(c *gin.Context, runID string, err error) {
	status := http.StatusInternalServerError
	var loadErr *shoplist.LoadError
	if errors.As(err, &loadErr) {
		switch loadErr.Side {
		case shoplist.SideRemote:
			status = http.StatusBadGateway
		case shoplist.SideMappingFile:
			// 對應表是伺服器端設定
			status = http.StatusInternalServerError
		default:
			status = http.StatusBadRequest
		}
	}
	log.WithError(err).WithField("status", status).Error("產生採購清單失敗")
	c.JSON(status, gin.H{
		"runId": runID,
		"kind":  shoplist.Classify(err).String(),
		"error": err.Error(),
		"hints": shoplist.Hints(err),
	})
}
