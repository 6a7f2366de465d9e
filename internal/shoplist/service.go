package shoplist

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"

	"shoplist/internal/model"
)

// OrderLoader 載入本機訂單明細
//
//go:generate mockgen -destination=mocks/mock_loader.go -source=service.go
type OrderLoader interface {
	LoadOrders(ctx context.Context) ([]model.OrderRow, error)
	Source() string
}

// MappingLoader 載入遠端商品店家對應表
type MappingLoader interface {
	LoadMappings(ctx context.Context) ([]model.MappingRow, error)
	Source() string
}

// Service 串接 載入 -> 比對 -> 彙總 的單次流程
type Service struct {
	orders   OrderLoader
	mappings MappingLoader
	opts     Options
}

// NewService 創建服務
func NewService(orders OrderLoader, mappings MappingLoader, opts Options) *Service {
	return &Service{
		orders:   orders,
		mappings: mappings,
		opts:     opts,
	}
}

// Generate 依序載入兩份資料並產生採購清單
//
// 任何一步失敗都會中止，不會返回部分結果。
func (s *Service) Generate(ctx context.Context) (list *model.ShoppingList, err error) {
	start := time.Now()

	orders, err := s.orders.LoadOrders(ctx)
	if err != nil {
		return nil, asLoadError(err, SideLocal, s.orders.Source())
	}
	log.WithFields(log.Fields{
		"source": s.orders.Source(),
		"rows":   len(orders),
	}).Info("訂單檔讀取完成")

	mappings, err := s.mappings.LoadMappings(ctx)
	if err != nil {
		return nil, asLoadError(err, SideRemote, s.mappings.Source())
	}
	log.WithFields(log.Fields{
		"source": s.mappings.Source(),
		"rows":   len(mappings),
	}).Info("成功讀取最新店家對應表")

	list, err = s.build(orders, mappings)
	if err != nil {
		return nil, err
	}

	if list.Stats.UnmatchedRows > 0 {
		log.WithField("rows", list.Stats.UnmatchedRows).Warn("部分訂單找不到對應店家，請更新對應表")
	}
	log.WithFields(log.Fields{
		"vendors":  len(list.Vendors),
		"quantity": list.Stats.TotalQuantity.String(),
		"duration": time.Since(start).String(),
	}).Info("採購清單產生完成")

	return list, nil
}

// build 執行純計算部分，panic 轉為 UnexpectedError
func (s *Service) build(orders []model.OrderRow, mappings []model.MappingRow) (list *model.ShoppingList, err error) {
	defer func() {
		if r := recover(); r != nil {
			list = nil
			err = &UnexpectedError{Err: fmt.Errorf("build shopping list: %v", r)}
		}
	}()
	return Build(orders, mappings, s.opts), nil
}
