package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shoplist/internal/model"
)

// 執行狀態
const (
	RunStatusProcessing = "processing"
	RunStatusSucceeded  = "succeeded"
	RunStatusFailed     = "failed"
)

// Run 一次產生採購清單的紀錄
type Run struct {
	ID            string     `json:"id"`
	OrderFile     string     `json:"orderFile"`
	MappingSource string     `json:"mappingSource"`
	OrderRows     int        `json:"orderRows"`
	MappingRows   int        `json:"mappingRows"`
	UnmatchedRows int        `json:"unmatchedRows"`
	VendorCount   int        `json:"vendorCount"`
	TotalQuantity string     `json:"totalQuantity"`
	Status        string     `json:"status"`
	ErrorKind     string     `json:"errorKind,omitempty"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// CreateRun 建立執行紀錄，返回 run id
func (s *Store) CreateRun(orderFile, mappingSource string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(`
		INSERT INTO runs (id, order_file, mapping_source, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, orderFile, mappingSource, RunStatusProcessing, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun 以成功結果更新紀錄
func (s *Store) CompleteRun(id string, list *model.ShoppingList) error {
	_, err := s.db.Exec(`
		UPDATE runs SET
			order_rows = ?,
			mapping_rows = ?,
			unmatched_rows = ?,
			vendor_count = ?,
			total_quantity = ?,
			status = ?,
			completed_at = ?
		WHERE id = ?
	`, list.Stats.OrderRows, list.Stats.MappingRows, list.Stats.UnmatchedRows, len(list.Vendors),
		list.Stats.TotalQuantity.String(), RunStatusSucceeded, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// FailRun 記錄失敗原因
func (s *Store) FailRun(id, kind, message string) error {
	_, err := s.db.Exec(`
		UPDATE runs SET status = ?, error_kind = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`, RunStatusFailed, kind, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}

// ListRuns 依開始時間倒序列出最近的紀錄
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, order_file, mapping_source, order_rows, mapping_rows, unmatched_rows,
			vendor_count, total_quantity, status, error_kind, error_message, started_at, completed_at
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var r Run
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.OrderFile, &r.MappingSource, &r.OrderRows, &r.MappingRows,
			&r.UnmatchedRows, &r.VendorCount, &r.TotalQuantity, &r.Status, &r.ErrorKind,
			&r.ErrorMessage, &r.StartedAt, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
