// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package archive 以 SQLite 保存切點掃描的歷史紀錄。
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/stats"
	_ "modernc.org/sqlite"
)

//go:embed sql/ddl.sql
var ddl string

// Memory 程序內的暫存資料庫（測試與 demo 用）
const Memory = ":memory:"

// Record 一筆掃描紀錄
type Record struct {
	RunID        string    `json:"run_id"`
	Analysis     string    `json:"analysis"`
	NumBins      int       `json:"numbins"`
	Index        int       `json:"cut_index"`
	Threshold    float64   `json:"threshold"`
	Significance float64   `json:"significance"`
	Signal       float64   `json:"signal"`
	Background   float64   `json:"background"`
	AUC          float64   `json:"auc"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store 掃描歷史
type Store struct {
	db *sql.DB
}

// Open 開啟（必要時建立）資料庫並建立資料表
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errs.NewWarn("archive path required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "open archive failed", "path="+path)
	}
	// :memory: 每條連線各自一份資料庫，固定單一連線
	db.SetMaxOpenConns(1)
	if path != Memory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, errs.Wrap(err, "archive pragma failed")
		}
	}
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, "archive migrate failed")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save 保存報告並回傳新的 run id。報告會先 Done()。
func (s *Store) Save(ctx context.Context, r *stats.ScanReport) (string, error) {
	if r == nil || r.Summary == nil {
		return "", errs.NewWarn("archive: empty report")
	}
	r.Done()
	raw, err := json.Marshal(r)
	if err != nil {
		return "", errs.Wrap(err, "archive: marshal report")
	}
	id := uuid.New().String()
	sm := r.Summary
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scan_runs (run_id, analysis, numbins, cut_index, threshold, significance, signal, background, auc, report_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sm.Analysis, sm.NumBins, sm.Index, sm.Threshold, sm.Significance, sm.Signal, sm.Background, sm.AUC,
		string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", errs.WrapWithExtra(err, "archive: insert run", "analysis="+sm.Analysis)
	}
	return id, nil
}

// List 依時間由新到舊列出紀錄；analysis 為空時列出全部，limit <= 0 時不限制
func (s *Store) List(ctx context.Context, analysis string, limit int) ([]Record, error) {
	q := `SELECT run_id, analysis, numbins, cut_index, threshold, significance, signal, background, auc, created_at
	      FROM scan_runs`
	args := make([]any, 0, 2)
	if analysis != "" {
		q += ` WHERE analysis = ?`
		args = append(args, analysis)
	}
	q += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errs.Wrap(err, "archive: query runs")
	}
	defer rows.Close()

	out := make([]Record, 0, 16)
	for rows.Next() {
		var rec Record
		var created string
		if err := rows.Scan(&rec.RunID, &rec.Analysis, &rec.NumBins, &rec.Index, &rec.Threshold,
			&rec.Significance, &rec.Signal, &rec.Background, &rec.AUC, &created); err != nil {
			return nil, errs.Wrap(err, "archive: scan row")
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, errs.Wrap(err, "archive: parse created_at")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "archive: iterate runs")
	}
	return out, nil
}

// Report 取回完整報告
func (s *Store) Report(ctx context.Context, runID string) (*stats.ScanReport, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM scan_runs WHERE run_id = ?`, runID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errs.NewWithExtra(errs.Warn, "archive: run not found", "run_id="+runID)
	}
	if err != nil {
		return nil, errs.Wrap(err, "archive: query report")
	}
	r := &stats.ScanReport{}
	if err := json.Unmarshal([]byte(raw), r); err != nil {
		return nil, errs.Wrap(err, "archive: decode report")
	}
	return r, nil
}
