package extractor

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"socialpulse-backend/lib/metrics"
)

// History archives completed batches in sqlite. It is written once per
// batch after assembly finishes; the orchestrator itself owns no
// persistent state and works fine with a nil History.
type History struct {
	db *sql.DB
}

func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// SaveBatch writes one batch and its records, preserving input order via
// the position column. Returns the batch id.
func (h *History) SaveBatch(ctx context.Context, result BatchResult) (int64, error) {
	var success, errored int
	for _, rec := range result.Results {
		if rec.Failed() {
			errored++
		} else {
			success++
		}
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO batches (created_at, total, success, errors) VALUES (?, ?, ?, ?)`,
		time.Now().Unix(), len(result.Results), success, errored,
	)
	if err != nil {
		return 0, err
	}
	batchId, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, rec := range result.Results {
		payload, err := json.Marshal(rec)
		if err != nil {
			return 0, err
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO batch_records (batch_id, position, url, platform, errored, payload)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			batchId, i, rec.Url, string(rec.Platform), boolToInt(rec.Failed()), string(payload),
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return batchId, nil
}

type BatchInfo struct {
	Id        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Total     int       `json:"total"`
	Success   int       `json:"success"`
	Errors    int       `json:"errors"`
}

// RecentBatches lists the newest archived batches, newest first.
func (h *History) RecentBatches(ctx context.Context, limit int) ([]BatchInfo, error) {
	rows, err := h.db.QueryContext(
		ctx,
		`SELECT id, created_at, total, success, errors
		 FROM batches ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchInfo
	for rows.Next() {
		var info BatchInfo
		var createdAt int64
		err = rows.Scan(&info.Id, &createdAt, &info.Total, &info.Success, &info.Errors)
		if err != nil {
			return nil, err
		}
		info.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, info)
	}
	return out, rows.Err()
}

// BatchRecords replays an archived batch in its original order.
func (h *History) BatchRecords(ctx context.Context, batchId int64) ([]metrics.MetricRecord, error) {
	rows, err := h.db.QueryContext(
		ctx,
		`SELECT payload FROM batch_records WHERE batch_id = ? ORDER BY position ASC`,
		batchId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metrics.MetricRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec metrics.MetricRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
