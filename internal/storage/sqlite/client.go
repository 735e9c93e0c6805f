package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/bidflow/backend/internal/storage/models"
	"github.com/bidflow/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessment_samples (
		id TEXT PRIMARY KEY,
		bid_id TEXT NOT NULL,
		organization TEXT NOT NULL,
		category TEXT,
		base_price INTEGER,
		estimated_price INTEGER NOT NULL,
		award_price INTEGER,
		award_ratio REAL NOT NULL,
		opened_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_samples_org ON assessment_samples(organization);
	CREATE INDEX IF NOT EXISTS idx_samples_category ON assessment_samples(category);
	CREATE INDEX IF NOT EXISTS idx_samples_opened ON assessment_samples(opened_at);

	CREATE TABLE IF NOT EXISTS prediction_history (
		id TEXT PRIMARY KEY,
		bid_id TEXT NOT NULL,
		bid_title TEXT,
		product_id TEXT,
		strategy TEXT NOT NULL,
		recommendation TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		win_probability REAL NOT NULL,
		optimal_price INTEGER NOT NULL,
		floor_ratio REAL NOT NULL,
		result_json TEXT NOT NULL,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_bid ON prediction_history(bid_id);
	CREATE INDEX IF NOT EXISTS idx_history_created ON prediction_history(created_at);

	CREATE TABLE IF NOT EXISTS delivery_records (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		organization TEXT,
		product_name TEXT NOT NULL,
		category TEXT,
		amount INTEGER NOT NULL,
		completed_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_delivery_profile ON delivery_records(profile_id);
	CREATE INDEX IF NOT EXISTS idx_delivery_completed ON delivery_records(completed_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) SaveAssessmentSample(ctx context.Context, sample *models.AssessmentSample) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO assessment_samples
		(id, bid_id, organization, category, base_price, estimated_price, award_price, award_ratio, opened_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sample.ID, sample.BidID, sample.Organization, sample.Category,
		sample.BasePrice, sample.EstimatedPrice, sample.AwardPrice, sample.AwardRatio,
		sample.OpenedAt.Unix(), sample.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment sample: %w", err)
	}
	return nil
}

// AssessmentSamples returns samples for an organization, most recent first.
// Category narrows the set when the caller knows it; empty matches all.
func (c *Client) AssessmentSamples(ctx context.Context, organization, category string, limit int) ([]models.AssessmentSample, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, bid_id, organization, COALESCE(category, ''), COALESCE(base_price, 0),
		       estimated_price, COALESCE(award_price, 0), award_ratio, opened_at, created_at
		FROM assessment_samples
		WHERE organization = ?`
	args := []interface{}{organization}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY opened_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment samples: %w", err)
	}
	defer rows.Close()

	var samples []models.AssessmentSample
	for rows.Next() {
		var s models.AssessmentSample
		var openedAt, createdAt int64
		if err := rows.Scan(&s.ID, &s.BidID, &s.Organization, &s.Category, &s.BasePrice,
			&s.EstimatedPrice, &s.AwardPrice, &s.AwardRatio, &openedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan assessment sample: %w", err)
		}
		s.OpenedAt = time.Unix(openedAt, 0).UTC()
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

func (c *Client) SavePrediction(ctx context.Context, record *models.PredictionRecord) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO prediction_history
		(id, bid_id, bid_title, product_id, strategy, recommendation, risk_level,
		 win_probability, optimal_price, floor_ratio, result_json, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.BidID, record.BidTitle, record.ProductID, record.Strategy,
		record.Recommendation, record.RiskLevel, record.WinProbability,
		record.OptimalPrice, record.FloorRatio, record.ResultJSON, record.LatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// PredictionHistory lists persisted predictions, newest first. BidID narrows
// to one tender when non-empty.
func (c *Client) PredictionHistory(ctx context.Context, bidID string, limit int) ([]models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, bid_id, COALESCE(bid_title, ''), COALESCE(product_id, ''), strategy,
		       recommendation, risk_level, win_probability, optimal_price, floor_ratio,
		       result_json, COALESCE(latency_ms, 0), created_at
		FROM prediction_history`
	args := []interface{}{}
	if bidID != "" {
		query += " WHERE bid_id = ?"
		args = append(args, bidID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction history: %w", err)
	}
	defer rows.Close()

	var records []models.PredictionRecord
	for rows.Next() {
		var r models.PredictionRecord
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.BidID, &r.BidTitle, &r.ProductID, &r.Strategy,
			&r.Recommendation, &r.RiskLevel, &r.WinProbability, &r.OptimalPrice,
			&r.FloorRatio, &r.ResultJSON, &r.LatencyMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction record: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

func (c *Client) SaveDeliveryRecord(ctx context.Context, record *models.DeliveryRecordRow) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO delivery_records
		(id, profile_id, organization, product_name, category, amount, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ProfileID, record.Organization, record.ProductName,
		record.Category, record.Amount, record.CompletedAt.Unix(), record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save delivery record: %w", err)
	}
	return nil
}

// DeliveryRecords returns the stored contracts for a bidder profile.
func (c *Client) DeliveryRecords(ctx context.Context, profileID string) ([]models.DeliveryRecordRow, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, profile_id, COALESCE(organization, ''), product_name, COALESCE(category, ''),
		       amount, completed_at, created_at
		FROM delivery_records
		WHERE profile_id = ?
		ORDER BY completed_at DESC`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery records: %w", err)
	}
	defer rows.Close()

	var records []models.DeliveryRecordRow
	for rows.Next() {
		var r models.DeliveryRecordRow
		var completedAt, createdAt int64
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.Organization, &r.ProductName,
			&r.Category, &r.Amount, &completedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery record: %w", err)
		}
		r.CompletedAt = time.Unix(completedAt, 0).UTC()
		r.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}
