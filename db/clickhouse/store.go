// Package clickhouse persists dataset upload snapshots and issued
// quotations for audit and history queries.
package clickhouse

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"

	"cable-quote/pkg/api"
)

// Config holds connection settings.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "cablequote",
		Username: "default",
		Password: "",
	}
}

// Store implements the engine's Snapshotter over ClickHouse.
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewStore connects to ClickHouse.
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the snapshot tables if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS upload_snapshots (
			id UUID,
			record_type String,
			row_count UInt32,
			headers String,
			field_mapping String,
			content_hash String,
			uploaded_at DateTime,
			created_at DateTime DEFAULT now()
		) ENGINE = MergeTree() ORDER BY (record_type, uploaded_at)`,
		`CREATE TABLE IF NOT EXISTS quotations (
			id UUID,
			subtotal Decimal(18, 2),
			tax_amount Decimal(18, 2),
			grand_total Decimal(18, 2),
			currency String,
			line_items String,
			created_at DateTime
		) ENGINE = MergeTree() ORDER BY created_at`,
	}
	for _, stmt := range ddl {
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// SaveUploadSnapshot records an accepted dataset upload. The content hash
// deduplicates re-uploads of identical tables.
func (s *Store) SaveUploadSnapshot(ctx context.Context, ds api.UploadedDataset) error {
	headers, err := json.Marshal(ds.OriginalHeaders)
	if err != nil {
		return err
	}
	mapping, err := json.Marshal(ds.FieldMapping)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO upload_snapshots (
			id, record_type, row_count, headers, field_mapping, content_hash, uploaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	return s.conn.Exec(ctx, query,
		ds.ID,
		string(ds.RecordType),
		uint32(len(ds.Rows)),
		string(headers),
		string(mapping),
		contentHash(ds.Rows),
		ds.UploadedAt,
	)
}

// SaveQuotation records an issued quotation breakdown.
func (s *Store) SaveQuotation(ctx context.Context, b api.QuotationBreakdown) error {
	items, err := json.Marshal(b.LineItems)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO quotations (
			id, subtotal, tax_amount, grand_total, currency, line_items, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	return s.conn.Exec(ctx, query,
		b.ID,
		b.Subtotal,
		b.TaxAmount,
		b.GrandTotal,
		b.Currency,
		string(items),
		b.CreatedAt,
	)
}

// UploadSnapshot is one persisted upload record.
type UploadSnapshot struct {
	ID          uuid.UUID
	RecordType  string
	RowCount    uint32
	ContentHash string
	UploadedAt  time.Time
}

// RecentUploads lists the latest snapshots for a record type.
func (s *Store) RecentUploads(ctx context.Context, recordType string, limit int) ([]UploadSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT id, record_type, row_count, content_hash, uploaded_at
		FROM upload_snapshots
		WHERE record_type = ?
		ORDER BY uploaded_at DESC
		LIMIT ?
	`
	rows, err := s.conn.Query(ctx, query, recordType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []UploadSnapshot
	for rows.Next() {
		var snap UploadSnapshot
		if err := rows.Scan(&snap.ID, &snap.RecordType, &snap.RowCount, &snap.ContentHash, &snap.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// contentHash fingerprints the canonical rows for dedup.
func contentHash(rows []map[string]string) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, row := range rows {
		_ = enc.Encode(row)
	}
	return hex.EncodeToString(h.Sum(nil))
}
