package cache

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// persistTier is the disk-backed cache tier. Rows are keyed by a blake2b
// digest of the logical key; values are JSON wrapped in a zstd frame.
//
// Round-tripping through JSON means composite values come back as generic
// maps/slices rather than their original Go types; callers of the cache
// already treat values as opaque, so this is part of the contract.
type persistTier struct {
	db      *sql.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

const persistSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key_hash   TEXT PRIMARY KEY,
	key        TEXT NOT NULL,
	value_json BLOB NOT NULL,
	created_at TEXT NOT NULL,
	expires_at TEXT,
	hit_count  INTEGER NOT NULL DEFAULT 0,
	metadata   TEXT
);
`

func openPersistTier(dir string) (*persistTier, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "cache.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(persistSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &persistTier{db: db, encoder: encoder, decoder: decoder}, nil
}

func hashKey(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// get returns the stored entry or nil when absent. Decode failures are
// returned as errors; the caller treats them as misses.
func (p *persistTier) get(key string) (*Entry, error) {
	var (
		blob      []byte
		createdAt string
		expiresAt sql.NullString
		hitCount  int
		metaJSON  sql.NullString
	)

	err := p.db.QueryRow(`
		SELECT value_json, created_at, expires_at, hit_count, metadata
		FROM cache_entries
		WHERE key_hash = ?
	`, hashKey(key)).Scan(&blob, &createdAt, &expiresAt, &hitCount, &metaJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	raw, err := p.decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("corrupt cache blob: %w", err)
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("corrupt cache value: %w", err)
	}

	entry := &Entry{
		Key:      key,
		Value:    value,
		HitCount: hitCount,
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if expiresAt.Valid && expiresAt.String != "" {
		if entry.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt.String); err != nil {
			return nil, fmt.Errorf("invalid expires_at: %w", err)
		}
	}
	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("invalid metadata: %w", err)
		}
	}

	return entry, nil
}

func (p *persistTier) put(entry *Entry) error {
	raw, err := json.Marshal(entry.Value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	blob := p.encoder.EncodeAll(raw, nil)

	var expiresAt interface{}
	if !entry.ExpiresAt.IsZero() {
		expiresAt = entry.ExpiresAt.Format(time.RFC3339Nano)
	}

	var metaJSON interface{}
	if len(entry.Metadata) > 0 {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode cache metadata: %w", err)
		}
		metaJSON = string(data)
	}

	_, err = p.db.Exec(`
		INSERT OR REPLACE INTO cache_entries
			(key_hash, key, value_json, created_at, expires_at, hit_count, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, hashKey(entry.Key), entry.Key, blob,
		entry.CreatedAt.Format(time.RFC3339Nano), expiresAt, entry.HitCount, metaJSON)
	if err != nil {
		return fmt.Errorf("failed to persist cache entry: %w", err)
	}
	return nil
}

func (p *persistTier) delete(key string) error {
	_, err := p.db.Exec("DELETE FROM cache_entries WHERE key_hash = ?", hashKey(key))
	return err
}

func (p *persistTier) clear() error {
	_, err := p.db.Exec("DELETE FROM cache_entries")
	return err
}

func (p *persistTier) close() error {
	p.encoder.Close()
	p.decoder.Close()
	return p.db.Close()
}
