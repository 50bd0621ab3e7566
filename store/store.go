// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store persists samples, sensor readings, and event records to
// the relational database backing one deployment, and answers the
// write-invert precondition query (does a device have a complete,
// non-partial prior dump on file?).
package store // import "github.com/sramlab/sramrig/store"

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	host    = "localhost"
	drvName = "mysql"
)

var (
	usr = "username"
	pwd = "s3cr3t"
)

// DB exposes the persistence operations a Reader needs, over one MySQL
// database.
type DB struct {
	db   *sql.DB
	name string
}

// Open opens a connection to dbname and ensures it is reachable.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("store: could not open %q db: %w", dbname, err)
	}

	if err := ping(db, dbname); err != nil {
		return nil, err
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: could not ping %q db: %w", dbname, err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// SaveSample appends one memory-block sample record.
func (db *DB) SaveSample(ctx context.Context, uid, boardKind string, pic uint8, blockOffset int, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(ctx,
		"INSERT INTO samples (uid, board_kind, pic, block_offset, data, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uid, boardKind, pic, blockOffset, csvBytes(data), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("store: could not save sample for %q offset=%d: %w", uid, blockOffset, err)
	}
	return nil
}

// SaveSensor appends one sensor-telemetry record.
func (db *DB) SaveSensor(ctx context.Context, uid, boardKind string, pic uint8, tempRaw, vddRaw uint16) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(ctx,
		"INSERT INTO sensors (uid, board_kind, pic, temp_raw, vdd_raw, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uid, boardKind, pic, tempRaw, vddRaw, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("store: could not save sensor reading for %q: %w", uid, err)
	}
	return nil
}

// SaveEvent appends one broker event record.
func (db *DB) SaveEvent(ctx context.Context, status, sourceName string, level int, msg string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(ctx,
		"INSERT INTO events (status, source_name, level, msg, created_at) VALUES (?, ?, ?, ?, ?)",
		status, sourceName, level, msg, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("store: could not save event for %q: %w", sourceName, err)
	}
	return nil
}

// ReferenceBlockCount reports how many distinct block_offset samples are
// on file for uid, the raw ingredient IsDumpComplete compares against
// sramSize/blockSize.
func (db *DB) ReferenceBlockCount(ctx context.Context, uid string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	row := db.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT block_offset) FROM samples
		 WHERE uid = ? AND created_at = (
		   SELECT MAX(created_at) FROM samples WHERE uid = ?
		 )`,
		uid, uid,
	)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("store: could not count reference blocks for %q: %w", uid, err)
	}
	return n, nil
}

// ReferenceBlock returns the most recently sampled bytes for uid at
// blockOffset, the source write-invert computes its bitwise-NOT from.
func (db *DB) ReferenceBlock(ctx context.Context, uid string, blockOffset int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var csv string
	row := db.db.QueryRowContext(ctx,
		"SELECT data FROM samples WHERE uid = ? AND block_offset = ? ORDER BY created_at DESC LIMIT 1",
		uid, blockOffset,
	)
	if err := row.Scan(&csv); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("store: no reference block %d for %q", blockOffset, uid)
		}
		return nil, fmt.Errorf("store: could not load reference block %d for %q: %w", blockOffset, uid, err)
	}
	return parseCSVBytes(csv)
}

func csvBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%d", b)
	}
	return strings.Join(parts, ",")
}

func parseCSVBytes(csv string) ([]byte, error) {
	if csv == "" {
		return nil, nil
	}
	fields := strings.Split(csv, ",")
	out := make([]byte, len(fields))
	for i, f := range fields {
		var v int
		if _, err := fmt.Sscanf(f, "%d", &v); err != nil {
			return nil, fmt.Errorf("store: could not parse byte %d of sample data: %w", i, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}
