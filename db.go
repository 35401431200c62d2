package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// migration queries
	createJournalTableSQL = `
  CREATE TABLE IF NOT EXISTS journal (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  op TEXT NOT NULL,
  day_of_week INTEGER,
  start_time TEXT,
  end_time TEXT,
  ok INTEGER NOT NULL DEFAULT 0,
  message TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
  )`

	createJournalIndexSQL = `CREATE INDEX IF NOT EXISTS idx_journal_created ON journal(created_at)`

	// journal queries
	insertJournalSQL = `INSERT INTO journal (op, day_of_week, start_time, end_time, ok, message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	recentJournalSQL = `SELECT id, op, day_of_week, start_time, end_time, ok, message, created_at FROM journal ORDER BY id DESC LIMIT ?`
)

// Journal receives one record per synced slot outcome.
type Journal interface {
	Record(entry JournalEntry) error
}

type Repo struct {
	db *sql.DB
}

func NewRepo(dbPath string) (*Repo, error) {
	// ensure directory exists
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a :memory: database lives and dies with its connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &Repo{db: db}

	if err := repo.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

// runs migrations on initial start
func (r *Repo) runMigrations() error {
	stmts := []string{
		createJournalTableSQL,
		createJournalIndexSQL,
	}

	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func (r *Repo) Record(entry JournalEntry) error {
	var day sql.NullInt64
	var start, end sql.NullString
	if entry.Slot != nil {
		day = sql.NullInt64{Int64: int64(entry.Slot.DayOfWeek), Valid: true}
		start = sql.NullString{String: entry.Slot.StartTime, Valid: true}
		end = sql.NullString{String: entry.Slot.EndTime, Valid: true}
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.Exec(insertJournalSQL, entry.Op, day, start, end, entry.OK, entry.Message, createdAt)
	if err != nil {
		return fmt.Errorf("error recording %s: %w", entry.Op, err)
	}
	return nil
}

// returns the newest entries first
func (r *Repo) Recent(limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(recentJournalSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var (
			entry      JournalEntry
			day        sql.NullInt64
			start, end sql.NullString
			message    sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Op, &day, &start, &end, &entry.OK, &message, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if day.Valid {
			entry.Slot = &Slot{
				DayOfWeek: int(day.Int64),
				StartTime: start.String,
				EndTime:   end.String,
			}
		}
		entry.Message = message.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
