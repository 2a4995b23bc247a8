package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// NewDB opens the fact-store database, runs migrations, and prepares the hot
// statements. The single-tenant workload fits one SQLite file comfortably.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "shower_o_meter.db")
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := NewConnectionPool(db, 10, 2, 5*time.Minute)

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Fact store initialized",
		"path", dbPath,
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS activity_log (
			id TEXT PRIMARY KEY,
			activity_id TEXT NOT NULL,
			duration_minutes REAL NOT NULL,
			logged_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS activity_catalog (
			activity_id TEXT PRIMARY KEY,
			name TEXT,
			metabolic_weight REAL NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT 'indoor',
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS shower_log (
			id TEXT PRIMARY KEY,
			showered_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS weather_readings (
			id TEXT PRIMARY KEY,
			observed_at DATETIME NOT NULL,
			temperature REAL NOT NULL,
			humidity REAL NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS air_readings (
			id TEXT PRIMARY KEY,
			observed_at DATETIME NOT NULL,
			aqi REAL NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS preferences (
			parameter TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		// Append-only: evaluation history is never updated in place.
		`CREATE TABLE IF NOT EXISTS evaluation_results (
			id TEXT PRIMARY KEY,
			anchor_shower_time DATETIME NOT NULL,
			hours_since_shower REAL NOT NULL,
			dirtiness_score REAL NOT NULL,
			odor_score REAL NOT NULL,
			aqi_score REAL NOT NULL,
			final_score REAL NOT NULL,
			recommendation TEXT NOT NULL,
			explanation TEXT NOT NULL,
			confidence REAL NOT NULL,
			generated_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activity_log_logged_at ON activity_log(logged_at)`,
		`CREATE INDEX IF NOT EXISTS idx_shower_log_showered_at ON shower_log(showered_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_weather_observed_at ON weather_readings(observed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_air_observed_at ON air_readings(observed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_results_generated_at ON evaluation_results(generated_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// initPreparedStatements initializes frequently used prepared statements
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_activity": `INSERT INTO activity_log (id, activity_id, duration_minutes, logged_at, created_at)
			VALUES (?, ?, ?, ?, ?)`,

		"insert_shower": `INSERT INTO shower_log (id, showered_at, created_at)
			VALUES (?, ?, ?)`,

		"insert_weather": `INSERT INTO weather_readings (id, observed_at, temperature, humidity, created_at)
			VALUES (?, ?, ?, ?, ?)`,

		"insert_air": `INSERT INTO air_readings (id, observed_at, aqi, created_at)
			VALUES (?, ?, ?, ?)`,

		"insert_result": `INSERT INTO evaluation_results (
			id, anchor_shower_time, hours_since_shower, dirtiness_score, odor_score,
			aqi_score, final_score, recommendation, explanation, confidence, generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,

		"upsert_catalog": `INSERT INTO activity_catalog (activity_id, name, metabolic_weight, category, updated_at)
			VALUES (?, ?, ?, ?, ?) ON CONFLICT(activity_id) DO UPDATE SET
			name = excluded.name,
			metabolic_weight = excluded.metabolic_weight,
			category = excluded.category,
			updated_at = excluded.updated_at`,

		"upsert_preference": `INSERT INTO preferences (parameter, value, updated_at)
			VALUES (?, ?, ?) ON CONFLICT(parameter) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,

		"latest_result": `SELECT id, anchor_shower_time, hours_since_shower, dirtiness_score,
			odor_score, aqi_score, final_score, recommendation, explanation, confidence, generated_at
			FROM evaluation_results ORDER BY generated_at DESC LIMIT 1`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
