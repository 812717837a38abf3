package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/ionoview/internal/model"
)

// FileName is the archive database file name inside the database directory.
const FileName = "ionoview.db"

// observedLayout is how observation times are stored. It sorts
// lexicographically, so range queries compare strings.
const observedLayout = "2006-01-02 15:04:05"

// ArchiveDB provides SQLite-based storage for scaled parameters.
type ArchiveDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ArchiveDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an ArchiveDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ArchiveDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw refuses to create a missing file,
	// mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &ArchiveDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *ArchiveDB) Close() error {
	return adb.db.Close()
}

// Path returns the database file path.
func (adb *ArchiveDB) Path() string {
	return adb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (adb *ArchiveDB) createTables() error {
	schema := `
	-- One row per sounding; re-saving a sounding replaces its row
	CREATE TABLE IF NOT EXISTS scaled (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sounding_path TEXT NOT NULL UNIQUE,
		station TEXT NOT NULL,
		observed_at TEXT NOT NULL,
		fo_e REAL,
		fo_f1 REAL,
		fo_f2 REAL,
		sunspot INTEGER,
		file_hash TEXT,
		annotations_json TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scaled_station ON scaled(station);
	CREATE INDEX IF NOT EXISTS idx_scaled_observed ON scaled(observed_at);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// ScaledRecord is the archived scaling of one sounding.
type ScaledRecord struct {
	ID           int64
	SoundingPath string
	Station      string
	ObservedAt   time.Time
	// Critical frequencies in MHz; model.CriticalUnset when not scaled.
	FoE  float64
	FoF1 float64
	FoF2 float64
	// Sunspot is 0 when SunspotKnown is false.
	Sunspot      int
	SunspotKnown bool
	// FileHash is the hex SHA3-256 of the sounding file, empty when unknown.
	FileHash    string
	Annotations *model.Annotations
	SavedAt     time.Time
}

// NewScaledRecord builds a record from a sounding header and its annotations.
func NewScaledRecord(soundingPath string, h model.SoundingHeader, a *model.Annotations, fileHash string) *ScaledRecord {
	if a == nil {
		a = model.NewAnnotations()
	}
	return &ScaledRecord{
		SoundingPath: soundingPath,
		Station:      h.Station,
		ObservedAt:   h.ObservedAt,
		FoE:          a.Get(model.LayerE).Critical,
		FoF1:         a.Get(model.LayerF1).Critical,
		FoF2:         a.Get(model.LayerF2).Critical,
		Sunspot:      h.Sunspot,
		SunspotKnown: h.SunspotKnown,
		FileHash:     fileHash,
		Annotations:  a,
	}
}

// HashFile returns the hex SHA3-256 digest of the file at path.
// The digest tells whether an archived scaling still matches the sounding
// on disk.
func HashFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // operator-selected sounding
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck // read-only handle

	h := sha3.New256()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SaveScaled inserts or replaces the record for rec.SoundingPath.
func (adb *ArchiveDB) SaveScaled(ctx context.Context, rec *ScaledRecord) error {
	annotationsJSON, err := json.Marshal(rec.Annotations)
	if err != nil {
		return fmt.Errorf("failed to serialize annotations: %w", err)
	}

	var sunspot sql.NullInt64
	if rec.SunspotKnown {
		sunspot = sql.NullInt64{Int64: int64(rec.Sunspot), Valid: true}
	}

	query := `
	INSERT INTO scaled (sounding_path, station, observed_at, fo_e, fo_f1, fo_f2, sunspot, file_hash, annotations_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(sounding_path) DO UPDATE SET
		station = excluded.station,
		observed_at = excluded.observed_at,
		fo_e = excluded.fo_e,
		fo_f1 = excluded.fo_f1,
		fo_f2 = excluded.fo_f2,
		sunspot = excluded.sunspot,
		file_hash = excluded.file_hash,
		annotations_json = excluded.annotations_json,
		saved_at = CURRENT_TIMESTAMP
	`

	_, err = adb.db.ExecContext(ctx, query,
		rec.SoundingPath,
		rec.Station,
		rec.ObservedAt.UTC().Format(observedLayout),
		criticalValue(rec.FoE),
		criticalValue(rec.FoF1),
		criticalValue(rec.FoF2),
		sunspot,
		rec.FileHash,
		string(annotationsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save scaled record: %w", err)
	}
	return nil
}

// GetScaled returns the record for a sounding path or ErrNotFound.
func (adb *ArchiveDB) GetScaled(ctx context.Context, soundingPath string) (*ScaledRecord, error) {
	query := selectScaled + ` WHERE sounding_path = ?`

	rec, err := scanScaled(adb.db.QueryRowContext(ctx, query, soundingPath))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scaled record: %w", err)
	}
	return rec, nil
}

// ListScaled returns the records of station observed in [from, to), oldest
// first. An empty station matches every station; a zero from or to leaves
// that side of the range open.
func (adb *ArchiveDB) ListScaled(ctx context.Context, station string, from, to time.Time) ([]*ScaledRecord, error) {
	query := selectScaled + ` WHERE 1=1`
	var args []any
	if station != "" {
		query += ` AND station = ?`
		args = append(args, station)
	}
	if !from.IsZero() {
		query += ` AND observed_at >= ?`
		args = append(args, from.UTC().Format(observedLayout))
	}
	if !to.IsZero() {
		query += ` AND observed_at < ?`
		args = append(args, to.UTC().Format(observedLayout))
	}
	query += ` ORDER BY observed_at ASC, id ASC`

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scaled records: %w", err)
	}
	defer rows.Close()

	var results []*ScaledRecord
	for rows.Next() {
		rec, err := scanScaled(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scaled record: %w", err)
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

// ListStations returns the distinct stations in the archive, sorted.
func (adb *ArchiveDB) ListStations(ctx context.Context) ([]string, error) {
	rows, err := adb.db.QueryContext(ctx, `SELECT DISTINCT station FROM scaled ORDER BY station`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	defer rows.Close()

	var stations []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

const selectScaled = `
	SELECT id, sounding_path, station, observed_at, fo_e, fo_f1, fo_f2, sunspot, file_hash, annotations_json, saved_at
	FROM scaled`

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanScaled(row rowScanner) (*ScaledRecord, error) {
	var (
		rec             ScaledRecord
		observed, saved string
		foE, foF1, foF2 sql.NullFloat64
		sunspot         sql.NullInt64
		hash            sql.NullString
		annotationsJSON string
	)
	if err := row.Scan(&rec.ID, &rec.SoundingPath, &rec.Station, &observed,
		&foE, &foF1, &foF2, &sunspot, &hash, &annotationsJSON, &saved); err != nil {
		return nil, err
	}

	rec.ObservedAt = parseTimestamp(observed)
	rec.SavedAt = parseTimestamp(saved)
	rec.FoE = criticalFromNull(foE)
	rec.FoF1 = criticalFromNull(foF1)
	rec.FoF2 = criticalFromNull(foF2)
	if sunspot.Valid {
		rec.Sunspot = int(sunspot.Int64)
		rec.SunspotKnown = true
	}
	rec.FileHash = hash.String

	rec.Annotations = model.NewAnnotations()
	if err := json.Unmarshal([]byte(annotationsJSON), rec.Annotations); err != nil {
		return nil, fmt.Errorf("failed to parse annotations: %w", err)
	}
	return &rec, nil
}

// criticalValue stores unset critical frequencies as NULL so that SQL
// aggregates skip them.
func criticalValue(v float64) sql.NullFloat64 {
	if model.IsCriticalUnset(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func criticalFromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return model.CriticalUnset
	}
	return v.Float64
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
