// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists assembled report rows in a SQLite database and
// answers full-text queries over concept names and labels across filings.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fitsolutions/edgar-engine/pkg/types"
)

const dbFile = "filings.db"

// Store manages the report row SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the database at cfg.DBDir/filings.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := cfg.DBDir
	if dbDir == "" {
		dbDir = "index"
	}
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS filings (
			id TEXT PRIMARY KEY,
			ticker TEXT,
			cik TEXT,
			report_type TEXT,
			report_date TEXT,
			period_end TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS rows (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			filing_id TEXT NOT NULL REFERENCES filings(id),
			role TEXT,
			depth INTEGER,
			concept TEXT NOT NULL,
			label TEXT,
			dimension TEXT,
			member TEXT,
			period TEXT,
			value TEXT,
			decimals TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_filing_id ON rows(filing_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_concept ON rows(concept)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over labels and concepts, with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='rows_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE rows_fts USING fts5(label, concept, content=rows, content_rowid=rowid)`,
			`CREATE TRIGGER rows_ai AFTER INSERT ON rows BEGIN
				INSERT INTO rows_fts(rowid, label, concept) VALUES (new.rowid, new.label, new.concept);
			END`,
			`CREATE TRIGGER rows_ad AFTER DELETE ON rows BEGIN
				INSERT INTO rows_fts(rows_fts, rowid, label, concept) VALUES('delete', old.rowid, old.label, old.concept);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// filingKey identifies a filing in the database: the accession number
// when known, the instance path otherwise (local filings without a
// metadata record).
func filingKey(f types.Filing) string {
	if f.AccessionNumber != "" {
		return f.AccessionNumber
	}
	return f.InstancePath
}

// InsertResult stores one filing's assembled rows, replacing any rows
// from a previous load of the same filing.
func (s *Store) InsertResult(ctx context.Context, res types.FilingResult) error {
	if res.Failed() {
		return fmt.Errorf("refusing to store failed filing %s: %s", filingKey(res.Filing), res.Err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	key := filingKey(res.Filing)

	if _, err := tx.ExecContext(ctx, `DELETE FROM rows WHERE filing_id = ?`, key); err != nil {
		return fmt.Errorf("deleting old rows: %w", err)
	}

	periodEnd := ""
	if !res.Filing.PeriodEnd.IsZero() {
		periodEnd = res.Filing.PeriodEnd.Format("2006-01-02")
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO filings (id, ticker, cik, report_type, report_date, period_end)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			ticker=excluded.ticker, cik=excluded.cik, report_type=excluded.report_type,
			report_date=excluded.report_date, period_end=excluded.period_end`,
		key, res.Filing.Ticker, res.Filing.CIK, string(res.Filing.ReportType),
		res.ReportDate.Format("2006-01-02"), periodEnd,
	)
	if err != nil {
		return fmt.Errorf("upserting filing: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rows (filing_id, role, depth, concept, label, dimension, member, period, value, decimals)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	insertRow := func(roleName string, row types.ReportRow) error {
		for _, pv := range row.Values {
			period := ""
			if !pv.Period.End.IsZero() {
				period = pv.Period.Key()
			}
			_, err := stmt.ExecContext(ctx,
				key, roleName, row.Depth, row.Concept, row.Label,
				row.Dimension, row.Member, period, pv.Value, row.Decimals,
			)
			if err != nil {
				return fmt.Errorf("inserting row %s: %w", row.Concept, err)
			}
		}
		return nil
	}

	for _, rr := range res.Reports {
		for _, row := range rr.Rows {
			if err := insertRow(rr.Name, row); err != nil {
				return err
			}
		}
	}
	for _, row := range res.Unclassified {
		if err := insertRow("unclassified", row); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// QueryOptions holds parameters for row queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over labels and concepts.
	Query string

	// Ticker, Concept, and Role are exact-match filters.
	Ticker  string
	Concept string
	Role    string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Ticker == "" && q.Concept == "" && q.Role == ""
}

// QueryResult is one stored row with its filing identity.
type QueryResult struct {
	Ticker     string `json:"ticker"`
	FilingID   string `json:"filing_id"`
	ReportType string `json:"report_type"`
	ReportDate string `json:"report_date"`
	Role       string `json:"role"`
	Depth      int    `json:"depth"`
	Concept    string `json:"concept"`
	Label      string `json:"label"`
	Dimension  string `json:"dimension,omitempty"`
	Member     string `json:"member,omitempty"`
	Period     string `json:"period"`
	Value      string `json:"value"`
	Decimals   string `json:"decimals,omitempty"`
}

// Query searches stored rows. Full-text terms and structured filters
// combine with AND semantics. Results order by report date descending,
// then concept.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	var (
		conds []string
		args  []any
	)

	base := `SELECT f.ticker, f.id, f.report_type, f.report_date,
			r.role, r.depth, r.concept, r.label, r.dimension, r.member, r.period, r.value, r.decimals
		 FROM rows r JOIN filings f ON f.id = r.filing_id`

	if opts.Query != "" {
		base += ` JOIN rows_fts ON rows_fts.rowid = r.rowid`
		conds = append(conds, `rows_fts MATCH ?`)
		args = append(args, opts.Query)
	}
	if opts.Ticker != "" {
		conds = append(conds, `f.ticker = ?`)
		args = append(args, strings.ToUpper(opts.Ticker))
	}
	if opts.Concept != "" {
		conds = append(conds, `r.concept = ?`)
		args = append(args, opts.Concept)
	}
	if opts.Role != "" {
		conds = append(conds, `r.role = ?`)
		args = append(args, opts.Role)
	}

	if len(conds) > 0 {
		base += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	base += ` ORDER BY f.report_date DESC, r.concept, r.period DESC LIMIT ?`

	max := opts.MaxResults
	if max <= 0 {
		max = s.maxResults
	}
	args = append(args, max)

	dbRows, err := s.db.QueryContext(ctx, base, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}
	defer dbRows.Close()

	var results []QueryResult
	for dbRows.Next() {
		var r QueryResult
		if err := dbRows.Scan(
			&r.Ticker, &r.FilingID, &r.ReportType, &r.ReportDate,
			&r.Role, &r.Depth, &r.Concept, &r.Label, &r.Dimension, &r.Member,
			&r.Period, &r.Value, &r.Decimals,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}
	return results, dbRows.Err()
}
