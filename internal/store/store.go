// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists paper records and their retrieved full text in
// SQLite. Full-text results are transient values; storing the rendered
// HTML on the paper row is what lets the surrounding application parse
// each article at most once.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hherb/bmfulltext/pkg/types"
)

// Store manages the papers SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path and ensures the schema
// exists.
func Open(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			doi TEXT UNIQUE,
			pmcid TEXT,
			pmid TEXT,
			title TEXT NOT NULL DEFAULT '',
			authors TEXT NOT NULL DEFAULT '[]',
			abstract TEXT NOT NULL DEFAULT '',
			fulltext_html TEXT NOT NULL DEFAULT '',
			fulltext_source TEXT NOT NULL DEFAULT '',
			pdf_path TEXT NOT NULL DEFAULT '',
			fetched_at TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_pmcid ON papers (pmcid)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_pmid ON papers (pmid)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertPaper inserts a paper or updates the existing row with the same
// DOI, returning the row id. Papers without a DOI always insert.
func (s *Store) UpsertPaper(p *types.Paper) (int64, error) {
	authors, err := json.Marshal(p.Authors)
	if err != nil {
		return 0, fmt.Errorf("marshaling authors: %w", err)
	}

	var doi any
	if p.DOI != "" {
		doi = p.DOI
	}

	res, err := s.db.Exec(`
		INSERT INTO papers (doi, pmcid, pmid, title, authors, abstract)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(doi) DO UPDATE SET
			pmcid = excluded.pmcid,
			pmid = excluded.pmid,
			title = excluded.title,
			authors = excluded.authors,
			abstract = excluded.abstract`,
		doi, p.PMCID, p.PMID, p.Title, string(authors), p.Abstract)
	if err != nil {
		return 0, fmt.Errorf("upserting paper: %w", err)
	}

	if p.DOI != "" {
		var id int64
		err := s.db.QueryRow(`SELECT id FROM papers WHERE doi = ?`, p.DOI).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("resolving paper id: %w", err)
		}
		return id, nil
	}
	return res.LastInsertId()
}

// SaveFullText stores the rendered full-text HTML and its source tier on
// a paper row.
func (s *Store) SaveFullText(id int64, html, source string) error {
	_, err := s.db.Exec(`
		UPDATE papers
		SET fulltext_html = ?, fulltext_source = ?, fetched_at = ?
		WHERE id = ?`,
		html, source, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("saving full text: %w", err)
	}
	return nil
}

// SavePDFPath records the local path of a cached PDF on a paper row.
func (s *Store) SavePDFPath(id int64, path string) error {
	_, err := s.db.Exec(`UPDATE papers SET pdf_path = ? WHERE id = ?`, path, id)
	if err != nil {
		return fmt.Errorf("saving pdf path: %w", err)
	}
	return nil
}

// GetPaper loads one paper by row id.
func (s *Store) GetPaper(id int64) (*types.Paper, error) {
	return s.scanPaper(s.db.QueryRow(`
		SELECT id, COALESCE(doi, ''), COALESCE(pmcid, ''), COALESCE(pmid, ''), title, authors, abstract,
		       fulltext_html, fulltext_source, pdf_path, fetched_at
		FROM papers WHERE id = ?`, id))
}

// GetPaperByDOI loads one paper by DOI.
func (s *Store) GetPaperByDOI(doi string) (*types.Paper, error) {
	return s.scanPaper(s.db.QueryRow(`
		SELECT id, COALESCE(doi, ''), COALESCE(pmcid, ''), COALESCE(pmid, ''), title, authors, abstract,
		       fulltext_html, fulltext_source, pdf_path, fetched_at
		FROM papers WHERE doi = ?`, doi))
}

func (s *Store) scanPaper(row *sql.Row) (*types.Paper, error) {
	var p types.Paper
	var authors, fetchedAt string
	err := row.Scan(&p.ID, &p.DOI, &p.PMCID, &p.PMID, &p.Title, &authors,
		&p.Abstract, &p.FullTextHTML, &p.FullTextSource, &p.PDFPath, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning paper: %w", err)
	}

	if authors != "" {
		if err := json.Unmarshal([]byte(authors), &p.Authors); err != nil {
			return nil, fmt.Errorf("unmarshaling authors: %w", err)
		}
	}
	if fetchedAt != "" {
		if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
			p.FetchedAt = t
		}
	}
	return &p, nil
}
