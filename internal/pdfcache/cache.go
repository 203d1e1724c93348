// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfcache persists downloaded PDF payloads keyed by article
// identifier. Content is validated against the PDF magic bytes on every
// save and every lookup; the cache never accepts or hands back bytes
// that fail that check, regardless of what content type the downloader
// claimed.
package pdfcache

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hherb/bmfulltext/pkg/types"
)

// ErrInvalidPDF marks a payload that does not begin with the PDF
// signature.
var ErrInvalidPDF = errors.New("content is not a valid PDF")

var pdfMagic = []byte("%PDF")

// Cache stores one file per identifier under a single directory. Writes
// are idempotent: concurrent saves of the same identifier write the same
// bytes, so last-writer-wins needs no locking.
type Cache struct {
	dir string
}

// New returns a cache rooted at cfg.Dir. The directory is created
// lazily on the first save.
func New(cfg types.CacheConfig) *Cache {
	return &Cache{dir: cfg.Dir}
}

// Save validates and persists a PDF payload, returning the stored path.
// Payloads without the %PDF signature are rejected with ErrInvalidPDF
// and nothing is written.
func (c *Cache) Save(data []byte, id string) (string, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", ErrInvalidPDF
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	dest := c.path(id)

	// Write to a temp file and rename, so a crashed save never leaves a
	// truncated PDF under the final name.
	tmp, err := os.CreateTemp(c.dir, ".cache-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing cache file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing cache file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming cache file: %w", err)
	}
	return dest, nil
}

// Get returns the path of a cached PDF and whether one exists. A file
// that no longer passes magic-byte validation is treated as absent.
func (c *Cache) Get(id string) (string, bool) {
	p := c.path(id)
	f, err := os.Open(p)
	if err != nil {
		return "", false
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return "", false
	}
	return p, true
}

// Delete removes a cached PDF. Deleting an absent entry is not an error.
func (c *Cache) Delete(id string) error {
	err := os.Remove(c.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Clear removes every cached PDF. The directory itself is kept.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// List returns the identifiers of all cached PDFs, sorted.
func (c *Cache) List() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".pdf" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".pdf"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (c *Cache) path(id string) string {
	return filepath.Join(c.dir, slug(id)+".pdf")
}

// slug maps an identifier (possibly a DOI with slashes) to a safe
// filename stem.
func slug(id string) string {
	return strings.NewReplacer("/", "-", ":", "-", "\\", "-", " ", "-").Replace(id)
}
