// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hherb/bmfulltext/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "papers.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndGetPaper(t *testing.T) {
	s := newTestStore(t)

	id, err := s.UpsertPaper(&types.Paper{
		DOI:      "10.1/a",
		PMCID:    "PMC1",
		PMID:     "11",
		Title:    "First title",
		Authors:  []string{"Jane Doe", "Richard Roe"},
		Abstract: "An abstract.",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	p, err := s.GetPaper(id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "10.1/a", p.DOI)
	assert.Equal(t, "PMC1", p.PMCID)
	assert.Equal(t, "11", p.PMID)
	assert.Equal(t, "First title", p.Title)
	assert.Equal(t, []string{"Jane Doe", "Richard Roe"}, p.Authors)
	assert.Equal(t, "An abstract.", p.Abstract)
	assert.True(t, p.FetchedAt.IsZero())
}

func TestUpsertUpdatesByDOI(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.UpsertPaper(&types.Paper{DOI: "10.1/a", Title: "Old"})
	require.NoError(t, err)

	id2, err := s.UpsertPaper(&types.Paper{DOI: "10.1/a", Title: "New", PMID: "42"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	p, err := s.GetPaperByDOI("10.1/a")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "New", p.Title)
	assert.Equal(t, "42", p.PMID)
}

func TestUpsertWithoutDOIAlwaysInserts(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.UpsertPaper(&types.Paper{Title: "One"})
	require.NoError(t, err)
	id2, err := s.UpsertPaper(&types.Paper{Title: "Two"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestSaveFullText(t *testing.T) {
	s := newTestStore(t)

	id, err := s.UpsertPaper(&types.Paper{DOI: "10.1/a"})
	require.NoError(t, err)

	require.NoError(t, s.SaveFullText(id, "<article>body</article>", "europepmc"))

	p, err := s.GetPaper(id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "<article>body</article>", p.FullTextHTML)
	assert.Equal(t, "europepmc", p.FullTextSource)
	assert.False(t, p.FetchedAt.IsZero())
}

func TestSavePDFPath(t *testing.T) {
	s := newTestStore(t)

	id, err := s.UpsertPaper(&types.Paper{DOI: "10.1/a"})
	require.NoError(t, err)

	require.NoError(t, s.SavePDFPath(id, "/tmp/pdfs/a.pdf"))

	p, err := s.GetPaper(id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "/tmp/pdfs/a.pdf", p.PDFPath)
}

func TestGetPaperMissing(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetPaper(9999)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = s.GetPaperByDOI("10.9/none")
	require.NoError(t, err)
	assert.Nil(t, p)
}
