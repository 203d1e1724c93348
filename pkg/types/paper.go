// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Paper is the stored record a full-text fetch attaches to. It mirrors
// the paper rows the surrounding pipeline maintains: identifiers and
// display metadata, plus the retrieved full-text payload.
type Paper struct {
	// ID is the store's row identifier; zero before the first upsert.
	ID int64 `json:"id" yaml:"id"`

	// DOI is the canonical article identifier ("10.1101/2024.01.01").
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PMCID is the PubMed Central accession ("PMC1234567").
	PMCID string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`

	// PMID is the PubMed identifier.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the plain abstract text.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// FullTextHTML is the rendered structured full text, stored for
	// reuse so the article is parsed at most once.
	FullTextHTML string `json:"fulltext_html,omitempty" yaml:"fulltext_html,omitempty"`

	// FullTextSource names the tier that produced the full text
	// (e.g. "europepmc", "unpaywall").
	FullTextSource string `json:"fulltext_source,omitempty" yaml:"fulltext_source,omitempty"`

	// PDFPath is the local path of a cached PDF, when one was saved.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	// FetchedAt records when the full text was last retrieved.
	FetchedAt time.Time `json:"fetched_at,omitempty" yaml:"fetched_at,omitempty"`
}
