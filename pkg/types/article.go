// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the value types shared across the full-text core:
// the parsed article model, the tiered retrieval result, and configuration.
package types

import "strings"

// Author is one article author as it appears in the source document.
type Author struct {
	// Surname is the family name. Required; an author without a surname
	// is dropped during parsing.
	Surname string `json:"surname" yaml:"surname"`

	// GivenNames holds the given names, possibly abbreviated ("J A").
	GivenNames string `json:"given_names,omitempty" yaml:"given_names,omitempty"`

	// Affiliations lists affiliation strings in document order.
	Affiliations []string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`
}

// FullName returns "given surname", or the surname alone when no given
// names are present.
func (a Author) FullName() string {
	if a.GivenNames == "" {
		return a.Surname
	}
	return a.GivenNames + " " + a.Surname
}

// AbstractSection is one labelled portion of a structured abstract
// (e.g. Background, Methods). Content is flat marked-up text.
type AbstractSection struct {
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Content string `json:"content" yaml:"content"`
}

// BodySection is a section of the article body. Sections nest to
// unbounded depth; the tree is immutable once the parse completes.
type BodySection struct {
	Title      string        `json:"title,omitempty" yaml:"title,omitempty"`
	Paragraphs []string      `json:"paragraphs,omitempty" yaml:"paragraphs,omitempty"`
	Children   []BodySection `json:"children,omitempty" yaml:"children,omitempty"`
}

// FigureInfo describes a figure: identity, caption, and a resolved image
// URL when the source graphic could be located.
type FigureInfo struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Caption  string `json:"caption,omitempty" yaml:"caption,omitempty"`
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// TableInfo describes a table. The table content is kept as a
// pre-rendered HTML fragment; source layouts vary too much for a
// structural model to pay off.
type TableInfo struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`
	HTML    string `json:"html" yaml:"html"`
}

// ReferenceInfo is one bibliography entry. Either the structured fields
// or RawCitation carry the content, never both.
type ReferenceInfo struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	RawCitation string `json:"raw_citation,omitempty" yaml:"raw_citation,omitempty"`

	Authors   []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Title     string   `json:"title,omitempty" yaml:"title,omitempty"`
	Source    string   `json:"source,omitempty" yaml:"source,omitempty"`
	Year      string   `json:"year,omitempty" yaml:"year,omitempty"`
	Volume    string   `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue     string   `json:"issue,omitempty" yaml:"issue,omitempty"`
	FirstPage string   `json:"first_page,omitempty" yaml:"first_page,omitempty"`
	LastPage  string   `json:"last_page,omitempty" yaml:"last_page,omitempty"`
	DOI       string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID      string   `json:"pmid,omitempty" yaml:"pmid,omitempty"`
}

// hasStructuredFields reports whether any structured citation field was
// populated during parsing.
func (r ReferenceInfo) hasStructuredFields() bool {
	return len(r.Authors) > 0 || r.Title != "" || r.Source != "" ||
		r.Year != "" || r.Volume != "" || r.FirstPage != "" || r.DOI != ""
}

// FormattedCitation assembles a display citation from the structured
// fields, joined with ". ". Author lists longer than three abbreviate to
// "first, second, et al.". When no structured field is populated, the raw
// citation text is returned verbatim.
func (r ReferenceInfo) FormattedCitation() string {
	if !r.hasStructuredFields() {
		return r.RawCitation
	}

	var parts []string

	switch n := len(r.Authors); {
	case n > 3:
		parts = append(parts, r.Authors[0]+", "+r.Authors[1]+", et al.")
	case n > 0:
		parts = append(parts, strings.Join(r.Authors, ", "))
	}

	if r.Title != "" {
		parts = append(parts, r.Title)
	}
	if r.Source != "" {
		parts = append(parts, r.Source)
	}
	if r.Year != "" {
		parts = append(parts, "("+r.Year+")")
	}

	if r.Volume != "" {
		loc := r.Volume
		if r.Issue != "" {
			loc += "(" + r.Issue + ")"
		}
		if r.FirstPage != "" {
			loc += ":" + r.FirstPage
			if r.LastPage != "" {
				loc += "-" + r.LastPage
			}
		}
		parts = append(parts, loc)
	}

	if r.DOI != "" {
		parts = append(parts, "doi:"+r.DOI)
	}

	return strings.Join(parts, ". ")
}

// Article is the aggregate root produced by one successful parse. It is
// constructed once and never mutated afterwards; the caller that
// requested the parse owns it.
type Article struct {
	Title   string   `json:"title" yaml:"title"`
	Authors []Author `json:"authors,omitempty" yaml:"authors,omitempty"`

	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
	Volume  string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue   string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages   string `json:"pages,omitempty" yaml:"pages,omitempty"`
	Year    string `json:"year,omitempty" yaml:"year,omitempty"`

	DOI   string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMCID string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`
	PMID  string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	Abstract   []AbstractSection `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Body       []BodySection     `json:"body,omitempty" yaml:"body,omitempty"`
	Figures    []FigureInfo      `json:"figures,omitempty" yaml:"figures,omitempty"`
	Tables     []TableInfo       `json:"tables,omitempty" yaml:"tables,omitempty"`
	References []ReferenceInfo   `json:"references,omitempty" yaml:"references,omitempty"`
}
