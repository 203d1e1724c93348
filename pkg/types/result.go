// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FullTextResult is the outcome of a tiered full-text fetch. Exactly one
// concrete variant is returned per fetch; the sum type replaces an
// earlier flat record whose optional fields left the "one populated"
// rule to convention.
type FullTextResult interface {
	// Source names the tier that produced the result, for logging and
	// for persistence alongside the payload.
	Source() string
}

// StructuredText carries rendered HTML obtained from structured JATS XML.
type StructuredText struct {
	HTML string `json:"html" yaml:"html"`
}

func (StructuredText) Source() string { return "europepmc" }

// OpenAccessPDF carries the URL of a freely accessible PDF located via
// the open-access lookup.
type OpenAccessPDF struct {
	URL string `json:"url" yaml:"url"`
}

func (OpenAccessPDF) Source() string { return "unpaywall" }

// PublisherRedirect carries the canonical DOI-resolver URL. The URL is
// never fetched here; the caller opens it externally.
type PublisherRedirect struct {
	URL string `json:"url" yaml:"url"`
}

func (PublisherRedirect) Source() string { return "doi" }

// PubMedRedirect carries the PubMed article-page URL used as the last
// resort when no DOI is known. It is a distinct variant so callers can
// tell it apart from a publisher redirect.
type PubMedRedirect struct {
	URL string `json:"url" yaml:"url"`
}

func (PubMedRedirect) Source() string { return "pubmed" }

// CachedFile carries the local path of a previously cached PDF.
type CachedFile struct {
	Path string `json:"path" yaml:"path"`
}

func (CachedFile) Source() string { return "cache" }
