// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"encoding/xml"
	"strings"

	"github.com/hherb/bmfulltext/pkg/types"
)

// referenceBuilder consumes every event between <ref> and its close.
// Structured citation fields are collected individually; the full text
// of the citation element accumulates in parallel so that references
// with no structured markup still yield a usable raw citation.
type referenceBuilder struct {
	info types.ReferenceInfo

	inCitation bool
	raw        strings.Builder

	field    string
	fieldBuf strings.Builder
	pubID    string

	surname, given string
	skipNames      bool
}

// structured citation fields captured by element name.
var refFields = map[string]bool{
	"label":         true,
	"article-title": true,
	"chapter-title": true,
	"source":        true,
	"year":          true,
	"volume":        true,
	"issue":         true,
	"fpage":         true,
	"lpage":         true,
	"pub-id":        true,
	"surname":       true,
	"given-names":   true,
	"string-name":   true,
}

func newReferenceBuilder(id string) *referenceBuilder {
	return &referenceBuilder{info: types.ReferenceInfo{ID: id}}
}

func (b *referenceBuilder) startElement(t xml.StartElement) {
	switch name := t.Name.Local; name {
	case "element-citation", "mixed-citation", "citation", "nlm-citation":
		b.inCitation = true
	case "person-group":
		// Only author groups contribute to the citation's author list.
		b.skipNames = attr(t, "person-group-type") != "" &&
			attr(t, "person-group-type") != "author"
	case "pub-id":
		b.pubID = attr(t, "pub-id-type")
		b.beginField(name)
	default:
		if refFields[name] {
			b.beginField(name)
		}
	}
}

func (b *referenceBuilder) beginField(name string) {
	b.field = name
	b.fieldBuf.Reset()
}

func (b *referenceBuilder) charData(text string) {
	if b.inCitation {
		b.raw.WriteString(text)
	}
	if b.field != "" {
		b.fieldBuf.WriteString(text)
	}
}

func (b *referenceBuilder) endElement(name string) {
	switch name {
	case "element-citation", "mixed-citation", "citation", "nlm-citation":
		b.inCitation = false
		return
	case "person-group":
		b.skipNames = false
		return
	case "name":
		if !b.skipNames && b.surname != "" {
			b.info.Authors = append(b.info.Authors,
				strings.TrimSpace(b.surname+" "+b.given))
		}
		b.surname, b.given = "", ""
		return
	}

	// A string-name with nested surname/given-names children behaves
	// like <name>: flush the accumulated parts.
	if name == "string-name" && b.field != name {
		if !b.skipNames && b.surname != "" {
			b.info.Authors = append(b.info.Authors,
				strings.TrimSpace(b.surname+" "+b.given))
		}
		b.surname, b.given = "", ""
		return
	}

	if !refFields[name] || b.field != name {
		return
	}
	text := collapseSpace(b.fieldBuf.String())
	b.field = ""

	switch name {
	case "label":
		if !b.inCitation && b.info.Label == "" {
			b.info.Label = text
		}
	case "surname":
		b.surname = text
	case "given-names":
		b.given = text
	case "string-name":
		if !b.skipNames && text != "" {
			b.info.Authors = append(b.info.Authors, text)
		}
	case "article-title", "chapter-title":
		if b.info.Title == "" {
			b.info.Title = text
		}
	case "source":
		b.info.Source = text
	case "year":
		b.info.Year = text
	case "volume":
		b.info.Volume = text
	case "issue":
		b.info.Issue = text
	case "fpage":
		b.info.FirstPage = text
	case "lpage":
		b.info.LastPage = text
	case "pub-id":
		switch b.pubID {
		case "doi":
			b.info.DOI = text
		case "pmid":
			b.info.PMID = text
		}
		b.pubID = ""
	}
}

// finalize keeps either the structured fields or the raw citation text,
// never both, so the formatted citation has a single source of truth.
func (b *referenceBuilder) finalize() types.ReferenceInfo {
	if !b.hasStructuredFields() {
		b.info.RawCitation = collapseSpace(b.raw.String())
	}
	return b.info
}

func (b *referenceBuilder) hasStructuredFields() bool {
	return len(b.info.Authors) > 0 || b.info.Title != "" || b.info.Source != "" ||
		b.info.Year != "" || b.info.Volume != "" || b.info.FirstPage != "" ||
		b.info.DOI != ""
}
