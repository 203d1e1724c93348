// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"encoding/xml"
	"html"
	"strings"

	"github.com/hherb/bmfulltext/pkg/types"
)

// tableBuilder consumes every event between <table-wrap> and its close
// and renders the table content to a flat HTML fragment. Only the row
// and cell structure is kept; colspan/rowspan attributes pass through
// verbatim. No structural table model is built.
type tableBuilder struct {
	info types.TableInfo

	mode     tableMode
	label    strings.Builder
	caption  strings.Builder
	html     strings.Builder
	inTable  bool
	inCell   bool
	captionP int
}

type tableMode int

const (
	tableModeNone tableMode = iota
	tableModeLabel
	tableModeCaption
)

// structural table elements emitted as-is (cells handled separately for
// their attributes).
var tableStructTags = map[string]bool{
	"thead": true,
	"tbody": true,
	"tfoot": true,
	"tr":    true,
}

func newTableBuilder(id string) *tableBuilder {
	return &tableBuilder{info: types.TableInfo{ID: id}}
}

func (b *tableBuilder) startElement(t xml.StartElement) {
	name := t.Name.Local

	if b.inTable {
		switch {
		case tableStructTags[name]:
			b.html.WriteString("<" + name + ">")
		case name == "th" || name == "td":
			b.html.WriteString("<" + name)
			if v := attr(t, "colspan"); v != "" {
				b.html.WriteString(` colspan="` + html.EscapeString(v) + `"`)
			}
			if v := attr(t, "rowspan"); v != "" {
				b.html.WriteString(` rowspan="` + html.EscapeString(v) + `"`)
			}
			b.html.WriteString(">")
			b.inCell = true
		case name == "break":
			if b.inCell {
				b.html.WriteString("<br/>")
			}
		default:
			if tag, ok := inlineTags[name]; ok && b.inCell {
				b.html.WriteString("<" + tag + ">")
			}
		}
		return
	}

	switch name {
	case "label":
		b.mode = tableModeLabel
	case "caption":
		b.mode = tableModeCaption
		b.captionP = 0
	case "p", "title":
		if b.mode == tableModeCaption {
			if b.captionP > 0 {
				b.caption.WriteString(" ")
			}
			b.captionP++
		}
	case "table":
		b.mode = tableModeNone
		b.inTable = true
		b.html.WriteString("<table>")
	default:
		if tag, ok := inlineTags[name]; ok && b.mode == tableModeCaption {
			b.caption.WriteString("<" + tag + ">")
		}
	}
}

func (b *tableBuilder) charData(text string) {
	switch {
	case b.inCell:
		b.html.WriteString(html.EscapeString(text))
	case b.mode == tableModeLabel:
		b.label.WriteString(text)
	case b.mode == tableModeCaption:
		b.caption.WriteString(html.EscapeString(text))
	}
}

func (b *tableBuilder) endElement(name string) {
	if b.inTable {
		switch {
		case tableStructTags[name]:
			b.html.WriteString("</" + name + ">")
		case name == "th" || name == "td":
			b.html.WriteString("</" + name + ">")
			b.inCell = false
		case name == "table":
			b.html.WriteString("</table>")
			b.inTable = false
		default:
			if tag, ok := inlineTags[name]; ok && b.inCell {
				b.html.WriteString("</" + tag + ">")
			}
		}
		return
	}

	switch name {
	case "label":
		if b.mode == tableModeLabel {
			b.mode = tableModeNone
		}
	case "caption":
		if b.mode == tableModeCaption {
			b.mode = tableModeNone
		}
	default:
		if tag, ok := inlineTags[name]; ok && b.mode == tableModeCaption {
			b.caption.WriteString("</" + tag + ">")
		}
	}
}

func (b *tableBuilder) finalize() types.TableInfo {
	b.info.Label = collapseSpace(b.label.String())
	b.info.Caption = collapseSpace(b.caption.String())
	b.info.HTML = b.html.String()
	return b.info
}
