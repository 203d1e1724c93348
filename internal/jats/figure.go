// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"encoding/xml"
	"html"
	"path"
	"strings"

	"github.com/hherb/bmfulltext/pkg/types"
)

// europePMCImageBase is the URL stem figure graphics resolve against
// when the article's PMC accession is known.
const europePMCImageBase = "https://europepmc.org/articles/"

// figureBuilder consumes every event between <fig> and its close.
type figureBuilder struct {
	info    types.FigureInfo
	graphic string

	mode     figMode
	label    strings.Builder
	caption  strings.Builder
	captionP int
}

type figMode int

const (
	figModeNone figMode = iota
	figModeLabel
	figModeCaption
)

func newFigureBuilder(id string) *figureBuilder {
	return &figureBuilder{info: types.FigureInfo{ID: id}}
}

func (b *figureBuilder) startElement(t xml.StartElement) {
	switch name := t.Name.Local; name {
	case "label":
		if b.mode == figModeNone {
			b.mode = figModeLabel
		}
	case "caption":
		b.mode = figModeCaption
		b.captionP = 0
	case "p", "title":
		if b.mode == figModeCaption {
			if b.captionP > 0 {
				b.caption.WriteString(" ")
			}
			b.captionP++
		}
	case "graphic", "inline-graphic":
		if b.graphic == "" {
			b.graphic = attr(t, "href")
		}
	default:
		if tag, ok := inlineTags[name]; ok && b.mode == figModeCaption {
			b.caption.WriteString("<" + tag + ">")
		}
	}
}

func (b *figureBuilder) charData(text string) {
	switch b.mode {
	case figModeLabel:
		b.label.WriteString(text)
	case figModeCaption:
		b.caption.WriteString(html.EscapeString(text))
	}
}

func (b *figureBuilder) endElement(name string) {
	switch name {
	case "label":
		if b.mode == figModeLabel {
			b.mode = figModeNone
		}
	case "caption":
		if b.mode == figModeCaption {
			b.mode = figModeNone
		}
	default:
		if tag, ok := inlineTags[name]; ok && b.mode == figModeCaption {
			b.caption.WriteString("</" + tag + ">")
		}
	}
}

// finalize builds the immutable FigureInfo. With a known PMC accession
// the graphic reference resolves to the Europe PMC image endpoint; ".jpg"
// is appended only when the reference carries no extension already.
func (b *figureBuilder) finalize(pmcid string) types.FigureInfo {
	b.info.Label = collapseSpace(b.label.String())
	b.info.Caption = collapseSpace(b.caption.String())

	if pmcid != "" && b.graphic != "" {
		graphic := b.graphic
		if path.Ext(graphic) == "" {
			graphic += ".jpg"
		}
		b.info.ImageURL = europePMCImageBase + pmcid + "/bin/" + graphic
	}
	return b.info
}
