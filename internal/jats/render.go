// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"fmt"
	"html"
	"strings"

	"github.com/hherb/bmfulltext/pkg/types"
)

// renderArticle flattens a parsed article into display HTML. Titles,
// paragraphs and captions already carry escaped text with inline markup
// from the parse; plain model fields are escaped here.
func renderArticle(a *types.Article) string {
	var b strings.Builder

	b.WriteString(`<article class="fulltext">` + "\n")

	if a.Title != "" {
		b.WriteString("<h1>" + a.Title + "</h1>\n")
	}

	if len(a.Authors) > 0 {
		names := make([]string, 0, len(a.Authors))
		for _, au := range a.Authors {
			names = append(names, html.EscapeString(au.FullName()))
		}
		b.WriteString(`<p class="authors">` + strings.Join(names, ", ") + "</p>\n")
	}

	if line := citationLine(a); line != "" {
		b.WriteString(`<p class="citation">` + line + "</p>\n")
	}

	if len(a.Abstract) > 0 {
		b.WriteString(`<section class="abstract">` + "\n<h2>Abstract</h2>\n")
		for _, sec := range a.Abstract {
			if sec.Title != "" {
				b.WriteString("<h3>" + sec.Title + "</h3>\n")
			}
			for _, para := range strings.Split(sec.Content, "\n\n") {
				if para != "" {
					b.WriteString("<p>" + para + "</p>\n")
				}
			}
		}
		b.WriteString("</section>\n")
	}

	for _, sec := range a.Body {
		renderSection(&b, sec, 2)
	}

	for _, fig := range a.Figures {
		renderFigure(&b, fig)
	}

	for _, tbl := range a.Tables {
		renderTable(&b, tbl)
	}

	if len(a.References) > 0 {
		b.WriteString("<h2>References</h2>\n<ol class=\"references\">\n")
		for _, ref := range a.References {
			if ref.ID != "" {
				b.WriteString(`<li id="` + html.EscapeString(ref.ID) + `">`)
			} else {
				b.WriteString("<li>")
			}
			b.WriteString(html.EscapeString(ref.FormattedCitation()) + "</li>\n")
		}
		b.WriteString("</ol>\n")
	}

	b.WriteString("</article>\n")
	return b.String()
}

// citationLine assembles the journal line from whichever bibliographic
// fields are present.
func citationLine(a *types.Article) string {
	var parts []string
	if a.Journal != "" {
		parts = append(parts, html.EscapeString(a.Journal))
	}
	if a.Year != "" {
		parts = append(parts, html.EscapeString(a.Year))
	}
	if a.Volume != "" {
		loc := a.Volume
		if a.Issue != "" {
			loc += "(" + a.Issue + ")"
		}
		if a.Pages != "" {
			loc += ":" + a.Pages
		}
		parts = append(parts, html.EscapeString(loc))
	}
	if a.DOI != "" {
		parts = append(parts, "doi:"+html.EscapeString(a.DOI))
	}
	return strings.Join(parts, ". ")
}

// renderSection emits one body section. Heading level scales with tree
// depth and saturates at h6.
func renderSection(b *strings.Builder, sec types.BodySection, depth int) {
	if depth > 6 {
		depth = 6
	}
	if sec.Title != "" {
		fmt.Fprintf(b, "<h%d>%s</h%d>\n", depth, sec.Title, depth)
	}
	for _, para := range sec.Paragraphs {
		b.WriteString("<p>" + para + "</p>\n")
	}
	for _, child := range sec.Children {
		renderSection(b, child, depth+1)
	}
}

func renderFigure(b *strings.Builder, fig types.FigureInfo) {
	if fig.ID != "" {
		b.WriteString(`<figure id="` + html.EscapeString(fig.ID) + `">` + "\n")
	} else {
		b.WriteString("<figure>\n")
	}
	if fig.ImageURL != "" {
		b.WriteString(`<img src="` + html.EscapeString(fig.ImageURL) + `"/>` + "\n")
	}
	if fig.Label != "" || fig.Caption != "" {
		b.WriteString("<figcaption>")
		if fig.Label != "" {
			b.WriteString("<b>" + html.EscapeString(fig.Label) + "</b> ")
		}
		b.WriteString(fig.Caption + "</figcaption>\n")
	}
	b.WriteString("</figure>\n")
}

func renderTable(b *strings.Builder, tbl types.TableInfo) {
	if tbl.ID != "" {
		b.WriteString(`<div class="table-wrap" id="` + html.EscapeString(tbl.ID) + `">` + "\n")
	} else {
		b.WriteString(`<div class="table-wrap">` + "\n")
	}
	if tbl.Label != "" || tbl.Caption != "" {
		b.WriteString("<p>")
		if tbl.Label != "" {
			b.WriteString("<b>" + html.EscapeString(tbl.Label) + "</b> ")
		}
		b.WriteString(tbl.Caption + "</p>\n")
	}
	b.WriteString(tbl.HTML + "\n</div>\n")
}
