// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jats parses JATS/NLM full-text XML into the article model and
// renders it to display HTML. The parser is a single left-to-right pass
// over the token stream; no DOM is built. All mutable state (element
// stack, text accumulators, section builders) lives on the parser
// instance, so concurrent documents just use separate parsers.
package jats

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/hherb/bmfulltext/pkg/types"
)

// ErrMalformed marks a document that could not be tokenized at all.
// Missing optional content is never an error; it degrades to empty values.
var ErrMalformed = errors.New("malformed document")

// Parse parses a JATS document into an Article.
func Parse(data []byte) (*types.Article, error) {
	return newParser("").parse(data)
}

// RenderHTML parses a JATS document and renders it as a flat HTML string.
// pmcid, when known, is used to resolve figure graphics to Europe PMC
// image URLs; pass "" when the accession is not known up front.
func RenderHTML(data []byte, pmcid string) (string, error) {
	p := newParser(pmcid)
	article, err := p.parse(data)
	if err != nil {
		return "", err
	}
	return renderArticle(article), nil
}

// builderKind tags which dedicated builder currently consumes events.
type builderKind int

const (
	kindNone builderKind = iota
	kindFigure
	kindTable
	kindReference
)

// inlineTags maps JATS inline-style elements to the HTML markup they
// rewrite into inside marked text captures.
var inlineTags = map[string]string{
	"bold":      "b",
	"italic":    "i",
	"underline": "u",
	"sub":       "sub",
	"sup":       "sup",
	"sc":        "small",
	"monospace": "code",
}

// textCapture accumulates character data for one open leaf element.
// Marked captures rewrite inline-style tags into HTML and escape text;
// plain captures collect bare text for model fields.
type textCapture struct {
	elem  string
	plain bool
	b     strings.Builder
}

// authorBuilder accumulates one contributor plus the affiliation ids it
// references, resolved against the aff map when the front matter closes.
type authorBuilder struct {
	author  types.Author
	affRIDs []string
}

type parser struct {
	pmcid   string
	article *types.Article

	elements []string
	captures []*textCapture

	secStack []*sectionBuilder

	open builderKind
	fig  *figureBuilder
	tbl  *tableBuilder
	ref  *referenceBuilder

	authors   []*authorBuilder
	curAuthor *authorBuilder
	affByID   map[string]string
	curAffID  string

	pendingAbstractTitle string
	looseBodyParas       []string
	fpage, lpage         string

	// anchorOpen records, per open xref, whether an <a> tag was written
	// so the end event knows to close it.
	anchorOpen []bool

	sawElement bool
}

func newParser(pmcid string) *parser {
	return &parser{
		pmcid:   pmcid,
		article: &types.Article{},
		affByID: map[string]string{},
	}
}

func (p *parser) parse(data []byte) (*types.Article, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.sawElement = true
			p.startElement(t)
		case xml.CharData:
			p.charData(t)
		case xml.EndElement:
			p.endElement(t)
		}
	}

	if !p.sawElement {
		return nil, fmt.Errorf("%w: no XML content", ErrMalformed)
	}

	p.finalize()
	return p.article, nil
}

func (p *parser) finalize() {
	for _, ab := range p.authors {
		for _, rid := range ab.affRIDs {
			if txt := p.affByID[rid]; txt != "" {
				ab.author.Affiliations = append(ab.author.Affiliations, txt)
			}
		}
		p.article.Authors = append(p.article.Authors, ab.author)
	}

	if p.fpage != "" {
		p.article.Pages = p.fpage
		if p.lpage != "" {
			p.article.Pages += "-" + p.lpage
		}
	}

	if len(p.looseBodyParas) > 0 {
		loose := types.BodySection{Paragraphs: p.looseBodyParas}
		p.article.Body = append([]types.BodySection{loose}, p.article.Body...)
	}
}

// effectivePMCID prefers the accession supplied by the caller over one
// discovered in the document front matter.
func (p *parser) effectivePMCID() string {
	if p.pmcid != "" {
		return p.pmcid
	}
	return p.article.PMCID
}

// within reports whether an element with the given local name is
// currently open.
func (p *parser) within(name string) bool {
	for _, e := range p.elements {
		if e == name {
			return true
		}
	}
	return false
}

func (p *parser) pushCapture(elem string, plain bool) {
	p.captures = append(p.captures, &textCapture{elem: elem, plain: plain})
}

func (p *parser) topCapture() *textCapture {
	if len(p.captures) == 0 {
		return nil
	}
	return p.captures[len(p.captures)-1]
}

// popCapture pops the top capture if it was opened for elem, returning
// its whitespace-collapsed text. The second result is false when the top
// capture belongs to a different element.
func (p *parser) popCapture(elem string) (string, bool) {
	top := p.topCapture()
	if top == nil || top.elem != elem {
		return "", false
	}
	p.captures = p.captures[:len(p.captures)-1]
	return collapseSpace(top.b.String()), true
}

func (p *parser) charData(t xml.CharData) {
	switch p.open {
	case kindTable:
		p.tbl.charData(string(t))
		return
	case kindFigure:
		p.fig.charData(string(t))
		return
	case kindReference:
		p.ref.charData(string(t))
		return
	}

	top := p.topCapture()
	if top == nil {
		return
	}
	if top.plain {
		top.b.WriteString(string(t))
	} else {
		top.b.WriteString(html.EscapeString(string(t)))
	}
}

func (p *parser) startElement(t xml.StartElement) {
	p.elements = append(p.elements, t.Name.Local)

	switch p.open {
	case kindTable:
		p.tbl.startElement(t)
		return
	case kindFigure:
		p.fig.startElement(t)
		return
	case kindReference:
		p.ref.startElement(t)
		return
	}

	p.startDefault(t)
}

func (p *parser) startDefault(t xml.StartElement) {
	name := t.Name.Local

	// Inline-style tags rewrite into markup inside marked captures.
	if tag, ok := inlineTags[name]; ok {
		if top := p.topCapture(); top != nil && !top.plain {
			top.b.WriteString("<" + tag + ">")
		}
		return
	}

	switch name {
	case "sec":
		if p.within("abstract") || p.within("body") {
			p.secStack = append(p.secStack, &sectionBuilder{
				inAbstract: p.within("abstract"),
			})
		}

	case "title":
		if len(p.secStack) > 0 || p.within("abstract") {
			p.pushCapture(name, false)
		}

	case "p":
		if p.within("abstract") || p.within("body") {
			p.pushCapture(name, false)
		}

	case "article-title":
		if p.within("title-group") {
			p.pushCapture(name, false)
		}

	case "journal-title":
		if p.within("journal-meta") {
			p.pushCapture(name, true)
		}

	case "contrib":
		if attr(t, "contrib-type") == "author" || attr(t, "contrib-type") == "" {
			p.curAuthor = &authorBuilder{}
		}

	case "surname", "given-names":
		if p.curAuthor != nil {
			p.pushCapture(name, true)
		}

	case "aff":
		p.curAffID = attr(t, "id")
		p.pushCapture(name, true)

	case "label":
		// Drop affiliation labels so "1" does not prefix the text.
		if top := p.topCapture(); top != nil && top.elem == "aff" {
			p.pushCapture(name, true)
		}

	case "xref":
		rid := attr(t, "rid")
		if p.curAuthor != nil && attr(t, "ref-type") == "aff" {
			p.curAuthor.affRIDs = append(p.curAuthor.affRIDs, rid)
			p.anchorOpen = append(p.anchorOpen, false)
			return
		}
		if top := p.topCapture(); top != nil && !top.plain && rid != "" {
			top.b.WriteString(`<a href="#` + rid + `">`)
			p.anchorOpen = append(p.anchorOpen, true)
			return
		}
		p.anchorOpen = append(p.anchorOpen, false)

	case "article-id":
		if p.within("article-meta") {
			c := &textCapture{elem: name, plain: true}
			c.b.WriteString(attr(t, "pub-id-type") + "\x00")
			p.captures = append(p.captures, c)
		}

	case "volume", "issue", "fpage", "lpage", "year":
		if p.within("article-meta") {
			p.pushCapture(name, true)
		}

	case "break":
		if top := p.topCapture(); top != nil && !top.plain {
			top.b.WriteString("<br/>")
		}

	case "fig":
		p.open = kindFigure
		p.fig = newFigureBuilder(attr(t, "id"))

	case "table-wrap":
		p.open = kindTable
		p.tbl = newTableBuilder(attr(t, "id"))

	case "ref":
		if p.within("ref-list") {
			p.open = kindReference
			p.ref = newReferenceBuilder(attr(t, "id"))
		}
	}
}

func (p *parser) endElement(t xml.EndElement) {
	if len(p.elements) > 0 {
		p.elements = p.elements[:len(p.elements)-1]
	}
	name := t.Name.Local

	switch p.open {
	case kindTable:
		if name == "table-wrap" {
			p.article.Tables = append(p.article.Tables, p.tbl.finalize())
			p.tbl = nil
			p.open = kindNone
			return
		}
		p.tbl.endElement(name)
		return
	case kindFigure:
		if name == "fig" {
			p.article.Figures = append(p.article.Figures, p.fig.finalize(p.effectivePMCID()))
			p.fig = nil
			p.open = kindNone
			return
		}
		p.fig.endElement(name)
		return
	case kindReference:
		if name == "ref" {
			p.article.References = append(p.article.References, p.ref.finalize())
			p.ref = nil
			p.open = kindNone
			return
		}
		p.ref.endElement(name)
		return
	}

	p.endDefault(name)
}

func (p *parser) endDefault(name string) {
	if tag, ok := inlineTags[name]; ok {
		if top := p.topCapture(); top != nil && !top.plain {
			top.b.WriteString("</" + tag + ">")
		}
		return
	}

	switch name {
	case "sec":
		if n := len(p.secStack); n > 0 {
			sb := p.secStack[n-1]
			p.secStack = p.secStack[:n-1]
			p.closeSection(sb)
		}

	case "title":
		if text, ok := p.popCapture(name); ok {
			switch {
			case len(p.secStack) > 0:
				top := p.secStack[len(p.secStack)-1]
				if top.title == "" {
					top.title = text
				}
			case p.within("abstract"):
				p.pendingAbstractTitle = text
			}
		}

	case "p":
		if text, ok := p.popCapture(name); ok && text != "" {
			switch {
			case len(p.secStack) > 0:
				top := p.secStack[len(p.secStack)-1]
				top.paragraphs = append(top.paragraphs, text)
			case p.within("abstract"):
				p.article.Abstract = append(p.article.Abstract, types.AbstractSection{
					Title:   p.pendingAbstractTitle,
					Content: text,
				})
				p.pendingAbstractTitle = ""
			case p.within("body"):
				p.looseBodyParas = append(p.looseBodyParas, text)
			}
		}

	case "article-title":
		if text, ok := p.popCapture(name); ok && p.article.Title == "" {
			p.article.Title = text
		}

	case "journal-title":
		if text, ok := p.popCapture(name); ok && p.article.Journal == "" {
			p.article.Journal = text
		}

	case "surname":
		if text, ok := p.popCapture(name); ok && p.curAuthor != nil {
			p.curAuthor.author.Surname = text
		}

	case "given-names":
		if text, ok := p.popCapture(name); ok && p.curAuthor != nil {
			p.curAuthor.author.GivenNames = text
		}

	case "contrib":
		if p.curAuthor != nil {
			if p.curAuthor.author.Surname != "" {
				p.authors = append(p.authors, p.curAuthor)
			}
			p.curAuthor = nil
		}

	case "aff":
		if text, ok := p.popCapture(name); ok && text != "" {
			switch {
			case p.curAuthor != nil:
				p.curAuthor.author.Affiliations = append(p.curAuthor.author.Affiliations, text)
			case p.curAffID != "":
				p.affByID[p.curAffID] = text
			}
		}
		p.curAffID = ""

	case "label":
		p.popCapture(name)

	case "xref":
		if n := len(p.anchorOpen); n > 0 {
			wrote := p.anchorOpen[n-1]
			p.anchorOpen = p.anchorOpen[:n-1]
			if wrote {
				if top := p.topCapture(); top != nil && !top.plain {
					top.b.WriteString("</a>")
				}
			}
		}

	case "article-id":
		if text, ok := p.popCapture(name); ok {
			p.assignArticleID(text)
		}

	case "volume":
		if text, ok := p.popCapture(name); ok && p.article.Volume == "" {
			p.article.Volume = text
		}

	case "issue":
		if text, ok := p.popCapture(name); ok && p.article.Issue == "" {
			p.article.Issue = text
		}

	case "year":
		if text, ok := p.popCapture(name); ok && p.article.Year == "" {
			p.article.Year = text
		}

	case "fpage":
		if text, ok := p.popCapture(name); ok && p.fpage == "" {
			p.fpage = text
		}

	case "lpage":
		if text, ok := p.popCapture(name); ok && p.lpage == "" {
			p.lpage = text
		}
	}
}

// closeSection appends a finished section builder to its parent, or to
// the article's abstract/body list when it was a top-level section.
func (p *parser) closeSection(sb *sectionBuilder) {
	if sb.inAbstract {
		p.article.Abstract = append(p.article.Abstract, types.AbstractSection{
			Title:   sb.title,
			Content: strings.Join(sb.paragraphs, "\n\n"),
		})
		return
	}

	sec := types.BodySection{
		Title:      sb.title,
		Paragraphs: sb.paragraphs,
		Children:   sb.children,
	}
	if n := len(p.secStack); n > 0 {
		parent := p.secStack[n-1]
		parent.children = append(parent.children, sec)
		return
	}
	p.article.Body = append(p.article.Body, sec)
}

// assignArticleID routes an <article-id> value by the pub-id-type that
// was smuggled ahead of the text with a NUL separator.
func (p *parser) assignArticleID(text string) {
	idType, value, ok := strings.Cut(text, "\x00")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	switch idType {
	case "doi":
		p.article.DOI = value
	case "pmid":
		p.article.PMID = value
	case "pmc", "pmcid":
		if value != "" && !strings.HasPrefix(value, "PMC") {
			value = "PMC" + value
		}
		p.article.PMCID = value
	}
}

// sectionBuilder accumulates one <sec> while it is open. Closing the
// element finalizes it into an immutable model value.
type sectionBuilder struct {
	inAbstract bool
	title      string
	paragraphs []string
	children   []types.BodySection
}

// attr returns the value of the named attribute, or "".
func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// collapseSpace trims and collapses whitespace runs to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
