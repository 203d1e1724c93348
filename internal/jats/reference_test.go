// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRefs(t *testing.T, refs string) []byte {
	t.Helper()
	return []byte(`<article><back><ref-list>` + refs + `</ref-list></back></article>`)
}

func TestReferenceStructuredFields(t *testing.T) {
	doc := parseRefs(t, `<ref id="r1"><element-citation>
		<person-group person-group-type="author">
			<name><surname>Smith</surname><given-names>J</given-names></name>
		</person-group>
		<article-title>A title</article-title>
		<source>J Src</source>
		<year>2018</year>
		<volume>3</volume>
		<issue>1</issue>
		<fpage>5</fpage>
		<lpage>15</lpage>
		<pub-id pub-id-type="doi">10.1/abc</pub-id>
		<pub-id pub-id-type="pmid">42</pub-id>
	</element-citation></ref>`)

	article, err := Parse(doc)
	require.NoError(t, err)

	require.Len(t, article.References, 1)
	ref := article.References[0]
	assert.Equal(t, []string{"Smith J"}, ref.Authors)
	assert.Equal(t, "A title", ref.Title)
	assert.Equal(t, "J Src", ref.Source)
	assert.Equal(t, "2018", ref.Year)
	assert.Equal(t, "3", ref.Volume)
	assert.Equal(t, "1", ref.Issue)
	assert.Equal(t, "5", ref.FirstPage)
	assert.Equal(t, "15", ref.LastPage)
	assert.Equal(t, "10.1/abc", ref.DOI)
	assert.Equal(t, "42", ref.PMID)
	assert.Empty(t, ref.RawCitation)
}

func TestReferenceRawFallback(t *testing.T) {
	doc := parseRefs(t, `<ref id="r1"><mixed-citation>Anonymous. Untracked pamphlet, 1901.</mixed-citation></ref>`)

	article, err := Parse(doc)
	require.NoError(t, err)

	require.Len(t, article.References, 1)
	ref := article.References[0]
	assert.Equal(t, "Anonymous. Untracked pamphlet, 1901.", ref.RawCitation)
	assert.Empty(t, ref.Authors)
	assert.Empty(t, ref.Title)
}

func TestReferenceStringNames(t *testing.T) {
	doc := parseRefs(t, `<ref id="r1"><mixed-citation>
		<string-name>Jones KL</string-name>, <string-name><surname>Li</surname> <given-names>Q</given-names></string-name>.
		<article-title>Mixed names</article-title>
	</mixed-citation></ref>`)

	article, err := Parse(doc)
	require.NoError(t, err)

	require.Len(t, article.References, 1)
	ref := article.References[0]
	assert.Equal(t, []string{"Jones KL", "Li Q"}, ref.Authors)
	assert.Equal(t, "Mixed names", ref.Title)
}

func TestReferenceEditorsExcluded(t *testing.T) {
	doc := parseRefs(t, `<ref id="r1"><element-citation>
		<person-group person-group-type="author">
			<name><surname>Author</surname><given-names>A</given-names></name>
		</person-group>
		<person-group person-group-type="editor">
			<name><surname>Editor</surname><given-names>E</given-names></name>
		</person-group>
		<source>Book</source>
	</element-citation></ref>`)

	article, err := Parse(doc)
	require.NoError(t, err)

	require.Len(t, article.References, 1)
	assert.Equal(t, []string{"Author A"}, article.References[0].Authors)
}

func TestReferenceChapterTitle(t *testing.T) {
	doc := parseRefs(t, `<ref id="r1"><element-citation>
		<chapter-title>Chapter Nine</chapter-title>
		<source>Big Book</source>
	</element-citation></ref>`)

	article, err := Parse(doc)
	require.NoError(t, err)

	require.Len(t, article.References, 1)
	assert.Equal(t, "Chapter Nine", article.References[0].Title)
}

func TestReferenceMultiple(t *testing.T) {
	doc := parseRefs(t, `<ref id="r1"><element-citation><source>One</source></element-citation></ref>`+
		`<ref id="r2"><element-citation><source>Two</source></element-citation></ref>`)

	article, err := Parse(doc)
	require.NoError(t, err)

	require.Len(t, article.References, 2)
	assert.Equal(t, "One", article.References[0].Source)
	assert.Equal(t, "Two", article.References[1].Source)
}
