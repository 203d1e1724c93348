// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fulltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOALocation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "best location PDF preferred",
			body: `{"best_oa_location":{"url_for_pdf":"https://x/best.pdf","url":"https://x/best"},
			       "oa_locations":[{"url_for_pdf":"https://x/alt.pdf"}]}`,
			want: "https://x/best.pdf",
		},
		{
			name: "alternate PDF when best has none",
			body: `{"best_oa_location":{"url":"https://x/best"},
			       "oa_locations":[{"url":"https://x/a"},{"url_for_pdf":"https://x/alt.pdf"}]}`,
			want: "https://x/alt.pdf",
		},
		{
			name: "best landing URL when no PDF anywhere",
			body: `{"best_oa_location":{"url":"https://x/best"},
			       "oa_locations":[{"url":"https://x/a"}]}`,
			want: "https://x/best",
		},
		{
			name: "alternate landing URL as last resort",
			body: `{"oa_locations":[{"url":"https://x/a"}]}`,
			want: "https://x/a",
		},
		{
			name: "empty record",
			body: `{}`,
			want: "",
		},
		{
			name: "null best location",
			body: `{"best_oa_location":null,"oa_locations":[]}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectOALocation([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectOALocationInvalidJSON(t *testing.T) {
	_, err := selectOALocation([]byte("<html>not json</html>"))
	assert.Error(t, err)
}
