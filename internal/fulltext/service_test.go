// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fulltext

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hherb/bmfulltext/pkg/types"
)

const sampleXML = `<article><front><article-meta>
	<title-group><article-title>Sample</article-title></title-group>
</article-meta></front></article>`

// testService points the endpoint bases at a local server and returns a
// Service with throttling disabled.
func testService(t *testing.T, handler http.Handler) (*Service, *int32) {
	t.Helper()

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	oldEPMC, oldUPW := europePMCBase, unpaywallBase
	europePMCBase = ts.URL + "/epmc/"
	unpaywallBase = ts.URL + "/upw/"
	t.Cleanup(func() {
		europePMCBase = oldEPMC
		unpaywallBase = oldUPW
	})

	svc := New(types.FullTextConfig{
		ContactEmail:      "test@example.com",
		MaxAttempts:       1,
		RequestsPerSecond: -1,
	}, zerolog.Nop())
	return svc, &calls
}

func TestFetchStructuredText(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/epmc/PMC123/fullTextXML" {
			w.Write([]byte(sampleXML))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	res, err := svc.Fetch(context.Background(), "pmc123", "", "")
	require.NoError(t, err)

	st, ok := res.(types.StructuredText)
	require.True(t, ok, "expected StructuredText, got %T", res)
	assert.Equal(t, "europepmc", res.Source())
	assert.Contains(t, st.HTML, "<h1>Sample</h1>")
}

func TestFetchFallsBackToOpenAccessPDF(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/epmc/"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/upw/"):
			assert.Equal(t, "test@example.com", r.URL.Query().Get("email"))
			w.Write([]byte(`{"best_oa_location":{"url_for_pdf":"https://repo.example.com/a.pdf"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	res, err := svc.Fetch(context.Background(), "PMC1", "10.1/x", "")
	require.NoError(t, err)

	pdf, ok := res.(types.OpenAccessPDF)
	require.True(t, ok, "expected OpenAccessPDF, got %T", res)
	assert.Equal(t, "https://repo.example.com/a.pdf", pdf.URL)
}

func TestFetchFallsBackToPublisherRedirect(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	res, err := svc.Fetch(context.Background(), "PMC1", "10.1/x", "99")
	require.NoError(t, err)

	redir, ok := res.(types.PublisherRedirect)
	require.True(t, ok, "expected PublisherRedirect, got %T", res)
	assert.Equal(t, "https://doi.org/10.1/x", redir.URL)
}

func TestFetchEmptyOpenAccessRecordFallsThrough(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/upw/") {
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	res, err := svc.Fetch(context.Background(), "", "10.1/x", "")
	require.NoError(t, err)

	redir, ok := res.(types.PublisherRedirect)
	require.True(t, ok, "expected PublisherRedirect, got %T", res)
	assert.Equal(t, "https://doi.org/10.1/x", redir.URL)
}

func TestFetchPubMedLastResort(t *testing.T) {
	svc, calls := testService(t, http.NotFoundHandler())

	res, err := svc.Fetch(context.Background(), "", "", "12345")
	require.NoError(t, err)

	redir, ok := res.(types.PubMedRedirect)
	require.True(t, ok, "expected PubMedRedirect, got %T", res)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/12345/", redir.URL)
	// A bare PMID is answered without touching the network.
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestFetchNoIdentifiers(t *testing.T) {
	svc, calls := testService(t, http.NotFoundHandler())

	_, err := svc.Fetch(context.Background(), "", "  ", "")
	assert.ErrorIs(t, err, ErrNoIdentifiers)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestFetchUnparsableXMLFallsThrough(t *testing.T) {
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/epmc/") {
			w.Write([]byte("this is not XML at all"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	res, err := svc.Fetch(context.Background(), "PMC2", "10.2/y", "")
	require.NoError(t, err)

	_, ok := res.(types.PublisherRedirect)
	assert.True(t, ok, "expected PublisherRedirect, got %T", res)
}

func TestNormalizePMCID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PMC123", "PMC123"},
		{"pmc123", "PMC123"},
		{"123", "PMC123"},
		{" 123 ", "PMC123"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePMCID(tt.in), "input %q", tt.in)
	}
}

func TestDownloadPDF(t *testing.T) {
	payload := []byte("%PDF-1.5 fake body")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
		w.Write(payload)
	}))
	defer ts.Close()

	svc := New(types.FullTextConfig{RequestsPerSecond: -1}, zerolog.Nop())

	data, err := svc.DownloadPDF(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestDownloadPDFNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	svc := New(types.FullTextConfig{RequestsPerSecond: -1}, zerolog.Nop())

	_, err := svc.DownloadPDF(context.Background(), ts.URL)
	assert.Error(t, err)
}

func TestUserAgentSent(t *testing.T) {
	var gotUA string
	svc, _ := testService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(sampleXML))
	}))

	_, err := svc.Fetch(context.Background(), "PMC1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "bmfulltext/0.1", gotUA)
}
