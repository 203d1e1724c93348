// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fulltext retrieves article full text through ranked fallback
// tiers: structured JATS XML from Europe PMC, an open-access PDF located
// via Unpaywall, the publisher's DOI-resolver page, and finally the
// PubMed article page. Tiers are fallbacks, never parallel attempts; a
// later tier is tried only after the earlier one proved unavailable.
package fulltext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hherb/bmfulltext/internal/httputil"
	"github.com/hherb/bmfulltext/internal/jats"
	"github.com/hherb/bmfulltext/pkg/types"
)

// Endpoint bases. Declared as vars so tests can substitute httptest
// servers.
var (
	europePMCBase = "https://www.ebi.ac.uk/europepmc/webservices/rest/"
	unpaywallBase = "https://api.unpaywall.org/v2/"
	doiBase       = "https://doi.org/"
	pubmedBase    = "https://pubmed.ncbi.nlm.nih.gov/"
)

const (
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 2.0
	defaultContactEmail      = "bmfulltext@hherb.org"
)

// ErrNoIdentifiers is returned when a fetch is attempted without any
// usable identifier. It is checked before any network call.
var ErrNoIdentifiers = errors.New("no usable identifier supplied")

// ErrUnavailable is returned when every applicable tier has been
// exhausted without a result.
var ErrUnavailable = errors.New("full text not available")

// Service runs the tiered retrieval. Instances hold no per-fetch state;
// concurrent fetches on one Service are safe.
type Service struct {
	client  *http.Client
	cfg     types.FullTextConfig
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New builds a Service from the configuration, filling defaults for
// unset fields.
func New(cfg types.FullTextConfig, log zerolog.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "bmfulltext/0.1"
	}
	if cfg.ContactEmail == "" {
		cfg.ContactEmail = defaultContactEmail
	}

	var limiter *rate.Limiter
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = defaultRequestsPerSecond
	}
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &Service{
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: limiter,
		log:     log,
	}
}

// NormalizePMCID returns the accession in canonical "PMC{digits}" form.
func NormalizePMCID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToUpper(id), "PMC") {
		return "PMC" + id[3:]
	}
	return "PMC" + id
}

// Fetch attempts the tiers in order and returns the first result. All
// intermediate tier failures are absorbed here; the caller sees either a
// result or ErrNoIdentifiers/ErrUnavailable.
func (s *Service) Fetch(ctx context.Context, pmcid, doi, pmid string) (types.FullTextResult, error) {
	pmcid = strings.TrimSpace(pmcid)
	doi = strings.TrimSpace(doi)
	pmid = strings.TrimSpace(pmid)

	if pmcid == "" && doi == "" && pmid == "" {
		return nil, ErrNoIdentifiers
	}

	if pmcid != "" {
		if res, ok := s.fetchStructured(ctx, NormalizePMCID(pmcid)); ok {
			return res, nil
		}
	}

	if doi != "" {
		if res, ok := s.fetchOpenAccess(ctx, doi); ok {
			return res, nil
		}
		// The resolver URL is constructed, never queried; it always
		// succeeds when a DOI exists.
		return types.PublisherRedirect{URL: doiBase + doi}, nil
	}

	if pmid != "" {
		return types.PubMedRedirect{URL: pubmedBase + pmid + "/"}, nil
	}

	return nil, fmt.Errorf("%w: all tiers exhausted", ErrUnavailable)
}

// fetchStructured is tier 1: structured JATS XML rendered to HTML.
// Absence (404) and parse failures both fall through to the next tier.
func (s *Service) fetchStructured(ctx context.Context, pmcid string) (types.FullTextResult, bool) {
	body, status, err := s.get(ctx, europePMCBase+pmcid+"/fullTextXML")
	if err != nil {
		s.log.Debug().Err(err).Str("pmcid", pmcid).Msg("structured text request failed")
		return nil, false
	}
	if status != http.StatusOK {
		s.log.Debug().Int("status", status).Str("pmcid", pmcid).Msg("structured text unavailable")
		return nil, false
	}

	html, err := jats.RenderHTML(body, pmcid)
	if err != nil {
		s.log.Debug().Err(err).Str("pmcid", pmcid).Msg("structured text unparsable")
		return nil, false
	}
	return types.StructuredText{HTML: html}, true
}

// fetchOpenAccess is tier 2: an open-access PDF located by DOI. The best
// location's PDF URL is preferred; otherwise the secondary locations are
// scanned for any usable URL.
func (s *Service) fetchOpenAccess(ctx context.Context, doi string) (types.FullTextResult, bool) {
	u := unpaywallBase + url.PathEscape(doi) + "?email=" + url.QueryEscape(s.cfg.ContactEmail)
	body, status, err := s.get(ctx, u)
	if err != nil {
		s.log.Debug().Err(err).Str("doi", doi).Msg("open-access lookup failed")
		return nil, false
	}
	if status != http.StatusOK {
		s.log.Debug().Int("status", status).Str("doi", doi).Msg("DOI unknown to open-access lookup")
		return nil, false
	}

	oaURL, err := selectOALocation(body)
	if err != nil || oaURL == "" {
		s.log.Debug().Str("doi", doi).Msg("no open-access location")
		return nil, false
	}
	return types.OpenAccessPDF{URL: oaURL}, true
}

// get is the single outbound HTTP seam: rate limiting, User-Agent, and
// bounded retry of transient failures all happen here.
func (s *Service) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, s.cfg.MaxAttempts)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// DownloadPDF fetches a PDF payload for caching. The bytes are returned
// unvalidated; the cache rejects non-PDF content on save.
func (s *Service) DownloadPDF(ctx context.Context, rawURL string) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, s.client, req, s.cfg.MaxAttempts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}
	return io.ReadAll(resp.Body)
}
