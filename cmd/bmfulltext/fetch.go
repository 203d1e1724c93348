// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hherb/bmfulltext/internal/fulltext"
	"github.com/hherb/bmfulltext/internal/pdfcache"
	"github.com/hherb/bmfulltext/internal/store"
	"github.com/hherb/bmfulltext/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "bmfulltext/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Retrieve full text for an article",
	Long: `Fetch tries the retrieval tiers in order for the given identifiers:
Europe PMC structured XML (rendered to HTML), an open-access PDF located
via Unpaywall, the publisher's DOI-resolver URL, and the PubMed article
page. Rendered HTML goes to stdout or --out; a located PDF is downloaded
into the cache.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("pmcid", "", "PubMed Central accession (with or without the PMC prefix)")
	fetchCmd.Flags().String("doi", "", "article DOI")
	fetchCmd.Flags().String("pmid", "", "PubMed identifier")
	fetchCmd.Flags().String("out", "", "write rendered HTML to this file instead of stdout")
	fetchCmd.Flags().String("cache-dir", "pdfs", "directory for cached PDFs")
	fetchCmd.Flags().String("db", "", "SQLite database to record the result in (optional)")
	fetchCmd.Flags().String("email", "", "contact email sent to Unpaywall")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	pmcid, _ := cmd.Flags().GetString("pmcid")
	doi, _ := cmd.Flags().GetString("doi")
	pmid, _ := cmd.Flags().GetString("pmid")
	if pmcid == "" && doi == "" && pmid == "" {
		return fmt.Errorf("provide at least one of --pmcid, --doi, --pmid")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		email = viper.GetString("contact_email")
	}
	email = secretDefault("unpaywall-email", email)

	cfg := types.FullTextConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		ContactEmail: email,
	}

	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	cache := pdfcache.New(types.CacheConfig{Dir: cacheDir})
	svc := fulltext.New(cfg, logger)

	var result types.FullTextResult
	if path, ok := cache.Get(cacheID(pmcid, doi, pmid)); ok {
		result = types.CachedFile{Path: path}
	} else {
		var err error
		result, err = svc.Fetch(cmd.Context(), pmcid, doi, pmid)
		if err != nil {
			return err
		}
	}

	var (
		html    string
		pdfPath string
	)
	switch r := result.(type) {
	case types.StructuredText:
		html = r.HTML
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			fmt.Println(r.HTML)
		} else if err := os.WriteFile(out, []byte(r.HTML), 0o644); err != nil {
			return fmt.Errorf("writing HTML: %w", err)
		}
	case types.OpenAccessPDF:
		data, err := svc.DownloadPDF(cmd.Context(), r.URL)
		if err != nil {
			return fmt.Errorf("downloading PDF: %w", err)
		}
		pdfPath, err = cache.Save(data, cacheID(pmcid, doi, pmid))
		if err != nil {
			return fmt.Errorf("caching PDF: %w", err)
		}
		fmt.Printf("Saved PDF: %s\n", pdfPath)
	case types.CachedFile:
		pdfPath = r.Path
		fmt.Printf("Cached PDF: %s\n", r.Path)
	case types.PublisherRedirect:
		fmt.Printf("Publisher page: %s\n", r.URL)
	case types.PubMedRedirect:
		fmt.Printf("PubMed page: %s\n", r.URL)
	default:
		return fmt.Errorf("unexpected result source %q", result.Source())
	}

	logger.Info().Str("source", result.Source()).Msg("full text resolved")

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		return nil
	}
	return recordResult(dbPath, pmcid, doi, pmid, html, result.Source(), pdfPath)
}

// recordResult persists the fetch outcome so repeat runs can skip the
// network.
func recordResult(dbPath, pmcid, doi, pmid, html, source, pdfPath string) error {
	st, err := store.Open(types.StoreConfig{Path: dbPath})
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.UpsertPaper(&types.Paper{
		DOI:   doi,
		PMCID: pmcid,
		PMID:  pmid,
	})
	if err != nil {
		return err
	}
	if html != "" {
		if err := st.SaveFullText(id, html, source); err != nil {
			return err
		}
	}
	if pdfPath != "" {
		if err := st.SavePDFPath(id, pdfPath); err != nil {
			return err
		}
	}
	return nil
}

// cacheID picks the most specific identifier as the cache key.
func cacheID(pmcid, doi, pmid string) string {
	switch {
	case doi != "":
		return doi
	case pmcid != "":
		return fulltext.NormalizePMCID(pmcid)
	default:
		return pmid
	}
}
