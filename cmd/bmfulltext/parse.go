// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/hherb/bmfulltext/internal/fulltext"
	"github.com/hherb/bmfulltext/internal/jats"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.xml>",
	Short: "Parse a local JATS XML file",
	Long: `Parse reads a JATS XML article from disk and prints it in the chosen
format: a short metadata summary (default), the full article model as
YAML, or rendered HTML the same way the fetch command renders Europe PMC
responses.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "summary", "output format: summary, yaml, or html")
	parseCmd.Flags().String("pmcid", "", "PMC accession used to resolve figure image URLs")
	parseCmd.Flags().String("out", "", "write output to this file instead of stdout")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	format, _ := cmd.Flags().GetString("format")
	pmcid, _ := cmd.Flags().GetString("pmcid")
	out, _ := cmd.Flags().GetString("out")
	if pmcid != "" {
		pmcid = fulltext.NormalizePMCID(pmcid)
	}

	if format == "html" {
		html, err := jats.RenderHTML(data, pmcid)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", args[0], err)
		}
		return emit(out, html)
	}

	article, err := jats.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	switch format {
	case "summary":
		summary := fmt.Sprintf("Title:      %s\nJournal:    %s\nAuthors:    %d\nSections:   %d\nFigures:    %d\nTables:     %d\nReferences: %d\n",
			article.Title, article.Journal, len(article.Authors),
			len(article.Body), len(article.Figures), len(article.Tables), len(article.References))
		return emit(out, summary)
	case "yaml":
		encoded, err := yaml.Marshal(article)
		if err != nil {
			return fmt.Errorf("encoding article: %w", err)
		}
		return emit(out, string(encoded))
	default:
		return fmt.Errorf("unknown format %q (want summary, yaml, or html)", format)
	}
}

func emit(out, content string) error {
	if out == "" {
		fmt.Print(content)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			fmt.Println()
		}
		return nil
	}
	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
