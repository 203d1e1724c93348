// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hherb/bmfulltext/internal/pdfcache"
	"github.com/hherb/bmfulltext/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local PDF cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached PDF identifiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := openCache(cmd).List()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var cacheRemoveCmd = &cobra.Command{
	Use:   "rm <identifier>",
	Short: "Remove one cached PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openCache(cmd).Delete(args[0])
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		return openCache(cmd).Clear()
	},
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", "pdfs", "directory for cached PDFs")
	cacheCmd.AddCommand(cacheListCmd, cacheRemoveCmd, cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}

func openCache(cmd *cobra.Command) *pdfcache.Cache {
	dir, _ := cmd.Flags().GetString("cache-dir")
	return pdfcache.New(types.CacheConfig{Dir: dir})
}
