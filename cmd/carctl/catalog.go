package main

import (
	"github.com/spf13/cobra"

	"github.com/pribylovaa/car-market/internal/catalog"
)

func (c *cli) brandsCmd() *cobra.Command {
	var q catalog.Query

	cmd := &cobra.Command{
		Use:   "brands",
		Short: "Марки из справочника",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), pageView(c.app.catalog.Brands(q)))
		},
	}

	bindQueryFlags(cmd, &q)

	return cmd
}

func (c *cli) modelsCmd() *cobra.Command {
	var (
		q     catalog.Query
		brand string
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Модели из справочника (всех марок или одной)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if brand == "" {
				return printJSON(cmd.OutOrStdout(), pageView(c.app.catalog.Models(q)))
			}

			return printJSON(cmd.OutOrStdout(), pageView(c.app.catalog.ModelsByBrand(brand, q)))
		},
	}

	bindQueryFlags(cmd, &q)
	cmd.Flags().StringVar(&brand, "brand", "", "brand (exact name)")

	return cmd
}

// catalogPage - JSON-вид страницы справочника.
type catalogPage struct {
	Items      []string `json:"items"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	Total      int      `json:"total"`
	TotalPages int      `json:"totalPages"`
	HasMore    bool     `json:"hasMore"`
}

func pageView(p catalog.Page) catalogPage {
	return catalogPage{
		Items:      p.Items,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		HasMore:    p.HasMore(),
	}
}

func bindQueryFlags(cmd *cobra.Command, q *catalog.Query) {
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "page size (0 - default)")
	cmd.Flags().StringVar(&q.Search, "search", "", "case-insensitive substring")
}
