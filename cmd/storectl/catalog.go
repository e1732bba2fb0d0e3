package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/client/api"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List shop categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			categories, err := e.client.Categories(cmd.Context())
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				fmt.Println("No categories yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tNAME\tID")
			for _, category := range categories {
				fmt.Fprintf(w, "%s\t%s\t%s\n", category.Slug, category.Name, category.ID)
			}
			return w.Flush()
		},
	}
}

func productsCmd() *cobra.Command {
	var (
		search   string
		sort     string
		category string
		page     int
		perPage  int
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
		Long: `Browse the catalog. Newest products by default; use --sort bestselling
for the best sellers, --search for a text search, or --category to list one
category's products.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			products, err := e.client.Products(cmd.Context(), api.ProductQuery{
				Search:   search,
				Sort:     sort,
				Category: category,
				Page:     page,
				PerPage:  perPage,
			})
			if err != nil {
				return err
			}

			printProducts(products)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Search products by name or description")
	cmd.Flags().StringVar(&sort, "sort", "", "Sort order (bestselling)")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category slug")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Page size (server default when unset)")

	return cmd
}

func productCmd() *cobra.Command {
	var related bool

	cmd := &cobra.Command{
		Use:   "product <slug>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			product, err := e.client.ProductBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", product.Name)
			fmt.Printf("  Price:    %s\n", formatPrice(product.PriceCents))
			fmt.Printf("  In stock: %d\n", product.Quantity)
			fmt.Printf("  Sold:     %d\n", product.Sold)
			fmt.Printf("  Shipping: %v\n", product.Shipping)
			if product.Description != "" {
				fmt.Printf("  %s\n", product.Description)
			}
			if product.PhotoURL != "" {
				fmt.Printf("  Photo:    %s\n", product.PhotoURL)
			}

			if related {
				others, err := e.client.RelatedProducts(cmd.Context(), args[0], 0)
				if err != nil {
					return err
				}
				if len(others) > 0 {
					fmt.Println("\nRelated:")
					printProducts(others)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&related, "related", false, "Also show related products")

	return cmd
}

func printProducts(products []api.Product) {
	if len(products) == 0 {
		fmt.Println("No products found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.Slug, p.Name, formatPrice(p.PriceCents), p.Quantity)
	}
	w.Flush()
}
