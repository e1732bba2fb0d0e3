package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/client/api"
	"storefront/internal/client/guard"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Shop management (administrators only)",
	}

	cmd.AddCommand(
		adminOrdersCmd(),
		adminSetStatusCmd(),
		adminAddCategoryCmd(),
		adminRenameCategoryCmd(),
		adminDeleteCategoryCmd(),
		adminAddProductCmd(),
		adminUpdateProductCmd(),
		adminDeleteProductCmd(),
		adminUploadPhotoCmd(),
	)

	return cmd
}

// adminEnv builds the env and clears the admin guard before any management
// operation runs.
func adminEnv(ctx context.Context) (*env, error) {
	e, err := newEnv()
	if err != nil {
		return nil, err
	}
	if err := e.requireLevel(ctx, guard.LevelAdmin, "admin"); err != nil {
		return nil, err
	}
	return e, nil
}

func adminOrdersCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List all orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := adminEnv(cmd.Context())
			if err != nil {
				return err
			}

			orders, err := e.client.AdminOrders(cmd.Context(), page, 0)
			if err != nil {
				return err
			}
			printOrders(orders)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")

	return cmd
}

func adminSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <order-id> <status>",
		Short: "Move an order to paid, shipped, delivered, or cancelled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := adminEnv(cmd.Context())
			if err != nil {
				return err
			}

			order, err := e.client.SetOrderStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("Order %s is now %s\n", order.ID, order.Status)
			return nil
		},
	}
}

func adminAddCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-category <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := adminEnv(cmd.Context())
			if err != nil {
				return err
			}

			category, err := e.client.CreateCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Created category %s (slug %s)\n", category.Name, category.Slug)
			return nil
		},
	}
}

func adminRenameCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename-category <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := adminEnv(cmd.Context())
			if err != nil {
				return err
			}

			category, err := e.client.UpdateCategory(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("Category renamed to %s (slug %s)\n", category.Name, category.Slug)
			return nil
		},
	}
}

func adminDeleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-category <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := adminEnv(cmd.Context())
			if err != nil {
				return err
			}

			if err := e.client.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Println("Category deleted.")
			return nil
		},
	}
}

func productFlags(cmd *cobra.Command, in *api.ProductInput) {
	cmd.Flags().StringVar(&in.CategoryID, "category", "", "Category ID")
	cmd.Flags().StringVar(&in.Name, "name", "", "Product name")
	cmd.Flags().StringVar(&in.Description, "description", "", "Product description")
	cmd.Flags().Int64Var(&in.PriceCents, "price-cents", 0, "Price in cents")
	cmd.Flags().IntVar(&in.Quantity, "quantity", 0, "Stock quantity")
	cmd.Flags().BoolVar(&in.Shipping, "shipping", false, "Product ships physically")
}

func adminAddProductCmd() *cobra.Command {
	var in api.ProductInput

	cmd := &cobra.Command{
		Use:   "add-product",
		Short: "Create a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := adminEnv(cmd.Context())
			if err != nil {
				return err
			}

			product, err := e.client.CreateProduct(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Printf("Created %s (slug %s, id %s)\n", product.Name, product.Slug, product.ID)
			return nil
		},
	}

	productFlags(cmd, &in)
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("price-cents")

	return cmd
}

func adminUpdateProductCmd() *cobra.Command {
	var in api.ProductInput

	cmd := &cobra.Command{
		Use:   "update-product <id>",
		Short: "Update a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := adminEnv(cmd.Context())
			if err != nil {
				return err
			}

			product, err := e.client.UpdateProduct(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}

			fmt.Printf("Updated %s (slug %s)\n", product.Name, product.Slug)
			return nil
		},
	}

	productFlags(cmd, &in)
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("price-cents")

	return cmd
}

func adminDeleteProductCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-product <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := adminEnv(cmd.Context())
			if err != nil {
				return err
			}

			if err := e.client.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Println("Product deleted.")
			return nil
		},
	}
}

func adminUploadPhotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload-photo <product-id> <file>",
		Short: "Attach a product photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := adminEnv(cmd.Context())
			if err != nil {
				return err
			}

			file, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer file.Close()

			product, err := e.client.UploadPhoto(cmd.Context(), args[0], file.Name(), file)
			if err != nil {
				return err
			}

			fmt.Printf("Photo attached to %s\n", product.Name)
			return nil
		},
	}
}
