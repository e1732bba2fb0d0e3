package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/client/api"
	"storefront/internal/client/guard"
)

func checkoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout <slug[:qty]>...",
		Short: "Place an order",
		Long: `Place an order for one or more products, named by slug with an optional
quantity, e.g. 'storectl checkout red-mug:2 tea-towel'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.requireLevel(cmd.Context(), guard.LevelStandard, "checkout"); err != nil {
				return err
			}

			items := make([]api.CheckoutItem, 0, len(args))
			for _, arg := range args {
				slug, qty, err := parseItemArg(arg)
				if err != nil {
					return err
				}
				product, err := e.client.ProductBySlug(cmd.Context(), slug)
				if err != nil {
					return fmt.Errorf("product %q: %w", slug, err)
				}
				items = append(items, api.CheckoutItem{ProductID: product.ID, Quantity: qty})
			}

			order, err := e.client.Checkout(cmd.Context(), items)
			if err != nil {
				return err
			}

			fmt.Printf("Order %s placed: %s, status %s\n", order.ID, formatPrice(order.TotalCents), order.Status)
			return nil
		},
	}

	return cmd
}

func ordersCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "orders [id]",
		Short: "Show your orders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.requireLevel(cmd.Context(), guard.LevelStandard, "orders"); err != nil {
				return err
			}

			if len(args) == 1 {
				order, err := e.client.Order(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printOrder(order)
				return nil
			}

			orders, err := e.client.MyOrders(cmd.Context(), page, 0)
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

func parseItemArg(arg string) (slug string, qty int, err error) {
	slug, rest, found := strings.Cut(arg, ":")
	if slug == "" {
		return "", 0, fmt.Errorf("invalid item %q, want slug[:qty]", arg)
	}
	if !found {
		return slug, 1, nil
	}
	qty, err = strconv.Atoi(rest)
	if err != nil || qty < 1 {
		return "", 0, fmt.Errorf("invalid quantity in %q", arg)
	}
	return slug, qty, nil
}

func printOrders(orders []api.Order) {
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.ID, o.Status, formatPrice(o.TotalCents), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func printOrder(order api.Order) {
	fmt.Printf("Order %s\n", order.ID)
	fmt.Printf("  Status: %s\n", order.Status)
	fmt.Printf("  Placed: %s\n", order.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("  Total:  %s\n", formatPrice(order.TotalCents))
	fmt.Println("  Items:")
	for _, item := range order.Items {
		fmt.Printf("    %dx %s (%s each)\n", item.Quantity, item.Name, formatPrice(item.PriceCents))
	}
}
