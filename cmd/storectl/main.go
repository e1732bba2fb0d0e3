package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "storectl",
		Short: "Terminal client for the storefront API",
		Long: `storectl browses the storefront catalog, places orders, and manages the
shop for administrators. Sign in once with 'storectl login'; the session is
kept in your user config directory until you log out or it expires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API base URL (overrides config)")

	rootCmd.AddCommand(
		loginCmd(),
		registerCmd(),
		logoutCmd(),
		whoamiCmd(),
		forgotPasswordCmd(),
		categoriesCmd(),
		productsCmd(),
		productCmd(),
		checkoutCmd(),
		ordersCmd(),
		adminCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
