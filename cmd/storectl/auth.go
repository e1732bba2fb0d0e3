package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/client/api"
)

func loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			reader := bufio.NewReader(os.Stdin)
			if email == "" {
				if email, err = promptLine(reader, "Email"); err != nil {
					return err
				}
			}
			password, err := promptSecret("Password")
			if err != nil {
				return err
			}

			sess, err := e.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			fmt.Printf("Signed in as %s (%s)\n", sess.User.Name, sess.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")

	return cmd
}

func registerCmd() *cobra.Command {
	var (
		name    string
		email   string
		phone   string
		address string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			reader := bufio.NewReader(os.Stdin)
			if name == "" {
				if name, err = promptLine(reader, "Name"); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = promptLine(reader, "Email"); err != nil {
					return err
				}
			}
			password, err := promptSecret("Password")
			if err != nil {
				return err
			}
			answer, err := promptLine(reader, "Recovery answer (used to reset a forgotten password)")
			if err != nil {
				return err
			}

			sess, err := e.client.Register(cmd.Context(), api.RegisterInput{
				Name:           name,
				Email:          email,
				Password:       password,
				RecoveryAnswer: answer,
				Phone:          phone,
				Address:        address,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Welcome, %s. You are signed in.\n", sess.User.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&address, "address", "", "Shipping address")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.client.Logout(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			user, err := e.client.Profile(cmd.Context())
			if err != nil {
				if errors.Is(err, api.ErrSessionExpired) {
					return errors.New("not signed in, run 'storectl login' first")
				}
				return err
			}

			fmt.Printf("Name:    %s\n", user.Name)
			fmt.Printf("Email:   %s\n", user.Email)
			fmt.Printf("Role:    %s\n", user.Role)
			if user.Phone != "" {
				fmt.Printf("Phone:   %s\n", user.Phone)
			}
			if user.Address != "" {
				fmt.Printf("Address: %s\n", user.Address)
			}
			return nil
		},
	}
}

func forgotPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Reset a password with the recovery answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			reader := bufio.NewReader(os.Stdin)
			if email == "" {
				if email, err = promptLine(reader, "Email"); err != nil {
					return err
				}
			}
			answer, err := promptLine(reader, "Recovery answer")
			if err != nil {
				return err
			}
			newPassword, err := promptSecret("New password")
			if err != nil {
				return err
			}

			if err := e.client.ForgotPassword(cmd.Context(), email, answer, newPassword); err != nil {
				return err
			}

			fmt.Println("Password updated. Sign in with 'storectl login'.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")

	return cmd
}
