package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/alextreichler/humbleautos/internal/app"
	"github.com/alextreichler/humbleautos/internal/auth"
	"github.com/alextreichler/humbleautos/internal/models"
)

func newLoginCmd(opts *options) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in; the session is kept for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readLine(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				user, err := c.Auth.Login(ctx, args[0], password)
				if err != nil {
					return err
				}
				printUser(cmd.OutOrStdout(), "Logged in as", user)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func newRegisterCmd(opts *options) *cobra.Command {
	var in auth.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.ConfirmPassword == "" {
				in.ConfirmPassword = in.Password
			}
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				user, err := c.Auth.Register(ctx, in)
				if err != nil {
					return describe(err)
				}
				printUser(cmd.OutOrStdout(), "Registered", user)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Username, "username", "", "display name (at least 3 characters)")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Password, "password", "", "password (at least 6 characters)")
	f.StringVar(&in.ConfirmPassword, "confirm", "", "password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				if err := c.Auth.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *app.Client) error {
				user, ok := c.Auth.Current()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
					return nil
				}
				printUser(cmd.OutOrStdout(), "Logged in as", user)
				return nil
			})
		},
	}
}

func newHashPasswordCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for a seed file passwordHash entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				var err error
				if password, err = readLine(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), opts.bcryptCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}

// describe spells out validation failures one field per line.
func describe(err error) error {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	var b strings.Builder
	b.WriteString("please fix:")
	for _, field := range slices.Sorted(maps.Keys(verr.Fields)) {
		fmt.Fprintf(&b, "\n  %s: %s", field, verr.Fields[field])
	}
	return errors.New(b.String())
}
