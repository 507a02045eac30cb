// Command lmsauthctl is the operator CLI: schema migrations, password hashes,
// signing secrets and role assignment.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dropDatabas3/lmsauth/internal/config"
	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	"github.com/dropDatabas3/lmsauth/internal/http/server"
	"github.com/dropDatabas3/lmsauth/internal/security/password"
	tokens "github.com/dropDatabas3/lmsauth/internal/security/token"
	"github.com/dropDatabas3/lmsauth/internal/store/pg"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	loadCfg := func() (*config.Config, error) {
		if configPath == "" {
			return config.Default(), nil
		}
		return config.Load(configPath)
	}

	root := &cobra.Command{
		Use:           "lmsauthctl",
		Short:         "Operator tooling for the LMS auth service",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "YAML config path (env CONFIG_PATH)")

	root.AddCommand(
		newMigrateCmd(loadCfg),
		newHashPasswordCmd(loadCfg),
		newGenSecretCmd(),
		newSetRoleCmd(loadCfg),
	)
	return root
}

type cfgLoader func() (*config.Config, error)

func openPG(ctx context.Context, load cfgLoader) (*pg.Store, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN == "" {
		return nil, errors.New("postgres storage is not configured (STORAGE_DRIVER=postgres, STORAGE_DSN)")
	}
	return pg.Open(ctx, pg.Config{
		DSN:      cfg.Storage.DSN,
		MaxConns: 2,
		MinConns: 1,
	})
}

func newMigrateCmd(load cfgLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			st, err := openPG(ctx, load)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := pg.Migrate(ctx, st.Pool()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}, &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			st, err := openPG(ctx, load)
			if err != nil {
				return err
			}
			defer st.Close()
			return pg.MigrationStatus(ctx, st.Pool())
		},
	})
	return cmd
}

func newHashPasswordCmd(load cfgLoader) *cobra.Command {
	var skipPolicy bool
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password and print its argon2id hash",
		Long:  "Prompts twice without echo on a terminal; otherwise reads one line from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plain, err := readPassword(cmd)
			if err != nil {
				return err
			}
			if !skipPolicy {
				cfg, err := load()
				if err != nil {
					return err
				}
				policy, err := server.PasswordPolicy(cfg)
				if err != nil {
					return err
				}
				if err := policy.Check(plain); err != nil {
					return err
				}
			}
			phc, err := password.NewHasher(password.Default).Hash(plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), phc)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipPolicy, "skip-policy", false, "Do not enforce the configured password policy")
	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprint(errOut, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(errOut)
	if err != nil {
		return "", err
	}
	fmt.Fprint(errOut, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(errOut)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func newGenSecretCmd() *cobra.Command {
	var nBytes int
	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random base64url secret suitable for JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if nBytes < 32 {
				return fmt.Errorf("--bytes must be at least 32")
			}
			s, err := tokens.GenerateOpaqueToken(nBytes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().IntVar(&nBytes, "bytes", 32, "Entropy in bytes")
	return cmd
}

func newSetRoleCmd(load cfgLoader) *cobra.Command {
	var emailAddr, roleName string
	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change the role of an existing user (the only way to create an ADMIN)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, ok := repository.ParseRole(strings.ToUpper(strings.TrimSpace(roleName)))
			if !ok {
				return fmt.Errorf("unknown role %q", roleName)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			st, err := openPG(ctx, load)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.UpdateRole(ctx, strings.TrimSpace(emailAddr), role); err != nil {
				if repository.IsNotFound(err) {
					return fmt.Errorf("no user with email %q", emailAddr)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", emailAddr, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&emailAddr, "email", "", "User email")
	cmd.Flags().StringVar(&roleName, "role", "", "STUDENT | INSTRUCTOR | ADMIN")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
