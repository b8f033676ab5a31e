package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	accounts "github.com/goliatone/go-accounts"
	promadapter "github.com/goliatone/go-accounts/adapters/prometheus"
	"github.com/goliatone/go-accounts/core"
	sqlstore "github.com/goliatone/go-accounts/store/sql"
)

const (
	envClientID         = "FACEBOOK_CLIENT_ID"
	envClientSecret     = "FACEBOOK_CLIENT_SECRET"
	envBaseURL          = "FACEBOOK_BASE_URL"
	envMode             = "ACCOUNTS_MODE"
	envTransportTimeout = "ACCOUNTS_TRANSPORT_TIMEOUT"
)

type rootFlags struct {
	envFile string
	verbose bool
}

type exchangeFlags struct {
	token  string
	userID string
	driver string
	dsn    string
}

func newRootCommand(stdout io.Writer, stderr io.Writer, getenv func(string) string) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "fbaccount",
		Short:         "Facebook account credential tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.envFile == "" {
				return nil
			}
			if err := godotenv.Load(flags.envFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("load env file %s: %w", flags.envFile, err)
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log account operations to stderr")

	root.AddCommand(newExchangeCommand(flags, stdout, stderr, getenv))
	return root
}

func newExchangeCommand(root *rootFlags, stdout io.Writer, stderr io.Writer, getenv func(string) string) *cobra.Command {
	flags := &exchangeFlags{}
	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Exchange a short-lived Facebook token for a long-lived one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(flags.token) == "" {
				return fmt.Errorf("--token is required")
			}
			raw, err := rawConfigFromEnv(getenv)
			if err != nil {
				return err
			}
			opts := []accounts.Option{
				accounts.WithConfigProvider(core.NewCfgxConfigProvider(core.StaticConfigLoader{Values: raw})),
				accounts.WithMetricsRecorder(promadapter.NewRecorder(prom.NewRegistry())),
			}
			if root.verbose {
				opts = append(opts, accounts.WithLogger(newVerboseLogger(stderr)))
			}
			svc, err := accounts.Setup(accounts.Config{}, opts...)
			if err != nil {
				return err
			}
			return runExchange(cmd.Context(), svc, flags, stdout)
		},
	}
	cmd.Flags().StringVar(&flags.token, "token", "", "short-lived user access token")
	cmd.Flags().StringVar(&flags.userID, "user", "", "user id to store the account record under")
	cmd.Flags().StringVar(&flags.driver, "driver", sqlstore.DriverPostgres, "account record database driver")
	cmd.Flags().StringVar(&flags.dsn, "dsn", "", "account record database dsn; the record is stored when set with --user")
	return cmd
}

func runExchange(ctx context.Context, svc *accounts.Service, flags *exchangeFlags, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	account, err := svc.AccountFromHeaders(ctx, accounts.SchemeFacebook, accounts.AccountHeaders{
		core.HTTPOAuth2AccessTokenKey: flags.token,
	}, nil, nil)
	if err != nil {
		return err
	}
	if _, err := svc.EnsureTokens(ctx, account, nil); err != nil {
		return err
	}

	if flags.dsn != "" && flags.userID != "" {
		db, err := sqlstore.Open(flags.driver, flags.dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		store, err := sqlstore.NewAccountRecordStore(db)
		if err != nil {
			return err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		if _, err := store.Save(ctx, flags.userID, account); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(stdout, account.AccessToken())
	return err
}

func newVerboseLogger(out io.Writer) glog.Logger {
	return glog.NewLogger(
		glog.WithName("fbaccount"),
		glog.WithWriter(out),
		glog.WithLevel("debug"),
		glog.WithLoggerTypeConsole(),
	)
}

// rawConfigFromEnv maps the supported environment variables onto the
// accounts config shape. Unset variables are left out.
func rawConfigFromEnv(getenv func(string) string) (map[string]any, error) {
	raw := map[string]any{}
	facebook := map[string]any{}
	if value := strings.TrimSpace(getenv(envClientID)); value != "" {
		facebook["client_id"] = value
	}
	if value := strings.TrimSpace(getenv(envClientSecret)); value != "" {
		facebook["client_secret"] = value
	}
	if value := strings.TrimSpace(getenv(envBaseURL)); value != "" {
		facebook["base_url"] = value
	}
	if len(facebook) > 0 {
		raw["facebook"] = facebook
	}
	if value := strings.TrimSpace(getenv(envMode)); value != "" {
		raw["mode"] = value
	}
	if value := strings.TrimSpace(getenv(envTransportTimeout)); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envTransportTimeout, err)
		}
		raw["transport"] = map[string]any{"timeout": timeout}
	}
	return raw, nil
}
