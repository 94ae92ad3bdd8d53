package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	chromex "github.com/kailas-cloud/chroma-explorer/pkg/sdk"
)

// app is the state shared by every subcommand after flag parsing.
type app struct {
	v       *viper.Viper
	client  *chromex.Client
	conn    chromex.Connection
	timeout time.Duration
	json    bool
}

func newRootCmd() (*cobra.Command, error) {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "chromactl",
		Short:         "Browse and edit Chroma collections across API generations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("host", "localhost", "Chroma host")
	flags.String("port", "8000", "Chroma port")
	flags.String("tenant", "", "tenant (default default_tenant)")
	flags.String("database", "", "database (default default_database)")
	flags.String("relay", "", "route calls through a chroma-explorer relay at this URL")
	flags.String("api-key", "", "bearer key of an auth-enabled relay")
	flags.Duration("timeout", 30*time.Second, "timeout of one command")
	flags.Bool("json", false, "print JSON instead of tables")
	flags.Bool("verbose", false, "log every SDK operation to stderr")
	flags.String("config", "", "config file (yaml) with the same keys as the flags")

	a.v.SetEnvPrefix("CHROMACTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	root.AddCommand(
		newProbeCmd(a),
		newCollectionsCmd(a),
		newDocumentsCmd(a),
		newSearchCmd(a),
	)
	return root, nil
}

func (a *app) setup(cmd *cobra.Command) error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	a.timeout = a.v.GetDuration("timeout")
	a.json = a.v.GetBool("json")
	a.conn = chromex.Connection{
		Host:     a.v.GetString("host"),
		Port:     a.v.GetString("port"),
		Tenant:   a.v.GetString("tenant"),
		Database: a.v.GetString("database"),
	}

	opts := []chromex.Option{
		chromex.WithHTTPClient(&http.Client{Timeout: a.timeout}),
	}
	if relay := a.v.GetString("relay"); relay != "" {
		opts = append(opts, chromex.WithRelay(relay), chromex.WithAPIKey(a.v.GetString("api-key")))
	}
	if a.v.GetBool("verbose") {
		opts = append(opts, chromex.WithLogger(slog.New(slog.NewTextHandler(
			cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug},
		))))
	}

	client, err := chromex.New(opts...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	a.client = client
	return nil
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// resolveCollection accepts a collection id or name and returns the collection.
func (a *app) resolveCollection(ctx context.Context, ident string) (chromex.CollectionInfo, error) {
	col, err := a.client.Collections(a.conn).Get(ctx, ident)
	if err != nil {
		return chromex.CollectionInfo{}, fmt.Errorf("collection %q: %w", ident, err)
	}
	return col, nil
}
