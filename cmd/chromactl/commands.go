package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	chromex "github.com/kailas-cloud/chroma-explorer/pkg/sdk"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that the server answers a heartbeat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			p := a.client.Probe(ctx, a.conn)
			if a.json {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"connected":   p.Connected,
					"api_version": p.APIVersion,
				})
			}
			if !p.Connected {
				return fmt.Errorf("%s:%s is not reachable", a.conn.Host, a.conn.Port)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected (API %s)\n", p.APIVersion)
			return nil
		},
	}
}

func newCollectionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"cols"},
		Short:   "List, inspect and delete collections",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			cols, err := a.client.Collections(a.conn).List(ctx)
			if err != nil {
				return err
			}
			if a.json {
				return printJSON(cmd.OutOrStdout(), cols)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tID\tCOUNT\tSPACE")
			for _, c := range cols {
				space := string(c.Space)
				if space == "" {
					space = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Name, c.ID, c.Count, space)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id|name>",
		Short: "Show one collection with its configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			col, err := a.resolveCollection(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), col)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			col, err := a.resolveCollection(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.client.Collections(a.conn).Delete(ctx, col.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted collection %s\n", col.Name)
			return nil
		},
	})
	return cmd
}

func newDocumentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "List, edit and delete documents of a collection",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <collection>",
		Short: "List documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			col, err := a.resolveCollection(ctx, args[0])
			if err != nil {
				return err
			}
			docs, err := a.client.Documents(a.conn, col.ID).List(ctx)
			if err != nil {
				return err
			}
			return a.printDocuments(cmd, docs)
		},
	})

	var text, metadata string
	update := &cobra.Command{
		Use:   "update <collection> <id>",
		Short: "Replace the text and metadata of a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			col, err := a.resolveCollection(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.client.Documents(a.conn, col.ID).UpdateJSON(ctx, args[1], text, metadata); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", args[1])
			return nil
		},
	}
	update.Flags().StringVar(&text, "text", "", "new document text")
	update.Flags().StringVar(&metadata, "metadata", "{}", "new metadata as a JSON object")
	_ = update.MarkFlagRequired("text")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <collection> <id>...",
		Short: "Delete one or more documents in one call",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			col, err := a.resolveCollection(ctx, args[0])
			if err != nil {
				return err
			}
			ids := args[1:]
			if err := a.client.Documents(a.conn, col.ID).DeleteMany(ctx, ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d document(s)\n", len(ids))
			return nil
		},
	})
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <collection> <query>",
		Short: "Search a collection, falling back from similarity to text match",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			col, err := a.resolveCollection(ctx, args[0])
			if err != nil {
				return err
			}
			hits, err := a.client.Documents(a.conn, col.ID).Search(ctx, strings.Join(args[1:], " "), limit)
			if err != nil {
				var opErr *chromex.OperationError
				if errors.As(err, &opErr) {
					for _, at := range opErr.Attempts {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", at.Name, at.Err)
					}
				}
				return err
			}
			return a.printDocuments(cmd, hits)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of results")
	return cmd
}

func (a *app) printDocuments(cmd *cobra.Command, docs []chromex.Document) error {
	if a.json {
		return printJSON(cmd.OutOrStdout(), docs)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDISTANCE\tDOCUMENT")
	for _, d := range docs {
		dist := "-"
		if d.Distance != nil {
			dist = fmt.Sprintf("%.4f", *d.Distance)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, dist, oneLine(d.Text, 80))
	}
	return tw.Flush()
}

// oneLine flattens s and cuts it to at most n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
