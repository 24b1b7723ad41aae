// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	x509certs "github.com/H0llyW00dzZ/tls-trust-manager/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/truststore"
)

func (a *app) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Administer the trust store holding trust-always decisions",
	}
	cmd.AddCommand(a.storeListCommand(), a.storeAddCommand(), a.storeRemoveCommand(), a.storeExportCommand())
	return cmd
}

func (a *app) openStore() (*truststore.Store, error) {
	return truststore.Open(a.cfg.TrustStore.Path, a.cfg.TrustStore.Passphrase)
}

func (a *app) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trusted anchors as a markdown table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := renderEntries(cmd.OutOrStdout(), store.Path(), store.Entries()); err != nil {
				return err
			}
			OperationPerformedSuccessfully = true
			return nil
		},
	}
}

// renderEntries writes entries as a markdown table.
func renderEntries(w io.Writer, path string, entries []truststore.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "Trust store %s is empty\n", path)
		return err
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"Alias", "Subject", "Not After", "Persistent"})

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		persistent := "no"
		if e.Persistent {
			persistent = "yes"
		}
		rows = append(rows, []string{e.Alias, e.Subject(), e.NotAfter().UTC().Format("2006-01-02"), persistent})
	}

	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func (a *app) storeAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add FILE",
		Short: "Trust the anchor of a certificate chain file permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := readChain(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}

			anchor := chain[len(chain)-1]
			alias := truststore.Alias(anchor)
			if err := store.Add(alias, anchor, true); err != nil {
				return err
			}
			a.log.Printf("cli: stored anchor %s in %s", alias, store.Path())
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", alias, anchor.Subject)
			OperationPerformedSuccessfully = true
			return nil
		},
	}
}

func (a *app) storeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ALIAS",
		Short: "Forget a trusted anchor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			removed, err := store.Remove(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("%w: %s", ErrAliasNotFound, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			OperationPerformedSuccessfully = true
			return nil
		},
	}
}

func (a *app) storeExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [ALIAS]",
		Short: "Write trusted anchors as PEM, all of them or the one named by ALIAS",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			encoder := x509certs.New()
			var data []byte
			if len(args) == 1 {
				cert, ok := store.Get(strings.ToLower(args[0]))
				if !ok {
					return fmt.Errorf("%w: %s", ErrAliasNotFound, args[0])
				}
				data = encoder.EncodePEM(cert)
			} else {
				data = encoder.EncodeMultiplePEM(store.Certificates())
			}

			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}
			OperationPerformedSuccessfully = true
			return nil
		},
	}
}
