// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/trustmanager"
)

func (a *app) classifyCommand() *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "classify FILE",
		Short: "Run the validator cascade on a certificate chain file and explain why it is not trusted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := readChain(args[0])
			if err != nil {
				return err
			}

			var escalated *trustmanager.Escalation
			engine, err := a.build(trustmanager.DecisionFunc(func(_ context.Context, esc *trustmanager.Escalation) (trustmanager.Decision, error) {
				escalated = esc
				return trustmanager.Deny, nil
			}))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			err = engine.Manager.VerifyChain(cmd.Context(), chain, host)
			switch {
			case err == nil:
				fmt.Fprintf(out, "Chain is trusted (validators: %v)\n", engine.Names())
			case escalated != nil:
				fmt.Fprint(out, escalated.Detail.Message)
				fmt.Fprintf(out, "Kinds:\t%v\nAlias:\t%s\n", escalated.Detail.Kinds, escalated.Alias)
			default:
				return err
			}
			OperationPerformedSuccessfully = true
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "hostname the chain is expected to be valid for")
	return cmd
}
