// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/prompt"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/trustmanager"
)

// Values accepted by --assume.
const (
	AssumePrompt = "prompt"
	AssumeOnce   = "once"
	AssumeAlways = "always"
	AssumeDeny   = "deny"
)

func (a *app) checkCommand() *cobra.Command {
	var (
		assume  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check HOST[:PORT]",
		Short: "Connect to a TLS server and verify its chain through the trust manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cb, err := callback(cmd, assume)
			if err != nil {
				return err
			}
			engine, err := a.build(cb)
			if err != nil {
				return err
			}

			// CRL maintenance runs while a decision may be pending.
			ctx, cancel := context.WithCancel(cmd.Context())
			var wg sync.WaitGroup
			wg.Go(func() { _ = engine.Run(ctx) })
			defer func() {
				cancel()
				wg.Wait()
			}()

			conn, err := trustmanager.Dial(ctx, engine.Manager, args[0], timeout)
			if err != nil {
				return err
			}
			defer conn.Close()

			state := conn.ConnectionState()
			fmt.Fprintf(cmd.OutOrStdout(), "%s is trusted (%s, %s)\n",
				args[0], tls.VersionName(state.Version), tls.CipherSuiteName(state.CipherSuite))
			OperationPerformedSuccessfully = true
			return nil
		},
	}

	cmd.Flags().StringVarP(&assume, "assume", "a", AssumePrompt, "answer for untrusted chains: prompt, once, always or deny")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "TCP connect timeout")
	return cmd
}

// callback maps an --assume value to a decision callback. The prompt reads
// the command's input and writes to its error stream.
func callback(cmd *cobra.Command, assume string) (trustmanager.DecisionCallback, error) {
	switch assume {
	case AssumePrompt:
		return trustmanager.Serialize(prompt.NewTerminal(cmd.InOrStdin(), cmd.ErrOrStderr())), nil
	case AssumeOnce:
		return trustmanager.Always(trustmanager.TrustOnce), nil
	case AssumeAlways:
		return trustmanager.Always(trustmanager.TrustAlways), nil
	case AssumeDeny:
		return trustmanager.DenyAll, nil
	default:
		return nil, fmt.Errorf("%w, got %q", ErrInvalidAssume, assume)
	}
}
