// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/builder"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/config"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/internal/helper/posix"
	x509certs "github.com/H0llyW00dzZ/tls-trust-manager/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/logger"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/trustmanager"
)

var (
	// OperationPerformed is set once a subcommand started its work.
	OperationPerformed bool
	// OperationPerformedSuccessfully is set when that work finished without error.
	OperationPerformedSuccessfully bool
)

var (
	// ErrInvalidAssume is returned for an unknown --assume value.
	ErrInvalidAssume = errors.New("cli: --assume must be one of prompt, once, always, deny")
	// ErrInvalidLogFormat is returned for an unknown --log-format value.
	ErrInvalidLogFormat = errors.New("cli: --log-format must be text or json")
	// ErrAliasNotFound is returned when removing an alias the store does not hold.
	ErrAliasNotFound = errors.New("cli: alias not found in trust store")
)

// loggerName tags JSON log lines.
const loggerName = "tls-trust-manager"

// app carries the state shared by the subcommands of one invocation.
type app struct {
	version    string
	log        logger.Logger
	configPath string
	logFormat  string
	cfg        *config.Config
}

// Execute runs the root command with the process arguments.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	return NewCommand(version, log).ExecuteContext(ctx)
}

// NewCommand builds the root command. log is replaced by a JSON logger on
// the command's error stream when the JSON log format is selected. A nil log
// is created for the configured format.
func NewCommand(version string, log logger.Logger) *cobra.Command {
	a := &app{version: version, log: log}

	rootCmd := &cobra.Command{
		Use:           posix.GetExecutableName(),
		Short:         "TLS trust decision engine",
		Long:          "Validate TLS server chains through a cascade of root stores and decide what to do when none trusts them.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "configuration file (.json, .yaml, .yml); defaults to $"+config.EnvConfigFile)
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json (overrides the configuration)")

	rootCmd.AddCommand(a.checkCommand(), a.classifyCommand(), a.storeCommand())
	return rootCmd
}

// load resolves the configuration and the logger before a subcommand runs.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.logFormat != "" {
		switch a.logFormat {
		case config.LogFormatText, config.LogFormatJSON:
			cfg.LogFormat = a.logFormat
		default:
			return fmt.Errorf("%w, got %q", ErrInvalidLogFormat, a.logFormat)
		}
	}
	if a.log == nil || cfg.LogFormat == config.LogFormatJSON {
		a.log = logger.New(cfg.LogFormat, loggerName, cmd.ErrOrStderr())
	}

	a.cfg = cfg
	OperationPerformed = true
	return nil
}

func (a *app) build(cb trustmanager.DecisionCallback) (*builder.Engine, error) {
	return builder.Build(a.cfg, cb, builder.WithLogger(a.log), builder.WithVersion(a.version))
}

// readChain decodes every certificate of a PEM, DER or PKCS#7 file.
func readChain(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}
	chain, err := x509certs.New().DecodeChain(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding certificates from %s: %w", path, err)
	}
	return chain, nil
}
