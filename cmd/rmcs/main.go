// cmd/rmcs/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/33VM/RajaMantri/internal/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const releaseVersion = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rmcs",
		Short:         "Raja Mantri Chor Sipahi for four players, one of whom hosts.",
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetVersionTemplate("rmcs v{{.Version}}\n")

	root.AddCommand(newHostCmd(), newJoinCmd())
	return root
}

func newHostCmd() *cobra.Command {
	cfg := &config.Config{}
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Open a room and hold the authoritative game state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateHost(); err != nil {
				return err
			}
			return runHost(cmd.Context(), cfg, newLogger(cfg), os.Stdin, os.Stdout)
		},
	}
	config.RegisterCommon(cmd.Flags(), cfg)
	config.RegisterHost(cmd.Flags(), cfg)
	config.BindEnv(cmd)
	return cmd
}

func newJoinCmd() *cobra.Command {
	cfg := &config.Config{}
	cmd := &cobra.Command{
		Use:   "join CODE",
		Short: "Join a room by its four character code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Code = args[0]
			if err := cfg.ValidateJoin(); err != nil {
				return err
			}
			return runJoin(cmd.Context(), cfg, newLogger(cfg), os.Stdin, os.Stdout)
		},
	}
	config.RegisterCommon(cmd.Flags(), cfg)
	config.RegisterJoin(cmd.Flags(), cfg)
	config.BindEnv(cmd)
	return cmd
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
