package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tmorell/inkwell"
	"github.com/tmorell/inkwell/pkg/site"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the site locally",
	Long: `Build the site, serve it over HTTP, and rebuild whenever a post
changes. Stops on interrupt.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		vault := resolveVault()

		cfg, err := site.LoadConfig(vault)
		if err != nil {
			fatal("Failed to load site config", err)
		}

		service, err := inkwell.New(vault, vaultOptions(inkwell.WithMustExist(true))...)
		if err != nil {
			fatal("Failed to open vault", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		builder := site.NewBuilder(service, cfg, vault, slog.Default())
		server := site.NewServer(builder, service, serveAddr, slog.Default())
		if err := server.Serve(ctx); err != nil {
			fatal("Preview server failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Listen address")
}
