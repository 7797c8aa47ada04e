package main

import (
	"context"
	"fmt"
	"html/template"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/normal-ex/letrecovery-web/internal/content"
	"github.com/normal-ex/letrecovery-web/internal/site"
)

var serveOpts struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the website",
	Long: `Serve the LetRecovery website over HTTP.

Content and the license text are embedded in the binary. The [site] section
of the config file can point at replacement files, which are validated
before the server starts.

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveOpts.addr, "addr", "",
		"Listen address (overrides [server] addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	siteContent, license, err := loadContent()
	if err != nil {
		return err
	}

	serverCfg := cfg.Server
	if serveOpts.addr != "" {
		serverCfg.Addr = serveOpts.addr
	}

	srv, err := site.New(serverCfg, siteContent, license, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}

// loadContent loads the site content and license, preferring the files
// named in the config over the embedded copies.
func loadContent() (*content.Site, template.HTML, error) {
	var (
		siteContent *content.Site
		err         error
	)
	if cfg.Site.ContentFile != "" {
		siteContent, err = content.LoadFile(cfg.Site.ContentFile)
	} else {
		siteContent, err = content.Load()
	}
	if err != nil {
		return nil, "", err
	}

	var license template.HTML
	if cfg.Site.LicenseFile != "" {
		license, err = content.LicenseFile(cfg.Site.LicenseFile)
	} else {
		license, err = content.License()
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load license: %w", err)
	}

	return siteContent, license, nil
}
