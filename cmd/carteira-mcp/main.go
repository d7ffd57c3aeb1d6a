// Command carteira-mcp is an MCP (Model Context Protocol) server that lets AI
// assistants generate member identity cards and registration forms.
//
// # Installation
//
//	go install github.com/lvillar/carteira/cmd/carteira-mcp@latest
//
// # Configuration for Claude Desktop
//
//	{
//	  "mcpServers": {
//	    "carteira": {
//	      "command": "carteira-mcp",
//	      "env": {"CARTEIRA_CHURCH_NOME_IGREJA": "Igreja Evangélica Central"}
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - build_carteira_document: self-printing card document (HTML)
//   - build_ficha_document: self-printing registration forms (HTML)
//   - export_carteira_pdf: card sheets rendered to PDF
//   - export_ficha_pdf: registration forms rendered to PDF
//   - parse_qr_payload: decode a scanned card QR code
//   - format_fields: CPF, phone and date formatting
//   - render_document_template: render a declarative page template to PDF
//
// # Available Resources
//
//   - carteira://schema/member : member record field names and example
//   - carteira://runtime/machine : document runtime transition tables
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/carteira/config"
	"github.com/lvillar/carteira/docgen"
	"github.com/lvillar/carteira/logging"
	"github.com/lvillar/carteira/mcp"
	"github.com/lvillar/carteira/photo"
	"github.com/lvillar/carteira/qrimage"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "optional config file (yaml, json or toml)")
	dotEnv := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*configFile, *dotEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "carteira-mcp: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the protocol.
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cache photo.Cache
	if cfg.Photo.Cache != config.CacheNone {
		cache = photo.NewMemoryCache(nil)
	}
	resolver := photo.NewResolver(append(cfg.ResolverOptions(),
		photo.WithCache(cache, cfg.Photo.CacheTTL),
		photo.WithLogger(log),
	)...)
	gen := docgen.New(
		docgen.WithPhotoResolver(resolver),
		docgen.WithSettings(cfg.Church),
		docgen.WithQR(cfg.QR.Size, qrimage.ParseLevel(cfg.QR.Level)),
		docgen.WithLogger(log),
	)

	server := mcp.NewServer(mcp.WithVersion(version), mcp.WithLogger(log))
	mcp.RegisterDefaultTools(server, gen)
	mcp.RegisterDefaultResources(server)

	// Run blocks on stdin, so a signal ends the process from here.
	errCh := make(chan error, 1)
	go func() { errCh <- server.Run(ctx) }()

	select {
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "carteira-mcp: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}
}
