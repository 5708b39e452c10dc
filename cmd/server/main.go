package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/agrtools/agr-genomics-mcp/internal/agr"
	"github.com/agrtools/agr-genomics-mcp/internal/mcp"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file (optional, uses environment variables by default)")
	toolSet := flag.String("toolset", "", "Tool catalog to load: core or enhanced (overrides configuration)")
	flag.Parse()

	cfg, err := agr.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *toolSet != "" {
		cfg.ToolSet = *toolSet
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running server: %v\n", err)
		os.Exit(1)
	}
}
