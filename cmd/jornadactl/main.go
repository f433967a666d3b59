package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"jornada/contexts/strategy-journey/catalog-service/adapters/yamlseed"
	catalogcommands "jornada/contexts/strategy-journey/catalog-service/application/commands"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "jornadactl",
		Short:        "Operate the jornada strategy journey service",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newCodesCmd(),
		newDemoCmd(),
	)
	return root
}

// loadCatalogFile decodes a catalog seed file.
func loadCatalogFile(path string) (catalogcommands.SeedCatalogCommand, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return catalogcommands.SeedCatalogCommand{}, fmt.Errorf("--file is required")
	}
	file, err := os.Open(path)
	if err != nil {
		return catalogcommands.SeedCatalogCommand{}, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	return yamlseed.Decode(file)
}
