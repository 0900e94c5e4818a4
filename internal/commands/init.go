package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/config"
	"github.com/finstat-dev/finstat/internal/dataset"
	"github.com/finstat-dev/finstat/internal/filter"
	"github.com/finstat-dev/finstat/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var (
		grouping string
		git      bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new finstat project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, grouping); err != nil {
				return err
			}
			if git {
				if err := initGit(absDir); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized finstat project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&grouping, "grouping", "month", "default report grouping (none, week, month, year, all)")
	cmd.Flags().BoolVar(&git, "git", false, "track the project in a new git repository")

	return cmd
}

func runInit(dir, grouping string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	// Create directory structure.
	for _, d := range []string{"import", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write finstat.yaml.
	cfg := config.Default()
	cfg.Grouping = grouping
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write the default filter document.
	filters, err := json.MarshalIndent(filter.DefaultDefinitions(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling filters: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, cfg.FiltersFile), append(filters, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing filters: %w", err)
	}

	// Write an empty datasets document.
	if err := dataset.WriteFile(filepath.Join(dir, cfg.DatasetsFile), nil); err != nil {
		return err
	}

	// Write import/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	return nil
}

// initGit creates a repository for the project and commits the initial
// files. An existing repository is reused.
func initGit(dir string) error {
	repo, ok := gitops.Open(dir)
	if !ok {
		var err error
		if repo, err = gitops.Init(dir); err != nil {
			return err
		}
	}
	if _, err := repo.Commit("init: finstat project"); err != nil && !errors.Is(err, gitops.ErrNothingToCommit) {
		return err
	}
	return nil
}
