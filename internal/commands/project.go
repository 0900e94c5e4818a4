package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/config"
	"github.com/finstat-dev/finstat/internal/dataset"
	"github.com/finstat-dev/finstat/internal/filter"
	"github.com/finstat-dev/finstat/internal/importer"
	"github.com/finstat-dev/finstat/internal/logger"
	"github.com/finstat-dev/finstat/internal/model"
)

// project is an opened project directory.
type project struct {
	dir string
	cfg *config.Config
	log zerolog.Logger
	reg *importer.Registry
}

// openProject loads the project config. A directory without finstat.yaml
// runs with the defaults and environment overrides.
func openProject(cmd *cobra.Command, opts *rootOptions) (*project, error) {
	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.FromEnv(dir)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}

	log := logger.New(cmd.ErrOrStderr(), level)
	if opts.logJSON {
		log = logger.NewWithWriter(cmd.ErrOrStderr()).Level(logger.ParseLevel(level))
	}

	return &project{
		dir: dir,
		cfg: cfg,
		log: log,
		reg: importer.DefaultRegistry(),
	}, nil
}

func (p *project) datasetsPath() string {
	return p.cfg.Resolve(p.cfg.DatasetsFile)
}

// filters loads the filter document, or the default set when there is none.
func (p *project) filters() (*filter.Set, error) {
	path := p.cfg.Resolve(p.cfg.FiltersFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		p.log.Debug().Str("path", path).Msg("no filters file, using defaults")
		return filter.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading filters: %w", err)
	}

	set, err := filter.LoadJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	p.log.Debug().Str("path", path).Int("filters", set.Len()).Msg("filters loaded")
	return set, nil
}

func (p *project) pipeline() *dataset.Pipeline {
	return dataset.NewPipeline(p.reg, model.NewSplitter(p.cfg.SplitDelimiter), p.log)
}

// transactions loads every stored dataset. Rejected datasets are reported
// on stderr and left out.
func (p *project) transactions(cmd *cobra.Command) ([]model.Transaction, error) {
	datasets, err := dataset.ReadFile(p.datasetsPath())
	if err != nil {
		return nil, err
	}
	txns, _, err := p.pipeline().LoadAll(datasets)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return txns, nil
}
