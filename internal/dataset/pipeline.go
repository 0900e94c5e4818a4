package dataset

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finstat-dev/finstat/internal/importer"
	"github.com/finstat-dev/finstat/internal/model"
)

// Pipeline turns datasets into canonical transactions: extract with the
// dataset's format, tag with the dataset name, then split multi-entry
// transactions.
type Pipeline struct {
	Registry *importer.Registry
	Splitter *model.Splitter
	Logger   zerolog.Logger
}

// Result describes one loaded dataset.
type Result struct {
	RunID        string // set by LoadAll
	Dataset      string
	Format       string
	Transactions []model.Transaction
	Splits       int // source transactions that were split
}

// NewPipeline creates a pipeline. A nil splitter uses the default delimiter.
func NewPipeline(reg *importer.Registry, splitter *model.Splitter, log zerolog.Logger) *Pipeline {
	if splitter == nil {
		splitter = model.NewSplitter("")
	}
	return &Pipeline{Registry: reg, Splitter: splitter, Logger: log}
}

// Load extracts the transactions of one dataset. Any error rejects the whole
// dataset.
func (p *Pipeline) Load(d Dataset) (Result, error) {
	if err := d.Validate(); err != nil {
		return Result{}, err
	}

	ext, err := p.Registry.Get(d.DataType)
	if err != nil {
		return Result{}, fmt.Errorf("dataset %q: %w", d.Name, err)
	}

	txns, err := ext.Parse(d.Data)
	if err != nil {
		return Result{}, fmt.Errorf("dataset %q: %w", d.Name, err)
	}
	for i := range txns {
		txns[i].Dataset = d.Name
	}

	split, err := p.Splitter.Apply(txns)
	if err != nil {
		return Result{}, fmt.Errorf("dataset %q: %w", d.Name, err)
	}

	return Result{
		Dataset:      d.Name,
		Format:       ext.Key(),
		Transactions: split,
		Splits:       countSplits(split),
	}, nil
}

// LoadAll loads every dataset and returns all transactions sorted by date.
// A failing dataset is logged and skipped; the returned error joins every
// failure, so callers can report them and still use the rest.
func (p *Pipeline) LoadAll(datasets []Dataset) ([]model.Transaction, []Result, error) {
	runID := uuid.NewString()
	log := p.Logger.With().Str("run_id", runID).Logger()

	var (
		all     []model.Transaction
		results []Result
		errs    []error
	)
	for _, d := range datasets {
		res, err := p.Load(d)
		if err != nil {
			log.Warn().Err(err).Str("dataset", d.Name).Str("format", d.DataType).Msg("dataset rejected")
			errs = append(errs, err)
			continue
		}
		log.Debug().
			Str("dataset", res.Dataset).
			Str("format", res.Format).
			Int("count", len(res.Transactions)).
			Int("split", res.Splits).
			Msg("dataset loaded")
		res.RunID = runID
		results = append(results, res)
		all = append(all, res.Transactions...)
	}

	model.Sort(all)
	log.Info().Int("datasets", len(results)).Int("rejected", len(errs)).Int("count", len(all)).Msg("datasets loaded")
	return all, results, errors.Join(errs...)
}

func countSplits(txns []model.Transaction) int {
	seen := make(map[int]bool)
	for _, t := range txns {
		if t.IsSplit() {
			seen[t.MultiSeq] = true
		}
	}
	return len(seen)
}
