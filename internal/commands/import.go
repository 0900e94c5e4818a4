package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/csvreader"
	"github.com/finstat-dev/finstat/internal/dataset"
	"github.com/finstat-dev/finstat/internal/gitops"
	"github.com/finstat-dev/finstat/internal/importer"
	"github.com/finstat-dev/finstat/internal/importlog"
	"github.com/finstat-dev/finstat/internal/model"
)

type importOptions struct {
	format  string
	name    string
	out     string
	dryRun  bool
	rootOpt *rootOptions
}

func newImportCommand(root *rootOptions) *cobra.Command {
	opts := &importOptions{rootOpt: root}

	cmd := &cobra.Command{
		Use:   "import [file|directory]",
		Short: "Import a bank export as a dataset",
		Long: "Import a bank export as a dataset. The format is detected from the file\n" +
			"extension unless --format is given. A directory imports every supported file in it.\n" +
			"Without an argument the project's import/ inbox is imported and each imported\n" +
			"file is moved to import/processed/.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "format key (see 'finstat formats')")
	cmd.Flags().StringVar(&opts.name, "dataset", "", "dataset name (default: file name)")
	cmd.Flags().StringVar(&opts.out, "out", "", "also write the transactions as csv-simple to this file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and report without saving the dataset")

	return cmd
}

func runImport(cmd *cobra.Command, opts *importOptions, args []string) error {
	p, err := openProject(cmd, opts.rootOpt)
	if err != nil {
		return err
	}

	inbox := len(args) == 0
	path := filepath.Join(p.dir, importer.ImportDir)
	if !inbox {
		path = args[0]
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var files []string
	if info.IsDir() {
		if opts.name != "" {
			return fmt.Errorf("--dataset cannot be used with a directory")
		}
		found, err := importer.Scan(path, p.reg)
		if err != nil {
			return err
		}
		for _, f := range found {
			files = append(files, f.Path)
		}
		if len(files) == 0 {
			return fmt.Errorf("no importable files in %s", path)
		}
	} else {
		files = []string{path}
	}

	datasets, err := dataset.ReadFile(p.datasetsPath())
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := p.log.With().Str("run_id", runID).Logger()
	pipeline := p.pipeline()

	var (
		all     []model.Transaction
		entries []importlog.Entry
	)
	for _, file := range files {
		d, err := readDataset(p.reg, file, opts)
		if err != nil {
			return err
		}
		res, err := pipeline.Load(d)
		if err != nil {
			return err
		}

		log.Info().
			Str("dataset", res.Dataset).
			Str("format", res.Format).
			Int("count", len(res.Transactions)).
			Int("split", res.Splits).
			Msg("dataset imported")
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d transactions (%s) as dataset %q\n",
			filepath.Base(file), len(res.Transactions), res.Format, res.Dataset)

		datasets = dataset.Upsert(datasets, d)
		all = append(all, res.Transactions...)
		entries = append(entries, importlog.Entry{
			Timestamp:    time.Now().UTC(),
			RunID:        runID,
			Dataset:      res.Dataset,
			Format:       res.Format,
			Transactions: len(res.Transactions),
			Splits:       res.Splits,
		})
	}

	if opts.out != "" {
		model.Sort(all)
		if err := writeSimpleCSV(opts.out, all); err != nil {
			return err
		}
	}

	if opts.dryRun {
		return nil
	}

	if err := dataset.WriteFile(p.datasetsPath(), datasets); err != nil {
		return err
	}
	changed := []string{p.datasetsPath()}
	if err := importlog.Append(p.dir, entries); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to write import log: %v\n", err)
	} else {
		changed = append(changed, importlog.Path(p.dir))
	}

	if inbox {
		for _, file := range files {
			if err := importer.MarkProcessed(path, filepath.Base(file)); err != nil {
				return err
			}
		}
		changed = append(changed, path)
	}

	if repo, ok := gitops.Open(p.dir); ok {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Dataset
		}
		hash, err := repo.Commit("import: "+strings.Join(names, ", "), changed...)
		if err != nil && !errors.Is(err, gitops.ErrNothingToCommit) {
			return err
		}
		if hash != "" {
			log.Info().Str("commit", hash).Msg("import committed")
		}
	}
	return nil
}

// readDataset reads file and resolves its format, from the flag or by
// detection.
func readDataset(reg *importer.Registry, file string, opts *importOptions) (dataset.Dataset, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("reading %s: %w", file, err)
	}

	format := opts.format
	if format == "" {
		ext, _, err := reg.Detect(file, string(raw))
		if err != nil {
			return dataset.Dataset{}, err
		}
		format = ext.Key()
	}

	name := opts.name
	if name == "" {
		base := filepath.Base(file)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return dataset.New(name, format, string(raw))
}

// writeSimpleCSV exports txns in the csv-simple format.
func writeSimpleCSV(path string, txns []model.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := writeSimpleRows(f, txns); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func writeSimpleRows(w io.Writer, txns []model.Transaction) error {
	const sep = ';'
	if _, err := io.WriteString(w, csvreader.FormatLine([]string{"Date", "Value", "Description"}, sep)+"\n"); err != nil {
		return err
	}
	for _, t := range txns {
		line := csvreader.FormatLine([]string{t.Date, t.Value.String(), singleLine(t.Description)}, sep)
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// singleLine replaces line breaks, which a csv-simple field cannot hold.
func singleLine(s string) string {
	return lineBreaks.Replace(s)
}
