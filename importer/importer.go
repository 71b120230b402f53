// Package importer drives the import of AIB CSV exports: it reads files or
// directories, runs each file through identification, extraction and
// categorization, and renders the results as beancount text or JSON.
package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/yacoob/beancount-aib/categorizer"
	"github.com/yacoob/beancount-aib/importer/aib"
	"github.com/yacoob/beancount-aib/ledger"
)

// FileResult is the outcome of importing one CSV export.
type FileResult struct {
	File    string             `json:"file"`
	Account string             `json:"account"`
	Entries []ledger.Directive `json:"entries"`
}

// FromConfig builds an importer and categorizer from the loaded viper
// configuration: the `accounts` map, `cutoff_days` and the ordered
// `categories` list.
func FromConfig() (*aib.Importer, *categorizer.PayeeCategorizer, error) {
	imp := aib.New(viper.GetStringMapString("accounts"))
	if viper.IsSet("cutoff_days") {
		imp.CutoffDays = viper.GetInt("cutoff_days")
	}
	if c := viper.GetString("currency"); c != "" {
		imp.Currency = c
	}
	var categories []categorizer.Category
	if err := viper.UnmarshalKey("categories", &categories); err != nil {
		return nil, nil, fmt.Errorf("loading categories: %w", err)
	}
	return imp, categorizer.New(categories), nil
}

// ProcessReader imports one CSV export from r. It returns nil when the
// file is not an AIB export for a configured account.
func ProcessReader(r io.Reader, filename string) (*FileResult, error) {
	imp, cat, err := FromConfig()
	if err != nil {
		return nil, err
	}
	f, err := aib.ReadFile(filename, r)
	if err != nil {
		return nil, err
	}
	if !imp.Identify(f) {
		return nil, nil
	}
	entries, err := imp.Extract(f, nil)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		File:    filename,
		Account: imp.Account(f),
		Entries: cat.Process(entries),
	}, nil
}

// ExecuteAgainstPath imports path (a CSV file, or a directory scanned for
// .csv files) and writes the rendered entries to out. With asJSON the
// results are emitted as a JSON document instead of beancount text.
func ExecuteAgainstPath(path string, out io.Writer, logger *log.Logger, asJSON bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	var results []*FileResult
	if info.IsDir() {
		logger.Info("scanning directory", "path", path)
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
				continue
			}
			result, err := processFile(filepath.Join(path, e.Name()), logger)
			if err != nil {
				return err
			}
			if result != nil {
				results = append(results, result)
			}
		}
	} else {
		result, err := processFile(path, logger)
		if err != nil {
			return err
		}
		if result != nil {
			results = append(results, result)
		}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, result := range results {
		if err := ledger.Render(out, result.Entries); err != nil {
			return err
		}
	}
	return nil
}

func processFile(path string, logger *log.Logger) (*FileResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result, err := ProcessReader(f, path)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	if result == nil {
		logger.Warn("skipping file: not an AIB export for a configured account", "file", path)
		return nil, nil
	}
	logger.Info("imported file", "file", path, "account", result.Account, "entries", len(result.Entries))
	return result, nil
}
