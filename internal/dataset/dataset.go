// Package dataset stores named raw imports and turns them into transactions.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// Dataset is one named raw import: the untouched export text and the key
// of the format it is in.
type Dataset struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
	Data     string `json:"data"`
}

// New creates a Dataset. Name and data type are required.
func New(name, dataType, data string) (Dataset, error) {
	d := Dataset{Name: name, DataType: dataType, Data: data}
	if err := d.Validate(); err != nil {
		return Dataset{}, err
	}
	return d, nil
}

// Validate checks the required fields.
func (d Dataset) Validate() error {
	if d.Name == "" {
		return errors.New("dataset name not set")
	}
	if d.DataType == "" {
		return fmt.Errorf("dataset %q: dataType not set", d.Name)
	}
	return nil
}

// ParseDocument parses a datasets document: a JSON object mapping dataset
// name to dataset. A dataset without its own name takes the key. The result
// is sorted by name.
func ParseDocument(raw []byte) ([]Dataset, error) {
	var doc map[string]Dataset
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing datasets: %w", err)
	}

	out := make([]Dataset, 0, len(doc))
	for key, d := range doc {
		if d.Name == "" {
			d.Name = key
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("parsing datasets: %w", err)
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MarshalDocument encodes datasets as a datasets document. A later dataset
// replaces an earlier one of the same name.
func MarshalDocument(datasets []Dataset) ([]byte, error) {
	doc := make(map[string]Dataset, len(datasets))
	for _, d := range datasets {
		doc[d.Name] = d
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling datasets: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadFile reads a datasets document. A missing file holds no datasets.
func ReadFile(path string) ([]Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading datasets: %w", err)
	}
	return ParseDocument(data)
}

// WriteFile writes datasets to path.
func WriteFile(path string, datasets []Dataset) error {
	data, err := MarshalDocument(datasets)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing datasets: %w", err)
	}
	return nil
}

// Upsert returns datasets with d added, or replacing the dataset of the
// same name.
func Upsert(datasets []Dataset, d Dataset) []Dataset {
	out := make([]Dataset, 0, len(datasets)+1)
	replaced := false
	for _, existing := range datasets {
		if existing.Name == d.Name {
			out = append(out, d)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, d)
	}
	return out
}
