package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Dataset Serialization API
// =============================================================================

// MarshalDataset converts a Dataset to indented JSON bytes.
func MarshalDataset(ds Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDataset(ds, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDataset decodes JSON bytes into a Dataset.
func UnmarshalDataset(data []byte) (Dataset, error) {
	return ReadDataset(bytes.NewReader(data))
}

// WriteDataset writes a Dataset as JSON to an io.Writer.
func WriteDataset(ds Dataset, w io.Writer) error {
	if ds.Characters == nil {
		ds.Characters = []Character{}
	}
	if ds.Relations == nil {
		ds.Relations = []Relation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadDataset decodes a JSON dataset from an io.Reader.
func ReadDataset(r io.Reader) (Dataset, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode: %w", err)
	}
	return ds, nil
}

// WriteDatasetFile writes a Dataset to a JSON file.
func WriteDatasetFile(ds Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDataset(ds, f)
}

// ReadDatasetFile reads a Dataset from a JSON file.
func ReadDatasetFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDataset(f)
}
