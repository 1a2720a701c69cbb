package memory

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	records "github.com/goliatone/go-records"
)

// LoadStorage reads a YAML document mapping table names to lists of records:
//
//	users:
//	  - {id: 1, name: ada}
//	  - {id: 2, name: grace}
func LoadStorage(r io.Reader) (Storage, error) {
	var raw map[string][]map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return Storage{}, nil
		}
		return nil, fmt.Errorf("memory: decode fixtures: %w", err)
	}
	storage := make(Storage, len(raw))
	for table, rows := range raw {
		converted := make([]records.Record, 0, len(rows))
		for _, row := range rows {
			converted = append(converted, records.Record(row))
		}
		storage[table] = converted
	}
	return storage, nil
}

// LoadStorageFile is LoadStorage over the file at path.
func LoadStorageFile(path string) (Storage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("memory: open fixtures: %w", err)
	}
	defer file.Close()
	return LoadStorage(file)
}
