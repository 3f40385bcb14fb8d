// Package fs stores test results on the local filesystem, one JSON
// file per test, named by test id.
package fs

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/electroqa/ammetest/types"
)

// Type should match the package name
const Type = "fs"

// Storage is a way to store test results on the local filesystem.
type Storage struct {
	// The path to the directory where result files will be stored.
	Dir string `json:"dir" yaml:"save_path"`
}

// New creates a Storage rooted at dir.
func New(dir string) Storage {
	return Storage{Dir: dir}
}

// Type returns the storage driver package name
func (Storage) Type() string {
	return Type
}

func (s Storage) filename(testID string) string {
	return filepath.Join(s.Dir, testID+".json")
}

// Save writes one result to <dir>/<test_id>.json, creating the
// directory if needed.
func (s Storage) Save(result types.TestResult) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return errors.Wrap(err, "creating results directory")
	}

	f, err := os.Create(s.filename(result.Metadata.TestID))
	if err != nil {
		return errors.Wrap(err, "creating result file")
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	err = enc.Encode(result)
	f.Close()
	return errors.Wrap(err, "encoding result")
}

// Load reads one result by test id. A missing file is a
// *types.NotFoundError.
func (s Storage) Load(testID string) (*types.TestResult, error) {
	f, err := os.Open(s.filename(testID))
	if os.IsNotExist(err) {
		return nil, &types.NotFoundError{TestID: testID}
	} else if err != nil {
		return nil, errors.Wrap(err, "opening result file")
	}
	defer f.Close()

	var result types.TestResult
	if err := json.NewDecoder(f).Decode(&result); err != nil {
		return nil, errors.Wrapf(err, "decoding result %s", testID)
	}
	return &result, nil
}

// List reads every result in the directory. Individually corrupt
// files are skipped with a warning; they never abort the scan.
func (s Storage) List() ([]types.TestResult, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "reading results directory")
	}

	var results []types.TestResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		f, err := os.Open(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			log.Printf("warning: skipping unreadable result file %s: %v", entry.Name(), err)
			continue
		}
		var result types.TestResult
		err = json.NewDecoder(f).Decode(&result)
		f.Close()
		if err != nil {
			log.Printf("warning: skipping corrupted result file %s: %v", entry.Name(), err)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}
