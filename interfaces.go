package ammetest

import (
	"github.com/electroqa/ammetest/types"
)

// ResultStorage can persist completed test results.
type ResultStorage interface {
	Type() string
	Save(types.TestResult) error
}

// ResultReader can read persisted test results back.
type ResultReader interface {
	// Load returns the result for one test id. A missing id is a
	// *types.NotFoundError.
	Load(testID string) (*types.TestResult, error)

	// List returns every readable result, skipping corrupt records.
	List() ([]types.TestResult, error)
}
