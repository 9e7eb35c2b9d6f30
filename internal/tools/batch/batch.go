package batch

import (
	"encoding/json"
	"fmt"
)

// Status values for per-item results.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one item in a batch call
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult aggregates per-item results with summary counts
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray normalizes a tool argument that accepts either a single
// ID or a list of IDs into a slice. Empty strings are rejected since they
// would silently produce no-op API calls.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	switch v := param.(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", paramName)
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		return []string{v}, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		ids := make([]string, 0, len(v))
		for i, item := range v {
			id, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if id == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			ids = append(ids, id)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}
}

// ProcessBatch runs fn for every ID in order, collecting one Result per ID.
// A failing item does not stop the batch; its error is recorded instead.
func ProcessBatch(ids []string, fn func(id string) (string, error)) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		res, err := fn(id)
		if err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		results = append(results, NewSuccessResult(id, res))
	}
	return results
}

// FormatResults renders batch results as indented JSON with summary counts
func FormatResults(results []Result) string {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}

	out, _ := json.MarshalIndent(br, "", "  ")
	return string(out)
}

// NewSuccessResult creates a success result
func NewSuccessResult(id, message string) Result {
	return Result{
		ID:     id,
		Status: StatusSuccess,
		Result: message,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: StatusError,
		Error:  err.Error(),
	}
}
