// Package store archives solved contests.
//
// A Record pairs the problem that was solved with the solution that came
// back, under a generated identifier. Two backends are provided:
//
//   - FileStore: records as JSON files in a directory, for CLI use.
//   - MongoStore: a collection in MongoDB, for the service.
//
// Records are write-once: audits want an immutable trail of what was
// generated, when, from which ballots. The store also renders per-assertion
// CSV summaries for spreadsheet-driven audit boards.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/irvaudit/pkg/assertion"
	"github.com/matzehuels/irvaudit/pkg/raire"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicateID is returned when a record with the same ID exists.
	ErrDuplicateID = errors.New("store: duplicate record id")
)

// Record is one archived solve.
type Record struct {
	ID        string         `json:"id"`
	Contest   string         `json:"contest"`
	Problem   *raire.Problem `json:"problem"`
	Solution  *raire.Result  `json:"solution"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewRecord builds a record with a fresh identifier and timestamp.
func NewRecord(contest string, problem *raire.Problem, solution *raire.Result) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Contest:   contest,
		Problem:   problem,
		Solution:  solution,
		CreatedAt: time.Now().UTC(),
	}
}

// Summary is the listing view of a record, cheap enough to return in bulk.
type Summary struct {
	ID             string    `json:"id"`
	Contest        string    `json:"contest"`
	Winner         int       `json:"winner"`
	AssertionCount int       `json:"assertion_count"`
	Difficulty     float64   `json:"difficulty"`
	Margin         int       `json:"margin"`
	CreatedAt      time.Time `json:"created_at"`
}

// summarize derives the listing view from a full record.
func summarize(r *Record) Summary {
	s := Summary{
		ID:        r.ID,
		Contest:   r.Contest,
		CreatedAt: r.CreatedAt,
	}
	if r.Solution != nil {
		s.Winner = r.Solution.Winner
		s.AssertionCount = len(r.Solution.Assertions)
		s.Difficulty = r.Solution.Difficulty
		s.Margin = r.Solution.Margin
	}
	return s
}

// Store is the interface for solve-record archives.
type Store interface {
	// Put archives a record. Returns ErrDuplicateID if the ID is taken.
	Put(ctx context.Context, record *Record) error

	// Get retrieves a record by ID. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns summaries of all records, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a record. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// csvHeader is the column layout of assertion summaries.
var csvHeader = []string{"index", "type", "winner", "loser", "continuing", "difficulty", "margin"}

// WriteAssertionsCSV renders a record's assertions as CSV, one row per
// assertion, in the solution's canonical order. NEN continuing sets are
// space-separated candidate indices; NEB rows leave the column empty.
func WriteAssertionsCSV(w io.Writer, record *Record) error {
	if record.Solution == nil {
		return fmt.Errorf("record %s has no solution", record.ID)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, a := range record.Solution.Assertions {
		row, err := csvRow(i, a)
		if err != nil {
			return err
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(index int, a raire.AssertionAndDifficulty) ([]string, error) {
	difficulty := strconv.FormatFloat(a.Difficulty, 'g', -1, 64)
	margin := strconv.Itoa(a.Margin)
	switch asrt := a.Assertion.(type) {
	case assertion.NEB:
		return []string{strconv.Itoa(index), "NEB",
			strconv.Itoa(asrt.Winner), strconv.Itoa(asrt.Loser), "", difficulty, margin}, nil
	case assertion.NEN:
		continuing := make([]string, len(asrt.Continuing))
		for i, c := range asrt.Continuing {
			continuing[i] = strconv.Itoa(c)
		}
		return []string{strconv.Itoa(index), "NEN",
			strconv.Itoa(asrt.Winner), strconv.Itoa(asrt.Loser),
			strings.Join(continuing, " "), difficulty, margin}, nil
	default:
		return nil, fmt.Errorf("unknown assertion type %T", a.Assertion)
	}
}
