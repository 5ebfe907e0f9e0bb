// Package importer turns bank exports into ledger transactions.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// Parser converts a bank CSV file into BankTransactions.
type Parser interface {
	Parse(r io.Reader) ([]model.BankTransaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered parser names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	return r
}

// Plan says which accounts an imported bank row posts to.
type Plan struct {
	BankAccount    int // every row posts its signed amount here
	IncomeAccount  int // counter-posting for money in
	ExpenseAccount int // counter-posting for money out
}

// ToTransactions converts bank rows into ledger postings: the signed amount
// against the bank account plus a positive amount against the income or
// expense account. Rows whose reference is in skip are dropped.
func ToTransactions(rows []model.BankTransaction, plan Plan, skip map[string]bool) []model.Transaction {
	var out []model.Transaction
	for _, row := range rows {
		if row.Amount.IsZero() || skip[row.Reference] {
			continue
		}
		counter := plan.IncomeAccount
		if row.Amount.IsNegative() {
			counter = plan.ExpenseAccount
		}
		date := model.Day(row.Date)
		out = append(out,
			model.Transaction{
				Date:          date,
				Amount:        row.Amount,
				AccountNumber: plan.BankAccount,
				Description:   row.Description,
				Reference:     row.Reference,
			},
			model.Transaction{
				Date:          date,
				Amount:        row.Amount.Abs(),
				AccountNumber: counter,
				Description:   row.Description,
				Reference:     row.Reference,
			},
		)
	}
	return out
}

// References returns the set of references already present in txns.
func References(txns []model.Transaction) map[string]bool {
	refs := make(map[string]bool)
	for _, t := range txns {
		if t.Reference != "" {
			refs[t.Reference] = true
		}
	}
	return refs
}

const (
	importDir    = "import"
	processedDir = "import/processed"
)

// Scan returns CSV files in <dataDir>/import/.
func Scan(dataDir string) ([]FileInfo, error) {
	dir := filepath.Join(dataDir, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(dataDir, fileName string) error {
	src := filepath.Join(dataDir, importDir, fileName)
	dstDir := filepath.Join(dataDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	if err := os.Rename(src, filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
