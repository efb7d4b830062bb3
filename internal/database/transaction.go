package database

// Batch transactions.
//
// SurrealDB has no connection-level transaction handle in the Go client, so
// statements are collected in memory and sent as one
// BEGIN TRANSACTION ... COMMIT TRANSACTION block. Either every statement is
// applied or none is. There is no isolation between Add calls.
//
//	batch := NewAtomicBatch()
//	batch.Add("DELETE contact WHERE client_id = $id", vars)
//	batch.Add("DELETE type::thing('client', $id)", vars)
//	err := batch.Execute(ctx, db)

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// TxBuilder builds atomic transaction queries with automatic variable namespacing.
// Two statements that both use $id end up with $v1_id and $v2_id.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
	counter    int
}

// NewTxBuilder creates a new transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		vars: make(map[string]interface{}),
	}
}

// Add appends a statement, renaming its variables so they cannot collide
// with variables of other statements. It returns the old->new name mapping.
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) map[string]string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	mapping := make(map[string]string, len(names))
	for _, name := range names {
		tb.counter++
		renamed := fmt.Sprintf("v%d_%s", tb.counter, name)
		mapping[name] = renamed
		tb.vars[renamed] = vars[name]
	}

	if len(mapping) > 0 {
		query = varPattern.ReplaceAllStringFunc(query, func(ref string) string {
			if renamed, ok := mapping[ref[1:]]; ok {
				return "$" + renamed
			}
			return ref
		})
	}

	tb.statements = append(tb.statements, query)
	return mapping
}

var varPattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*`)

// Len returns the number of statements added
func (tb *TxBuilder) Len() int {
	return len(tb.statements)
}

// Build returns the complete transaction query and merged variables
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		stmt = strings.TrimSpace(stmt)
		sb.WriteString(stmt)
		if !strings.HasSuffix(stmt, ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

// ExecuteTransaction executes a transaction built with TxBuilder
func ExecuteTransaction(ctx context.Context, db Database, tb *TxBuilder) ([]interface{}, error) {
	query, vars := tb.Build()
	if query == "" {
		return nil, nil
	}
	return db.Query(ctx, query, vars)
}

// AtomicBatch is a fluent wrapper over TxBuilder for statements that must
// succeed together
type AtomicBatch struct {
	builder *TxBuilder
}

// NewAtomicBatch creates a new atomic batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{builder: NewTxBuilder()}
}

// Add adds a query to the batch
func (ab *AtomicBatch) Add(query string, vars map[string]interface{}) *AtomicBatch {
	ab.builder.Add(query, vars)
	return ab
}

// Execute runs all queries as a single transaction
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) error {
	_, err := ExecuteTransaction(ctx, db, ab.builder)
	return err
}

// Len returns the number of queries in the batch
func (ab *AtomicBatch) Len() int {
	return ab.builder.Len()
}
