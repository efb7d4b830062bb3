package repository

import (
	"context"
	"fmt"

	"github.com/cigno/platform/internal/database"
)

// SeedRepository finds and removes records written by the seeder
type SeedRepository struct {
	db database.Database
}

// NewSeedRepository creates a new seed repository
func NewSeedRepository(db database.Database) *SeedRepository {
	return &SeedRepository{db: db}
}

// Count returns the number of seeded records per table. Tables without
// seeded records are left out.
func (r *SeedRepository) Count(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range seedTables {
		query := fmt.Sprintf(`SELECT count() AS count FROM %s WHERE seeded = true GROUP ALL`, table)
		result, err := r.db.QueryOne(ctx, query, nil)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("count seeded %s: %w", table, err)
		}
		if n := extractCount(result); n > 0 {
			counts[table] = n
		}
	}
	return counts, nil
}

// Clean deletes every seeded record in one transaction and returns how many
// were removed per table
func (r *SeedRepository) Clean(ctx context.Context) (map[string]int, error) {
	counts, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return counts, nil
	}

	batch := database.NewAtomicBatch()
	for _, table := range seedTables {
		if counts[table] > 0 {
			batch.Add(fmt.Sprintf(`DELETE %s WHERE seeded = true`, table), nil)
		}
	}
	if err := batch.Execute(ctx, r.db); err != nil {
		return nil, fmt.Errorf("clean seeded records: %w", err)
	}
	return counts, nil
}
