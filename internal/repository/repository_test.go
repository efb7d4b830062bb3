package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

const (
	clientKey  = "65a1f0c2e4b0a1b2c3d4e5f6"
	projectKey = "65a1f0c2e4b0a1b2c3d4e5f7"
)

// scriptedDB answers queries from func fields and records every call
type scriptedDB struct {
	QueryFunc func(query string, vars map[string]interface{}) ([]interface{}, error)
	calls     []string
	vars      []map[string]interface{}
}

func (s *scriptedDB) Ping(ctx context.Context) error { return nil }
func (s *scriptedDB) Close() error                   { return nil }

func (s *scriptedDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	s.calls = append(s.calls, query)
	s.vars = append(s.vars, vars)
	if s.QueryFunc != nil {
		return s.QueryFunc(query, vars)
	}
	return nil, nil
}

func (s *scriptedDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	results, err := s.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return database.FirstRecord(results)
}

func (s *scriptedDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := s.Query(ctx, query, vars)
	return err
}

func ok(records ...interface{}) []interface{} {
	return []interface{}{map[string]interface{}{"status": "OK", "result": records}}
}

// ============================================================================
// Helpers
// ============================================================================

func TestConvertSurrealID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"bare key", clientKey, clientKey},
		{"table prefix", "client:" + clientKey, clientKey},
		{"angle brackets", "client:⟨" + clientKey + "⟩", clientKey},
		{"record id", models.RecordID{Table: "client", ID: clientKey}, clientKey},
		{"record id pointer", &models.RecordID{Table: "client", ID: clientKey}, clientKey},
		{"map", map[string]interface{}{"tb": "client", "id": clientKey}, clientKey},
		{"nested map", map[string]interface{}{"tb": "client", "id": map[string]interface{}{"String": clientKey}}, clientKey},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertSurrealID(tt.in))
		})
	}
}

func TestDecodeRecord_NormalisesIDAndTimes(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	record := map[string]interface{}{
		"id":              models.RecordID{Table: "client", ID: clientKey},
		"name":            "Northwind Bank",
		"organisation_id": projectKey,
		"created_on":      models.CustomDateTime{Time: created},
		"updated_on":      created.Format(time.RFC3339),
		"seeded":          true,
	}

	client, err := decodeRecord[model.Client](record)
	require.NoError(t, err)
	assert.Equal(t, clientKey, client.ID)
	assert.Equal(t, "Northwind Bank", client.Name)
	assert.True(t, client.CreatedOn.Equal(created))
	assert.True(t, client.UpdatedOn.Equal(created))
	assert.True(t, client.Seeded)
}

func TestDecodeRecord_NilIsNotFound(t *testing.T) {
	t.Parallel()

	_, err := decodeRecord[model.Client](nil)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestSetClause_IsSorted(t *testing.T) {
	t.Parallel()

	got := setClause(map[string]interface{}{"name": 1, "billing": 2, "is_active": 3})
	assert.Equal(t, "billing = $billing, is_active = $is_active, name = $name", got)
}

// ============================================================================
// Create / Get
// ============================================================================

func TestCreateRecord_SetsAuditFields(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	db := &scriptedDB{QueryFunc: func(query string, vars map[string]interface{}) ([]interface{}, error) {
		return ok(map[string]interface{}{"created_on": now, "updated_on": now}), nil
	}}

	client := &model.Client{ID: clientKey, Name: "Acme", OrganisationID: projectKey}
	client.CreatedBy = "user-1"
	client.Seeded = true
	client.SeedBatch = "batch-1"

	require.NoError(t, NewClientRepository(db).Create(context.Background(), client))

	require.Len(t, db.calls, 1)
	assert.True(t, strings.HasPrefix(db.calls[0], "CREATE type::thing($tb, $id) SET "))
	assert.Contains(t, db.calls[0], "created_on = time::now()")
	vars := db.vars[0]
	assert.Equal(t, "client", vars["tb"])
	assert.Equal(t, clientKey, vars["id"])
	assert.Equal(t, "user-1", vars["created_by"])
	assert.Equal(t, "user-1", vars["updated_by"])
	assert.Equal(t, true, vars["seeded"])
	assert.Equal(t, "batch-1", vars["seed_batch"])
	assert.Equal(t, now, client.CreatedOn)
	assert.Equal(t, "user-1", client.UpdatedBy)
}

func TestCreateRecord_DuplicateIsWrapped(t *testing.T) {
	t.Parallel()

	db := &scriptedDB{QueryFunc: func(string, map[string]interface{}) ([]interface{}, error) {
		return nil, database.ErrDuplicate
	}}

	err := NewUserRepository(db).Create(context.Background(), &model.User{ID: clientKey, Email: "a@b.co"})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestGetByID_MissingReturnsNil(t *testing.T) {
	t.Parallel()

	db := &scriptedDB{QueryFunc: func(string, map[string]interface{}) ([]interface{}, error) {
		return ok(), nil
	}}

	project, err := NewProjectRepository(db).GetByID(context.Background(), projectKey)
	require.NoError(t, err)
	assert.Nil(t, project)
}

func TestUserRepository_GetByEmailRestoresHash(t *testing.T) {
	t.Parallel()

	db := &scriptedDB{QueryFunc: func(query string, vars map[string]interface{}) ([]interface{}, error) {
		return ok(map[string]interface{}{
			"id":    "user:" + clientKey,
			"name":  "Ada",
			"email": "ada@cigno.io",
			"role":  "admin",
			"hash":  "$2a$10$hash",
		}), nil
	}}

	user, err := NewUserRepository(db).GetByEmail(context.Background(), "  ADA@cigno.io ")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "ada@cigno.io", db.vars[0]["email"])
	assert.Equal(t, clientKey, user.ID)
	require.NotNil(t, user.Hash)
	assert.Equal(t, "$2a$10$hash", *user.Hash)
	assert.True(t, user.IsAdmin())
}

func TestOrganisationRepository_ListFiltersInactive(t *testing.T) {
	t.Parallel()

	db := &scriptedDB{QueryFunc: func(string, map[string]interface{}) ([]interface{}, error) {
		return ok(map[string]interface{}{"id": "organisation:" + clientKey, "name": "Cigno", "is_active": true}), nil
	}}
	repo := NewOrganisationRepository(db)

	orgs, err := repo.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, clientKey, orgs[0].ID)
	assert.Contains(t, db.calls[0], "is_active != false")

	_, err = repo.List(context.Background(), true)
	require.NoError(t, err)
	assert.NotContains(t, db.calls[1], "is_active")
}

func TestProjectRepository_ListBuildsFilter(t *testing.T) {
	t.Parallel()

	db := &scriptedDB{}
	_, err := NewProjectRepository(db).List(context.Background(), model.ProjectFilter{ClientID: clientKey, OrganisationID: projectKey})
	require.NoError(t, err)
	assert.Contains(t, db.calls[0], "WHERE client_id = $client_id AND organisation_id = $organisation_id")
	assert.Equal(t, clientKey, db.vars[0]["client_id"])
}

// ============================================================================
// Cascades
// ============================================================================

func TestClientRepository_DeleteCascadesInOneTransaction(t *testing.T) {
	t.Parallel()

	db := &scriptedDB{QueryFunc: func(query string, vars map[string]interface{}) ([]interface{}, error) {
		switch {
		case strings.HasPrefix(query, "SELECT id FROM project"):
			return ok(map[string]interface{}{"id": "project:" + projectKey}), nil
		case strings.HasPrefix(query, "SELECT id FROM deliverable"):
			assert.Equal(t, []string{projectKey}, vars["project_ids"])
			return ok(map[string]interface{}{"id": models.RecordID{Table: "deliverable", ID: "d1"}}), nil
		}
		return nil, nil
	}}

	require.NoError(t, NewClientRepository(db).Delete(context.Background(), clientKey))

	require.Len(t, db.calls, 3)
	tx := db.calls[2]
	assert.True(t, strings.HasPrefix(tx, "BEGIN TRANSACTION;"))
	order := []string{"DELETE storyline", "DELETE deliverable", "DELETE project", "DELETE contact", "DELETE type::thing"}
	last := -1
	for _, stmt := range order {
		idx := strings.Index(tx, stmt)
		require.Greater(t, idx, last, stmt)
		last = idx
	}
}

func TestProjectRepository_DeleteWithoutDeliverables(t *testing.T) {
	t.Parallel()

	db := &scriptedDB{QueryFunc: func(string, map[string]interface{}) ([]interface{}, error) {
		return ok(), nil
	}}

	require.NoError(t, NewProjectRepository(db).Delete(context.Background(), projectKey))
	tx := db.calls[len(db.calls)-1]
	assert.NotContains(t, tx, "DELETE storyline")
	assert.Contains(t, tx, "DELETE deliverable WHERE project_id")
}

// ============================================================================
// Storylines and seed data
// ============================================================================

func TestStorylineRepository_SaveReplacesExisting(t *testing.T) {
	t.Parallel()

	db := &scriptedDB{QueryFunc: func(query string, vars map[string]interface{}) ([]interface{}, error) {
		if strings.HasPrefix(query, "SELECT * FROM storyline") {
			return ok(map[string]interface{}{
				"id":             "storyline:" + clientKey,
				"deliverable_id": projectKey,
				"created_by":     "author",
				"sections":       []interface{}{},
			}), nil
		}
		return ok(map[string]interface{}{}), nil
	}}

	s := &model.Storyline{DeliverableID: projectKey, Sections: []model.Section{{ID: "s1", Title: "Intro"}}}
	s.UpdatedBy = "editor"
	require.NoError(t, NewStorylineRepository(db).Save(context.Background(), s))

	assert.Equal(t, clientKey, s.ID)
	assert.Equal(t, "author", s.CreatedBy)
	assert.True(t, strings.HasPrefix(db.calls[1], "UPDATE type::thing($tb, $id)"))
	sections, isSlice := db.vars[1]["sections"].([]interface{})
	require.True(t, isSlice)
	assert.Equal(t, "Intro", sections[0].(map[string]interface{})["title"])
}

func TestSeedRepository_CleanCountsAndDeletes(t *testing.T) {
	t.Parallel()

	db := &scriptedDB{QueryFunc: func(query string, vars map[string]interface{}) ([]interface{}, error) {
		if strings.HasPrefix(query, "SELECT count()") {
			return ok(map[string]interface{}{"count": float64(2)}), nil
		}
		return nil, nil
	}}

	removed, err := NewSeedRepository(db).Clean(context.Background())
	require.NoError(t, err)
	assert.Len(t, removed, len(seedTables))
	assert.Equal(t, 2, removed["deliverable"])
	tx := db.calls[len(db.calls)-1]
	assert.Contains(t, tx, "DELETE storyline WHERE seeded = true")
	assert.Contains(t, tx, "DELETE organisation WHERE seeded = true")
}
