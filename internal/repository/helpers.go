package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Table names
const (
	tableOrganisation = "organisation"
	tableUser         = "user"
	tableClient       = "client"
	tableContact      = "contact"
	tableProject      = "project"
	tableDeliverable  = "deliverable"
	tableStoryline    = "storyline"
)

// seedTables lists every table the seeder writes to, children first
var seedTables = []string{
	tableStoryline,
	tableDeliverable,
	tableProject,
	tableContact,
	tableClient,
	tableUser,
	tableOrganisation,
}

// convertSurrealID returns the bare record key of a SurrealDB id.
// "project:⟨65a1...⟩", "project:65a1..." and models.RecordID all yield "65a1...".
func convertSurrealID(id interface{}) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return stripTable(v)
	case models.RecordID:
		return extractIDValue(v.ID)
	case *models.RecordID:
		if v != nil {
			return extractIDValue(v.ID)
		}
		return ""
	case map[string]interface{}:
		// {"tb": "project", "id": "..."} or {"Table": ..., "ID": ...}
		for _, key := range []string{"id", "ID"} {
			if idVal, ok := v[key]; ok {
				return extractIDValue(idVal)
			}
		}
	}
	return stripTable(fmt.Sprintf("%v", id))
}

// extractIDValue extracts the key, which may be nested
func extractIDValue(val interface{}) string {
	switch v := val.(type) {
	case string:
		return stripTable(v)
	case map[string]interface{}:
		if s, ok := v["String"].(string); ok {
			return s
		}
		if s, ok := v["string"].(string); ok {
			return s
		}
	}
	return fmt.Sprintf("%v", val)
}

func stripTable(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimPrefix(s, "⟨")
	s = strings.TrimSuffix(s, "⟩")
	return strings.Trim(s, "`")
}

// parseTime parses time from various formats
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// extractQueryResults extracts the records of the first statement
func extractQueryResults(result []interface{}) []interface{} {
	if len(result) == 0 {
		return nil
	}
	if first, ok := result[0].(map[string]interface{}); ok {
		if _, hasStatus := first["status"]; hasStatus {
			if records, ok := first["result"].([]interface{}); ok {
				return records
			}
			return nil
		}
	}
	// Direct array format
	return result
}

// extractCount extracts count from a `SELECT count() ... GROUP ALL` result
func extractCount(result interface{}) int {
	if data, ok := result.(map[string]interface{}); ok {
		return extractCountValue(data["count"])
	}
	return extractCountValue(result)
}

// extractCountValue converts various numeric types to int
func extractCountValue(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	}
	return 0
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// decodeRecord converts one SurrealDB record into T.
// The id is reduced to its bare key and datetimes are normalised so the
// JSON round trip into the model succeeds.
func decodeRecord[T any](record interface{}) (*T, error) {
	if record == nil {
		return nil, database.ErrNotFound
	}

	data, ok := record.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected record format %T", record)
	}

	if id, ok := data["id"]; ok {
		data["id"] = convertSurrealID(id)
	}
	for _, key := range []string{"created_on", "updated_on"} {
		if v, ok := data[key]; ok {
			if t := parseTime(v); !t.IsZero() {
				data[key] = t
			} else {
				delete(data, key)
			}
		}
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(jsonBytes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeRecords converts every record of the first statement into T
func decodeRecords[T any](result []interface{}) ([]*T, error) {
	records := extractQueryResults(result)
	out := make([]*T, 0, len(records))
	for _, record := range records {
		item, err := decodeRecord[T](record)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// getOne runs a single-record query and decodes it. A missing record yields (nil, nil).
func getOne[T any](ctx context.Context, db database.Database, query string, vars map[string]interface{}) (*T, error) {
	result, err := db.QueryOne(ctx, query, vars)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	item, err := decodeRecord[T](result)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// getMany runs a list query and decodes every record
func getMany[T any](ctx context.Context, db database.Database, query string, vars map[string]interface{}) ([]*T, error) {
	result, err := db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeRecords[T](result)
}

// queryIDs runs a query selecting record ids and returns their keys
func queryIDs(ctx context.Context, db database.Database, query string, vars map[string]interface{}) ([]string, error) {
	result, err := db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	records := extractQueryResults(result)
	ids := make([]string, 0, len(records))
	for _, record := range records {
		switch v := record.(type) {
		case map[string]interface{}:
			ids = append(ids, convertSurrealID(v["id"]))
		default:
			ids = append(ids, convertSurrealID(v))
		}
	}
	return ids, nil
}

// setClause builds a deterministic "a = $a, b = $b" clause from the keys of fields
func setClause(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s = $%s", key, key))
	}
	return strings.Join(parts, ", ")
}

// seedVars returns the seed bookkeeping fields of a record
func seedVars(a model.Audit) map[string]interface{} {
	return map[string]interface{}{
		"seeded":     a.Seeded,
		"seed_batch": a.SeedBatch,
	}
}

// createRecord creates table:id with fields plus audit columns and returns the stored timestamps
func createRecord(ctx context.Context, db database.Database, table, id string, audit *model.Audit, fields map[string]interface{}) error {
	vars := make(map[string]interface{}, len(fields)+6)
	for k, v := range fields {
		vars[k] = v
	}
	for k, v := range seedVars(*audit) {
		vars[k] = v
	}
	vars["created_by"] = audit.CreatedBy
	vars["updated_by"] = audit.CreatedBy

	query := fmt.Sprintf(
		"CREATE type::thing($tb, $id) SET %s, created_on = time::now(), updated_on = time::now()",
		setClause(vars),
	)
	vars["tb"] = table
	vars["id"] = id

	result, err := db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("%w: %s %s", database.ErrDuplicate, table, id)
		}
		return err
	}

	if data, ok := result.(map[string]interface{}); ok {
		audit.CreatedOn = parseTime(data["created_on"])
		audit.UpdatedOn = parseTime(data["updated_on"])
	}
	audit.UpdatedBy = audit.CreatedBy
	return nil
}

// updateRecord sets fields on table:id and refreshes updated_by and updated_on.
// It returns database.ErrNotFound when the record does not exist.
func updateRecord(ctx context.Context, db database.Database, table, id string, audit *model.Audit, fields map[string]interface{}) error {
	vars := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		vars[k] = v
	}
	vars["updated_by"] = audit.UpdatedBy

	query := fmt.Sprintf(
		"UPDATE type::thing($tb, $id) SET %s, updated_on = time::now() WHERE id = type::thing($tb, $id)",
		setClause(vars),
	)
	vars["tb"] = table
	vars["id"] = id

	result, err := db.QueryOne(ctx, query, vars)
	if err != nil {
		return err
	}
	if data, ok := result.(map[string]interface{}); ok {
		audit.UpdatedOn = parseTime(data["updated_on"])
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

// deleteRecord removes table:id
func deleteRecord(ctx context.Context, db database.Database, table, id string) error {
	return db.Execute(ctx, `DELETE type::thing($tb, $id)`, map[string]interface{}{"tb": table, "id": id})
}

// emptyIfNil keeps list columns from being stored as NONE
func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
