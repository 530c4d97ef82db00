package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
)

// Querier abstracts *sql.DB and *sql.Tx; alias of the booking package's
// interface so repositories satisfy booking.ConflictSource directly.
type Querier = booking.Querier

// RunInTx runs fn inside a transaction with the given options and commits
// on success. Driver errors from fn are classified onto the repository
// sentinels.
func RunInTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf(errFmtBeginTx, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return classifyOracleError(err)
	}
	if err := tx.Commit(); err != nil {
		return classifyOracleError(fmt.Errorf(errFmtCommitTx, err))
	}
	return nil
}

// SerializableTxOptions is the isolation level for the booking-race
// invariant: the availability check and the insert or transition must
// land in one serializable transaction.
var SerializableTxOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}

// ═══════════════════════════════════════════════════════════════════════════
// SQL NULL HELPERS - Conversion between Go types and sql.Null* types
// ═══════════════════════════════════════════════════════════════════════════

// NullableString returns a sql.NullString for a string value.
// Empty strings result in a NULL database value.
func NullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// NullableStringPtr returns a sql.NullString for a *string value.
func NullableStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullableTime returns a sql.NullTime for a *time.Time value.
func NullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// StringFromNull extracts the string value from a sql.NullString.
// Returns empty string if null.
func StringFromNull(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// StringPtrFromNull extracts a *string from a sql.NullString.
func StringPtrFromNull(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

// TimeFromNull extracts the *time.Time value from a sql.NullTime.
// Returns nil if null.
func TimeFromNull(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// TimeValueFromNull extracts a time.Time from a sql.NullTime, zero if null.
func TimeValueFromNull(nt sql.NullTime) time.Time {
	if nt.Valid {
		return nt.Time
	}
	return time.Time{}
}

// ═══════════════════════════════════════════════════════════════════════════
// BOOLEAN HELPERS - Oracle doesn't have native BOOLEAN, uses NUMBER(1)
// ═══════════════════════════════════════════════════════════════════════════

// BoolToInt converts a boolean to an int for Oracle NUMBER(1) storage.
// true -> 1, false -> 0
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// IntToBool converts an Oracle NUMBER(1) to boolean.
// 1 -> true, anything else -> false
func IntToBool(i int) bool {
	return i == 1
}

// ═══════════════════════════════════════════════════════════════════════════
// IN CLAUSE BUILDER - Build Oracle IN clauses with positional parameters
// ═══════════════════════════════════════════════════════════════════════════

// MaxInClauseSize is the maximum number of items in an IN clause.
// Oracle has a limit of 1000 items per IN clause.
const MaxInClauseSize = 1000

// InClauseBuilder helps build Oracle IN clauses with positional params.
type InClauseBuilder struct {
	placeholders []string
	args         []interface{}
	startIdx     int
}

// NewInClauseBuilder creates a new InClauseBuilder starting at the given parameter index.
func NewInClauseBuilder(startIdx int) *InClauseBuilder {
	return &InClauseBuilder{
		startIdx: startIdx,
	}
}

// Add adds a value to the IN clause.
func (b *InClauseBuilder) Add(value interface{}) {
	idx := b.startIdx + len(b.args)
	b.placeholders = append(b.placeholders, fmt.Sprintf(":%d", idx))
	b.args = append(b.args, value)
}

// Placeholders returns the comma-separated placeholder string.
func (b *InClauseBuilder) Placeholders() string {
	return strings.Join(b.placeholders, ", ")
}

// Args returns the argument values.
func (b *InClauseBuilder) Args() []interface{} {
	return b.args
}

// NextIndex returns the next available parameter index.
func (b *InClauseBuilder) NextIndex() int {
	return b.startIdx + len(b.args)
}

// ═══════════════════════════════════════════════════════════════════════════
// QUERY BUILDER HELPERS - Dynamic WHERE clause construction
// ═══════════════════════════════════════════════════════════════════════════

// QueryBuilder helps construct dynamic SQL queries with Oracle positional params.
type QueryBuilder struct {
	conditions []string
	args       []interface{}
	nextIdx    int
}

// NewQueryBuilder creates a new QueryBuilder starting at the given parameter index.
func NewQueryBuilder(startIdx int) *QueryBuilder {
	return &QueryBuilder{
		nextIdx: startIdx,
	}
}

// AddCondition adds a condition with a single placeholder.
// The placeholder in the condition should be %d which will be replaced with :N.
func (b *QueryBuilder) AddCondition(conditionFmt string, value interface{}) {
	condition := fmt.Sprintf(conditionFmt, b.nextIdx)
	b.conditions = append(b.conditions, condition)
	b.args = append(b.args, value)
	b.nextIdx++
}

// WhereClause returns the WHERE conditions joined with AND.
// Returns empty string if no conditions.
func (b *QueryBuilder) WhereClause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " AND " + strings.Join(b.conditions, " AND ")
}

// Args returns all accumulated arguments.
func (b *QueryBuilder) Args() []interface{} {
	return b.args
}

// NextIndex returns the next available parameter index.
func (b *QueryBuilder) NextIndex() int {
	return b.nextIdx
}

// ═══════════════════════════════════════════════════════════════════════════
// SORT VALIDATION
// ═══════════════════════════════════════════════════════════════════════════

// getSortClause returns validated sort column and direction. defaultSort is
// itself validated against the allowed map; invalid sortBy values fall back
// to the default.
func getSortClause(sortBy, sortDir string, allowed map[string]bool, defaultSort string) (string, string) {
	col := defaultSort
	if defaultSort != "" && !allowed[defaultSort] {
		col = getDeterministicFallbackSortColumn(allowed)
	}
	if sortBy != "" && allowed[sortBy] {
		col = sortBy
	}

	dir := "DESC"
	if strings.ToUpper(sortDir) == "ASC" {
		dir = "ASC"
	}
	return col, dir
}

func getDeterministicFallbackSortColumn(allowed map[string]bool) string {
	if allowed["id"] {
		return "id"
	}
	if allowed["created_at"] {
		return "created_at"
	}
	keys := make([]string, 0, len(allowed))
	for k := range allowed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		return keys[0]
	}
	return "id"
}

// ChunkSlice splits a slice into chunks of the specified size.
func ChunkSlice[T any](slice []T, chunkSize int) [][]T {
	if chunkSize <= 0 {
		chunkSize = MaxInClauseSize
	}
	if len(slice) == 0 {
		return nil
	}

	var chunks [][]T
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}
