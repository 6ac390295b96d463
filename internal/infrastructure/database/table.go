package database

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/utils"
	pkgdb "cinenacional-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Relation is a table whose Key column references this table's id.
// Target is the column on the other side, used by Has filters and link writes.
type Relation struct {
	Table  string
	Key    string
	Target string
}

// TableSpec describes a catalogue table. Every identifier that reaches SQL
// comes from here, never from the request.
type TableSpec struct {
	Name     string
	Columns  []string
	Writable []string
	// Relations by name; ListCounts and DetailCounts select "<name>_count" columns.
	Relations    map[string]Relation
	ListCounts   []string
	DetailCounts []string
	// Timestamps adds "updated_at = NOW()" to updates.
	Timestamps bool
}

// Hydrator loads data the flat select cannot, such as linked records.
type Hydrator[T any] func(ctx context.Context, q Querier, items []T, shape crud.Shape) error

// Table is a crud.Store over one PostgreSQL table.
type Table[T crud.Entity] struct {
	pool    *pgxpool.Pool
	spec    TableSpec
	hydrate Hydrator[T]
}

// NewTable binds spec to pool. hydrate may be nil.
func NewTable[T crud.Entity](pool *pgxpool.Pool, spec TableSpec, hydrate Hydrator[T]) *Table[T] {
	return &Table[T]{pool: pool, spec: spec, hydrate: hydrate}
}

// Spec returns the table description.
func (t *Table[T]) Spec() TableSpec { return t.spec }

func (t *Table[T]) HasField(name string) bool { return t.spec.HasField(name) }

func (t *Table[T]) HasRelation(name string) bool {
	_, ok := t.spec.Relations[name]
	return ok
}

func (t *Table[T]) List(ctx context.Context, q crud.ListQuery) ([]T, error) {
	sql, args, err := t.spec.BuildList(q)
	if err != nil {
		return nil, err
	}
	rows, err := t.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, MapError(err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, MapError(err)
	}
	if err := t.hydrateAll(ctx, t.pool, items, q.Shape); err != nil {
		return nil, err
	}
	return items, nil
}

func (t *Table[T]) Count(ctx context.Context, q crud.ListQuery) (int64, error) {
	sql, args, err := t.spec.BuildCount(q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := t.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

func (t *Table[T]) FindByID(ctx context.Context, id int64, shape crud.Shape) (T, error) {
	return t.findByID(ctx, t.pool, id, shape)
}

func (t *Table[T]) findByID(ctx context.Context, q Querier, id int64, shape crud.Shape) (T, error) {
	var zero T
	sql := fmt.Sprintf("SELECT %s FROM %s t WHERE t.id = $1", t.spec.selectList(shape), t.spec.Name)
	rows, err := q.Query(ctx, sql, id)
	if err != nil {
		return zero, MapError(err)
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return zero, MapError(err)
	}
	items := []T{item}
	if err := t.hydrateAll(ctx, q, items, shape); err != nil {
		return zero, err
	}
	return items[0], nil
}

func (t *Table[T]) Create(ctx context.Context, p crud.Payload) (T, error) {
	sql, args, err := t.spec.BuildInsert(p.Fields)
	if err != nil {
		var zero T
		return zero, err
	}
	return pkgdb.WithTransactionResult(ctx, t.pool, func(tx pgx.Tx) (T, error) {
		var zero T
		rows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return zero, MapError(err)
		}
		item, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[T])
		if err != nil {
			return zero, MapError(err)
		}
		if err := t.writeLinks(ctx, tx, item.EntityID(), p.Links); err != nil {
			return zero, err
		}
		return item, nil
	})
}

func (t *Table[T]) Update(ctx context.Context, id int64, p crud.Payload) (T, error) {
	return pkgdb.WithTransactionResult(ctx, t.pool, func(tx pgx.Tx) (T, error) {
		var zero T
		if len(p.Fields) > 0 {
			sql, args, err := t.spec.BuildUpdate(id, p.Fields)
			if err != nil {
				return zero, err
			}
			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return zero, MapError(err)
			}
			if tag.RowsAffected() == 0 {
				return zero, crud.ErrNotFound
			}
		}
		if err := t.writeLinks(ctx, tx, id, p.Links); err != nil {
			return zero, err
		}
		return t.findByID(ctx, tx, id, crud.ShapeList)
	})
}

func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	tag, err := t.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.spec.Name), id)
	if err != nil {
		return MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return crud.ErrNotFound
	}
	return nil
}

func (t *Table[T]) CountRelation(ctx context.Context, id int64, relation string) (int64, error) {
	rel, ok := t.spec.Relations[relation]
	if !ok {
		return 0, fmt.Errorf("%s: unknown relation %q", t.spec.Name, relation)
	}
	var n int64
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", rel.Table, rel.Key)
	if err := t.pool.QueryRow(ctx, sql, id).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// writeLinks replaces the link rows of each relation in links.
func (t *Table[T]) writeLinks(ctx context.Context, q Querier, id int64, links map[string][]int64) error {
	for _, name := range sortedKeys(links) {
		rel, ok := t.spec.Relations[name]
		if !ok || rel.Target == "" {
			return fmt.Errorf("%s: relation %q cannot be linked", t.spec.Name, name)
		}
		if _, err := q.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", rel.Table, rel.Key), id); err != nil {
			return MapError(err)
		}
		ids := links[name]
		if len(ids) == 0 {
			continue
		}
		sql := fmt.Sprintf(
			"INSERT INTO %s (%s, %s) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING",
			rel.Table, rel.Key, rel.Target,
		)
		if _, err := q.Exec(ctx, sql, id, ids); err != nil {
			return MapError(err)
		}
	}
	return nil
}

func (t *Table[T]) hydrateAll(ctx context.Context, q Querier, items []T, shape crud.Shape) error {
	if t.hydrate == nil || len(items) == 0 {
		return nil
	}
	if err := t.hydrate(ctx, q, items, shape); err != nil {
		return fmt.Errorf("hydrate %s: %w", t.spec.Name, MapError(err))
	}
	return nil
}

// HasField reports whether name is a selectable column.
func (s TableSpec) HasField(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func (s TableSpec) writable(name string) bool {
	for _, c := range s.Writable {
		if c == name {
			return true
		}
	}
	return false
}

func (s TableSpec) selectList(shape crud.Shape) string {
	cols := make([]string, 0, len(s.Columns)+len(s.DetailCounts))
	for _, c := range s.Columns {
		cols = append(cols, "t."+c)
	}
	counts := s.ListCounts
	if shape == crud.ShapeDetail {
		counts = append(append([]string{}, s.ListCounts...), s.DetailCounts...)
	}
	seen := map[string]bool{}
	for _, name := range counts {
		rel, ok := s.Relations[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		cols = append(cols, fmt.Sprintf("(SELECT COUNT(*) FROM %s r WHERE r.%s = t.id) AS %s_count", rel.Table, rel.Key, name))
	}
	return strings.Join(cols, ", ")
}

type argList struct {
	args []any
}

func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return "$" + strconv.Itoa(len(a.args))
}

func (s TableSpec) where(q crud.ListQuery, a *argList) (string, error) {
	var clauses []string

	if q.Search != "" && len(q.SearchFields) > 0 {
		ph := a.add("%" + utils.EscapeLike(q.Search) + "%")
		var ors []string
		for _, f := range q.SearchFields {
			if !s.HasField(f) {
				return "", fmt.Errorf("%s: search field %q is not a column", s.Name, f)
			}
			ors = append(ors, fmt.Sprintf("t.%s ILIKE %s", f, ph))
		}
		clauses = append(clauses, "("+utils.JoinWithOr(ors)+")")
	}

	for _, f := range q.Filters {
		clause, err := s.filterClause(f, a)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + utils.JoinWithAnd(clauses), nil
}

func (s TableSpec) filterClause(f crud.Filter, a *argList) (string, error) {
	switch f.Op {
	case crud.OpHas, crud.OpHasAny:
		rel, ok := s.Relations[f.Field]
		if !ok {
			return "", fmt.Errorf("%s: unknown relation %q", s.Name, f.Field)
		}
		if f.Op == crud.OpHas {
			if rel.Target == "" {
				return "", fmt.Errorf("%s: relation %q has no target column", s.Name, f.Field)
			}
			return fmt.Sprintf("EXISTS (SELECT 1 FROM %s r WHERE r.%s = t.id AND r.%s = %s)", rel.Table, rel.Key, rel.Target, a.add(f.Value)), nil
		}
		exists := fmt.Sprintf("EXISTS (SELECT 1 FROM %s r WHERE r.%s = t.id)", rel.Table, rel.Key)
		if yes, _ := f.Value.(bool); !yes {
			return "NOT " + exists, nil
		}
		return exists, nil
	}

	if !s.HasField(f.Field) {
		return "", fmt.Errorf("%s: filter field %q is not a column", s.Name, f.Field)
	}
	switch f.Op {
	case crud.OpEq:
		return fmt.Sprintf("t.%s = %s", f.Field, a.add(f.Value)), nil
	case crud.OpGte:
		return fmt.Sprintf("t.%s >= %s", f.Field, a.add(f.Value)), nil
	case crud.OpLte:
		return fmt.Sprintf("t.%s <= %s", f.Field, a.add(f.Value)), nil
	case crud.OpIsNull:
		return fmt.Sprintf("t.%s IS NULL", f.Field), nil
	}
	return "", fmt.Errorf("%s: unsupported filter op %q", s.Name, f.Op)
}

// BuildList renders the page query.
func (s TableSpec) BuildList(q crud.ListQuery) (string, []any, error) {
	a := &argList{}
	where, err := s.where(q, a)
	if err != nil {
		return "", nil, err
	}

	sortCol := q.Sort
	if sortCol == "" {
		sortCol = "id"
	}
	if !s.HasField(sortCol) {
		return "", nil, fmt.Errorf("%s: sort field %q is not a column", s.Name, sortCol)
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s t%s ORDER BY t.%s %s", s.selectList(q.Shape), s.Name, where, sortCol, dir)
	if sortCol != "id" {
		sb.WriteString(", t.id ASC")
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %s", a.add(q.Limit))
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %s", a.add(q.Offset))
	}
	return sb.String(), a.args, nil
}

// BuildCount renders the total query for the same filters.
func (s TableSpec) BuildCount(q crud.ListQuery) (string, []any, error) {
	a := &argList{}
	where, err := s.where(q, a)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s t%s", s.Name, where), a.args, nil
}

// BuildInsert renders INSERT ... RETURNING the base columns.
func (s TableSpec) BuildInsert(fields map[string]any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%s: nothing to insert", s.Name)
	}
	a := &argList{}
	cols := make([]string, 0, len(fields))
	phs := make([]string, 0, len(fields))
	for _, k := range sortedKeys(fields) {
		if !s.writable(k) {
			return "", nil, fmt.Errorf("%s: column %q is not writable", s.Name, k)
		}
		cols = append(cols, k)
		phs = append(phs, a.add(fields[k]))
	}
	sql := fmt.Sprintf("INSERT INTO %s AS t (%s) VALUES (%s) RETURNING %s",
		s.Name, strings.Join(cols, ", "), strings.Join(phs, ", "), s.selectList(crud.ShapeList))
	return sql, a.args, nil
}

// BuildUpdate renders UPDATE ... WHERE id.
func (s TableSpec) BuildUpdate(id int64, fields map[string]any) (string, []any, error) {
	a := &argList{}
	sets := make([]string, 0, len(fields)+1)
	for _, k := range sortedKeys(fields) {
		if !s.writable(k) {
			return "", nil, fmt.Errorf("%s: column %q is not writable", s.Name, k)
		}
		sets = append(sets, fmt.Sprintf("%s = %s", k, a.add(fields[k])))
	}
	if s.Timestamps {
		sets = append(sets, "updated_at = NOW()")
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s", s.Name, strings.Join(sets, ", "), a.add(id))
	return sql, a.args, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
