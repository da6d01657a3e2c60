package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kelydev/apiTramite/models"
)

type scanner interface {
	Scan(dest ...any) error
}

// table implements Store for a single SQL table. Each resource describes its
// columns once and gets paginated listing, unaccented search and CRUD.
type table[T models.Entity[T]] struct {
	db    *sql.DB
	name  string
	idCol string
	// cols are selected after idCol, in the order scan expects them.
	cols []string
	// writeCols are set on insert/update, in the order values returns them.
	writeCols []string
	search    []string
	filters   map[string]string
	orderBy   string
	touch     bool // table has an updated_at column
	scan      func(row scanner) (T, error)
	values    func(item T) []any
}

func (t *table[T]) selectList() string {
	return t.idCol + ", " + strings.Join(t.cols, ", ")
}

// where builds the WHERE clause shared by the page and count queries.
func (t *table[T]) where(q Query) (string, []any) {
	conditions := []string{}
	args := []any{}
	n := 1

	if term := strings.TrimSpace(q.Search); term != "" && len(t.search) > 0 {
		ors := make([]string, 0, len(t.search))
		for _, col := range t.search {
			ors = append(ors, fmt.Sprintf(`unaccent(%s::text) ILIKE unaccent($%d) ESCAPE '\'`, col, n))
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
		args = append(args, containsPattern(term))
		n++
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		col, ok := t.filters[k]
		if !ok {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, q.Filters[k])
		n++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (t *table[T]) List(ctx context.Context, q Query) ([]T, int, error) {
	whereClause, args := t.where(q)

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s`, t.selectList(), t.name, whereClause, t.orderBy)
	pageArgs := args
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		pageArgs = append(append([]any{}, args...), q.Limit, q.Offset)
	}

	rows, err := t.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying %s page: %w", t.name, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		it, err := t.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning %s row: %w", t.name, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error after iterating through %s rows: %w", t.name, err)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, t.name, whereClause)
	if err := t.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error querying total %s count: %w", t.name, err)
	}
	return items, total, nil
}

func (t *table[T]) Get(ctx context.Context, id int) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, t.selectList(), t.name, t.idCol)
	it, err := t.scan(t.db.QueryRowContext(ctx, query, id))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("error getting %s by ID: %w", t.name, err)
	}
	return it, nil
}

func (t *table[T]) Create(ctx context.Context, item T) (T, error) {
	placeholders := make([]string, len(t.writeCols))
	for i := range t.writeCols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		t.name, strings.Join(t.writeCols, ", "), strings.Join(placeholders, ", "), t.selectList())

	created, err := t.scan(t.db.QueryRowContext(ctx, query, t.values(item)...))
	if err != nil {
		var zero T
		return zero, translate("inserting "+t.name, err)
	}
	return created, nil
}

func (t *table[T]) Update(ctx context.Context, item T) (T, error) {
	sets := make([]string, len(t.writeCols))
	for i, col := range t.writeCols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	if t.touch {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	}
	args := append(t.values(item), item.EntityID())
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d RETURNING %s`,
		t.name, strings.Join(sets, ", "), t.idCol, len(t.writeCols)+1, t.selectList())

	updated, err := t.scan(t.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, translate("updating "+t.name, err)
	}
	return updated, nil
}

func (t *table[T]) Delete(ctx context.Context, id int) error {
	res, err := t.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.name, t.idCol), id)
	if err != nil {
		return translate("deleting "+t.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting %s: %w", t.name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
