package docstore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

// Run executes an ordered query over a single kind. It returns up to q.Limit
// entities, the cursor marking the position after the last one, and whether
// more results exist beyond this page.
//
// Entities that lack the order field, or store it unindexed, are not part of
// the ordering and are excluded from the results.
func (s *Store) Run(ctx context.Context, q Query) ([]Entity, string, bool, error) {
	if q.Limit <= 0 {
		return nil, "", false, errors.New("query limit must be positive")
	}

	var cur *pageCursor
	if q.Cursor != "" {
		c, err := decodeCursor(q.Cursor, q.Order)
		if err != nil {
			return nil, "", false, err
		}
		cur = c
	}

	qv, err := buildRunQuery(q, cur)
	if err != nil {
		return nil, "", false, errors.Wrap(err, "build run query")
	}

	var rows []recordRow
	err = s.sqldb.SelectContext(ctx, &rows, qv.query, qv.args...)
	if err != nil {
		return nil, "", false, errors.Wrap(err, "execute run query")
	}

	more := len(rows) > q.Limit
	if more {
		rows = rows[:q.Limit]
	}

	entities := make([]Entity, 0, len(rows))
	for _, row := range rows {
		e, err := decodeRow(row)
		if err != nil {
			return nil, "", false, err
		}
		entities = append(entities, e)
	}

	var next string
	if more {
		last := entities[len(entities)-1]
		v, ok := fieldValue(last, q.Order.Field)
		if !ok {
			return nil, "", false, errors.Errorf("entity %d missing order field %q", last.Key.ID, q.Order.Field)
		}
		next = encodeCursor(pageCursor{
			Field: q.Order.Field,
			Desc:  q.Order.Descending,
			Value: v,
			ID:    last.Key.ID,
		})
	}
	return entities, next, more, nil
}

// buildRunQuery produces the keyset-paginated SQL for a Query. The page
// position is the (order value, id) pair of the last returned row; resuming
// compares against that pair rather than using an offset, so pages stay
// stable as earlier rows come and go.
func buildRunQuery(q Query, cur *pageCursor) (QueryValues, error) {
	expr := orderExpr(q.Order.Field, q.Order.Kind)

	b := psql.
		Select(recordColumns...).
		From(tableRecords).
		Where(sq.Eq{"kind": q.Kind}).
		Where(sq.Expr("fields ?? ?", q.Order.Field)).
		Where(sq.Expr("NOT (? = ANY(unindexed))", q.Order.Field))

	if cur != nil {
		cmp := ">"
		if q.Order.Descending {
			cmp = "<"
		}
		b = b.Where(sq.Expr(fmt.Sprintf("(%s, id) %s (?, ?)", expr, cmp), cur.Value, cur.ID))
	}

	dir := "ASC"
	if q.Order.Descending {
		dir = "DESC"
	}
	query, args, err := b.
		OrderBy(expr+" "+dir, "id "+dir).
		Limit(uint64(q.Limit + 1)).
		ToSql()

	return QueryValues{query, args}, errors.Wrap(err, "run build query into SQL string")
}

func fieldValue(e Entity, name string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}
