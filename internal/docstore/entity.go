package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

const tableRecords = "records"

var recordColumns = []string{"id", "kind", "fields", "unindexed"}

type recordRow struct {
	ID        int64          `db:"id"`
	Kind      string         `db:"kind"`
	Fields    types.JSONText `db:"fields"`
	Unindexed pq.StringArray `db:"unindexed"`
}

func encodeFields(fields []Field) (types.JSONText, pq.StringArray, error) {
	doc := make(map[string]interface{}, len(fields))
	var unindexed pq.StringArray
	for _, f := range fields {
		doc[f.Name] = f.Value
		if f.NoIndex {
			unindexed = append(unindexed, f.Name)
		}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, errors.Wrap(err, "marshal field list")
	}
	return types.JSONText(raw), unindexed, nil
}

func decodeRow(row recordRow) (Entity, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(row.Fields, &doc); err != nil {
		return Entity{}, errors.Wrapf(err, "unmarshal fields of %s/%d", row.Kind, row.ID)
	}
	noIndex := make(map[string]bool, len(row.Unindexed))
	for _, name := range row.Unindexed {
		noIndex[name] = true
	}
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{
			Name:    name,
			Value:   doc[name],
			NoIndex: noIndex[name],
		})
	}
	return Entity{
		Key:    Key{Kind: row.Kind, ID: row.ID},
		Fields: fields,
	}, nil
}

// Put persists the field list under the given key, replacing any previously
// stored fields in full. A key with a zero ID allocates a fresh identity; the
// resolved key is returned.
func (s *Store) Put(ctx context.Context, key Key, fields []Field) (Key, error) {
	doc, unindexed, err := encodeFields(fields)
	if err != nil {
		return Key{}, err
	}

	var qv QueryValues
	if key.ID == 0 {
		qv, err = buildInsertRecordQuery(key.Kind, doc, unindexed)
	} else {
		qv, err = buildUpsertRecordQuery(key, doc, unindexed)
	}
	if err != nil {
		return Key{}, errors.Wrap(err, "build put record query")
	}

	var id int64
	err = s.sqldb.GetContext(ctx, &id, qv.query, qv.args...)
	if err == sql.ErrNoRows {
		// The identity exists under another kind; never cross kinds.
		return Key{}, errors.Wrapf(ErrNoSuchEntity, "put %s/%d", key.Kind, key.ID)
	}
	if err != nil {
		return Key{}, errors.Wrap(err, "execute put record query")
	}
	return Key{Kind: key.Kind, ID: id}, nil
}

func buildInsertRecordQuery(kind string, doc types.JSONText, unindexed pq.StringArray) (QueryValues, error) {
	q, args, err := psql.
		Insert(tableRecords).
		Columns("kind", "fields", "unindexed").
		Values(kind, doc, unindexed).
		Suffix("RETURNING id").
		ToSql()

	return QueryValues{q, args}, errors.Wrap(err, "insert record build query into SQL string")
}

func buildUpsertRecordQuery(key Key, doc types.JSONText, unindexed pq.StringArray) (QueryValues, error) {
	q, args, err := psql.
		Insert(tableRecords).
		Columns("id", "kind", "fields", "unindexed").
		Values(key.ID, key.Kind, doc, unindexed).
		Suffix("ON CONFLICT (id) DO UPDATE SET fields = EXCLUDED.fields, unindexed = EXCLUDED.unindexed WHERE records.kind = EXCLUDED.kind RETURNING id").
		ToSql()

	return QueryValues{q, args}, errors.Wrap(err, "upsert record build query into SQL string")
}

// Get loads the entity stored under the given key.
func (s *Store) Get(ctx context.Context, key Key) (Entity, error) {
	qv, err := buildGetRecordQuery(key, false)
	if err != nil {
		return Entity{}, errors.Wrap(err, "build get record query")
	}

	var row recordRow
	err = s.sqldb.GetContext(ctx, &row, qv.query, qv.args...)
	if err == sql.ErrNoRows {
		return Entity{}, errors.Wrapf(ErrNoSuchEntity, "get %s/%d", key.Kind, key.ID)
	}
	if err != nil {
		return Entity{}, errors.Wrap(err, "execute get record query")
	}
	return decodeRow(row)
}

func buildGetRecordQuery(key Key, forUpdate bool) (QueryValues, error) {
	b := psql.
		Select(recordColumns...).
		From(tableRecords).
		Where(sq.Eq{"id": key.ID, "kind": key.Kind})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	q, args, err := b.ToSql()

	return QueryValues{q, args}, errors.Wrap(err, "get record build query into SQL string")
}

// Delete removes the entity stored under the given key.
func (s *Store) Delete(ctx context.Context, key Key) error {
	qv, err := buildDeleteRecordQuery(key)
	if err != nil {
		return errors.Wrap(err, "build delete record query")
	}

	res, err := s.sqldb.ExecContext(ctx, qv.query, qv.args...)
	if err != nil {
		return errors.Wrap(err, "execute delete record query")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete record rows affected")
	}
	if n == 0 {
		return errors.Wrapf(ErrNoSuchEntity, "delete %s/%d", key.Kind, key.ID)
	}
	return nil
}

func buildDeleteRecordQuery(key Key) (QueryValues, error) {
	q, args, err := psql.
		Delete(tableRecords).
		Where(sq.Eq{"id": key.ID, "kind": key.Kind}).
		ToSql()

	return QueryValues{q, args}, errors.Wrap(err, "delete record build query into SQL string")
}

// Modify runs a read-modify-write on a single entity while holding a row lock,
// so concurrent Modify calls against the same key serialize instead of losing
// writes. fn receives the current field list and returns the replacement.
func (s *Store) Modify(ctx context.Context, key Key, fn func([]Field) ([]Field, error)) ([]Field, error) {
	if key.ID == 0 {
		return nil, errors.Wrap(ErrNoSuchEntity, "modify requires an allocated identity")
	}

	tx, err := s.sqldb.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin modify transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	qv, err := buildGetRecordQuery(key, true)
	if err != nil {
		return nil, errors.Wrap(err, "build modify select query")
	}
	var row recordRow
	err = tx.GetContext(ctx, &row, qv.query, qv.args...)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNoSuchEntity, "modify %s/%d", key.Kind, key.ID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "execute modify select query")
	}

	entity, err := decodeRow(row)
	if err != nil {
		return nil, err
	}
	fields, err := fn(entity.Fields)
	if err != nil {
		return nil, err
	}

	doc, unindexed, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}
	qv, err = buildUpdateRecordQuery(key, doc, unindexed)
	if err != nil {
		return nil, errors.Wrap(err, "build modify update query")
	}
	if _, err := tx.ExecContext(ctx, qv.query, qv.args...); err != nil {
		return nil, errors.Wrap(err, "execute modify update query")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit modify transaction")
	}
	return fields, nil
}

func buildUpdateRecordQuery(key Key, doc types.JSONText, unindexed pq.StringArray) (QueryValues, error) {
	q, args, err := psql.
		Update(tableRecords).
		Set("fields", doc).
		Set("unindexed", unindexed).
		Where(sq.Eq{"id": key.ID, "kind": key.Kind}).
		ToSql()

	return QueryValues{q, args}, errors.Wrap(err, "update record build query into SQL string")
}
