package docstore

import (
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/twitsprout/tools"
	"github.com/twitsprout/tools/postgres"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

// Config holds the connection options for the backing database.
type Config postgres.Config

var matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
var matchAllCap = regexp.MustCompile("([a-z0-9])([A-Z])")

func ToSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}

// ErrNoSuchEntity is returned when no entity exists for a requested key.
var ErrNoSuchEntity = errors.New("docstore: no such entity")

// ErrInvalidCursor is returned when a cursor cannot be decoded, or when it was
// produced by a query with a different ordering than the one resuming it.
var ErrInvalidCursor = errors.New("docstore: invalid cursor")

// Key identifies a single entity: a kind plus a store-assigned integer
// identity. Identities are allocated by the store and never reused across
// kinds.
type Key struct {
	Kind string
	ID   int64
}

// Field is one element of an entity's field-list representation. NoIndex
// excludes the field from ordered queries.
type Field struct {
	Name    string
	Value   interface{}
	NoIndex bool
}

// Entity is the store-side representation of a record.
type Entity struct {
	Key    Key
	Fields []Field
}

// FieldKind describes how a field's value is compared when ordering.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
)

// Order describes the ordering of a query.
type Order struct {
	Field      string
	Kind       FieldKind
	Descending bool
}

// Query describes an ordered, limited, cursor-resumable query over a kind.
type Query struct {
	Kind   string
	Limit  int
	Order  Order
	Cursor string
}

// Store is a key-ordered document store backed by PostgreSQL. Entities are
// persisted as one row per key with their field list in a jsonb column.
type Store struct {
	sqldb *sqlx.DB
	db    *postgres.DB
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// New creates a new document store on top of the configured database.
func New(c Config, sc tools.StatsClient) (*Store, error) {
	db, err := postgres.NewDB(postgres.Config(c))
	if err != nil {
		return nil, err
	}
	sqldb := sqlx.NewDb(db.SQLDB(), "postgres")
	sqldb.MapperFunc(ToSnakeCase)
	return &Store{sqldb: sqldb, db: db}, nil
}

// Close releases the underlying database connections.
func (s *Store) Close() error {
	return s.db.Close()
}
