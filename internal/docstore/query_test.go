package docstore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildRunQuery(t *testing.T) {
	table := []struct {
		label    string
		query    Query
		cursor   *pageCursor
		expQuery string
		expArgs  []interface{}
	}{
		{
			label: "should order by a numeric field ascending on the first page",
			query: Query{
				Kind:  "Album",
				Limit: 2,
				Order: Order{Field: "rating", Kind: FieldNumber},
			},
			expQuery: "SELECT id, kind, fields, unindexed FROM records " +
				"WHERE kind = $1 AND fields ? $2 AND NOT ($3 = ANY(unindexed)) " +
				"ORDER BY ((fields->>'rating')::double precision) ASC, id ASC LIMIT 3",
			expArgs: []interface{}{"Album", "rating", "rating"},
		},
		{
			label: "should resume after the cursor position when descending",
			query: Query{
				Kind:  "Album",
				Limit: 2,
				Order: Order{Field: "rating", Kind: FieldNumber, Descending: true},
			},
			cursor: &pageCursor{Field: "rating", Desc: true, Value: 4.5, ID: 42},
			expQuery: "SELECT id, kind, fields, unindexed FROM records " +
				"WHERE kind = $1 AND fields ? $2 AND NOT ($3 = ANY(unindexed)) " +
				"AND (((fields->>'rating')::double precision), id) < ($4, $5) " +
				"ORDER BY ((fields->>'rating')::double precision) DESC, id DESC LIMIT 3",
			expArgs: []interface{}{"Album", "rating", "rating", 4.5, int64(42)},
		},
		{
			label: "should compare a text field without a numeric cast",
			query: Query{
				Kind:  "Album",
				Limit: 5,
				Order: Order{Field: "title", Kind: FieldText},
			},
			expQuery: "SELECT id, kind, fields, unindexed FROM records " +
				"WHERE kind = $1 AND fields ? $2 AND NOT ($3 = ANY(unindexed)) " +
				"ORDER BY (fields->>'title') ASC, id ASC LIMIT 6",
			expArgs: []interface{}{"Album", "title", "title"},
		},
	}
	for i := 0; i < len(table); i++ {
		ts := table[i]
		t.Run(ts.label, func(t *testing.T) {
			qv, err := buildRunQuery(ts.query, ts.cursor)
			if err != nil {
				t.Fatalf("unexpected error building query: %s", err.Error())
			}
			if qv.query != ts.expQuery {
				t.Fatalf("unexpected query returned: %s", cmp.Diff(ts.expQuery, qv.query))
			}
			if !cmp.Equal(qv.args, ts.expArgs) {
				t.Fatalf("unexpected args returned: %s", cmp.Diff(ts.expArgs, qv.args))
			}
		})
	}
}
