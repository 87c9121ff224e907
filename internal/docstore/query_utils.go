package docstore

import (
	"fmt"

	"github.com/lib/pq"
)

type QueryValues struct {
	query string
	args  []interface{}
}

// orderExpr returns the SQL expression a query orders by. Numeric fields are
// cast so that "9" sorts before "10".
func orderExpr(field string, kind FieldKind) string {
	lit := pq.QuoteLiteral(field)
	if kind == FieldNumber {
		return fmt.Sprintf("((fields->>%s)::double precision)", lit)
	}
	return fmt.Sprintf("(fields->>%s)", lit)
}
