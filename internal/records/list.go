package records

import (
	"context"

	"albums-service/internal/docstore"
	cl "albums-service/pkg/catalog"

	"github.com/pkg/errors"
)

// orderings maps the allow-listed order fields to their comparison kinds. Any
// other requested ordering falls back to rating.
var orderings = map[string]docstore.FieldKind{
	"rating": docstore.FieldNumber,
	"title":  docstore.FieldText,
	"year":   docstore.FieldNumber,
}

const defaultOrder = "rating"

// ListAlbums returns one page of albums ordered by the requested field. The
// page token resumes a previous listing; a nil NextPageToken in the response
// means there are no more pages.
func (s *Store) ListAlbums(ctx context.Context, req cl.ListAlbumsReq) (cl.ListAlbumsRes, error) {
	var res cl.ListAlbumsRes

	order := req.Order
	kind, ok := orderings[order]
	if !ok {
		order = defaultOrder
		kind = orderings[defaultOrder]
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	entities, next, more, err := s.db.Run(ctx, docstore.Query{
		Kind:   cl.Kind,
		Limit:  limit,
		Cursor: req.PageToken,
		Order: docstore.Order{
			Field:      order,
			Kind:       kind,
			Descending: !req.Ascending,
		},
	})
	if errors.Cause(err) == docstore.ErrInvalidCursor {
		return res, errors.Wrap(cl.ErrInvalidPageToken, err.Error())
	}
	if err != nil {
		return res, errors.Wrap(err, "list albums")
	}

	items := make([]cl.Record, 0, len(entities))
	for _, e := range entities {
		items = append(items, fromStoreFormat(e))
	}
	res.Items = items
	if more {
		res.NextPageToken = &next
	}
	return res, nil
}
