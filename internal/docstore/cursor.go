package docstore

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// pageCursor is the decoded form of the opaque continuation token handed back
// from Run. It pins the ordering it was produced under so that a token cannot
// silently resume a differently-ordered query.
type pageCursor struct {
	Field string      `json:"f"`
	Desc  bool        `json:"d"`
	Value interface{} `json:"v"`
	ID    int64       `json:"id"`
}

func encodeCursor(c pageCursor) string {
	raw, err := json.Marshal(c)
	if err != nil {
		// All pageCursor values marshal; a failure here is a programming error.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(token string, o Order) (*pageCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidCursor, err.Error())
	}
	var c pageCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrap(ErrInvalidCursor, err.Error())
	}
	if c.Field != o.Field || c.Desc != o.Descending {
		return nil, errors.Wrapf(ErrInvalidCursor, "cursor ordered by %q (desc=%t), query ordered by %q (desc=%t)",
			c.Field, c.Desc, o.Field, o.Descending)
	}
	return &c, nil
}
