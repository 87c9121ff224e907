package records

import (
	"encoding/json"
	"sort"
	"strconv"

	"albums-service/internal/docstore"
	cl "albums-service/pkg/catalog"

	"github.com/pkg/errors"
)

// toStoreFormat converts an application record into the store's field-list
// representation. Absent (nil) values are dropped, the reserved "id" field is
// carried on the key instead of the field list, and fields named in
// nonIndexed are excluded from the store's ordering.
func toStoreFormat(record cl.Record, nonIndexed []string) ([]docstore.Field, error) {
	noIndex := make(map[string]bool, len(nonIndexed))
	for _, name := range nonIndexed {
		noIndex[name] = true
	}

	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]docstore.Field, 0, len(names))
	for _, name := range names {
		value := record[name]
		if name == "id" || value == nil {
			continue
		}
		var err error
		switch name {
		case "rating":
			value, err = coerceRating(value)
		case "year":
			value, err = coerceYear(value)
		}
		if err != nil {
			return nil, err
		}
		fields = append(fields, docstore.Field{
			Name:    name,
			Value:   value,
			NoIndex: noIndex[name],
		})
	}
	return fields, nil
}

// fromStoreFormat converts a store entity back into an application record,
// extracting the key's identity component into the "id" field.
func fromStoreFormat(e docstore.Entity) cl.Record {
	record := make(cl.Record, len(e.Fields)+1)
	for _, f := range e.Fields {
		record[f.Name] = f.Value
	}
	record["id"] = e.Key.ID
	return record
}

// coerceRating makes sure the rating is stored as a floating-point number
// regardless of how the caller supplied it. Non-numeric input fails fast.
func coerceRating(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, errors.Wrapf(cl.ErrValidation, "rating %q is not numeric", t.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, errors.Wrapf(cl.ErrValidation, "rating %q is not numeric", t)
		}
		return f, nil
	default:
		return 0, errors.Wrapf(cl.ErrValidation, "rating %v is not numeric", v)
	}
}

// coerceYear stores the year as an integer so that ordered queries compare it
// numerically.
func coerceYear(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		if t != float64(int64(t)) {
			return 0, errors.Wrapf(cl.ErrValidation, "year %v is not an integer", t)
		}
		return int64(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, errors.Wrapf(cl.ErrValidation, "year %q is not an integer", t.String())
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(cl.ErrValidation, "year %q is not an integer", t)
		}
		return n, nil
	default:
		return 0, errors.Wrapf(cl.ErrValidation, "year %v is not an integer", v)
	}
}
