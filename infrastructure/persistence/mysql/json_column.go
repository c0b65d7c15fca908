package mysql

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonColumn stores a value in a JSON column. A NULL column decodes to the
// zero value.
type jsonColumn[T any] struct {
	V T
}

func (c jsonColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(c.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *jsonColumn[T]) Scan(src interface{}) error {
	var zero T
	switch v := src.(type) {
	case nil:
		c.V = zero
		return nil
	case []byte:
		return json.Unmarshal(v, &c.V)
	case string:
		return json.Unmarshal([]byte(v), &c.V)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}

func jsonOf[T any](v T) jsonColumn[T] {
	return jsonColumn[T]{V: v}
}
