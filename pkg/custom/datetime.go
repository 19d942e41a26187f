package custom

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// sqliteLayouts are the text forms a timestamp column can come back as.
var sqliteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Datetime represents a datetime. It is always stored in UTC.
type Datetime time.Time

// NewDatetime returns the given time as a UTC Datetime.
func NewDatetime(t time.Time) Datetime {
	return Datetime(t.UTC())
}

// Time returns the underlying time.
func (d Datetime) Time() time.Time {
	return time.Time(d)
}

// MarshalJSON implements the json.Marshaler interface.
func (d Datetime) MarshalJSON() ([]byte, error) {
	if time.Time(d).IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(time.Time(d).UTC().Format(time.RFC3339))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Datetime) UnmarshalJSON(text []byte) error {
	var s *string
	if err := json.Unmarshal(text, &s); err != nil {
		return fmt.Errorf("invalid datetime: %w", err)
	}
	if s == nil {
		*d = Datetime{}
		return nil
	}

	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return fmt.Errorf("invalid datetime %q: %w", *s, err)
	}
	*d = NewDatetime(t)
	return nil
}

// MarshalBSONValue implements the bson.ValueMarshaler interface.
func (d Datetime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if time.Time(d).IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(time.Time(d).UTC())
}

// UnmarshalBSONValue implements the bson.ValueUnmarshaler interface.
func (d *Datetime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*d = Datetime{}
		return nil
	case bson.TypeDateTime:
		*d = NewDatetime(raw.Time())
		return nil
	case bson.TypeString:
		parsed, err := time.Parse(time.RFC3339, raw.StringValue())
		if err != nil {
			return fmt.Errorf("invalid datetime %q: %w", raw.StringValue(), err)
		}
		*d = NewDatetime(parsed)
		return nil
	default:
		return fmt.Errorf("invalid bson type %s for %T", t, d)
	}
}

// Scan implements the sql.Scanner interface.
func (d *Datetime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Datetime{}
		return nil
	case time.Time:
		*d = NewDatetime(v)
		return nil
	case string:
		return d.parseText(v)
	case []byte:
		return d.parseText(string(v))
	default:
		return fmt.Errorf("invalid scan, type %T not supported for %T", src, d)
	}
}

func (d *Datetime) parseText(s string) error {
	for _, layout := range sqliteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = NewDatetime(t)
			return nil
		}
	}
	return fmt.Errorf("invalid datetime: %s", s)
}

// Value implements the driver.Valuer interface.
func (d Datetime) Value() (driver.Value, error) {
	if time.Time(d).IsZero() {
		return nil, nil
	}
	return time.Time(d).UTC(), nil
}

// String implements the fmt.Stringer interface.
func (d Datetime) String() string {
	return time.Time(d).Format(time.RFC3339)
}
