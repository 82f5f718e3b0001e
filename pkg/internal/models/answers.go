package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type AnswerKind int8

const (
	AnswerKindInvalid = AnswerKind(iota)
	AnswerKindSingle
	AnswerKindMultiple
)

// AnswerValue holds either one string or a list of strings.
// Payloads of any other shape decode into AnswerKindInvalid and keep their raw bytes,
// so legacy rows survive a round trip without failing the read.
type AnswerValue struct {
	kind   AnswerKind
	single string
	multi  []string
	raw    json.RawMessage
}

func SingleAnswer(value string) AnswerValue {
	return AnswerValue{kind: AnswerKindSingle, single: value}
}

func MultipleAnswer(values ...string) AnswerValue {
	if values == nil {
		values = []string{}
	}
	return AnswerValue{kind: AnswerKindMultiple, multi: values}
}

func (v AnswerValue) Kind() AnswerKind {
	return v.kind
}

// String returns the single value, or an empty string for other kinds.
func (v AnswerValue) String() string {
	return v.single
}

// Values returns the list value, or nil for other kinds.
func (v AnswerValue) Values() []string {
	return v.multi
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AnswerKindSingle:
		return json.Marshal(v.single)
	case AnswerKindMultiple:
		return json.Marshal(v.multi)
	default:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	}
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	*v = AnswerValue{}
	trimmed := bytes.TrimSpace(data)

	var single string
	if err := json.Unmarshal(trimmed, &single); err == nil && len(trimmed) > 0 && trimmed[0] == '"' {
		v.kind = AnswerKindSingle
		v.single = single
		return nil
	}

	var multi []string
	if err := json.Unmarshal(trimmed, &multi); err == nil && len(trimmed) > 0 && trimmed[0] == '[' {
		v.kind = AnswerKindMultiple
		v.multi = multi
		return nil
	}

	v.kind = AnswerKindInvalid
	if len(trimmed) > 0 {
		v.raw = append(json.RawMessage(nil), trimmed...)
	}
	return nil
}

func (v *AnswerValue) Scan(src any) error {
	switch val := src.(type) {
	case nil:
		*v = AnswerValue{}
		return nil
	case []byte:
		return v.UnmarshalJSON(val)
	case string:
		return v.UnmarshalJSON([]byte(val))
	default:
		return fmt.Errorf("unable to scan answer value from %T", src)
	}
}

func (v AnswerValue) Value() (driver.Value, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (AnswerValue) GormDataType() string {
	return "json"
}

func (AnswerValue) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	default:
		return "JSON"
	}
}
