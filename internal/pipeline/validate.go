package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"go-lifeexp-report/internal/model"
	"go-lifeexp-report/pkg/utils"
)

// recordBinder converts raw CSV rows into Records according to a schema.
// The schema is positional; column names only decide which Record field a
// position feeds.
type recordBinder struct {
	schema model.Schema
	index  map[string]int
}

// newRecordBinder checks that the schema describes every Record field with a
// compatible type.
func newRecordBinder(schema model.Schema) (*recordBinder, error) {
	want := map[string]model.FieldType{
		model.ColYear:           model.TypeInt,
		model.ColRace:           model.TypeString,
		model.ColSex:            model.TypeString,
		model.ColLifeExpectancy: model.TypeFloat,
		model.ColDeathRate:      model.TypeFloat,
	}

	b := &recordBinder{schema: schema, index: make(map[string]int, len(schema))}
	for i, f := range schema {
		b.index[f.Name] = i
	}
	for name, typ := range want {
		i, ok := b.index[name]
		if !ok {
			return nil, fmt.Errorf("schema has no column %q", name)
		}
		if schema[i].Type != typ {
			return nil, fmt.Errorf("schema column %q must be %s, got %s", name, typ, schema[i].Type)
		}
	}
	if schema[b.index[model.ColDeathRate]].Nullable {
		return nil, fmt.Errorf("schema column %q cannot be nullable", model.ColDeathRate)
	}
	return b, nil
}

// bind validates one row and builds its Record.
func (b *recordBinder) bind(row []string) (model.Record, error) {
	if len(row) != len(b.schema) {
		return model.Record{}, &SchemaMismatchError{
			Reason: fmt.Sprintf("expected %d columns, got %d", len(b.schema), len(row)),
		}
	}

	values := make([]interface{}, len(row))
	for i, field := range b.schema {
		v, err := validateField(field, row[i])
		if err != nil {
			return model.Record{}, &SchemaMismatchError{Column: field.Name, Value: row[i], Reason: err.Error()}
		}
		values[i] = v
	}

	rec := model.Record{
		Year:      values[b.index[model.ColYear]].(int),
		Race:      values[b.index[model.ColRace]].(string),
		Sex:       values[b.index[model.ColSex]].(string),
		DeathRate: *values[b.index[model.ColDeathRate]].(*float64),
	}
	rec.LifeExpectancy, _ = values[b.index[model.ColLifeExpectancy]].(*float64)
	return rec, nil
}

// validateField parses one cell as the field's declared type. Required
// fields must be non-empty; an empty nullable float yields a nil *float64.
func validateField(field model.Field, raw string) (interface{}, error) {
	s := strings.TrimSpace(raw)
	if s == "" && !field.Nullable {
		return nil, fmt.Errorf("missing required value")
	}

	switch field.Type {
	case model.TypeInt:
		if s == "" {
			return nil, fmt.Errorf("nullable int columns are not supported")
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("not an integer")
		}
		return i, nil
	case model.TypeFloat:
		f, err := utils.ParseNullableFloat(s)
		if err != nil {
			return nil, fmt.Errorf("not a number")
		}
		return f, nil
	case model.TypeString:
		return s, nil
	default:
		return nil, fmt.Errorf("unknown field type %q", field.Type)
	}
}

// cleanHeaders trims whitespace and stray quotes from header names
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		h = strings.ReplaceAll(h, `"`, "")
		cleaned[i] = strings.TrimPrefix(h, "\ufeff")
	}
	return cleaned
}
