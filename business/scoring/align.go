package scoring

import (
	"maps"
	"slices"
)

// Record is a raw applicant submission keyed by feature name. Values are
// numbers or category labels; extra keys are allowed.
type Record map[string]any

type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// AlignedRecord is an ordered list of columns. When Aligned is false the
// record went through passthrough mode and its columns are whatever the
// caller submitted.
type AlignedRecord struct {
	Fields  []Field
	Aligned bool
}

func (a AlignedRecord) Len() int { return len(a.Fields) }

func (a AlignedRecord) Names() []string {
	names := make([]string, len(a.Fields))
	for i, f := range a.Fields {
		names[i] = f.Name
	}
	return names
}

func (a AlignedRecord) Get(name string) (any, bool) {
	for _, f := range a.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Record converts back to a raw record.
func (a AlignedRecord) Record() Record {
	out := make(Record, len(a.Fields))
	for _, f := range a.Fields {
		out[f.Name] = f.Value
	}
	return out
}

// Align maps raw onto the schema's column order. Missing or null columns take
// the schema default for their type and keys outside the schema are dropped.
// Without a schema the raw record passes through unaligned.
func Align(raw Record, schema *FeatureSchema) AlignedRecord {
	if !schema.Known() {
		return passthrough(raw)
	}

	fields := make([]Field, 0, schema.Width())
	for _, col := range schema.Numerical {
		v, ok := raw[col]
		if !ok || v == nil {
			v = schema.numericDefault(col)
		}
		fields = append(fields, Field{Name: col, Value: v})
	}
	for _, col := range schema.Categorical {
		v, ok := raw[col]
		if !ok || v == nil {
			v = schema.categoricalDefault(col)
		}
		fields = append(fields, Field{Name: col, Value: v})
	}

	return AlignedRecord{Fields: fields, Aligned: true}
}

// passthrough keeps every key; sorted so repeated calls agree on order.
func passthrough(raw Record) AlignedRecord {
	keys := slices.Sorted(maps.Keys(raw))
	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Name: k, Value: raw[k]})
	}
	return AlignedRecord{Fields: fields}
}
