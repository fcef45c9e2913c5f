package entity

// Field is one named value in a Record.
type Field struct {
	Name  string
	Value string
}

// Record is one flat, ordered set of extracted field values for a single item.
// A field that could not be found holds its sentinel, never an empty slot.
type Record struct {
	fields []Field
}

// NewRecord copies fields into a new Record. Field order is preserved.
func NewRecord(fields ...Field) Record {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return Record{fields: cp}
}

// Fields returns a copy of the record's fields in order.
func (r Record) Fields() []Field {
	cp := make([]Field, len(r.fields))
	copy(cp, r.fields)
	return cp
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Get returns the value stored under name.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func (r Record) Len() int { return len(r.fields) }

// Map returns the record as a name -> value map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return m
}

// Project returns the record's values laid out in header order.
// Names missing from the record become empty strings.
func (r Record) Project(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		out[i], _ = r.Get(name)
	}
	return out
}

// ResultSet is the ordered collection of successfully produced Records for one run.
type ResultSet []Record

// Header is the first record's field names, or nil for an empty set.
func (rs ResultSet) Header() []string {
	if len(rs) == 0 {
		return nil
	}
	return rs[0].Names()
}

// Rows projects every record onto Header.
func (rs ResultSet) Rows() [][]string {
	header := rs.Header()
	rows := make([][]string, len(rs))
	for i, r := range rs {
		rows[i] = r.Project(header)
	}
	return rows
}
