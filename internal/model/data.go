package model

// FieldType is the declared type of a schema column
type FieldType string

const (
	TypeInt    FieldType = "int"
	TypeString FieldType = "string"
	TypeFloat  FieldType = "float"
)

// Field describes one positional column of a schema
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Nullable bool      `json:"nullable"`
}

// Schema is the ordered list of columns a source file must match
type Schema []Field

// Column names of the life expectancy dataset
const (
	ColYear           = "Year"
	ColRace           = "Race"
	ColSex            = "Sex"
	ColLifeExpectancy = "Average Life Expectancy (Years)"
	ColDeathRate      = "Age-adjusted Death Rate"
)

// LifeSchema returns the fixed schema of the life expectancy dataset.
func LifeSchema() Schema {
	return Schema{
		{Name: ColYear, Type: TypeInt},
		{Name: ColRace, Type: TypeString},
		{Name: ColSex, Type: TypeString},
		{Name: ColLifeExpectancy, Type: TypeFloat, Nullable: true},
		{Name: ColDeathRate, Type: TypeFloat},
	}
}

// Names returns the column names in schema order
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Record is one row of the dataset. LifeExpectancy is nil when absent.
type Record struct {
	Year           int      `json:"year"`
	Race           string   `json:"race"`
	Sex            string   `json:"sex"`
	LifeExpectancy *float64 `json:"life_expectancy"`
	DeathRate      float64  `json:"death_rate"`
}

// Table is the loaded dataset. It is read-only once Load returns.
type Table struct {
	Source  string   `json:"source"`
	Columns []string `json:"columns"` // header row as read from the file
	Records []Record `json:"records"`
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Float returns a pointer to v, for building nullable values.
func Float(v float64) *float64 {
	return &v
}
