package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fulldump/steamdb/db"
	"github.com/fulldump/steamdb/steam"
	"github.com/fulldump/steamdb/utils"
)

// Field names and types one field of a served database.
type Field struct {
	Id      db.Field `json:"id"`
	Name    string   `json:"name"`
	Type    string   `json:"type"` // int or string, string by default
	Indexed bool     `json:"indexed"`
}

func (f Field) isInt() bool {
	return f.Type == steam.FieldInt.String()
}

func (f Field) spec() steam.FieldSpec {
	spec := steam.FieldSpec{
		Field:   f.Id,
		Indexed: f.Indexed,
	}
	if f.isInt() {
		spec.Type = steam.FieldInt
	}
	return spec
}

// FieldsFromSpecs names the fields of a steam schema. names is indexed by
// field id; specs without a name are left out.
func FieldsFromSpecs(specs []steam.FieldSpec, names []string) []Field {
	fields := []Field{}
	for _, spec := range specs {
		if int(spec.Field) >= len(names) || names[spec.Field] == "" {
			continue
		}
		fields = append(fields, Field{
			Id:      spec.Field,
			Name:    names[spec.Field],
			Type:    spec.Type.String(),
			Indexed: spec.Indexed,
		})
	}
	return fields
}

// Entry is a registered database together with its field names.
type Entry struct {
	Name         string
	Uuid         string
	CreationDate time.Time

	fields []Field
	byName map[string]Field
	db     db.Database
}

func newEntry(name, id string, fields []Field, d db.Database) *Entry {
	e := &Entry{
		Name:   name,
		Uuid:   id,
		fields: append([]Field(nil), fields...),
		byName: map[string]Field{},
		db:     d,
	}
	for _, f := range fields {
		if f.Type == "" {
			f.Type = steam.FieldString.String()
		}
		e.byName[f.Name] = f
	}
	for i := range e.fields {
		e.fields[i] = e.byName[e.fields[i].Name]
	}
	return e
}

func (e *Entry) Fields() []Field {
	return append([]Field(nil), e.fields...)
}

func (e *Entry) Database() db.Database {
	return e.db
}

// Total is the number of records, or -1 when the database cannot tell.
func (e *Entry) Total() int {
	if counter, ok := e.db.(interface{ Count() int }); ok {
		return counter.Count()
	}
	return -1
}

func (e *Entry) Field(name string) (Field, error) {
	f, ok := e.byName[name]
	if !ok {
		return Field{}, fmt.Errorf("%w '%s'", ErrorUnknownField, name)
	}
	return f, nil
}

// Row is a record rendered by field name: numbers for int fields, strings
// otherwise. Empty fields are absent.
type Row = map[string]any

// Insert adds one record.
func (e *Entry) Insert(values Row) error {

	type assignment struct {
		field Field
		str   string
		num   uint32
		isNum bool
	}

	assignments := make([]assignment, 0, len(values))
	for name, value := range values {
		f, err := e.Field(name)
		if err != nil {
			return err
		}
		a := assignment{field: f}
		switch v := value.(type) {
		case nil:
			continue
		case string:
			a.str = v
		default:
			n, err := toUint32(v)
			if err != nil {
				return fmt.Errorf("field '%s': %w", name, err)
			}
			a.num, a.isNum = n, true
		}
		assignments = append(assignments, a)
	}

	rs := e.db.CreateRecordset()
	err := rs.AddRecord()
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if a.isNum {
			err = rs.SetInteger(a.field.Id, a.num)
		} else {
			err = rs.SetString(a.field.Id, a.str)
		}
		if err != nil {
			return fmt.Errorf("field '%s': %w", a.field.Name, err)
		}
	}
	err = rs.Commit()
	if err != nil {
		return err
	}

	RecordsInsertedTotal.WithLabelValues(e.Name).Inc()
	return nil
}

// Condition is one restriction, as sent by clients.
type Condition struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// QuerySpec describes a query by field names. Conditions are chained with
// AND, or with OR when Or is set. The in-memory engine evaluates every chain
// as AND.
type QuerySpec struct {
	Where     []Condition `json:"where"`
	Or        bool        `json:"or"`
	OrderBy   string      `json:"orderBy"`
	CollateBy string      `json:"collateBy"`
}

var operators = map[string]db.RestrictionType{
	"=":    db.EQ,
	"==":   db.EQ,
	"!=":   db.NE,
	">":    db.GT,
	"<":    db.LT,
	">=":   db.GE,
	"<=":   db.LE,
	"?=":   db.LIKE,
	"like": db.LIKE,
}

func (e *Entry) build(spec QuerySpec) (db.Query, error) {

	q := e.db.CreateQuery()

	root := db.Subexpression{}
	for i, c := range spec.Where {
		f, err := e.Field(c.Field)
		if err != nil {
			return nil, err
		}

		rt, ok := operators[strings.ToLower(c.Op)]
		if !ok {
			return nil, fmt.Errorf("%w #%d: bad op '%s', must be [%s]", ErrorBadCondition, i, c.Op, strings.Join(utils.SortedKeys(operators), "|"))
		}

		var sub db.Subexpression
		if s, isString := c.Value.(string); isString {
			sub = q.RestrictString(f.Id, rt, s)
		} else {
			n, err := toUint32(c.Value)
			if err != nil {
				return nil, fmt.Errorf("%w #%d: %s", ErrorBadCondition, i, err.Error())
			}
			sub = q.RestrictInteger(f.Id, rt, n)
		}

		switch {
		case !root.IsValid():
			root = sub
		case spec.Or:
			root = q.Or(root, sub)
		default:
			root = q.And(root, sub)
		}
	}

	err := q.Where(root)
	if err != nil {
		return nil, err
	}

	if spec.OrderBy != "" {
		f, err := e.Field(spec.OrderBy)
		if err != nil {
			return nil, err
		}
		err = q.OrderBy(f.Id)
		if err != nil {
			return nil, err
		}
	}

	if spec.CollateBy != "" {
		f, err := e.Field(spec.CollateBy)
		if err != nil {
			return nil, err
		}
		err = q.CollateBy(f.Id)
		if err != nil {
			return nil, err
		}
	}

	return q, nil
}

func (e *Entry) execute(spec QuerySpec) (db.Recordset, error) {

	q, err := e.build(spec)
	if err != nil {
		return nil, err
	}

	strategy := "delegated"
	if sq, ok := q.(*steam.Query); ok {
		plan, err := sq.Plan()
		if err != nil {
			return nil, err
		}
		strategy = plan.String()
	}

	rs, err := q.Execute()
	if err != nil {
		return nil, err
	}
	QueriesTotal.WithLabelValues(e.Name, strategy).Inc()

	return rs, nil
}

// Query runs spec and calls f with every row until f returns false. A
// collated query yields one row per distinct value, holding just that value.
func (e *Entry) Query(spec QuerySpec, f func(row Row) bool) error {

	rs, err := e.execute(spec)
	if err != nil {
		return err
	}

	render := e.render
	if spec.CollateBy != "" {
		collated := e.byName[spec.CollateBy]
		render = func(rs db.Recordset) Row {
			return Row{collated.Name: value(rs, collated)}
		}
	}

	for ; !rs.IsEOF(); rs.MoveNext() {
		if !f(render(rs)) {
			break
		}
	}

	return nil
}

// Remove deletes every record matching spec that accept also accepts, and
// returns how many were deleted. accept may be nil.
func (e *Entry) Remove(spec QuerySpec, accept func(row Row) bool) (int, error) {

	if spec.CollateBy != "" {
		return 0, fmt.Errorf("%w: cannot remove collated rows", ErrorBadCondition)
	}

	rs, err := e.execute(spec)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for !rs.IsEOF() {
		if accept != nil && !accept(e.render(rs)) {
			rs.MoveNext()
			continue
		}
		err := rs.Delete()
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	RecordsDeletedTotal.WithLabelValues(e.Name).Add(float64(deleted))

	return deleted, nil
}

func (e *Entry) render(rs db.Recordset) Row {
	row := Row{}
	for _, f := range e.fields {
		if rs.GetString(f.Id) == "" {
			continue
		}
		row[f.Name] = value(rs, f)
	}
	return row
}

func value(rs db.Recordset, f Field) any {
	if f.isInt() {
		return rs.GetInteger(f.Id)
	}
	return rs.GetString(f.Id)
}

func toUint32(v any) (uint32, error) {
	switch n := v.(type) {
	case uint32:
		return n, nil
	case int:
		if n >= 0 && int64(n) <= math.MaxUint32 {
			return uint32(n), nil
		}
	case float64:
		if n >= 0 && n <= math.MaxUint32 && n == math.Trunc(n) {
			return uint32(n), nil
		}
	default:
		return 0, fmt.Errorf("%w: unsupported value %v, must be a string or a number", ErrorBadValue, v)
	}
	return 0, fmt.Errorf("%w: number %v out of range", ErrorBadValue, v)
}
