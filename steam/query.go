package steam

import (
	"fmt"
	"regexp"

	"github.com/fulldump/steamdb/db"
)

// Strategy is the execution plan picked for a query.
type Strategy int

const (
	StrategyScan    Strategy = iota // full table scan with a predicate
	StrategyIndexed                 // one EQ restriction on an indexed field
	StrategyOrdered                 // walk an index in key order
	StrategyCollate                 // one row per distinct indexed value
)

func (s Strategy) String() string {
	switch s {
	case StrategyIndexed:
		return "indexed"
	case StrategyOrdered:
		return "ordered"
	case StrategyCollate:
		return "collate"
	}
	return "scan"
}

type Query struct {
	*db.QueryBase
	db *Database
}

// Plan reports which strategy Execute would use. The order of the checks is
// fixed: collate-by wins over order-by, which wins over an index lookup.
func (q *Query) Plan() (Strategy, error) {

	if collateBy := q.CollateByFields(); len(collateBy) > 0 {
		if len(collateBy) > 1 {
			return StrategyScan, fmt.Errorf("%w: multiple collate-by fields", db.ErrUnsupportedQuery)
		}
		if !q.db.isIndexed(collateBy[0]) {
			return StrategyScan, fmt.Errorf("%w: collate on unindexed field #%d", db.ErrUnsupportedQuery, collateBy[0])
		}
		return StrategyCollate, nil
	}

	if orderBy := q.OrderByFields(); len(orderBy) > 0 {
		return StrategyOrdered, nil
	}

	restrictions := q.Restrictions()
	if len(restrictions) == 1 && restrictions[0].Type == db.EQ && q.db.isIndexed(restrictions[0].Which) {
		return StrategyIndexed, nil
	}

	return StrategyScan, nil
}

// Execute returns a cursor over the matching records. Restrictions are
// ANDed together regardless of the relation tree built with And/Or, and an
// ordered scan returns every record, ignoring restrictions altogether. An
// unindexed order-by field has no index entries, so its scan is empty.
func (q *Query) Execute() (db.Recordset, error) {

	strategy, err := q.Plan()
	if err != nil {
		return nil, err
	}

	d := q.db
	switch strategy {
	case StrategyCollate:
		m, err := newMatcher(q.Restrictions())
		if err != nil {
			return nil, err
		}
		field := q.CollateByFields()[0]
		if m.empty() {
			m = nil
		}
		switch x := d.indexes[field].(type) {
		case *index[uint32]:
			return newCollateRecordset(d, x, m), nil
		case *index[string]:
			return newCollateRecordset(d, x, m), nil
		}

	case StrategyOrdered:
		field := q.OrderByFields()[0]
		if !d.isIndexed(field) {
			return db.EmptyRecordset{}, nil
		}
		switch x := d.indexes[field].(type) {
		case *index[uint32]:
			return newOrderedRecordset(d, x), nil
		case *index[string]:
			return newOrderedRecordset(d, x), nil
		}

	case StrategyIndexed:
		r := q.Restrictions()[0]
		literal := intValue(r.Int)
		if r.IsString {
			literal = stringValue(r.Str)
		}
		switch x := d.indexes[r.Which].(type) {
		case *index[uint32]:
			return newIndexedRecordset(d, x, x.keyOf(literal)), nil
		case *index[string]:
			return newIndexedRecordset(d, x, x.keyOf(literal)), nil
		}
	}

	m, err := newMatcher(q.Restrictions())
	if err != nil {
		return nil, err
	}
	if m.empty() {
		m = nil
	}
	return newSimpleRecordset(d, m), nil
}

func (d *Database) isIndexed(which db.Field) bool {
	return int(which) < len(d.indexes) && d.indexes[which] != nil
}

// matcher evaluates a private copy of a query's restrictions, so cursors
// outlive later edits of the query.
type matcher struct {
	restrictions []db.Restriction
	patterns     []*regexp.Regexp
}

func newMatcher(restrictions []db.Restriction) (*matcher, error) {
	m := &matcher{
		restrictions: append([]db.Restriction(nil), restrictions...),
		patterns:     make([]*regexp.Regexp, len(restrictions)),
	}

	for i, r := range m.restrictions {
		if r.Type != db.LIKE || !r.IsString {
			continue
		}
		re, err := regexp.Compile("(?i)^(?:" + r.Str + ")$")
		if err != nil {
			return nil, fmt.Errorf("%w: %s", db.ErrBadPattern, err.Error())
		}
		m.patterns[i] = re
	}

	return m, nil
}

func (m *matcher) empty() bool {
	return m == nil || len(m.restrictions) == 0
}

// match expects the database lock to be held.
func (m *matcher) match(r *record) bool {
	for i := range m.restrictions {
		if !m.matchOne(i, r) {
			return false
		}
	}
	return true
}

func (m *matcher) matchOne(i int, r *record) bool {

	restriction := m.restrictions[i]

	v := value{}
	if int(restriction.Which) < len(r.values) {
		v = r.values[restriction.Which]
	}

	if restriction.IsString {
		return compare(restriction.Type, v.str(), restriction.Str, m.patterns[i])
	}

	if restriction.Type == db.LIKE {
		return false
	}
	return compare(restriction.Type, v.integer(), restriction.Int, nil)
}

func compare[T uint32 | string](rt db.RestrictionType, got, want T, pattern *regexp.Regexp) bool {
	switch rt {
	case db.EQ:
		return got == want
	case db.NE:
		return got != want
	case db.GT:
		return got > want
	case db.LT:
		return got < want
	case db.GE:
		return got >= want
	case db.LE:
		return got <= want
	case db.LIKE:
		s, ok := any(got).(string)
		return ok && pattern != nil && pattern.MatchString(s)
	}
	return false
}
