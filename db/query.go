package db

import (
	"fmt"
	"strings"
)

type RestrictionType int

const (
	EQ RestrictionType = iota
	NE
	GT
	LT
	GE
	LE
	LIKE // case-insensitive regular expression, strings only
)

func (rt RestrictionType) String() string {
	switch rt {
	case EQ:
		return "="
	case NE:
		return "!="
	case GT:
		return ">"
	case LT:
		return "<"
	case GE:
		return ">="
	case LE:
		return "<="
	case LIKE:
		return "?="
	}
	panic(fmt.Sprintf("bad restriction type %d", int(rt)))
}

// Restriction is a single (field, operator, literal) clause. Exactly one of
// Str or Int is meaningful, depending on IsString.
type Restriction struct {
	Which    Field
	Type     RestrictionType
	IsString bool
	Str      string
	Int      uint32
}

func (r Restriction) String() string {
	if r.IsString {
		return fmt.Sprintf("#%d %s %q", r.Which, r.Type, r.Str)
	}
	return fmt.Sprintf("#%d %s %d", r.Which, r.Type, r.Int)
}

// Relation combines two earlier subexpressions.
type Relation struct {
	And  bool // false means OR
	A, B Subexpression
}

type exprKind uint8

const (
	exprEmpty exprKind = iota
	exprRestriction
	exprRelation
)

// Subexpression is an opaque handle returned by Restrict, And and Or. The
// zero value is the empty expression. A handle is only meaningful to the
// query that issued it.
type Subexpression struct {
	owner *QueryBase
	kind  exprKind
	index int
}

func (e Subexpression) IsValid() bool {
	return e.kind != exprEmpty
}

// IsRestriction reports whether e names a restriction and, if so, its
// position in Restrictions().
func (e Subexpression) IsRestriction() (int, bool) {
	return e.index, e.kind == exprRestriction
}

// IsRelation reports whether e names a relation and, if so, its position in
// Relations().
func (e Subexpression) IsRelation() (int, bool) {
	return e.index, e.kind == exprRelation
}

// Query is a database query under construction. Builder calls on the base
// implementation always succeed; a backend that cannot honour Where, OrderBy
// or CollateBy overrides them and returns an error.
type Query interface {
	RestrictString(which Field, rt RestrictionType, val string) Subexpression
	RestrictInteger(which Field, rt RestrictionType, val uint32) Subexpression
	And(a, b Subexpression) Subexpression
	Or(a, b Subexpression) Subexpression

	// Where sets the root expression (like SQL "SELECT * WHERE ...").
	Where(e Subexpression) error
	// OrderBy imposes a sort order (like SQL "ORDER BY ...").
	OrderBy(which Field) error
	// CollateBy asks for one row per distinct value (like SQL "GROUP BY ...").
	CollateBy(which Field) error

	// Execute runs the query. A nil Recordset with an error wrapping
	// ErrUnsupportedQuery means the backend cannot run this shape of query.
	Execute() (Recordset, error)

	// Base exposes the builder state, for backends and Clone.
	Base() *QueryBase

	String() string
}

// QueryBase holds the expression tree as two flat lists addressed by
// handles, plus the order-by and collate-by fields. Backends embed it.
type QueryBase struct {
	restrictions []Restriction
	relations    []Relation
	root         Subexpression
	orderBy      []Field
	collateBy    []Field
}

func NewQueryBase() *QueryBase {
	return &QueryBase{}
}

func (q *QueryBase) Base() *QueryBase {
	return q
}

func (q *QueryBase) RestrictString(which Field, rt RestrictionType, val string) Subexpression {
	q.restrictions = append(q.restrictions, Restriction{
		Which:    which,
		Type:     rt,
		IsString: true,
		Str:      val,
	})
	return Subexpression{owner: q, kind: exprRestriction, index: len(q.restrictions) - 1}
}

func (q *QueryBase) RestrictInteger(which Field, rt RestrictionType, val uint32) Subexpression {
	q.restrictions = append(q.restrictions, Restriction{
		Which: which,
		Type:  rt,
		Int:   val,
	})
	return Subexpression{owner: q, kind: exprRestriction, index: len(q.restrictions) - 1}
}

func (q *QueryBase) And(a, b Subexpression) Subexpression {
	return q.relate(true, a, b)
}

func (q *QueryBase) Or(a, b Subexpression) Subexpression {
	return q.relate(false, a, b)
}

func (q *QueryBase) relate(and bool, a, b Subexpression) Subexpression {
	if !a.IsValid() || !b.IsValid() {
		panic("db: empty subexpression in relation")
	}
	q.mustOwn(a)
	q.mustOwn(b)

	q.relations = append(q.relations, Relation{And: and, A: a, B: b})
	return Subexpression{owner: q, kind: exprRelation, index: len(q.relations) - 1}
}

func (q *QueryBase) Where(e Subexpression) error {
	if e.IsValid() {
		q.mustOwn(e)
	}
	q.root = e
	return nil
}

func (q *QueryBase) OrderBy(which Field) error {
	q.orderBy = append(q.orderBy, which)
	return nil
}

func (q *QueryBase) CollateBy(which Field) error {
	q.collateBy = append(q.collateBy, which)
	return nil
}

// mustOwn panics unless e was issued by q and still addresses an element.
func (q *QueryBase) mustOwn(e Subexpression) {
	if e.owner != q {
		panic("db: subexpression belongs to another query")
	}
	switch e.kind {
	case exprRestriction:
		if e.index < 0 || e.index >= len(q.restrictions) {
			panic(fmt.Sprintf("db: restriction %d out of range", e.index+1))
		}
	case exprRelation:
		if e.index < 0 || e.index >= len(q.relations) {
			panic(fmt.Sprintf("db: relation %d out of range", e.index+1))
		}
	}
}

func (q *QueryBase) Restrictions() []Restriction {
	return q.restrictions
}

func (q *QueryBase) Relations() []Relation {
	return q.relations
}

func (q *QueryBase) Root() Subexpression {
	return q.root
}

func (q *QueryBase) OrderByFields() []Field {
	return q.orderBy
}

func (q *QueryBase) CollateByFields() []Field {
	return q.collateBy
}

// String renders the expression tree followed by the order and collate
// clauses, for debugging.
func (q *QueryBase) String() string {
	sb := &strings.Builder{}
	q.writeElement(sb, q.root)
	for _, f := range q.orderBy {
		fmt.Fprintf(sb, "order by #%d ", f)
	}
	for _, f := range q.collateBy {
		fmt.Fprintf(sb, "collate by #%d ", f)
	}
	return sb.String()
}

func (q *QueryBase) writeElement(sb *strings.Builder, e Subexpression) {
	switch e.kind {
	case exprRestriction:
		sb.WriteString(q.restrictions[e.index].String())
		sb.WriteString(" ")
	case exprRelation:
		r := q.relations[e.index]
		sb.WriteString("( ")
		q.writeElement(sb, r.A)
		if r.And {
			sb.WriteString("and ")
		} else {
			sb.WriteString("or ")
		}
		q.writeElement(sb, r.B)
		sb.WriteString(") ")
	}
}

// Clone replays the where, order-by and collate-by state of src onto dst
// through dst's own builder, so the same predicate can be aimed at another
// Database. It fails if dst refuses any part.
func Clone(dst, src Query) error {
	from := src.Base()

	restrictions := make([]Subexpression, len(from.restrictions))
	for i, r := range from.restrictions {
		if r.IsString {
			restrictions[i] = dst.RestrictString(r.Which, r.Type, r.Str)
		} else {
			restrictions[i] = dst.RestrictInteger(r.Which, r.Type, r.Int)
		}
	}

	relations := make([]Subexpression, len(from.relations))
	translate := func(e Subexpression) Subexpression {
		switch e.kind {
		case exprRestriction:
			return restrictions[e.index]
		case exprRelation:
			return relations[e.index]
		}
		return Subexpression{}
	}
	for i, r := range from.relations {
		if r.And {
			relations[i] = dst.And(translate(r.A), translate(r.B))
		} else {
			relations[i] = dst.Or(translate(r.A), translate(r.B))
		}
	}

	err := dst.Where(translate(from.root))
	if err != nil {
		return fmt.Errorf("where: %w", err)
	}

	for _, f := range from.orderBy {
		err := dst.OrderBy(f)
		if err != nil {
			return fmt.Errorf("order by #%d: %w", f, err)
		}
	}

	for _, f := range from.collateBy {
		err := dst.CollateBy(f)
		if err != nil {
			return fmt.Errorf("collate by #%d: %w", f, err)
		}
	}

	return nil
}
