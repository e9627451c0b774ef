package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Builder accumulates positional query arguments.
type Builder struct {
	args []any
}

// NewBuilder creates an empty argument builder.
func NewBuilder() *Builder {
	return &Builder{args: make([]any, 0)}
}

// Arg appends a value and returns its placeholder.
func (b *Builder) Arg(value any) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

// Args returns the accumulated argument list.
func (b *Builder) Args() []any {
	return append([]any(nil), b.args...)
}

// Predicate is one facet of a filter translated to SQL. The set of shapes is
// closed: an unsupported facet shape cannot be constructed.
type Predicate interface {
	apply(b *Builder, where *[]string)
	requiresJoin() bool
}

// ScalarIn matches rows whose scalar expression equals one of the requested
// values. An empty value list contributes no predicate.
type ScalarIn struct {
	Expr   string
	Values []string
}

func (p ScalarIn) apply(b *Builder, where *[]string) {
	if len(p.Values) == 0 {
		return
	}
	*where = append(*where, fmt.Sprintf("%s = ANY(%s::text[])", p.Expr, b.Arg(p.Values)))
}

func (p ScalarIn) requiresJoin() bool { return false }

// ContainsAny matches rows whose stored tag list contains at least one of the
// requested tags. Tags within one facet are OR'd; distinct facets are
// separate predicates and therefore AND'd. Matching is exact element
// containment, never substring.
type ContainsAny struct {
	ListExpr string
	Tags     []string
}

func (p ContainsAny) apply(b *Builder, where *[]string) {
	if len(p.Tags) == 0 {
		return
	}
	*where = append(*where, fmt.Sprintf(
		"EXISTS (SELECT 1 FROM jsonb_array_elements_text(COALESCE(%s, '[]'::jsonb)) AS tag(value) WHERE tag.value = ANY(%s::text[]))",
		p.ListExpr, b.Arg(p.Tags)))
}

func (p ContainsAny) requiresJoin() bool { return false }

// FreeText expands one search term into a case-insensitive substring OR
// across a fixed expression set. The whole group is AND'd with the other
// predicates.
type FreeText struct {
	Exprs []string
	Term  string
}

func (p FreeText) apply(b *Builder, where *[]string) {
	term := strings.TrimSpace(p.Term)
	if term == "" || len(p.Exprs) == 0 {
		return
	}
	pattern := b.Arg("%" + strings.ToLower(term) + "%")
	clauses := make([]string, 0, len(p.Exprs))
	for _, expr := range p.Exprs {
		clauses = append(clauses, fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE %s", expr, pattern))
	}
	*where = append(*where, "("+strings.Join(clauses, " OR ")+")")
}

func (p FreeText) requiresJoin() bool { return false }

// JoinRequired filters on a column of a related entity. Its presence flips
// the query from the plain form to the joined form; the executor adds the
// join and deduplicates by the primary entity's id.
type JoinRequired struct {
	Expr  string
	Value string
}

func (p JoinRequired) apply(b *Builder, where *[]string) {
	if strings.TrimSpace(p.Value) == "" {
		return
	}
	*where = append(*where, fmt.Sprintf("%s = %s", p.Expr, b.Arg(p.Value)))
}

func (p JoinRequired) requiresJoin() bool { return strings.TrimSpace(p.Value) != "" }

// DateRange matches an inclusive, possibly one-sided date range.
type DateRange struct {
	Expr string
	From *time.Time
	To   *time.Time
}

func (p DateRange) apply(b *Builder, where *[]string) {
	if p.From != nil {
		*where = append(*where, fmt.Sprintf("%s >= %s", p.Expr, b.Arg(*p.From)))
	}
	if p.To != nil {
		*where = append(*where, fmt.Sprintf("%s <= %s", p.Expr, b.Arg(*p.To)))
	}
}

func (p DateRange) requiresJoin() bool { return false }

// IDIn restricts rows to an explicit id list.
type IDIn struct {
	Expr string
	IDs  []uuid.UUID
}

func (p IDIn) apply(b *Builder, where *[]string) {
	if len(p.IDs) == 0 {
		return
	}
	*where = append(*where, fmt.Sprintf("%s = ANY(%s::uuid[])", p.Expr, b.Arg(p.IDs)))
}

func (p IDIn) requiresJoin() bool { return false }

// PredicateSet is the folded conjunction of the active predicates plus the
// arguments they bound.
type PredicateSet struct {
	where        []string
	builder      *Builder
	requiresJoin bool
}

// Compose folds predicates into a conjunction. Predicates whose filter input
// was absent or empty contribute nothing, so an empty filter object composes
// to an empty set and an unfiltered listing.
func Compose(predicates ...Predicate) PredicateSet {
	builder := NewBuilder()
	where := make([]string, 0, len(predicates))
	joined := false
	for _, predicate := range predicates {
		predicate.apply(builder, &where)
		if predicate.requiresJoin() {
			joined = true
		}
	}
	return PredicateSet{where: where, builder: builder, requiresJoin: joined}
}

// WhereClause renders "WHERE a AND b" or "" when no predicate is active.
func (s PredicateSet) WhereClause() string {
	if len(s.where) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(s.where, " AND ")
}

// Conditions returns the individual conjuncts.
func (s PredicateSet) Conditions() []string {
	return append([]string(nil), s.where...)
}

// Args returns the bound arguments in placeholder order.
func (s PredicateSet) Args() []any {
	return s.builder.Args()
}

// Builder exposes the underlying builder so the executor can bind
// limit/offset after snapshotting the count arguments.
func (s PredicateSet) Builder() *Builder {
	return s.builder
}

// RequiresJoin reports whether a join-required predicate is active.
func (s PredicateSet) RequiresJoin() bool {
	return s.requiresJoin
}
