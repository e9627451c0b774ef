package query

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"textile-backoffice/internal/domain"
)

func TestComposePartyEmptyFilter(t *testing.T) {
	set := ComposeParty(domain.PartyKindCustomer, domain.PartyFilter{})

	conditions := set.Conditions()
	if len(conditions) != 1 {
		t.Fatalf("expected only the kind condition, got %d: %v", len(conditions), conditions)
	}
	if !strings.Contains(conditions[0], "p.kind") {
		t.Fatalf("expected kind condition, got %q", conditions[0])
	}
	if set.RequiresJoin() {
		t.Fatal("empty filter must not require a join")
	}
	if len(set.Args()) != 1 {
		t.Fatalf("expected one bound argument, got %d", len(set.Args()))
	}
}

func TestComposePartyEmptySliceEqualsAbsent(t *testing.T) {
	absent := ComposeParty(domain.PartyKindSupplier, domain.PartyFilter{})
	empty := ComposeParty(domain.PartyKindSupplier, domain.PartyFilter{
		WorkTypes:     []string{},
		Colors:        []string{},
		Sizes:         []string{},
		PaymentCycles: []string{},
		Ranges:        []string{},
	})

	if absent.WhereClause() != empty.WhereClause() {
		t.Fatalf("empty-slice facets changed the query:\nabsent: %q\nempty:  %q",
			absent.WhereClause(), empty.WhereClause())
	}
	if len(absent.Args()) != len(empty.Args()) {
		t.Fatalf("empty-slice facets changed the arguments: %d vs %d",
			len(absent.Args()), len(empty.Args()))
	}
}

func TestComposePartyTagsOrWithinAndAcross(t *testing.T) {
	set := ComposeParty(domain.PartyKindCustomer, domain.PartyFilter{
		WorkTypes: []string{"weaving", "dyeing"},
		Colors:    []string{"indigo"},
	})

	conditions := set.Conditions()
	if len(conditions) != 3 {
		t.Fatalf("expected kind + two facet conditions, got %d: %v", len(conditions), conditions)
	}
	// Tags within one facet bind as one array argument, so OR lives inside
	// the = ANY; distinct facets stay separate conjuncts.
	var facetConditions int
	for _, condition := range conditions {
		if strings.Contains(condition, "jsonb_array_elements_text") {
			facetConditions++
			if !strings.Contains(condition, "= ANY(") {
				t.Fatalf("facet condition missing ANY: %q", condition)
			}
		}
	}
	if facetConditions != 2 {
		t.Fatalf("expected two facet conditions, got %d", facetConditions)
	}
	if !strings.Contains(set.WhereClause(), " AND ") {
		t.Fatalf("facets must be conjoined: %q", set.WhereClause())
	}

	args := set.Args()
	if len(args) != 3 {
		t.Fatalf("expected three bound arguments, got %d", len(args))
	}
	tags, ok := args[1].([]string)
	if !ok || len(tags) != 2 {
		t.Fatalf("expected the workTypes tag list bound as one argument, got %#v", args[1])
	}
}

func TestComposePartyFreeText(t *testing.T) {
	set := ComposeParty(domain.PartyKindCustomer, domain.PartyFilter{Search: "  Rug  "})

	conditions := set.Conditions()
	if len(conditions) != 2 {
		t.Fatalf("expected kind + search conditions, got %v", conditions)
	}
	search := conditions[1]
	if strings.Count(search, " OR ") != 3 {
		t.Fatalf("expected OR across four columns, got %q", search)
	}
	if !strings.HasPrefix(search, "(") || !strings.HasSuffix(search, ")") {
		t.Fatalf("search group must be parenthesized: %q", search)
	}

	args := set.Args()
	if len(args) != 2 {
		t.Fatalf("expected the pattern bound once, got %d arguments", len(args))
	}
	if args[1] != "%rug%" {
		t.Fatalf("expected lowercased trimmed pattern, got %#v", args[1])
	}
}

func TestComposePartyOrderStageRequiresJoin(t *testing.T) {
	set := ComposeParty(domain.PartyKindCustomer, domain.PartyFilter{OrderStage: "dispatched"})

	if !set.RequiresJoin() {
		t.Fatal("order stage filter must require the join")
	}
	found := false
	for _, condition := range set.Conditions() {
		if strings.Contains(condition, "o.stage") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing o.stage condition: %v", set.Conditions())
	}

	// A blank stage leaves the plain query untouched.
	blank := ComposeParty(domain.PartyKindCustomer, domain.PartyFilter{OrderStage: "   "})
	if blank.RequiresJoin() {
		t.Fatal("blank order stage must not require the join")
	}
}

func TestComposeOrderDateRange(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	both := ComposeOrder(domain.OrderFilter{TargetFrom: &from, TargetTo: &to})
	if len(both.Conditions()) != 2 {
		t.Fatalf("expected two bounds, got %v", both.Conditions())
	}

	oneSided := ComposeOrder(domain.OrderFilter{TargetFrom: &from})
	conditions := oneSided.Conditions()
	if len(conditions) != 1 || !strings.Contains(conditions[0], ">=") {
		t.Fatalf("expected a single inclusive lower bound, got %v", conditions)
	}
}

func TestComposeSalesSideAnchor(t *testing.T) {
	ids := []uuid.UUID{uuid.New()}

	customer := ComposeSales(domain.SalesFilter{Side: domain.SalesSideCustomer, PartyIDs: ids})
	if !strings.Contains(customer.WhereClause(), "o.customer_id = ANY(") {
		t.Fatalf("customer side must bind to o.customer_id: %q", customer.WhereClause())
	}

	supplier := ComposeSales(domain.SalesFilter{Side: domain.SalesSideSupplier, PartyIDs: ids})
	if !strings.Contains(supplier.WhereClause(), "o.supplier_id = ANY(") {
		t.Fatalf("supplier side must bind to o.supplier_id: %q", supplier.WhereClause())
	}
}

func TestComposeProductSupplierScope(t *testing.T) {
	id := uuid.New()
	set := ComposeProduct(domain.ProductFilter{SupplierID: &id})

	if !strings.Contains(set.WhereClause(), "p.supplier_id = ANY(") {
		t.Fatalf("expected supplier scope, got %q", set.WhereClause())
	}

	unscoped := ComposeProduct(domain.ProductFilter{})
	if unscoped.WhereClause() != "" {
		t.Fatalf("empty product filter must compose to no WHERE, got %q", unscoped.WhereClause())
	}
}

func TestBuilderPlaceholderOrder(t *testing.T) {
	b := NewBuilder()
	if got := b.Arg("first"); got != "$1" {
		t.Fatalf("expected $1, got %s", got)
	}
	if got := b.Arg("second"); got != "$2" {
		t.Fatalf("expected $2, got %s", got)
	}
	args := b.Args()
	if len(args) != 2 || args[0] != "first" || args[1] != "second" {
		t.Fatalf("arguments out of order: %#v", args)
	}
}
