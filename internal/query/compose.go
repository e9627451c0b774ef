package query

import (
	"github.com/google/uuid"

	"textile-backoffice/internal/domain"
)

// Party listings always alias the primary table as "p" and the optional order
// join as "o"; the composers below bake those aliases into their expressions.

// ComposeParty translates a party filter into predicates. The kind
// discriminator is always present; everything else is optional.
func ComposeParty(kind domain.PartyKind, filter domain.PartyFilter) PredicateSet {
	return Compose(
		ScalarIn{Expr: "p.kind", Values: []string{string(kind)}},
		ContainsAny{ListExpr: "p.facets -> 'workTypes'", Tags: filter.WorkTypes},
		ContainsAny{ListExpr: "p.facets -> 'colors'", Tags: filter.Colors},
		ContainsAny{ListExpr: "p.facets -> 'sizes'", Tags: filter.Sizes},
		ScalarIn{Expr: "p.facets ->> 'paymentCycle'", Values: filter.PaymentCycles},
		ScalarIn{Expr: "p.facets ->> 'range'", Values: filter.Ranges},
		FreeText{
			Exprs: []string{"p.name", "p.company", "p.mobile", "p.tax_id"},
			Term:  filter.Search,
		},
		JoinRequired{Expr: "o.stage", Value: filter.OrderStage},
	)
}

// ComposeOrder translates an order filter into predicates.
func ComposeOrder(filter domain.OrderFilter) PredicateSet {
	return Compose(
		ScalarIn{Expr: "o.order_type", Values: filter.Types},
		ScalarIn{Expr: "o.sample", Values: filter.Samples},
		ScalarIn{Expr: "o.stage", Values: filter.Stages},
		DateRange{Expr: "o.target_date", From: filter.TargetFrom, To: filter.TargetTo},
		FreeText{
			Exprs: []string{"o.description", "o.product_name"},
			Term:  filter.Search,
		},
	)
}

// ComposeProduct translates a product filter into predicates.
func ComposeProduct(filter domain.ProductFilter) PredicateSet {
	predicates := []Predicate{
		ScalarIn{Expr: "p.facets ->> 'range'", Values: filter.Ranges},
		ScalarIn{Expr: "p.facets ->> 'category'", Values: filter.Categories},
		ContainsAny{ListExpr: "p.facets -> 'colors'", Tags: filter.Colors},
		ContainsAny{ListExpr: "p.facets -> 'sizes'", Tags: filter.Sizes},
		FreeText{Exprs: []string{"p.name"}, Term: filter.Search},
	}
	if filter.SupplierID != nil {
		predicates = append(predicates, IDIn{Expr: "p.supplier_id", IDs: []uuid.UUID{*filter.SupplierID}})
	}
	return Compose(predicates...)
}

// ComposeSales translates a sales filter into predicates over the
// order/customer/supplier join (aliases o, c and s). The anchored side's
// explicit id list binds to that side's foreign key on the order.
func ComposeSales(filter domain.SalesFilter) PredicateSet {
	sideExpr := "o.customer_id"
	if filter.Side == domain.SalesSideSupplier {
		sideExpr = "o.supplier_id"
	}
	return Compose(
		ScalarIn{Expr: "o.order_type", Values: single(filter.OrderType)},
		ScalarIn{Expr: "o.stage", Values: single(filter.Stage)},
		DateRange{Expr: "o.target_date", From: filter.TargetFrom, To: filter.TargetTo},
		IDIn{Expr: sideExpr, IDs: filter.PartyIDs},
		FreeText{
			Exprs: []string{
				"o.product_name", "o.id::text",
				"c.name", "c.company", "c.mobile",
				"s.name", "s.company", "s.mobile",
			},
			Term: filter.Search,
		},
	)
}

func single(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}
