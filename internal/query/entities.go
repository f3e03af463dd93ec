package query

import (
	"cmp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alxcrm/crmd/internal/domain"
)

// Option and sort-field tables per entity. Tables are built once and
// shared; the recognized option names match the wire-level filter inputs.

var CustomerOptions = map[string]Option[domain.Customer]{
	"nameIcontains":  {Kind: KindIContains, Str: func(c domain.Customer) string { return c.Name }},
	"emailIcontains": {Kind: KindIContains, Str: func(c domain.Customer) string { return c.Email }},
	"createdAtGte":   {Kind: KindGte, Time: func(c domain.Customer) time.Time { return c.CreatedAt }},
	"createdAtLte":   {Kind: KindLte, Time: func(c domain.Customer) time.Time { return c.CreatedAt }},
	"phonePattern":   {Kind: KindPrefix, Str: func(c domain.Customer) string { return c.Phone }},
}

var ProductOptions = map[string]Option[domain.Product]{
	"nameIcontains": {Kind: KindIContains, Str: func(p domain.Product) string { return p.Name }},
	"priceGte":      {Kind: KindGte, Num: func(p domain.Product) decimal.Decimal { return p.Price }},
	"priceLte":      {Kind: KindLte, Num: func(p domain.Product) decimal.Decimal { return p.Price }},
	"stockGte":      {Kind: KindGte, Num: func(p domain.Product) decimal.Decimal { return decimal.NewFromInt(int64(p.Stock)) }},
	"stockLte":      {Kind: KindLte, Num: func(p domain.Product) decimal.Decimal { return decimal.NewFromInt(int64(p.Stock)) }},
}

var OrderOptions = map[string]Option[domain.Order]{
	"totalAmountGte": {Kind: KindGte, Num: func(o domain.Order) decimal.Decimal { return o.TotalAmount }},
	"totalAmountLte": {Kind: KindLte, Num: func(o domain.Order) decimal.Decimal { return o.TotalAmount }},
	"orderDateGte":   {Kind: KindGte, Time: func(o domain.Order) time.Time { return o.OrderDate }},
	"orderDateLte":   {Kind: KindLte, Time: func(o domain.Order) time.Time { return o.OrderDate }},
	// customer is a single-valued join, so no de-duplication is needed
	"customerName": {Kind: KindJoinIContains, Str: func(o domain.Order) string { return o.Customer.Name }},
	"productName": {Kind: KindJoinIContains, Strs: func(o domain.Order) []string {
		names := make([]string, len(o.Products))
		for i, p := range o.Products {
			names[i] = p.Name
		}
		return names
	}},
	"productId": {Kind: KindJoinEquals, IDs: func(o domain.Order) []string {
		ids := make([]string, len(o.Products))
		for i, p := range o.Products {
			ids[i] = p.ID.String()
		}
		return ids
	}},
}

var CustomerSortFields = sortAliases(map[string]CompareFunc[domain.Customer]{
	"name":       func(a, b domain.Customer) int { return strings.Compare(a.Name, b.Name) },
	"email":      func(a, b domain.Customer) int { return strings.Compare(a.Email, b.Email) },
	"created_at": func(a, b domain.Customer) int { return a.CreatedAt.Compare(b.CreatedAt) },
})

var ProductSortFields = sortAliases(map[string]CompareFunc[domain.Product]{
	"name":  func(a, b domain.Product) int { return strings.Compare(a.Name, b.Name) },
	"price": func(a, b domain.Product) int { return a.Price.Cmp(b.Price) },
	"stock": func(a, b domain.Product) int { return cmp.Compare(a.Stock, b.Stock) },
})

var OrderSortFields = sortAliases(map[string]CompareFunc[domain.Order]{
	"order_date":   func(a, b domain.Order) int { return a.OrderDate.Compare(b.OrderDate) },
	"total_amount": func(a, b domain.Order) int { return a.TotalAmount.Cmp(b.TotalAmount) },
	"status":       func(a, b domain.Order) int { return strings.Compare(string(a.Status), string(b.Status)) },
})

// sortAliases registers a camelCase alias for every snake_case field name,
// so both "order_date" and "orderDate" are accepted on the wire.
func sortAliases[T any](fields map[string]CompareFunc[T]) map[string]CompareFunc[T] {
	for name, cmpFn := range fields {
		parts := strings.Split(name, "_")
		for i := 1; i < len(parts); i++ {
			if parts[i] != "" {
				parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
			}
		}
		if alias := strings.Join(parts, ""); alias != name {
			fields[alias] = cmpFn
		}
	}
	return fields
}
