package usecase

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alxcrm/crmd/internal/domain"
)

// Accepted phone shapes: +<7..15 digits> or NNN-NNN-NNNN.
var phoneRe = regexp.MustCompile(`^(\+\d{7,15}|\d{3}-\d{3}-\d{4})$`)

// validateCustomer normalizes a creation payload and reports every format
// problem at once. Uniqueness is checked separately against the store.
func validateCustomer(in CreateCustomerInput) (domain.Customer, []string) {
	var reasons []string
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)
	if name == "" {
		reasons = append(reasons, "name is required")
	}
	if email == "" {
		reasons = append(reasons, "email is required")
	}
	if phone != "" && !phoneRe.MatchString(phone) {
		reasons = append(reasons, "invalid phone format")
	}
	return domain.Customer{Name: name, Email: email, Phone: phone}, reasons
}

func validateProduct(in CreateProductInput) (domain.Product, []string) {
	var reasons []string
	name := strings.TrimSpace(in.Name)
	if name == "" {
		reasons = append(reasons, "name is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		reasons = append(reasons, "invalid price")
	} else if price.LessThanOrEqual(decimal.Zero) {
		reasons = append(reasons, "price must be positive")
	}
	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
		if stock < 0 {
			reasons = append(reasons, "stock cannot be negative")
		}
	}
	return domain.Product{Name: name, Price: price, Stock: stock}, reasons
}
