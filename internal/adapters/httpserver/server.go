package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/alxcrm/crmd/internal/domain"
	"github.com/alxcrm/crmd/internal/usecase"
)

type Server struct {
	customers *usecase.CustomerUC
	products  *usecase.ProductUC
	orders    *usecase.OrderUC
	stats     *usecase.StatsUC
	mux       *http.ServeMux
}

func New(c *usecase.CustomerUC, p *usecase.ProductUC, o *usecase.OrderUC, st *usecase.StatsUC) http.Handler {
	s := &Server{customers: c, products: p, orders: o, stats: st, mux: http.NewServeMux()}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/customers", s.listCustomers)
	s.mux.HandleFunc("POST /api/customers", s.createCustomer)
	s.mux.HandleFunc("POST /api/customers/bulk", s.bulkCreateCustomers)

	s.mux.HandleFunc("GET /api/products", s.listProducts)
	s.mux.HandleFunc("POST /api/products", s.createProduct)
	s.mux.HandleFunc("POST /api/products/restock", s.restockProducts)

	s.mux.HandleFunc("GET /api/orders", s.listOrders)
	s.mux.HandleFunc("POST /api/orders", s.createOrder)

	s.mux.HandleFunc("GET /api/stats", s.getStats)
	s.mux.HandleFunc("GET /admin/orders/export", s.exportOrders)
}

// filterOpts lifts every query parameter except orderBy into the filter
// option mapping; the compiler ignores names it does not recognize.
func filterOpts(r *http.Request) map[string]any {
	opts := map[string]any{}
	for name, vals := range r.URL.Query() {
		if name == "orderBy" || len(vals) == 0 {
			continue
		}
		opts[name] = vals[0]
	}
	return opts
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := s.customers.List(r.Context(), filterOpts(r), r.URL.Query().Get("orderBy"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": len(list)})
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.products.List(r.Context(), filterOpts(r), r.URL.Query().Get("orderBy"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": len(list)})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := s.orders.List(r.Context(), filterOpts(r), r.URL.Query().Get("orderBy"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": len(list)})
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateCustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "json", 400)
		return
	}
	c, err := s.customers.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 201, map[string]any{"success": true, "message": "Customer created", "customer": c})
}

func (s *Server) bulkCreateCustomers(w http.ResponseWriter, r *http.Request) {
	var in []usecase.CreateCustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "json", 400)
		return
	}
	res, err := s.customers.BulkCreate(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"success":   len(res.Errors) == 0,
		"message":   fmt.Sprintf("Created %d customers, %d errors", len(res.Created), len(res.Errors)),
		"customers": res.Created,
		"errors":    res.Errors,
	})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string      `json:"name"`
		Price json.Number `json:"price"`
		Stock *int        `json:"stock"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "json", 400)
		return
	}
	p, err := s.products.Create(r.Context(), usecase.CreateProductInput{
		Name:  req.Name,
		Price: req.Price.String(),
		Stock: req.Stock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 201, map[string]any{"success": true, "message": "Product created", "product": p})
}

func (s *Server) restockProducts(w http.ResponseWriter, r *http.Request) {
	req := struct {
		IncrementBy *int `json:"incrementBy"`
		Threshold   *int `json:"threshold"`
	}{}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
	}
	incrementBy, threshold := 10, 10
	if req.IncrementBy != nil {
		incrementBy = *req.IncrementBy
	}
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	res, err := s.products.RestockLowStock(r.Context(), incrementBy, threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"ok":              true,
		"message":         fmt.Sprintf("Updated %d low-stock products", res.UpdatedCount),
		"updatedCount":    res.UpdatedCount,
		"updatedProducts": res.Updated,
	})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "json", 400)
		return
	}
	o, err := s.orders.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 201, map[string]any{"success": true, "message": "Order created", "order": o})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customers, err := s.stats.CustomersCount(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	orders, err := s.stats.OrdersCount(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	revenue, err := s.stats.OrdersRevenue(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"customersCount": customers,
		"ordersCount":    orders,
		"ordersRevenue":  revenue,
	})
}

func (s *Server) exportOrders(w http.ResponseWriter, r *http.Request) {
	list, err := s.orders.List(r.Context(), nil, "order_date")
	if err != nil {
		writeError(w, err)
		return
	}
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"ID", "Customer", "Email", "Order date", "Status", "Total"})
	for i, o := range list {
		cell := fmt.Sprintf("A%d", i+2)
		_ = f.SetSheetRow(sheet, cell, &[]any{
			o.ID.String(),
			o.Customer.Name,
			o.Customer.Email,
			o.OrderDate.Format("2006-01-02 15:04"),
			string(o.Status),
			o.TotalAmount.String(),
		})
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("export orders")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var ce *domain.ConflictError
	var ufe *domain.UnknownFieldError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, 400, map[string]any{"success": false, "message": "Validation errors", "errors": ve.Reasons})
	case errors.As(err, &ufe):
		writeJSON(w, 400, map[string]any{"success": false, "message": "Bad request", "errors": []string{ufe.Error()}})
	case errors.As(err, &ce):
		writeJSON(w, 409, map[string]any{"success": false, "message": "Conflict", "errors": []string{ce.Error()}})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, 404, map[string]any{"success": false, "message": "Not found", "errors": []string{err.Error()}})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, 500, map[string]any{"success": false, "message": "Internal error"})
	}
}
