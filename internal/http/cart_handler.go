package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartEngine is the part of the cart service the handlers use.
type CartEngine interface {
	GetCart(ctx context.Context, sessionID string) (service.View, error)
	AddItem(ctx context.Context, sessionID, productID string) (service.View, error)
	RemoveOne(ctx context.Context, sessionID, productID string) (service.View, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (service.View, error)
	DeleteLine(ctx context.Context, sessionID, productID string) (service.View, error)
	ClearCart(ctx context.Context, sessionID string) (service.View, error)
	Checkout(ctx context.Context, sessionID, userID string) (service.CheckoutResult, error)
	Product(ctx context.Context, productID string) (domain.Product, error)
	Catalog() *domain.Catalog
	Config() domain.PricingConfig
}

type CartHandler struct {
	engine CartEngine
	logger *zap.Logger
}

func NewCartHandler(engine CartEngine, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		engine: engine,
		logger: logger,
	}
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartLineDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price,omitempty"`
	LineTotal string `json:"line_total,omitempty"`
	Resolved  bool   `json:"resolved"`
}

type CartResponseDTO struct {
	SessionID             string        `json:"session_id"`
	Items                 []CartLineDTO `json:"items"`
	ItemCount             int           `json:"item_count"`
	Subtotal              string        `json:"subtotal"`
	DeliveryFee           string        `json:"delivery_fee"`
	Total                 string        `json:"total"`
	Savings               string        `json:"savings"`
	FreeDelivery          bool          `json:"free_delivery"`
	AmountForFreeDelivery string        `json:"amount_for_free_delivery"`
	FreeDeliveryProgress  float64       `json:"free_delivery_progress"`
	FreeDeliveryUnlocked  bool          `json:"free_delivery_unlocked"`
}

type CheckoutResponseDTO struct {
	Signal string          `json:"signal"`
	Cart   CartResponseDTO `json:"cart"`
}

type ProductDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Price      string   `json:"price"`
	OfferPrice string   `json:"offer_price"`
	InStock    bool     `json:"in_stock"`
	Images     []string `json:"images"`
	InCart     int      `json:"in_cart"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// GET /api/v1/products?category=&q=&include_out_of_stock=
// Out-of-stock products are hidden unless include_out_of_stock=true.
func (h *CartHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	products := h.engine.Catalog().Products()
	if query.Get("include_out_of_stock") != "true" {
		products = domain.InStock(products)
	}
	products = domain.FilterByCategory(products, query.Get("category"))
	products = domain.Search(products, query.Get("q"))

	view, err := h.engine.GetCart(r.Context(), getSessionID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	symbol := h.engine.Config().CurrencySymbol
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p, symbol, view.Cart[p.ID]))
	}
	respondJSON(w, http.StatusOK, out)
}

// GET /api/v1/products/{product_id}
func (h *CartHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.engine.Product(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	view, err := h.engine.GetCart(r.Context(), getSessionID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductDTO(product, h.engine.Config().CurrencySymbol, view.Cart[product.ID]))
}

func toProductDTO(p domain.Product, symbol string, inCart int) ProductDTO {
	return ProductDTO{
		ID:         p.ID,
		Name:       p.Name,
		Category:   p.Category,
		Price:      pricing.FormatMoney(symbol, p.Price),
		OfferPrice: pricing.FormatMoney(symbol, p.OfferPrice),
		InStock:    p.InStock,
		Images:     p.Images,
		InCart:     inCart,
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.GetCart(r.Context(), getSessionID(r.Context()))
	h.respondView(w, http.StatusOK, view, err)
}

// POST /api/v1/cart/items/{product_id}
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.AddItem(r.Context(), getSessionID(r.Context()), chi.URLParam(r, "product_id"))
	h.respondView(w, http.StatusOK, view, err)
}

// POST /api/v1/cart/items/{product_id}/decrement
func (h *CartHandler) RemoveOne(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.RemoveOne(r.Context(), getSessionID(r.Context()), chi.URLParam(r, "product_id"))
	h.respondView(w, http.StatusOK, view, err)
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	view, err := h.engine.SetQuantity(r.Context(), getSessionID(r.Context()), chi.URLParam(r, "product_id"), *req.Quantity)
	h.respondView(w, http.StatusOK, view, err)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.DeleteLine(r.Context(), getSessionID(r.Context()), chi.URLParam(r, "product_id"))
	h.respondView(w, http.StatusOK, view, err)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.ClearCart(r.Context(), getSessionID(r.Context()))
	h.respondView(w, http.StatusOK, view, err)
}

// POST /api/v1/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Checkout(r.Context(), getSessionID(r.Context()), getUserID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	status := http.StatusOK
	if result.Signal == checkout.RequestAuthentication {
		status = http.StatusUnauthorized
	}
	respondJSON(w, status, CheckoutResponseDTO{
		Signal: result.Signal.String(),
		Cart:   h.toDTO(result.View),
	})
}

func (h *CartHandler) respondView(w http.ResponseWriter, status int, view service.View, err error) {
	if err != nil {
		h.handleError(w, err)
		return
	}
	respondJSON(w, status, h.toDTO(view))
}

func (h *CartHandler) toDTO(view service.View) CartResponseDTO {
	symbol := h.engine.Config().CurrencySymbol
	snap := view.Pricing

	items := make([]CartLineDTO, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		dto := CartLineDTO{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Resolved:  line.Resolved,
		}
		if line.Resolved {
			dto.UnitPrice = pricing.FormatMoney(symbol, line.UnitPrice)
			dto.LineTotal = pricing.FormatMoney(symbol, line.LineTotal)
		}
		items = append(items, dto)
	}

	return CartResponseDTO{
		SessionID:             view.SessionID,
		Items:                 items,
		ItemCount:             snap.ItemCount,
		Subtotal:              pricing.FormatMoney(symbol, snap.Subtotal),
		DeliveryFee:           pricing.FormatMoney(symbol, snap.DeliveryFee),
		Total:                 pricing.FormatMoney(symbol, snap.Total),
		Savings:               pricing.FormatMoney(symbol, snap.Savings),
		FreeDelivery:          snap.FreeDeliveryEligible,
		AmountForFreeDelivery: pricing.FormatMoney(symbol, snap.AmountForFreeDelivery),
		FreeDeliveryProgress:  pricing.Round(snap.FreeDeliveryProgress),
		FreeDeliveryUnlocked:  view.FreeDeliveryUnlocked,
	}
}

func (h *CartHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProductID):
		respondError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
	case errors.Is(err, service.ErrInvalidSessionID):
		respondError(w, http.StatusBadRequest, "invalid_session", err.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, service.ErrCartUnavailable):
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "cart storage is temporarily unavailable")
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, service.ErrOrderSubmission):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "order submission failed")
	default:
		h.logger.Error("unhandled cart error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
