package catalog

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CatalogUseCaseInterface is what the handler needs from CatalogUseCase.
type CatalogUseCaseInterface interface {
	ListProducts(ctx context.Context) Listing
}

// CatalogHandler exposes the product listing over HTTP.
type CatalogHandler struct {
	useCase CatalogUseCaseInterface
	tracer  trace.Tracer
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(useCase CatalogUseCaseInterface, tracer trace.Tracer) *CatalogHandler {
	return &CatalogHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// RegisterRoutes mounts GET /products on r.
func (h *CatalogHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/products", h.ListProducts)
}

// ListProducts handles GET /products.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_products")
	defer span.End()

	listing := h.useCase.ListProducts(ctx)
	span.SetAttributes(
		attribute.Int("products", len(listing.Products)),
		attribute.Bool("fallback", listing.Fallback),
	)

	c.JSON(http.StatusOK, listing)
}
