package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderUseCaseInterface is what the handlers need from OrderUseCase.
type OrderUseCaseInterface interface {
	Annotate(ctx context.Context, orderID, note string) error
	GetOrder(ctx context.Context, orderID string) (json.RawMessage, error)
	LookupOrders(ctx context.Context, email, orderNumber string) ([]OrderSummary, error)
}

// NoteRequest is the body of POST /orders/:id/note.
type NoteRequest struct {
	Note string `json:"note"`
}

// LookupRequest is the body of POST /account/lookup.
type LookupRequest struct {
	Email       string `json:"email"`
	OrderNumber string `json:"orderNumber,omitempty"`
}

// OrderHandler exposes the order use cases over HTTP.
type OrderHandler struct {
	useCase OrderUseCaseInterface
	tracer  trace.Tracer
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(useCase OrderUseCaseInterface, tracer trace.Tracer) *OrderHandler {
	return &OrderHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// RegisterRoutes mounts the order and account routes on r.
func (h *OrderHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/orders/:id", h.GetOrder)
	r.POST("/orders/:id/note", h.AddNote)
	r.POST("/account/lookup", h.LookupOrders)
}

// AddNote handles POST /orders/:id/note.
func (h *OrderHandler) AddNote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "annotate_order")
	defer span.End()

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order_id", orderID))

	var req NoteRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := h.useCase.Annotate(ctx, orderID, req.Note); err != nil {
		writeError(c, span, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetOrder handles GET /orders/:id.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_order")
	defer span.End()

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order_id", orderID))

	order, err := h.useCase.GetOrder(ctx, orderID)
	if err != nil {
		writeError(c, span, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", order)
}

// LookupOrders handles POST /account/lookup.
func (h *OrderHandler) LookupOrders(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "lookup_orders")
	defer span.End()

	var req LookupRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	orders, err := h.useCase.LookupOrders(ctx, req.Email, req.OrderNumber)
	if err != nil {
		writeError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int("orders", len(orders)))
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// bindOptionalJSON treats an empty body as an empty request so that validation,
// not decoding, reports the missing fields.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		return
	}

	// The use case has already logged the failure with its order context.
	span.SetStatus(codes.Error, "order operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
