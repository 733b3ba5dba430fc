package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/LWashington6935/designerae-site/internal/config"
	"github.com/LWashington6935/designerae-site/internal/ecwid"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Gateway is the commerce platform boundary the use cases depend on.
type Gateway interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, payload any) ([]byte, error)
}

// OrderUseCase holds the order business logic. It keeps no state between calls:
// every annotation re-reads the order before deciding between insert and update.
//
// The read-modify-write in Annotate carries no version check, so two concurrent notes on
// the same order race and the last write wins.
type OrderUseCase struct {
	gateway     Gateway
	cfg         config.Orders
	logger      *zap.Logger
	annotations metric.Int64Counter
}

// NewOrderUseCase fills unset note field, write mode and lookup limit with their defaults.
func NewOrderUseCase(gateway Gateway, cfg config.Orders, logger *zap.Logger) (*OrderUseCase, error) {
	if cfg.NoteField == "" {
		cfg.NoteField = DefaultNoteField
	}
	if cfg.WriteMode == "" {
		cfg.WriteMode = config.WriteModeDocument
	}
	if cfg.LookupLimit <= 0 {
		cfg.LookupLimit = 100
	}

	annotations, err := otel.Meter("designerae/orders").Int64Counter(
		"orders.annotations",
		metric.WithDescription("Order note annotation attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create annotation counter: %w", err)
	}

	return &OrderUseCase{
		gateway:     gateway,
		cfg:         cfg,
		logger:      logger,
		annotations: annotations,
	}, nil
}

// Annotate upserts the note into the order's reserved extra field.
//
// A failed fetch guarantees nothing was written. A failed write does not: the platform may
// have applied the update even though the response was lost.
func (uc *OrderUseCase) Annotate(ctx context.Context, orderID, note string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		uc.count(ctx, "invalid")
		return ErrMissingOrderID
	}
	if strings.TrimSpace(note) == "" {
		uc.count(ctx, "invalid")
		return ErrMissingNote
	}

	path := orderPath(orderID)

	raw, err := uc.gateway.Get(ctx, path)
	if err != nil {
		uc.count(ctx, "gateway_error")
		uc.logger.Error("failed to fetch order for annotation", zap.String("order_id", orderID), zap.Error(err))
		return fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}

	doc, err := ParseOrderDocument(raw)
	if err != nil {
		uc.count(ctx, "gateway_error")
		uc.logger.Error("order resource is malformed", zap.String("order_id", orderID))
		return fmt.Errorf("failed to fetch order %s: %w", orderID,
			&ecwid.GatewayError{Method: http.MethodGet, Path: path, Err: err})
	}

	fields, err := doc.UpsertExtraField(uc.cfg.NoteField, note)
	if err != nil {
		return err
	}

	var payload json.RawMessage
	if uc.cfg.WriteMode == config.WriteModeFields {
		payload, err = ExtraFieldsPatch(fields)
	} else {
		payload, err = doc.WithExtraFields(fields)
	}
	if err != nil {
		return err
	}

	if _, err := uc.gateway.Put(ctx, path, payload); err != nil {
		uc.count(ctx, "gateway_error")
		uc.logger.Error("failed to write order note", zap.String("order_id", orderID), zap.Error(err))
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}

	uc.count(ctx, "ok")
	uc.logger.Info("order note saved", zap.String("order_id", orderID), zap.String("field", uc.cfg.NoteField))
	return nil
}

// GetOrder returns the raw order resource.
func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, ErrMissingOrderID
	}

	raw, err := uc.gateway.Get(ctx, orderPath(orderID))
	if err != nil {
		uc.logger.Error("failed to fetch order", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}
	return raw, nil
}

// LookupOrders lists the orders placed with email, optionally narrowed to one order number.
func (uc *OrderUseCase) LookupOrders(ctx context.Context, email, orderNumber string) ([]OrderSummary, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	query := url.Values{}
	query.Set("email", email)
	query.Set("limit", strconv.Itoa(uc.cfg.LookupLimit))

	raw, err := uc.gateway.Get(ctx, "/orders?"+query.Encode())
	if err != nil {
		uc.logger.Error("failed to search orders", zap.Error(err))
		return nil, fmt.Errorf("failed to search orders: %w", err)
	}

	orderNumber = strings.TrimSpace(orderNumber)
	summaries := []OrderSummary{}
	for _, item := range gjson.GetBytes(raw, "items").Array() {
		summary := summarizeOrder(item, uc.cfg.Currency)
		if orderNumber != "" && !summary.matchesNumber(orderNumber) {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (uc *OrderUseCase) count(ctx context.Context, outcome string) {
	uc.annotations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func orderPath(orderID string) string {
	return "/orders/" + url.PathEscape(orderID)
}
