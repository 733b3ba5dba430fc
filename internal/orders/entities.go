package orders

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultNoteField is the extra field this deployment reserves for operator notes.
const DefaultNoteField = "WhatWasDone"

const extraFieldsKey = "extraFields"

var ErrMalformedOrder = errors.New("order resource is not a JSON object")

// ExtraField is one (name, value) metadata pair attached to an order.
type ExtraField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OrderDocument is an order resource exactly as the platform returned it.
// Only extraFields is ever rewritten; every other key is copied through unchanged.
type OrderDocument struct {
	raw []byte
}

// ParseOrderDocument fails with ErrMalformedOrder unless raw is a JSON object.
func ParseOrderDocument(raw []byte) (*OrderDocument, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, ErrMalformedOrder
	}
	return &OrderDocument{raw: raw}, nil
}

// ExtraFields returns the normalized metadata. An absent or non-array extraFields is
// empty, and entries that are not objects are skipped.
func (d *OrderDocument) ExtraFields() []ExtraField {
	entries := d.entries()
	fields := make([]ExtraField, 0, len(entries))
	for _, raw := range entries {
		fields = append(fields, ExtraField{
			Name:  fieldName(raw),
			Value: gjson.Get(raw, "value").String(),
		})
	}
	return fields
}

// UpsertExtraField returns the extraFields array with name set to value. The first entry
// carrying name is updated in place (its other keys are kept), later duplicates are dropped,
// and a new entry is appended when none exists.
func (d *OrderDocument) UpsertExtraField(name, value string) (json.RawMessage, error) {
	entries := d.entries()
	out := make([]string, 0, len(entries)+1)

	found := false
	for _, raw := range entries {
		if fieldName(raw) != name {
			out = append(out, raw)
			continue
		}
		if found {
			continue
		}

		updated, err := sjson.Set(raw, "value", value)
		if err != nil {
			return nil, fmt.Errorf("failed to update extra field %q: %w", name, err)
		}
		out = append(out, updated)
		found = true
	}

	if !found {
		entry, err := json.Marshal(ExtraField{Name: name, Value: value})
		if err != nil {
			return nil, fmt.Errorf("failed to encode extra field %q: %w", name, err)
		}
		out = append(out, string(entry))
	}

	return json.RawMessage("[" + strings.Join(out, ",") + "]"), nil
}

// WithExtraFields returns the full document with extraFields replaced.
func (d *OrderDocument) WithExtraFields(fields json.RawMessage) (json.RawMessage, error) {
	doc, err := sjson.SetRawBytes(d.raw, extraFieldsKey, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", extraFieldsKey, err)
	}
	return doc, nil
}

// ExtraFieldsPatch returns a document holding only extraFields.
func ExtraFieldsPatch(fields json.RawMessage) (json.RawMessage, error) {
	doc, err := sjson.SetRawBytes([]byte(`{}`), extraFieldsKey, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", extraFieldsKey, err)
	}
	return doc, nil
}

func (d *OrderDocument) entries() []string {
	v := gjson.GetBytes(d.raw, extraFieldsKey)
	if !v.IsArray() {
		return nil
	}

	var entries []string
	for _, e := range v.Array() {
		if e.IsObject() {
			entries = append(entries, e.Raw)
		}
	}
	return entries
}

func fieldName(raw string) string {
	name := gjson.Get(raw, "name")
	if name.Type != gjson.String {
		return ""
	}
	return name.Str
}

// OrderItem is a purchased line shown in the account lookup.
type OrderItem struct {
	Name     string  `json:"name"`
	SKU      string  `json:"sku,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// OrderSummary is the customer-facing view of an order.
type OrderSummary struct {
	ID                string      `json:"id"`
	Number            string      `json:"number"`
	Date              string      `json:"date"`
	Status            string      `json:"status"`
	Total             float64     `json:"total"`
	Currency          string      `json:"currency"`
	PaymentStatus     string      `json:"paymentStatus,omitempty"`
	FulfillmentStatus string      `json:"fulfillmentStatus,omitempty"`
	Items             []OrderItem `json:"items"`
}

func summarizeOrder(o gjson.Result, currency string) OrderSummary {
	s := OrderSummary{
		ID:                o.Get("id").String(),
		Number:            o.Get("orderNumber").String(),
		Date:              o.Get("createDate").String(),
		Total:             o.Get("total").Float(),
		Currency:          currency,
		PaymentStatus:     o.Get("paymentStatus").String(),
		FulfillmentStatus: o.Get("fulfillmentStatus").String(),
		Items:             []OrderItem{},
	}
	if s.Number == "" {
		s.Number = s.ID
	}

	s.Status = s.FulfillmentStatus
	if s.Status == "" {
		s.Status = s.PaymentStatus
	}

	for _, item := range o.Get("items").Array() {
		s.Items = append(s.Items, OrderItem{
			Name:     item.Get("name").String(),
			SKU:      item.Get("sku").String(),
			Quantity: int(item.Get("quantity").Int()),
			Price:    item.Get("price").Float(),
			ImageURL: item.Get("imageUrl").String(),
		})
	}
	return s
}

func (s OrderSummary) matchesNumber(number string) bool {
	number = strings.TrimPrefix(strings.TrimSpace(number), "#")
	return s.Number == number || s.ID == number
}
