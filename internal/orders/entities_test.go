package orders

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseOrderDocument(t *testing.T) {
	cases := map[string]struct {
		raw     string
		wantErr bool
	}{
		"object":    {raw: `{"id":1}`},
		"array":     {raw: `[{"id":1}]`, wantErr: true},
		"string":    {raw: `"order"`, wantErr: true},
		"not json":  {raw: `{"id":`, wantErr: true},
		"empty":     {raw: ``, wantErr: true},
		"no fields": {raw: `{}`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := ParseOrderDocument([]byte(tc.raw))

			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedOrder)
				assert.Nil(t, doc)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, doc)
		})
	}
}

func TestOrderDocument_ExtraFieldsNormalization(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want []ExtraField
	}{
		"absent": {
			raw:  `{"id":1}`,
			want: []ExtraField{},
		},
		"null": {
			raw:  `{"id":1,"extraFields":null}`,
			want: []ExtraField{},
		},
		"object instead of array": {
			raw:  `{"id":1,"extraFields":{"name":"WhatWasDone","value":"x"}}`,
			want: []ExtraField{},
		},
		"string instead of array": {
			raw:  `{"id":1,"extraFields":"WhatWasDone"}`,
			want: []ExtraField{},
		},
		"mixed entries": {
			raw: `{"id":1,"extraFields":[{"name":"Color","value":"red"},42,"junk",{"name":"Stylist","value":"Rae","title":"Stylist"}]}`,
			want: []ExtraField{
				{Name: "Color", Value: "red"},
				{Name: "Stylist", Value: "Rae"},
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := ParseOrderDocument([]byte(tc.raw))
			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, doc.ExtraFields()); diff != "" {
				t.Errorf("ExtraFields() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrderDocument_UpsertExtraField(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want []ExtraField
	}{
		"append when absent": {
			raw: `{"id":1}`,
			want: []ExtraField{
				{Name: "WhatWasDone", Value: "silk press"},
			},
		},
		"append next to unrelated field": {
			raw: `{"id":1,"extraFields":[{"name":"Color","value":"red"}]}`,
			want: []ExtraField{
				{Name: "Color", Value: "red"},
				{Name: "WhatWasDone", Value: "silk press"},
			},
		},
		"update in place": {
			raw: `{"id":1,"extraFields":[{"name":"WhatWasDone","value":"trim"},{"name":"Color","value":"red"}]}`,
			want: []ExtraField{
				{Name: "WhatWasDone", Value: "silk press"},
				{Name: "Color", Value: "red"},
			},
		},
		"collapse duplicates": {
			raw: `{"id":1,"extraFields":[{"name":"WhatWasDone","value":"a"},{"name":"Color","value":"red"},{"name":"WhatWasDone","value":"b"}]}`,
			want: []ExtraField{
				{Name: "WhatWasDone", Value: "silk press"},
				{Name: "Color", Value: "red"},
			},
		},
		"non-string name is not the reserved key": {
			raw: `{"id":1,"extraFields":[{"name":7,"value":"x"}]}`,
			want: []ExtraField{
				{Name: "", Value: "x"},
				{Name: "WhatWasDone", Value: "silk press"},
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := ParseOrderDocument([]byte(tc.raw))
			require.NoError(t, err)

			fields, err := doc.UpsertExtraField(DefaultNoteField, "silk press")
			require.NoError(t, err)

			got := extraFieldsOf(t, fields)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("UpsertExtraField() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func extraFieldsOf(t *testing.T, fields json.RawMessage) []ExtraField {
	t.Helper()

	patch, err := ExtraFieldsPatch(fields)
	require.NoError(t, err)
	doc, err := ParseOrderDocument(patch)
	require.NoError(t, err)
	return doc.ExtraFields()
}

func TestOrderDocument_UpsertKeepsEntryKeys(t *testing.T) {
	raw := `{"id":1,"extraFields":[{"id":"f1","name":"WhatWasDone","value":"old","orderDetailsDisplaySection":"order_comments"}]}`
	doc, err := ParseOrderDocument([]byte(raw))
	require.NoError(t, err)

	fields, err := doc.UpsertExtraField(DefaultNoteField, `said "hi"`)

	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":"f1","name":"WhatWasDone","value":"said \"hi\"","orderDetailsDisplaySection":"order_comments"}]`,
		string(fields),
	)
}

func TestOrderDocument_WithExtraFields(t *testing.T) {
	raw := `{"id":1,"email":"a@b.co","total":42.5,"items":[{"name":"Honee Oil"}],"extraFields":"broken"}`
	doc, err := ParseOrderDocument([]byte(raw))
	require.NoError(t, err)

	fields, err := doc.UpsertExtraField(DefaultNoteField, "deep condition")
	require.NoError(t, err)
	full, err := doc.WithExtraFields(fields)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"id":1,"email":"a@b.co","total":42.5,"items":[{"name":"Honee Oil"}],"extraFields":[{"name":"WhatWasDone","value":"deep condition"}]}`,
		string(full),
	)
}

func TestExtraFieldsPatch(t *testing.T) {
	patch, err := ExtraFieldsPatch(json.RawMessage(`[{"name":"WhatWasDone","value":"x"}]`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"extraFields":[{"name":"WhatWasDone","value":"x"}]}`, string(patch))
}

func TestSummarizeOrder(t *testing.T) {
	raw := `{
		"id": "XJ12H",
		"orderNumber": 1054,
		"createDate": "2025-03-01 10:00:00 +0000",
		"total": 38.99,
		"paymentStatus": "PAID",
		"items": [{"name": "The Honee Oil — 8oz", "sku": "HO-8", "quantity": 2, "price": 19, "imageUrl": "https://img/ho.jpg"}]
	}`

	got := summarizeOrder(gjson.Parse(raw), "USD")

	want := OrderSummary{
		ID:            "XJ12H",
		Number:        "1054",
		Date:          "2025-03-01 10:00:00 +0000",
		Status:        "PAID",
		Total:         38.99,
		Currency:      "USD",
		PaymentStatus: "PAID",
		Items: []OrderItem{
			{Name: "The Honee Oil — 8oz", SKU: "HO-8", Quantity: 2, Price: 19, ImageURL: "https://img/ho.jpg"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summarizeOrder() mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, got.matchesNumber("1054"))
	assert.True(t, got.matchesNumber("#1054"))
	assert.True(t, got.matchesNumber("XJ12H"))
	assert.False(t, got.matchesNumber("1055"))
}
