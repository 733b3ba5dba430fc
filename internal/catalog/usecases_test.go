package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Get(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

const productsPath = "/products?enabled=true&limit=12"

func TestLoadFallback(t *testing.T) {
	products, err := LoadFallback(fallbackYAML)

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "healing-honee-3oz", products[0].ID)
	assert.Equal(t, 19.99, products[0].Price)
	assert.Equal(t, "Best value bundle: 8oz Honee Oil + 3oz Healing Honee. Save and glow.", products[2].Description)

	_, err = LoadFallback([]byte("- id: [unclosed"))
	assert.Error(t, err)
}

func TestListProducts_FromStore(t *testing.T) {
	// Arrange
	gateway := new(MockGateway)
	gateway.On("Get", mock.Anything, productsPath).Return([]byte(`{"count":3,"items":[
		{"id":101,"name":"Honee Oil","price":19,"url":"https://shop/honee","imageUrl":"https://img/a.jpg","description":"oil"},
		{"id":102,"name":"Healing Honee","price":19.99,"originalImageUrl":"https://img/b-orig.jpg"},
		{"id":103,"name":"Duo","price":29.99,"galleryImages":[{"url":"https://img/c-1.jpg"},{"url":"https://img/c-2.jpg"}]},
		{"id":104,"name":"Gift Card","price":50}
	]}`), nil)
	uc, err := NewCatalogUseCase(gateway, 12, zap.NewNop())
	require.NoError(t, err)

	// Act
	listing := uc.ListProducts(context.Background())

	// Assert
	assert.False(t, listing.Fallback)
	assert.Equal(t, []Product{
		{ID: "101", Name: "Honee Oil", Price: 19, URL: "https://shop/honee", ImageURL: "https://img/a.jpg", Description: "oil"},
		{ID: "102", Name: "Healing Honee", Price: 19.99, ImageURL: "https://img/b-orig.jpg"},
		{ID: "103", Name: "Duo", Price: 29.99, ImageURL: "https://img/c-1.jpg"},
		{ID: "104", Name: "Gift Card", Price: 50},
	}, listing.Products)
	gateway.AssertExpectations(t)
}

func TestListProducts_Fallback(t *testing.T) {
	cases := map[string]struct {
		body    []byte
		err     error
		wantLog bool
	}{
		"store error": {
			err:     errors.New("ecwid: GET /products failed 503"),
			wantLog: true,
		},
		"no items": {
			body: []byte(`{"count":0,"items":[]}`),
		},
		"unexpected shape": {
			body: []byte(`{"products":"none"}`),
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			gateway := new(MockGateway)
			if tc.err != nil {
				gateway.On("Get", mock.Anything, productsPath).Return(nil, tc.err)
			} else {
				gateway.On("Get", mock.Anything, productsPath).Return(tc.body, nil)
			}
			uc, err := NewCatalogUseCase(gateway, 0, zap.New(core))
			require.NoError(t, err)

			listing := uc.ListProducts(context.Background())

			assert.True(t, listing.Fallback)
			assert.Len(t, listing.Products, 3)
			assert.Equal(t, tc.wantLog, logs.Len() == 1)
		})
	}
}

func TestCatalogHandler_ListProducts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gateway := new(MockGateway)
	gateway.On("Get", mock.Anything, productsPath).Return(nil, errors.New("down"))
	uc, err := NewCatalogUseCase(gateway, 12, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	NewCatalogHandler(uc, noop.NewTracerProvider().Tracer("test")).RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fallback":true`)
	assert.Contains(t, w.Body.String(), `"name":"The Healing Honee Duo"`)
}
