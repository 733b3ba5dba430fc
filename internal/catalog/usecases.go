// Package catalog lists the shop's products from the store API, falling back to a
// built-in list when the store is unreachable or empty.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

// DefaultLimit is how many products the shop page asks the store for.
const DefaultLimit = 12

// Product is one item shown on the shop page.
type Product struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Price       float64 `json:"price" yaml:"price"`
	URL         string  `json:"url,omitempty" yaml:"url"`
	ImageURL    string  `json:"imageUrl,omitempty" yaml:"imageUrl"`
	Description string  `json:"description,omitempty" yaml:"description"`
}

// Listing is the shop page payload. Fallback is set when Products is the built-in list.
type Listing struct {
	Products []Product `json:"products"`
	Fallback bool      `json:"fallback"`
}

// Gateway is the read side of the commerce platform.
type Gateway interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// CatalogUseCase lists products, never failing: any store problem yields the built-in list.
type CatalogUseCase struct {
	gateway  Gateway
	fallback []Product
	limit    int
	logger   *zap.Logger
}

// NewCatalogUseCase loads the embedded fallback list and applies DefaultLimit when limit is not positive.
func NewCatalogUseCase(gateway Gateway, limit int, logger *zap.Logger) (*CatalogUseCase, error) {
	fallback, err := LoadFallback(fallbackYAML)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &CatalogUseCase{
		gateway:  gateway,
		fallback: fallback,
		limit:    limit,
		logger:   logger,
	}, nil
}

// LoadFallback decodes a YAML product list.
func LoadFallback(data []byte) ([]Product, error) {
	var products []Product
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode fallback catalog: %w", err)
	}
	return products, nil
}

// ListProducts never fails: store errors are logged and the fallback list is served.
func (uc *CatalogUseCase) ListProducts(ctx context.Context) Listing {
	query := url.Values{}
	query.Set("enabled", "true")
	query.Set("limit", strconv.Itoa(uc.limit))

	raw, err := uc.gateway.Get(ctx, "/products?"+query.Encode())
	if err != nil {
		uc.logger.Warn("failed to fetch products, serving fallback catalog", zap.Error(err))
		return uc.fallbackListing()
	}

	items := gjson.GetBytes(raw, "items").Array()
	if len(items) == 0 {
		return uc.fallbackListing()
	}

	products := make([]Product, 0, len(items))
	for _, p := range items {
		products = append(products, Product{
			ID:          p.Get("id").String(),
			Name:        p.Get("name").String(),
			Price:       p.Get("price").Float(),
			URL:         p.Get("url").String(),
			ImageURL:    bestImage(p),
			Description: p.Get("description").String(),
		})
	}
	return Listing{Products: products}
}

func (uc *CatalogUseCase) fallbackListing() Listing {
	products := make([]Product, len(uc.fallback))
	copy(products, uc.fallback)
	return Listing{Products: products, Fallback: true}
}

func bestImage(p gjson.Result) string {
	for _, path := range []string{"imageUrl", "originalImageUrl", "galleryImages.0.url"} {
		if v := p.Get(path).String(); v != "" {
			return v
		}
	}
	return ""
}
