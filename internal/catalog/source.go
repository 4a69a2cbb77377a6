package catalog

import (
	"context"
	"embed"
	"fmt"
	"os"

	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
	"github.com/angelmondragon/craftbazaar/pkg/metrics"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/products.yaml
var fixtures embed.FS

// Source supplies catalog products to listing and detail surfaces.
type Source interface {
	Products(ctx context.Context, filter types.ProductFilter) ([]types.Product, error)
	Product(ctx context.Context, id string) (types.Product, error)
}

// RemoteAPI is the slice of the storefront client the remote source needs.
type RemoteAPI interface {
	GetProducts(ctx context.Context, filter types.ProductFilter) ([]types.Product, error)
	GetProduct(ctx context.Context, id string) (*types.Product, error)
}

// RemoteSource reads the live catalog from the storefront API.
type RemoteSource struct {
	api RemoteAPI
}

func NewRemoteSource(api RemoteAPI) (*RemoteSource, error) {
	if api == nil {
		return nil, fmt.Errorf("storefront api client is required")
	}
	return &RemoteSource{api: api}, nil
}

func (s *RemoteSource) Products(ctx context.Context, filter types.ProductFilter) ([]types.Product, error) {
	return s.api.GetProducts(ctx, filter)
}

func (s *RemoteSource) Product(ctx context.Context, id string) (types.Product, error) {
	p, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return types.Product{}, err
	}
	return *p, nil
}

// StaticSource serves a fixed catalog, e.g. the sample data shipped with the binary.
type StaticSource struct {
	products []types.Product
}

func NewStaticSource(products []types.Product) *StaticSource {
	return &StaticSource{products: append([]types.Product(nil), products...)}
}

type fixtureFile struct {
	Products []types.Product `yaml:"products"`
}

// ParseFixture decodes a YAML catalog fixture.
func ParseFixture(data []byte) ([]types.Product, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog fixture: %w", err)
	}
	for i, p := range file.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog fixture product %d has no id", i)
		}
		if p.Category != "" && !p.Category.IsValid() {
			return nil, fmt.Errorf("catalog fixture product %q has unknown category %q", p.ID, p.Category)
		}
	}
	return file.Products, nil
}

// LoadStaticSource reads a fixture file from disk.
func LoadStaticSource(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog fixture %q: %w", path, err)
	}
	products, err := ParseFixture(data)
	if err != nil {
		return nil, err
	}
	return NewStaticSource(products), nil
}

// DefaultStaticSource serves the embedded sample catalog.
func DefaultStaticSource() (*StaticSource, error) {
	data, err := fixtures.ReadFile("fixtures/products.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded catalog: %w", err)
	}
	products, err := ParseFixture(data)
	if err != nil {
		return nil, err
	}
	return NewStaticSource(products), nil
}

func (s *StaticSource) Products(_ context.Context, filter types.ProductFilter) ([]types.Product, error) {
	out := make([]types.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *StaticSource) Product(_ context.Context, id string) (types.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

// FallbackSource reads from primary and switches to fallback when primary fails.
type FallbackSource struct {
	primary  Source
	fallback Source
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
}

func NewFallbackSource(primary, fallback Source, logg *logger.Logger, m *metrics.StorefrontMetrics) (*FallbackSource, error) {
	if primary == nil || fallback == nil {
		return nil, fmt.Errorf("primary and fallback catalog sources are required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &FallbackSource{primary: primary, fallback: fallback, logg: logg, metrics: m}, nil
}

func (s *FallbackSource) Products(ctx context.Context, filter types.ProductFilter) ([]types.Product, error) {
	products, err := s.primary.Products(ctx, filter)
	if err == nil {
		return products, nil
	}
	s.recordFallback(ctx, "products", err)

	products, fbErr := s.fallback.Products(ctx, filter)
	if fbErr != nil {
		return nil, multierr.Combine(err, fbErr)
	}
	return products, nil
}

func (s *FallbackSource) Product(ctx context.Context, id string) (types.Product, error) {
	product, err := s.primary.Product(ctx, id)
	if err == nil {
		return product, nil
	}
	s.recordFallback(s.logg.WithProductID(ctx, id), "product", err)

	product, fbErr := s.fallback.Product(ctx, id)
	if fbErr != nil {
		return types.Product{}, multierr.Combine(err, fbErr)
	}
	return product, nil
}

func (s *FallbackSource) recordFallback(ctx context.Context, op string, err error) {
	s.metrics.IncCatalogFallback(op)
	s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "catalog fetch failed, serving sample catalog")
}
