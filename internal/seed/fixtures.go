package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// CatalogFile is the YAML shape of a catalog fixture.
type CatalogFile struct {
	Items []ItemFixture `yaml:"items"`
}

type ItemFixture struct {
	Name           string            `yaml:"name"`
	Brand          string            `yaml:"brand"`
	Category       string            `yaml:"category"`
	Price          string            `yaml:"price"`
	Stock          int               `yaml:"stock"`
	Featured       bool              `yaml:"featured"`
	ImageURL       string            `yaml:"image_url"`
	Description    string            `yaml:"description"`
	Specifications map[string]string `yaml:"specifications"`
}

// DefaultCatalog returns the fixture compiled into the binary.
func DefaultCatalog() (*CatalogFile, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes a YAML catalog and rejects entries that could not be stored.
func ParseCatalog(data []byte) (*CatalogFile, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	for i, item := range file.Items {
		if _, err := item.toModel(); err != nil {
			return nil, fmt.Errorf("catalog item %d (%s): %w", i, item.Name, err)
		}
	}
	return &file, nil
}

func (f ItemFixture) toModel() (*models.CatalogItem, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	category, err := enums.ParseItemCategory(f.Category)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", f.Price, err)
	}
	if price.IsNegative() || f.Stock < 0 {
		return nil, fmt.Errorf("price and stock must not be negative")
	}
	return &models.CatalogItem{
		Name:        name,
		Brand:       strings.TrimSpace(f.Brand),
		Category:    category,
		Price:       price,
		Stock:       f.Stock,
		IsFeatured:  f.Featured,
		Reviews:     models.Reviews{},
		ImageURL:    strings.TrimSpace(f.ImageURL),
		Description: strings.TrimSpace(f.Description),
		Specifications: models.Specifications{
			Engine:       f.Specifications["engine"],
			Power:        f.Specifications["power"],
			Torque:       f.Specifications["torque"],
			Transmission: f.Specifications["transmission"],
			Weight:       f.Specifications["weight"],
			FuelCapacity: f.Specifications["fuel_capacity"],
		},
	}, nil
}
