package pricelist

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document is a full price list: one shop, its category dictionary and goods.
type Document struct {
	Shop       string     `yaml:"shop" json:"shop"`
	Categories []Category `yaml:"categories" json:"categories"`
	Goods      []Good     `yaml:"goods" json:"goods"`
}

type Category struct {
	ID   int64  `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type Good struct {
	ID         int64                  `yaml:"id" json:"id" csv:"id"`
	Category   int64                  `yaml:"category" json:"category" csv:"category"`
	Name       string                 `yaml:"name" json:"name" csv:"name"`
	Model      string                 `yaml:"model" json:"model" csv:"model"`
	Price      float64                `yaml:"price" json:"price" csv:"price"`
	PriceRrc   float64                `yaml:"price_rrc" json:"price_rrc" csv:"price_rrc"`
	Quantity   int64                  `yaml:"quantity" json:"quantity" csv:"quantity"`
	Parameters map[string]interface{} `yaml:"parameters" json:"parameters" csv:"-"`
}

// ParseDocument decodes a full price-list document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse price list")
	}
	if strings.TrimSpace(doc.Shop) == "" {
		return nil, errors.New("price list has no shop name")
	}
	if len(doc.Goods) == 0 {
		return nil, errors.New("price list has no goods")
	}
	return &doc, nil
}

// ParseGoods decodes a goods-only price list, the format suppliers upload for
// an already registered shop.
func ParseGoods(data []byte) ([]Good, error) {
	var goods []Good
	if err := yaml.Unmarshal(data, &goods); err != nil {
		return nil, errors.Wrap(err, "parse goods list")
	}
	if len(goods) == 0 {
		return nil, errors.New("goods list is empty")
	}
	return goods, nil
}
