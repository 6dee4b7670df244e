package models

import (
	"strconv"
	"strings"

	dErrors "foodsupply/pkg/domain-errors"
)

// DefaultQuantity applies when a product descriptor omits the quantity.
const DefaultQuantity Quantity = 1

// Quantity counts units of a product in a listing. Always at least 1.
type Quantity uint32

// ParseQuantity parses a decimal count; an empty string yields DefaultQuantity.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultQuantity, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid quantity: "+s)
	}
	return Quantity(n), nil
}

func (q Quantity) String() string {
	return strconv.FormatUint(uint64(q), 10)
}

// Product is a value object; a listing's products never change after creation.
type Product struct {
	ProductID string   `json:"product_id"`
	CountryID string   `json:"country_id"`
	Quantity  Quantity `json:"quantity"`
}

// ParseProductDescriptor reads a "productId[,quantity]" token. countryID is
// the creating supplier's country. A missing or blank quantity defaults to 1;
// tokens after the quantity are ignored.
func ParseProductDescriptor(descriptor, countryID string) (Product, error) {
	parts := strings.Split(descriptor, ",")
	productID := strings.TrimSpace(parts[0])
	if productID == "" {
		return Product{}, dErrors.New(dErrors.CodeValidation, "product id is required")
	}
	qty := ""
	if len(parts) > 1 {
		qty = parts[1]
	}
	quantity, err := ParseQuantity(qty)
	if err != nil {
		return Product{}, err
	}
	return Product{ProductID: productID, CountryID: countryID, Quantity: quantity}, nil
}

// ParseProductDescriptors parses every descriptor in order.
func ParseProductDescriptors(descriptors []string, countryID string) ([]Product, error) {
	if len(descriptors) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "Product list Empty")
	}
	products := make([]Product, 0, len(descriptors))
	for _, d := range descriptors {
		p, err := ParseProductDescriptor(d, countryID)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
