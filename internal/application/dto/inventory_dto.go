package dto

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SortKey columnas por las que se puede ordenar el listado.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortBySKU      SortKey = "sku"
	SortByPrice    SortKey = "price"
	SortByQuantity SortKey = "quantity"
)

// ParseSortKey valida una clave de orden venida de la capa de presentación.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortByName, SortBySKU, SortByPrice, SortByQuantity:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("clave de orden desconocida: %q", s)
}

// SortConfig orden vigente del listado. Solo muta por acción explícita del
// usuario; por defecto nombre ascendente.
type SortConfig struct {
	Key        SortKey
	Descending bool
}

// Stats agregados calculados sobre la colección completa (sin filtrar).
type Stats struct {
	TotalItems           int
	TotalValue           decimal.Decimal // Σ price·quantity
	LowStockCount        int             // items con quantity < umbral
	CategoryDistribution map[string]int  // conteo por categoría; "" es su propio bucket
}
