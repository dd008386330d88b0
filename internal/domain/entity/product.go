package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario.
// Price siempre es decimal y Quantity entero: la conversión desde el texto
// del formulario ocurre antes de emitir cualquier escritura.
type Product struct {
	ID        string          // asignado por el store al crear (numérico en modo mock)
	Name      string
	SKU       string          // código del producto, único por propietario (no se valida aquí)
	Category  string          // opcional; solo para agrupación en estadísticas
	Price     decimal.Decimal // precio de venta, no negativo
	Quantity  int             // existencias, no negativo
	OwnerID   string          // usuario de la sesión, adjuntado al escribir
	CreatedAt time.Time
}

// ProductInput payload de escritura (create/update). El ID lo asigna el store.
type ProductInput struct {
	Name     string
	SKU      string
	Category string
	Price    decimal.Decimal
	Quantity int
	OwnerID  string
}
