package repository

import (
	"context"

	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
)

// Unsubscribe cancela una suscripción a cambios de sesión. Idempotente.
type Unsubscribe func()

// RecordStore define el puerto único hacia el almacén de registros (DIP).
// Hay dos adaptadores: supabase (remoto) y memstore (mock en memoria); la
// elección ocurre una sola vez al construir el Gateway y el resto del sistema
// jamás distingue cuál quedó detrás.
type RecordStore interface {
	// ListProducts devuelve todos los productos. Slice vacío (nunca nil) si no hay filas.
	ListProducts(ctx context.Context) ([]entity.Product, error)
	// CreateProduct inserta un producto; el store asigna el ID.
	CreateProduct(ctx context.Context, in entity.ProductInput) (*entity.Product, error)
	// UpdateProduct reemplaza los campos del producto id. StoreError (ErrNotFound) si no existe.
	// Sin garantía de idempotencia frente a escrituras concurrentes: gana la última.
	UpdateProduct(ctx context.Context, id string, in entity.ProductInput) error
	// DeleteProduct elimina el producto id. StoreError (ErrNotFound) si no existe;
	// el llamador puede optar por ignorar ese caso (borrado best-effort).
	DeleteProduct(ctx context.Context, id string) error

	// SignUp registra una cuenta. Devuelve la sesión si el backend autentica al
	// crear la cuenta, o nil (sin error) si queda pendiente de confirmación.
	SignUp(ctx context.Context, email, password string) (*entity.Session, error)
	// SignIn autentica con email y password.
	SignIn(ctx context.Context, email, password string) (*entity.Session, error)
	// SignOut invalida la sesión en el backend.
	SignOut(ctx context.Context) error
	// OnSessionChange registra un callback para cambios externos de sesión
	// (refresh de token, expiración, cierre externo). Recibe la nueva sesión o
	// nil al quedar sin sesión. El mock nunca dispara el callback.
	OnSessionChange(fn func(*entity.Session)) Unsubscribe
}
