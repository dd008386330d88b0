// Package memstore implementa el RecordStore en memoria para el modo mock:
// demos y desarrollo sin credenciales de Supabase.
package memstore

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/nexus-inventory/internal/domain"
	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
	"github.com/jhoicas/nexus-inventory/internal/domain/repository"
)

var _ repository.RecordStore = (*Store)(nil)

// Store almacén de productos en memoria de proceso. Arranca sembrado con dos
// filas de muestra y acepta cualquier credencial en signUp/signIn. No emite
// eventos de sesión: no hay backend externo que los provoque.
type Store struct {
	mu       sync.Mutex
	products []entity.Product
	rng      *rand.Rand
}

// New crea el store mock con las dos filas de muestra.
func New() *Store {
	now := time.Now()
	return &Store{
		products: []entity.Product{
			{
				ID:        "1",
				Name:      "Sample Product",
				SKU:       "SMP-001",
				Category:  "General",
				Price:     decimal.NewFromFloat(19.99),
				Quantity:  50,
				CreatedAt: now,
			},
			{
				ID:        "2",
				Name:      "Demo Item",
				SKU:       "DMO-002",
				Category:  "General",
				Price:     decimal.NewFromFloat(29.99),
				Quantity:  20,
				CreatedAt: now,
			},
		},
		rng: rand.New(rand.NewSource(now.UnixNano())),
	}
}

// ListProducts devuelve una copia de la colección (slice vacío, nunca nil).
func (s *Store) ListProducts(_ context.Context) ([]entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// CreateProduct agrega el producto con un ID numérico aleatorio.
func (s *Store) CreateProduct(_ context.Context, in entity.ProductInput) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := entity.Product{
		ID:        strconv.FormatInt(s.rng.Int63(), 10),
		Name:      in.Name,
		SKU:       in.SKU,
		Category:  in.Category,
		Price:     in.Price,
		Quantity:  in.Quantity,
		OwnerID:   in.OwnerID,
		CreatedAt: time.Now(),
	}
	s.products = append(s.products, p)
	out := p
	return &out, nil
}

// UpdateProduct reemplaza los campos del producto id (last write wins).
func (s *Store) UpdateProduct(_ context.Context, id string, in entity.ProductInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].Name = in.Name
			s.products[i].SKU = in.SKU
			s.products[i].Category = in.Category
			s.products[i].Price = in.Price
			s.products[i].Quantity = in.Quantity
			if in.OwnerID != "" {
				s.products[i].OwnerID = in.OwnerID
			}
			return nil
		}
	}
	return domain.NewStoreError("update", "", "producto no encontrado", domain.ErrNotFound)
}

// DeleteProduct elimina el producto id.
func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return domain.NewStoreError("delete", "", "producto no encontrado", domain.ErrNotFound)
}

// SignUp acepta cualquier credencial y autentica de inmediato.
func (s *Store) SignUp(_ context.Context, email, _ string) (*entity.Session, error) {
	return mockSession(email), nil
}

// SignIn acepta cualquier credencial.
func (s *Store) SignIn(_ context.Context, email, _ string) (*entity.Session, error) {
	return mockSession(email), nil
}

// SignOut no tiene nada que invalidar.
func (s *Store) SignOut(_ context.Context) error {
	return nil
}

// OnSessionChange registra el callback pero nunca lo invoca: en modo mock no
// existen eventos externos de sesión que simular.
func (s *Store) OnSessionChange(_ func(*entity.Session)) repository.Unsubscribe {
	return func() {}
}

func mockSession(email string) *entity.Session {
	return &entity.Session{
		User: entity.User{
			ID:    uuid.New().String(),
			Email: email,
		},
	}
}
