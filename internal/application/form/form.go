// Package form contiene el estado del formulario de producto (crear/editar):
// el borrador editable, independiente de la colección canónica, y el submit
// que valida, convierte y escribe a través del view model.
package form

import (
	"context"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/nexus-inventory/internal/application/inventory"
	"github.com/jhoicas/nexus-inventory/internal/application/session"
	"github.com/jhoicas/nexus-inventory/internal/domain"
	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
)

// Draft borrador del formulario. Todos los campos son texto: la conversión a
// decimal/entero ocurre en Submit, nunca antes.
type Draft struct {
	ID       string // vacío = crear; con valor = editar ese producto
	Name     string
	SKU      string
	Category string
	Price    string
	Quantity string
}

// State estado del modal de producto.
type State struct {
	inv      *inventory.ViewModel
	sessions *session.Manager

	mu      sync.Mutex
	open    bool
	draft   Draft
	lastErr error // último error de submit, para mostrar dentro del modal
}

// New construye el estado del formulario.
func New(inv *inventory.ViewModel, sessions *session.Manager) *State {
	return &State{inv: inv, sessions: sessions}
}

// Open abre el modal. Con un producto existente siembra el borrador (editar);
// con nil lo resetea a valores vacíos (crear).
func (s *State) Open(existing *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing != nil {
		s.draft = Draft{
			ID:       existing.ID,
			Name:     existing.Name,
			SKU:      existing.SKU,
			Category: existing.Category,
			Price:    existing.Price.String(),
			Quantity: strconv.Itoa(existing.Quantity),
		}
	} else {
		s.draft = Draft{}
	}
	s.lastErr = nil
	s.open = true
}

// Close descarta el borrador y cierra el modal sin persistir nada.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = Draft{}
	s.lastErr = nil
	s.open = false
}

// IsOpen indica si el modal está visible.
func (s *State) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Draft copia del borrador vigente.
func (s *State) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft reemplaza los campos editables del borrador (el ID no cambia:
// lo fija Open según crear/editar).
func (s *State) SetDraft(d Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.draft.ID
	s.draft = d
}

// Err último error de submit ("" entre intentos: Open y Close lo limpian).
func (s *State) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Submit valida el borrador, arma el payload con el ownerRef de la sesión y
// escribe por create o update según haya ID. En éxito cierra el modal (el
// view model ya refrescó); en fallo el modal sigue abierto y el error queda
// disponible vía Err para mostrarse en el propio formulario.
func (s *State) Submit(ctx context.Context) error {
	s.mu.Lock()
	draft := s.draft
	s.mu.Unlock()

	input, err := buildInput(draft, s.sessions.UserID())
	if err == nil {
		if draft.ID == "" {
			err = s.inv.Create(ctx, input)
		} else {
			err = s.inv.Update(ctx, draft.ID, input)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return err
	}
	s.draft = Draft{}
	s.lastErr = nil
	s.open = false
	return nil
}

// buildInput valida presencia de name, sku, price y quantity y convierte los
// campos numéricos. Falla con ValidationError antes de tocar el Gateway.
func buildInput(d Draft, ownerID string) (entity.ProductInput, error) {
	var invalid []string

	if d.Name == "" {
		invalid = append(invalid, "name")
	}
	if d.SKU == "" {
		invalid = append(invalid, "sku")
	}

	price := decimal.Zero
	if d.Price == "" {
		invalid = append(invalid, "price")
	} else if p, err := decimal.NewFromString(d.Price); err != nil || p.IsNegative() {
		invalid = append(invalid, "price")
	} else {
		price = p
	}

	quantity := 0
	if d.Quantity == "" {
		invalid = append(invalid, "quantity")
	} else if q, err := strconv.Atoi(d.Quantity); err != nil || q < 0 {
		invalid = append(invalid, "quantity")
	} else {
		quantity = q
	}

	if len(invalid) > 0 {
		return entity.ProductInput{}, &domain.ValidationError{Fields: invalid}
	}

	return entity.ProductInput{
		Name:     d.Name,
		SKU:      d.SKU,
		Category: d.Category,
		Price:    price,
		Quantity: quantity,
		OwnerID:  ownerID,
	}, nil
}
