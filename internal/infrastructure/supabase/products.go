package supabase

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/nexus-inventory/internal/domain"
	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
)

// productRow fila de la tabla products tal como la serializa PostgREST.
// El id puede ser bigint o uuid según el esquema; se trata como opaco.
type productRow struct {
	ID        json.Number     `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// productPayload cuerpo de escritura (insert/update).
type productPayload struct {
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	UserID   string          `json:"user_id,omitempty"`
}

func toPayload(in entity.ProductInput) productPayload {
	return productPayload{
		Name:     in.Name,
		SKU:      in.SKU,
		Category: in.Category,
		Price:    in.Price,
		Quantity: in.Quantity,
		UserID:   in.OwnerID,
	}
}

func (r productRow) toEntity() entity.Product {
	return entity.Product{
		ID:        r.ID.String(),
		Name:      r.Name,
		SKU:       r.SKU,
		Category:  r.Category,
		Price:     r.Price,
		Quantity:  r.Quantity,
		OwnerID:   r.UserID,
		CreatedAt: r.CreatedAt,
	}
}

// ListProducts trae todas las filas de products (sin paginación server-side).
func (c *Client) ListProducts(ctx context.Context) ([]entity.Product, error) {
	const op = "list"

	status, body, err := c.do(ctx, fiber.MethodGet, restPath+"/products?select=*", nil, nil)
	if err != nil {
		return nil, transportError(op, err)
	}
	if status != fiber.StatusOK {
		return nil, storeError(op, status, body)
	}

	var rows []productRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, domain.NewStoreError(op, "", "respuesta ilegible del backend", err)
	}

	out := make([]entity.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

// CreateProduct inserta una fila; el backend asigna el id.
func (c *Client) CreateProduct(ctx context.Context, in entity.ProductInput) (*entity.Product, error) {
	const op = "create"

	headers := map[string]string{headerPrefer: preferRepresentation}
	status, body, err := c.do(ctx, fiber.MethodPost, restPath+"/products", toPayload(in), headers)
	if err != nil {
		return nil, transportError(op, err)
	}
	if status != fiber.StatusCreated && status != fiber.StatusOK {
		return nil, storeError(op, status, body)
	}

	// Con return=representation PostgREST devuelve un array con la fila insertada.
	var rows []productRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, domain.NewStoreError(op, "", "el backend no devolvió la fila insertada", err)
	}
	p := rows[0].toEntity()
	return &p, nil
}

// UpdateProduct reemplaza los campos de la fila id. Gana la última escritura.
func (c *Client) UpdateProduct(ctx context.Context, id string, in entity.ProductInput) error {
	const op = "update"

	path := restPath + "/products?id=eq." + url.QueryEscape(id)
	headers := map[string]string{headerPrefer: preferRepresentation}
	status, body, err := c.do(ctx, fiber.MethodPatch, path, toPayload(in), headers)
	if err != nil {
		return transportError(op, err)
	}
	if status != fiber.StatusOK {
		return storeError(op, status, body)
	}

	// Array vacío = el filtro no alcanzó ninguna fila: el id no existe.
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err == nil && len(rows) == 0 {
		return domain.NewStoreError(op, "", "producto no encontrado", domain.ErrNotFound)
	}
	return nil
}

// DeleteProduct elimina la fila id.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	const op = "delete"

	path := restPath + "/products?id=eq." + url.QueryEscape(id)
	headers := map[string]string{headerPrefer: preferRepresentation}
	status, body, err := c.do(ctx, fiber.MethodDelete, path, nil, headers)
	if err != nil {
		return transportError(op, err)
	}
	if status != fiber.StatusOK && status != fiber.StatusNoContent {
		return storeError(op, status, body)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err == nil && len(rows) == 0 {
		return domain.NewStoreError(op, "", "producto no encontrado", domain.ErrNotFound)
	}
	return nil
}
