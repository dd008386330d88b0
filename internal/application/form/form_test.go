package form_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nexus-inventory/internal/application/form"
	"github.com/jhoicas/nexus-inventory/internal/application/inventory"
	"github.com/jhoicas/nexus-inventory/internal/application/session"
	"github.com/jhoicas/nexus-inventory/internal/domain"
	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
	"github.com/jhoicas/nexus-inventory/internal/infrastructure/memstore"
	"github.com/jhoicas/nexus-inventory/pkg/logger"
)

// harness arma el stack completo sobre el store en memoria: el formulario
// escribe a través del view model y toma el ownerRef del session manager.
func harness(t *testing.T) (*form.State, *inventory.ViewModel, *session.Manager) {
	t.Helper()
	store := memstore.New()
	inv := inventory.NewViewModel(store, logger.Nop())
	sessions := session.NewManager(store, logger.Nop(), session.Policy{AutoLogin: true})
	t.Cleanup(sessions.Close)
	require.NoError(t, inv.Refresh(context.Background()))
	return form.New(inv, sessions), inv, sessions
}

func TestOpen_Crear(t *testing.T) {
	f, _, _ := harness(t)

	f.Open(nil)

	assert.True(t, f.IsOpen())
	assert.Equal(t, form.Draft{}, f.Draft(), "crear arranca con borrador vacío")
	assert.NoError(t, f.Err())
}

func TestOpen_EditarSiembraBorrador(t *testing.T) {
	f, inv, _ := harness(t)

	products := inv.Products()
	require.NotEmpty(t, products)
	existing := products[0]

	f.Open(&existing)

	draft := f.Draft()
	assert.Equal(t, existing.ID, draft.ID)
	assert.Equal(t, "Sample Product", draft.Name)
	assert.Equal(t, "SMP-001", draft.SKU)
	assert.Equal(t, "19.99", draft.Price, "el precio se siembra como texto")
	assert.Equal(t, "50", draft.Quantity)
}

func TestClose_DescartaBorrador(t *testing.T) {
	f, _, _ := harness(t)

	f.Open(nil)
	f.SetDraft(form.Draft{Name: "a medias"})
	f.Close()

	assert.False(t, f.IsOpen())
	assert.Equal(t, form.Draft{}, f.Draft(), "cerrar sin guardar no deja rastro")
}

func TestSetDraft_PreservaID(t *testing.T) {
	f, inv, _ := harness(t)

	existing := inv.Products()[0]
	f.Open(&existing)

	f.SetDraft(form.Draft{ID: "otro", Name: "X"})

	assert.Equal(t, existing.ID, f.Draft().ID,
		"el ID lo fija Open; SetDraft no puede cambiar el modo crear/editar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_BorradorVacio(t *testing.T) {
	f, _, _ := harness(t)
	f.Open(nil)

	err := f.Submit(context.Background())
	require.Error(t, err)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"name", "sku", "price", "quantity"}, vErr.Fields)

	assert.True(t, f.IsOpen(), "en fallo el modal sigue abierto")
	assert.ErrorIs(t, f.Err(), err, "el error queda disponible para el modal")
}

func TestSubmit_NumericosMalformados(t *testing.T) {
	f, _, _ := harness(t)
	f.Open(nil)
	f.SetDraft(form.Draft{
		Name:     "Widget",
		SKU:      "W-1",
		Price:    "no-es-numero",
		Quantity: "3.5",
	})

	err := f.Submit(context.Background())
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"price", "quantity"}, vErr.Fields)
}

func TestSubmit_NegativosInvalidos(t *testing.T) {
	f, _, _ := harness(t)
	f.Open(nil)
	f.SetDraft(form.Draft{
		Name:     "Widget",
		SKU:      "W-1",
		Price:    "-1.00",
		Quantity: "-3",
	})

	err := f.Submit(context.Background())
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"price", "quantity"}, vErr.Fields)
}

// ──────────────────────────────────────────────────────────────────────────────
// Crear y editar
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_CrearConOwnerRef(t *testing.T) {
	f, inv, sessions := harness(t)
	ctx := context.Background()

	require.NoError(t, sessions.SignIn(ctx, "duena@tienda.com", "pw"))
	ownerID := sessions.UserID()
	require.NotEmpty(t, ownerID)

	f.Open(nil)
	f.SetDraft(form.Draft{
		Name:     "Widget",
		SKU:      "W-1",
		Category: "Herramientas",
		Price:    "12.50",
		Quantity: "4",
	})

	require.NoError(t, f.Submit(ctx))

	assert.False(t, f.IsOpen(), "en éxito el modal se cierra")
	assert.Equal(t, form.Draft{}, f.Draft())

	var created *entity.Product
	for _, p := range inv.Products() {
		if p.SKU == "W-1" {
			cp := p
			created = &cp
		}
	}
	require.NotNil(t, created, "el producto creado aparece tras el refresh")
	assert.Equal(t, ownerID, created.OwnerID, "las escrituras llevan el ownerRef de la sesión")
	assert.Equal(t, 4, created.Quantity)
	assert.Equal(t, "12.50", created.Price.StringFixed(2))
}

func TestSubmit_EditarActualizaFila(t *testing.T) {
	f, inv, _ := harness(t)
	ctx := context.Background()

	existing := inv.Products()[0]
	f.Open(&existing)

	draft := f.Draft()
	draft.Quantity = "0"
	f.SetDraft(draft)

	require.NoError(t, f.Submit(ctx))
	assert.False(t, f.IsOpen())

	for _, p := range inv.Products() {
		if p.ID == existing.ID {
			assert.Equal(t, 0, p.Quantity)
			assert.Equal(t, existing.Name, p.Name, "los campos no tocados se conservan")
		}
	}
}

func TestSubmit_ReintentoTrasFallo(t *testing.T) {
	f, _, _ := harness(t)
	ctx := context.Background()

	f.Open(nil)
	f.SetDraft(form.Draft{Name: "Widget", SKU: "W-1", Price: "x", Quantity: "1"})
	require.Error(t, f.Submit(ctx))
	require.True(t, f.IsOpen())

	// El borrador sobrevive al fallo: se corrige solo el campo inválido.
	draft := f.Draft()
	assert.Equal(t, "Widget", draft.Name)
	draft.Price = "5.00"
	f.SetDraft(draft)

	require.NoError(t, f.Submit(ctx))
	assert.False(t, f.IsOpen())
	assert.NoError(t, f.Err(), "el éxito limpia el último error")
}
