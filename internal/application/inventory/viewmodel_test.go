package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nexus-inventory/internal/application/dto"
	"github.com/jhoicas/nexus-inventory/internal/application/inventory"
	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
	"github.com/jhoicas/nexus-inventory/internal/domain/repository"
	"github.com/jhoicas/nexus-inventory/internal/infrastructure/memstore"
	"github.com/jhoicas/nexus-inventory/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// fakeStore: RecordStore controlable para inyectar colecciones y fallos.
// ──────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	products []entity.Product
	listErr  error
}

var _ repository.RecordStore = (*fakeStore)(nil)

func (f *fakeStore) ListProducts(context.Context) ([]entity.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]entity.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, in entity.ProductInput) (*entity.Product, error) {
	p := entity.Product{ID: "nuevo", Name: in.Name, SKU: in.SKU, Category: in.Category, Price: in.Price, Quantity: in.Quantity, OwnerID: in.OwnerID}
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeStore) UpdateProduct(context.Context, string, entity.ProductInput) error { return nil }
func (f *fakeStore) DeleteProduct(context.Context, string) error                      { return nil }

func (f *fakeStore) SignUp(context.Context, string, string) (*entity.Session, error) {
	return nil, nil
}
func (f *fakeStore) SignIn(context.Context, string, string) (*entity.Session, error) {
	return nil, nil
}
func (f *fakeStore) SignOut(context.Context) error { return nil }
func (f *fakeStore) OnSessionChange(func(*entity.Session)) repository.Unsubscribe {
	return func() {}
}

func product(id, name, sku, category string, price float64, qty int) entity.Product {
	return entity.Product{
		ID: id, Name: name, SKU: sku, Category: category,
		Price: decimal.NewFromFloat(price), Quantity: qty,
	}
}

func newVM(t *testing.T, products ...entity.Product) *inventory.ViewModel {
	t.Helper()
	vm := inventory.NewViewModel(&fakeStore{products: products}, logger.Nop())
	require.NoError(t, vm.Refresh(context.Background()))
	return vm
}

// ──────────────────────────────────────────────────────────────────────────────
// Stats
// ──────────────────────────────────────────────────────────────────────────────

func TestStats_ColeccionVacia(t *testing.T) {
	vm := newVM(t)

	stats := vm.Stats()
	assert.Equal(t, 0, stats.TotalItems)
	assert.True(t, stats.TotalValue.IsZero(), "el valor total de una colección vacía es 0")
	assert.Equal(t, 0, stats.LowStockCount)
}

func TestStats_ValorTotal(t *testing.T) {
	vm := newVM(t,
		product("1", "A", "A-1", "", 19.99, 50),
		product("2", "B", "B-1", "", 29.99, 20),
	)

	// 19.99*50 + 29.99*20 = 999.50 + 599.80 = 1599.30
	stats := vm.Stats()
	assert.Equal(t, 2, stats.TotalItems)
	assert.True(t, stats.TotalValue.Equal(decimal.NewFromFloat(1599.30)),
		"totalValue = Σ price·quantity, fue %s", stats.TotalValue)
}

func TestStats_StockBajo_UmbralEstricto(t *testing.T) {
	vm := newVM(t,
		product("1", "A", "A-1", "", 1, 5),
		product("2", "B", "B-1", "", 1, 10),
		product("3", "C", "C-1", "", 1, 15),
	)

	// El umbral es estricto: solo 5 < 10 cuenta; 10 no.
	assert.Equal(t, 1, vm.Stats().LowStockCount)
}

func TestStats_DistribucionPorCategoria(t *testing.T) {
	vm := newVM(t,
		product("1", "A", "A-1", "Electrónica", 1, 1),
		product("2", "B", "B-1", "Electrónica", 1, 1),
		product("3", "C", "C-1", "", 1, 1),
	)

	dist := vm.Stats().CategoryDistribution
	assert.Equal(t, 2, dist["Electrónica"])
	assert.Equal(t, 1, dist[""], "la categoría vacía es su propio bucket")
}

func TestStats_IgnoraBusqueda(t *testing.T) {
	vm := newVM(t,
		product("1", "A", "A-1", "", 10, 1),
		product("2", "B", "B-1", "", 20, 1),
	)
	vm.SetSearch("A")

	// Las estadísticas se calculan sobre la colección completa, no la filtrada.
	assert.Equal(t, 2, vm.Stats().TotalItems)
	assert.True(t, vm.Stats().TotalValue.Equal(decimal.NewFromInt(30)))
}

// ──────────────────────────────────────────────────────────────────────────────
// DerivedList: orden y búsqueda
// ──────────────────────────────────────────────────────────────────────────────

func TestDerivedList_OrdenPorDefectoNombreAscendente(t *testing.T) {
	vm := newVM(t,
		product("1", "zeta", "Z-1", "", 1, 1),
		product("2", "Alfa", "A-1", "", 1, 1),
		product("3", "media", "M-1", "", 1, 1),
	)

	list := vm.DerivedList()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Alfa", "media", "zeta"},
		[]string{list[0].Name, list[1].Name, list[2].Name},
		"orden por nombre sin distinguir mayúsculas")
}

func TestDerivedList_Idempotente(t *testing.T) {
	vm := newVM(t,
		product("1", "B", "B-1", "", 2, 2),
		product("2", "A", "A-1", "", 1, 1),
	)

	first := vm.DerivedList()
	second := vm.DerivedList()
	assert.Equal(t, first, second, "con inputs sin cambios la proyección es idéntica")
}

func TestSetSort_MismaClaveInvierteDireccion(t *testing.T) {
	vm := newVM(t)

	require.Equal(t, dto.SortConfig{Key: dto.SortByName}, vm.Sort(), "default: nombre ascendente")

	vm.SetSort(dto.SortByName)
	assert.True(t, vm.Sort().Descending, "reelegir la clave invierte a descendente")

	vm.SetSort(dto.SortByName)
	assert.False(t, vm.Sort().Descending, "otra vez: vuelve a ascendente")
}

func TestSetSort_ClaveNuevaArrancaAscendente(t *testing.T) {
	vm := newVM(t)

	vm.SetSort(dto.SortByName) // name desc
	vm.SetSort(dto.SortByPrice)
	assert.Equal(t, dto.SortConfig{Key: dto.SortByPrice, Descending: false}, vm.Sort())
}

func TestDerivedList_OrdenPorPrecioDescendente(t *testing.T) {
	vm := newVM(t,
		product("1", "A", "A-1", "", 5.00, 1),
		product("2", "B", "B-1", "", 15.00, 1),
		product("3", "C", "C-1", "", 10.00, 1),
	)

	vm.SetSort(dto.SortByPrice)
	vm.SetSort(dto.SortByPrice) // invertir: descendente

	list := vm.DerivedList()
	assert.Equal(t, []string{"B", "C", "A"},
		[]string{list[0].Name, list[1].Name, list[2].Name})
}

func TestDerivedList_OrdenEstableEnEmpates(t *testing.T) {
	vm := newVM(t,
		product("1", "A", "A-1", "", 1, 7),
		product("2", "B", "B-1", "", 1, 7),
		product("3", "C", "C-1", "", 1, 7),
	)

	vm.SetSort(dto.SortByQuantity)
	list := vm.DerivedList()
	assert.Equal(t, []string{"1", "2", "3"},
		[]string{list[0].ID, list[1].ID, list[2].ID},
		"claves iguales conservan el orden relativo previo")
}

func TestDerivedList_BusquedaInsensibleAMayusculas(t *testing.T) {
	vm := newVM(t,
		product("1", "Sample Product", "SMP-001", "General", 19.99, 50),
		product("2", "Demo Item", "DMO-002", "General", 29.99, 20),
	)

	vm.SetSearch("SMP")
	list := vm.DerivedList()
	require.Len(t, list, 1, `"SMP" debe encontrar el producto por su SKU`)
	assert.Equal(t, "Sample Product", list[0].Name)

	vm.SetSearch("sample")
	list = vm.DerivedList()
	require.Len(t, list, 1, "la búsqueda no distingue mayúsculas y matchea por nombre")
	assert.Equal(t, "SMP-001", list[0].SKU)
}

func TestDerivedList_BusquedaVaciaDevuelveTodo(t *testing.T) {
	vm := newVM(t,
		product("1", "A", "A-1", "", 1, 1),
		product("2", "B", "B-1", "", 1, 1),
	)

	vm.SetSearch("zzz")
	assert.Empty(t, vm.DerivedList())

	vm.SetSearch("")
	assert.Len(t, vm.DerivedList(), 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Refresh y mutaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRefresh_ErrorConservaColeccionPrevia(t *testing.T) {
	fake := &fakeStore{products: []entity.Product{product("1", "A", "A-1", "", 1, 1)}}
	vm := inventory.NewViewModel(fake, logger.Nop())
	require.NoError(t, vm.Refresh(context.Background()))
	require.Len(t, vm.Products(), 1)

	fake.listErr = errors.New("backend caído")
	err := vm.Refresh(context.Background())
	require.Error(t, err)

	assert.Len(t, vm.Products(), 1, "en fallo la colección previa queda intacta, no se vacía")
	assert.False(t, vm.Loading(), "loading vuelve a false aunque el refresh falle")
}

func TestRefresh_ReemplazoCompleto(t *testing.T) {
	fake := &fakeStore{products: []entity.Product{product("1", "A", "A-1", "", 1, 1)}}
	vm := inventory.NewViewModel(fake, logger.Nop())
	require.NoError(t, vm.Refresh(context.Background()))

	fake.products = []entity.Product{product("9", "Z", "Z-1", "", 1, 1)}
	require.NoError(t, vm.Refresh(context.Background()))

	list := vm.Products()
	require.Len(t, list, 1, "refresh reemplaza la colección completa, sin merge")
	assert.Equal(t, "9", list[0].ID)
}

func TestCreate_DisparaRefresh(t *testing.T) {
	// Contra el store mock real: create + refresh deja la fila visible.
	vm := inventory.NewViewModel(memstore.New(), logger.Nop())
	ctx := context.Background()
	require.NoError(t, vm.Refresh(ctx))
	require.Len(t, vm.Products(), 2)

	err := vm.Create(ctx, entity.ProductInput{
		Name:     "Widget",
		SKU:      "W-1",
		Price:    decimal.NewFromFloat(9.99),
		Quantity: 3,
	})
	require.NoError(t, err)

	assert.Len(t, vm.Products(), 3, "tras create la colección refleja el estado del backend")
}

func TestDelete_DisparaRefresh(t *testing.T) {
	vm := inventory.NewViewModel(memstore.New(), logger.Nop())
	ctx := context.Background()
	require.NoError(t, vm.Refresh(ctx))

	require.NoError(t, vm.Delete(ctx, "1"))
	assert.Len(t, vm.Products(), 1)
}

func TestUpdate_RoundTrip(t *testing.T) {
	vm := inventory.NewViewModel(memstore.New(), logger.Nop())
	ctx := context.Background()
	require.NoError(t, vm.Refresh(ctx))

	err := vm.Update(ctx, "1", entity.ProductInput{
		Name:     "Sample Product",
		SKU:      "SMP-001",
		Category: "General",
		Price:    decimal.NewFromFloat(19.99),
		Quantity: 0,
	})
	require.NoError(t, err)

	var updated *entity.Product
	for _, p := range vm.Products() {
		if p.ID == "1" {
			cp := p
			updated = &cp
		}
	}
	require.NotNil(t, updated)
	assert.Equal(t, 0, updated.Quantity, "update(quantity:0) debe reflejarse tras el refresh")
	assert.Equal(t, "Sample Product", updated.Name, "los demás campos no cambian")
}
