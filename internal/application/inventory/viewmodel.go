// Package inventory contiene el View Model del inventario: dueño exclusivo de
// la colección de productos en memoria y de su proyección derivada
// (orden + búsqueda) y estadísticas. Toda mutación pasa por el Record Store y
// se sigue de un refresh completo: la vista siempre refleja el estado
// autoritativo del backend.
package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/nexus-inventory/internal/application/dto"
	"github.com/jhoicas/nexus-inventory/internal/domain/entity"
	"github.com/jhoicas/nexus-inventory/internal/domain/repository"
	"github.com/jhoicas/nexus-inventory/pkg/logger"
)

// LowStockThreshold unidades por debajo de las cuales un producto cuenta como
// stock bajo. Umbral fijo del negocio.
const LowStockThreshold = 10

// ViewModel estado de la vista de inventario.
type ViewModel struct {
	store repository.RecordStore
	log   *logger.Logger

	// mu exclusivo también en lecturas derivadas: collator y folder reutilizan
	// buffers internos y no son seguros para uso concurrente.
	mu         sync.Mutex
	products   []entity.Product
	sort       dto.SortConfig
	search     string
	loading    bool
	generation uint64 // serializa refreshes concurrentes: gana el más reciente

	collator *collate.Collator
	folder   cases.Caser
}

// NewViewModel construye el view model con orden por defecto (nombre ascendente).
func NewViewModel(store repository.RecordStore, log *logger.Logger) *ViewModel {
	return &ViewModel{
		store:    store,
		log:      log,
		sort:     dto.SortConfig{Key: dto.SortByName},
		collator: collate.New(language.Und, collate.IgnoreCase),
		folder:   cases.Fold(),
	}
}

// Refresh reemplaza la colección completa con el resultado de ListProducts.
// Sin merge ni diff. En error la colección previa queda intacta y el error
// sube al llamador (la UI no se vacía). Si mientras tanto arrancó un refresh
// más nuevo, este resultado se descarta (latest-wins por generación).
func (vm *ViewModel) Refresh(ctx context.Context) error {
	vm.mu.Lock()
	vm.generation++
	gen := vm.generation
	vm.loading = true
	vm.mu.Unlock()

	products, err := vm.store.ListProducts(ctx)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.loading = false

	if err != nil {
		vm.log.Error().Err(err).Msg("refresh de productos falló; se conserva la colección previa")
		return err
	}
	if gen != vm.generation {
		vm.log.Debug().Uint64("gen", gen).Msg("refresh obsoleto descartado")
		return nil
	}
	vm.products = products
	return nil
}

// SetSearch fija el texto de búsqueda (cadena vacía = sin filtro).
func (vm *ViewModel) SetSearch(text string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.search = text
}

// SetSort cambia la clave de orden. Reelegir la misma clave invierte la
// dirección; una clave nueva arranca ascendente.
func (vm *ViewModel) SetSort(key dto.SortKey) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.sort.Key == key {
		vm.sort.Descending = !vm.sort.Descending
		return
	}
	vm.sort = dto.SortConfig{Key: key}
}

// Sort devuelve la configuración de orden vigente.
func (vm *ViewModel) Sort() dto.SortConfig {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.sort
}

// Search devuelve el texto de búsqueda vigente.
func (vm *ViewModel) Search() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.search
}

// Loading indica si hay un refresh en curso.
func (vm *ViewModel) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loading
}

// Products copia de la colección canónica sin filtrar.
func (vm *ViewModel) Products() []entity.Product {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]entity.Product, len(vm.products))
	copy(out, vm.products)
	return out
}

// DerivedList proyección que consume la UI: primero orden estable por la
// clave configurada (empates conservan el orden previo), después filtro por
// subcadena sin distinguir mayúsculas sobre name O sku. Se recalcula en cada
// llamada; nunca se cachea entre mutaciones.
func (vm *ViewModel) DerivedList() []entity.Product {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	sorted := make([]entity.Product, len(vm.products))
	copy(sorted, vm.products)
	vm.sortProductsLocked(sorted)

	if vm.search == "" {
		return sorted
	}

	needle := vm.folder.String(vm.search)
	out := make([]entity.Product, 0, len(sorted))
	for _, p := range sorted {
		if vm.matchLocked(p, needle) {
			out = append(out, p)
		}
	}
	return out
}

// Stats agregados sobre la colección completa, ignorando búsqueda y orden.
func (vm *ViewModel) Stats() dto.Stats {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	stats := dto.Stats{
		TotalItems:           len(vm.products),
		TotalValue:           decimal.Zero,
		CategoryDistribution: make(map[string]int),
	}
	for _, p := range vm.products {
		stats.TotalValue = stats.TotalValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
		if p.Quantity < LowStockThreshold {
			stats.LowStockCount++
		}
		stats.CategoryDistribution[p.Category]++
	}
	return stats
}

// Create inserta vía el store y rehace el refresh completo.
func (vm *ViewModel) Create(ctx context.Context, in entity.ProductInput) error {
	if _, err := vm.store.CreateProduct(ctx, in); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// Update modifica vía el store y rehace el refresh completo.
func (vm *ViewModel) Update(ctx context.Context, id string, in entity.ProductInput) error {
	if err := vm.store.UpdateProduct(ctx, id, in); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// Delete elimina vía el store y rehace el refresh completo.
func (vm *ViewModel) Delete(ctx context.Context, id string) error {
	if err := vm.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

func (vm *ViewModel) sortProductsLocked(list []entity.Product) {
	desc := vm.sort.Descending
	key := vm.sort.Key

	compare := func(a, b entity.Product) int {
		switch key {
		case dto.SortBySKU:
			return vm.collator.CompareString(a.SKU, b.SKU)
		case dto.SortByPrice:
			return a.Price.Cmp(b.Price)
		case dto.SortByQuantity:
			switch {
			case a.Quantity < b.Quantity:
				return -1
			case a.Quantity > b.Quantity:
				return 1
			}
			return 0
		default:
			return vm.collator.CompareString(a.Name, b.Name)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		c := compare(list[i], list[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func (vm *ViewModel) matchLocked(p entity.Product, foldedNeedle string) bool {
	return strings.Contains(vm.folder.String(p.Name), foldedNeedle) ||
		strings.Contains(vm.folder.String(p.SKU), foldedNeedle)
}
