package report_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/spiritwatch/internal/application/monitor"
	"github.com/jhoicas/spiritwatch/internal/application/report"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/infrastructure/xlsx"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes mínimos de los puertos que consume el builder.
// ──────────────────────────────────────────────────────────────────────────────

type stubProducts struct {
	items map[string]*entity.Product
	order []string
}

func newStubProducts(items ...*entity.Product) *stubProducts {
	s := &stubProducts{items: make(map[string]*entity.Product)}
	for _, p := range items {
		s.items[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	return s
}

func (s *stubProducts) Upsert(_ context.Context, p *entity.Product) error {
	if _, ok := s.items[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.items[p.ID] = p
	return nil
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return s.items[id], nil
}

func (s *stubProducts) ListIDs(_ context.Context) ([]string, error) { return s.order, nil }

func (s *stubProducts) ListAll(_ context.Context) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

type stubWatches struct{ users []string }

func (s *stubWatches) Add(context.Context, *entity.Watch) (bool, error)     { return false, nil }
func (s *stubWatches) Remove(context.Context, string, string) (bool, error) { return false, nil }
func (s *stubWatches) ListByUser(context.Context, string) ([]*entity.Watch, error) {
	return nil, nil
}
func (s *stubWatches) UsersWatching(context.Context, string) ([]string, error) { return nil, nil }
func (s *stubWatches) UsersWithWatches(context.Context) ([]string, error)      { return s.users, nil }

// stubCatalog sirve los productos del stub y falla para los ids marcados.
type stubCatalog struct {
	products *stubProducts
	fail     map[string]bool
}

func (s *stubCatalog) FetchActive(context.Context, string) (entity.TriState, error) {
	return entity.StateUnknown, nil
}
func (s *stubCatalog) FetchCategories(context.Context, string) ([]string, error) { return nil, nil }
func (s *stubCatalog) FetchStock(context.Context, string, []string) (map[string]int, error) {
	return nil, nil
}
func (s *stubCatalog) FetchStore(context.Context, string) (*entity.Store, error) { return nil, nil }

func (s *stubCatalog) FetchProduct(_ context.Context, pid, _ string) (*entity.Product, error) {
	if s.fail[pid] {
		return nil, fmt.Errorf("producto %s no disponible", pid)
	}
	p := s.products.items[pid]
	cp := *p
	return &cp, nil
}

type stubNotifier struct {
	docs []string // destinatarios que recibieron el documento
	fail map[string]bool
}

func (s *stubNotifier) SendText(context.Context, string, string) error { return nil }

func (s *stubNotifier) SendDocument(_ context.Context, userID, _, _ string) error {
	if s.fail[userID] {
		return fmt.Errorf("chat %s inalcanzable", userID)
	}
	s.docs = append(s.docs, userID)
	return nil
}

func testProduct(id, name string, stock int, price float64) *entity.Product {
	return &entity.Product{
		ID:         id,
		Name:       name,
		Categories: []string{"bourbon"},
		Active:     entity.StateActive,
		InStock:    stock,
		Allocated:  "N",
		Lottery:    "N",
		OrderLimit: "N/A",
		Price:      decimal.NewFromFloat(price),
	}
}

func newBuilderFixture(t *testing.T, products *stubProducts, fail map[string]bool) (*report.Builder, *stubNotifier, string) {
	t.Helper()
	dir := t.TempDir()
	notifier := &stubNotifier{fail: make(map[string]bool)}
	b := report.NewBuilder(
		products,
		&stubWatches{users: []string{"u1", "u2"}},
		&stubCatalog{products: products, fail: fail},
		notifier,
		monitor.PollConfig{BatchSize: 20},
		"9650", dir, "product_report_", "",
		logger.Nop(),
	)
	return b, notifier, dir
}

func colIdx(t *testing.T, name string) int {
	t.Helper()
	for i, c := range report.Columns {
		if c == name {
			return i + 1 // coordenadas 1-based del archivo
		}
	}
	t.Fatalf("columna %s no existe", name)
	return 0
}

var day1 = time.Date(2026, 8, 27, 9, 5, 0, 0, time.UTC)

// ──────────────────────────────────────────────────────────────────────────────
// Generación del archivo
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildFile_FilasOrdenadasYTotales(t *testing.T) {
	products := newStubProducts(
		testProduct("p2", "Zinfandel Reserve", 20, 16.75),
		testProduct("p1", "amber Small Batch", 10, 12.50),
	)
	b, _, dir := newBuilderFixture(t, products, nil)

	path, err := b.BuildFile(context.Background(), day1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "product_report_20260827.xlsx"), path)

	f, err := xlsx.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 4, "cabecera + 2 productos + fila Total")
	assert.Equal(t, report.Columns, rows[0])

	// Orden por nombre sin distinguir mayúsculas.
	assert.Equal(t, "amber Small Batch", rows[1][1])
	assert.Equal(t, "Zinfandel Reserve", rows[2][1])

	// Totales: Σ stock y Σ stock × precio.
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "30", rows[3][colIdx(t, "InStock")-1])
	assert.Equal(t, "460.00", rows[3][colIdx(t, "Price")-1])
}

func TestBuildFile_ProductoCaidoEntraComoPlaceholder(t *testing.T) {
	products := newStubProducts(
		testProduct("p1", "Amber Small Batch", 10, 12.50),
		testProduct("p2", "Zinfandel Reserve", 20, 16.75),
	)
	b, _, _ := newBuilderFixture(t, products, map[string]bool{"p2": true})

	path, err := b.BuildFile(context.Background(), day1)
	require.NoError(t, err)

	f, err := xlsx.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 4, "el producto caído igual aparece en el reporte")

	// El placeholder ordena por nombre "Unknown".
	assert.Equal(t, "Unknown", rows[2][1])
	assert.Equal(t, "p2", rows[2][0])
	assert.Equal(t, "N/A", rows[2][colIdx(t, "Active")-1])

	// El total solo suma lo que se pudo leer.
	assert.Equal(t, "10", rows[3][colIdx(t, "InStock")-1])
}

func TestBuildFile_SinProductosNoGeneraArchivo(t *testing.T) {
	b, _, _ := newBuilderFixture(t, newStubProducts(), nil)
	path, err := b.BuildFile(context.Background(), day1)
	require.NoError(t, err)
	assert.Empty(t, path)
}

// ──────────────────────────────────────────────────────────────────────────────
// Diff contra el archivo de ayer
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildFile_ResaltaSoloLasCeldasCambiadas(t *testing.T) {
	products := newStubProducts(
		testProduct("p1", "Amber Small Batch", 10, 12.50),
		testProduct("p2", "Zinfandel Reserve", 20, 16.75),
	)
	b, _, _ := newBuilderFixture(t, products, nil)

	_, err := b.BuildFile(context.Background(), day1)
	require.NoError(t, err)

	// Al día siguiente cambió solo el stock de p1.
	products.items["p1"].InStock = 25
	path, err := b.BuildFile(context.Background(), day1.AddDate(0, 0, 1))
	require.NoError(t, err)

	f, err := xlsx.Open(path)
	require.NoError(t, err)
	defer f.Close()

	// p1 es la fila 2 (orden por nombre).
	hl, err := f.IsHighlighted(colIdx(t, "InStock"), 2)
	require.NoError(t, err)
	assert.True(t, hl, "la celda de stock cambiada debe quedar resaltada")

	hl, err = f.IsHighlighted(colIdx(t, "Name"), 2)
	require.NoError(t, err)
	assert.False(t, hl, "el nombre no cambió")

	hl, err = f.IsHighlighted(colIdx(t, "InStock"), 3)
	require.NoError(t, err)
	assert.False(t, hl, "el otro producto no cambió")

	// El valor resaltado conserva su formato numérico.
	v, err := f.CellValue(colIdx(t, "InStock"), 2)
	require.NoError(t, err)
	assert.Equal(t, "25", v)
}

// El precio pasa por la rama "N/A"/decimal del render, distinta a la del
// stock; un cambio de precio también debe resaltar exactamente su celda.
func TestBuildFile_ResaltaCambioDePrecio(t *testing.T) {
	products := newStubProducts(testProduct("p1", "Amber Small Batch", 10, 19.99))
	b, _, _ := newBuilderFixture(t, products, nil)

	_, err := b.BuildFile(context.Background(), day1)
	require.NoError(t, err)

	products.items["p1"].Price = decimal.NewFromFloat(21.99)
	path, err := b.BuildFile(context.Background(), day1.AddDate(0, 0, 1))
	require.NoError(t, err)

	f, err := xlsx.Open(path)
	require.NoError(t, err)
	defer f.Close()

	hl, err := f.IsHighlighted(colIdx(t, "Price"), 2)
	require.NoError(t, err)
	assert.True(t, hl, "la celda de precio cambiada debe quedar resaltada")

	hl, err = f.IsHighlighted(colIdx(t, "InStock"), 2)
	require.NoError(t, err)
	assert.False(t, hl, "el stock no cambió")

	hl, err = f.IsHighlighted(colIdx(t, "Name"), 2)
	require.NoError(t, err)
	assert.False(t, hl, "el nombre no cambió")

	// El valor resaltado conserva el formato decimal de la columna.
	v, err := f.CellValue(colIdx(t, "Price"), 2)
	require.NoError(t, err)
	assert.Equal(t, "21.99", v)
}

func TestBuildFile_SinAyerNoResalta(t *testing.T) {
	products := newStubProducts(testProduct("p1", "Amber Small Batch", 10, 12.50))
	b, _, _ := newBuilderFixture(t, products, nil)

	path, err := b.BuildFile(context.Background(), day1)
	require.NoError(t, err)

	f, err := xlsx.Open(path)
	require.NoError(t, err)
	defer f.Close()

	for i := range report.Columns {
		hl, err := f.IsHighlighted(i+1, 2)
		require.NoError(t, err)
		assert.False(t, hl, "sin línea base nada debe resaltarse")
	}
}

// La fila Total de ayer no se confunde con un producto durante el diff, y el
// archivo de hoy termina con exactamente una fila Total.
func TestBuildFile_TotalDeAyerNoInterfiere(t *testing.T) {
	products := newStubProducts(testProduct("p1", "Amber Small Batch", 10, 12.50))
	b, _, _ := newBuilderFixture(t, products, nil)

	_, err := b.BuildFile(context.Background(), day1)
	require.NoError(t, err)
	path, err := b.BuildFile(context.Background(), day1.AddDate(0, 0, 1))
	require.NoError(t, err)

	f, err := xlsx.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.Rows()
	require.NoError(t, err)
	totals := 0
	for _, r := range rows {
		if len(r) > 0 && r[0] == "Total" {
			totals++
		}
	}
	assert.Equal(t, 1, totals, "exactamente una fila Total")
}

// ──────────────────────────────────────────────────────────────────────────────
// Distribución
// ──────────────────────────────────────────────────────────────────────────────

func TestDistribute_FalloDeUnDestinatarioAislado(t *testing.T) {
	products := newStubProducts(testProduct("p1", "Amber Small Batch", 10, 12.50))
	b, notifier, _ := newBuilderFixture(t, products, nil)
	notifier.fail["u1"] = true

	path, err := b.BuildFile(context.Background(), day1)
	require.NoError(t, err)

	b.Distribute(context.Background(), path)
	assert.Equal(t, []string{"u2"}, notifier.docs, "el fallo de u1 no bloquea a u2")
}
