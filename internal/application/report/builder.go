// Package report construye el reporte diario: foto completa del catálogo,
// diff contra el archivo del día anterior con celdas resaltadas, fila de
// totales y distribución a los suscriptores.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/spiritwatch/internal/application/monitor"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
	"github.com/jhoicas/spiritwatch/internal/infrastructure/xlsx"
	"github.com/jhoicas/spiritwatch/pkg/logger"
	"github.com/shopspring/decimal"
)

const dateLayout = "20060102"

// Builder arma y distribuye el reporte diario.
type Builder struct {
	products    repository.ProductRepository
	watches     repository.WatchRepository
	catalog     monitor.CatalogAPI
	notifier    monitor.Notifier
	poll        monitor.PollConfig
	refStore    string
	dir         string
	prefix      string
	ownerChatID string
	log         *logger.Logger
	now         func() time.Time
}

// NewBuilder construye el generador del reporte diario.
func NewBuilder(
	products repository.ProductRepository,
	watches repository.WatchRepository,
	catalog monitor.CatalogAPI,
	notifier monitor.Notifier,
	poll monitor.PollConfig,
	refStore, dir, prefix, ownerChatID string,
	log *logger.Logger,
) *Builder {
	return &Builder{
		products:    products,
		watches:     watches,
		catalog:     catalog,
		notifier:    notifier,
		poll:        poll,
		refStore:    refStore,
		dir:         dir,
		prefix:      prefix,
		ownerChatID: ownerChatID,
		log:         log,
		now:         time.Now,
	}
}

// Run genera el archivo del día y lo distribuye. Un fallo de distribución por
// destinatario no afecta al resto.
func (b *Builder) Run(ctx context.Context) error {
	path, err := b.BuildFile(ctx, b.now())
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	b.Distribute(ctx, path)
	return nil
}

// row una fila del reporte: la foto aplanada de un producto.
type row struct {
	productID  string
	name       string
	category   string
	active     string
	inStock    int
	allocated  string
	lottery    string
	price      decimal.Decimal
	priceKnown bool
	orderLimit string
}

// cellString devuelve la forma textual de una celda, la misma que queda en el
// archivo, para comparar contra el reporte de ayer.
func (r row) cellString(col string) string {
	switch col {
	case "ProductID":
		return r.productID
	case "Name":
		return r.name
	case "Category":
		return r.category
	case "Active":
		return r.active
	case "InStock":
		return strconv.Itoa(r.inStock)
	case "Allocated":
		return r.allocated
	case "Lottery":
		return r.lottery
	case "Price":
		if !r.priceKnown {
			return "N/A"
		}
		return r.price.String()
	case "OdrLmt":
		return r.orderLimit
	default:
		return ""
	}
}

// BuildFile genera el xlsx del día indicado y devuelve su ruta. Devuelve ruta
// vacía si no hay productos que reportar. Un archivo por día calendario;
// nunca pisa el de otro día.
func (b *Builder) BuildFile(ctx context.Context, today time.Time) (string, error) {
	ids, err := b.products.ListIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("listar productos: %w", err)
	}
	if len(ids) == 0 {
		b.log.Warn().Msg("reporte diario: sin productos, se omite")
		return "", nil
	}

	b.log.Info().Int("products", len(ids)).Msg("reporte diario: fetch del catálogo completo")
	results := monitor.Poll(ctx, b.poll, ids, func(ctx context.Context, pid string) (*entity.Product, error) {
		return b.catalog.FetchProduct(ctx, pid, b.refStore)
	})

	rows := make([]row, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			// El producto fallido entra como placeholder: el reporte cubre
			// todo el catálogo aunque el proveedor falle parcialmente.
			b.log.Warn().Err(res.Err).Str("product_id", res.ID).Msg("fetch de producto falló, placeholder")
			rows = append(rows, row{
				productID: res.ID, name: "Unknown", category: "N/A", active: "N/A",
				allocated: "N/A", lottery: "N/A", orderLimit: "N/A",
			})
			continue
		}
		p := res.Value
		// Escritura de paso al almacenamiento de largo plazo.
		if err := b.products.Upsert(ctx, p); err != nil {
			b.log.Error().Err(err).Str("product_id", p.ID).Msg("persistir producto del reporte")
		}
		rows = append(rows, productRow(p))
	}

	sort.Slice(rows, func(i, j int) bool {
		ni, nj := strings.ToLower(rows[i].name), strings.ToLower(rows[j].name)
		if ni == nj {
			return rows[i].productID < rows[j].productID
		}
		return ni < nj
	})

	path := filepath.Join(b.dir, b.prefix+today.Format(dateLayout)+".xlsx")
	file := xlsx.New()
	defer file.Close()

	if err := writeRows(file, rows); err != nil {
		return "", err
	}

	yesterdayPath := filepath.Join(b.dir, b.prefix+today.AddDate(0, 0, -1).Format(dateLayout)+".xlsx")
	if _, err := os.Stat(yesterdayPath); err == nil {
		if err := b.highlightChanges(file, rows, yesterdayPath); err != nil {
			b.log.Error().Err(err).Msg("comparación con el reporte de ayer falló")
		}
	} else {
		b.log.Info().Str("file", yesterdayPath).Msg("sin reporte de ayer, se omite comparación")
	}

	if err := appendTotals(file, rows); err != nil {
		return "", err
	}
	if err := autoSizeColumns(file); err != nil {
		b.log.Warn().Err(err).Msg("ajuste de anchos falló")
	}

	if err := file.SaveAs(path); err != nil {
		return "", err
	}
	b.log.Info().Str("file", path).Int("rows", len(rows)).Msg("reporte diario generado")
	return path, nil
}

// Distribute envía el archivo a todos los usuarios con al menos un producto
// seguido (y al owner si está configurado). Fallos aislados por destinatario.
func (b *Builder) Distribute(ctx context.Context, path string) {
	users, err := b.watches.UsersWithWatches(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("listar destinatarios del reporte")
		return
	}
	if b.ownerChatID != "" && !contains(users, b.ownerChatID) {
		users = append(users, b.ownerChatID)
	}

	const caption = "🥃 Your daily product report! Changes from yesterday are highlighted in yellow."
	sent := 0
	for _, userID := range users {
		if err := b.notifier.SendDocument(ctx, userID, path, caption); err != nil {
			b.log.Warn().Err(err).Str("user_id", userID).Msg("envío del reporte falló")
			continue
		}
		sent++
	}
	b.log.Info().Int("sent", sent).Int("recipients", len(users)).Msg("reporte distribuido")
}

func productRow(p *entity.Product) row {
	active := "N/A"
	if v, ok := p.Active.Bool(); ok {
		active = strconv.FormatBool(v)
	}
	return row{
		productID:  p.ID,
		name:       p.Name,
		category:   strings.Join(p.Categories, ", "),
		active:     active,
		inStock:    p.InStock,
		allocated:  p.Allocated,
		lottery:    p.Lottery,
		price:      p.Price,
		priceKnown: true,
		orderLimit: p.OrderLimit,
	}
}

func writeRows(file *xlsx.File, rows []row) error {
	if err := file.SetHeader(Columns); err != nil {
		return err
	}
	for i, r := range rows {
		excelRow := i + 2
		for colIdx, col := range Columns {
			var err error
			switch col {
			case "InStock":
				err = file.SetStyledCell(colIdx+1, excelRow, r.inStock,
					xlsx.CellStyle{NumFmt: xlsx.NumFmtInteger, RightAlign: true})
			case "Price":
				if r.priceKnown {
					err = file.SetStyledCell(colIdx+1, excelRow, r.price.InexactFloat64(),
						xlsx.CellStyle{NumFmt: xlsx.NumFmtDecimal, RightAlign: true})
				} else {
					err = file.SetCell(colIdx+1, excelRow, "N/A")
				}
			default:
				err = file.SetCell(colIdx+1, excelRow, r.cellString(col))
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// highlightChanges carga el archivo de ayer, alinea por ProductID y resalta
// cada celda cuyo valor normalizado difiera.
func (b *Builder) highlightChanges(file *xlsx.File, rows []row, yesterdayPath string) error {
	prev, err := xlsx.Open(yesterdayPath)
	if err != nil {
		return err
	}
	defer prev.Close()

	prevRows, err := prev.Rows()
	if err != nil {
		return err
	}
	if len(prevRows) == 0 {
		return nil
	}

	// Índice de columnas de ayer por nombre: solo se comparan las presentes
	// en ambas tablas.
	prevCols := make(map[string]int, len(prevRows[0]))
	for i, name := range prevRows[0] {
		prevCols[strings.TrimSpace(name)] = i
	}
	pidCol, ok := prevCols["ProductID"]
	if !ok {
		return nil
	}

	prevByID := make(map[string][]string, len(prevRows)-1)
	for _, pr := range prevRows[1:] {
		if pidCol < len(pr) {
			pid := strings.TrimSpace(pr[pidCol])
			if pid != "" && pid != "Total" {
				prevByID[pid] = pr
			}
		}
	}

	highlighted := 0
	for i, r := range rows {
		prevRow, ok := prevByID[r.productID]
		if !ok {
			continue // producto nuevo: sin línea base, no se resalta
		}
		excelRow := i + 2
		for colIdx, col := range Columns {
			prevIdx, ok := prevCols[col]
			if !ok || prevIdx >= len(prevRow) {
				continue
			}
			if !Changed(col, prevRow[prevIdx], r.cellString(col)) {
				continue
			}
			highlighted++
			st := xlsx.CellStyle{Highlight: true}
			if col == "InStock" {
				st.NumFmt, st.RightAlign = xlsx.NumFmtInteger, true
			} else if col == "Price" {
				st.NumFmt, st.RightAlign = xlsx.NumFmtDecimal, true
			}
			if err := file.Restyle(colIdx+1, excelRow, st); err != nil {
				return err
			}
		}
	}
	b.log.Info().Int("cells", highlighted).Msg("celdas cambiadas resaltadas")
	return nil
}

// appendTotals agrega la fila Total: suma de stock y valor de inventario
// (stock × precio). Idempotente: elimina una fila Total preexistente antes
// de recalcular.
func appendTotals(file *xlsx.File, rows []row) error {
	last, err := file.LastRow()
	if err != nil {
		return err
	}
	if label, err := file.CellValue(1, last); err == nil && label == "Total" {
		if err := file.RemoveRow(last); err != nil {
			return err
		}
		last--
	}

	totalStock := 0
	totalValue := decimal.Zero
	for _, r := range rows {
		totalStock += r.inStock
		if r.priceKnown {
			totalValue = totalValue.Add(r.price.Mul(decimal.NewFromInt(int64(r.inStock))))
		}
	}

	totalRow := last + 1
	stockCol := columnIndex("InStock") + 1
	priceCol := columnIndex("Price") + 1

	if err := file.SetStyledCell(1, totalRow, "Total", xlsx.CellStyle{Bold: true}); err != nil {
		return err
	}
	if err := file.SetStyledCell(stockCol, totalRow, totalStock,
		xlsx.CellStyle{Bold: true, NumFmt: xlsx.NumFmtInteger, RightAlign: true}); err != nil {
		return err
	}
	return file.SetStyledCell(priceCol, totalRow, totalValue.InexactFloat64(),
		xlsx.CellStyle{Bold: true, NumFmt: xlsx.NumFmtDecimal, RightAlign: true})
}

// autoSizeColumns ajusta anchos al contenido con topes por columna. Solo
// presentación: ningún ancho trunca el texto almacenado.
func autoSizeColumns(file *xlsx.File) error {
	rows, err := file.Rows()
	if err != nil {
		return err
	}
	for colIdx, col := range Columns {
		maxLen := 0
		for _, r := range rows {
			if colIdx < len(r) && len(r[colIdx]) > maxLen {
				maxLen = len(r[colIdx])
			}
		}
		width := float64(maxLen)*1.1 + 2
		switch col {
		case "Name":
			width = min(width, 55)
		case "Category":
			width = min(width, 18)
		case "Price":
			width = min(width, 12)
		default:
			width = max(8, min(width, 40))
		}
		if err := file.SetColWidth(colIdx+1, width); err != nil {
			return err
		}
	}
	return nil
}

func columnIndex(name string) int {
	for i, c := range Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
