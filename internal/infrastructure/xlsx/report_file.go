// Package xlsx envuelve excelize para el reporte diario: tabla de productos,
// resaltado de celdas cambiadas, fila de totales y anchos de columna.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Formatos numéricos builtin de xlsx.
const (
	NumFmtInteger = 3 // #,##0
	NumFmtDecimal = 4 // #,##0.00
)

// CellStyle combinación de atributos de estilo de una celda. Los IDs de estilo
// de excelize se cachean por combinación.
type CellStyle struct {
	Highlight  bool // relleno amarillo: celda cambiada respecto a ayer
	Bold       bool
	NumFmt     int // 0 = sin formato
	RightAlign bool
}

// File un libro xlsx de reporte con una sola hoja.
type File struct {
	f      *excelize.File
	sheet  string
	styles map[CellStyle]int
}

// New crea un libro vacío.
func New() *File {
	f := excelize.NewFile()
	return &File{f: f, sheet: f.GetSheetName(0), styles: make(map[CellStyle]int)}
}

// Open abre un reporte existente (el de ayer, para el diff).
func Open(path string) (*File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("abrir reporte: %w", err)
	}
	return &File{f: f, sheet: f.GetSheetName(0), styles: make(map[CellStyle]int)}, nil
}

// SetHeader escribe la fila 1 de encabezados.
func (x *File) SetHeader(cols []string) error {
	for i, name := range cols {
		if err := x.SetCell(i+1, 1, name); err != nil {
			return err
		}
	}
	return nil
}

// SetCell escribe una celda sin estilo. Coordenadas 1-based (fila 1 = encabezado).
func (x *File) SetCell(col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("coordenadas (%d,%d): %w", col, row, err)
	}
	return x.f.SetCellValue(x.sheet, cell, v)
}

// SetStyledCell escribe valor y estilo en una celda.
func (x *File) SetStyledCell(col, row int, v any, st CellStyle) error {
	if err := x.SetCell(col, row, v); err != nil {
		return err
	}
	return x.Restyle(col, row, st)
}

// Restyle aplica un estilo a una celda existente sin tocar su valor.
func (x *File) Restyle(col, row int, st CellStyle) error {
	id, err := x.styleID(st)
	if err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("coordenadas (%d,%d): %w", col, row, err)
	}
	return x.f.SetCellStyle(x.sheet, cell, cell, id)
}

// Rows devuelve todas las filas como texto, encabezado incluido.
func (x *File) Rows() ([][]string, error) {
	rows, err := x.f.GetRows(x.sheet)
	if err != nil {
		return nil, fmt.Errorf("leer filas: %w", err)
	}
	return rows, nil
}

// CellValue devuelve el valor formateado de una celda.
func (x *File) CellValue(col, row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("coordenadas (%d,%d): %w", col, row, err)
	}
	return x.f.GetCellValue(x.sheet, cell)
}

// IsHighlighted indica si la celda tiene el relleno de cambio (para tests y
// verificación del diff).
func (x *File) IsHighlighted(col, row int) (bool, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	styleID, err := x.f.GetCellStyle(x.sheet, cell)
	if err != nil {
		return false, err
	}
	st, err := x.f.GetStyle(styleID)
	if err != nil || st == nil {
		return false, err
	}
	for _, c := range st.Fill.Color {
		if c == "FFFF00" || c == "FFFFFF00" {
			return true, nil
		}
	}
	return false, nil
}

// LastRow devuelve el índice de la última fila con datos.
func (x *File) LastRow() (int, error) {
	rows, err := x.Rows()
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// RemoveRow elimina una fila completa (usado para la fila Total preexistente).
func (x *File) RemoveRow(row int) error {
	return x.f.RemoveRow(x.sheet, row)
}

// SetColWidth fija el ancho de una columna.
func (x *File) SetColWidth(col int, width float64) error {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	return x.f.SetColWidth(x.sheet, name, name, width)
}

// SaveAs escribe el libro a disco.
func (x *File) SaveAs(path string) error {
	if err := x.f.SaveAs(path); err != nil {
		return fmt.Errorf("guardar reporte: %w", err)
	}
	return nil
}

// Close libera el libro.
func (x *File) Close() error {
	return x.f.Close()
}

func (x *File) styleID(st CellStyle) (int, error) {
	if id, ok := x.styles[st]; ok {
		return id, nil
	}
	style := &excelize.Style{}
	if st.Highlight {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}}
	}
	if st.Bold {
		style.Font = &excelize.Font{Bold: true}
	}
	if st.NumFmt != 0 {
		style.NumFmt = st.NumFmt
	}
	if st.RightAlign {
		style.Alignment = &excelize.Alignment{Horizontal: "right"}
	}
	id, err := x.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("crear estilo: %w", err)
	}
	x.styles[st] = id
	return id, nil
}
