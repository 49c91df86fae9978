package report

import (
	"strconv"
	"strings"
)

// Columnas del reporte diario, en orden.
var Columns = []string{"ProductID", "Name", "Category", "Active", "InStock", "Allocated", "Lottery", "Price", "OdrLmt"}

// Columnas cuantitativas (comparación numérica) y booleanas (normalizadas a Y/N).
var (
	quantityColumns = map[string]bool{"InStock": true, "OdrLmt": true, "Price": true}
	booleanColumns  = map[string]bool{"Active": true, "Allocated": true, "Lottery": true}
)

// Normalize lleva el valor de una celda a su forma canónica para comparar
// entre el reporte de hoy y el de ayer. ok=false significa "desconocido":
// dos desconocidos son iguales entre sí y distintos de cualquier valor
// conocido (un desconocido nunca equivale a cero).
func Normalize(col, raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "N/A") || strings.EqualFold(s, "nan") {
		return "", false
	}

	if quantityColumns[col] {
		// Las celdas formateadas pueden traer separador de miles.
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}

	if booleanColumns[col] {
		switch strings.ToUpper(s) {
		case "Y", "YES", "TRUE", "1":
			return "Y", true
		case "N", "NO", "FALSE", "0":
			return "N", true
		}
		return strings.ToUpper(s), true
	}

	return s, true
}

// Changed decide si una celda debe resaltarse: desconocido vs desconocido no
// cambia; desconocido vs conocido sí; dos conocidos cambian si sus formas
// canónicas difieren.
func Changed(col, oldRaw, newRaw string) bool {
	oldNorm, oldOK := Normalize(col, oldRaw)
	newNorm, newOK := Normalize(col, newRaw)
	if !oldOK && !newOK {
		return false
	}
	if oldOK != newOK {
		return true
	}
	return oldNorm != newNorm
}
