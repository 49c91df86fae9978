package entity

// TriState modela el flag "active" de un producto como tres estados explícitos.
// El proveedor entrega true/false/ausente en formatos variados ("N/A", 1/0, bool);
// la conversión ocurre una sola vez en la frontera y el resto del código nunca
// vuelve a comparar strings.
type TriState int

const (
	StateUnknown TriState = iota
	StateActive
	StateInactive
)

// TriStateFromBool convierte un booleano del proveedor al estado interno.
func TriStateFromBool(active bool) TriState {
	if active {
		return StateActive
	}
	return StateInactive
}

// Bool devuelve el valor booleano y false en ok si el estado es desconocido.
func (s TriState) Bool() (value, ok bool) {
	switch s {
	case StateActive:
		return true, true
	case StateInactive:
		return false, true
	default:
		return false, false
	}
}

func (s TriState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	default:
		return "unknown"
	}
}
