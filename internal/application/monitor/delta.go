package monitor

import "github.com/jhoicas/spiritwatch/internal/domain/entity"

// Clasificador de deltas: funciones puras y deterministas sobre pares
// (anterior, actual). La primera observación (sin valor previo en caché) se
// almacena en silencio, nunca genera alerta.

// ClassifyActive decide el evento para la dimensión del flag active.
// unknown->X almacena sin alertar; true->false y false->true alertan;
// estados estables no emiten nada.
func ClassifyActive(prev, curr entity.TriState) (entity.EventKind, bool) {
	if prev == entity.StateUnknown || curr == entity.StateUnknown {
		return "", false
	}
	switch {
	case prev == entity.StateInactive && curr == entity.StateActive:
		return entity.EventBecameActive, true
	case prev == entity.StateActive && curr == entity.StateInactive:
		return entity.EventBecameInactive, true
	default:
		return "", false
	}
}

// ClassifyCategory decide si el producto entró a la categoría objetivo:
// ausente en el último conjunto almacenado y presente en el actual. Salir de
// la categoría no alerta. prevKnown=false es primera observación.
func ClassifyCategory(target string, prev []string, prevKnown bool, curr []string) bool {
	if !prevKnown {
		return false
	}
	return containsCategory(curr, target) && !containsCategory(prev, target)
}

// ClassifyStock decide si hubo reposición: alerta solo cuando curr > prev.
// Bajas y valores iguales actualizan la caché en silencio (a los suscriptores
// les importan las reposiciones, no los agotamientos).
func ClassifyStock(prev int, prevKnown bool, curr int) bool {
	if !prevKnown {
		return false
	}
	return curr > prev
}

func containsCategory(set []string, token string) bool {
	for _, c := range set {
		if c == token {
			return true
		}
	}
	return false
}
