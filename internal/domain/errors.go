package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	// ErrProductNotFound: el proveedor respondió 4xx/5xx o un cuerpo inválido
	// para un producto. No reintentable dentro del mismo ciclo; el producto se
	// omite en este sweep.
	ErrProductNotFound = errors.New("producto no encontrado en el catálogo remoto")

	// ErrTransient: fallo de red o timeout contra el proveedor. Tampoco se
	// reintenta en el ciclo; el siguiente sweep programado lo cubre.
	ErrTransient = errors.New("fallo transitorio del catálogo remoto")

	ErrNoAccount = errors.New("usuario sin cuenta")
)
