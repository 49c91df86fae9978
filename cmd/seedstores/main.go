// seedstores importa el directorio de tiendas del proveedor desde un archivo
// JSON a la tabla stores. Importación única; re-ejecutarlo actualiza en lugar
// de duplicar.
//
// Uso: seedstores -file stores.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/infrastructure/postgres"
	"github.com/jhoicas/spiritwatch/pkg/config"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// storeRecord forma de cada entrada del JSON exportado del proveedor.
type storeRecord struct {
	City     string   `json:"city"`
	Address1 string   `json:"address1"`
	State    string   `json:"stateAddress"`
	ZipCode  string   `json:"postalCode"`
	Phone    string   `json:"phoneNumber"`
	Lat      *float64 `json:"latitude"`
	Lng      *float64 `json:"longitude"`
}

func main() {
	file := flag.String("file", "stores.json", "archivo JSON con el directorio de tiendas")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("leer archivo de tiendas")
	}

	// El archivo mapea store_id -> datos.
	var records map[string]storeRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Fatal().Err(err).Msg("parsear archivo de tiendas")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.InitSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("inicializar esquema")
	}

	stores := make([]*entity.Store, 0, len(records))
	for id, r := range records {
		city, address := r.City, r.Address1
		if city == "" {
			city = "Unknown"
		}
		if address == "" {
			address = "Unknown"
		}
		stores = append(stores, &entity.Store{
			ID:        id,
			City:      city,
			Address:   address,
			State:     r.State,
			ZipCode:   r.ZipCode,
			Phone:     r.Phone,
			Latitude:  r.Lat,
			Longitude: r.Lng,
		})
	}

	repo := postgres.NewStoreRepository(pool)
	written, err := repo.UpsertBatch(ctx, stores)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar tiendas")
	}
	log.Info().Int("stores", written).Msg("directorio de tiendas cargado")
}
