// Package catalog implementa el cliente HTTP del catálogo remoto (Oracle CX
// Commerce). Cada llamada lleva su propio timeout vía context; los fallos se
// clasifican en dos familias: producto inválido (domain.ErrProductNotFound,
// no reintentable) y fallo transitorio de red (domain.ErrTransient). En ambos
// casos el producto se omite en el ciclo y el siguiente sweep lo reintenta.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/spiritwatch/internal/domain"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/pkg/config"
	"github.com/jhoicas/spiritwatch/pkg/logger"
	"github.com/shopspring/decimal"
)

// Client cliente del catálogo remoto.
type Client struct {
	baseURL      string
	fieldTimeout time.Duration
	fullTimeout  time.Duration
	userAgent    string
	httpClient   *http.Client
	log          *logger.Logger
}

// New construye el cliente. El http.Client se comparte entre sweeps; los
// timeouts por llamada van en el context, no en el transporte.
func New(cfg config.CatalogConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		fieldTimeout: cfg.FieldTimeout,
		fullTimeout:  cfg.FullTimeout,
		userAgent:    cfg.UserAgent,
		httpClient:   &http.Client{},
		log:          log,
	}
}

// productPayload respuesta parcial de /ccstore/v1/products/{id}. Los campos
// b2c_* llegan como bool, string o ausentes según el producto; se decodifican
// crudos y se normalizan una sola vez.
type productPayload struct {
	RepositoryID     string            `json:"repositoryId"`
	DisplayName      string            `json:"displayName"`
	Active           *bool             `json:"active"`
	Route            string            `json:"route"`
	PrimarySmallImg  string            `json:"primarySmallImageURL"`
	ListPrice        json.RawMessage   `json:"listPrice"`
	Allocated        json.RawMessage   `json:"b2c_highlyAllocatedProduct"`
	Lottery          json.RawMessage   `json:"b2c_lotteryProduct"`
	OrderLimit       json.RawMessage   `json:"b2c_limitPerOrder"`
	ParentCategories []categoryPayload `json:"parentCategories"`
}

type categoryPayload struct {
	RepositoryID string `json:"repositoryId"`
	DisplayName  string `json:"displayName"`
}

type stockPayload struct {
	Items []struct {
		LocationID      json.RawMessage `json:"locationId"`
		InStockQuantity json.RawMessage `json:"inStockQuantity"`
	} `json:"items"`
}

// FetchActive obtiene solo el flag active de un producto (sweep rápido).
func (c *Client) FetchActive(ctx context.Context, pid string) (entity.TriState, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fieldTimeout)
	defer cancel()

	var payload productPayload
	u := fmt.Sprintf("%s/ccstore/v1/products/%s?fields=active", c.baseURL, url.PathEscape(pid))
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return entity.StateUnknown, err
	}
	if payload.Active == nil {
		return entity.StateUnknown, nil
	}
	return entity.TriStateFromBool(*payload.Active), nil
}

// FetchCategories obtiene solo el conjunto de categorías de un producto,
// como tokens repositoryId en minúsculas.
func (c *Client) FetchCategories(ctx context.Context, pid string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fieldTimeout)
	defer cancel()

	var payload productPayload
	u := fmt.Sprintf("%s/ccstore/v1/products/%s?fields=parentCategories", c.baseURL, url.PathEscape(pid))
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	cats := make([]string, 0, len(payload.ParentCategories))
	for _, pc := range payload.ParentCategories {
		if pc.RepositoryID != "" {
			cats = append(cats, strings.ToLower(pc.RepositoryID))
		}
	}
	return cats, nil
}

// FetchProduct obtiene el producto completo más su stock en la tienda de
// referencia indicada. Si la llamada de stock falla, la cantidad queda en 0;
// el producto en sí sigue siendo válido.
func (c *Client) FetchProduct(ctx context.Context, pid, referenceStore string) (*entity.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fullTimeout)
	defer cancel()

	var payload productPayload
	u := fmt.Sprintf("%s/ccstore/v1/products/%s", c.baseURL, url.PathEscape(pid))
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}

	p := &entity.Product{
		ID:         payload.RepositoryID,
		Name:       payload.DisplayName,
		Allocated:  coerceString(payload.Allocated),
		Lottery:    coerceString(payload.Lottery),
		OrderLimit: coerceString(payload.OrderLimit),
		Price:      coercePrice(payload.ListPrice),
	}
	if p.ID == "" {
		p.ID = pid
	}
	if p.Name == "" {
		p.Name = "Unknown"
	}
	if payload.Active == nil {
		p.Active = entity.StateUnknown
	} else {
		p.Active = entity.TriStateFromBool(*payload.Active)
	}
	for _, pc := range payload.ParentCategories {
		if pc.RepositoryID != "" {
			p.Categories = append(p.Categories, strings.ToLower(pc.RepositoryID))
		}
	}
	if payload.Route != "" {
		p.ProductURL = c.baseURL + payload.Route
	} else {
		p.ProductURL = fmt.Sprintf("%s/product/%s", c.baseURL, pid)
	}
	if payload.PrimarySmallImg != "" {
		p.ThumbnailURL = c.baseURL + payload.PrimarySmallImg
	}

	// El stock de la tienda de referencia es best-effort: un fallo aquí no
	// invalida el producto.
	qty, err := c.FetchStock(ctx, pid, []string{referenceStore})
	if err == nil {
		p.InStock = qty[referenceStore]
	}
	return p, nil
}

// FetchStock obtiene la cantidad en stock de un producto en un conjunto de
// tiendas, en una sola llamada. Cantidades ausentes o no numéricas valen 0.
func (c *Client) FetchStock(ctx context.Context, pid string, storeIDs []string) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fieldTimeout)
	defer cancel()

	var payload stockPayload
	u := fmt.Sprintf(
		"%s/ccstore/v1/stockStatus?actualStockStatus=true&expandStockDetails=true&products=repositoryId%%3A%s&locationIds=%s",
		c.baseURL, url.QueryEscape(pid), url.QueryEscape(strings.Join(storeIDs, ",")),
	)
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	quantities := make(map[string]int, len(payload.Items))
	for _, item := range payload.Items {
		quantities[coerceString(item.LocationID)] = coerceQty(item.InStockQuantity)
	}
	return quantities, nil
}

// FetchStore obtiene los datos de una tienda por ID (validación de /addstore
// y carga del directorio).
func (c *Client) FetchStore(ctx context.Context, storeID string) (*entity.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fieldTimeout)
	defer cancel()

	var payload struct {
		LocationID string   `json:"locationId"`
		City       string   `json:"city"`
		Address1   string   `json:"address1"`
		StateAddr  string   `json:"stateAddress"`
		PostalCode string   `json:"postalCode"`
		Phone      string   `json:"phoneNumber"`
		Latitude   *float64 `json:"latitude"`
		Longitude  *float64 `json:"longitude"`
	}
	u := fmt.Sprintf("%s/ccstore/v1/locations/%s", c.baseURL, url.PathEscape(storeID))
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	id := payload.LocationID
	if id == "" {
		id = storeID
	}
	return &entity.Store{
		ID:        id,
		City:      payload.City,
		Address:   payload.Address1,
		State:     payload.StateAddr,
		ZipCode:   payload.PostalCode,
		Phone:     payload.Phone,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	}, nil
}

// getJSON ejecuta el GET y clasifica el fallo: transporte -> ErrTransient,
// status >= 400 o cuerpo indecodificable -> ErrProductNotFound.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("url", rawURL).Msg("catálogo: fallo transitorio")
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.log.Debug().Int("status", resp.StatusCode).Str("url", rawURL).Msg("catálogo: producto inválido")
		return fmt.Errorf("%w (HTTP %d)", domain.ErrProductNotFound, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Debug().Err(err).Str("url", rawURL).Msg("catálogo: cuerpo inválido")
		return fmt.Errorf("%w: cuerpo inválido: %v", domain.ErrProductNotFound, err)
	}
	return nil
}

// coerceString normaliza un campo que puede llegar como string, número, bool
// o ausente. Ausente o null -> "N/A" (convención del proveedor).
func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "N/A"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// coerceQty fuerza una cantidad a entero; todo lo no numérico vale 0.
func coerceQty(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}

// coercePrice acepta las dos formas del proveedor: escalar o {"value": x}.
func coercePrice(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return decimal.NewFromFloat(n)
	}
	var obj struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return decimal.NewFromFloat(obj.Value)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return d
		}
	}
	return decimal.Zero
}
