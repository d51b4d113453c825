// seed carga un catálogo de productos desde CSV y, opcionalmente, los ubica en la cuadrícula
// de una bodega nueva.
//
// Uso: go run ./cmd/seed -file productos.csv [-warehouse Principal -rows 10 -columns 5] [-latin1]
//
// Columnas: product_number,name,category,quantity,price,cell (price y cell opcionales; cell = "R2C3").
// Con -latin1 el archivo se decodifica como ISO-8859-1 (exportaciones de hojas de cálculo antiguas).
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Almacen-api/internal/application/allocator"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	gridplan "github.com/jhoicas/Almacen-api/internal/domain/grid"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// catalogRow fila válida del catálogo.
type catalogRow struct {
	Product entity.Product
	Cell    *gridplan.CellRef
}

func main() {
	file := flag.String("file", "productos.csv", "ruta del CSV")
	warehouseName := flag.String("warehouse", "", "crear esta bodega y ubicar los productos con celda")
	rows := flag.Int("rows", 10, "filas de la bodega nueva")
	columns := flag.Int("columns", 5, "columnas de la bodega nueva")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("abrir CSV")
	}
	defer f.Close()

	catalog, err := parseCatalog(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	products := postgres.NewProductRepository(pool)
	created, skipped := 0, 0
	for i := range catalog {
		if err := products.Create(ctx, &catalog[i].Product); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				skipped++
				continue
			}
			log.Fatal().Err(err).Str("number", catalog[i].Product.ProductNumber).Msg("crear producto")
		}
		created++
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("productos cargados")

	if *warehouseName == "" {
		return
	}
	alloc := allocator.New(postgres.NewTxRunner(pool), allocator.WithLogger(log))
	wh, err := alloc.CreateWarehouse(ctx, allocator.CreateWarehouseInput{Name: *warehouseName, Rows: *rows, Columns: *columns})
	if err != nil {
		log.Fatal().Err(err).Msg("crear bodega")
	}
	locations := postgres.NewLocationRepository(pool)
	caller := allocator.Caller{User: "seed"}
	placed := 0
	for _, row := range catalog {
		if row.Cell == nil || row.Product.ID == "" {
			continue
		}
		cell, err := locations.GetByPosition(ctx, wh.ID, row.Cell.Row, row.Cell.Column)
		if err != nil {
			log.Fatal().Err(err).Msg("buscar celda")
		}
		if cell == nil {
			log.Warn().Str("number", row.Product.ProductNumber).Str("cell", row.Cell.String()).Msg("celda fuera de la cuadrícula")
			continue
		}
		if _, err := alloc.Assign(ctx, caller, row.Product.ID, &cell.ID); err != nil {
			log.Warn().Err(err).Str("number", row.Product.ProductNumber).Msg("no se pudo ubicar")
			continue
		}
		placed++
	}
	log.Info().Str("warehouse", wh.ID).Int("placed", placed).Msg("bodega creada")
}

// parseCatalog lee el CSV con encabezado. Cualquier fila inválida aborta la carga indicando su línea.
func parseCatalog(r io.Reader, latin1 bool) ([]catalogRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"product_number", "name", "quantity"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []catalogRow
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		row := catalogRow{Product: entity.Product{
			ProductNumber: field(rec, "product_number"),
			Name:          field(rec, "name"),
			Category:      field(rec, "category"),
		}}
		if row.Product.ProductNumber == "" || row.Product.Name == "" {
			return nil, fmt.Errorf("línea %d: número y nombre son obligatorios", line)
		}
		qty, err := strconv.Atoi(field(rec, "quantity"))
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("línea %d: cantidad inválida %q", line, field(rec, "quantity"))
		}
		row.Product.Quantity = qty
		if raw := field(rec, "price"); raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("línea %d: precio inválido %q", line, raw)
			}
			row.Product.Price = &price
		}
		if raw := field(rec, "cell"); raw != "" {
			ref, err := gridplan.ParseCellRef(raw)
			if err != nil {
				return nil, fmt.Errorf("línea %d: %w", line, err)
			}
			row.Cell = &ref
		}
		out = append(out, row)
	}
	return out, nil
}
