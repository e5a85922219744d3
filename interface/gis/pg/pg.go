package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/geomatics-lab/landsat-ingest/interface/gis"
)

/* http://www.postgresql.org/docs/9.3/static/errcodes-appendix.html */
const (
	noError         = "00000"
	uniqueViolation = "23505"

	notPqError = "X"
)

func pqErrorCode(err error) pq.ErrorCode {
	if err == nil {
		return noError
	}
	var pqerr *pq.Error
	if errors.As(err, &pqerr) {
		return pqerr.Code
	}
	return notPqError
}

// Backend implements gis.LayerRegistry using Postgres
type Backend struct {
	*sql.DB
}

// New creates a new layer registry using Postgres
func New(ctx context.Context, dbConnection string) (*Backend, error) {
	db, err := sql.Open("postgres", dbConnection)
	if err != nil {
		return nil, fmt.Errorf("sql.open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.ping: %w", err)
	}
	return &Backend{db}, nil
}

// RegisterLayer implements gis.LayerRegistry
func (b *Backend) RegisterLayer(ctx context.Context, layer gis.Layer) error {
	_, err := b.ExecContext(ctx,
		"insert into raster_layers(name, scene, band, source_file) values($1, $2, $3, $4)",
		layer.Name, layer.Scene, layer.Band, layer.SourceFile)
	switch pqErrorCode(err) {
	case noError:
		return nil
	case uniqueViolation:
		return gis.ErrAlreadyExists{Type: "layer", ID: layer.Name}
	default:
		return fmt.Errorf("RegisterLayer.exec: %w", err)
	}
}

// Layers implements gis.LayerRegistry
// pattern supports the wildcards * and ? (translated to LIKE)
func (b *Backend) Layers(ctx context.Context, pattern string) ([]gis.Layer, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if pattern == "" {
		rows, err = b.QueryContext(ctx, "select name, scene, band, source_file from raster_layers ORDER BY name")
	} else {
		pattern = strings.ReplaceAll(strings.ReplaceAll(strings.ReplaceAll(strings.ReplaceAll(pattern, "_", "\\_"), "%", "\\%"), "*", "%"), "?", "_")
		rows, err = b.QueryContext(ctx, "select name, scene, band, source_file from raster_layers where name LIKE $1 ORDER BY name", pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("layers.QueryContext: %w", err)
	}
	defer rows.Close()
	layers := make([]gis.Layer, 0)
	for rows.Next() {
		var layer gis.Layer
		if err := rows.Scan(&layer.Name, &layer.Scene, &layer.Band, &layer.SourceFile); err != nil {
			return nil, fmt.Errorf("layers.Scan: %w", err)
		}
		layers = append(layers, layer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("layers.rows.err: %w", err)
	}
	return layers, nil
}
