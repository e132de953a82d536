package storage

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grid-builder/backend/internal/models"
	"github.com/marcboeker/go-duckdb"
	"github.com/vmihailenco/msgpack/v5"
)

// DuckStore implements LayoutStore on a DuckDB file. Documents are kept as
// msgpack blobs next to their metadata columns.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

// NewDuckStore opens (or creates) the layout database at dbPath.
func NewDuckStore(dbPath string) (*DuckStore, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS layouts (
			id           VARCHAR PRIMARY KEY,
			name         VARCHAR NOT NULL,
			size         BIGINT NOT NULL,
			canvas_count INTEGER NOT NULL,
			item_count   INTEGER NOT NULL,
			saved_at     TIMESTAMP NOT NULL,
			document     BLOB NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

func encodeDocument(doc models.ExportState) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding layout: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeDocument(data []byte) (models.ExportState, error) {
	var doc models.ExportState
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&doc); err != nil {
		return models.ExportState{}, fmt.Errorf("decoding layout: %w", err)
	}
	return doc, nil
}

// Save inserts a new layout under a fresh ID.
func (ds *DuckStore) Save(name string, doc models.ExportState) (*models.LayoutInfo, error) {
	data, err := encodeDocument(doc)
	if err != nil {
		return nil, err
	}
	info := describe(uuid.New().String(), name, doc, int64(len(data)))
	_, err = ds.db.Exec(
		`INSERT INTO layouts (id, name, size, canvas_count, item_count, saved_at, document) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.Name, info.Size, info.CanvasCount, info.ItemCount, info.SavedAt, data,
	)
	if err != nil {
		return nil, fmt.Errorf("saving layout: %w", err)
	}
	return info, nil
}

// Update replaces the document of an existing layout.
func (ds *DuckStore) Update(id string, doc models.ExportState) (*models.LayoutInfo, error) {
	current, err := ds.Get(id)
	if err != nil {
		return nil, err
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return nil, err
	}
	info := describe(id, current.Name, doc, int64(len(data)))
	_, err = ds.db.Exec(
		`UPDATE layouts SET size = ?, canvas_count = ?, item_count = ?, saved_at = ?, document = ? WHERE id = ?`,
		info.Size, info.CanvasCount, info.ItemCount, info.SavedAt, data, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating layout: %w", err)
	}
	return info, nil
}

// Get retrieves layout metadata by ID.
func (ds *DuckStore) Get(id string) (*models.LayoutInfo, error) {
	row := ds.db.QueryRow(
		`SELECT id, name, size, canvas_count, item_count, saved_at FROM layouts WHERE id = ?`, id)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	return info, nil
}

// Load reads the document of a layout.
func (ds *DuckStore) Load(id string) (models.ExportState, error) {
	var data []byte
	err := ds.db.QueryRow(`SELECT document FROM layouts WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ExportState{}, notFound(id)
	}
	if err != nil {
		return models.ExportState{}, fmt.Errorf("reading layout: %w", err)
	}
	return decodeDocument(data)
}

// List returns the most recently saved layouts.
func (ds *DuckStore) List(limit int) ([]*models.LayoutInfo, error) {
	query := `SELECT id, name, size, canvas_count, item_count, saved_at FROM layouts ORDER BY saved_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := ds.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing layouts: %w", err)
	}
	defer rows.Close()

	list := make([]*models.LayoutInfo, 0)
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("listing layouts: %w", err)
		}
		list = append(list, info)
	}
	return list, rows.Err()
}

// Delete removes a layout.
func (ds *DuckStore) Delete(id string) error {
	res, err := ds.db.Exec(`DELETE FROM layouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting layout: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

// Rename updates the display name of a layout.
func (ds *DuckStore) Rename(id string, newName string) (*models.LayoutInfo, error) {
	res, err := ds.db.Exec(`UPDATE layouts SET name = ? WHERE id = ?`, newName, id)
	if err != nil {
		return nil, fmt.Errorf("renaming layout: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFound(id)
	}
	return ds.Get(id)
}

// Close closes the database. The file is kept.
func (ds *DuckStore) Close() error {
	if ds.db != nil {
		return ds.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInfo(row rowScanner) (*models.LayoutInfo, error) {
	var info models.LayoutInfo
	var savedAt time.Time
	if err := row.Scan(&info.ID, &info.Name, &info.Size, &info.CanvasCount, &info.ItemCount, &savedAt); err != nil {
		return nil, err
	}
	info.SavedAt = savedAt
	return &info, nil
}
