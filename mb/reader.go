package mb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/eak1mov/go-mapsforge/tile"
)

// Reader reads back blocks stored by Writer.
type Reader struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// NewReader opens the database at filePath read-only.
func NewReader(filePath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}

	stmt, err := db.Prepare("SELECT tile_data, water FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Reader{db: db, stmt: stmt}, nil
}

func (r *Reader) Close() error {
	return errors.Join(r.stmt.Close(), r.db.Close())
}

func (r *Reader) ReadMetadata() (map[string]string, error) {
	metadata := make(map[string]string)

	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}

	return metadata, rows.Err()
}

// ReadBlock returns the stored block data and its water flag,
// or an empty slice if there is no such block.
func (r *Reader) ReadBlock(tileID tile.ID) ([]byte, bool, error) {
	x, y, z := tileID.X, tileID.Y, tileID.Z
	y = (1 << z) - 1 - y // XYZ -> TMS

	var blockData []byte
	var water bool
	if err := r.stmt.QueryRow(z, x, y).Scan(&blockData, &water); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return make([]byte, 0), false, nil
		}
		return nil, false, err
	}

	return blockData, water, nil
}
