// Package stations provides the static Betriebsstellen reference table. The
// table is embedded at build time and is read-only; lookups are by exact
// RL100 short name or code.
package stations

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"

	"github.com/bahnwerk/core/internal/domain/entities"
)

//go:embed stations.csv
var rawTable []byte

// Directory is an immutable set of station records.
type Directory struct {
	records []entities.StationRecord
}

var defaultDirectory = mustParse(rawTable)

// Default returns the directory built from the embedded reference table.
func Default() *Directory {
	return defaultDirectory
}

// NewDirectory builds a directory from the given records. Used by tests and
// by callers that load an alternative table.
func NewDirectory(records []entities.StationRecord) *Directory {
	copied := make([]entities.StationRecord, len(records))
	copy(copied, records)
	return &Directory{records: copied}
}

// Parse reads a semicolon-delimited station table with a header row.
func Parse(data []byte) (*Directory, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = ';'
	r.FieldsPerRecord = 4

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse station table: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse station table: empty table")
	}

	records := make([]entities.StationRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, entities.StationRecord{
			RL100Code: row[0],
			RL100Kurz: row[1],
			RL100Lang: row[2],
			DatumAb:   row[3],
		})
	}
	return &Directory{records: records}, nil
}

func mustParse(data []byte) *Directory {
	d, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("stations: embedded table invalid: %v", err))
	}
	return d
}

// All returns a copy of every record in table order.
func (d *Directory) All() []entities.StationRecord {
	out := make([]entities.StationRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Len returns the number of records.
func (d *Directory) Len() int {
	return len(d.records)
}

// FindByShortName returns the first record whose RL100Kurz matches exactly.
// Short names are not unique across validity windows; the first match in
// table order wins.
func (d *Directory) FindByShortName(kurz string) (entities.StationRecord, bool) {
	for _, rec := range d.records {
		if rec.RL100Kurz == kurz {
			return rec, true
		}
	}
	return entities.StationRecord{}, false
}

// FindByCode returns the record with the given RL100 code.
func (d *Directory) FindByCode(code string) (entities.StationRecord, bool) {
	for _, rec := range d.records {
		if rec.RL100Code == code {
			return rec, true
		}
	}
	return entities.StationRecord{}, false
}
