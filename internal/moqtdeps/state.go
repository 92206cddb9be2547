package moqtdeps

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"
)

// CellState tracks how far a matrix cell got, so re-entry and partial
// runs are decided from an explicit record instead of guessed from
// whatever cmake left on disk.
type CellState string

const (
	StateNotStarted CellState = "not-started"
	StateConfigured CellState = "configured"
	StateBuilt      CellState = "built"
	StateInstalled  CellState = "installed"
	StateFailed     CellState = "failed"
)

const cellRecordName = ".moqtdeps-cell.json"

type cellRecord struct {
	State CellState `json:"state"`
	Stamp string    `json:"stamp"`
}

// configureStamp fingerprints everything that determines a cell's
// output: the manifest pin plus the full configure parameter list. A
// changed stamp means the existing build tree belongs to a different
// configuration and must not be reused.
func configureStamp(pin string, args []string) string {
	h := blake3.New(32, nil)
	h.Write([]byte(pin))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(args, "\x00")))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func readCellRecord(buildDir string) cellRecord {
	var rec cellRecord
	data, err := os.ReadFile(filepath.Join(buildDir, cellRecordName))
	if err != nil {
		return cellRecord{State: StateNotStarted}
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return cellRecord{State: StateNotStarted}
	}
	return rec
}

func writeCellRecord(buildDir string, rec cellRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(buildDir, cellRecordName), data, 0o644)
}
