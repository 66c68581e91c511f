package tracking

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/turboairmx/quotesync/internal/models"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// firstColumn is the zero-based column holding the first mapped field.
// Column A carries no data.
const firstColumn = 1

// Parse reads the first sheet of an xlsx workbook. headerRow is the 1-based
// row holding column titles; data starts on the row after it. Columns are
// mapped by position, not by title. Rows without an order number or purchase
// order are skipped and counted.
func Parse(data []byte, headerRow int) ([]models.TrackingRecord, int, error) {
	if headerRow < 1 {
		headerRow = 1
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to parse excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to read sheet "+sheets[0])
	}
	if len(rows) <= headerRow {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "excel file has no data rows")
	}

	var (
		records []models.TrackingRecord
		skipped int
	)
	for _, row := range rows[headerRow:] {
		if blank(row) {
			continue
		}
		var rec models.TrackingRecord
		for i, field := range rec.Fields() {
			if col := firstColumn + i; col < len(row) {
				*field = strings.TrimSpace(row[col])
			}
		}
		if rec.NumeroPedido == "" && rec.OC == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var unsafeKeyChars = regexp.MustCompile(`[.#$\[\]/\s]`)

// RecordKey derives the node name for a record: the order number, else the
// purchase order, else a synthetic key from the import time and row index.
func RecordKey(rec models.TrackingRecord, at time.Time, index int) string {
	key := rec.NumeroPedido
	if key == "" {
		key = rec.OC
	}
	if key == "" {
		key = "PEDIDO_" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + strconv.Itoa(index)
	}
	return unsafeKeyChars.ReplaceAllString(key, "_")
}
