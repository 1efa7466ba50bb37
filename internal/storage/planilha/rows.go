package planilha

import (
	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
)

// RowsFromLines flattens typed spreadsheet lines into stored rows,
// going through JSON so the column names are the ones the document
// layout uses.
func RowsFromLines[T any](lines []T) ([]Row, error) {
	rows := make([]Row, 0, len(lines))
	for i := range lines {
		raw, err := json.Marshal(lines[i])
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Could not encode spreadsheet line").
				Mark(ierr.ErrSystem)
		}
		var row Row
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Could not flatten spreadsheet line").
				Mark(ierr.ErrSystem)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
