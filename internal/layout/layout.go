package layout

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Domenick1991/cabinseats/internal/domain"
)

// Cell markers understood in layout data. Any other marker is a seat.
const (
	markerAisle   = "X"
	markerStorage = "S"
)

// CategoryTable maps a row label to the category of its seats. Rows
// missing from the table fall back to Default.
type CategoryTable struct {
	Rows    map[string]domain.SeatCategory
	Default domain.SeatCategory
}

// DefaultCategoryTable matches the standard single-aisle cabin: outer
// rows A/F are window, B/E middle, C/D aisle.
func DefaultCategoryTable() CategoryTable {
	return CategoryTable{
		Rows: map[string]domain.SeatCategory{
			"A": domain.SeatCategoryWindow,
			"F": domain.SeatCategoryWindow,
			"B": domain.SeatCategoryMiddle,
			"E": domain.SeatCategoryMiddle,
			"C": domain.SeatCategoryAisle,
			"D": domain.SeatCategoryAisle,
		},
		Default: domain.SeatCategoryMiddle,
	}
}

// TableFrom builds a category table from configuration values. An empty
// set of rows yields the default table.
func TableFrom(rows map[string]string, fallback string) (CategoryTable, error) {
	if len(rows) == 0 && fallback == "" {
		return DefaultCategoryTable(), nil
	}

	table := CategoryTable{
		Rows:    make(map[string]domain.SeatCategory, len(rows)),
		Default: domain.SeatCategoryMiddle,
	}
	if fallback != "" {
		c := domain.SeatCategory(fallback)
		if !c.Valid() {
			return CategoryTable{}, fmt.Errorf("unknown default category %q", fallback)
		}
		table.Default = c
	}
	for row, value := range rows {
		c := domain.SeatCategory(value)
		if !c.Valid() {
			return CategoryTable{}, fmt.Errorf("unknown category %q for row %s", value, row)
		}
		table.Rows[strings.ToUpper(strings.TrimSpace(row))] = c
	}
	return table, nil
}

func (t CategoryTable) categoryFor(row string) domain.SeatCategory {
	if c, ok := t.Rows[row]; ok {
		return c
	}
	return t.Default
}

// Row is one cabin row as read from the layout source: a label followed
// by its cell markers in position order.
type Row struct {
	Label string
	Cells []string
}

// Plan is the full set of cabin positions generated from layout data,
// in source order.
type Plan struct {
	Seats []domain.Seat
}

// Parse reads layout rows from CSV data. Each record is a row label
// followed by one marker per position.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read layout row: %w", err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("layout row %q has no cells", strings.Join(record, ","))
		}
		label := strings.ToUpper(strings.TrimSpace(record[0]))
		if label == "" {
			return nil, fmt.Errorf("layout row with empty label")
		}
		cells := make([]string, 0, len(record)-1)
		for _, cell := range record[1:] {
			cells = append(cells, strings.TrimSpace(cell))
		}
		rows = append(rows, Row{Label: label, Cells: cells})
	}
	return rows, nil
}

// ParseFile reads layout rows from a CSV file on disk.
func ParseFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// BuildPlan classifies every cell and assigns seat identity. Bookable
// seats are labeled "<row><position>", non-seat cells "<row>-<position>"
// so that every position has a unique id. A colliding id aborts the plan
// with ErrDuplicateSeat.
func BuildPlan(rows []Row, categories CategoryTable) (*Plan, error) {
	plan := &Plan{}
	seen := make(map[string]struct{})

	for _, row := range rows {
		for idx, cell := range row.Cells {
			position := idx + 1

			kind := domain.CellKindSeat
			switch strings.ToUpper(cell) {
			case markerAisle:
				kind = domain.CellKindAisle
			case markerStorage:
				kind = domain.CellKindStorage
			}

			seat := domain.Seat{
				Row:      row.Label,
				Position: position,
				Kind:     kind,
				Status:   domain.SeatStatusFree,
			}
			if kind == domain.CellKindSeat {
				seat.SeatID = fmt.Sprintf("%s%d", row.Label, position)
				seat.Category = categories.categoryFor(row.Label)
			} else {
				seat.SeatID = fmt.Sprintf("%s-%d", row.Label, position)
			}

			if _, dup := seen[seat.SeatID]; dup {
				return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateSeat, seat.SeatID)
			}
			seen[seat.SeatID] = struct{}{}

			plan.Seats = append(plan.Seats, seat)
		}
	}
	return plan, nil
}
