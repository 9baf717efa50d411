package layout

import (
	"strings"
	"testing"

	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	input := "A,1A,X,S\nb, 1B ,2B\n"

	rows, err := Parse(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Label)
	assert.Equal(t, []string{"1A", "X", "S"}, rows[0].Cells)
	assert.Equal(t, "B", rows[1].Label)
	assert.Equal(t, []string{"1B", "2B"}, rows[1].Cells)
}

func TestParse_rejectsEmptyRows(t *testing.T) {
	_, err := Parse(strings.NewReader("A\n"))
	assert.Error(t, err)
}

func TestBuildPlan_classifiesCells(t *testing.T) {
	rows := []Row{
		{Label: "A", Cells: []string{"1A", "X", "S", "4A"}},
		{Label: "C", Cells: []string{"1C"}},
	}

	plan, err := BuildPlan(rows, DefaultCategoryTable())
	assert.NoError(t, err)
	assert.Len(t, plan.Seats, 5)

	first := plan.Seats[0]
	assert.Equal(t, "A1", first.SeatID)
	assert.Equal(t, "A", first.Row)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, domain.CellKindSeat, first.Kind)
	assert.Equal(t, domain.SeatCategoryWindow, first.Category)
	assert.Equal(t, domain.SeatStatusFree, first.Status)

	aisle := plan.Seats[1]
	assert.Equal(t, "A-2", aisle.SeatID)
	assert.Equal(t, domain.CellKindAisle, aisle.Kind)
	assert.Empty(t, aisle.Category)
	assert.Empty(t, aisle.BookingReference)

	storage := plan.Seats[2]
	assert.Equal(t, "A-3", storage.SeatID)
	assert.Equal(t, domain.CellKindStorage, storage.Kind)
	assert.Empty(t, storage.Category)

	aisleSeat := plan.Seats[4]
	assert.Equal(t, "C1", aisleSeat.SeatID)
	assert.Equal(t, domain.SeatCategoryAisle, aisleSeat.Category)
}

func TestBuildPlan_uniqueSeatIDs(t *testing.T) {
	rows := []Row{
		{Label: "A", Cells: []string{"1A", "2A", "X"}},
		{Label: "B", Cells: []string{"1B", "S"}},
	}

	plan, err := BuildPlan(rows, DefaultCategoryTable())
	assert.NoError(t, err)

	seen := make(map[string]bool)
	for _, seat := range plan.Seats {
		assert.False(t, seen[seat.SeatID], "duplicate id %s", seat.SeatID)
		seen[seat.SeatID] = true
	}
}

func TestBuildPlan_duplicateSeatAborts(t *testing.T) {
	rows := []Row{
		{Label: "A", Cells: []string{"1A"}},
		{Label: "A", Cells: []string{"1A"}},
	}

	plan, err := BuildPlan(rows, DefaultCategoryTable())
	assert.ErrorIs(t, err, domain.ErrDuplicateSeat)
	assert.Nil(t, plan)
}

func TestBuildPlan_fallbackCategory(t *testing.T) {
	rows := []Row{{Label: "Z", Cells: []string{"1Z"}}}

	plan, err := BuildPlan(rows, DefaultCategoryTable())
	assert.NoError(t, err)
	assert.Equal(t, domain.SeatCategoryMiddle, plan.Seats[0].Category)
}

func TestTableFrom(t *testing.T) {
	table, err := TableFrom(map[string]string{"a": "window", "B": "aisle"}, "middle")
	assert.NoError(t, err)
	assert.Equal(t, domain.SeatCategoryWindow, table.categoryFor("A"))
	assert.Equal(t, domain.SeatCategoryAisle, table.categoryFor("B"))
	assert.Equal(t, domain.SeatCategoryMiddle, table.categoryFor("Q"))

	_, err = TableFrom(map[string]string{"A": "emergency"}, "")
	assert.Error(t, err)

	table, err = TableFrom(nil, "")
	assert.NoError(t, err)
	assert.Equal(t, domain.SeatCategoryWindow, table.categoryFor("F"))
}
