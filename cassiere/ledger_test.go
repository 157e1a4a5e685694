package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/tiffin/ordine"
)

func entry(id string, location ordine.Location, total int, meals ...ordine.Meal) ordine.Entry {
	return ordine.Entry{
		ID: id,
		FinalizedOrder: ordine.FinalizedOrder{
			Username:   "ab_c",
			Location:   location,
			Meals:      ordine.NewMealSet(meals...),
			TotalPrice: total,
		},
	}
}

func TestLedgerBook(t *testing.T) {
	ledger := NewLedger()

	require.NoError(t, ledger.Book(entry("1", ordine.Chennai, 40, ordine.Breakfast, ordine.Lunch)))
	require.NoError(t, ledger.Book(entry("2", ordine.Chennai, 25, ordine.Lunch)))
	require.NoError(t, ledger.Book(entry("3", ordine.Erode, 20, ordine.Dinner)))

	snapshot := ledger.Snapshot()
	assert.Equal(t, LocationTally{
		Orders:  2,
		Revenue: 65,
		Meals:   map[ordine.Meal]int{ordine.Breakfast: 1, ordine.Lunch: 2},
	}, snapshot[ordine.Chennai])
	assert.Equal(t, 20, snapshot[ordine.Erode].Revenue)
	assert.NotContains(t, snapshot, ordine.Coimbatore)
}

func TestLedgerRejects(t *testing.T) {
	tests := []struct {
		name  string
		entry ordine.Entry
		want  error
	}{
		{name: "wrong total", entry: entry("1", ordine.Chennai, 15, ordine.Lunch), want: ErrPriceMismatch},
		{name: "unknown location", entry: entry("2", "madurai", 25, ordine.Lunch), want: ErrUnknownLocation},
		{name: "unset location", entry: entry("3", ordine.LocationUnset, 25, ordine.Lunch), want: ErrUnknownLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger()

			err := ledger.Book(tt.entry)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, ledger.Snapshot())
		})
	}
}

func TestLedgerBooksRedeliveryOnce(t *testing.T) {
	ledger := NewLedger()
	order := entry("1", ordine.Coimbatore, 60, ordine.Breakfast, ordine.Lunch, ordine.Dinner)

	require.NoError(t, ledger.Book(order))
	assert.ErrorIs(t, ledger.Book(order), ErrDuplicateOrder)

	assert.Equal(t, 1, ledger.Snapshot()[ordine.Coimbatore].Orders)
}

func TestLedgerSnapshotIsACopy(t *testing.T) {
	ledger := NewLedger()
	require.NoError(t, ledger.Book(entry("1", ordine.Erode, 25, ordine.Lunch)))

	snapshot := ledger.Snapshot()
	snapshot[ordine.Erode].Meals[ordine.Lunch] = 99

	assert.Equal(t, 1, ledger.Snapshot()[ordine.Erode].Meals[ordine.Lunch])
}
