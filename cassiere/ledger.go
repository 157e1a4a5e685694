package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/taldoflemis/tiffin/ordine"
)

var (
	ErrDuplicateOrder  = errors.New("order already booked")
	ErrUnknownLocation = errors.New("order location is not served")
	ErrPriceMismatch   = errors.New("order total does not match its meals")
)

type LocationTally struct {
	Orders  int                 `json:"orders"`
	Revenue int                 `json:"revenue"`
	Meals   map[ordine.Meal]int `json:"meals"`
}

// Ledger books finalized orders per location. Redelivered orders are recognised by
// their ID and booked once.
type Ledger struct {
	mu      sync.Mutex
	tallies map[ordine.Location]*LocationTally
	booked  map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{
		tallies: make(map[ordine.Location]*LocationTally),
		booked:  make(map[string]struct{}),
	}
}

// Book verifies the order and adds it to its location's tally.
func (l *Ledger) Book(entry ordine.Entry) error {
	if !entry.Location.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, entry.Location)
	}
	if want := ordine.Price(entry.Meals); want != entry.TotalPrice {
		return fmt.Errorf("%w: charged %d, meals cost %d", ErrPriceMismatch, entry.TotalPrice, want)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.booked[entry.ID]; ok {
		return ErrDuplicateOrder
	}
	l.booked[entry.ID] = struct{}{}

	tally, ok := l.tallies[entry.Location]
	if !ok {
		tally = &LocationTally{Meals: make(map[ordine.Meal]int)}
		l.tallies[entry.Location] = tally
	}
	tally.Orders++
	tally.Revenue += entry.TotalPrice
	for _, m := range entry.Meals.Slice() {
		tally.Meals[m]++
	}

	return nil
}

// Snapshot returns a copy of every location's tally.
func (l *Ledger) Snapshot() map[ordine.Location]LocationTally {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[ordine.Location]LocationTally, len(l.tallies))
	for location, tally := range l.tallies {
		meals := make(map[ordine.Meal]int, len(tally.Meals))
		for m, n := range tally.Meals {
			meals[m] = n
		}
		out[location] = LocationTally{Orders: tally.Orders, Revenue: tally.Revenue, Meals: meals}
	}
	return out
}
