package main

import (
	"sync"

	"github.com/taldoflemis/tiffin/ordine"
)

// OrderTable keeps every accepted order in submission order. It lives in memory only.
type OrderTable struct {
	mu   sync.RWMutex
	rows []ordine.Entry
}

func NewOrderTable() *OrderTable {
	return &OrderTable{}
}

func (t *OrderTable) Append(entry ordine.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, entry)
}

// Rows returns a copy of the table, oldest first.
func (t *OrderTable) Rows() []ordine.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rows := make([]ordine.Entry, len(t.rows))
	copy(rows, t.rows)
	return rows
}

func (t *OrderTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
