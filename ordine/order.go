package ordine

import "time"

// OrderDraft is the in-progress, unvalidated form data.
type OrderDraft struct {
	Username string   `json:"username"`
	Gender   Gender   `json:"gender"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Location Location `json:"location"`
	Meals    MealSet  `json:"meals"`
	Date     string   `json:"date"`
}

// FinalizedOrder is a draft that passed every rule, priced.
// Build it with Submit; it never shares the draft's meal set.
type FinalizedOrder struct {
	Username   string   `json:"username"`
	Gender     Gender   `json:"gender"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Location   Location `json:"location"`
	Meals      MealSet  `json:"meals"`
	Date       string   `json:"date"`
	TotalPrice int      `json:"total_price"`
}

// Entry is one row of the order table and the message carried on the order bus.
type Entry struct {
	FinalizedOrder
	ID        string    `json:"order_id"`
	OrderedAt time.Time `json:"ordered_at"`
}

func NewEntry(order FinalizedOrder, id string, orderedAt time.Time) Entry {
	return Entry{
		FinalizedOrder: order,
		ID:             id,
		OrderedAt:      orderedAt,
	}
}
