package ordine

import (
	"encoding/json"
	"slices"
	"strings"
)

type Meal string

const (
	Breakfast Meal = "breakfast"
	Lunch     Meal = "lunch"
	Dinner    Meal = "dinner"
)

// Meals lists every meal in menu order.
var Meals = []Meal{Breakfast, Lunch, Dinner}

type Location string

const (
	LocationUnset Location = ""
	Chennai       Location = "chennai"
	Coimbatore    Location = "coimbatore"
	Erode         Location = "erode"
)

// Locations lists every served location.
var Locations = []Location{Chennai, Coimbatore, Erode}

// ParseLocation normalizes letter case. Unknown values are returned as-is so that
// validation can report them.
func ParseLocation(s string) Location {
	return Location(strings.ToLower(strings.TrimSpace(s)))
}

func (l Location) Known() bool {
	return slices.Contains(Locations, l)
}

type Gender string

const (
	GenderUnset Gender = ""
	Male        Gender = "male"
	Female      Gender = "female"
)

// MealSet is a set of meals. The zero value is an empty set ready to use for reads.
type MealSet map[Meal]struct{}

func NewMealSet(meals ...Meal) MealSet {
	set := make(MealSet, len(meals))
	for _, m := range meals {
		set[m] = struct{}{}
	}
	return set
}

func (s MealSet) Has(m Meal) bool {
	_, ok := s[m]
	return ok
}

func (s MealSet) Len() int {
	return len(s)
}

// Slice returns the meals in menu order.
func (s MealSet) Slice() []Meal {
	out := make([]Meal, 0, len(s))
	for _, m := range Meals {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s MealSet) Clone() MealSet {
	return NewMealSet(s.Slice()...)
}

func (s MealSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *MealSet) UnmarshalJSON(data []byte) error {
	var meals []Meal
	if err := json.Unmarshal(data, &meals); err != nil {
		return err
	}
	*s = NewMealSet(meals...)
	return nil
}
