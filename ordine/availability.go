package ordine

var availability = map[Location][]Meal{
	Chennai:    {Breakfast, Lunch},
	Coimbatore: {Breakfast, Lunch, Dinner},
	Erode:      {Lunch, Dinner},
}

// AvailableMeals returns the meals offered at a location. Unset and unknown locations
// offer nothing. The returned set is fresh on every call.
func AvailableMeals(location Location) MealSet {
	return NewMealSet(availability[location]...)
}

// ReconcileSelection drops every selected meal that is not available. Neither input is
// modified.
func ReconcileSelection(selected, available MealSet) MealSet {
	out := make(MealSet, len(selected))
	for m := range selected {
		if available.Has(m) {
			out[m] = struct{}{}
		}
	}
	return out
}
