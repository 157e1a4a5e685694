package ordine

var unitPrices = map[Meal]int{
	Breakfast: 15,
	Lunch:     25,
	Dinner:    20,
}

func UnitPrice(m Meal) int {
	return unitPrices[m]
}

// Price sums the unit price of every meal in the set.
func Price(meals MealSet) int {
	total := 0
	for m := range meals {
		total += unitPrices[m]
	}
	return total
}
