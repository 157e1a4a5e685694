package main

import (
	"strings"

	"github.com/taldoflemis/tiffin/ordine"
)

type OrderDraftRequest struct {
	Username string   `json:"username"`
	Gender   string   `json:"gender" validate:"omitempty,oneof=male female"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Location string   `json:"location"`
	Meals    []string `json:"meals" validate:"dive,oneof=breakfast lunch dinner"`
	Date     string   `json:"date"`
}

// normalize lower-cases the enum-like fields so "Male" and "Lunch" are accepted.
func (r *OrderDraftRequest) normalize() {
	r.Gender = strings.ToLower(strings.TrimSpace(r.Gender))
	for i, m := range r.Meals {
		r.Meals[i] = strings.ToLower(strings.TrimSpace(m))
	}
}

// toDraft drops selected meals the location does not serve, as the form clears
// them on location change, so validating and submitting see the same draft.
func (r OrderDraftRequest) toDraft() ordine.OrderDraft {
	location := ordine.ParseLocation(r.Location)
	return ordine.OrderDraft{
		Username: r.Username,
		Gender:   ordine.Gender(r.Gender),
		Email:    r.Email,
		Phone:    r.Phone,
		Location: location,
		Meals:    ordine.ReconcileSelection(toMealSet(r.Meals), ordine.AvailableMeals(location)),
		Date:     r.Date,
	}
}

type ReconcileRequest struct {
	Location string   `json:"location"`
	Meals    []string `json:"meals" validate:"dive,oneof=breakfast lunch dinner"`
}

func (r *ReconcileRequest) normalize() {
	for i, m := range r.Meals {
		r.Meals[i] = strings.ToLower(strings.TrimSpace(m))
	}
}

func toMealSet(meals []string) ordine.MealSet {
	set := ordine.NewMealSet()
	for _, m := range meals {
		set[ordine.Meal(m)] = struct{}{}
	}
	return set
}

type LocationMealsResponse struct {
	Location ordine.Location `json:"location"`
	Meals    ordine.MealSet  `json:"meals"`
}

type MenuResponse struct {
	Locations []LocationMealsResponse `json:"locations"`
	Prices    map[ordine.Meal]int     `json:"prices"`
}

type FieldValidationResponse struct {
	Field   ordine.Field `json:"field"`
	Valid   bool         `json:"valid"`
	Message string       `json:"message"`
}

type ValidationResponse struct {
	Valid  bool                    `json:"valid"`
	Fields ordine.ValidationResult `json:"fields"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
