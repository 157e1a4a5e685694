package ordine

// Submit validates every field of the draft. When all pass it returns the priced
// FinalizedOrder; otherwise it returns a *RejectedError holding the full result.
// Resetting the draft after success is left to the caller.
func Submit(draft OrderDraft) (FinalizedOrder, error) {
	result := Validate(draft)
	if !result.Valid() {
		return FinalizedOrder{}, &RejectedError{Result: result}
	}

	meals := draft.Meals.Clone()
	return FinalizedOrder{
		Username:   draft.Username,
		Gender:     draft.Gender,
		Email:      draft.Email,
		Phone:      draft.Phone,
		Location:   draft.Location,
		Meals:      meals,
		Date:       draft.Date,
		TotalPrice: Price(meals),
	}, nil
}
