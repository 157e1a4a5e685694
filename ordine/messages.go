package ordine

// Messages shown next to a failing field.
const (
	MsgUsernameRequired = "Username is required."
	MsgUsernameTooLong  = "Username cannot exceed 20 characters."
	MsgUsernameCharset  = "Username must contain letters, numbers, underscore, or hash."
	MsgUsernameDigit    = "Username cannot start with a number."
	MsgUsernameSymbol   = "Username should contain at least one of underscore (_) or hash (#)."

	MsgEmailRequired  = "Email is required."
	MsgEmailTooLong   = "Email cannot exceed 250 characters."
	MsgEmailFormat    = `Invalid email format (must contain "@" and ".").`
	MsgEmailOneAt     = `Email can only contain one "@" symbol.`
	MsgEmailAfterDot  = `Email must have at least 3 characters after ".".`
	MsgEmailAfterAt   = `Email must have at least 3 characters after "@".`
	MsgEmailPlusAtGap = `Invalid email format (must have at least one character between "+" and "@").`

	MsgGenderRequired = "Please select your gender (Male or Female)."

	MsgPhoneFormat  = "Invalid phone number format. Must start with +91 and have 10 digits."
	MsgPhoneTooLong = "Phone number cannot exceed 13 characters."

	MsgLocationRequired  = "Location is required."
	MsgLocationNotServed = "Location is not served."

	MsgMealRequired = "At least one meal must be selected."

	MsgDateRequired = "Date is required."
)
