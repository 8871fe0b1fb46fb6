package views

// Category is a spending category accepted by the backend
type Category struct {
	Code  string
	Label string
}

var categories = []Category{
	{"DINING", "Dining"},
	{"GROCERIES", "Groceries"},
	{"GAS", "Gas"},
	{"ONLINE_SHOPPING", "Online Shopping"},
	{"ENTERTAINMENT", "Entertainment"},
	{"GENERAL_TRAVEL", "General Travel"},
	{"AIRLINE_TRAVEL", "Airline Travel"},
	{"HOTEL_TRAVEL", "Hotel Travel"},
	{"TRANSIT", "Transit"},
	{"PHARMACY", "Pharmacy"},
	{"RENT", "Rent"},
	{"OTHER", "Other"},
}

var categoryLabels = func() map[string]string {
	m := make(map[string]string, len(categories))
	for _, c := range categories {
		m[c.Code] = c.Label
	}
	return m
}()

// CategoryLabel returns the display label for a category code, or the code itself when it is unknown
func CategoryLabel(code string) string {
	if label, ok := categoryLabels[code]; ok {
		return label
	}
	return code
}

// Categories returns the categories in the order they are offered to the user
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsCategory reports whether code is a category the backend accepts
func IsCategory(code string) bool {
	_, ok := categoryLabels[code]
	return ok
}
