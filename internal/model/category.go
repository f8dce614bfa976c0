package model

// CategoryUncategorized is assigned when no category pattern matches.
const CategoryUncategorized = "uncategorized"

// Category names used by the built-in categorizer.
const (
	CategoryUtilities = "utilities"
	CategoryAirtime   = "airtime"
	CategoryCash      = "cash"
	CategoryRent      = "rent"
	CategorySupplies  = "supplies"
	CategoryTransport = "transport"
	CategorySales     = "sales_income"
	CategoryTransfers = "transfers"
)

// Category is a bookkeeping bucket for transactions.
type Category struct {
	Name        string
	Description string
	Direction   Direction
}

// DefaultCategories lists the built-in categories.
var DefaultCategories = []Category{
	{Name: CategoryUtilities, Description: "Electricity, water, internet and TV bills", Direction: DirectionExpense},
	{Name: CategoryAirtime, Description: "Airtime and bundle purchases", Direction: DirectionExpense},
	{Name: CategoryCash, Description: "Agent withdrawals and deposits", Direction: DirectionUnknown},
	{Name: CategoryRent, Description: "Rent and premises payments", Direction: DirectionExpense},
	{Name: CategorySupplies, Description: "Stock and supplier payments", Direction: DirectionExpense},
	{Name: CategoryTransport, Description: "Fuel, fares and delivery", Direction: DirectionExpense},
	{Name: CategorySales, Description: "Payments received from customers", Direction: DirectionIncome},
	{Name: CategoryTransfers, Description: "Person to person transfers", Direction: DirectionUnknown},
	{Name: CategoryUncategorized, Description: "No category pattern matched", Direction: DirectionUnknown},
}

// IsKnownCategory reports whether name is one of DefaultCategories.
func IsKnownCategory(name string) bool {
	for _, c := range DefaultCategories {
		if c.Name == name {
			return true
		}
	}
	return false
}
