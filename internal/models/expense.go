package models

import "fmt"

// ExpenseCategory classifies a miscellaneous expense.
type ExpenseCategory string

const (
	CategoryTireShop     ExpenseCategory = "tire_shop"
	CategoryWash         ExpenseCategory = "wash"
	CategoryFood         ExpenseCategory = "food"
	CategoryToll         ExpenseCategory = "toll"
	CategoryUnloading    ExpenseCategory = "unloading"
	CategoryLoadingCrew  ExpenseCategory = "loading_crew"
	CategoryElectrician  ExpenseCategory = "electrician"
	CategoryMechanic     ExpenseCategory = "mechanic"
	CategoryTarping      ExpenseCategory = "tarping"
	CategoryCargoLashing ExpenseCategory = "cargo_lashing"
	CategoryTips         ExpenseCategory = "tips"
	CategoryOther        ExpenseCategory = "other"
)

// ExpenseCategories lists every category in display order.
var ExpenseCategories = []ExpenseCategory{
	CategoryTireShop, CategoryWash, CategoryFood, CategoryToll,
	CategoryUnloading, CategoryLoadingCrew, CategoryElectrician, CategoryMechanic,
	CategoryTarping, CategoryCargoLashing, CategoryTips, CategoryOther,
}

// IsValid reports whether c is a known category.
func (c ExpenseCategory) IsValid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseExpenseCategory converts raw input into an ExpenseCategory.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	c := ExpenseCategory(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown expense category %q", s)
	}
	return c, nil
}

// MiscExpense is an expense recorded outside the trip form. It floats free
// until a trip completion absorbs it.
type MiscExpense struct {
	ID          string          `json:"id" bson:"id"`
	Date        string          `json:"date" bson:"date" validate:"omitempty,datetime=2006-01-02"`
	Category    ExpenseCategory `json:"category" bson:"category" validate:"required"`
	Description string          `json:"description" bson:"description"`
	Value       float64         `json:"value" bson:"value" validate:"gt=0"`
	Attachment  string          `json:"attachment,omitempty" bson:"attachment,omitempty"`
}
