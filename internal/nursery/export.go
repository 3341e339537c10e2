package nursery

import "github.com/govbilling/billdash/internal/export"

// Columns lists the exportable nursery columns in default order.
func Columns() []export.Column[*Entry] {
	return []export.Column[*Entry]{
		{Key: "id", Header: "ID", Text: func(e *Entry) string { return e.ID }},
		{Key: "nursery_name", Header: "Nursery", Text: func(e *Entry) string { return e.NurseryName }},
		{Key: "standard_item", Header: "Standard Item", Text: func(e *Entry) string { return e.StandardItem }},
		{Key: "registration_date", Header: "Registered", Text: func(e *Entry) string { return e.RegistrationDate }},
		{Key: "description", Header: "Description", Text: func(e *Entry) string { return e.Description }},
		{Key: "allocated_amount", Header: "Allocated", Number: func(e *Entry) float64 { return e.AllocatedAmount }},
		{Key: "spent_amount", Header: "Spent", Number: func(e *Entry) float64 { return e.SpentAmount }},
		{Key: "remaining_amount", Header: "Remaining", Number: (*Entry).Remaining},
	}
}
