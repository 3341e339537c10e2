package billing

import (
	"github.com/govbilling/billdash/internal/export"
	"github.com/govbilling/billdash/internal/records"
)

// Columns lists the exportable billing columns in default order.
func Columns() []export.Column[records.Enriched] {
	return []export.Column[records.Enriched]{
		{Key: "id", Header: "ID", Text: func(e records.Enriched) string { return e.ID }},
		{Key: "bill_id", Header: "Bill", Text: func(e records.Enriched) string { return e.SubmissionID() }},
		{Key: "center", Header: "Center", Text: func(e records.Enriched) string { return e.Center }},
		{Key: "source", Header: "Source", Text: func(e records.Enriched) string { return e.Source }},
		{Key: "component", Header: "Component", Text: func(e records.Enriched) string { return e.Component }},
		{Key: "investment", Header: "Investment", Text: func(e records.Enriched) string { return e.Investment }},
		{Key: "scheme", Header: "Scheme", Text: func(e records.Enriched) string { return e.Scheme }},
		{Key: "unit", Header: "Unit", Text: func(e records.Enriched) string { return e.Unit }},
		{Key: "allocated_quantity", Header: "Allocated", Number: func(e records.Enriched) float64 { return e.AllocatedQuantity }},
		{Key: "updated_quantity", Header: "Sold", Number: func(e records.Enriched) float64 { return e.UpdatedQuantity }},
		{Key: "cut_quantity", Header: "Cut", Number: func(e records.Enriched) float64 { return e.CutQuantity }},
		{Key: "remaining", Header: "Remaining", Number: func(e records.Enriched) float64 { return e.Remaining }},
		{Key: "rate", Header: "Rate", Number: func(e records.Enriched) float64 { return e.Rate }, NoTotal: true},
		{Key: "allocated_value", Header: "Allocated Value", Number: func(e records.Enriched) float64 { return e.AllocatedValue }},
		{Key: "sold_value", Header: "Sold Value", Number: func(e records.Enriched) float64 { return e.SoldValue }},
	}
}
