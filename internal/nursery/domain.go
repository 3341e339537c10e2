// Package nursery serves the nursery financial entries page.
package nursery

import (
	"github.com/govbilling/billdash/internal/aggregate"
	"github.com/govbilling/billdash/internal/filters"
)

// Dimension names of the nursery page.
const (
	DimNurseryName  = "nursery_name"
	DimStandardItem = "standard_item"
)

// Input is the editable payload of an entry.
type Input struct {
	NurseryName      string  `json:"nursery_name" validate:"required,max=200"`
	StandardItem     string  `json:"standard_item" validate:"required,max=200"`
	AllocatedAmount  float64 `json:"allocated_amount" validate:"gte=0"`
	SpentAmount      float64 `json:"spent_amount" validate:"gte=0"`
	Description      string  `json:"description" validate:"max=1000"`
	RegistrationDate string  `json:"registration_date" validate:"omitempty,datetime=2006-01-02"`
}

// Entry is one nursery financial record held by the upstream API.
type Entry struct {
	ID string `json:"id"`
	Input
}

// Remaining is the unspent part of the allocation.
func (e *Entry) Remaining() float64 {
	return e.AllocatedAmount - e.SpentAmount
}

// ListQuery narrows the upstream listing; every field is sent as a repeated param.
type ListQuery struct {
	NurseryNames  []string
	StandardItems []string
}

// EntryID indexes entries in the store.
func EntryID(e *Entry) string {
	if e == nil {
		return ""
	}
	return e.ID
}

// Dimensions declares the page filters in cascade order.
func Dimensions() []filters.Dimension[*Entry] {
	return []filters.Dimension[*Entry]{
		{
			Name:      DimNurseryName,
			Value:     func(e *Entry) string { return e.NurseryName },
			Multi:     true,
			Mode:      filters.Cascade,
			SkipEmpty: true,
			Sorted:    true,
		},
		{
			Name:      DimStandardItem,
			Value:     func(e *Entry) string { return e.StandardItem },
			Multi:     true,
			Mode:      filters.Cascade,
			SkipEmpty: true,
			Sorted:    true,
		},
	}
}

// Measure feeds amounts to the aggregator; amounts are already monetary so rate is 1.
func Measure(e *Entry) aggregate.Measure {
	return aggregate.Measure{Allocated: e.AllocatedAmount, Sold: e.SpentAmount, Rate: 1}
}
