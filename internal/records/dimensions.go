package records

import (
	"github.com/govbilling/billdash/internal/aggregate"
	"github.com/govbilling/billdash/internal/filters"
)

// Hierarchy is the cascade order of the billing dimensions.
var Hierarchy = []string{DimCenter, DimSource, DimComponent, DimInvestment}

// BillingDimensions declares the single-select filters of the billing page.
func BillingDimensions() []filters.Dimension[*Record] {
	dims := make([]filters.Dimension[*Record], 0, len(Hierarchy)+1)
	for _, name := range Hierarchy {
		dims = append(dims, filters.Dimension[*Record]{Name: name, Value: Accessor(name), Mode: filters.Cascade})
	}
	return append(dims, filters.Dimension[*Record]{Name: DimScheme, Value: Accessor(DimScheme), Mode: filters.Independent})
}

// GraphDimensions declares the multi-select filters of the graph page.
func GraphDimensions() []filters.Dimension[*Record] {
	dims := make([]filters.Dimension[*Record], 0, len(Hierarchy))
	for _, name := range Hierarchy {
		dims = append(dims, filters.Dimension[*Record]{Name: name, Value: Accessor(name), Multi: true, Mode: filters.Cascade, Sorted: true})
	}
	return dims
}

// Measure feeds a record to the aggregator.
func Measure(r *Record) aggregate.Measure {
	return aggregate.Measure{Allocated: r.AllocatedQuantity, Sold: r.UpdatedQuantity, Rate: r.Rate}
}

// GroupBy validates a grouping dimension name and returns its accessor.
func GroupBy(name string) (func(*Record) string, bool) {
	switch name {
	case DimCenter, DimSource, DimComponent, DimInvestment, DimUnit, DimScheme:
		return Accessor(name), true
	}
	return nil, false
}
