package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichDerivesAmounts(t *testing.T) {
	r := &Record{ID: "1", AllocatedQuantity: 100, UpdatedQuantity: 40, Rate: 2.5}
	e := Enrich(r, 10)

	assert.Same(t, r, e.Record)
	assert.Equal(t, 50.0, e.Remaining)
	assert.Equal(t, 250.0, e.AllocatedValue)
	assert.Equal(t, 100.0, e.SoldValue)
	assert.Equal(t, 25.0, e.CutValue)
	assert.Equal(t, 60.0, r.MaxCut())
}

func TestSubmissionIDFallsBackToRecordID(t *testing.T) {
	assert.Equal(t, "B-9", (&Record{ID: "1", BillID: "B-9"}).SubmissionID())
	assert.Equal(t, "1", (&Record{ID: "1"}).SubmissionID())
}

func TestReceiptUserID(t *testing.T) {
	assert.Empty(t, (&Record{}).ReceiptUserID())
	r := &Record{SourceOfReceipt: &Receipt{Name: "State", UserID: "U-7"}}
	assert.Equal(t, "U-7", r.ReceiptUserID())
}

func TestAccessor(t *testing.T) {
	r := &Record{Center: "North", Source: "State", Component: "Seeds", Investment: "Capital", Unit: "kg", Scheme: "S1"}
	cases := map[string]string{
		DimCenter:     "North",
		DimSource:     "State",
		DimComponent:  "Seeds",
		DimInvestment: "Capital",
		DimUnit:       "kg",
		DimScheme:     "S1",
		"unknown":     "",
	}
	for name, want := range cases {
		assert.Equal(t, want, Accessor(name)(r), name)
	}
}

func TestDimensionDeclarations(t *testing.T) {
	billing := BillingDimensions()
	assert.Len(t, billing, 5)
	assert.False(t, billing[0].Multi)
	assert.Equal(t, DimScheme, billing[4].Name)

	graph := GraphDimensions()
	assert.Len(t, graph, 4)
	for _, d := range graph {
		assert.True(t, d.Multi)
		assert.True(t, d.Sorted)
	}
}

func TestGroupBy(t *testing.T) {
	key, ok := GroupBy(DimComponent)
	assert.True(t, ok)
	assert.Equal(t, "Seeds", key(&Record{Component: "Seeds"}))

	_, ok = GroupBy("rate")
	assert.False(t, ok)
}
