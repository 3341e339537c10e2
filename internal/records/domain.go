package records

// Dimension names shared by the billing and graph pages.
const (
	DimCenter     = "center"
	DimSource     = "source"
	DimComponent  = "component"
	DimInvestment = "investment"
	DimUnit       = "unit"
	DimScheme     = "scheme"
)

// Receipt links a record to the user that receives the consumption update.
type Receipt struct {
	Name   string `json:"name,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// Record is one billing/inventory line as served by the billing API.
type Record struct {
	ID                string   `json:"id"`
	BillID            string   `json:"bill_id,omitempty"`
	Center            string   `json:"center"`
	Source            string   `json:"source"`
	Component         string   `json:"component"`
	Investment        string   `json:"investment"`
	Unit              string   `json:"unit"`
	Scheme            string   `json:"scheme"`
	AllocatedQuantity float64  `json:"allocated_quantity"`
	UpdatedQuantity   float64  `json:"updated_quantity"`
	Rate              float64  `json:"rate"`
	SourceOfReceipt   *Receipt `json:"source_of_receipt,omitempty"`
}

// Key returns the identifier used by the store index.
func Key(r *Record) string {
	if r == nil {
		return ""
	}
	return r.ID
}

// MaxCut is the largest pending consumption the record still allows.
func (r *Record) MaxCut() float64 {
	return r.AllocatedQuantity - r.UpdatedQuantity
}

// SubmissionID is the bill identifier sent upstream, falling back to the record id.
func (r *Record) SubmissionID() string {
	if r.BillID != "" {
		return r.BillID
	}
	return r.ID
}

// ReceiptUserID returns the receiving user id or an empty string.
func (r *Record) ReceiptUserID() string {
	if r == nil || r.SourceOfReceipt == nil {
		return ""
	}
	return r.SourceOfReceipt.UserID
}

// Dimension returns the record value for a named dimension.
func (r *Record) Dimension(name string) string {
	switch name {
	case DimCenter:
		return r.Center
	case DimSource:
		return r.Source
	case DimComponent:
		return r.Component
	case DimInvestment:
		return r.Investment
	case DimUnit:
		return r.Unit
	case DimScheme:
		return r.Scheme
	default:
		return ""
	}
}

// Accessor returns a value accessor bound to one dimension name.
func Accessor(name string) func(*Record) string {
	return func(r *Record) string {
		return r.Dimension(name)
	}
}

// Enriched is a record joined with its pending cut and derived amounts.
type Enriched struct {
	*Record
	CutQuantity    float64 `json:"cut_quantity"`
	Remaining      float64 `json:"remaining"`
	AllocatedValue float64 `json:"allocated_value"`
	SoldValue      float64 `json:"sold_value"`
	CutValue       float64 `json:"cut_value"`
}

// Enrich computes the derived fields of a record for the given pending cut.
func Enrich(r *Record, cut float64) Enriched {
	return Enriched{
		Record:         r,
		CutQuantity:    cut,
		Remaining:      r.AllocatedQuantity - r.UpdatedQuantity - cut,
		AllocatedValue: r.AllocatedQuantity * r.Rate,
		SoldValue:      r.UpdatedQuantity * r.Rate,
		CutValue:       cut * r.Rate,
	}
}
