package upstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/govbilling/billdash/internal/nursery"
	"github.com/govbilling/billdash/internal/records"
)

// flexString accepts JSON strings, numbers and null.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = flexString(n.String())
	default:
		return fmt.Errorf("expected string or number, got %s", data)
	}
	return nil
}

type receiptDTO struct {
	Name   flexString `json:"name"`
	UserID flexString `json:"user_id"`
}

type billingItemDTO struct {
	ID                flexString      `json:"id"`
	BillID            flexString      `json:"bill_id"`
	Center            flexString      `json:"center"`
	Source            flexString      `json:"source"`
	Component         flexString      `json:"component"`
	Investment        flexString      `json:"investment"`
	Unit              flexString      `json:"unit"`
	Scheme            flexString      `json:"scheme"`
	AllocatedQuantity decimal.Decimal `json:"allocated_quantity"`
	UpdatedQuantity   decimal.Decimal `json:"updated_quantity"`
	Rate              decimal.Decimal `json:"rate"`
	SourceOfReceipt   *receiptDTO     `json:"source_of_receipt"`
}

func (d billingItemDTO) toRecord() (*records.Record, error) {
	if d.ID == "" {
		return nil, errors.New("billing item without id")
	}
	rec := &records.Record{
		ID:                string(d.ID),
		BillID:            string(d.BillID),
		Center:            string(d.Center),
		Source:            string(d.Source),
		Component:         string(d.Component),
		Investment:        string(d.Investment),
		Unit:              string(d.Unit),
		Scheme:            string(d.Scheme),
		AllocatedQuantity: d.AllocatedQuantity.InexactFloat64(),
		UpdatedQuantity:   d.UpdatedQuantity.InexactFloat64(),
		Rate:              d.Rate.InexactFloat64(),
	}
	if d.SourceOfReceipt != nil {
		rec.SourceOfReceipt = &records.Receipt{
			Name:   string(d.SourceOfReceipt.Name),
			UserID: string(d.SourceOfReceipt.UserID),
		}
	}
	return rec, nil
}

type nurseryEntryDTO struct {
	ID               flexString      `json:"id"`
	NurseryName      flexString      `json:"nursery_name"`
	StandardItem     flexString      `json:"standard_item"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount"`
	SpentAmount      decimal.Decimal `json:"spent_amount"`
	Description      flexString      `json:"description"`
	RegistrationDate flexString      `json:"registration_date"`
}

func (d nurseryEntryDTO) toEntry() (*nursery.Entry, error) {
	if d.ID == "" {
		return nil, errors.New("nursery entry without id")
	}
	return &nursery.Entry{
		ID: string(d.ID),
		Input: nursery.Input{
			NurseryName:      string(d.NurseryName),
			StandardItem:     string(d.StandardItem),
			AllocatedAmount:  d.AllocatedAmount.InexactFloat64(),
			SpentAmount:      d.SpentAmount.InexactFloat64(),
			Description:      string(d.Description),
			RegistrationDate: string(d.RegistrationDate),
		},
	}, nil
}

// decodeList accepts either a bare JSON array or an object wrapping it in "data".
func decodeList[D any](body []byte) ([]D, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	var items []D
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
	case '{':
		var envelope struct {
			Data *[]D `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, err
		}
		if envelope.Data == nil {
			return nil, errors.New(`object without "data" array`)
		}
		items = *envelope.Data
	default:
		return nil, fmt.Errorf("expected array, got %q", body[:1])
	}
	return items, nil
}
