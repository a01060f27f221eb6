package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"billtrack/pkg/utils"
)

// Views are the four derived buckets used for summary display. The
// three unpaid buckets partition the unpaid set exactly; Paid is an
// orthogonal partition by status.
type Views struct {
	UnpaidThisMonth []BillDTO `json:"unpaidThisMonth"`
	UnpaidUpcoming  []BillDTO `json:"unpaidUpcoming"`
	Overdue         []BillDTO `json:"overdue"`
	Paid            []BillDTO `json:"paid"`
}

// Totals holds the per-bucket amount sums.
type Totals struct {
	UnpaidThisMonth float64 `json:"unpaidThisMonth"`
	UnpaidUpcoming  float64 `json:"unpaidUpcoming"`
	Overdue         float64 `json:"overdue"`
	Paid            float64 `json:"paid"`
}

// Bucket splits bills by status and due date relative to now. Date-only
// strings are interpreted as local midnight in now's location, so the
// boundaries are calendar-day boundaries, not UTC instants.
func Bucket(bills []BillDTO, now time.Time) Views {
	startOfToday := utils.StartOfDay(now)
	startOfNextMonth := utils.StartOfNextMonth(now)

	var v Views
	for _, b := range bills {
		if b.Status == StatusPaid {
			v.Paid = append(v.Paid, b)
			continue
		}

		due, err := utils.ParseDate(utils.NormalizeDateString(b.DueDate), now.Location())
		if err != nil {
			// An unparseable due date cannot be overdue or upcoming;
			// surface it with the current month's bills.
			v.UnpaidThisMonth = append(v.UnpaidThisMonth, b)
			continue
		}

		switch {
		case due.Before(startOfToday):
			v.Overdue = append(v.Overdue, b)
		case due.Before(startOfNextMonth):
			v.UnpaidThisMonth = append(v.UnpaidThisMonth, b)
		default:
			v.UnpaidUpcoming = append(v.UnpaidUpcoming, b)
		}
	}
	return v
}

// ForAssignee filters every bucket to a single assignee. The filter is
// applied identically and independently to each bucket, before totals
// are summed.
func (v Views) ForAssignee(a Assignee) Views {
	return Views{
		UnpaidThisMonth: filterAssignee(v.UnpaidThisMonth, a),
		UnpaidUpcoming:  filterAssignee(v.UnpaidUpcoming, a),
		Overdue:         filterAssignee(v.Overdue, a),
		Paid:            filterAssignee(v.Paid, a),
	}
}

func filterAssignee(bills []BillDTO, a Assignee) []BillDTO {
	var out []BillDTO
	for _, b := range bills {
		if b.Assignee == a {
			out = append(out, b)
		}
	}
	return out
}

// Totals sums amounts per bucket with decimal arithmetic so cents do
// not drift through repeated float addition.
func (v Views) Totals() Totals {
	return Totals{
		UnpaidThisMonth: sumAmounts(v.UnpaidThisMonth),
		UnpaidUpcoming:  sumAmounts(v.UnpaidUpcoming),
		Overdue:         sumAmounts(v.Overdue),
		Paid:            sumAmounts(v.Paid),
	}
}

func sumAmounts(bills []BillDTO) float64 {
	total := decimal.Zero
	for _, b := range bills {
		total = total.Add(decimal.NewFromFloat(b.Amount))
	}
	return total.Round(2).InexactFloat64()
}
