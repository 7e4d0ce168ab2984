package entries

import (
	"math"

	"github.com/qualitypulse/tracker/internal/domain/rates"
)

// Normalize coerces every numeric field of r to a finite non-negative value.
func (r Raw) Normalize() Raw {
	r.MasterQty = rates.Sanitize(r.MasterQty)
	r.BatchQty = rates.Sanitize(r.BatchQty)
	r.Rejections = Stages{
		Design:     rates.Sanitize(r.Rejections.Design),
		Print:      rates.Sanitize(r.Rejections.Print),
		Lamination: rates.Sanitize(r.Rejections.Lamination),
		Cut:        rates.Sanitize(r.Rejections.Cut),
		Packaging:  rates.Sanitize(r.Rejections.Packaging),
		Media:      rates.Sanitize(r.Rejections.Media),
	}
	return r
}

// Derive computes the stored totals of one batch from its raw fields.
//
// The rejection percentage is taken against the order quantity, or against the
// batch size when no order quantity is known. Stock only counts what was delivered
// beyond the order quantity.
func Derive(r Raw) Derived {
	r = r.Normalize()

	rejected := r.Rejections.Total()
	denominator := r.MasterQty
	if denominator <= 0 {
		denominator = r.BatchQty
	}
	delivered := r.BatchQty - rejected

	return Derived{
		QtyRejected:      rates.Qty(rejected),
		QtyDelivered:     rates.Qty(delivered),
		RejectionPercent: rates.RejectionRate(rejected, denominator),
		InStock:          rates.Qty(math.Max(0, delivered-r.MasterQty)),
	}
}

// New builds an unsaved entry with freshly derived fields.
func New(r Raw) Entry {
	r = r.Normalize()
	return Entry{Raw: r, Derived: Derive(r)}
}

// Recompute replaces e's derived fields with values derived from its raw fields.
// It reports whether anything changed.
func (e *Entry) Recompute() bool {
	e.Raw = e.Raw.Normalize()
	d := Derive(e.Raw)
	changed := d != e.Derived
	e.Derived = d
	return changed
}

// Remaining is the part of the order quantity this batch alone leaves open.
func (e Entry) Remaining() float64 {
	return rates.Remaining(e.MasterQty, e.QtyDelivered)
}
