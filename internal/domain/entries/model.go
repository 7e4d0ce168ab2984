package entries

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("entry not found")

// Stage is a processing step that can reject units on its own.
type Stage string

const (
	StageDesign     Stage = "design"
	StagePrint      Stage = "print"
	StageLamination Stage = "lamination"
	StageCut        Stage = "cut"
	StagePackaging  Stage = "packaging"
	StageMedia      Stage = "media"
)

// AllStages lists stages in display order.
var AllStages = []Stage{StageDesign, StagePrint, StageLamination, StageCut, StagePackaging, StageMedia}

// Stages holds one rejection count per stage.
type Stages struct {
	Design     float64 `json:"design_rej"`
	Print      float64 `json:"print_rej"`
	Lamination float64 `json:"lam_rej"`
	Cut        float64 `json:"cut_rej"`
	Packaging  float64 `json:"pack_rej"`
	Media      float64 `json:"media_rej"`
}

func (s Stages) Get(st Stage) float64 {
	switch st {
	case StageDesign:
		return s.Design
	case StagePrint:
		return s.Print
	case StageLamination:
		return s.Lamination
	case StageCut:
		return s.Cut
	case StagePackaging:
		return s.Packaging
	case StageMedia:
		return s.Media
	}
	return 0
}

// Add returns the stage-wise sum of s and o.
func (s Stages) Add(o Stages) Stages {
	return Stages{
		Design:     s.Design + o.Design,
		Print:      s.Print + o.Print,
		Lamination: s.Lamination + o.Lamination,
		Cut:        s.Cut + o.Cut,
		Packaging:  s.Packaging + o.Packaging,
		Media:      s.Media + o.Media,
	}
}

func (s Stages) Total() float64 {
	return s.Design + s.Print + s.Lamination + s.Cut + s.Packaging + s.Media
}

// Raw is what a user submits for one production run of one product.
type Raw struct {
	Date         time.Time `json:"date"`
	ClientName   string    `json:"client_name"`
	ProjectName  string    `json:"project_name"`
	Vertical     string    `json:"vertical"`
	Product      string    `json:"product"`
	PrintMedia   string    `json:"print_media"`
	Lamination   string    `json:"lamination"`
	PrinterModel string    `json:"printer_model"`
	Size         string    `json:"size"`
	Reason       string    `json:"reason"`

	MasterQty  float64 `json:"master_qty"`
	BatchQty   float64 `json:"batch_qty"`
	Rejections Stages  `json:"rejections"`
}

// Derived fields are a pure function of Raw, see Derive.
type Derived struct {
	QtyRejected      float64 `json:"qty_rejected"`
	QtyDelivered     float64 `json:"qty_delivered"`
	RejectionPercent float64 `json:"rejection_percent"`
	InStock          float64 `json:"in_stock"`
}

// Entry is a stored batch row.
type Entry struct {
	ID int64 `json:"id"`
	Raw
	Derived
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectKey identifies a (client, project) pair. Build it with KeyOf so both
// parts are trimmed.
type ProjectKey struct {
	Client  string
	Project string
}

func KeyOf(client, project string) ProjectKey {
	return ProjectKey{Client: strings.TrimSpace(client), Project: strings.TrimSpace(project)}
}

func (k ProjectKey) String() string { return k.Client + " | " + k.Project }

func (r Raw) Key() ProjectKey { return KeyOf(r.ClientName, r.ProjectName) }

// ProductKey extends ProjectKey with the trimmed product name.
type ProductKey struct {
	ProjectKey
	Product string
}

func (r Raw) ProductKey() ProductKey {
	return ProductKey{ProjectKey: r.Key(), Product: strings.TrimSpace(r.Product)}
}

// Filter narrows List. Zero values mean "no constraint"; From and To are inclusive dates.
type Filter struct {
	ClientName  string
	ProjectName string
	Vertical    string
	From        time.Time
	To          time.Time
}

// Match reports whether e passes f. Dates compare at day granularity.
func (f Filter) Match(e Entry) bool {
	if f.ClientName != "" && e.ClientName != f.ClientName {
		return false
	}
	if f.ProjectName != "" && e.ProjectName != f.ProjectName {
		return false
	}
	if f.Vertical != "" && e.Vertical != f.Vertical {
		return false
	}
	d := Day(e.Date)
	if !f.From.IsZero() && d.Before(Day(f.From)) {
		return false
	}
	if !f.To.IsZero() && d.After(Day(f.To)) {
		return false
	}
	return true
}

// Day strips the clock part of t, keeping its location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
