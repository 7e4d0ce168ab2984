package projects

import (
	"github.com/qualitypulse/tracker/internal/domain/entries"
	"github.com/qualitypulse/tracker/internal/domain/rates"
)

// Config is the vertical taxonomy and quality target metrics are computed against.
type Config struct {
	TargetRate float64
	Verticals  []string
}

func DefaultConfig() Config {
	return Config{
		TargetRate: 3.0,
		Verticals:  []string{"IDE Autoworks", "IDE Commercial", "Subumi"},
	}
}

type VerticalRate struct {
	Name     string  `json:"name"`
	Rejected float64 `json:"rejected"`
	Master   float64 `json:"master"`
	Rate     float64 `json:"rate"`
}

type StageRate struct {
	Stage    entries.Stage `json:"stage"`
	Rejected float64       `json:"rejected"`
	Rate     float64       `json:"rate"`
}

type Metrics struct {
	OverallRate    float64        `json:"overall_rate"`
	TotalRejected  float64        `json:"total_rejected"`
	TotalMaster    float64        `json:"total_master"`
	TotalDelivered float64        `json:"total_delivered"`
	Projects       int            `json:"projects"`
	Entries        int            `json:"entries"`
	Verticals      []VerticalRate `json:"verticals"`
	Stages         []StageRate    `json:"stages"`
	TargetRate     float64        `json:"target_rate"`
	AboveTarget    bool           `json:"above_target"`
}

// ComputeMetrics derives scalar rates from consolidated aggregates. Every rate uses
// the deduplicated order quantity as its denominator. Aggregates whose vertical is
// not configured only count toward the overall figures.
func ComputeMetrics(aggs []Aggregate, cfg Config) Metrics {
	m := Metrics{TargetRate: cfg.TargetRate, Projects: len(aggs)}

	byVertical := make(map[string]*VerticalRate, len(cfg.Verticals))
	m.Verticals = make([]VerticalRate, len(cfg.Verticals))
	for i, name := range cfg.Verticals {
		m.Verticals[i].Name = name
		byVertical[name] = &m.Verticals[i]
	}

	var stages entries.Stages
	for _, a := range aggs {
		m.TotalRejected += a.QtyRejected
		m.TotalMaster += a.MasterQty
		m.TotalDelivered += a.QtyDelivered
		m.Entries += a.Entries
		stages = stages.Add(a.Rejections)

		if v, ok := byVertical[a.Vertical]; ok {
			v.Rejected += a.QtyRejected
			v.Master += a.MasterQty
		}
	}

	m.TotalRejected = rates.Qty(m.TotalRejected)
	m.TotalMaster = rates.Qty(m.TotalMaster)
	m.TotalDelivered = rates.Qty(m.TotalDelivered)
	m.OverallRate = rates.RejectionRate(m.TotalRejected, m.TotalMaster)
	m.AboveTarget = m.OverallRate > m.TargetRate

	for i := range m.Verticals {
		v := &m.Verticals[i]
		v.Rejected = rates.Qty(v.Rejected)
		v.Master = rates.Qty(v.Master)
		v.Rate = rates.RejectionRate(v.Rejected, v.Master)
	}

	m.Stages = make([]StageRate, 0, len(entries.AllStages))
	for _, st := range entries.AllStages {
		rej := rates.Qty(stages.Get(st))
		m.Stages = append(m.Stages, StageRate{
			Stage:    st,
			Rejected: rej,
			Rate:     rates.RejectionRate(rej, m.TotalMaster),
		})
	}
	return m
}

func (m Metrics) Vertical(name string) (VerticalRate, bool) {
	for _, v := range m.Verticals {
		if v.Name == name {
			return v, true
		}
	}
	return VerticalRate{}, false
}

func (m Metrics) Stage(st entries.Stage) StageRate {
	for _, s := range m.Stages {
		if s.Stage == st {
			return s
		}
	}
	return StageRate{Stage: st}
}
