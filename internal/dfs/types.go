package dfs

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType distinguishes live DFS events from ESO-run test events.
type EventType string

const (
	EventLive EventType = "LIVE"
	EventTest EventType = "TEST"
)

// BidRow is one provider bid from the DFS utilisation report. From and To
// hold the half-hour clock labels of the settlement period ("17:00");
// PeriodStart/PeriodEnd stay zero until the normalizer fills them in.
// Forecasts holds only the MW columns the source row actually carried, so a
// missing cell is an absent key rather than a zero.
type BidRow struct {
	Date           string             `json:"date"`
	Provider       string             `json:"provider"`
	From           string             `json:"from"`
	To             string             `json:"to"`
	EventType      EventType          `json:"event_type"`
	Forecasts      map[string]float64 `json:"forecasts,omitempty"`
	VolumeMW       Float              `json:"volume_mw"`
	PriceGBPPerMWh decimal.Decimal    `json:"price_gbp_per_mwh"`
	PeriodStart    time.Time          `json:"period_start"`
	PeriodEnd      time.Time          `json:"period_end"`
}

// RequirementRow is one half-hour requirement window published by ESO
// day-ahead of a DFS event.
type RequirementRow struct {
	Date               string    `json:"date"`
	From               string    `json:"from"`
	To                 string    `json:"to"`
	EventType          EventType `json:"event_type"`
	RequiredMW         Float     `json:"required_mw"`
	ProcuredDayAheadMW Float     `json:"procured_day_ahead_mw"`
	PeriodStart        time.Time `json:"period_start"`
	PeriodEnd          time.Time `json:"period_end"`
}

// SummaryRow is one half-hour post-event settlement summary window.
type SummaryRow struct {
	Date              string    `json:"date"`
	From              string    `json:"from"`
	To                string    `json:"to"`
	EventType         EventType `json:"event_type"`
	SettledVolumeMW   Float     `json:"settled_volume_mw"`
	SettledCostGBP    Float     `json:"settled_cost_gbp"`
	ProcuredSameDayMW Float     `json:"procured_same_day_mw"`
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
}

// Tables bundles the three raw DFS tables exactly as fetched.
type Tables struct {
	Bids         []BidRow         `json:"bids"`
	Requirements []RequirementRow `json:"requirements"`
	Summaries    []SummaryRow     `json:"summaries"`
}
