// Package model defines domain entities for the application.
package model

import "time"

// DailyPoint is one bucket of the daily series.
type DailyPoint struct {
	Date   string `json:"date"`  // ISO date (UTC)
	Label  string `json:"label"` // "Mon" for short windows, "Jan 2" otherwise
	Views  int64  `json:"views"`
	Clicks int64  `json:"clicks"`
}

// LinkPerformance is one leaderboard row.
type LinkPerformance struct {
	LinkID string  `json:"link_id"`
	Title  string  `json:"title"`
	Clicks int64   `json:"clicks"`
	CTR    float64 `json:"ctr"` // clicks / total views * 100, one decimal
}

// Share is one category of a breakdown with its count and integer percent.
type Share struct {
	Name    string `json:"name"`
	Count   int64  `json:"count"`
	Percent int    `json:"percent"`
}

// HourlyBucket is one 4-hour slot of the hour-of-day histogram.
type HourlyBucket struct {
	Hour     string `json:"hour"` // "12am", "4am", ...
	Activity int64  `json:"activity"`
}

// AnalyticsSummary holds the headline counters of a window.
type AnalyticsSummary struct {
	TotalViews       int64   `json:"total_views"`
	TotalClicks      int64   `json:"total_clicks"`
	LinkClicks       int64   `json:"link_clicks"`
	ProductClicks    int64   `json:"product_clicks"`
	ClickThroughRate float64 `json:"click_through_rate"`
}

// AnalyticsView is the derived view the dashboard renders for one window.
// It is computed on demand and never persisted.
type AnalyticsView struct {
	Daily     []DailyPoint      `json:"daily"`
	TopLinks  []LinkPerformance `json:"top_links"`
	Devices   []Share           `json:"devices"`
	Sources   []Share           `json:"sources"`
	Locations []Share           `json:"locations"`
	Hourly    []HourlyBucket    `json:"hourly"`
	Summary   AnalyticsSummary  `json:"summary"`
}

// AnalyticsComparison compares a window against the preceding window of equal length.
type AnalyticsComparison struct {
	PreviousViews  int64   `json:"previous_views"`
	PreviousClicks int64   `json:"previous_clicks"`
	ViewsChange    float64 `json:"views_change"`  // Percent, one decimal
	ClicksChange   float64 `json:"clicks_change"` // Percent, one decimal
	CTRChange      float64 `json:"ctr_change"`    // Percentage points, one decimal
}

// AnalyticsReport is the full analytics API payload.
type AnalyticsReport struct {
	ProfileID string `json:"profile_id"`
	Period    struct {
		From string `json:"from"`
		To   string `json:"to"`
		Days int    `json:"days"`
	} `json:"period"`
	AnalyticsView
	Comparison  AnalyticsComparison `json:"comparison"`
	GeneratedAt time.Time           `json:"generated_at"`
}
