package analytics

import (
	"math"
	"time"

	"github.com/webboss/bio/internal/model"
)

const (
	// LeaderboardSize is the number of links in the top-links leaderboard.
	LeaderboardSize = 5
	// BreakdownSize is the number of rows kept by source and location breakdowns.
	BreakdownSize = 5

	hourlyBucketHours = 4
	shortLabelMaxDays = 7
)

var hourlyLabels = [24 / hourlyBucketHours]string{"12am", "4am", "8am", "12pm", "4pm", "8pm"}

var deviceSeed = []string{
	string(model.DeviceMobile),
	string(model.DeviceDesktop),
	string(model.DeviceTablet),
}

// Input is everything the engine needs to derive one AnalyticsView.
// Views and Clicks are expected to already be restricted to Window.
type Input struct {
	Window Window
	Views  []model.ViewEvent
	Clicks []model.ClickEvent
	Links  []model.Link
	// Location is the zone used for the hour-of-day histogram. Nil means UTC.
	Location *time.Location
}

// Aggregate derives the dashboard view. It is pure and deterministic.
func Aggregate(in Input) model.AnalyticsView {
	return model.AnalyticsView{
		Daily:     DailySeries(in.Window, in.Views, in.Clicks),
		TopLinks:  TopLinks(in.Clicks, in.Links, int64(len(in.Views))),
		Devices:   DeviceBreakdown(in.Views),
		Sources:   SourceBreakdown(in.Views),
		Locations: LocationBreakdown(in.Views),
		Hourly:    HourlyHistogram(in.Views, in.Location),
		Summary:   Summarize(in.Views, in.Clicks),
	}
}

// DailySeries returns one point per UTC day of w, oldest first. Days without
// events are zero-filled; events outside the window are ignored.
func DailySeries(w Window, views []model.ViewEvent, clicks []model.ClickEvent) []model.DailyPoint {
	if w.Days <= 0 {
		return []model.DailyPoint{}
	}

	first := truncateDay(w.Start)
	points := make([]model.DailyPoint, w.Days)
	for i := range points {
		day := first.AddDate(0, 0, i)
		points[i] = model.DailyPoint{
			Date:  day.Format(dateLayout),
			Label: dayLabel(day, w.Days),
		}
	}

	bucket := func(t time.Time) int {
		i := int(truncateDay(t).Sub(first).Hours() / 24)
		if i < 0 || i >= len(points) {
			return -1
		}
		return i
	}

	for _, v := range views {
		if i := bucket(v.ViewedAt); i >= 0 {
			points[i].Views++
		}
	}
	for _, c := range clicks {
		if i := bucket(c.ClickedAt); i >= 0 {
			points[i].Clicks++
		}
	}
	return points
}

func dayLabel(day time.Time, days int) string {
	if days <= shortLabelMaxDays {
		return day.Format("Mon")
	}
	return day.Format("Jan 2")
}

// TopLinks ranks links by click count. Clicks on products or on links that no
// longer exist are excluded.
func TopLinks(clicks []model.ClickEvent, links []model.Link, totalViews int64) []model.LinkPerformance {
	byID := make(map[string]model.Link, len(links))
	for _, l := range links {
		byID[l.ID] = l
	}

	linkClicks := make([]model.ClickEvent, 0, len(clicks))
	for _, c := range clicks {
		if c.LinkID == "" {
			continue
		}
		if _, ok := byID[c.LinkID]; !ok {
			continue
		}
		linkClicks = append(linkClicks, c)
	}

	ranked := Rank(linkClicks, func(c model.ClickEvent) string { return c.LinkID },
		RankOptions{Limit: LeaderboardSize})

	out := make([]model.LinkPerformance, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, model.LinkPerformance{
			LinkID: r.Key,
			Title:  byID[r.Key].Title,
			Clicks: r.Count,
			CTR:    Rate(r.Count, totalViews),
		})
	}
	return out
}

// DeviceBreakdown always returns mobile, desktop and tablet, sorted by count.
func DeviceBreakdown(views []model.ViewEvent) []model.Share {
	ranked := Rank(views, func(v model.ViewEvent) string {
		return string(ClassifyDevice(v.DeviceType))
	}, RankOptions{Seed: deviceSeed})
	return shares(ranked, int64(len(views)))
}

// SourceBreakdown buckets views by referrer into named sources.
func SourceBreakdown(views []model.ViewEvent) []model.Share {
	ranked := Rank(views, func(v model.ViewEvent) string {
		return ClassifySource(v.Referrer)
	}, RankOptions{Limit: BreakdownSize})
	return shares(ranked, int64(len(views)))
}

// LocationBreakdown buckets views by city.
func LocationBreakdown(views []model.ViewEvent) []model.Share {
	ranked := Rank(views, func(v model.ViewEvent) string {
		return ClassifyCity(v.City)
	}, RankOptions{Limit: BreakdownSize})
	return shares(ranked, int64(len(views)))
}

// HourlyHistogram counts views into six 4-hour buckets of the day in loc.
func HourlyHistogram(views []model.ViewEvent, loc *time.Location) []model.HourlyBucket {
	if loc == nil {
		loc = time.UTC
	}

	out := make([]model.HourlyBucket, len(hourlyLabels))
	for i, label := range hourlyLabels {
		out[i].Hour = label
	}
	for _, v := range views {
		out[v.ViewedAt.In(loc).Hour()/hourlyBucketHours].Activity++
	}
	return out
}

// Summarize computes the headline counters.
func Summarize(views []model.ViewEvent, clicks []model.ClickEvent) model.AnalyticsSummary {
	s := model.AnalyticsSummary{
		TotalViews:  int64(len(views)),
		TotalClicks: int64(len(clicks)),
	}
	for _, c := range clicks {
		switch {
		case c.LinkID != "":
			s.LinkClicks++
		case c.ProductID != "":
			s.ProductClicks++
		}
	}
	s.ClickThroughRate = Rate(s.TotalClicks, s.TotalViews)
	return s
}

// Compare contrasts current counts against the preceding window's counts.
func Compare(views, clicks, prevViews, prevClicks int64) model.AnalyticsComparison {
	return model.AnalyticsComparison{
		PreviousViews:  prevViews,
		PreviousClicks: prevClicks,
		ViewsChange:    Change(views, prevViews),
		ClicksChange:   Change(clicks, prevClicks),
		CTRChange:      round1(Rate(clicks, views) - Rate(prevClicks, prevViews)),
	}
}

// Rate returns part / whole * 100 rounded to one decimal, or 0 when whole is 0.
func Rate(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

// Change returns the percent change from prev to cur, one decimal.
// Growth from zero is reported as 100.
func Change(cur, prev int64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return round1(float64(cur-prev) / float64(prev) * 100)
}

func shares(ranked []Ranked, total int64) []model.Share {
	counts := make([]int64, len(ranked))
	for i, r := range ranked {
		counts[i] = r.Count
	}
	percents := Percentages(counts, total)

	out := make([]model.Share, 0, len(ranked))
	for i, r := range ranked {
		out = append(out, model.Share{
			Name:    r.Key,
			Count:   r.Count,
			Percent: percents[i],
		})
	}
	return out
}

func round1(v float64) float64 {
	return roundHalfUp(v*10) / 10
}

// roundHalfUp rounds halves toward positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
