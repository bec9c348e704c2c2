package payment

import (
	"math"
	"time"
)

// Summary aggregates tenders and fees over a date range for the daily
// takings screen.
type Summary struct {
	TotalRevenue          float64 `json:"total_revenue"`
	Eftpos                float64 `json:"eftpos"`
	Cash                  float64 `json:"cash"`
	Cheque                float64 `json:"cheque"`
	SiteContributionTotal float64 `json:"site_contribution_total"`
	CampFeeTotal          float64 `json:"camp_fee_total"`
	PaymentCount          int     `json:"payment_count"`
	HeadcountTotal        int     `json:"headcount_total"`
}

// Camp is the slice of a camp row the dashboard needs.
type Camp struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// StayRow is one payment with stay dates, used to build occupancy stats.
type StayRow struct {
	Headcount     int
	ArrivalDate   time.Time
	DepartureDate time.Time
	FirstName     string
	LastName      string
	SiteNumber    *string
}

type Guest struct {
	Name      string `json:"name"`
	Site      string `json:"site"`
	Headcount int    `json:"headcount"`
	Until     string `json:"until"`
}

type Chart struct {
	Labels    []string  `json:"labels"`
	Headcount []int     `json:"headcount"`
	Average   []float64 `json:"average"`
}

type DashboardStats struct {
	CampName      string  `json:"camp_name"`
	CurrentGuests []Guest `json:"current_guests"`
	Chart         Chart   `json:"chart"`
}

type dayStats struct {
	headcount int
	sites     map[string]bool
}

// buildDashboardStats turns the camp's stay rows into per-day headcount and
// site-occupancy series covering the camp's date range, plus the list of
// guests on site today. Stays are half-open: a guest counts on the arrival
// day but not the departure day.
func buildDashboardStats(camp *Camp, rows []StayRow, today time.Time) *DashboardStats {
	stats := &DashboardStats{
		CampName:      camp.Name,
		CurrentGuests: []Guest{},
	}

	var days []time.Time
	daily := map[string]*dayStats{}
	for d := dateOnly(camp.StartDate); !d.After(dateOnly(camp.EndDate)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
		daily[d.Format("2006-01-02")] = &dayStats{sites: map[string]bool{}}
	}

	todayKey := dateOnly(today)
	for _, row := range rows {
		site := "Unassigned"
		if row.SiteNumber != nil {
			site = *row.SiteNumber
		}

		arrival := dateOnly(row.ArrivalDate)
		departure := dateOnly(row.DepartureDate)

		if !todayKey.Before(arrival) && todayKey.Before(departure) {
			stats.CurrentGuests = append(stats.CurrentGuests, Guest{
				Name:      row.FirstName + " " + row.LastName,
				Site:      site,
				Headcount: row.Headcount,
				Until:     departure.Format("2006-01-02"),
			})
		}

		// Walk the stay one day at a time, capped to guard against bad
		// departure dates producing runaway loops.
		processed := 0
		for d := arrival; d.Before(departure) && processed < 100; d = d.AddDate(0, 0, 1) {
			if day, ok := daily[d.Format("2006-01-02")]; ok {
				day.headcount += row.Headcount
				if site != "Unassigned" {
					day.sites[site] = true
				}
			}
			processed++
		}
	}

	for _, d := range days {
		day := daily[d.Format("2006-01-02")]
		stats.Chart.Labels = append(stats.Chart.Labels, d.Format("02/01"))
		stats.Chart.Headcount = append(stats.Chart.Headcount, day.headcount)

		avg := 0.0
		if len(day.sites) > 0 {
			avg = roundTo1(float64(day.headcount) / float64(len(day.sites)))
		}
		stats.Chart.Average = append(stats.Chart.Average, avg)
	}

	return stats
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
