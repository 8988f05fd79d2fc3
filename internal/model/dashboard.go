package model

import (
	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalPatients      int64            `json:"totalPatients"`
	MonthlyRevenue     Money            `json:"monthlyRevenue"`
	OutstandingBalance Money            `json:"outstandingBalance"`
	TodaysVisits       int64            `json:"todaysVisits"`
	MonthlyVisitTrends []MonthlyVisits  `json:"monthlyVisitTrends"`
	RevenueData        []MonthlyRevenue `json:"revenueData"`
}

type MonthlyVisits struct {
	Month  string `json:"month"`
	Visits int64  `json:"visits"`
}

type MonthlyRevenue struct {
	Month       string `json:"month"`
	Revenue     Money  `json:"revenue"`
	Outstanding Money  `json:"outstanding"`
}

// Totals are the clinic-wide sums behind the outstanding balance.
type Totals struct {
	Charges  decimal.Decimal `db:"charges"`
	Payments decimal.Decimal `db:"payments"`
}

// MonthFigures are the raw sums for one calendar month.
type MonthFigures struct {
	Revenue       decimal.Decimal `db:"revenue"`
	VisitCharges  decimal.Decimal `db:"visit_charges"`
	VisitPayments decimal.Decimal `db:"visit_payments"`
}
