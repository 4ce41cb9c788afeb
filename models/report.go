package models

import (
	"time"
)

// GroupSpend is the total a group spent on club purchases in a period
type GroupSpend struct {
	GroupName string
	Amount    int64
}

// WeeklyReport summarizes club sales in a reporting window
type WeeklyReport struct {
	From        time.Time
	To          time.Time
	TotalSales  int
	TotalVolume int64
	TopGroups   []GroupSpend
}
