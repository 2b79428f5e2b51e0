package dto

import (
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/dashboard"
)

type DashboardStatsDTO struct {
	TodayAppointments   int64                    `json:"todayAppointments"`
	WeeklyRevenue       decimal.Decimal          `json:"weeklyRevenue"`
	TotalPatients       int64                    `json:"totalPatients"`
	ActiveSpecialists   int64                    `json:"activeSpecialists"`
	PendingAppointments int64                    `json:"pendingAppointments"`
	CompletedThisMonth  int64                    `json:"completedThisMonth"`
	PopularServices     []dashboard.ServiceCount `json:"popularServices"`
	RecentAppointments  []AppointmentListDTO     `json:"recentAppointments"`
}
