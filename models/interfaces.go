package models

import "context"

// DashboardAPI is the part of the backend the dashboard reads from
type DashboardAPI interface {
	GetStocks(ctx context.Context) ([]Stock, error)
	GetStockData(ctx context.Context, symbol string, r DateRange) ([]RawRecord, error)
	GetAnomalies(ctx context.Context, symbol string, r DateRange) ([]Anomaly, error)
	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}
