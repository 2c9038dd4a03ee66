package domain

import "encoding/json"

// DashboardStats is the aggregate snapshot behind the dashboard. It is computed
// server-side and treated as read-only.
type DashboardStats struct {
	TotalLinks     int64         `json:"totalLinks"`
	TotalClicks    int64         `json:"totalClicks"`
	ClicksToday    int64         `json:"clicksToday"`
	UniqueVisitors int64         `json:"uniqueVisitors"`
	LinksGrowth    float64       `json:"linksGrowth"`
	ClicksGrowth   float64       `json:"clicksGrowth"`
	TodayGrowth    float64       `json:"todayGrowth"`
	VisitorsGrowth float64       `json:"visitorsGrowth"`
	DailyClicks    []DailyClicks `json:"dailyClicks"`
	HourlyClicks   []HourlyStats `json:"hourlyClicks"`
	TopLinks       []Link        `json:"topLinks"`
}

type DailyClicks struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// HourlyStats holds one hourly bucket. The dashboard labels hours as strings
// ("10h") while per-link analytics uses integers, so Hour accepts both.
type HourlyStats struct {
	Hour   HourLabel `json:"hour"`
	Clicks int64     `json:"clicks"`
}

// HourLabel is an hour bucket label decoded from either a JSON string or number.
type HourLabel string

func (h *HourLabel) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*h = HourLabel(n.String() + "h")
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*h = HourLabel(s)
	return nil
}

// LinkAnalytics is the per-link time series and breakdown returned by
// GET /links/{id}/analytics.
type LinkAnalytics struct {
	LinkID           int64            `json:"linkId"`
	ShortCode        string           `json:"shortCode"`
	OriginalURL      string           `json:"originalUrl"`
	TotalClicks      int64            `json:"totalClicks"`
	UniqueClicks     int64            `json:"uniqueClicks"`
	CreatedAt        Timestamp        `json:"createdAt"`
	LastClickAt      *Timestamp       `json:"lastClickAt,omitempty"`
	DailyClicks      []DailyClicks    `json:"dailyClicks"`
	HourlyClicks     []HourlyStats    `json:"hourlyClicks"`
	ClicksByCountry  []CountryClicks  `json:"clicksByCountry"`
	ClicksByCity     []CityClicks     `json:"clicksByCity"`
	ClicksByBrowser  []BrowserClicks  `json:"clicksByBrowser"`
	ClicksByOS       []OSClicks       `json:"clicksByOS"`
	ClicksByDevice   []DeviceClicks   `json:"clicksByDevice"`
	ClicksByReferrer []ReferrerClicks `json:"clicksByReferrer"`
	DeviceBreakdown  map[string]int64 `json:"deviceTypeBreakdown"`
	BotClicks        int64            `json:"botClicks"`
	RealClicks       int64            `json:"realClicks"`
}

type CountryClicks struct {
	CountryCode string `json:"countryCode"`
	CountryName string `json:"countryName"`
	Clicks      int64  `json:"clicks"`
}

type CityClicks struct {
	CityName    string `json:"cityName"`
	CountryCode string `json:"countryCode"`
	Clicks      int64  `json:"clicks"`
}

type BrowserClicks struct {
	Browser string `json:"browser"`
	Clicks  int64  `json:"clicks"`
}

type OSClicks struct {
	OperatingSystem string `json:"operatingSystem"`
	Clicks          int64  `json:"clicks"`
}

type DeviceClicks struct {
	DeviceType string `json:"deviceType"`
	Clicks     int64  `json:"clicks"`
}

type ReferrerClicks struct {
	Referrer string `json:"referrer"`
	Clicks   int64  `json:"clicks"`
}
