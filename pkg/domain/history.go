package domain

import (
	"sort"
	"time"
)

// DayLayout keys heatmap cells by local calendar day.
const DayLayout = "2006-01-02"

// FortuneHistoryItem is one past draw.
type FortuneHistoryItem struct {
	CreatedAt Timestamp `json:"created_at"`
	Value     Fortune   `json:"value"`
}

// SortHistory orders items oldest first. The server returns them unordered.
func SortHistory(items []FortuneHistoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt.Time)
	})
}

// DayKey returns the YYYY-MM-DD day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// HeatmapCell is one day of the calendar heatmap.
type HeatmapCell struct {
	Day     string
	Fortune Fortune
	Level   int
}

// Heatmap is a calendar grid: each column holds up to seven consecutive days.
type Heatmap struct {
	Columns [][]HeatmapCell
	Total   int
}

// Cells returns every cell in chronological order.
func (h Heatmap) Cells() []HeatmapCell {
	out := make([]HeatmapCell, 0, h.Total)
	for _, col := range h.Columns {
		out = append(out, col...)
	}
	return out
}

// BuildHeatmap covers days consecutive local days ending on today's date in loc.
// When several draws fall on one day the latest one is shown.
func BuildHeatmap(history []FortuneHistoryItem, today time.Time, days int, loc *time.Location) Heatmap {
	if loc == nil {
		loc = time.UTC
	}
	if days <= 0 {
		return Heatmap{}
	}

	latest := make(map[string]FortuneHistoryItem, len(history))
	for _, item := range history {
		key := DayKey(item.CreatedAt.Time, loc)
		if prev, ok := latest[key]; ok && !item.CreatedAt.After(prev.CreatedAt.Time) {
			continue
		}
		latest[key] = item
	}

	local := today.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	start := end.AddDate(0, 0, -(days - 1))

	h := Heatmap{Total: days}
	var col []HeatmapCell
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format(DayLayout)
		cell := HeatmapCell{Day: key}
		if item, ok := latest[key]; ok {
			cell.Fortune = item.Value
			cell.Level = item.Value.Level()
		}
		col = append(col, cell)
		if len(col) == 7 {
			h.Columns = append(h.Columns, col)
			col = nil
		}
	}
	if len(col) > 0 {
		h.Columns = append(h.Columns, col)
	}
	return h
}
