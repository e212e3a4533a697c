package domain

import "fmt"

// Fortune is one of the seven fixed fortune labels.
type Fortune string

// Fortune labels, highest to lowest.
const (
	Yukichi  Fortune = "諭吉"
	DaiKichi Fortune = "大吉"
	Kichi    Fortune = "吉"
	ChuKichi Fortune = "中吉"
	ShoKichi Fortune = "小吉"
	Kyo      Fortune = "凶"
	DaiKyo   Fortune = "大凶"
)

// Favorable is the "kichi" pool.
var Favorable = []Fortune{Yukichi, DaiKichi, Kichi, ChuKichi, ShoKichi}

// Unfavorable is the "kyo" pool.
var Unfavorable = []Fortune{Kyo, DaiKyo}

// Fortunes lists every label, highest to lowest.
var Fortunes = []Fortune{Yukichi, DaiKichi, Kichi, ChuKichi, ShoKichi, Kyo, DaiKyo}

// fortuneLevels is the heatmap rank of each label. 0 means no draw.
var fortuneLevels = map[Fortune]int{
	DaiKyo:   1,
	Kyo:      2,
	ShoKichi: 3,
	ChuKichi: 4,
	Kichi:    5,
	DaiKichi: 6,
	Yukichi:  7,
}

// MaxLevel is the highest heatmap level.
const MaxLevel = 7

// Level returns the heatmap level of f, or 0 for unknown labels.
func (f Fortune) Level() int {
	return fortuneLevels[f]
}

// Valid returns true if f is one of the seven known labels.
func (f Fortune) Valid() bool {
	_, ok := fortuneLevels[f]
	return ok
}

// IsFavorable returns true for labels in the favorable pool.
func (f Fortune) IsFavorable() bool {
	return f.Level() >= ShoKichi.Level()
}

func (f Fortune) String() string {
	return string(f)
}

// DrawResult is the response of a server-side draw.
type DrawResult struct {
	Fortune    Fortune    `json:"fortune"`
	NextDrawAt *Timestamp `json:"next_draw_at"`
}

// Validate rejects labels outside the known set.
func (r DrawResult) Validate() error {
	if !r.Fortune.Valid() {
		return fmt.Errorf("unknown fortune %q", r.Fortune)
	}
	return nil
}
