package domain

// Row colours used by the statistics table.
const (
	ColorCriticalRising  = "#f8d7da"
	ColorCriticalFalling = "#d4edda"
)

const MissingDate = "Missing"

// AlertStatistic is one row of the statistics popup: the latest snapshot of
// a location, coloured by the direction of its critical alert count.
type AlertStatistic struct {
	Customer  string `json:"customer"`
	Date      string `json:"date"`
	Location  string `json:"location"`
	Critical  int    `json:"critical"`
	Immediate int    `json:"immediate"`
	Warning   int    `json:"warning"`
	Total     int    `json:"total"`
	Color     string `json:"color"`
}
