package dfs

// SameDayPrefix marks the forecast columns re-published at 10:00 on the
// event day; the unprefixed set is the day-ahead forecast.
const SameDayPrefix = "D0 "

const (
	ColumnOther        = "Other"
	ColumnTotal        = "Total"
	ColumnSameDayTotal = SameDayPrefix + ColumnTotal
)

// ForecastColumns lists every per-region MW forecast column of the
// utilisation report in source order, day-ahead first. The same-day North
// Wales label genuinely has no commas in the published data.
var ForecastColumns = []string{
	"North Scotland",
	"South and Central Scotland",
	"North East England",
	"North West England",
	"Yorkshire",
	"East Midlands",
	"West Midlands",
	"London",
	"East England",
	"South East England",
	"South West England",
	"Southern England",
	"North Wales, Merseyside and Cheshire",
	"South Wales",
	"Other",
	"Total",
	"D0 North Scotland",
	"D0 South and Central Scotland",
	"D0 North East England",
	"D0 North West England",
	"D0 Yorkshire",
	"D0 East Midlands",
	"D0 West Midlands",
	"D0 London",
	"D0 East England",
	"D0 South East England",
	"D0 South West England",
	"D0 Southern England",
	"D0 North Wales Merseyside and Cheshire",
	"D0 South Wales",
	"D0 Other",
	"D0 Total",
}

// RegionCodeByName maps DFS region display names onto DNO licence-area
// codes, the key the boundary dataset is published under. "Other" and
// "Total" have no licence area and are deliberately absent.
var RegionCodeByName = map[string]string{
	"East England":                         "_A",
	"East Midlands":                        "_B",
	"London":                               "_C",
	"North Wales, Merseyside and Cheshire": "_D",
	"West Midlands":                        "_E",
	"North East England":                   "_F",
	"North West England":                   "_G",
	"Southern England":                     "_H",
	"South East England":                   "_J",
	"South Wales":                          "_K",
	"South West England":                   "_L",
	"Yorkshire":                            "_M",
	"South and Central Scotland":           "_N",
	"North Scotland":                       "_P",
}

// IsForecastColumn reports whether name is one of the published forecast
// columns.
func IsForecastColumn(name string) bool {
	_, ok := forecastColumnSet[name]
	return ok
}

var forecastColumnSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(ForecastColumns))
	for _, c := range ForecastColumns {
		set[c] = struct{}{}
	}
	return set
}()
