package withings

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Default data_fields requested from the activity and sleep summary services.
const (
	DefaultActivityFields = "steps,distance,elevation,soft,moderate,intense,active,calories,totalcalories,hr_average,hr_min,hr_max,hr_zone_0,hr_zone_1,hr_zone_2,hr_zone_3"

	DefaultSleepFields = "nb_rem_episodes,sleep_efficiency,sleep_latency,total_sleep_time,total_timeinbed,wakeup_latency,waso,apnea_hypopnea_index,breathing_disturbances_intensity,asleepduration,deepsleepduration,durationtosleep,durationtowakeup,hr_average,hr_max,hr_min,lightsleepduration,night_events,out_of_bed_count,remsleepduration,rr_average,rr_max,rr_min,sleep_score,snoring,snoringepisodecount,wakeupcount,wakeupduration"
)

// MeasuresQuery selects body measures. Zero fields other than LastUpdate are
// not sent.
type MeasuresQuery struct {
	// LastUpdate is a unix timestamp; only data modified since then is returned.
	LastUpdate int64
	MeasTypes  []int
	Category   int
	StartDate  int64
	EndDate    int64
	Offset     int
}

func (q MeasuresQuery) params() url.Values {
	v := url.Values{"lastupdate": {strconv.FormatInt(q.LastUpdate, 10)}}
	if len(q.MeasTypes) > 0 {
		types := make([]string, len(q.MeasTypes))
		for i, t := range q.MeasTypes {
			types[i] = strconv.Itoa(t)
		}
		v.Set("meastypes", strings.Join(types, ","))
	}
	if q.Category != 0 {
		v.Set("category", strconv.Itoa(q.Category))
	}
	if q.StartDate != 0 {
		v.Set("startdate", strconv.FormatInt(q.StartDate, 10))
	}
	if q.EndDate != 0 {
		v.Set("enddate", strconv.FormatInt(q.EndDate, 10))
	}
	if q.Offset != 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// DataQuery selects activity or sleep summaries.
type DataQuery struct {
	LastUpdate int64
	// DataFields is a comma-separated field list; empty selects the default list.
	DataFields string
	Offset     int
}

func (q DataQuery) params(defaultFields string) url.Values {
	fields := q.DataFields
	if fields == "" {
		fields = defaultFields
	}
	v := url.Values{
		"lastupdate":  {strconv.FormatInt(q.LastUpdate, 10)},
		"data_fields": {fields},
	}
	if q.Offset != 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// Measures fetches body measures (getmeas).
func (c *Client) Measures(ctx context.Context, q MeasuresQuery) (*Response, error) {
	return c.Do(ctx, Call{Path: PathMeasure, Action: ActionGetMeas, Params: q.params()})
}

// Activity fetches daily activity summaries (getactivity).
func (c *Client) Activity(ctx context.Context, q DataQuery) (*Response, error) {
	return c.Do(ctx, Call{Path: PathMeasureV2, Action: ActionGetActivity, Params: q.params(DefaultActivityFields)})
}

// SleepSummary fetches nightly sleep summaries (getsummary).
func (c *Client) SleepSummary(ctx context.Context, q DataQuery) (*Response, error) {
	return c.Do(ctx, Call{Path: PathSleep, Action: ActionGetSummary, Params: q.params(DefaultSleepFields)})
}
