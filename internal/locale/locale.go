// Package locale picks date and clock layouts for timestamps from the system
// timezone.
package locale

import (
	"strings"
	"time"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Clock layouts
const (
	Clock24 = "15:04:05"
	Clock12 = "03:04:05 PM"
)

// Date layouts
const (
	DateISO        = "2006-01-02"
	DateMonthFirst = "01/02/2006"
	DateDayFirst   = "02/01/2006"
)

// Format renders timestamps the way the local region writes them.
type Format struct {
	Timezone string
	Country  string
	Clock    string
	Date     string
	Location *time.Location
}

// Default is used when the region cannot be determined.
func Default() Format {
	return Format{Clock: Clock24, Date: DateISO, Location: time.Local}
}

// Detect returns the format for the runtime timezone.
// Falls back to Default if detection fails.
func Detect() Format {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return Default()
	}
	return ForTimezone(timezone)
}

// ForTimezone returns the format for a given IANA timezone.
// Exported for testing with specific timezones.
func ForTimezone(timezone string) Format {
	f := Default()
	f.Timezone = timezone
	if loc, err := time.LoadLocation(timezone); err == nil {
		f.Location = loc
	}

	// UTC/GMT have no country association
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return f
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return f
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return f
	}

	f.Country = country
	f.Clock = clockForCountry(country)
	f.Date = dateForCountry(country)
	return f
}

// Time formats the clock part, used for sample labels.
func (f Format) Time(t time.Time) string {
	return f.in(t).Format(f.Clock)
}

// DateTime formats date and clock, used for session and report times.
func (f Format) DateTime(t time.Time) string {
	t = f.in(t)
	return t.Format(f.Date) + ", " + t.Format(f.Clock)
}

func (f Format) in(t time.Time) time.Time {
	if f.Location == nil {
		return t
	}
	return t.In(f.Location)
}

func clockForCountry(country string) string {
	if clock12Countries[country] {
		return Clock12
	}
	return Clock24
}

func dateForCountry(country string) string {
	switch {
	case monthFirstCountries[country]:
		return DateMonthFirst
	case yearFirstCountries[country]:
		return DateISO
	}
	return DateDayFirst
}

// clock12Countries commonly write times on a 12-hour clock.
var clock12Countries = map[string]bool{
	"United States": true,
	"Canada":        true,
	"Australia":     true,
	"New Zealand":   true,
	"India":         true,
	"Pakistan":      true,
	"Bangladesh":    true,
	"Philippines":   true,
	"Egypt":         true,
	"Saudi Arabia":  true,
	"Colombia":      true,
	"Mexico":        true,
	"Puerto Rico":   true,
}

// monthFirstCountries write dates month/day/year.
var monthFirstCountries = map[string]bool{
	"United States":       true,
	"Puerto Rico":         true,
	"U.S. Virgin Islands": true,
	"Guam":                true,
	"American Samoa":      true,
	"Philippines":         true,
	"Belize":              true,
	"Micronesia":          true,
	"Marshall Islands":    true,
	"Palau":               true,
}

// yearFirstCountries write dates year-month-day.
var yearFirstCountries = map[string]bool{
	"China":       true,
	"Japan":       true,
	"South Korea": true,
	"Taiwan":      true,
	"Hungary":     true,
	"Lithuania":   true,
	"Sweden":      true,
	"Mongolia":    true,
}
