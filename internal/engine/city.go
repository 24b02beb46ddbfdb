package engine

import (
	"os"
	"strings"
	"time"

	"github.com/tartampluch/go-kairos/internal/config"
)

// City is an immutable catalog entry.
type City struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Country  string `json:"country"`
	Timezone string `json:"timezone" validate:"required,timezone"`
}

// IsReference reports whether c is the synthesized entry of the user's own zone.
func (c City) IsReference() bool {
	return c.ID == config.ReferenceCityID
}

var timezoneCountries = map[string]string{
	"America/New_York":               "United States",
	"America/Los_Angeles":            "United States",
	"America/Chicago":                "United States",
	"America/Denver":                 "United States",
	"America/Phoenix":                "United States",
	"America/Toronto":                "Canada",
	"America/Vancouver":              "Canada",
	"America/Montreal":               "Canada",
	"Europe/London":                  "United Kingdom",
	"Europe/Paris":                   "France",
	"Europe/Berlin":                  "Germany",
	"Europe/Rome":                    "Italy",
	"Europe/Madrid":                  "Spain",
	"Europe/Amsterdam":               "Netherlands",
	"Europe/Brussels":                "Belgium",
	"Europe/Vienna":                  "Austria",
	"Europe/Zurich":                  "Switzerland",
	"Europe/Stockholm":               "Sweden",
	"Europe/Istanbul":                "Turkey",
	"Europe/Moscow":                  "Russia",
	"Asia/Tokyo":                     "Japan",
	"Asia/Shanghai":                  "China",
	"Asia/Seoul":                     "South Korea",
	"Asia/Kolkata":                   "India",
	"Asia/Dubai":                     "United Arab Emirates",
	"Asia/Singapore":                 "Singapore",
	"Asia/Hong_Kong":                 "Hong Kong",
	"Asia/Bangkok":                   "Thailand",
	"Australia/Sydney":               "Australia",
	"Australia/Melbourne":            "Australia",
	"Australia/Brisbane":             "Australia",
	"Australia/Perth":                "Australia",
	"Pacific/Auckland":               "New Zealand",
	"America/Sao_Paulo":              "Brazil",
	"America/Argentina/Buenos_Aires": "Argentina",
	"America/Mexico_City":            "Mexico",
	"Africa/Cairo":                   "Egypt",
	"Africa/Lagos":                   "Nigeria",
	"Africa/Johannesburg":            "South Africa",
}

// ReferenceCity synthesizes the always-present first entry for the zone tz.
func ReferenceCity(tz string) City {
	return City{
		ID:       config.ReferenceCityID,
		Name:     CityNameFromTimezone(tz),
		Country:  CountryFromTimezone(tz),
		Timezone: tz,
	}
}

// CityNameFromTimezone turns "America/New_York" into "New York".
func CityNameFromTimezone(tz string) string {
	parts := strings.Split(tz, config.TimezoneSeparator)
	if len(parts) < 2 {
		return config.FallbackCityName
	}
	return strings.ReplaceAll(parts[len(parts)-1], "_", " ")
}

// CountryFromTimezone looks tz up in a table of common zones and falls back
// to its region ("Europe/Oslo" gives "Europe").
func CountryFromTimezone(tz string) string {
	if c, ok := timezoneCountries[tz]; ok {
		return c
	}
	region, _, _ := strings.Cut(tz, config.TimezoneSeparator)
	return strings.Replace(region, "_", " ", 1)
}

// LocalTimezone returns the IANA name of the process zone.
// time.Local only reports "Local", so the name is recovered from $TZ or the
// /etc/localtime link.
func LocalTimezone() string {
	if tz := strings.TrimPrefix(os.Getenv(config.EnvTZ), ":"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if target, err := os.Readlink(config.LocaltimeLink); err == nil {
		if i := strings.LastIndex(target, config.ZoneInfoMarker); i >= 0 {
			tz := target[i+len(config.ZoneInfoMarker):]
			if _, err := time.LoadLocation(tz); err == nil {
				return tz
			}
		}
	}
	if name := time.Local.String(); name != "Local" && name != "" {
		return name
	}
	return config.FallbackTimezone
}
