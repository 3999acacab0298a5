package utils

import "time"

const (
	// ISODateFormat is the internal date representation everywhere in the
	// pipeline. Dates only leave ISO form at report emission time.
	ISODateFormat = "2006-01-02"

	// EDavkiDateFormat is the day.month.year convention the eDavki text
	// import expects.
	EDavkiDateFormat = "02.01.2006"
)

// FormatEDavkiDate reformats an ISO date for report output. Unparseable
// input is returned unchanged so a malformed date stays visible in the
// document instead of silently becoming empty.
func FormatEDavkiDate(isoDate string) string {
	t, err := time.Parse(ISODateFormat, isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format(EDavkiDateFormat)
}

// YearOf returns the four-digit year prefix of an ISO date, or "" when the
// value is too short to carry one.
func YearOf(isoDate string) string {
	if len(isoDate) < 4 {
		return ""
	}
	return isoDate[:4]
}

// PreviousDay returns the ISO date one calendar day before isoDate.
func PreviousDay(isoDate string) (string, error) {
	t, err := time.Parse(ISODateFormat, isoDate)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -1).Format(ISODateFormat), nil
}
