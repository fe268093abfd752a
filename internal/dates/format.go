package dates

import (
	"fmt"
	"strings"
	"time"
)

// FormatOptions mirrors the host's locale settings
type FormatOptions struct {
	Lang      string // e.g. "en-us"
	Use24Hour bool
	UseAMPM   bool
}

func (o FormatOptions) english() bool {
	lang := strings.ToLower(o.Lang)
	return lang == "" || strings.HasPrefix(lang, "en")
}

// NiceTime renders a local time. With speech set and an English locale it
// produces a form meant for text-to-speech; every other locale gets the
// display string.
func NiceTime(t time.Time, opts FormatOptions, speech bool) string {
	if !speech || !opts.english() {
		return displayTime(t, opts)
	}

	h, m := t.Hour(), t.Minute()
	switch {
	case h == 0 && m == 0:
		return "midnight"
	case h == 12 && m == 0:
		return "noon"
	}

	if opts.Use24Hour {
		return spoken24(h, m)
	}

	s := fmt.Sprintf("%d:%02d", hour12(h), m)
	if opts.UseAMPM {
		s += " " + meridiem(h)
	}
	return s
}

// spoken24 reads hour and minute as two groups: "14 30", "oh 9 oh 5", "14 o'clock"
func spoken24(h, m int) string {
	var sb strings.Builder
	if h < 10 {
		sb.WriteString("oh ")
	}
	sb.WriteString(fmt.Sprint(h))

	switch {
	case m == 0:
		sb.WriteString(" o'clock")
	case m < 10:
		sb.WriteString(fmt.Sprintf(" oh %d", m))
	default:
		sb.WriteString(fmt.Sprintf(" %d", m))
	}
	return sb.String()
}

func displayTime(t time.Time, opts FormatOptions) string {
	if opts.Use24Hour {
		return t.Format("15:04")
	}
	s := fmt.Sprintf("%d:%02d", hour12(t.Hour()), t.Minute())
	if opts.UseAMPM {
		s += " " + meridiem(t.Hour())
	}
	return s
}

func hour12(h int) int {
	h %= 12
	if h == 0 {
		return 12
	}
	return h
}

func meridiem(h int) string {
	if h < 12 {
		return "AM"
	}
	return "PM"
}

var monthNames = map[string][12]string{
	"de": {"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
	"sv": {"januari", "februari", "mars", "april", "maj", "juni", "juli", "augusti", "september", "oktober", "november", "december"},
	"es": {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	"fr": {"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
}

// NiceDate renders day of month and month name, no year: "21 October"
func NiceDate(t time.Time, lang string) string {
	month := t.Month().String()
	prefix, _, _ := strings.Cut(strings.ToLower(lang), "-")
	if names, ok := monthNames[prefix]; ok {
		month = names[t.Month()-1]
	}
	return fmt.Sprintf("%d %s", t.Day(), month)
}

// NiceDateTime joins NiceDate and NiceTime the way the reminder dialog speaks it
func NiceDateTime(t time.Time, opts FormatOptions) string {
	return NiceDate(t, opts.Lang) + " " + NiceTime(t, opts, true)
}
