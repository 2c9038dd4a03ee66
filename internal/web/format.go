package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// now is swapped in tests
var now = time.Now

// FormatNumber abbreviates thousands and millions: 1234 -> "1.2K"
func FormatNumber(n int64) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	}
	return strconv.FormatInt(n, 10)
}

// FormatDate renders "Today at 15:04", "Yesterday at 15:04" or "Jan 02, 2006"
// in the server's local time. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.Local()
	today := now().Local()

	y, m, d := t.Date()
	ty, tm, td := today.Date()
	if y == ty && m == tm && d == td {
		return "Today at " + t.Format("15:04")
	}
	yy, ym, yd := today.AddDate(0, 0, -1).Date()
	if y == yy && m == ym && d == yd {
		return "Yesterday at " + t.Format("15:04")
	}
	return t.Format("Jan 02, 2006")
}

// FormatRelative renders how long ago t was, e.g. "3 hours ago"
func FormatRelative(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now().Sub(t)
	suffix := " ago"
	if d < 0 {
		d = -d
		suffix = ""
	}

	var s string
	switch {
	case d < 45*time.Second:
		s = "less than a minute"
	case d < 90*time.Second:
		s = "1 minute"
	case d < 45*time.Minute:
		s = plural(int(d.Round(time.Minute)/time.Minute), "minute")
	case d < 90*time.Minute:
		s = "about 1 hour"
	case d < 24*time.Hour:
		s = "about " + plural(int(d.Round(time.Hour)/time.Hour), "hour")
	case d < 48*time.Hour:
		s = "1 day"
	case d < 30*24*time.Hour:
		s = plural(int(d/(24*time.Hour)), "day")
	case d < 365*24*time.Hour:
		s = plural(int(d/(30*24*time.Hour)), "month")
	default:
		s = plural(int(d/(365*24*time.Hour)), "year")
	}
	if suffix == "" {
		return "in " + s
	}
	return s + suffix
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Truncate cuts text to max runes and appends "..." when it was longer
func Truncate(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}

// DomainOf returns the host of raw, or raw itself when it does not parse
func DomainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}

// Percent formats a share with one decimal: 12.345 -> "12.3%"
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// Growth renders a growth rate as "+x% since yesterday", or "" for zero
func Growth(v float64) string {
	if v == 0 {
		return ""
	}
	sign := ""
	if v > 0 {
		sign = "+"
	}
	return sign + strconv.FormatFloat(v, 'f', 1, 64) + "% since yesterday"
}

// FormatCount groups thousands with commas: 1337 -> "1,337"
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
