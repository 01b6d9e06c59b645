package daterange

import "strings"

// dayjs display tokens, longest first so "YYYY" wins over "YY".
var dayjsTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"SSS", "000"},
	{"ZZ", "-0700"},
	{"M", "1"},
	{"D", "2"},
	{"H", "15"},
	{"h", "3"},
	{"m", "4"},
	{"s", "5"},
	{"A", "PM"},
	{"a", "pm"},
	{"Z", "-07:00"},
}

// GoLayout converts a dayjs display format ("DD/MM/YYYY", "YYYY-MM-DD
// HH:mm") into a Go time layout. Text in square brackets is copied
// literally. An empty format yields "".
func GoLayout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i:], ']')
			if end > 0 {
				b.WriteString(format[i+1 : i+end])
				i += end + 1
				continue
			}
		}

		matched := false
		for _, tok := range dayjsTokens {
			if strings.HasPrefix(format[i:], tok.token) {
				b.WriteString(tok.layout)
				i += len(tok.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}

// DisplayLayouts returns the Go layouts for a column's display formats:
// the date format alone and, when a time format is set, date and time
// joined by a space.
func DisplayLayouts(dateFormat, timeFormat string) []string {
	if dateFormat == "" {
		return nil
	}
	date := GoLayout(dateFormat)
	if timeFormat == "" {
		return []string{date}
	}
	return []string{date + " " + GoLayout(timeFormat), date}
}
