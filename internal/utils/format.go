package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

var italianMonths = [...]string{
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
}

var italianMonthsShort = [...]string{
	"gen", "feb", "mar", "apr", "mag", "giu",
	"lug", "ago", "set", "ott", "nov", "dic",
}

var stateLabels = map[string]string{
	"completed":  "Completato",
	"shipped":    "Spedito",
	"processing": "In lavorazione",
	"pending":    "In attesa",
	"cancelled":  "Annullato",
}

// IsValidEmail checks the basic local@domain.tld shape, rejecting any whitespace.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsAddressComplete reports whether all four address parts are non-blank.
func IsAddressComplete(street, city, zip, country string) bool {
	for _, value := range []string{street, city, zip, country} {
		if strings.TrimSpace(value) == "" {
			return false
		}
	}

	return true
}

// FormatDeliveryAddress renders "street, city zip, country".
func FormatDeliveryAddress(street, city, zip, country string) string {
	return fmt.Sprintf("%s, %s %s, %s", street, city, zip, country)
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// FormatDate renders a date as "02 gennaio 2006". Unparseable input is returned as is.
func FormatDate(value string) string {
	if value == "" {
		return "-"
	}

	t, ok := parseDate(value)
	if !ok {
		return value
	}

	return fmt.Sprintf("%02d %s %d", t.Day(), italianMonths[t.Month()-1], t.Year())
}

// FormatDateTime renders a timestamp as "02 gen 2006, 15:04".
func FormatDateTime(value string) string {
	if value == "" {
		return "-"
	}

	t, ok := parseDate(value)
	if !ok {
		return value
	}

	return fmt.Sprintf("%02d %s %d, %02d:%02d", t.Day(), italianMonthsShort[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// FormatStateLabel maps known lifecycle states to their Italian label.
func FormatStateLabel(value string) string {
	if value == "" {
		return "-"
	}

	if label, ok := stateLabels[strings.ToLower(value)]; ok {
		return label
	}

	first, size := utf8.DecodeRuneInString(value)

	return string(unicode.ToUpper(first)) + value[size:]
}
