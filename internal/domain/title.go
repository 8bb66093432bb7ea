package domain

import (
	"fmt"
	"strings"
	"time"
)

// TitlePrefix marks every folder created by tabsaver.
const TitlePrefix = "[tabsaver]"

const (
	// dayLayout renders dates the way an en-US locale date string does.
	dayLayout = "1/2/2006"
	// secondLayout renders date-times the way an en-US locale string does.
	secondLayout = "1/2/2006, 3:04:05 PM"
	// isoLayout is the diagnostic timestamp (UTC, millisecond precision).
	isoLayout = "2006-01-02T15:04:05.000Z"
	// keyDayLayout is the day component of registry keys.
	keyDayLayout = "2006-01-02"
)

// AutosaveTitle returns the day-granular autosave folder title.
// Every autosave on the same local day resolves to the same title.
func AutosaveTitle(now time.Time) string {
	return fmt.Sprintf("%s autosave @ %s", TitlePrefix, now.Format(dayLayout))
}

// ForceSaveTitle returns the second-granular force-save folder title.
func ForceSaveTitle(tabCount int, now time.Time) string {
	return fmt.Sprintf("%s %d @ %s", TitlePrefix, tabCount, now.Format(secondLayout))
}

// AutosaveKey is the registry key of the autosave folder for the day of now.
func AutosaveKey(now time.Time) string {
	return "autosave:" + now.Format(keyDayLayout)
}

// ISOTimestamp formats t for diagnostic log lines.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// IsTabsaverTitle reports whether a folder title follows the tabsaver naming convention.
func IsTabsaverTitle(title string) bool {
	return strings.HasPrefix(title, TitlePrefix+" ")
}
