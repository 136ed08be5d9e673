// Package sanitize turns client supplied file names into safe ASCII names.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	stripRe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

	reservedNames = map[string]struct{}{
		"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
		"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
		"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
	}
)

// SecureFilename returns an ASCII only version of name that is safe to use as a
// single path element. Accents are folded, separators become spaces, runs of
// whitespace become one underscore and anything outside [A-Za-z0-9_.-] is dropped.
// The result may be empty.
func SecureFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	s := strings.NewReplacer("/", " ", "\\", " ").Replace(b.String())
	s = strings.Join(strings.Fields(s), "_")
	s = strings.Trim(stripRe.ReplaceAllString(s, ""), "._")

	if s != "" {
		stem, _, _ := strings.Cut(s, ".")
		if _, ok := reservedNames[strings.ToUpper(stem)]; ok {
			s = "_" + s
		}
	}
	return s
}
