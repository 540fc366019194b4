// Package teams resolves team identifiers to one canonical code per franchise.
package teams

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownTeam is returned when a name or code cannot be resolved.
var ErrUnknownTeam = errors.New("unknown team")

// Codes is the current franchise universe.
var Codes = []string{ //nolint:gochecknoglobals // fixed universe
	"ATL", "BOS", "BKN", "CHA", "CHI", "CLE", "DAL", "DEN", "DET", "GSW",
	"HOU", "IND", "LAC", "LAL", "MEM", "MIA", "MIL", "MIN", "NOP", "NYK",
	"OKC", "ORL", "PHI", "PHX", "POR", "SAC", "SAS", "TOR", "UTA", "WAS",
}

// relocations maps historical codes onto the franchise's current code so
// ratings and windows carry across moves and renames.
var relocations = map[string]string{ //nolint:gochecknoglobals // fixed table
	"NJN": "BKN",
	"NOH": "NOP",
	"NOK": "NOP",
	"SEA": "OKC",
}

// cities maps normalized city/market names to codes. Keys are produced by
// normalizeName.
var cities = map[string]string{ //nolint:gochecknoglobals // fixed table
	"atlanta":      "ATL",
	"boston":       "BOS",
	"brooklyn":     "BKN",
	"charlotte":    "CHA",
	"chicago":      "CHI",
	"cleveland":    "CLE",
	"dallas":       "DAL",
	"denver":       "DEN",
	"detroit":      "DET",
	"goldenstate":  "GSW",
	"houston":      "HOU",
	"indiana":      "IND",
	"laclippers":   "LAC",
	"lalakers":     "LAL",
	"memphis":      "MEM",
	"miami":        "MIA",
	"milwaukee":    "MIL",
	"minnesota":    "MIN",
	"newjersey":    "BKN",
	"neworleans":   "NOP",
	"newyork":      "NYK",
	"oklahomacity": "OKC",
	"orlando":      "ORL",
	"philadelphia": "PHI",
	"phoenix":      "PHX",
	"portland":     "POR",
	"sacramento":   "SAC",
	"sanantonio":   "SAS",
	"seattle":      "OKC",
	"toronto":      "TOR",
	"utah":         "UTA",
	"washington":   "WAS",
}

var known = func() map[string]struct{} { //nolint:gochecknoglobals // derived from Codes
	m := make(map[string]struct{}, len(Codes))
	for _, c := range Codes {
		m[c] = struct{}{}
	}
	return m
}()

// Canonical upper-cases code and applies relocations. Unknown codes are
// returned upper-cased so callers outside the fixed universe still work.
func Canonical(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if to, ok := relocations[c]; ok {
		return to
	}
	return c
}

// Known reports whether code resolves into the current universe.
func Known(code string) bool {
	_, ok := known[Canonical(code)]
	return ok
}

// Lookup resolves either a team code ("NJN", "bos") or a city name
// ("Golden State", "LA Clippers", "NewJersey").
func Lookup(nameOrCode string) (string, error) {
	if Known(nameOrCode) {
		return Canonical(nameOrCode), nil
	}
	if code, ok := cities[normalizeName(nameOrCode)]; ok {
		return code, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTeam, nameOrCode)
}

// normalizeName lower-cases, strips accents and drops everything that is
// not a letter, so "L.A. Clippers" and "LAClippers" meet.
func normalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, strings.ToLower(name))
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Universe returns the sorted canonical codes among ids.
func Universe(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		c := Canonical(id)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
