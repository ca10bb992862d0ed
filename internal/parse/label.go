package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	capRe   = regexp.MustCompile(`\((\d+)\s*(?:p|pax)?\)\s*$`)
	seqRe   = regexp.MustCompile(`-(\d+)\s*$`)
	tightRe = regexp.MustCompile(`([A-Za-z]{1,2})(\d+)\s*$`)
	unitRe  = regexp.MustCompile(`\s([A-Za-z]{1,2})\s*$`)
	wsRe    = regexp.MustCompile(`\s+`)
)

// ParsedLabel holds the structured data parsed from a channel's raw
// resource label, e.g. "Terrace T-12 (4)" or "West Wing#R204".
type ParsedLabel struct {
	Zone     string
	Unit     string
	Seq      int
	Capacity int
}

// ParseLabel extracts zone, unit prefix, sequence number and seat capacity
// from a raw resource label. Channels are inconsistent about separators, so
// '#' is treated as whitespace and several tail formats are tried in order.
// fallbackZone covers feeds that deliver the zone out of band.
func ParseLabel(raw string, fallbackZone string) (ParsedLabel, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "#", " ")
	s = strings.TrimSpace(wsRe.ReplaceAllString(s, " "))

	var out ParsedLabel

	// Optional trailing capacity: "(4)", "(4p)", "(10 pax)".
	if loc := capRe.FindStringSubmatchIndex(s); loc != nil {
		if n, err := strconv.Atoi(s[loc[2]:loc[3]]); err == nil {
			out.Capacity = n
			s = strings.TrimSpace(s[:loc[0]])
		}
	}

	// Tail strategy 1: dashed sequence, "T-12" / "204-3".
	if loc := seqRe.FindStringSubmatchIndex(s); loc != nil {
		if n, err := strconv.Atoi(s[loc[2]:loc[3]]); err == nil {
			out.Seq = n
			s = strings.TrimSpace(s[:loc[0]])
			// The token left before the dash may be a unit prefix letter.
			if loc := unitRe.FindStringSubmatchIndex(s); loc != nil {
				out.Unit = strings.ToUpper(s[loc[2]:loc[3]])
				s = strings.TrimSpace(s[:loc[0]])
			} else if len(s) <= 2 && s != "" && !strings.ContainsAny(s, "0123456789") {
				out.Unit = strings.ToUpper(s)
				s = ""
			}
		}
	} else if loc := tightRe.FindStringSubmatchIndex(s); loc != nil {
		// Tail strategy 2: prefix glued to the number, "T12" / "R204".
		if n, err := strconv.Atoi(s[loc[4]:loc[5]]); err == nil {
			out.Unit = strings.ToUpper(s[loc[2]:loc[3]])
			out.Seq = n
			s = strings.TrimSpace(s[:loc[0]])
		}
	} else if i := strings.LastIndex(s, " "); i >= 0 {
		// Tail strategy 3: bare trailing number, "West Wing 204".
		if n, err := strconv.Atoi(s[i+1:]); err == nil {
			out.Seq = n
			s = strings.TrimSpace(s[:i])
		}
	}

	out.Zone = s
	if out.Zone == "" {
		out.Zone = strings.TrimSpace(fallbackZone)
	}

	if out.Zone == "" {
		return ParsedLabel{}, fmt.Errorf("unable to parse zone from label: %q", raw)
	}
	if out.Seq == 0 {
		return ParsedLabel{}, fmt.Errorf("unable to parse unit number from label: %q", raw)
	}
	return out, nil
}
