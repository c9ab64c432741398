package vcf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/vibe-sv/internal/sv"
)

// AltKind classifies an ALT allele.
type AltKind uint8

const (
	AltBreakend AltKind = iota // t[p[, t]p], ]p]t, [p[t
	AltSingle                  // t. or .t
	AltSymbolic                // <DEL>, <DUP>, ...
)

// Allele is a parsed structural variant ALT allele.
type Allele struct {
	Kind        AltKind
	Orientation sv.Orientation
	Insert      string    // inserted bases, without the reference base
	Mate        sv.Coords // AltBreakend only
	Symbol      string    // AltSymbolic only, without subtype
}

// ParseAlt parses an ALT allele. A breakend is forward when the retained
// sequence precedes the bracket or dot and reverse otherwise. For mates, ']'
// marks a forward and '[' a reverse breakend.
func ParseAlt(alt string) (Allele, error) {
	if alt == "" || strings.ContainsRune(alt, ',') {
		return Allele{}, fmt.Errorf("unsupported ALT %q", alt)
	}

	if strings.HasPrefix(alt, "<") && strings.HasSuffix(alt, ">") {
		symbol, _, _ := strings.Cut(alt[1:len(alt)-1], ":")
		return Allele{Kind: AltSymbolic, Symbol: symbol}, nil
	}

	if i := strings.IndexAny(alt, "[]"); i >= 0 {
		return parseBreakendAlt(alt, i)
	}

	if len(alt) >= 2 && alt[len(alt)-1] == '.' {
		return Allele{Kind: AltSingle, Orientation: sv.Forward, Insert: alt[1 : len(alt)-1]}, nil
	}
	if len(alt) >= 2 && alt[0] == '.' {
		return Allele{Kind: AltSingle, Orientation: sv.Reverse, Insert: alt[1 : len(alt)-1]}, nil
	}
	return Allele{}, fmt.Errorf("unsupported ALT %q", alt)
}

func parseBreakendAlt(alt string, open int) (Allele, error) {
	bracket := alt[open]
	end := strings.IndexByte(alt[open+1:], bracket)
	if end < 0 {
		return Allele{}, fmt.Errorf("ALT %q: unterminated breakend", alt)
	}
	end += open + 1

	mate, err := parseMate(alt[open+1 : end])
	if err != nil {
		return Allele{}, fmt.Errorf("ALT %q: %w", alt, err)
	}
	if bracket == ']' {
		mate.Orientation = sv.Forward
	} else {
		mate.Orientation = sv.Reverse
	}

	a := Allele{Kind: AltBreakend, Mate: mate}
	switch {
	case open > 0 && end == len(alt)-1:
		a.Orientation = sv.Forward
		a.Insert = alt[1:open]
	case open == 0 && end < len(alt)-1:
		a.Orientation = sv.Reverse
		a.Insert = alt[end+1 : len(alt)-1]
	default:
		return Allele{}, fmt.Errorf("ALT %q: expected sequence on exactly one side", alt)
	}
	return a, nil
}

func parseMate(s string) (sv.Coords, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 {
		return sv.Coords{}, fmt.Errorf("invalid mate location %q", s)
	}
	pos, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return sv.Coords{}, fmt.Errorf("invalid mate position %q", s[i+1:])
	}
	return sv.Coords{Chrom: s[:i], Position: pos}, nil
}

// symbolicOrientations gives the start and end orientation of symbolic
// alleles that describe both breakends in one record.
var symbolicOrientations = map[string][2]sv.Orientation{
	"DEL": {sv.Forward, sv.Reverse},
	"INS": {sv.Forward, sv.Reverse},
	"DUP": {sv.Reverse, sv.Forward},
	"INV": {sv.Forward, sv.Forward},
}
