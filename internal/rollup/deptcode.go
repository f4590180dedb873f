// Package rollup turns flat per-department attendance counts into an ordered
// department hierarchy with subtotal and grand-total rows.
//
// A department code is eight characters made of four two-character
// segments: factory, division, department and sub-unit. A segment equal to
// "00" marks that the hierarchy stops above it.
package rollup

import (
	"strconv"
	"strings"
)

const (
	CodeWidth    = 8
	segmentWidth = 2
	emptySegment = "00"
)

type Level int

const (
	// LevelAll is used by grand-total rows that span every factory of a date.
	LevelAll        Level = 0
	LevelFactory    Level = 1
	LevelDivision   Level = 2
	LevelDepartment Level = 3
	LevelUnit       Level = 4
)

func (l Level) String() string {
	switch l {
	case LevelAll:
		return "all"
	case LevelFactory:
		return "factory"
	case LevelDivision:
		return "division"
	case LevelDepartment:
		return "department"
	case LevelUnit:
		return "unit"
	}
	return "level " + strconv.Itoa(int(l))
}

// NormalizeCode trims code and pads it on the right with '0' or truncates it
// to CodeWidth. The bool reports whether the input had the wrong length.
func NormalizeCode(code string) (string, bool) {
	c := strings.TrimSpace(code)

	switch {
	case len(c) == CodeWidth:
		return c, false
	case len(c) > CodeWidth:
		return c[:CodeWidth], true
	}

	return c + strings.Repeat("0", CodeWidth-len(c)), true
}

// LevelOf classifies code from the coarsest level down. Unrecognised shapes
// fall through to LevelUnit.
func LevelOf(code string) Level {
	c, _ := NormalizeCode(code)

	switch {
	case emptyFrom(c, 2):
		return LevelFactory
	case emptyFrom(c, 4):
		return LevelDivision
	case emptyFrom(c, 6):
		return LevelDepartment
	}

	return LevelUnit
}

// TruncateToLevel keeps the first level segments of code and blanks the rest.
func TruncateToLevel(code string, level Level) string {
	c, _ := NormalizeCode(code)

	if level >= LevelUnit {
		return c
	}
	if level < LevelFactory {
		level = LevelFactory
	}

	keep := int(level) * segmentWidth
	return c[:keep] + strings.Repeat("0", CodeWidth-keep)
}

// Segments splits a normalised code into its four segments.
func Segments(code string) [4]string {
	c, _ := NormalizeCode(code)

	var s [4]string
	for i := range s {
		s[i] = c[i*segmentWidth : (i+1)*segmentWidth]
	}
	return s
}

// WellFormed reports whether no blank segment below the factory precedes a
// non-blank one. Only for well formed codes does truncation to a level L
// yield a code of level L.
func WellFormed(code string) bool {
	s := Segments(code)

	blank := false
	for _, seg := range s[1:] {
		if seg == emptySegment {
			blank = true
			continue
		}
		if blank {
			return false
		}
	}
	return true
}

func emptyFrom(code string, from int) bool {
	for i := from; i < CodeWidth; i += segmentWidth {
		if code[i:i+segmentWidth] != emptySegment {
			return false
		}
	}
	return true
}
