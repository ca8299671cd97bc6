// Package rules holds the predicates evaluated against filesystem entries
// and the priority-ordered rules built from them.
package rules

import (
	"fmt"
	"strings"
	"time"

	serr "dirsort/internal/errors"
	"dirsort/pkg/types"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
)

// ConditionKind tags the variant held by a Condition
type ConditionKind int

const (
	ConditionExtension ConditionKind = iota + 1
	ConditionSize
	ConditionAge
	ConditionName
)

func (k ConditionKind) String() string {
	switch k {
	case ConditionExtension:
		return "extension"
	case ConditionSize:
		return "size"
	case ConditionAge:
		return "age"
	case ConditionName:
		return "name"
	default:
		return "invalid"
	}
}

// SizeComparison is the direction of a size condition
type SizeComparison int

const (
	SizeGreaterThan SizeComparison = iota
	SizeLessThan
)

// AgeComparison is the direction of an age condition
type AgeComparison int

const (
	AgeOlderThan AgeComparison = iota
	AgeNewerThan
)

// Condition is a single boolean predicate over an entry's metadata.
// It is a closed set of variants selected by Kind; the zero value is not a
// valid condition and never matches.
type Condition struct {
	kind ConditionKind

	// ConditionExtension: lowercase with leading dot, "" for "no extension"
	extension string

	// ConditionSize
	sizeOp    SizeComparison
	sizeBytes uint64

	// ConditionAge
	ageOp AgeComparison
	age   time.Duration
	clock func() time.Time

	// ConditionName
	pattern string
	matcher glob.Glob
}

// NewExtensionCondition matches files whose extension equals ext, ignoring
// case. "pdf", ".pdf" and ".PDF" are equivalent; "" and "." match files
// without an extension.
func NewExtensionCondition(ext string) Condition {
	return Condition{kind: ConditionExtension, extension: NormalizeExtension(ext)}
}

// NewSizeCondition matches files strictly larger or smaller than bytes.
// Directories never match.
func NewSizeCondition(op SizeComparison, bytes uint64) Condition {
	return Condition{kind: ConditionSize, sizeOp: op, sizeBytes: bytes}
}

// NewAgeCondition matches entries whose age, measured when the condition is
// evaluated, is strictly above (older) or below (newer) d.
func NewAgeCondition(op AgeComparison, d time.Duration) Condition {
	return Condition{kind: ConditionAge, ageOp: op, age: d, clock: time.Now}
}

// NewNameCondition matches entries whose name matches a glob pattern
// such as "IMG_*" or "*.{jpg,png}".
func NewNameCondition(pattern string) (Condition, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return Condition{}, serr.Wrapf(err, "invalid name pattern %q", pattern)
	}
	return Condition{kind: ConditionName, pattern: pattern, matcher: g}, nil
}

// NormalizeExtension lowercases ext and prefixes it with a dot.
// The empty extension and "." both normalize to "".
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// WithClock returns a copy of c that reads the current time from now.
// Only age conditions consult the clock.
func (c Condition) WithClock(now func() time.Time) Condition {
	c.clock = now
	return c
}

// Kind returns the variant tag
func (c Condition) Kind() ConditionKind {
	return c.kind
}

// Valid reports whether c was built by one of the constructors
func (c Condition) Valid() bool {
	return c.kind >= ConditionExtension && c.kind <= ConditionName
}

// Evaluate reports whether item satisfies the condition
func (c Condition) Evaluate(item types.ItemMetadata) bool {
	switch c.kind {
	case ConditionExtension:
		if item.Kind != types.KindFile {
			return false
		}
		return strings.ToLower(item.Extension) == c.extension
	case ConditionSize:
		if item.Kind != types.KindFile {
			return false
		}
		switch c.sizeOp {
		case SizeGreaterThan:
			return item.Size > c.sizeBytes
		case SizeLessThan:
			return item.Size < c.sizeBytes
		}
		return false
	case ConditionAge:
		now := time.Now
		if c.clock != nil {
			now = c.clock
		}
		age := now().Sub(item.ModTime)
		switch c.ageOp {
		case AgeOlderThan:
			return age > c.age
		case AgeNewerThan:
			return age < c.age
		}
		return false
	case ConditionName:
		return c.matcher != nil && c.matcher.Match(item.Name)
	default:
		return false
	}
}

// Describe renders the condition for logs and listings
func (c Condition) Describe() string {
	switch c.kind {
	case ConditionExtension:
		if c.extension == "" {
			return "has no extension"
		}
		return fmt.Sprintf("extension equals '%s'", c.extension)
	case ConditionSize:
		op := "greater than"
		if c.sizeOp == SizeLessThan {
			op = "less than"
		}
		return fmt.Sprintf("size %s %s", op, humanize.IBytes(c.sizeBytes))
	case ConditionAge:
		op := "older than"
		if c.ageOp == AgeNewerThan {
			op = "newer than"
		}
		return fmt.Sprintf("age %s %s", op, describeDuration(c.age))
	case ConditionName:
		return fmt.Sprintf("name matches '%s'", c.pattern)
	default:
		return "invalid condition"
	}
}

func (c Condition) String() string {
	return c.Describe()
}

func describeDuration(d time.Duration) string {
	hours := int64(d / time.Hour)
	switch {
	case hours >= 24*365:
		return plural(hours/(24*365), "year")
	case hours >= 24*30:
		return plural(hours/(24*30), "month")
	case hours >= 24:
		return plural(hours/24, "day")
	default:
		return plural(hours, "hour")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
