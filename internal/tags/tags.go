package tags

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Tag name prefixes.
const (
	CompilePrefix    = "compile-"
	SubmissionPrefix = "submission-"
)

// TimestampLayout is the layout of the timestamp embedded in a compile tag.
const TimestampLayout = "2006.01.02_15.04.05"

// peeledSuffix marks the dereferenced entry of an annotated tag in ls-remote output.
const peeledSuffix = "^{}"

var (
	// ErrMalformedTag is wrapped by every MalformedTagError.
	ErrMalformedTag = errors.New("malformed tag")
	// ErrEmptyInput is returned when no compile tags were found.
	ErrEmptyInput = errors.New("no compile tags found")
)

// MalformedTagError reports a line that is neither a compile nor a submission tag,
// or a compile tag whose timestamp cannot be parsed.
type MalformedTagError struct {
	Line   string
	Reason string
}

func (e *MalformedTagError) Error() string {
	return fmt.Sprintf("%s: %q: %s", ErrMalformedTag, e.Line, e.Reason)
}

func (e *MalformedTagError) Unwrap() error { return ErrMalformedTag }

// Kind classifies a tag.
type Kind int

const (
	KindCompile Kind = iota
	KindSubmission
)

func (k Kind) String() string {
	switch k {
	case KindCompile:
		return "compile"
	case KindSubmission:
		return "submission"
	default:
		return "unknown"
	}
}

// Tag is a classified tag name. Time is set only for compile tags.
type Tag struct {
	Name string
	Kind Kind
	Time time.Time
}

// Parse classifies a single tag name.
func Parse(name string) (Tag, error) {
	switch {
	case strings.HasPrefix(name, CompilePrefix):
		raw := strings.TrimPrefix(name, CompilePrefix)
		ts, err := time.Parse(TimestampLayout, raw)
		// time.Parse tolerates unpadded hours and trailing fractional seconds.
		if err != nil || ts.Format(TimestampLayout) != raw {
			return Tag{}, &MalformedTagError{Line: name, Reason: "invalid compile timestamp"}
		}
		return Tag{Name: name, Kind: KindCompile, Time: ts}, nil
	case strings.HasPrefix(name, SubmissionPrefix):
		return Tag{Name: name, Kind: KindSubmission}, nil
	default:
		return Tag{}, &MalformedTagError{Line: name, Reason: "expected compile-* or submission-* tag"}
	}
}

// ParseLines reads one tag name per line and returns the compile timestamps
// sorted ascending. Blank lines are skipped. The first invalid line aborts.
func ParseLines(r io.Reader) ([]time.Time, error) {
	return collect(r, func(line string) (string, bool) { return line, true })
}

// ParseRemoteListing reads `git ls-remote --tags` output. The tag name is
// taken from the last path segment of each ref; peeled entries are skipped.
func ParseRemoteListing(r io.Reader) ([]time.Time, error) {
	return collect(r, RefTagName)
}

// RefTagName extracts the tag name from an ls-remote line such as
// "<sha>\trefs/tags/compile-2024.01.01_09.00.00". It reports false for
// peeled annotated-tag entries.
func RefTagName(line string) (string, bool) {
	ref := line
	if i := strings.LastIndexAny(ref, " \t"); i >= 0 {
		ref = ref[i+1:]
	}
	if strings.HasSuffix(ref, peeledSuffix) {
		return "", false
	}
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	return ref, true
}

func collect(r io.Reader, name func(string) (string, bool)) ([]time.Time, error) {
	var stamps []time.Time
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tagName, ok := name(line)
		if !ok {
			continue
		}
		tag, err := Parse(tagName)
		if err != nil {
			var mt *MalformedTagError
			if errors.As(err, &mt) {
				mt.Line = line
			}
			return nil, err
		}
		if tag.Kind == KindCompile {
			stamps = append(stamps, tag.Time)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	if len(stamps) == 0 {
		return nil, ErrEmptyInput
	}
	Sort(stamps)
	return stamps, nil
}

// Sort orders timestamps ascending in place.
func Sort(ts []time.Time) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
}
