package strategy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lox/aofsolver/internal/fileutil"
)

// ErrMalformed is returned for strategy files that cannot be parsed.
var ErrMalformed = errors.New("malformed strategy file")

const (
	infoSetPrefix  = "InfoSet: "
	visitsMarker   = " Visits: "
	strategyPrefix = "Strategy:"
)

// WriteText writes p in the human-readable block format, most visited
// info sets first.
func WriteText(w io.Writer, p *Profile) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# MCCFR Strategy File")
	fmt.Fprintf(bw, "# Generated with %d iterations\n", p.Iterations)
	fmt.Fprintf(bw, "# Total information sets: %d\n", p.Len())
	fmt.Fprintln(bw, "# Format: InfoSet: <infoset_string> Visits: <count>")
	fmt.Fprintln(bw, "#         Strategy: <prob1> <prob2> ...")
	fmt.Fprintln(bw)

	for _, e := range p.ByVisits(0) {
		fmt.Fprintf(bw, "%s%s%s%d\n", infoSetPrefix, e.Key, visitsMarker, e.Visits)
		bw.WriteString(strategyPrefix)
		for _, prob := range e.Probabilities {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(prob, 'f', 16, 64))
		}
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

// ReadText parses the block format. Comment lines start with '#', the
// visit count is optional and every InfoSet line must be followed directly
// by its Strategy line.
func ReadText(r io.Reader) (*Profile, error) {
	p := NewProfile(0)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if n, ok := parseIterationsComment(line); ok {
				p.Iterations = n
			}
			continue
		}
		if !strings.HasPrefix(line, strings.TrimSpace(infoSetPrefix)) {
			return nil, fmt.Errorf("%w: line %d: unexpected %q", ErrMalformed, lineNo, line)
		}

		key, visits, err := parseInfoSetLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
		}

		if !sc.Scan() {
			return nil, fmt.Errorf("%w: line %d: missing strategy for %q", ErrMalformed, lineNo, key)
		}
		lineNo++
		probs, err := parseStrategyLine(strings.TrimSpace(sc.Text()))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
		}
		p.Set(key, visits, probs)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func parseIterationsComment(line string) (int, bool) {
	var n int
	if _, err := fmt.Sscanf(line, "# Generated with %d iterations", &n); err != nil {
		return 0, false
	}
	return n, true
}

func parseInfoSetLine(line string) (string, int64, error) {
	rest := strings.TrimPrefix(line, strings.TrimSpace(infoSetPrefix))
	rest = strings.TrimSpace(rest)
	idx := strings.LastIndex(rest, visitsMarker)
	if idx < 0 {
		if rest == "" {
			return "", 0, errors.New("empty info set key")
		}
		return rest, 0, nil
	}
	key := strings.TrimSpace(rest[:idx])
	if key == "" {
		return "", 0, errors.New("empty info set key")
	}
	visits, err := strconv.ParseInt(strings.TrimSpace(rest[idx+len(visitsMarker):]), 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid visit count: %w", err)
	}
	return key, visits, nil
}

func parseStrategyLine(line string) ([]float64, error) {
	if !strings.HasPrefix(line, strategyPrefix) {
		return nil, fmt.Errorf("expected %q line, got %q", strategyPrefix, line)
	}
	fields := strings.Fields(strings.TrimPrefix(line, strategyPrefix))
	if len(fields) == 0 {
		return nil, errors.New("strategy has no probabilities")
	}
	probs := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid probability %q: %w", f, err)
		}
		probs[i] = v
	}
	return probs, nil
}

// SaveText writes p to path atomically.
func SaveText(path string, p *Profile) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteText(w, p)
	})
}

// LoadText reads a text strategy file.
func LoadText(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadText(f)
}
