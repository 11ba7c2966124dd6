package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/unit"
)

// Names of the merged coverage documents.
const (
	CombinedCoverageFile = "lcov-combined.info"
	CoverageSummaryFile  = "coverage-summary.json"
)

// sourceCoverage accumulates merged LCOV data for one source file.
// Line and function hits from multiple inputs are summed; the derived
// counters (LF/LH/FNF/FNH) are recomputed on output.
type sourceCoverage struct {
	path    string
	fnLines map[string]int // function name -> declaration line
	fnOrder []string
	fnHits  map[string]int // function name -> execution count
	daHits  map[int]int    // source line -> execution count
}

func newSourceCoverage(p string) *sourceCoverage {
	return &sourceCoverage{
		path:    p,
		fnLines: make(map[string]int),
		fnHits:  make(map[string]int),
		daHits:  make(map[int]int),
	}
}

type coverageTotals struct {
	Found int     `json:"found"`
	Hit   int     `json:"hit"`
	Pct   float64 `json:"pct"`
}

func (t *coverageTotals) add(found, hit int) {
	t.Found += found
	t.Hit += hit
}

// finalize computes the percentage, rounded to two decimals. A file
// set with no instrumentable lines counts as fully covered.
func (t *coverageTotals) finalize() {
	if t.Found == 0 {
		t.Pct = 100
		return
	}
	t.Pct = math.Round(float64(t.Hit)/float64(t.Found)*10000) / 100
}

type coverageSummary struct {
	Total coverageTotals            `json:"total"`
	Units map[string]coverageTotals `json:"units"`
}

func (a *Aggregator) aggregateCoverage(units []unit.Unit) (*Report, error) {
	rep := &Report{Kind: KindCoverage}

	merged := make(map[string]*sourceCoverage)
	var order []string
	summary := coverageSummary{Units: make(map[string]coverageTotals)}

	err := a.collect(units, a.cfg.Coverage, rep, func(u unit.Unit, data []byte) error {
		files, err := parseLcov(data)
		if err != nil {
			return errors.UnitError(u.Name, "aggregate-reports", fmt.Sprintf("failed to parse coverage: %v", err))
		}

		var unitTotals coverageTotals
		for _, f := range files {
			// Rebase relative source paths onto the unit directory so
			// identically named files from distinct units never collide.
			key := f.path
			if !path.IsAbs(key) {
				key = path.Join(u.Path, key)
			}

			target, ok := merged[key]
			if !ok {
				target = newSourceCoverage(key)
				merged[key] = target
				order = append(order, key)
			}
			for _, name := range f.fnOrder {
				if _, seen := target.fnLines[name]; !seen {
					target.fnLines[name] = f.fnLines[name]
					target.fnOrder = append(target.fnOrder, name)
				}
				target.fnHits[name] += f.fnHits[name]
			}
			for line, hits := range f.daHits {
				target.daHits[line] += hits
			}

			found, hit := f.lineCounts()
			unitTotals.add(found, hit)
		}

		unitTotals.finalize()
		summary.Units[u.Name] = unitTotals
		summary.Total.add(unitTotals.Found, unitTotals.Hit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	summary.Total.finalize()

	var buf bytes.Buffer
	for _, key := range order {
		merged[key].write(&buf)
	}
	lcovPath, err := a.writeOutput(CombinedCoverageFile, buf.Bytes())
	if err != nil {
		return nil, err
	}
	rep.Outputs = append(rep.Outputs, lcovPath)

	summaryData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode coverage summary")
	}
	summaryData = append(summaryData, '\n')
	summaryPath, err := a.writeOutput(CoverageSummaryFile, summaryData)
	if err != nil {
		return nil, err
	}
	rep.Outputs = append(rep.Outputs, summaryPath)

	return rep, nil
}

// parseLcov reads an LCOV tracefile into per-source records. Record
// types beyond FN/FNDA/DA and the derived counters are ignored; the
// derived counters themselves are recomputed on output rather than
// trusted from the input.
func parseLcov(data []byte) ([]*sourceCoverage, error) {
	var files []*sourceCoverage
	var cur *sourceCoverage

	for lineNo, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimRight(raw, "\r")
		if line == "" {
			continue
		}
		if line == "end_of_record" {
			cur = nil
			continue
		}

		directive, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: malformed record %q", lineNo+1, line)
		}

		if directive == "SF" {
			cur = newSourceCoverage(path.Clean(normalizeSourcePath(rest)))
			files = append(files, cur)
			continue
		}
		if cur == nil {
			// TN and other preamble records outside an SF block.
			continue
		}

		switch directive {
		case "FN":
			lineStr, name, ok := strings.Cut(rest, ",")
			if !ok {
				return nil, fmt.Errorf("line %d: malformed FN record %q", lineNo+1, line)
			}
			n, err := strconv.Atoi(lineStr)
			if err != nil {
				return nil, fmt.Errorf("line %d: malformed FN record %q", lineNo+1, line)
			}
			if _, seen := cur.fnLines[name]; !seen {
				cur.fnLines[name] = n
				cur.fnOrder = append(cur.fnOrder, name)
			}
		case "FNDA":
			hitsStr, name, ok := strings.Cut(rest, ",")
			if !ok {
				return nil, fmt.Errorf("line %d: malformed FNDA record %q", lineNo+1, line)
			}
			hits, err := strconv.Atoi(hitsStr)
			if err != nil {
				return nil, fmt.Errorf("line %d: malformed FNDA record %q", lineNo+1, line)
			}
			cur.fnHits[name] += hits
		case "DA":
			fields := strings.Split(rest, ",")
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: malformed DA record %q", lineNo+1, line)
			}
			n, err1 := strconv.Atoi(fields[0])
			hits, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("line %d: malformed DA record %q", lineNo+1, line)
			}
			cur.daHits[n] += hits
		}
	}
	return files, nil
}

// normalizeSourcePath converts Windows-style separators in SF records.
func normalizeSourcePath(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
}

func (s *sourceCoverage) lineCounts() (found, hit int) {
	found = len(s.daHits)
	for _, h := range s.daHits {
		if h > 0 {
			hit++
		}
	}
	return found, hit
}

// write emits one LCOV record block. DA lines are ordered by line
// number so merged output is deterministic.
func (s *sourceCoverage) write(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "SF:%s\n", s.path)

	for _, name := range s.fnOrder {
		fmt.Fprintf(buf, "FN:%d,%s\n", s.fnLines[name], name)
	}
	fnHit := 0
	for _, name := range s.fnOrder {
		hits := s.fnHits[name]
		if hits > 0 {
			fnHit++
		}
		fmt.Fprintf(buf, "FNDA:%d,%s\n", hits, name)
	}
	fmt.Fprintf(buf, "FNF:%d\n", len(s.fnOrder))
	fmt.Fprintf(buf, "FNH:%d\n", fnHit)

	lines := make([]int, 0, len(s.daHits))
	for n := range s.daHits {
		lines = append(lines, n)
	}
	sort.Ints(lines)
	for _, n := range lines {
		fmt.Fprintf(buf, "DA:%d,%d\n", n, s.daHits[n])
	}
	found, hit := s.lineCounts()
	fmt.Fprintf(buf, "LF:%d\n", found)
	fmt.Fprintf(buf, "LH:%d\n", hit)
	buf.WriteString("end_of_record\n")
}
