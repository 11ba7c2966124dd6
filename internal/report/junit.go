package report

import (
	"encoding/xml"
	"fmt"

	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/unit"
)

// CombinedTestResultsFile is the name of the merged JUnit document.
const CombinedTestResultsFile = "junit-combined.xml"

// testSuites is a JUnit <testsuites> root. Counts are recomputed from
// the constituent suites when merging.
type testSuites struct {
	XMLName  xml.Name    `xml:"testsuites"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Errors   int         `xml:"errors,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Time     float64     `xml:"time,attr"`
	Suites   []testSuite `xml:"testsuite"`
}

// testSuite is one JUnit <testsuite>. Child elements are carried
// verbatim so test cases survive the merge untouched.
type testSuite struct {
	XMLName  xml.Name `xml:"testsuite"`
	Name     string   `xml:"name,attr"`
	Tests    int      `xml:"tests,attr"`
	Failures int      `xml:"failures,attr"`
	Errors   int      `xml:"errors,attr"`
	Skipped  int      `xml:"skipped,attr"`
	Time     float64  `xml:"time,attr"`
	Body     []byte   `xml:",innerxml"`
}

// parseTestResults accepts either a <testsuites> document or a bare
// <testsuite> root, both of which JUnit emitters produce.
func parseTestResults(data []byte) ([]testSuite, error) {
	var doc testSuites
	if err := xml.Unmarshal(data, &doc); err == nil {
		return doc.Suites, nil
	}

	var single testSuite
	if err := xml.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []testSuite{single}, nil
}

func (a *Aggregator) aggregateTestResults(units []unit.Unit) (*Report, error) {
	rep := &Report{Kind: KindTestResults}
	combined := testSuites{Suites: []testSuite{}}

	err := a.collect(units, a.cfg.TestResults, rep, func(u unit.Unit, data []byte) error {
		suites, err := parseTestResults(data)
		if err != nil {
			return errors.UnitError(u.Name, "aggregate-reports", fmt.Sprintf("failed to parse test results: %v", err))
		}
		for _, s := range suites {
			if s.Name == "" {
				s.Name = u.Name
			}
			combined.Suites = append(combined.Suites, s)
			combined.Tests += s.Tests
			combined.Failures += s.Failures
			combined.Errors += s.Errors
			combined.Skipped += s.Skipped
			combined.Time += s.Time
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := xml.MarshalIndent(combined, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode combined test results")
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	path, err := a.writeOutput(CombinedTestResultsFile, data)
	if err != nil {
		return nil, err
	}
	rep.Outputs = append(rep.Outputs, path)
	return rep, nil
}
