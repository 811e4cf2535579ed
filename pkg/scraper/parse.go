package scraper

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	slugPattern      = regexp.MustCompile(`[^a-z0-9]+`)
	reportAgePattern = regexp.MustCompile(`(?i)\d+\s*(hours?|days?|minutes?)\s*ago$`)
	titleSuffixes    = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s*Snow Report.*`),
		regexp.MustCompile(`(?i)\s*Ski Resort.*`),
	}
	snowfallPattern  = regexp.MustCompile(`(\d+)"`)
	baseDepthPattern = regexp.MustCompile(`^(\d+)(?:-\d+)?"`)
	openPctPattern   = regexp.MustCompile(`^(\d+)/(\d+)%`)
	openSimplePat    = regexp.MustCompile(`^(\d+)/(\d+)`)
)

// slugify converts a resort name to its URL-style slug.
func slugify(name string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// cleanResortName strips the "X hours ago" report-age suffix that the
// table layout appends to resort names.
func cleanResortName(text string) string {
	return strings.TrimSpace(reportAgePattern.ReplaceAllString(text, ""))
}

// cleanPageTitle strips trailing "Snow Report" / "Ski Resort" boilerplate
// from an individual page's h1.
func cleanPageTitle(title string) string {
	for _, p := range titleSuffixes {
		title = p.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}

// parseSnowfall extracts an inch count from text like `6"-` or `0"-`.
func parseSnowfall(text string) *int {
	m := snowfallPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// parseBaseDepth extracts the base depth from text like `19"Variable
// Conditions` or `16-30"Powder`, taking the low end of a range.
func parseBaseDepth(text string) *int {
	m := baseDepthPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// parseOpenCounts parses open/total counts from the concatenated format
// the report tables use: the percentage is glued directly onto the
// total, so "9/1476% Open" means 9 of 147 trails open (6%).
//
// The split between total and percentage is ambiguous, so each possible
// split is scored by how closely the implied percentage matches the
// computed one, with a penalty for implausibly large totals. Simple
// forms like "5/9-" parse directly.
func parseOpenCounts(text string) (open, total *int) {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" {
		return nil, nil
	}

	if m := openPctPattern.FindStringSubmatch(text); m != nil {
		openCount, _ := strconv.Atoi(m[1])
		combined := m[2]

		type candidate struct {
			total int
			score int
		}
		var candidates []candidate

		for _, pctLen := range []int{3, 2, 1} {
			if len(combined) <= pctLen {
				continue
			}
			totalCount, err := strconv.Atoi(combined[:len(combined)-pctLen])
			if err != nil {
				continue
			}
			pct, err := strconv.Atoi(combined[len(combined)-pctLen:])
			if err != nil {
				continue
			}
			if pct < 0 || pct > 100 || totalCount <= 0 || totalCount < openCount {
				continue
			}

			calculated := int(float64(openCount)/float64(totalCount)*100 + 0.5)
			diff := calculated - pct
			if diff < 0 {
				diff = -diff
			}

			// Most resorts have well under 400 trails; don't rule out
			// large totals, just deprioritize them.
			penalty := 0
			switch {
			case totalCount > 1000:
				penalty = 500
			case totalCount > 500:
				penalty = 100
			}

			candidates = append(candidates, candidate{total: totalCount, score: diff + penalty})
		}

		if len(candidates) > 0 {
			sort.SliceStable(candidates, func(i, j int) bool {
				return candidates[i].score < candidates[j].score
			})
			return &openCount, &candidates[0].total
		}

		if strings.HasSuffix(combined, "100") {
			totalCount, err := strconv.Atoi(combined[:len(combined)-3])
			if err == nil && totalCount == openCount {
				return &openCount, &totalCount
			}
		}
	}

	if m := openSimplePat.FindStringSubmatch(text); m != nil {
		openCount, _ := strconv.Atoi(m[1])
		totalCount, _ := strconv.Atoi(m[2])
		return &openCount, &totalCount
	}

	return nil, nil
}
