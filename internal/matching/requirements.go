package matching

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/webteam-dev/webteam_be/internal/models"
)

// FeatureTag is a recognized feature category inferred from the free-form
// feature list a business typed during intake.
type FeatureTag string

const (
	FeatureInteractive FeatureTag = "interactive"
	FeaturePayments    FeatureTag = "payments"
	FeatureAuth        FeatureTag = "auth"
)

// Defaults for requirement fields the intake left empty.
const (
	DefaultPageCount     = 5
	DefaultBudgetCeiling = 5000
)

// Requirements is the interpreted view of a project that the scoring and
// offer logic consume. It is derived, never stored.
type Requirements struct {
	DesignComplexity string // simple | moderate | advanced
	Features         []string
	Tags             []FeatureTag
	PageCount        int
	BudgetCeiling    int64
}

// Interpreter turns a raw project into Requirements. The keyword heuristic is
// the default; swapping it out does not touch scoring or offer building.
type Interpreter interface {
	Interpret(p *models.Project) Requirements
}

// KeywordInterpreter is the naive substring heuristic: it keeps cost estimates
// inside the stated affordability band and flags feature categories, nothing
// more exact than that.
type KeywordInterpreter struct{}

func (KeywordInterpreter) Interpret(p *models.Project) Requirements {
	features := p.FeatureList()

	req := Requirements{
		DesignComplexity: normalizeComplexity(p.DesignComplexity),
		Features:         features,
		Tags:             detectTags(features),
		PageCount:        p.PageCount,
		BudgetCeiling:    ParseBudgetCeiling(p.BudgetRange),
	}
	if req.PageCount <= 0 {
		req.PageCount = DefaultPageCount
	}
	return req
}

func normalizeComplexity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "moderate":
		return "moderate"
	case "advanced":
		return "advanced"
	default:
		return "simple"
	}
}

func detectTags(features []string) []FeatureTag {
	var tags []FeatureTag
	seen := map[FeatureTag]bool{}

	add := func(t FeatureTag) {
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}

	for _, f := range features {
		low := strings.ToLower(f)
		if strings.Contains(low, "interactive") || strings.Contains(low, "modern") || strings.Contains(low, "animation") {
			add(FeatureInteractive)
		}
		if strings.Contains(low, "payment") || strings.Contains(low, "checkout") {
			add(FeaturePayments)
		}
		if strings.Contains(low, "login") || strings.Contains(low, "auth") {
			add(FeatureAuth)
		}
	}
	return tags
}

var budgetRangeRe = regexp.MustCompile(`(\d+)\s*[kK]?\s*(?:-|–|to)\s*(\d+)\s*([kK]?)`)

// ParseBudgetCeiling extracts the upper bound of a free-text budget range,
// e.g. "$3,000 - $5,000", "3k-5k" or "2 to 4k". Currency symbols and commas
// are stripped first; a "k" suffix or a sub-1000 upper bound scales by 1000.
// Input with no recognized range separator ("-", "–" or "to") falls back to
// DefaultBudgetCeiling.
func ParseBudgetCeiling(raw string) int64 {
	cleaned := strings.NewReplacer("$", "", ",", "", "€", "", "£", "", "Rp", "").Replace(raw)

	m := budgetRangeRe.FindStringSubmatch(cleaned)
	if m == nil {
		return DefaultBudgetCeiling
	}

	high, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || high <= 0 {
		return DefaultBudgetCeiling
	}

	if m[3] != "" || high < 1000 {
		high *= 1000
	}
	return high
}
