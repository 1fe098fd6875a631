// Pure keep/reject decision for a single posting against a rule set.
// No side effects, no persisted state; safe to call concurrently.

package filter

import (
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-jobapply-automation/internal/platform"
)

// Reject reasons, reported in run logs and counters.
const (
	ReasonBlacklistedCompany        = "blacklisted company"
	ReasonBlacklistedCompanyKeyword = "blacklisted company keyword"
	ReasonExcludedKeyword           = "excluded keyword"
	ReasonMissingRequiredKeyword    = "missing required keyword"
)

type Decision struct {
	Accept bool
	Reason string
}

// Rules is an immutable, pre-normalized rule set. Build it once per run
// with NewRules; the zero value accepts everything.
type Rules struct {
	mustInclude      mapset.Set[string]
	mustExclude      mapset.Set[string]
	companyBlacklist mapset.Set[string]
	companyKeywords  mapset.Set[string]
}

func NewRules(mustInclude, mustExclude, companyBlacklist, companyKeywords []string) Rules {
	return Rules{
		mustInclude:      normalizeSet(mustInclude),
		mustExclude:      normalizeSet(mustExclude),
		companyBlacklist: normalizeSet(companyBlacklist),
		companyKeywords:  normalizeSet(companyKeywords),
	}
}

// Decide applies the rules in fixed order, first match wins:
// company blacklist, company keyword blacklist, excluded keywords,
// required keywords. A rule set with all lists empty accepts everything.
func (r Rules) Decide(p platform.JobPosting) Decision {
	company := normalizeText(p.Company)
	text := normalizeText(p.Title + " " + p.Description)

	if r.companyBlacklist != nil && r.companyBlacklist.Contains(company) {
		return Decision{Reason: ReasonBlacklistedCompany}
	}

	if r.companyKeywords != nil {
		for _, kw := range r.companyKeywords.ToSlice() {
			if strings.Contains(company, kw) {
				return Decision{Reason: ReasonBlacklistedCompanyKeyword}
			}
		}
	}

	if r.mustExclude != nil {
		for _, kw := range r.mustExclude.ToSlice() {
			if strings.Contains(text, kw) {
				return Decision{Reason: ReasonExcludedKeyword}
			}
		}
	}

	if r.mustInclude != nil && r.mustInclude.Cardinality() > 0 {
		found := false
		for _, kw := range r.mustInclude.ToSlice() {
			if strings.Contains(text, kw) {
				found = true
				break
			}
		}
		if !found {
			return Decision{Reason: ReasonMissingRequiredKeyword}
		}
	}

	return Decision{Accept: true}
}

func normalizeSet(values []string) mapset.Set[string] {
	s := mapset.NewSet[string]()
	for _, v := range values {
		v = normalizeText(v)
		if v != "" {
			s.Add(v)
		}
	}
	return s
}

// normalizeText lowercases and strips diacritics so matching is
// case- and accent-insensitive.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(strings.TrimSpace(result))
}
