package validate

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/draftsmith/internal/model"
)

// academic and government suffixes that mark a primary source without configuration
var primarySuffixes = []string{".gov", ".mil", ".edu", ".ac.uk", ".ac.il", ".gov.il", ".gov.uk"}

// AuthorityClassifier classifies reference URLs into authority tiers
type AuthorityClassifier struct {
	domainMap    map[string]model.AuthorityTier
	domains      []domainRule
	pathPatterns []compiledPattern
}

type domainRule struct {
	domain string
	tier   model.AuthorityTier
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    model.AuthorityTier
}

// NewAuthorityClassifier creates a new authority classifier. Invalid path
// patterns are skipped.
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		def := model.DefaultConfig().Authority
		config = &def
	}

	classifier := &AuthorityClassifier{
		domainMap: make(map[string]model.AuthorityTier, len(config.DomainMap)),
	}

	for host, tier := range config.DomainMap {
		classifier.domainMap[strings.ToLower(host)] = parseTierString(tier)
	}

	for _, d := range config.PrimaryDomains {
		classifier.domains = append(classifier.domains, domainRule{strings.ToLower(d), model.TierPrimary})
	}
	for _, d := range config.SecondaryDomains {
		classifier.domains = append(classifier.domains, domainRule{strings.ToLower(d), model.TierSecondary})
	}
	// most specific domain wins: en.wikipedia.org before wikipedia.org
	sort.SliceStable(classifier.domains, func(i, j int) bool {
		return len(classifier.domains[i].domain) > len(classifier.domains[j].domain)
	})

	for _, p := range config.PathPatterns {
		if re, err := regexp.Compile(p.Pattern); err == nil {
			classifier.pathPatterns = append(classifier.pathPatterns, compiledPattern{
				pattern: re,
				tier:    parseTierString(p.Tier),
			})
		}
	}

	return classifier
}

// Classify classifies a URL into an authority tier
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.TierTertiary
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	if tier, ok := a.domainMap[host]; ok {
		return tier
	}

	for _, rule := range a.domains {
		if host == rule.domain || strings.HasSuffix(host, "."+rule.domain) {
			return rule.tier
		}
	}

	for _, cp := range a.pathPatterns {
		if cp.pattern.MatchString(parsed.Path) {
			return cp.tier
		}
	}

	for _, suffix := range primarySuffixes {
		if strings.HasSuffix(host, suffix) {
			return model.TierPrimary
		}
	}

	return model.TierTertiary
}

// parseTierString converts a tier string to AuthorityTier
func parseTierString(tier string) model.AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}
