package features

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"
)

// specialChars is the fixed character set counted by both
// SpacialCharRatioInURL and NoOfOtherSpecialCharsInURL.
const specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?/"

// commonURLChars are the characters URLCharProb treats as ordinary URL
// syntax (alphanumerics plus standard separators).
const commonURLChars = ":/.?=&-_"

// urlCharProbScale rescales the common-character ratio to the empirical
// training distribution of URLCharProb (mean ~0.055, std ~0.010). It is a
// calibration artifact, not a probability; revalidate against training
// data before changing it.
const urlCharProbScale = 0.06

// Extractor computes the deterministic URL feature digest. It holds only
// the read-only TLD prior table and is safe for concurrent use.
type Extractor struct {
	tlds *TLDTable
}

// NewExtractor creates an extractor over a TLD prior table. A nil table is
// treated as empty.
func NewExtractor(tlds *TLDTable) *Extractor {
	if tlds == nil {
		tlds = EmptyTLDTable()
	}
	return &Extractor{tlds: tlds}
}

// Extract maps a URL string to its feature digest. It never fails: a
// malformed or empty URL yields the neutral default digest. When
// includeHTTPS is false the IsHTTPS slot is left at zero so the digest
// matches the 7-feature model layout.
func (e *Extractor) Extract(rawURL string, includeHTTPS bool) FeatureDigest {
	if strings.TrimSpace(rawURL) == "" {
		return NeutralDigest()
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return NeutralDigest()
	}

	runes := []rune(rawURL)

	d := FeatureDigest{
		TLDLegitimateProb:          e.tlds.Prob(tldOf(parsed)),
		CharContinuationRate:       charContinuationRate(runes),
		SpacialCharRatioInURL:      specialCharRatio(runes),
		URLCharProb:                urlCharProb(runes),
		LetterRatioInURL:           letterRatio(runes),
		NoOfOtherSpecialCharsInURL: countSpecialChars(runes),
		DomainLength:               len(parsed.Host),
	}
	if includeHTTPS && parsed.Scheme == "https" {
		d.IsHTTPS = 1
	}
	return d
}

// tldOf resolves the public suffix of the URL's host, lowercased. Hosts
// without a host part yield "" and fall through to the neutral prior;
// unlisted suffixes fall through via the table lookup instead.
func tldOf(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	suffix, _ := publicsuffix.PublicSuffix(host)
	return suffix
}

// charContinuationRate is the share of adjacent equal-character pairs:
// "aaa" scores 1.0, "abc" scores 0.0. URLs shorter than two characters
// score 0.
func charContinuationRate(runes []rune) float64 {
	if len(runes) < 2 {
		return 0.0
	}
	pairs := 0
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] == runes[i+1] {
			pairs++
		}
	}
	return float64(pairs) / float64(len(runes)-1)
}

func specialCharRatio(runes []rune) float64 {
	if len(runes) == 0 {
		return 0.0
	}
	return float64(countSpecialChars(runes)) / float64(len(runes))
}

func countSpecialChars(runes []rune) int {
	count := 0
	for _, r := range runes {
		if strings.ContainsRune(specialChars, r) {
			count++
		}
	}
	return count
}

func letterRatio(runes []rune) float64 {
	if len(runes) == 0 {
		return 0.0
	}
	letters := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return float64(letters) / float64(len(runes))
}

func urlCharProb(runes []rune) float64 {
	if len(runes) == 0 {
		return 0.0
	}
	common := 0
	for _, r := range runes {
		if isAlnumASCII(r) || strings.ContainsRune(commonURLChars, r) {
			common++
		}
	}
	ratio := float64(common) / float64(len(runes))
	return ratio * urlCharProbScale
}

func isAlnumASCII(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
