package tool

import (
	"regexp"
	"strings"
)

var (
	orderIDPattern  = regexp.MustCompile(`(?i)(?:order\s*(?:id)?\s*#?\s*|#|\bid\s*)(\d{1,10})\b`)
	bareIDPattern   = regexp.MustCompile(`^\s*(\d{1,10})\s*$`)
	returnIDPattern = regexp.MustCompile(`(?i)(?:return\s*(?:request)?\s*#?\s*|\brr\s*#?\s*|\brequest\s*#?\s*)(\d{1,10})\b`)

	nonPhoneChars = regexp.MustCompile(`[^\d+]`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// ExtractOrderID pulls an order id from free text ("order 101", "#101",
// "id 101") or from a bare numeric reply. Zero means no id was found.
func ExtractOrderID(text string) int64 {
	if text == "" {
		return 0
	}
	if m := orderIDPattern.FindStringSubmatch(text); m != nil {
		return parseID(m[1])
	}
	if m := bareIDPattern.FindStringSubmatch(text); m != nil {
		return parseID(m[1])
	}
	return 0
}

// HasBareID reports whether the message is nothing but a numeric id.
func HasBareID(text string) bool {
	return bareIDPattern.MatchString(text)
}

// ExtractReturnRequestID matches "return request 1", "request 1", "rr 1".
func ExtractReturnRequestID(text string) int64 {
	if text == "" {
		return 0
	}
	if m := returnIDPattern.FindStringSubmatch(text); m != nil {
		return parseID(m[1])
	}
	return 0
}

func parseID(raw string) int64 {
	var id int64
	for _, ch := range raw {
		id = id*10 + int64(ch-'0')
	}
	return id
}

// ExtractPhone accepts local 0XXXXXXXXX and international +XXXXXXXXXXX
// shapes with spaces or dashes, returning the cleaned number or "".
func ExtractPhone(text string) string {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return ""
	}

	cleaned := nonPhoneChars.ReplaceAllString(raw, "")
	digits := nonDigits.ReplaceAllString(cleaned, "")
	if len(digits) < 9 {
		return ""
	}

	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	if strings.HasPrefix(digits, "0") && len(digits) >= 10 {
		return digits
	}
	return digits
}

// LooksLikeName rejects phone numbers and command-like strings so a step
// reply like "buy now" or "#101" is never recorded as a customer name.
func LooksLikeName(text string) bool {
	t := strings.TrimSpace(text)
	if len(t) < 2 {
		return false
	}
	if ExtractPhone(t) != "" {
		return false
	}
	lower := strings.ToLower(t)
	for _, bad := range []string{"buy now", "buy", "purchase", "checkout", "order", "track", "ticket", "#"} {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}

// IsBuyNow reports whether the message is exactly the checkout trigger
// phrase, ignoring case and surrounding whitespace.
func IsBuyNow(text string) bool {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ") == "buy now"
}

/* --------------------------- Search tokenization -------------------------- */

var categoryAliases = map[string]string{
	"smartphone": "phone", "smartphones": "phone",
	"phone": "phone", "phones": "phone",
	"iphone": "phone", "iphones": "phone",
	"mobile": "phone", "mobiles": "phone",
	"television": "tv", "tvs": "tv", "tv": "tv",
	"fridge": "fridge", "fridges": "fridge", "refrigerator": "fridge",
}

var searchStopwords = map[string]struct{}{
	"i": {}, "want": {}, "to": {}, "buy": {}, "need": {}, "show": {}, "me": {},
	"please": {}, "do": {}, "you": {}, "have": {}, "in": {}, "stock": {},
	"available": {}, "now": {}, "looking": {}, "for": {}, "any": {},
	"options": {}, "a": {}, "an": {}, "the": {},
}

var knownBrands = []string{"samsung", "apple", "iphone", "lg", "sony", "asus", "dell", "hp", "lenovo"}

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// SearchTokens normalizes a product query: lowercase words with category
// aliases applied and filler words removed.
func SearchTokens(message string) []string {
	words := wordPattern.FindAllString(strings.ToLower(message), -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if alias, ok := categoryAliases[w]; ok {
			w = alias
		}
		if _, skip := searchStopwords[w]; skip {
			continue
		}
		out = append(out, w)
	}
	return out
}

// ExtractBrand finds a known brand mention; "iphone" normalizes to "apple".
func ExtractBrand(message string) string {
	lower := strings.ToLower(message)
	for _, b := range knownBrands {
		if strings.Contains(lower, b) {
			if b == "iphone" {
				return "apple"
			}
			return b
		}
	}
	return ""
}

// ExtractKeyword returns the longest useful token of the query.
func ExtractKeyword(message string) string {
	toks := SearchTokens(message)
	best := ""
	for _, t := range toks {
		if len(t) > len(best) {
			best = t
		}
	}
	return best
}
