// Package sanitize holds pure transformations applied to untrusted form
// input before it is validated or persisted. Sanitizing is not validating:
// these functions strip characters that are unsafe for downstream HTML/SQL
// contexts, callers still validate the result (ozzo rules on the payloads).
package sanitize

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	// MaxNameLength caps single-value fields after sanitization.
	MaxNameLength = 100
	// MaxArrayLength caps list fields such as qualifications.
	MaxArrayLength = 10
)

var (
	tagLike      = regexp.MustCompile(`<[^>]*>`)
	nonNameChars = regexp.MustCompile(`[^\w\s'-]`)
	multiSpace   = regexp.MustCompile(`\s+`)
	anySpace     = regexp.MustCompile(`\s`)
	nonPhone     = regexp.MustCompile(`[^\d+]`)
)

// Email lower-cases, trims, and strips angle brackets, quotes, and all
// whitespace. It does not check the result is a well formed address.
func Email(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("<", "", ">", "", "'", "", `"`, "").Replace(s)
	return anySpace.ReplaceAllString(s, "")
}

// Name trims, drops tag-like runs, keeps only word characters, whitespace,
// hyphens and apostrophes, collapses runs of whitespace to a single space,
// and truncates to MaxNameLength runes.
func Name(s string) string {
	s = strings.TrimSpace(s)
	s = tagLike.ReplaceAllString(s, "")
	s = nonNameChars.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > MaxNameLength {
		s = string(runes[:MaxNameLength])
	}
	return s
}

// StringArray applies Name to every element, drops elements that sanitize
// to the empty string, and caps the result at MaxArrayLength entries.
func StringArray(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if len(out) == MaxArrayLength {
			break
		}
		if clean := Name(v); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// Phone normalizes a number to E.164 using the given default region. Input
// that does not parse to a valid number is reduced to digits and a leading
// plus so that no markup characters survive.
func Phone(s, region string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// Parse is lenient and will extract digits from almost anything, so
	// only trust results that are valid numbers
	if num, err := phonenumbers.Parse(s, region); err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164)
	}

	clean := nonPhone.ReplaceAllString(s, "")
	hasPlus := strings.HasPrefix(clean, "+")
	clean = strings.ReplaceAll(clean, "+", "")
	if hasPlus && clean != "" {
		clean = "+" + clean
	}
	return clean
}

// Enum trims an enum-like value (role, experience level). Membership in the
// closed set is the caller's validation concern.
func Enum(s string) string {
	return strings.TrimSpace(s)
}

// FieldKind selects the sanitizer used for a known form field.
type FieldKind int

const (
	// KindName is the default for unrecognized string fields.
	KindName FieldKind = iota
	KindEmail
	KindArray
	KindEnum
	KindPhone
	// KindPassthrough leaves the value untouched (dates, opaque values).
	KindPassthrough
)

// fieldKinds is the closed mapping from form field names to sanitizers.
// Dispatch happens through this table, never by inspecting key substrings
// at call time.
var fieldKinds = map[string]FieldKind{
	"email":            KindEmail,
	"first_name":       KindName,
	"last_name":        KindName,
	"phone_number":     KindPhone,
	"qualifications":   KindArray,
	"specializations":  KindArray,
	"user_role":        KindEnum,
	"role":             KindEnum,
	"experience_level": KindEnum,
	"date_of_birth":    KindPassthrough,
	// passwords are hashed, never rendered; mangling them would lock the
	// user out of characters the hash would happily accept
	"password": KindPassthrough,
}

// defaultPhoneRegion applies when a phone field arrives in national format.
const defaultPhoneRegion = "US"

// KindFor reports the sanitizer kind registered for a field name.
func KindFor(field string) FieldKind {
	if kind, ok := fieldKinds[strings.ToLower(field)]; ok {
		return kind
	}
	return KindName
}

// FormData sanitizes every value of a decoded form payload. The output key
// set mirrors the input exactly: values are transformed in place, nothing is
// added or removed. Nil values and non-string scalars pass through
// unchanged.
func FormData(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}

	out := make(map[string]any, len(record))
	for key, val := range record {
		out[key] = sanitizeValue(KindFor(key), val)
	}
	return out
}

func sanitizeValue(kind FieldKind, val any) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case string:
		switch kind {
		case KindEmail:
			return Email(v)
		case KindEnum:
			return Enum(v)
		case KindPhone:
			return Phone(v, defaultPhoneRegion)
		case KindPassthrough:
			return v
		default:
			return Name(v)
		}
	case []string:
		return StringArray(v)
	case []any:
		return StringArray(stringsOf(v))
	default:
		return val
	}
}

// stringsOf keeps only the string members of a decoded JSON array. Mixed
// arrays lose their non-string members rather than raising.
func stringsOf(vals []any) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
