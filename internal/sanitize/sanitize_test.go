package sanitize_test

import (
	"strings"
	"testing"

	"github.com/peakform/backend/internal/sanitize"
)

func TestEmailStripsUnsafeCharacters(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases and trims", "  Coach@Example.COM  ", "coach@example.com"},
		{"strips angle brackets", "<script>a@b.com</script>", "scripta@b.com/script"},
		{"strips quotes", `"it's"@b.com`, "its@b.com"},
		{"strips inner whitespace", "a @ b.com", "a@b.com"},
		{"strips tabs and newlines", "a@\tb.\ncom", "a@b.com"},
		{"empty input", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sanitize.Email(tc.input)
			if got != tc.want {
				t.Fatalf("Email(%q) = %q, want %q", tc.input, got, tc.want)
			}
			if strings.ContainsAny(got, "<>'\" \t\n") {
				t.Fatalf("Email(%q) left unsafe characters: %q", tc.input, got)
			}
			if got != strings.ToLower(got) {
				t.Fatalf("Email(%q) not lower-cased: %q", tc.input, got)
			}
		})
	}
}

func TestNameKeepsOnlySafeCharacters(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "Pepe Rone", "Pepe Rone"},
		{"strips tags", "Pepe <b>Rone</b>", "Pepe Rone"},
		{"keeps apostrophes and hyphens", "Mary-Jane O'Neil", "Mary-Jane O'Neil"},
		{"drops punctuation", "Pepe; DROP TABLE users;--", "Pepe DROP TABLE users--"},
		{"collapses whitespace", "Pepe \t  Rone", "Pepe Rone"},
		{"unclosed tag run removed", "Pepe <scr", "Pepe scr"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitize.Name(tc.input); got != tc.want {
				t.Fatalf("Name(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNameTruncatesToMaxLength(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 2*sanitize.MaxNameLength)
	got := sanitize.Name(long)
	if len([]rune(got)) != sanitize.MaxNameLength {
		t.Fatalf("expected %d runes, got %d", sanitize.MaxNameLength, len([]rune(got)))
	}
}

func TestStringArrayDropsEmptiesAndCaps(t *testing.T) {
	t.Parallel()

	input := []string{"  ", "<i></i>", "Strength Training", "Nutrition"}
	got := sanitize.StringArray(input)
	if len(got) != 2 {
		t.Fatalf("expected 2 surviving elements, got %d: %v", len(got), got)
	}
	if got[0] != "Strength Training" || got[1] != "Nutrition" {
		t.Fatalf("unexpected elements: %v", got)
	}

	many := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		many = append(many, "item")
	}
	if got := sanitize.StringArray(many); len(got) != sanitize.MaxArrayLength {
		t.Fatalf("expected cap of %d, got %d", sanitize.MaxArrayLength, len(got))
	}

	if got := sanitize.StringArray(nil); len(got) != 0 {
		t.Fatalf("expected empty output for nil input, got %v", got)
	}
}

func TestPhoneNormalizesToE164(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"national format", "(415) 555-2671", "+14155552671"},
		{"international format", "+44 20 7946 0958", "+442079460958"},
		{"unparseable keeps digits only", "call <me> maybe 12", "12"},
		{"too short keeps digits only", "12345", "12345"},
		{"empty", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitize.Phone(tc.input, "US"); got != tc.want {
				t.Fatalf("Phone(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFormDataRoutesByFieldKind(t *testing.T) {
	t.Parallel()

	record := map[string]any{
		"email":            "  Coach@Example.COM ",
		"first_name":       "Pepe <b>",
		"last_name":        nil,
		"role":             " coach ",
		"experience_level": " beginner ",
		"date_of_birth":    "1990-02-01T00:00:00Z",
		"qualifications":   []any{"NSCA <b>CSCS</b>", "", 42},
		"specializations":  []string{"Sprinting", "  "},
		"bio":              "loves <script>alert(1)</script> lifting!",
		"login_attempts":   3,
	}

	got := sanitize.FormData(record)

	if len(got) != len(record) {
		t.Fatalf("field set changed: %d keys in, %d out", len(record), len(got))
	}
	if got["email"] != "coach@example.com" {
		t.Fatalf("email = %#v", got["email"])
	}
	if got["first_name"] != "Pepe" {
		t.Fatalf("first_name = %#v", got["first_name"])
	}
	if got["last_name"] != nil {
		t.Fatalf("nil value should pass through, got %#v", got["last_name"])
	}
	if got["role"] != "coach" || got["experience_level"] != "beginner" {
		t.Fatalf("enum fields should only be trimmed: %#v %#v", got["role"], got["experience_level"])
	}
	if got["date_of_birth"] != "1990-02-01T00:00:00Z" {
		t.Fatalf("date_of_birth should pass through, got %#v", got["date_of_birth"])
	}
	if quals, ok := got["qualifications"].([]string); !ok || len(quals) != 1 || quals[0] != "NSCA CSCS" {
		t.Fatalf("qualifications = %#v", got["qualifications"])
	}
	if specs, ok := got["specializations"].([]string); !ok || len(specs) != 1 || specs[0] != "Sprinting" {
		t.Fatalf("specializations = %#v", got["specializations"])
	}
	if got["bio"] != "loves alert1 lifting" {
		t.Fatalf("unknown string fields default to name sanitization, got %#v", got["bio"])
	}
	if got["login_attempts"] != 3 {
		t.Fatalf("non-string values must pass through, got %#v", got["login_attempts"])
	}
}

func TestFormDataIsIdempotent(t *testing.T) {
	t.Parallel()

	record := map[string]any{
		"email":           " A 'B'<C>@d.COM ",
		"first_name":      "  <i>Zoé</i>  Du Pont ",
		"qualifications":  []any{" <b>CSCS</b> ", "x!", ""},
		"specializations": []string{"Row--ing", "  "},
	}

	once := sanitize.FormData(record)
	twice := sanitize.FormData(once)

	if once["email"] != twice["email"] {
		t.Fatalf("email not idempotent: %#v vs %#v", once["email"], twice["email"])
	}
	if once["first_name"] != twice["first_name"] {
		t.Fatalf("first_name not idempotent: %#v vs %#v", once["first_name"], twice["first_name"])
	}

	onceQ := once["qualifications"].([]string)
	twiceQ := twice["qualifications"].([]string)
	if len(onceQ) != len(twiceQ) {
		t.Fatalf("qualifications not idempotent: %v vs %v", onceQ, twiceQ)
	}
	for i := range onceQ {
		if onceQ[i] != twiceQ[i] {
			t.Fatalf("qualifications[%d] not idempotent: %q vs %q", i, onceQ[i], twiceQ[i])
		}
	}
}

func TestFormDataNilInput(t *testing.T) {
	t.Parallel()

	if got := sanitize.FormData(nil); got != nil {
		t.Fatalf("expected nil output for nil input, got %#v", got)
	}
}
