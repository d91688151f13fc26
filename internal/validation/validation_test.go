package validation

import "testing"

func TestIsValidCardNumber(t *testing.T) {
	valid := []string{"4111", "4111111111111111", "1234567890123456789"}
	for _, s := range valid {
		if !IsValidCardNumber(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []string{"", "411", "4111-1111", "abcd", "12345678901234567890"}
	for _, s := range invalid {
		if IsValidCardNumber(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	errs := Validate(
		Required("cc_number", ""),
		Required("category", "wire"),
		NonNegative("amount", -5),
	)

	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "cc_number" || errs[1].Field != "amount" {
		t.Errorf("unexpected error fields: %v", errs)
	}
}

func TestValidate_NoErrors(t *testing.T) {
	errs := Validate(
		Required("category", "grocery"),
		NonNegative("amount", 0),
		CardNumber("cc_number", "4111"),
	)
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestCoordinate_Bounds(t *testing.T) {
	lat := 91.0
	if err := Coordinate("latitude", &lat, -90, 90)(); err == nil {
		t.Error("expected out-of-range latitude to fail")
	}

	ok := 51.5
	if err := Coordinate("latitude", &ok, -90, 90)(); err != nil {
		t.Errorf("expected valid latitude to pass, got %v", err)
	}

	if err := Coordinate("latitude", nil, -90, 90)(); err != nil {
		t.Errorf("nil coordinate should pass, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  ", 100); got != "helloworld" {
		t.Errorf("unexpected sanitized value %q", got)
	}
	if got := SanitizeString("abcdef", 3); got != "abc" {
		t.Errorf("expected truncation, got %q", got)
	}
}
