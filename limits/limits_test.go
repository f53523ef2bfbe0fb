package limits

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEndpointName(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		expectErr error
	}{
		{"empty", "", nil},
		{"short", "Piano", nil},
		{"exactly at limit", strings.Repeat("a", MaxEndpointNameLen-1), nil},
		{"one over limit", strings.Repeat("a", MaxEndpointNameLen), ErrTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEndpointName(tc.input)
			if tc.expectErr == nil {
				if err != nil {
					t.Errorf("ValidateEndpointName(%q) = %v, want nil", tc.input, err)
				}
				return
			}
			if !errors.Is(err, tc.expectErr) {
				t.Errorf("ValidateEndpointName(%q) = %v, want wrapping %v", tc.input, err, tc.expectErr)
			}
		})
	}
}

func TestValidateProductInstanceID(t *testing.T) {
	if err := ValidateProductInstanceID(""); err != nil {
		t.Errorf("expected nil for an empty product instance ID, got %v", err)
	}
	if err := ValidateProductInstanceID(strings.Repeat("a", MaxProductInstanceIDLen)); !errors.Is(err, ErrTooLong) {
		t.Errorf("expected ErrTooLong, got %v", err)
	}
	if err := ValidateProductInstanceID("abc123"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidateUMPCommandWords(t *testing.T) {
	if !ValidateUMPCommandWords(60, 4) {
		t.Errorf("60+4 should fit within %d", MaxUMPCommandWords)
	}
	if ValidateUMPCommandWords(62, 4) {
		t.Errorf("62+4 should overflow %d", MaxUMPCommandWords)
	}
	if !ValidateUMPCommandWords(0, MaxUMPCommandWords) {
		t.Errorf("a full-size command should exactly fit")
	}
}
