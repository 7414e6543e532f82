package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{
			name:   "valid E.164 format",
			input:  "+639171234567",
			region: "PH",
			want:   "+639171234567",
		},
		{
			name:   "national number in default region",
			input:  "0917 123 4567",
			region: "PH",
			want:   "+639171234567",
		},
		{
			name:   "mobile number sent without trunk prefix",
			input:  "9171234567",
			region: "PH",
			want:   "+639171234567",
		},
		{
			name:   "with parentheses and dashes",
			input:  "(212) 555-1234",
			region: "US",
			want:   "+12125551234",
		},
		{
			name:   "international number ignores default region",
			input:  "+1 212 555 1234",
			region: "PH",
			want:   "+12125551234",
		},
		{
			name:   "leading and trailing spaces",
			input:  "  +12125551234  ",
			region: "US",
			want:   "+12125551234",
		},
		{
			name:   "empty string",
			input:  "",
			region: "US",
			want:   "",
		},
		{
			name:   "only whitespace",
			input:  "   ",
			region: "US",
			want:   "",
		},
		{
			name:   "letters are left for validation to reject",
			input:  "call me maybe",
			region: "US",
			want:   "call me maybe",
		},
		{
			name:   "too short is left untouched",
			input:  "+1",
			region: "US",
			want:   "+1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input, tt.region)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
			if again := NormalizePhone(got, tt.region); again != got {
				t.Errorf("NormalizePhone is not idempotent: %q -> %q", got, again)
			}
		})
	}
}
