package errors

import "testing"

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "and-gate", false},
		{"placement", "and-gate-5f1c0a6e-8d2b-4f57-9c1e-0b7f3d1a2c44", false},
		{"dotted", "mesh.1", false},

		{"empty", "", true},
		{"space", "and gate", true},
		{"tab", "and\tgate", true},
		{"slash", "cards/and", true},
		{"backslash", `cards\and`, true},
		{"too long", string(make([]byte, 129)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateIdentifier(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/api/generate_encryption", false},
		{"http", "http://localhost:5000/api/generate_encryption", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidParams,
		ErrCodeInvalidVariant,
		ErrCodeInvalidFormat,
		ErrCodeNotFound,
		ErrCodeCardNotFound,
		ErrCodeStackBusy,
		ErrCodeStackEmpty,
		ErrCodeNetwork,
		ErrCodeRemoteStatus,
		ErrCodeInternal,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
