package board

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	token := NewToken("sweet1", "42")

	decoded, err := DecodeToken(token.Encode())
	if err != nil {
		t.Fatalf("DecodeToken() error = %v", err)
	}
	if decoded != token {
		t.Errorf("DecodeToken() = %+v, want %+v", decoded, token)
	}
}

func TestDecodeToken_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "NotBase64", encoded: "!!!not base64!!!"},
		{name: "NotJSON", encoded: "bm90LWpzb24"},
		{name: "MissingQuest", encoded: Token{ClaimerID: "42"}.Encode()},
		{name: "MissingClaimer", encoded: Token{Quest: "sweet1"}.Encode()},
		{name: "Empty", encoded: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeToken(tt.encoded); err == nil {
				t.Errorf("DecodeToken(%q) succeeded, want error", tt.encoded)
			}
		})
	}
}
