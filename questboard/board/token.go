package board

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Token correlates a moderation decision back to the pending claim it
// resolves. It is embedded in the moderation surface (a button custom ID)
// and re-derived from the response, so no lookup table survives restarts.
// Validity is established against current state at resolution time, not by
// the token itself.
type Token struct {
	Quest     string `json:"q"`
	ClaimerID string `json:"c"`
	IssuedAt  int64  `json:"t"`
}

func NewToken(quest, claimerID string) Token {
	return Token{Quest: quest, ClaimerID: claimerID, IssuedAt: time.Now().Unix()}
}

// Encode renders the token URL-safe for embedding in component custom IDs.
func (t Token) Encode() string {
	raw, _ := json.Marshal(t)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func DecodeToken(s string) (Token, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Token{}, fmt.Errorf("malformed correlation token: %w", err)
	}
	var t Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return Token{}, fmt.Errorf("malformed correlation token: %w", err)
	}
	if t.Quest == "" || t.ClaimerID == "" {
		return Token{}, fmt.Errorf("incomplete correlation token")
	}
	return t, nil
}
