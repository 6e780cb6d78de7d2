package models

import (
	"encoding/json"
	"fmt"
)

// RedactionSentinel is what clients see in place of a cast vote before reveal.
const RedactionSentinel = "•"

type VoteKind int

const (
	VoteUnset VoteKind = iota
	VoteNumber
	VoteToken
)

// Vote is a participant's estimate. On the wire it is null, a JSON number, or
// a string token ("?", "break", ...). Only numeric votes carry magnitude and
// enter average computation.
type Vote struct {
	kind   VoteKind
	number float64
	token  string
}

func NumberVote(v float64) Vote {
	return Vote{kind: VoteNumber, number: v}
}

func TokenVote(s string) Vote {
	return Vote{kind: VoteToken, token: s}
}

func (v Vote) Kind() VoteKind { return v.kind }

// IsSet reports whether any vote has been cast, including numeric zero.
func (v Vote) IsSet() bool { return v.kind != VoteUnset }

// Numeric returns the vote's magnitude, false for unset and token votes.
func (v Vote) Numeric() (float64, bool) {
	if v.kind != VoteNumber {
		return 0, false
	}
	return v.number, true
}

func (v Vote) Token() (string, bool) {
	if v.kind != VoteToken {
		return "", false
	}
	return v.token, true
}

// Redacted returns the client-safe projection of a hidden vote: the sentinel
// token when a vote is cast, the unset vote otherwise.
func (v Vote) Redacted() Vote {
	if v.IsSet() {
		return TokenVote(RedactionSentinel)
	}
	return Vote{}
}

func (v Vote) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case VoteNumber:
		return json.Marshal(v.number)
	case VoteToken:
		return json.Marshal(v.token)
	default:
		return []byte("null"), nil
	}
}

func (v *Vote) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Vote{}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumberVote(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = TokenVote(s)
		return nil
	}
	return fmt.Errorf("vote must be null, a number, or a string, got %s", data)
}
