// Package policy validates caller supplied address kinds and email addresses before they are
// forwarded upstream.
package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid request")

// DefaultKinds are the address kinds the upstream generator understands.
var DefaultKinds = []string{"domain", "plusGmail", "dotGmail", "googleMail"}

// Addressing holds the address policy.
type Addressing struct {
	Kinds []string // Accepted generation kinds; DefaultKinds when empty.
}

// Kind returns the canonical spelling of kind, or tempmail.DefaultKind when kind is empty. Kinds
// are matched case-insensitively.
func (a *Addressing) Kind(kind string) (string, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return tempmail.DefaultKind, nil
	}
	kinds := a.Kinds
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}
	for _, k := range kinds {
		if strings.EqualFold(k, kind) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown address kind %q, want one of %s",
		ErrInvalid, kind, strings.Join(kinds, ", "))
}

// Address validates a full email address and returns it as a tempmail.EmailAddress.
func (a *Addressing) Address(address string) (tempmail.EmailAddress, error) {
	address = strings.TrimSpace(address)
	_, _, err := ParseEmailAddress(address)
	if err != nil {
		return "", fmt.Errorf("%w: address %q: %v", ErrInvalid, address, err)
	}
	return tempmail.EmailAddress(address), nil
}

// MessageID validates an upstream message id.
func (a *Addressing) MessageID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: message id cannot be empty", ErrInvalid)
	}
	if len(id) > 256 {
		return "", fmt.Errorf("%w: message id exceeds 256 characters", ErrInvalid)
	}
	if strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("%w: message id %q contains a path separator", ErrInvalid, id)
	}
	return id, nil
}

// ParseEmailAddress unescapes an email address, and splits the local part from the domain part.
// An error is returned if the local or domain parts fail validation following the guidelines
// in RFC3696.
func ParseEmailAddress(address string) (local string, domain string, err error) {
	local, domain, err = parseEmailAddress(address)
	if err != nil {
		return "", "", err
	}
	if !ValidateDomainPart(domain) {
		return "", "", errors.New("domain part validation failed")
	}
	return local, domain, nil
}

// ValidateDomainPart returns true if the domain part complies to RFC3696, RFC1035.
func ValidateDomainPart(domain string) bool {
	if len(domain) == 0 || len(domain) > 255 {
		return false
	}
	if domain[len(domain)-1] != '.' {
		domain += "."
	}
	prev := '.'
	labelLen := 0
	hasAlphaNum := false
	for _, c := range domain {
		switch {
		case ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') ||
			('0' <= c && c <= '9') || c == '_':
			// Must contain some of these to be a valid label.
			hasAlphaNum = true
			labelLen++
		case c == '-':
			if prev == '.' {
				// Cannot lead with hyphen.
				return false
			}
		case c == '.':
			if prev == '.' || prev == '-' {
				// Cannot end with hyphen or double-dot.
				return false
			}
			if labelLen > 63 || !hasAlphaNum {
				return false
			}
			labelLen = 0
			hasAlphaNum = false
		default:
			return false
		}
		prev = c
	}
	return true
}

// parseEmailAddress splits the local part from the domain part, unescaping quoted characters in
// the local part. The domain part is not validated.
func parseEmailAddress(address string) (local string, domain string, err error) {
	switch {
	case address == "":
		return "", "", errors.New("empty address")
	case len(address) > 320:
		return "", "", errors.New("address exceeds 320 characters")
	case address[0] == '@':
		return "", "", errors.New("address cannot start with @ symbol")
	case address[0] == '.':
		return "", "", errors.New("address cannot start with a period")
	}
	var buf strings.Builder
	prev := byte('.')
	inCharQuote := false
	inStringQuote := false
	found := false
LOOP:
	for i := 0; i < len(address); i++ {
		c := address[i]
		switch {
		case ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9'):
			buf.WriteByte(c)
			inCharQuote = false
		case strings.IndexByte("!#$%&'*+-/=?^_`{|}~", c) >= 0:
			// These specials can be used unquoted.
			buf.WriteByte(c)
			inCharQuote = false
		case c == '.':
			if prev == '.' {
				return "", "", errors.New("sequence of periods is not permitted")
			}
			buf.WriteByte(c)
			inCharQuote = false
		case c == '\\':
			inCharQuote = true
		case c == '"':
			switch {
			case inCharQuote:
				buf.WriteByte(c)
				inCharQuote = false
			case inStringQuote:
				inStringQuote = false
			case i == 0:
				inStringQuote = true
			default:
				return "", "", errors.New("quoted string can only begin at start of address")
			}
		case c == '@':
			if inCharQuote || inStringQuote {
				buf.WriteByte(c)
				inCharQuote = false
				break
			}
			// End of local-part.
			if i > 128 {
				return "", "", errors.New("local part must not exceed 128 characters")
			}
			if prev == '.' {
				return "", "", errors.New("local part cannot end with a period")
			}
			domain = address[i+1:]
			found = true
			break LOOP
		case c > 127:
			return "", "", errors.New("characters outside of US-ASCII range not permitted")
		default:
			if !inCharQuote && !inStringQuote {
				return "", "", fmt.Errorf("character %q must be quoted", c)
			}
			buf.WriteByte(c)
			inCharQuote = false
		}
		prev = c
	}
	if inCharQuote {
		return "", "", errors.New("cannot end address with unterminated quoted-pair")
	}
	if inStringQuote {
		return "", "", errors.New("cannot end address with unterminated string quote")
	}
	if !found {
		return "", "", errors.New("missing @ and domain part")
	}
	return buf.String(), domain, nil
}
