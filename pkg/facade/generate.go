package facade

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

// generateResponse is the upstream answer to a generation request; email is a list of addresses,
// though a bare string is accepted too.
type generateResponse struct {
	Email json.RawMessage `json:"email"`
}

// GenerateAddress requests a new disposable address of the given kind, tempmail.DefaultKind if
// kind is empty.
func (s *Service) GenerateAddress(ctx context.Context, kind string) (tempmail.EmailAddress, error) {
	const op = "generate"
	if kind == "" {
		kind = tempmail.DefaultKind
	}
	body, status, err := s.post(ctx, op, s.endpoints.Generate,
		map[string]interface{}{"email": []string{kind}})
	if err != nil {
		return "", err
	}
	addr, err := parseGenerated(body)
	if err != nil {
		return "", tempmail.NewError(tempmail.KindGenerationFailed, op, status, err)
	}
	logger(ctx, op).Debug().Str("kind", kind).Str("address", addr).Msg("Address generated")
	return tempmail.EmailAddress(addr), nil
}

func parseGenerated(body string) (string, error) {
	if isBlank(body) {
		return "", errors.New("empty body")
	}
	var resp generateResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", err
	}
	var list []string
	if err := json.Unmarshal(resp.Email, &list); err == nil {
		for _, addr := range list {
			if !isBlank(addr) {
				return addr, nil
			}
		}
		return "", errors.New("no address in response")
	}
	var single string
	if err := json.Unmarshal(resp.Email, &single); err == nil && !isBlank(single) {
		return single, nil
	}
	return "", errors.New("no address in response")
}
