package facade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

// listEnvelope is the keyed form of a listing; the other accepted form is a bare array.
type listEnvelope struct {
	MessageData *[]tempmail.MessageSummary `json:"messageData"`
}

// ListMessages returns the messages currently held for address.
func (s *Service) ListMessages(
	ctx context.Context, address tempmail.EmailAddress) ([]tempmail.MessageSummary, error) {
	const op = "list"
	body, status, err := s.post(ctx, op, s.endpoints.List,
		map[string]interface{}{"email": address.String()})
	if err != nil {
		return nil, err
	}
	messages, err := parseListing([]byte(body))
	if err != nil {
		return nil, tempmail.NewError(tempmail.KindMalformedResponse, op, status, err)
	}
	logger(ctx, op).Debug().Str("address", address.String()).Int("count", len(messages)).
		Msg("Messages listed")
	return messages, nil
}

// parseListing accepts either {"messageData": [...]} or [...].
func parseListing(body []byte) ([]tempmail.MessageSummary, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}
	switch trimmed[0] {
	case '[':
		var messages []tempmail.MessageSummary
		if err := json.Unmarshal(trimmed, &messages); err != nil {
			return nil, err
		}
		return nonNil(messages), nil
	case '{':
		var env listEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		if env.MessageData == nil {
			return nil, errors.New("object without messageData")
		}
		return nonNil(*env.MessageData), nil
	}
	return nil, errors.New("neither an object nor an array")
}

func nonNil(m []tempmail.MessageSummary) []tempmail.MessageSummary {
	if m == nil {
		return []tempmail.MessageSummary{}
	}
	return m
}
