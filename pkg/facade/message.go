package facade

import (
	"context"

	"github.com/tempbucket/tempbucket/pkg/normalize"
	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

// FetchMessageDetail retrieves message id for address and normalizes its content.
func (s *Service) FetchMessageDetail(
	ctx context.Context, address tempmail.EmailAddress, id string) (*tempmail.MessageDetail, error) {
	const op = "message"
	body, status, err := s.post(ctx, op, s.endpoints.Message,
		map[string]interface{}{"email": address.String(), "messageID": id})
	if err != nil {
		return nil, err
	}
	if isBlank(body) {
		return nil, tempmail.NewError(tempmail.KindNoContent, op, status, nil)
	}
	detail, err := normalize.Normalize(body)
	if err != nil {
		return nil, err
	}
	logger(ctx, op).Debug().Str("address", address.String()).Str("id", id).Msg("Message fetched")
	return detail, nil
}
