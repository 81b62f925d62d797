package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tempbucket/tempbucket/pkg/policy"
	"github.com/tempbucket/tempbucket/pkg/rest/model"
	"github.com/tempbucket/tempbucket/pkg/server/web"
	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

const (
	errInvalidRequest = "InvalidRequest"
	errInternal       = "Internal"
)

// invalid marks a request body decoding failure as a validation error.
func invalid(err error) error {
	return fmt.Errorf("%w: %v", policy.ErrInvalid, err)
}

// errorResponse maps err to an HTTP status and response body.
func errorResponse(err error) (int, *model.ErrorV1) {
	body := &model.ErrorV1{Message: err.Error()}
	if errors.Is(err, policy.ErrInvalid) {
		body.Error = errInvalidRequest
		return http.StatusBadRequest, body
	}

	kind := tempmail.KindOf(err)
	body.Error = kind.String()
	switch kind {
	case tempmail.KindUpstreamUnavailable, tempmail.KindTokenMissing:
		return http.StatusServiceUnavailable, body
	case tempmail.KindGenerationFailed, tempmail.KindMalformedResponse:
		return http.StatusBadGateway, body
	case tempmail.KindNoContent, tempmail.KindEmptyContent:
		return http.StatusNotFound, body
	case tempmail.KindUpstreamError:
		status := tempmail.StatusOf(err)
		body.Status = status
		if status < 400 || status > 599 {
			return http.StatusBadGateway, body
		}
		return status, body
	}
	body.Error = errInternal
	return http.StatusInternalServerError, body
}

// renderError writes err as a JSON error response. The returned error is only non-nil when the
// response could not be written.
func renderError(w http.ResponseWriter, ctx *web.Context, err error) error {
	status, body := errorResponse(err)
	ev := ctx.Logger.Warn()
	if status >= 500 {
		ev = ctx.Logger.Error()
	}
	ev.Err(err).Int("status", status).Msg("Request failed")
	return web.RenderJSONStatus(w, status, body)
}
