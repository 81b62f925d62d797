package rest

import (
	"net/http"

	"github.com/tempbucket/tempbucket/pkg/config"
	"github.com/tempbucket/tempbucket/pkg/rest/model"
	"github.com/tempbucket/tempbucket/pkg/server/web"
	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

// AddressCreateV1 generates a new address of the requested kind.
func AddressCreateV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	var body model.AddressRequestV1
	if err := web.DecodeJSON(req, &body); err != nil {
		return renderError(w, ctx, invalid(err))
	}
	kind, err := ctx.Policy.Kind(body.Kind)
	if err != nil {
		return renderError(w, ctx, err)
	}
	addr, err := ctx.Service.GenerateAddress(ctx, kind)
	if err != nil {
		return renderError(w, ctx, err)
	}
	return web.RenderJSON(w, &model.AddressV1{Address: addr.String()})
}

// MessageListV1 lists the messages held by the address in the request body.
func MessageListV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	var body model.MessagesRequestV1
	if err := web.DecodeJSON(req, &body); err != nil {
		return renderError(w, ctx, invalid(err))
	}
	return listMessages(w, ctx, body.Address)
}

// MailboxListV1 lists the messages held by the address in the URL path.
func MailboxListV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	// Don't have to validate these aren't empty, Gorilla returns 404
	return listMessages(w, ctx, ctx.Vars["address"])
}

// MessageShowV1 renders the message named in the request body.
func MessageShowV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	var body model.MessageRequestV1
	if err := web.DecodeJSON(req, &body); err != nil {
		return renderError(w, ctx, invalid(err))
	}
	return showMessage(w, ctx, body.Address, body.MessageID)
}

// MailboxShowV1 renders the message named in the URL path.
func MailboxShowV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	return showMessage(w, ctx, ctx.Vars["address"], ctx.Vars["id"])
}

// StatusV1 reports version and upstream details.
func StatusV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	root := ctx.RootConfig
	return web.RenderJSON(w, &model.StatusV1{
		Version:   config.Version,
		BuildDate: config.BuildDate,
		Upstream:  root.Upstream.BaseURL,
		Retry: model.RetryV1{
			Attempts:        root.Retry.Attempts,
			InitialInterval: root.Retry.InitialInterval.String(),
			MaxInterval:     root.Retry.MaxInterval.String(),
		},
	})
}

func listMessages(w http.ResponseWriter, ctx *web.Context, address string) error {
	addr, err := ctx.Policy.Address(address)
	if err != nil {
		return renderError(w, ctx, err)
	}
	messages, err := ctx.Service.ListMessages(ctx, addr)
	if err != nil {
		return renderError(w, ctx, err)
	}
	jmessages := make([]map[string]interface{}, len(messages))
	for i, m := range messages {
		jmessages[i] = m
	}
	return web.RenderJSON(w, &model.MessagesV1{Address: addr.String(), Messages: jmessages})
}

func showMessage(w http.ResponseWriter, ctx *web.Context, address, id string) error {
	addr, err := ctx.Policy.Address(address)
	if err != nil {
		return renderError(w, ctx, err)
	}
	id, err = ctx.Policy.MessageID(id)
	if err != nil {
		return renderError(w, ctx, err)
	}
	msg, err := ctx.Service.FetchMessageDetail(ctx, addr, id)
	if err != nil {
		return renderError(w, ctx, err)
	}
	return web.RenderJSON(w, toMessageV1(id, msg))
}

func toMessageV1(id string, msg *tempmail.MessageDetail) *model.MessageV1 {
	return &model.MessageV1{
		ID:          id,
		Sender:      msg.Sender,
		Subject:     msg.Subject,
		Timestamp:   msg.Timestamp,
		CleanedText: msg.CleanedText,
		RawPayload:  msg.RawPayload,
	}
}
