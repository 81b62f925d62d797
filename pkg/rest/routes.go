package rest

import (
	"github.com/gorilla/mux"

	"github.com/tempbucket/tempbucket/pkg/server/web"
)

// SetupRoutes populates the routes for the REST interface
func SetupRoutes(r *mux.Router) {
	// API v1
	r.Path("/v1/address").Handler(
		web.Handler(AddressCreateV1)).Name("AddressCreateV1").Methods("POST")
	r.Path("/v1/messages").Handler(
		web.Handler(MessageListV1)).Name("MessageListV1").Methods("POST")
	r.Path("/v1/message").Handler(
		web.Handler(MessageShowV1)).Name("MessageShowV1").Methods("POST")
	r.Path("/v1/mailbox/{address}").Handler(
		web.Handler(MailboxListV1)).Name("MailboxListV1").Methods("GET")
	r.Path("/v1/mailbox/{address}/{id}").Handler(
		web.Handler(MailboxShowV1)).Name("MailboxShowV1").Methods("GET")
}

// SetupStatusRoute registers the status handler on the root router.
func SetupStatusRoute(r *mux.Router, path string) {
	r.Path(path).Handler(web.Handler(StatusV1)).Name("StatusV1").Methods("GET")
}
