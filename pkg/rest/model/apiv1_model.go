package model

// AddressRequestV1 asks for a newly generated address.
type AddressRequestV1 struct {
	Kind string `json:"kind,omitempty"`
}

// AddressV1 is a generated address.
type AddressV1 struct {
	Address string `json:"address"`
}

// MessagesRequestV1 asks for the messages held by an address.
type MessagesRequestV1 struct {
	Address string `json:"address"`
}

// MessagesV1 lists message summaries exactly as the upstream returned them.
type MessagesV1 struct {
	Address  string                   `json:"address"`
	Messages []map[string]interface{} `json:"messages"`
}

// MessageRequestV1 asks for a single message.
type MessageRequestV1 struct {
	Address   string `json:"address"`
	MessageID string `json:"messageId"`
}

// MessageV1 is a normalized message.
type MessageV1 struct {
	ID          string `json:"id"`
	Sender      string `json:"sender"`
	Subject     string `json:"subject"`
	Timestamp   string `json:"timestamp"`
	CleanedText string `json:"cleanedText"`
	RawPayload  string `json:"rawPayload"`
}

// ErrorV1 is the body of every failed API request.
type ErrorV1 struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// StatusV1 describes the running service.
type StatusV1 struct {
	Version   string  `json:"version"`
	BuildDate string  `json:"buildDate"`
	Upstream  string  `json:"upstream"`
	Retry     RetryV1 `json:"retry"`
}

// RetryV1 is the handshake retry policy.
type RetryV1 struct {
	Attempts        int    `json:"attempts"`
	InitialInterval string `json:"initialInterval"`
	MaxInterval     string `json:"maxInterval"`
}
