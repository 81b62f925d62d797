package normalize

import (
	"encoding/json"

	"github.com/tempbucket/tempbucket/pkg/tempmail"
)

// Member names searched in a JSON envelope, in order of preference.
var (
	senderKeys    = []string{"from", "sender"}
	subjectKeys   = []string{"subject"}
	timestampKeys = []string{"time", "timestamp", "date"}
	contentKeys   = []string{"content", "body", "html", "text"}
	envelopeKeys  = []string{"data", "message"}
)

// fromJSON extracts fields from a JSON object. The caller has checked that s is a valid object.
func fromJSON(s string) *tempmail.MessageDetail {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		obj = nil
	}
	for _, key := range envelopeKeys {
		if inner, ok := obj[key].(map[string]interface{}); ok {
			obj = inner
			break
		}
	}

	detail := &tempmail.MessageDetail{
		Sender:    orDefault(lookupString(obj, senderKeys), tempmail.DefaultSender),
		Subject:   orDefault(lookupString(obj, subjectKeys), tempmail.DefaultSubject),
		Timestamp: orDefault(lookupString(obj, timestampKeys), tempmail.DefaultTimestamp),
	}
	if content := lookupString(obj, contentKeys); content != "" {
		detail.CleanedText = Text(content)
	} else {
		detail.CleanedText = Text(s)
	}
	return detail
}

// lookupString returns the first non-empty string member of obj named in keys.
func lookupString(obj map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if v, ok := obj[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
