package middleware

// Context keys used to store request metadata.
const (
	ContextKeySubject   = "auth_subject"
	ContextKeyScope     = "auth_scope"
	ContextKeyRequestID = "request_id"
)
