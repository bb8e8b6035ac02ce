package logx

const (
	FieldAppName         = "app-name"
	FieldAppVersion      = "app-version"
	FieldActor           = "actor"
	FieldAttempt         = "attempt"
	FieldBatch           = "batch"
	FieldDurationMs      = "duration-ms"
	FieldError           = "error"
	FieldHTTPMethod      = "http-method"
	FieldHTTPRequest     = "http-request"
	FieldHTTPResponse    = "http-response"
	FieldIP              = "ip"
	FieldOffers          = "offers"
	FieldPage            = "page"
	FieldPages           = "pages"
	FieldProxy           = "proxy"
	FieldRequestBody     = "request-body"
	FieldRequestID       = "request-id"
	FieldResponseBody    = "response-body"
	FieldResponseHeaders = "response-headers"
	FieldResponseStatus  = "response-status"
	FieldSide            = "side"
	FieldSource          = "source"
	FieldStack           = "stack"
	FieldTraceID         = "trace-id"
	FieldURL             = "url"
)
