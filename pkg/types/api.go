package types

// ErrorKind classifies a failed call.
type ErrorKind string

const (
	KindMissingField  ErrorKind = "MissingField"
	KindInvalidShape  ErrorKind = "InvalidShape"
	KindLoadError     ErrorKind = "LoadError"
	KindUnknownHandle ErrorKind = "UnknownHandle"
	KindForwardError  ErrorKind = "ForwardError"
)

// ReplyStatus tells which member of a Reply is set.
type ReplyStatus string

const (
	ReplyOK             ReplyStatus = "ok"
	ReplyFailed         ReplyStatus = "error"
	ReplyNotImplemented ReplyStatus = "not_implemented"
)

// Reply is the envelope returned for every bridge call. Exactly one of Value
// (status ok) or Error (status error) is meaningful; not_implemented carries neither.
type Reply struct {
	// Outcome of the call.
	// example: ok
	Status ReplyStatus `json:"status" example:"ok"`
	// Result for successful calls: a handle for load, a list of tensors for
	// forward, null for destroy.
	Value any `json:"value"`
	// Failure details for status=error.
	Error *ReplyError `json:"error,omitempty"`
	// Unrecognized method name for status=not_implemented.
	// example: reset
	Method string `json:"method,omitempty" example:"reset"`
}

// ReplyError is the (kind, message) pair of a failed call.
type ReplyError struct {
	// example: UnknownHandle
	Kind ErrorKind `json:"kind" example:"UnknownHandle"`
	// example: unknown handle: 7
	Message string `json:"message" example:"unknown handle: 7"`
}

// CallRequest is the body of POST /call.
type CallRequest struct {
	// Method name: load, forward or destroy.
	// example: load
	Method string `json:"method" example:"load"`
	// Loosely typed argument bag for the method.
	Arguments map[string]any `json:"arguments"`
}

// ErrorResponse is a consistent JSON error payload for transport-level failures.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ModelsResponse wraps the catalog returned by GET /models.
type ModelsResponse struct {
	Models []ModelFile `json:"models"`
}

// ModulesResponse wraps the live modules returned by GET /modules.
type ModulesResponse struct {
	Modules []ModuleStatus `json:"modules"`
}

// ModuleStatus summarizes one live module for /status and GET /modules.
type ModuleStatus struct {
	// example: 3
	Handle Handle `json:"handle" example:"3"`
	// Path the module was loaded from.
	// example: /models/mobilenet_v2.onnx
	Path string `json:"path" example:"/models/mobilenet_v2.onnx"`
	// Load time (unix seconds).
	// example: 1700000000
	LoadedAt int64 `json:"loaded_at_unix" example:"1700000000"`
	// Completed forward calls.
	// example: 12
	Forwards uint64 `json:"forwards" example:"12"`
	// Forward calls currently running.
	// example: 1
	Inflight int64 `json:"inflight" example:"1"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Engine name.
	// example: onnx
	Engine string `json:"engine" example:"onnx"`
	// Live modules ordered by handle.
	Modules []ModuleStatus `json:"modules"`
	// Upper bound on live modules (0 = unlimited).
	// example: 0
	MaxModels int `json:"max_models" example:"0"`
	// example: 4
	LoadsTotal uint64 `json:"loads_total" example:"4"`
	// example: 1
	DestroysTotal uint64 `json:"destroys_total" example:"1"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Engine availability report.
	Sanity SanityReport `json:"sanity"`
}

// SanityReport describes whether the configured engine can run in this build.
type SanityReport struct {
	Engine    string `json:"engine"`
	Available bool   `json:"available"`
	Library   string `json:"library,omitempty"`
	Error     string `json:"error,omitempty"`
}
