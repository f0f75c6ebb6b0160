package model

// Action is the logical operation requested through the relay endpoint.
type Action string

const (
	ActionStatus Action = "status"
	ActionLogin  Action = "login"
	ActionProxy  Action = "proxy"
	ActionLogout Action = "logout"
)

// ParseAction validates the action query parameter.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionStatus, ActionLogin, ActionProxy, ActionLogout:
		return Action(s), true
	default:
		return "", false
	}
}

// ProxyRequest is the inbound relay contract consumed from the dashboard.
type ProxyRequest struct {
	Action     Action `json:"action"`
	SessionKey string `json:"sessionId"`
	Endpoint   string `json:"endpoint,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
}

// ProxyResponse is the normalized JSON envelope returned for every relay
// call. Data carries either normalized records or the raw upstream payload.
type ProxyResponse struct {
	Success     bool   `json:"success"`
	Data        any    `json:"data,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
	NeedsReauth bool   `json:"needsReauth,omitempty"`
	QueryType   Entity `json:"queryType,omitempty"`
	SessionKey  string `json:"sessionId,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// StatusResponse is the payload for the status action.
type StatusResponse struct {
	ProxyStatus    string `json:"proxyStatus"`
	GomanageStatus string `json:"gomanageStatus"`
	GomanageURL    string `json:"gomanageUrl"`
	ActiveSessions int    `json:"activeSessions"`
	Timestamp      string `json:"timestamp"`
}
