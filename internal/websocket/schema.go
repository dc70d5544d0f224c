package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionState   Action = "state"
	ActionAnswer  Action = "answer"
	ActionBack    Action = "back"
	ActionResults Action = "results"
	ActionPing    Action = "ping"
)

// Request is one client message. Choice is only read for ActionAnswer.
type Request struct {
	Action Action `json:"action"`
	Choice string `json:"choice,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventStep    Event = "step"
	EventResults Event = "results"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// StepResponse carries the step to render.
type StepResponse struct {
	Event Event `json:"event"`
	Step  any   `json:"step"`
}

// ResultsResponse carries the scored and recorded assessment.
type ResultsResponse struct {
	Event   Event `json:"event"`
	Results any   `json:"results"`
}

// ErrorResponse reports a failed action. Step is set when the client should
// re-prompt.
type ErrorResponse struct {
	Event   Event  `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Step    any    `json:"step,omitempty"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
