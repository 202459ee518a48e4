package lifecycle

// Stage is a step of the request state machine:
//
//	Received -> HooksRunning -> BodyValidating -> HandlerExecuting -> ResponseFiltering -> Sent
//
// Any of the first four may end in a failure instead (see StageError).
type Stage int

const (
	StageReceived Stage = iota
	StageHooksRunning
	StageBodyValidating
	StageHandlerExecuting
	StageResponseFiltering
	StageSent
)

var stageNames = [...]string{
	StageReceived:          "received",
	StageHooksRunning:      "hooks_running",
	StageBodyValidating:    "body_validating",
	StageHandlerExecuting:  "handler_executing",
	StageResponseFiltering: "response_filtering",
	StageSent:              "sent",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// StageError is a request that failed in Stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage.String() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
