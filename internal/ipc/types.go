package ipc

import (
	"errors"
	"fmt"
	"strings"
)

// ServiceName is the net/rpc service the daemon registers.
const ServiceName = "Ascd"

// MaxProgramNameLen mirrors the daemon's fixed identifier field, less its terminator.
const MaxProgramNameLen = 255

// ErrMalformedResponse reports a reply that violates the protocol contract.
var ErrMalformedResponse = errors.New("malformed daemon response")

// Program identifies the learning data a query asks for.
type Program struct {
	Name      string `json:"name"`
	AnyRegime bool   `json:"any_regime"`
}

// Validate reports whether the program name fits the daemon's identifier field.
func (p Program) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("program name is empty")
	}
	if len(p.Name) > MaxProgramNameLen {
		return fmt.Errorf("program name is %d bytes, limit is %d", len(p.Name), MaxProgramNameLen)
	}
	if strings.IndexByte(p.Name, 0) >= 0 {
		return errors.New("program name contains a NUL byte")
	}
	return nil
}

// Regime describes the operating mode learning data was collected under.
type Regime struct {
	Dim uint64 `json:"dim"`
}

// LearningData is the daemon's cached artifact for a program.
type LearningData struct {
	Regime Regime `json:"regime"`
}

// QuitRequest asks the daemon to shut down.
type QuitRequest struct {
	SessionID string `json:"session_id"`
}

// QuitResponse acknowledges a quit request.
type QuitResponse struct {
	Acknowledged bool `json:"acknowledged"`
}

// QueryRequest looks up learning data for a program.
type QueryRequest struct {
	SessionID string  `json:"session_id"`
	Program   Program `json:"program"`
}

// QueryResponse carries the lookup result. Data is set only when Found is true.
type QueryResponse struct {
	Found bool          `json:"found"`
	Data  *LearningData `json:"data,omitempty"`
}

// DisconnectRequest announces that the client is closing its session.
type DisconnectRequest struct {
	SessionID string `json:"session_id"`
}

// DisconnectResponse acknowledges a disconnect.
type DisconnectResponse struct {
	Acknowledged bool `json:"acknowledged"`
}
