package events

import "veledger/core/types"

const (
	// TypeGovPending is emitted when a new pending governor is proposed.
	TypeGovPending = "gov.pending"
	// TypeGovTransferred is emitted when the pending governor accepts.
	TypeGovTransferred = "gov.transferred"
	// TypeGovLocked marks the governance handoff machine as permanently closed.
	TypeGovLocked = "gov.locked"
)

// GovPending records a proposed governance handoff.
type GovPending struct {
	Current types.Address
	Pending types.Address
}

// EventType satisfies the Event interface.
func (GovPending) EventType() string { return TypeGovPending }

// Event converts the structured payload into a broadcastable event.
func (e GovPending) Event() *types.Event {
	return &types.Event{Type: TypeGovPending, Attributes: map[string]string{
		"current": e.Current.Hex(),
		"pending": e.Pending.Hex(),
	}}
}

// GovTransferred records a completed governance handoff.
type GovTransferred struct {
	OldGovernor types.Address
	NewGovernor types.Address
}

// EventType satisfies the Event interface.
func (GovTransferred) EventType() string { return TypeGovTransferred }

// Event converts the structured payload into a broadcastable event.
func (e GovTransferred) Event() *types.Event {
	return &types.Event{Type: TypeGovTransferred, Attributes: map[string]string{
		"oldGovernor": e.OldGovernor.Hex(),
		"newGovernor": e.NewGovernor.Hex(),
	}}
}

// GovLocked marks governance as permanently renounced.
type GovLocked struct{}

// EventType satisfies the Event interface.
func (GovLocked) EventType() string { return TypeGovLocked }

// Event converts the structured payload into a broadcastable event.
func (GovLocked) Event() *types.Event {
	return &types.Event{Type: TypeGovLocked, Attributes: map[string]string{}}
}
