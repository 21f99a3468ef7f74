package flights

import "errors"

// Sentinel errors shared across the engines and the dispatcher.
// Use errors.Is to test for them; use sites wrap with fmt.Errorf("%w: ...").
var (
	// ErrFlightNotFound is returned by stores when no record exists for a
	// flight id.
	ErrFlightNotFound = errors.New("flight not found")

	// ErrInsufficientInventory signals a booking mutation that would take
	// an open seat count below zero. The booking engine translates it into
	// a failure outcome rather than letting it escape to callers.
	ErrInsufficientInventory = errors.New("insufficient seat inventory")

	// ErrInvalidCriteria is returned before any store query when search
	// criteria are malformed (e.g. end date before start date).
	ErrInvalidCriteria = errors.New("invalid search criteria")

	// ErrUnknownTool is returned by the dispatcher for tool calls naming
	// an unregistered tool. It is never silently ignored.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned by the dispatcher when a tool call's
	// arguments fail schema validation or cannot be decoded into the
	// tool's input type. The engines never see such calls.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrStoreUnavailable wraps failures of the backing store. It is fatal
	// for the current operation; no partial mutation is ever committed.
	ErrStoreUnavailable = errors.New("store unavailable")
)
