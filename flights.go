// Package flights provides the core of the Gemini Flights backend: a
// synthetic flight inventory with seat-class booking, multi-criteria
// paginated search, and a tool-call dispatch layer that routes a language
// model's structured function calls to the engines.
//
// The root package holds the data model and the contracts shared by every
// component. Implementations live in subpackages:
//
//   - store/memstore, store/cosmos: [Store] implementations
//   - search: the search engine
//   - booking: the booking engine
//   - dispatch: the typed tool registry the conversation layer calls into
//   - tools: the flight tools registered with the dispatcher
//   - chat: a conversation session driving a model through tool rounds
//   - generator: synthetic flight generation
//
// Engines report expected outcomes (no such flight, not enough seats, zero
// search results) as structured results, not errors. Only genuine failures,
// such as the backing store being unreachable, surface as errors.
package flights
