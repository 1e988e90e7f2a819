// Package round is the state machine for scoring one round of play.
//
// A session moves Configuring → Scoring → Completed. Configuring covers the
// first round on a brand-new course, where each hole's par and distance are
// defined as it is played; both paths share the same hole loop and land in
// the same terminal state. Completed is final: the round and its scores
// freeze and become read-only inputs to the statistics engine.
//
// Every successful transition persists the full session snapshot through
// the record store, so an interrupted round resumes exactly where it
// stopped. Remote writes ride along through the operation outbox and can
// never block or fail a local transition.
//
// Error discipline: user input problems come back as ValidationErrors with
// every applicable field error collected; invalid transitions come back as
// StateError and indicate a bug in the caller, not bad input.
package round
