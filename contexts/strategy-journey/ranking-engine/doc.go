// Package rankingengine implements participant ranking inside the
// strategy-journey context.
//
// The module owns the priority engine (ordering, slot assignment, drag
// gestures and the frozen terminal state), the draft cache of in-progress
// rankings, the transactional persistence writer, confessionals,
// achievements and the meeting dashboard. Completion events leave through the
// ranking outbox and are relayed by the worker.
package rankingengine
