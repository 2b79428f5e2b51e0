// Package booking models the patient booking wizard as an explicit state machine.
//
// The wizard walks ServiceSelection → ProgramSelection → Scheduling →
// PersonalDetails → Submitted. Each step owns a record of fields; leaving a step
// forward re-validates only that step's record, while stepping back never
// clears data. Validation reports per-field reasons instead of failing hard.
//
// Advance, Retreat and Validate are pure functions over State. Wizard wraps a
// State for callers that prefer a mutable object.
package booking
