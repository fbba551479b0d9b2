// Package query holds the read side of DailyFocus: filtering, sorting,
// grouping and pagination over a task collection.
//
// Every function is pure. Inputs are never mutated; filters return a new
// slice that shares the task pointers with the input, and sorts work on a
// copy. All sorts are stable and fall back to the task id, so equal inputs
// always render in the same order.
//
// Time-based filters take the reference time explicitly. Calendar dates of
// timestamps (createdAt) are taken in the reference time's location.
package query
