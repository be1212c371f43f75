// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The fuzzy matcher and path planner are pure functions over catalog
// data; the catalog and assistant services own the only shared state,
// an immutable catalog snapshot.
package services
