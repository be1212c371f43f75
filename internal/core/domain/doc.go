// Package domain defines the core business entities for the store assistant.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Product: A catalog item with its aisle and shelf location
//   - Aisle: A named region of the store floor
//   - StoreLayout: Entrance, aisles and the walkable connections between them
//   - Reply: The assistant's answer to a single utterance
//   - RoutePlan: The ordered waypoints a shopper follows to reach products
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
