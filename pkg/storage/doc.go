// Package storage contains types and interfaces, so that different persistence layers can be implemented.
//
// Interfaces in this package must:
//   - return ErrNotFound if the method is looking for one exact item and it is not found
//   - return empty array for methods that can return multiple results and no result is found
//   - never hand out values that share mutable state with what is stored
package storage
