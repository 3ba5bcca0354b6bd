// Package types classifies Go values for multiple dispatch.
//
// This package contains:
//   - Single-inheritance classes rooted at Object
//   - A registry of classes by name
//   - Generic slot-based instances
//   - Classification of arbitrary values into a primitive category and
//     an ordered chain of type names
package types
