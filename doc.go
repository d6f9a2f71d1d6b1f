// Package enumform provides encoding and decoding of form data into Go types,
// including tagged unions.
//
// This package handles application/x-www-form-urlencoded encoding with support
// for nested structures, slices, and maps. Decoding happens in two passes: the
// raw body is parsed into a [Tree] of strings, maps and slices, and the tree is
// then walked against the target type. Interfaces described by a [Union] are
// decoded by reading a discriminant field first and selecting the matching
// variant before decoding the remaining fields.
//
// The urlencoded sub-package exposes the decoder as a net/http data guard.
package enumform
