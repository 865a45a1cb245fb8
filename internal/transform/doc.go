// Package transform derives strided-array fixture families from a base
// fixture.
//
// Each Transformer is a pure function of a fixture.Record: it deep-copies
// the record's fields, reshapes the flat numeric sequences it recognizes,
// rewrites the matching stride and offset scalars, and returns the copy.
// Transformers never see each other's output, so the four families can be
// produced in any order or in parallel.
//
// # Families
//
//   - offsets: prepend Sentinel to every flat numeric sequence and force
//     every offset* field to 1.
//   - negative_strides: reverse every base sequence (and its _out
//     companion), set offset<Name> to len-1, negate every stride* number.
//   - large_strides: interleave Sentinel after every element of every base
//     sequence (and its _out companion), double every stride* number.
//   - mixed_strides: for fixtures with a row-major or column-major order,
//     reverse one axis of each 2-D sequence described by stride<K>1 and
//     stride<K>2, and rewrite the strides and offset<K> so that the new
//     addressing reproduces the original logical matrix.
//
// Fields that do not qualify are left untouched. Preconditions that are not
// met cause a field (or, for mixed strides, the whole fixture) to be skipped
// silently; transforms never return errors.
package transform
