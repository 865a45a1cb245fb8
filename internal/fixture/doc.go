// Package fixture defines the in-memory model of a JSON test fixture.
//
// A fixture is a JSON object whose fields describe the inputs and expected
// outputs of an array-indexing routine: flat numeric sequences, stride and
// offset scalars, and opaque values that are carried through untouched.
//
// # Value Model
//
// Values are represented by the sealed Value interface. Only Null, Bool,
// Number, String, Array, and *Object implement it. Objects keep their keys
// in document order so that a fixture written back to disk lists its fields
// in the order they were read, with newly added fields appended at the end.
//
// # Shape Classification
//
// Classify sorts a value into one of three kinds:
//
//   - KindScalar: null, booleans, numbers, strings
//   - KindFlatNumeric: an array whose elements are all numbers (including [])
//   - KindOther: nested arrays, mixed arrays, objects
//
// Only KindFlatNumeric values are reshaped by the transforms in
// internal/transform.
//
// # Serialization
//
// Decode reads a fixture with github.com/go-json-experiment/json/jsontext so
// key order survives parsing. Encode writes the two-space indented layout the
// fixture corpus uses, with numbers formatted the way an ECMAScript runtime
// prints them. Encoding the same Value twice always yields identical bytes.
package fixture
