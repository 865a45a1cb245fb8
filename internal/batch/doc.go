// Package batch loads a directory of fixtures, runs every selected
// transform over each one, and writes the results.
//
// # Flow
//
//	LoadDir(dir) -> []fixture.Record -> Runner.Run -> <out>/<family>/<name>
//
// Files that cannot be read or parsed are reported as *LoadError and
// excluded; the remaining fixtures are still processed. A failure to write
// one output is logged and counted against that (fixture, family) pair only.
//
// # Determinism
//
// Output bytes are a pure function of the input file. Runner.Run may
// process fixtures concurrently (Options.Jobs), but every output path is
// unique, and Summary.Outputs is sorted, so reports are identical across
// runs. Digest gives each output a content address that the run ledger in
// internal/store records and the verify command checks.
package batch
