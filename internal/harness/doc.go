// Package harness runs YAML scenarios against the transform pipeline.
//
// A scenario names one fixture, either inline or by file, and states what
// each family should do with it:
//
//	name: dgemv_row_major
//	description: row-major matrix gets its rows reversed
//	fixture_file: fixtures/dgemv.json
//	expect:
//	  - family: mixed_strides
//	    fields:
//	      A: [4, 5, 6, 1, 2, 3]
//	      strideA1: -3
//	  - family: large_strides
//	    fields:
//	      strideA1: 6
//	      strideA2: 2
//
// A fixture without an order field would instead expect:
//
//	  - family: mixed_strides
//	    declined: true
//
// An expectation is either declined (the family must write nothing), or
// checks the produced object against output (the whole document, key order
// included) and/or fields (a subset of top-level fields, order ignored).
//
// Every family runs for every scenario, so a scenario's golden snapshot
// covers the complete output set even when expect only names a few.
package harness
