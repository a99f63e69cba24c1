// Package harness runs store conformance scenarios.
//
// A scenario starts a fresh store, loads seed data, runs a list of store
// operations and checks their outputs, then asserts on what the
// collections hold at the end.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	seed: true                  # load the development seed first
//	fixtures: [extra.yaml]      # relative to the scenario file
//	setup:
//	  meals:
//	    - { name: Oats, calories: 300 }
//	steps:
//	  - op: update_one
//	    collection: meals
//	    filter: { name: Oats }
//	    update: { $set: { calories: 320 } }
//	    expect:
//	      output: { matched: 1 }
//	  - op: find_one
//	    collection: meals
//	    filter: { _id: "not-an-id" }
//	    expect:
//	      error: not_found
//	assertions:
//	  - type: count
//	    collection: meals
//	    count: 1
//	  - type: exists
//	    collection: meals
//	    filter: { name: Oats }
//	    expect: { calories: 320 }
//
// Values may use extended JSON wrappers ({$oid: ...}, {$date: ...}).
//
// # Operations
//
// insert_one, insert_many, find_one, find (with sort, skip, limit), count,
// distinct, update_one (with upsert), delete_one and aggregate. Each step
// traces its output; a failed operation traces {"error": kind}.
//
// # Deterministic Testing
//
// The harness uses:
//   - Sequential ObjectIDs (testutil.SequentialIDGenerator)
//   - A clock advancing one second per reading (testutil.DeterministicClock)
//   - A fresh store per scenario
//
// This ensures identical traces across runs for golden file comparison.
package harness
