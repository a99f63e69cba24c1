// Package document provides the value model for records held by the store.
//
// All other internal packages import document; document imports nothing
// internal. Records are schemaless: a record is an Object mapping field
// names to sealed Value variants, so the statically typed store can hold
// arbitrary documents without reflection.
//
// Key design constraints:
//   - Every record carries an identity under IDField ("_id")
//   - Identity strings are coerced to ObjectID at predicate boundaries via
//     CoerceIdentity, and nowhere else
//   - Compare defines the one total order used for sorting, range
//     predicates and $min/$max
//   - Key (canonical extended JSON) is the one grouping/dedup key
package document
