// Package pipeline evaluates aggregation pipelines over in-memory records.
//
// Supported stages: $match, $group, $sort, $unwind, $limit, $skip, $count.
// $group keys and accumulator arguments are expressions: literals, "$field"
// references, {"$dateToString": {"format", "date"}} and objects composed of
// these. Accumulators: $sum, $avg, $min, $max, $first, $last, $push,
// $addToSet.
//
// Anything else fails with ErrUnsupportedOperation at parse time rather
// than being skipped.
package pipeline
