// Package query provides the predicate representation of filter documents.
//
// A filter document such as
//
//	{"user_id": {"$oid": "..."}, "time": {"$gte": start, "$lte": end}}
//
// is parsed once into a Predicate tree (Compare, In, Exists, Regex, And, Or)
// which is then evaluated against each candidate record with Match. The
// same tree is consumed by the snapshot package, which compiles a subset of
// it to SQL.
//
// Supported operators: literal equality, $eq, $ne, $gt, $gte, $lt, $lte,
// $in, $nin, $exists, $regex with $options (i, m, s), and top-level $and and
// $or. Everything else fails with ErrUnsupportedOperation.
//
// Identity coercion happens here and only here: equality on "_id" with a
// 24-hex string argument matches both the string and the ObjectID.
package query
