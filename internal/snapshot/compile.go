package snapshot

import (
	"fmt"
	"strings"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/query"
)

// ErrUnsupportedPredicate reports a predicate the SQL compiler cannot
// express. It wraps document.ErrUnsupportedOperation.
var ErrUnsupportedPredicate = fmt.Errorf("snapshot predicate: %w", document.ErrUnsupportedOperation)

// compiler turns a query.Predicate into a parameterized WHERE fragment over
// the records table.
//
// Every value is bound as a parameter; nothing from a filter is
// interpolated into the SQL text. Field paths become JSON path parameters.
type compiler struct {
	params []any
}

// compileFind builds the SELECT for records of collection matching p,
// ordered by insertion sequence.
func compileFind(collection string, p query.Predicate) (string, []any, error) {
	c := &compiler{params: []any{collection}}
	where, err := c.predicate(p)
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT doc FROM records WHERE collection = ? AND (" + where + ") ORDER BY seq ASC"
	return sql, c.params, nil
}

func (c *compiler) bind(v any) string {
	c.params = append(c.params, v)
	return "?"
}

func (c *compiler) predicate(p query.Predicate) (string, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil
	case query.Compare:
		return c.compare(pred)
	case *query.Compare:
		return c.compare(*pred)
	case query.In:
		return c.in(pred)
	case *query.In:
		return c.in(*pred)
	case query.Exists:
		return c.exists(pred)
	case *query.Exists:
		return c.exists(*pred)
	case query.Regex:
		return c.regex(pred)
	case *query.Regex:
		return c.regex(*pred)
	case query.And:
		return c.junction(pred.Predicates, " AND ", "1 = 1")
	case *query.And:
		return c.junction(pred.Predicates, " AND ", "1 = 1")
	case query.Or:
		return c.junction(pred.Predicates, " OR ", "1 = 0")
	case *query.Or:
		return c.junction(pred.Predicates, " OR ", "1 = 0")
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedPredicate, p)
	}
}

func (c *compiler) junction(preds []query.Predicate, sep, empty string) (string, error) {
	if len(preds) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		sql, err := c.predicate(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+sql+")")
	}
	return strings.Join(parts, sep), nil
}

// jsonPath converts a dotted field to a JSON path with quoted labels.
func jsonPath(field string) (string, error) {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range strings.Split(field, ".") {
		if seg == "" || strings.ContainsAny(seg, `"\`) {
			return "", fmt.Errorf("%w: field %q", ErrUnsupportedPredicate, field)
		}
		b.WriteString(`."`)
		b.WriteString(seg)
		b.WriteString(`"`)
	}
	return b.String(), nil
}

// candidate builds a condition that holds when the field's value, or any
// element when it is an array, satisfies cond. cond receives SQL
// expressions for the candidate's JSON type and value.
func (c *compiler) candidate(field string, cond func(typ, val string) (string, error)) (string, error) {
	path, err := jsonPath(field)
	if err != nil {
		return "", err
	}
	scalar, err := cond("json_type(records.doc, "+c.bind(path)+")", "json_extract(records.doc, "+c.bind(path)+")")
	if err != nil {
		return "", err
	}
	arrayType, each := c.bind(path), c.bind(path)
	elem, err := cond("j.type", "j.value")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"COALESCE((%s) OR (json_type(records.doc, %s) = 'array' AND EXISTS (SELECT 1 FROM json_each(records.doc, %s) AS j WHERE %s)), 0)",
		scalar, arrayType, each, elem,
	), nil
}

var sqlOps = map[query.Op]string{
	query.OpEq:  "=",
	query.OpNe:  "=",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

// valueCond compares a candidate against a literal of the same kind.
func (c *compiler) valueCond(op string, v document.Value) (func(typ, val string) (string, error), error) {
	switch val := v.(type) {
	case document.String:
		return func(typ, col string) (string, error) {
			return fmt.Sprintf("%s = 'text' AND %s %s %s", typ, col, op, c.bind(string(val))), nil
		}, nil
	case document.Int:
		return func(typ, col string) (string, error) {
			return fmt.Sprintf("%s IN ('integer', 'real') AND %s %s %s", typ, col, op, c.bind(int64(val))), nil
		}, nil
	case document.Float:
		return func(typ, col string) (string, error) {
			return fmt.Sprintf("%s IN ('integer', 'real') AND %s %s %s", typ, col, op, c.bind(float64(val))), nil
		}, nil
	case document.Bool:
		return func(typ, col string) (string, error) {
			return fmt.Sprintf("%s IN ('true', 'false') AND %s %s %s", typ, col, op, c.bind(bool(val))), nil
		}, nil
	case document.ObjectID:
		return wrapped(c, op, "$oid", val.Hex()), nil
	case document.Time:
		return wrapped(c, op, "$date", val.Std().UTC().Format(document.TimeLayout)), nil
	default:
		return nil, fmt.Errorf("%w: comparison with %s", ErrUnsupportedPredicate, document.KindOf(v))
	}
}

// wrapped compares the string inside a single-key extended JSON wrapper
// such as {"$oid": hex}. Both wrapper strings are fixed width, so text
// order is value order.
func wrapped(c *compiler, op, key, s string) func(typ, val string) (string, error) {
	return func(typ, col string) (string, error) {
		return fmt.Sprintf(`%s = 'object' AND json_extract(%s, '$."%s"') %s %s`, typ, col, key, op, c.bind(s)), nil
	}
}

func (c *compiler) compare(cmp query.Compare) (string, error) {
	op, ok := sqlOps[cmp.Op]
	if !ok {
		return "", fmt.Errorf("%w: operator %s", ErrUnsupportedPredicate, cmp.Op)
	}
	cond, err := c.valueCond(op, cmp.Value)
	if err != nil {
		return "", err
	}
	sql, err := c.candidate(cmp.Field, cond)
	if err != nil {
		return "", err
	}
	if cmp.Op == query.OpNe {
		return "NOT (" + sql + ")", nil
	}
	return sql, nil
}

func (c *compiler) in(in query.In) (string, error) {
	if len(in.Values) == 0 {
		if in.Negate {
			return "1 = 1", nil
		}
		return "1 = 0", nil
	}

	var sql string
	if in.Field == document.IDField {
		marks := make([]string, len(in.Values))
		for i, v := range in.Values {
			marks[i] = c.bind(document.Key(v))
		}
		sql = "records.id IN (" + strings.Join(marks, ", ") + ")"
	} else {
		parts := make([]string, 0, len(in.Values))
		for _, v := range in.Values {
			cond, err := c.valueCond("=", v)
			if err != nil {
				return "", err
			}
			part, err := c.candidate(in.Field, cond)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+part+")")
		}
		sql = strings.Join(parts, " OR ")
	}

	if in.Negate {
		return "NOT (" + sql + ")", nil
	}
	return sql, nil
}

func (c *compiler) exists(e query.Exists) (string, error) {
	path, err := jsonPath(e.Field)
	if err != nil {
		return "", err
	}
	if e.Want {
		return "json_type(records.doc, " + c.bind(path) + ") IS NOT NULL", nil
	}
	return "json_type(records.doc, " + c.bind(path) + ") IS NULL", nil
}

// regex uses the regexp function registered on every connection.
func (c *compiler) regex(r query.Regex) (string, error) {
	pattern := r.Pattern.String()
	return c.candidate(r.Field, func(typ, col string) (string, error) {
		return fmt.Sprintf("%s = 'text' AND %s REGEXP %s", typ, col, c.bind(pattern)), nil
	})
}
