package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sweatz/internal/document"
)

// Eval evaluates e against record. A FieldRef to a missing field evaluates
// to nil; DateToString of a missing or null date evaluates to Null.
func Eval(e Expr, record document.Object) (document.Value, error) {
	switch expr := e.(type) {
	case Literal:
		return expr.Value, nil
	case FieldRef:
		v, ok := record.Get(expr.Path)
		if !ok {
			return nil, nil
		}
		return v, nil
	case DateToString:
		return evalDateToString(expr, record)
	case ObjectExpr:
		out := make(document.Object, len(expr.Fields))
		for k, sub := range expr.Fields {
			v, err := Eval(sub, record)
			if err != nil {
				return nil, err
			}
			if v != nil {
				out[k] = v
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expression %T", ErrUnsupportedOperation, e)
	}
}

func evalDateToString(expr DateToString, record document.Object) (document.Value, error) {
	v, err := Eval(expr.Date, record)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case nil, document.Null:
		return document.Null{}, nil
	case document.Time:
		return document.String(FormatDate(expr.Format, t)), nil
	case document.ObjectID:
		return document.String(FormatDate(expr.Format, document.NewTime(t.Timestamp()))), nil
	default:
		return nil, fmt.Errorf("%w: $dateToString: cannot format %s", ErrInvalidPipeline, document.KindOf(v))
	}
}

// FormatDate renders t with the $dateToString verbs %Y %m %d %H %M %S %L
// %j and %%. Times are rendered in UTC.
func FormatDate(format string, t document.Time) string {
	tt := t.Std().UTC()
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 == len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			b.WriteString(pad(tt.Year(), 4))
		case 'm':
			b.WriteString(pad(int(tt.Month()), 2))
		case 'd':
			b.WriteString(pad(tt.Day(), 2))
		case 'H':
			b.WriteString(pad(tt.Hour(), 2))
		case 'M':
			b.WriteString(pad(tt.Minute(), 2))
		case 'S':
			b.WriteString(pad(tt.Second(), 2))
		case 'L':
			b.WriteString(pad(tt.Nanosecond()/1_000_000, 3))
		case 'j':
			b.WriteString(pad(tt.YearDay(), 3))
		case '%':
			b.WriteByte('%')
		}
	}
	return b.String()
}

func checkDateFormat(format string) error {
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 == len(format) {
			return fmt.Errorf("%w: $dateToString format ends with %%", ErrInvalidPipeline)
		}
		i++
		if !strings.ContainsRune("YmdHMSLj%", rune(format[i])) {
			return fmt.Errorf("%w: $dateToString verb %%%c", ErrUnsupportedOperation, format[i])
		}
	}
	return nil
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
