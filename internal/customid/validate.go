package customid

import "sort"

// Validate checks a template and returns a copy sorted by Order. It never
// modifies its argument.
func Validate(tmpl Template) (Template, error) {
	if len(tmpl) == 0 {
		return nil, invalid(-1, "template is empty")
	}

	orders := make(map[int]int, len(tmpl))
	sequences := 0

	for i, el := range tmpl {
		if prev, ok := orders[el.Order]; ok {
			return nil, invalid(i, "order %d already used by element %d", el.Order, prev)
		}
		orders[el.Order] = i

		switch el.Kind {
		case KindLiteral:
			if el.Value == "" {
				return nil, invalid(i, "literal element has no value")
			}
		case KindRandomDigits:
			if el.Width < 1 || el.Width > maxDigitsWidth {
				return nil, invalid(i, "random digit width %d outside [1, %d]", el.Width, maxDigitsWidth)
			}
		case KindRandomBits:
			if el.Width < 1 || el.Width > maxBitsWidth {
				return nil, invalid(i, "random bit width %d outside [1, %d]", el.Width, maxBitsWidth)
			}
		case KindSequence:
			sequences++
			if sequences > 1 {
				return nil, invalid(i, "more than one sequence element")
			}
			if el.Width < 0 {
				return nil, invalid(i, "negative sequence width %d", el.Width)
			}
		case KindGUID, KindDatetime:
		default:
			return nil, invalid(i, "unknown element kind %q", el.Kind)
		}
	}

	sorted := make(Template, len(tmpl))
	copy(sorted, tmpl)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	return sorted, nil
}
