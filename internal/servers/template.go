package servers

import (
	"errors"
	"fmt"

	"custom-id-generator/internal/customid"
	"custom-id-generator/internal/pb"
)

var errBadRequest = errors.New("bad request")

func templateFromWire(elements []pb.TemplateElement) (customid.Template, error) {
	tmpl := make(customid.Template, 0, len(elements))
	for i, w := range elements {
		el, ok := customid.ParseKind(w.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: element %d: unknown kind %q", errBadRequest, i, w.Kind)
		}
		el.Order = w.Order
		el.Value = w.Value
		if w.Width != 0 {
			el.Width = w.Width
		}
		tmpl = append(tmpl, el)
	}
	return tmpl, nil
}
