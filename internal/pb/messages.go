package pb

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

type IssueRequest struct {
	UserID      string
	InventoryID string
}

func (r IssueRequest) Struct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"user_id":      structpb.NewStringValue(r.UserID),
		"inventory_id": structpb.NewStringValue(r.InventoryID),
	}}
}

func ParseIssueRequest(s *structpb.Struct) IssueRequest {
	f := s.GetFields()
	return IssueRequest{
		UserID:      f["user_id"].GetStringValue(),
		InventoryID: f["inventory_id"].GetStringValue(),
	}
}

type IssueReply struct {
	ID       string
	Sequence *int64
	Attempts int
}

func (r IssueReply) Struct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id":       structpb.NewStringValue(r.ID),
		"attempts": structpb.NewNumberValue(float64(r.Attempts)),
	}
	if r.Sequence != nil {
		fields["sequence"] = structpb.NewNumberValue(float64(*r.Sequence))
	}
	return &structpb.Struct{Fields: fields}
}

func ParseIssueReply(s *structpb.Struct) IssueReply {
	f := s.GetFields()
	reply := IssueReply{
		ID:       f["id"].GetStringValue(),
		Attempts: int(f["attempts"].GetNumberValue()),
	}
	if v, ok := f["sequence"]; ok {
		seq := int64(v.GetNumberValue())
		reply.Sequence = &seq
	}
	return reply
}

// TemplateElement is the wire form of one template slot. Kind accepts the
// canonical and the legacy element type names.
type TemplateElement struct {
	Kind  string
	Order int
	Value string
	Width int
}

type PreviewRequest struct {
	Template []TemplateElement
}

func (r PreviewRequest) Struct() *structpb.Struct {
	elements := make([]*structpb.Value, 0, len(r.Template))
	for _, el := range r.Template {
		elements = append(elements, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"kind":  structpb.NewStringValue(el.Kind),
			"order": structpb.NewNumberValue(float64(el.Order)),
			"value": structpb.NewStringValue(el.Value),
			"width": structpb.NewNumberValue(float64(el.Width)),
		}}))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"template": structpb.NewListValue(&structpb.ListValue{Values: elements}),
	}}
}

func ParsePreviewRequest(s *structpb.Struct) (PreviewRequest, error) {
	list := s.GetFields()["template"].GetListValue()
	if list == nil {
		return PreviewRequest{}, fmt.Errorf("template must be a list")
	}

	var req PreviewRequest
	for i, v := range list.GetValues() {
		el := v.GetStructValue()
		if el == nil {
			return PreviewRequest{}, fmt.Errorf("template element %d must be an object", i)
		}
		f := el.GetFields()
		req.Template = append(req.Template, TemplateElement{
			Kind:  f["kind"].GetStringValue(),
			Order: int(f["order"].GetNumberValue()),
			Value: f["value"].GetStringValue(),
			Width: int(f["width"].GetNumberValue()),
		})
	}
	return req, nil
}

type PreviewReply struct {
	ID string
}

func (r PreviewReply) Struct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id": structpb.NewStringValue(r.ID),
	}}
}

func ParsePreviewReply(s *structpb.Struct) PreviewReply {
	return PreviewReply{ID: s.GetFields()["id"].GetStringValue()}
}
