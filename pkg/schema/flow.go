package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/registry"
	"github.com/go-playground/validator/v10"
)

// structValidate enforces the struct tags of the domain types.
var structValidate *validator.Validate

func init() {
	structValidate = validator.New()
	structValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = structValidate.RegisterValidation("blocktype", validateBlockType)
}

var builtinBlocks = registry.Default()

func validateBlockType(fl validator.FieldLevel) bool {
	_, ok := builtinBlocks.Lookup(domain.BlockType(fl.Field().String()))
	return ok
}

var nodeTypes = []string{
	string(domain.NodeTypeStart),
	string(domain.NodeTypeEnd),
	string(domain.NodeTypeSetup),
	string(domain.NodeTypeLecture),
	string(domain.NodeTypeCondition),
}

// FlowSchema is the expected shape of a persisted flow document.
var FlowSchema = Schema{
	"nodes": Slice(Object(Schema{
		"id":   String(),
		"type": OneOf(nodeTypes...),
		"position": Optional(Object(Schema{
			"x": Float(),
			"y": Float(),
		})),
		"data": Optional(Map(Any())),
	})),
	"edges": Slice(Object(Schema{
		"id":           String(),
		"source":       String(),
		"target":       String(),
		"sourceHandle": Optional(String()),
		"data": Optional(Object(Schema{
			"branchId":            Optional(String()),
			"branchLabel":         Optional(String()),
			"conditionExpression": Optional(String()),
			"isConditionBranch":   Optional(Bool()),
		})),
	})),
	"nodeBlocks": Optional(Map(Slice(Object(Schema{
		"id":   String(),
		"type": String(),
		"data": Optional(Map(Any())),
	})))),
	"viewport": Optional(Object(Schema{
		"x":    Float(),
		"y":    Float(),
		"zoom": Float(),
	})),
	"id":          Optional(String()),
	"name":        Optional(String()),
	"description": Optional(String()),
	"_version":    Optional(Int()),
}

// ParseFlow decodes and validates a persisted flow. On failure the returned
// error wraps domain.ErrInvalidDocument and, when the payload was decodable,
// an AggregateError listing every problem found.
func ParseFlow(data []byte) (domain.FlowFile, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.FlowFile{}, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	if raw == nil {
		return domain.FlowFile{}, fmt.Errorf("%w: document is empty", domain.ErrInvalidDocument)
	}

	if err := Validate(FlowSchema, raw); err != nil {
		return domain.FlowFile{}, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}

	var file domain.FlowFile
	if err := json.Unmarshal(data, &file); err != nil {
		return domain.FlowFile{}, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}

	var errs []error
	errs = append(errs, structErrors(file)...)
	errs = append(errs, referenceErrors(file)...)
	if len(errs) > 0 {
		return domain.FlowFile{}, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, &AggregateError{Errors: errs})
	}

	file = file.Clone()
	return file, nil
}

// ExportFlow builds the persisted representation of doc with freshly computed metadata.
func ExportFlow(doc domain.Document, info domain.FlowInfo, viewport domain.Viewport, now time.Time) (domain.FlowFile, error) {
	doc = doc.Clone()
	if viewport.Zoom == 0 {
		viewport.Zoom = 1
	}
	info.UpdatedAt = now
	if info.CreatedAt.IsZero() {
		info.CreatedAt = now
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return domain.FlowFile{}, fmt.Errorf("export flow: %w", err)
	}

	return domain.FlowFile{
		FlowInfo:   info,
		Version:    doc.Version,
		Viewport:   viewport,
		Nodes:      doc.Nodes,
		Edges:      doc.Edges,
		NodeBlocks: doc.NodeBlocks,
		Meta: domain.FlowMeta{
			DocumentSize: len(body),
			NodeCount:    len(doc.Nodes),
			TotalBlocks:  doc.TotalBlocks(),
			LastModified: now,
			Version:      domain.FlowFileVersion,
		},
	}, nil
}

func structErrors(file domain.FlowFile) []error {
	err := structValidate.Struct(file)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []error{err}
	}
	out := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		// Drop the root struct name from the namespace.
		key := fe.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		reason := "failed " + fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		out = append(out, fieldErr(key, reason, fe.Value()))
	}
	return out
}

func referenceErrors(file domain.FlowFile) []error {
	var errs []error
	ids := make(map[string]bool, len(file.Nodes))
	for i, n := range file.Nodes {
		if ids[n.ID] {
			errs = append(errs, fieldErr(fmt.Sprintf("nodes[%d].id", i), "duplicate node id", n.ID))
		}
		ids[n.ID] = true
	}
	for i, e := range file.Edges {
		if !ids[e.Source] {
			errs = append(errs, fieldErr(fmt.Sprintf("edges[%d].source", i), "unknown node", e.Source))
		}
		if !ids[e.Target] {
			errs = append(errs, fieldErr(fmt.Sprintf("edges[%d].target", i), "unknown node", e.Target))
		}
	}
	for _, nodeID := range sortedKeys(file.NodeBlocks) {
		if !ids[nodeID] {
			errs = append(errs, fieldErr("nodeBlocks."+nodeID, "unknown node", nodeID))
		}
	}
	return errs
}
