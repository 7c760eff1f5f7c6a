package workflow

import (
	"fmt"
	"maps"
	"slices"

	json "github.com/goccy/go-json"
)

// NodeData is the type-specific configuration carried by a node. It is a closed
// sum type: the only implementations are the seven *Data structs in this package,
// and callers narrow with a type switch before touching variant fields.
type NodeData interface {
	// Type returns the node type this data belongs to.
	Type() NodeType
	// Common returns the fields shared by every variant.
	Common() Base
	// Validate checks the variant's enumerations and ranges.
	Validate() error

	sealed()
}

// Base holds the fields every variant shares.
type Base struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

func (b Base) validate() error {
	if b.Label == "" {
		return fmt.Errorf("%w: label required", ErrInvalidData)
	}
	return nil
}

// InputType selects how an input node receives its value.
type InputType string

const (
	InputText    InputType = "text"
	InputFile    InputType = "file"
	InputWebhook InputType = "webhook"
)

// InputData configures an input node.
type InputData struct {
	Base
	InputType   InputType `json:"inputType"`
	Placeholder string    `json:"placeholder,omitempty"`
}

func (InputData) Type() NodeType { return TypeInput }
func (d InputData) Common() Base { return d.Base }
func (InputData) sealed()        {}

func (d InputData) Validate() error {
	if err := d.Base.validate(); err != nil {
		return err
	}
	return oneOf("inputType", d.InputType, InputText, InputFile, InputWebhook)
}

// Model names an LLM accepted by the engine.
type Model string

const (
	ModelClaude3Opus   Model = "claude-3-opus"
	ModelClaude3Sonnet Model = "claude-3-sonnet"
	ModelClaude3Haiku  Model = "claude-3-haiku"
	ModelClaude4Opus   Model = "claude-4-opus"
	ModelClaude4Sonnet Model = "claude-4-sonnet"
	ModelClaude4Haiku  Model = "claude-4-haiku"
)

// Models returns every accepted model name.
func Models() []Model {
	return []Model{
		ModelClaude3Opus, ModelClaude3Sonnet, ModelClaude3Haiku,
		ModelClaude4Opus, ModelClaude4Sonnet, ModelClaude4Haiku,
	}
}

// LLMData configures a language model call.
type LLMData struct {
	Base
	Model       Model    `json:"model"`
	Prompt      string   `json:"prompt"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
}

func (LLMData) Type() NodeType { return TypeLLM }
func (d LLMData) Common() Base { return d.Base }
func (LLMData) sealed()        {}

func (d LLMData) Validate() error {
	if err := d.Base.validate(); err != nil {
		return err
	}
	if err := oneOf("model", d.Model, Models()...); err != nil {
		return err
	}
	if d.Temperature != nil && (*d.Temperature < 0 || *d.Temperature > 1) {
		return fmt.Errorf("%w: temperature %v outside [0, 1]", ErrInvalidData, *d.Temperature)
	}
	if d.MaxTokens != nil && *d.MaxTokens < 1 {
		return fmt.Errorf("%w: maxTokens must be positive", ErrInvalidData)
	}
	return nil
}

// ToolType selects the tool a tool node invokes.
type ToolType string

const (
	ToolWebSearch    ToolType = "web-search"
	ToolCalculator   ToolType = "calculator"
	ToolCodeExecutor ToolType = "code-executor"
	ToolAPICall      ToolType = "api-call"
)

// ToolData configures a tool call.
type ToolData struct {
	Base
	ToolType ToolType       `json:"toolType"`
	Config   map[string]any `json:"config,omitempty"`
}

func (ToolData) Type() NodeType { return TypeTool }
func (d ToolData) Common() Base { return d.Base }
func (ToolData) sealed()        {}

func (d ToolData) Validate() error {
	if err := d.Base.validate(); err != nil {
		return err
	}
	return oneOf("toolType", d.ToolType, ToolWebSearch, ToolCalculator, ToolCodeExecutor, ToolAPICall)
}

// Router output handle names.
const (
	HandleTrue  = "true"
	HandleFalse = "false"
)

// RouterData configures a conditional branch. Routers expose the HandleTrue and
// HandleFalse source handles.
type RouterData struct {
	Base
	Condition  string `json:"condition"`
	TrueLabel  string `json:"trueLabel,omitempty"`
	FalseLabel string `json:"falseLabel,omitempty"`
}

func (RouterData) Type() NodeType { return TypeRouter }
func (d RouterData) Common() Base { return d.Base }
func (RouterData) sealed()        {}

func (d RouterData) Validate() error {
	return d.Base.validate()
}

// LoopData configures an iteration.
type LoopData struct {
	Base
	IteratorVariable string `json:"iteratorVariable"`
	MaxIterations    *int   `json:"maxIterations,omitempty"`
}

func (LoopData) Type() NodeType { return TypeLoop }
func (d LoopData) Common() Base { return d.Base }
func (LoopData) sealed()        {}

func (d LoopData) Validate() error {
	if err := d.Base.validate(); err != nil {
		return err
	}
	if d.MaxIterations != nil && *d.MaxIterations < 1 {
		return fmt.Errorf("%w: maxIterations must be positive", ErrInvalidData)
	}
	return nil
}

// TransformType selects the transformation a transform node applies.
type TransformType string

const (
	TransformJSONParse    TransformType = "json-parse"
	TransformExtractField TransformType = "extract-field"
	TransformFormatText   TransformType = "format-text"
	TransformFilter       TransformType = "filter"
)

// TransformData configures a data transformation.
type TransformData struct {
	Base
	TransformType TransformType  `json:"transformType"`
	Config        map[string]any `json:"config,omitempty"`
}

func (TransformData) Type() NodeType { return TypeTransform }
func (d TransformData) Common() Base { return d.Base }
func (TransformData) sealed()        {}

func (d TransformData) Validate() error {
	if err := d.Base.validate(); err != nil {
		return err
	}
	return oneOf("transformType", d.TransformType,
		TransformJSONParse, TransformExtractField, TransformFormatText, TransformFilter)
}

// OutputType selects where an output node delivers its result.
type OutputType string

const (
	OutputDisplay     OutputType = "display"
	OutputFile        OutputType = "file"
	OutputAPIResponse OutputType = "api-response"
)

// OutputData configures a workflow output.
type OutputData struct {
	Base
	OutputType OutputType `json:"outputType"`
	Format     string     `json:"format,omitempty"`
}

func (OutputData) Type() NodeType { return TypeOutput }
func (d OutputData) Common() Base { return d.Base }
func (OutputData) sealed()        {}

func (d OutputData) Validate() error {
	if err := d.Base.validate(); err != nil {
		return err
	}
	return oneOf("outputType", d.OutputType, OutputDisplay, OutputFile, OutputAPIResponse)
}

// DecodeData decodes raw JSON into the data variant selected by t.
// Empty input yields the zero value of the variant.
func DecodeData(t NodeType, raw []byte) (NodeData, error) {
	switch t {
	case TypeInput:
		return decodeVariant[InputData](raw)
	case TypeLLM:
		return decodeVariant[LLMData](raw)
	case TypeTool:
		return decodeVariant[ToolData](raw)
	case TypeRouter:
		return decodeVariant[RouterData](raw)
	case TypeLoop:
		return decodeVariant[LoopData](raw)
	case TypeTransform:
		return decodeVariant[TransformData](raw)
	case TypeOutput:
		return decodeVariant[OutputData](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
	}
}

func decodeVariant[T NodeData](raw []byte) (NodeData, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	return v, nil
}

// CloneData returns a copy of d that shares no mutable state with it.
func CloneData(d NodeData) NodeData {
	switch v := d.(type) {
	case ToolData:
		v.Config = maps.Clone(v.Config)
		return v
	case TransformData:
		v.Config = maps.Clone(v.Config)
		return v
	case LLMData:
		v.Temperature = clonePtr(v.Temperature)
		v.MaxTokens = clonePtr(v.MaxTokens)
		return v
	case LoopData:
		v.MaxIterations = clonePtr(v.MaxIterations)
		return v
	default:
		return d
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func oneOf[T ~string](field string, v T, allowed ...T) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return fmt.Errorf("%w: %s %q not one of %v", ErrInvalidData, field, v, allowed)
}
