package workflow

import "fmt"

// DefaultPlaceholder is the placeholder given to new input nodes.
const DefaultPlaceholder = "Enter your input..."

// DefaultData returns the configuration a freshly dropped node of type t starts with.
func DefaultData(t NodeType, label string) (NodeData, error) {
	base := Base{Label: label}

	switch t {
	case TypeInput:
		return InputData{Base: base, InputType: InputText, Placeholder: DefaultPlaceholder}, nil
	case TypeLLM:
		temperature := 0.7
		return LLMData{Base: base, Model: ModelClaude4Sonnet, Prompt: "", Temperature: &temperature}, nil
	case TypeTool:
		return ToolData{Base: base, ToolType: ToolWebSearch}, nil
	case TypeRouter:
		return RouterData{Base: base, Condition: "", TrueLabel: "Yes", FalseLabel: "No"}, nil
	case TypeLoop:
		maxIterations := 10
		return LoopData{Base: base, IteratorVariable: "item", MaxIterations: &maxIterations}, nil
	case TypeTransform:
		return TransformData{Base: base, TransformType: TransformJSONParse}, nil
	case TypeOutput:
		return OutputData{Base: base, OutputType: OutputDisplay}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
	}
}
