package steps

import (
	"github.com/simon020286/go-flow/catalog"
)

const KindSplit = "split"

// SplitConfig holds the properties of the split step
type SplitConfig struct {
	Expression string `step:"name=expression,desc=Optional JavaScript expression returning the list to split, defaults to body"`
}

var splitStep = catalog.StepKindDescriptor{
	StepKind:    KindSplit,
	Name:        "Split",
	Description: "Split incoming data into multiple elements",
	Properties:  catalog.PropertiesOf(SplitConfig{}),
	Visible:     catalog.RequiresUpstreamOutput,
	Validate: func(props map[string]any) error {
		expr, _ := props["expression"].(string)
		if expr == "" {
			return nil
		}
		_, err := compileExpression(KindSplit, expr)
		return err
	},
}
