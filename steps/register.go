package steps

import "github.com/simon020286/go-flow/catalog"

// Presentation order of the built-in kinds
var builtin = []catalog.StepKindDescriptor{
	mapperStep,
	ruleFilterStep,
	expressionFilterStep,
	logStep,
	splitStep,
}

func init() {
	for _, d := range builtin {
		catalog.RegisterStepKind(d)
	}
}

// NewCatalog returns a fresh catalog holding only the built-in kinds
func NewCatalog() *catalog.Catalog {
	return catalog.New(builtin...)
}
