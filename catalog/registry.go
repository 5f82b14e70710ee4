package catalog

// defaultCatalog holds the step kinds registered by init() in step packages
var defaultCatalog = New()

// RegisterStepKind adds a descriptor to the process-wide catalog
// This function is called by init() in step packages
func RegisterStepKind(d StepKindDescriptor) {
	defaultCatalog.Register(d)
}

// Default returns the process-wide catalog
func Default() *Catalog {
	return defaultCatalog
}
