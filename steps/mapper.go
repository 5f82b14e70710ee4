package steps

import (
	"encoding/json"
	"errors"

	"github.com/simon020286/go-flow/catalog"
)

const KindMapper = "mapper"

var ErrInvalidMapping = errors.New("mapping document is not valid JSON")

// MapperConfig holds the data mapper document
type MapperConfig struct {
	Mapping string `step:"name=atlasmapping,desc=Serialized field mapping document"`
}

// The mapper needs a typed source upstream and a typed target downstream
var mapperStep = catalog.StepKindDescriptor{
	StepKind:    KindMapper,
	Name:        "Data Mapper",
	Description: "Map fields from the input type to the output type",
	Properties:  catalog.PropertiesOf(MapperConfig{}),
	Custom:      true,
	Visible: catalog.All(
		catalog.RequiresUpstreamOutput,
		catalog.RequiresDownstreamInput,
	),
	Validate: validateMapper,
}

func validateMapper(props map[string]any) error {
	mapping, ok := props["atlasmapping"].(string)
	if !ok || mapping == "" {
		return nil
	}
	if !json.Valid([]byte(mapping)) {
		return ErrInvalidMapping
	}
	return nil
}
