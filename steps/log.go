package steps

import (
	"errors"
	"fmt"

	"github.com/simon020286/go-flow/catalog"
)

const KindLog = "log"

var ErrInvalidFlag = errors.New("flag must be true or false")

// LogConfig holds the properties of the log step
type LogConfig struct {
	ContextLoggingEnabled bool   `step:"name=contextLoggingEnabled,default=false,desc=Log the exchange context"`
	BodyLoggingEnabled    bool   `step:"name=bodyLoggingEnabled,default=false,desc=Log the message body"`
	CustomText            string `step:"name=customText,desc=Text written before the logged message"`
}

var logStep = catalog.StepKindDescriptor{
	StepKind:    KindLog,
	Name:        "Log",
	Description: "Sends a message to the integration's log",
	Properties:  catalog.PropertiesOf(LogConfig{}),
	Validate:    validateLog,
}

// configured properties are normalized, so flags arrive as "true"/"false"
func validateLog(props map[string]any) error {
	for _, key := range []string{"contextLoggingEnabled", "bodyLoggingEnabled"} {
		v, ok := props[key]
		if !ok {
			continue
		}
		switch v {
		case "true", "false", true, false:
		default:
			return fmt.Errorf("%w: %s=%v", ErrInvalidFlag, key, v)
		}
	}
	return nil
}
