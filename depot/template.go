package depot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const templateSchemaURL = "https://ssotops.github.io/depot-sync/template.schema.json"

//go:embed schema/template.schema.json
var templateSchema []byte

// TemplateDescription is the descriptor shipped inside a template archive.
type TemplateDescription struct {
	Name             string                 `json:"name"`
	SupportedKernels interface{}            `json:"supported_kernels"`
	SystemFiles      []string               `json:"system_files"`
	Target           string                 `json:"target"`
	UserFiles        []string               `json:"user_files"`
	Version          string                 `json:"version"`
	Metadata         map[string]interface{} `json:"metadata"`
}

// ValidationError reports a descriptor that cannot be turned into a depot
// entry.
type ValidationError struct {
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid template descriptor: %s: %v", e.Reason, e.Cause)
	}
	return "invalid template descriptor: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

var compileTemplateSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(templateSchema))
	if err != nil {
		return nil, fmt.Errorf("error decoding template schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(templateSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("error adding template schema: %w", err)
	}
	return c.Compile(templateSchemaURL)
})

// ParseTemplateDescription validates raw against the descriptor schema and
// decodes it. Every failure is a *ValidationError.
func ParseTemplateDescription(raw []byte) (TemplateDescription, error) {
	schema, err := compileTemplateSchema()
	if err != nil {
		return TemplateDescription{}, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return TemplateDescription{}, &ValidationError{Reason: "not valid JSON", Cause: err}
	}
	if err := schema.Validate(inst); err != nil {
		return TemplateDescription{}, &ValidationError{Reason: "schema mismatch", Cause: err}
	}

	var desc TemplateDescription
	if err := json.Unmarshal(raw, &desc); err != nil {
		return TemplateDescription{}, &ValidationError{Reason: "decode failed", Cause: err}
	}
	return desc, nil
}

// ToBaseTemplate converts desc into a depot entry located at downloadURL.
// Any location the descriptor reports about itself is ignored.
func ToBaseTemplate(downloadURL string, desc TemplateDescription) BaseTemplate {
	return BaseTemplate{
		Metadata:         Metadata{Location: downloadURL},
		Name:             desc.Name,
		SupportedKernels: desc.SupportedKernels,
		Target:           desc.Target,
		Version:          desc.Version,
	}
}

// ConvertArchive reads the descriptor at descriptorPath out of a zip archive
// and converts it into a depot entry.
func ConvertArchive(downloadURL string, archive []byte, descriptorPath string) (BaseTemplate, error) {
	raw, err := ExtractDescriptor(archive, descriptorPath)
	if err != nil {
		return BaseTemplate{}, err
	}
	desc, err := ParseTemplateDescription(raw)
	if err != nil {
		return BaseTemplate{}, err
	}
	return ToBaseTemplate(downloadURL, desc), nil
}
