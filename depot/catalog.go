package depot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TypeTag is the discriminator written on every depot entry. Consumers of the
// depot file match on it, so it must not change.
const TypeTag = "pros.conductor.templates.base_template.BaseTemplate"

const indent = "    "

type Metadata struct {
	Location string `json:"location"`
}

// BaseTemplate is one depot entry. Metadata.Location is the download URL of
// the asset the entry was read from and is unique within a depot.
// SupportedKernels holds whatever the descriptor declared, usually a version
// constraint string such as "^3.8.0".
type BaseTemplate struct {
	Metadata         Metadata    `json:"metadata"`
	Name             string      `json:"name"`
	SupportedKernels interface{} `json:"supported_kernels"`
	Target           string      `json:"target"`
	Version          string      `json:"version"`
}

type baseTemplateJSON struct {
	Type             string      `json:"py/object"`
	Metadata         Metadata    `json:"metadata"`
	Name             string      `json:"name"`
	SupportedKernels interface{} `json:"supported_kernels"`
	Target           string      `json:"target"`
	Version          string      `json:"version"`
}

func (t BaseTemplate) MarshalJSON() ([]byte, error) {
	return json.Marshal(baseTemplateJSON{
		Type:             TypeTag,
		Metadata:         t.Metadata,
		Name:             t.Name,
		SupportedKernels: t.SupportedKernels,
		Target:           t.Target,
		Version:          t.Version,
	})
}

func (t *BaseTemplate) UnmarshalJSON(data []byte) error {
	var raw baseTemplateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != "" && raw.Type != TypeTag {
		return fmt.Errorf("unexpected depot entry type %q", raw.Type)
	}
	*t = BaseTemplate{
		Metadata:         raw.Metadata,
		Name:             raw.Name,
		SupportedKernels: raw.SupportedKernels,
		Target:           raw.Target,
		Version:          raw.Version,
	}
	return nil
}

// Depot is the ordered list of entries persisted on the target branch.
type Depot []BaseTemplate

func DecodeDepot(content string) (Depot, error) {
	if strings.TrimSpace(content) == "" {
		return Depot{}, nil
	}
	var d Depot
	if err := json.Unmarshal([]byte(content), &d); err != nil {
		return nil, fmt.Errorf("error decoding depot: %w", err)
	}
	if d == nil {
		d = Depot{}
	}
	return d, nil
}

func (d Depot) Encode() ([]byte, error) {
	if d == nil {
		d = Depot{}
	}
	data, err := json.MarshalIndent(d, "", indent)
	if err != nil {
		return nil, fmt.Errorf("error encoding depot: %w", err)
	}
	return append(data, '\n'), nil
}

// Index maps each entry's location to the entry.
func (d Depot) Index() map[string]BaseTemplate {
	index := make(map[string]BaseTemplate, len(d))
	for _, entry := range d {
		index[entry.Metadata.Location] = entry
	}
	return index
}

// Snapshot is a depot as it was last read from the target branch.
type Snapshot struct {
	Depot       Depot
	SHA         string
	LastUpdated time.Time
}
