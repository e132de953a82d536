package models

// ComponentDefinition describes the sizing rules of a component type.
// MinSize and MaxSize are optional.
type ComponentDefinition struct {
	Type        string `json:"type" yaml:"type"`
	Name        string `json:"name" yaml:"name"`
	DefaultSize Size   `json:"defaultSize" yaml:"default_size"`
	MinSize     *Size  `json:"minSize,omitempty" yaml:"min_size,omitempty"`
	MaxSize     *Size  `json:"maxSize,omitempty" yaml:"max_size,omitempty"`
}

// ComponentLibrary is the YAML document shape for component definitions.
type ComponentLibrary struct {
	Components []ComponentDefinition `json:"components" yaml:"components"`
}
