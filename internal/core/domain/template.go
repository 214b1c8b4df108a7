package domain

// Template is the subset of a CloudFormation template the reporter reasons about.
type Template struct {
	Description string                           `mapstructure:"Description"`
	Resources   map[ResourceKey]TemplateResource `mapstructure:"Resources"`
}

type TemplateResource struct {
	Type                string         `mapstructure:"Type"`
	Properties          map[string]any `mapstructure:"Properties"`
	Metadata            map[string]any `mapstructure:"Metadata"`
	DeletionPolicy      string         `mapstructure:"DeletionPolicy"`
	UpdateReplacePolicy string         `mapstructure:"UpdateReplacePolicy"`
	Condition           string         `mapstructure:"Condition"`
	DependsOn           any            `mapstructure:"DependsOn"`
}

// Resource returns the declared resource for id, if any.
func (t *Template) Resource(id ResourceKey) (TemplateResource, bool) {
	if t == nil || t.Resources == nil {
		return TemplateResource{}, false
	}
	r, ok := t.Resources[id]
	return r, ok
}
