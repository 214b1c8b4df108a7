package domain

import (
	"sort"
	"strings"
)

// ResourceKey is a template-scoped logical id.
type ResourceKey = string

// MetadataResourceType is the CDK bookkeeping resource. It never appears in a
// rendered report or a resource count.
const MetadataResourceType = "AWS::CDK::Metadata"

// ResourceRecord is one live resource of a deployed stack. A nil PhysicalID or
// DriftStatus means the value was not reported.
type ResourceRecord struct {
	LogicalID   ResourceKey
	Type        string
	PhysicalID  *string
	Properties  map[string]any
	DriftStatus *ResourceDriftStatus
}

func (r ResourceRecord) IsMetadata() bool {
	return r.Type == MetadataResourceType
}

func (r ResourceRecord) PhysicalIDOrEmpty() string {
	if r.PhysicalID == nil {
		return ""
	}
	return *r.PhysicalID
}

// NameHint returns the value of the first string property whose key ends in
// "Name", keys visited in ascending order. It returns "" when there is none.
func NameHint(props map[string]any) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		if strings.HasSuffix(k, "Name") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := props[k].(string); ok {
			return v
		}
	}
	return ""
}

// DisplayName resolves the name shown for a resource: the name hint, then the
// physical id, then "".
func DisplayName(props map[string]any, physicalID *string) string {
	if name := NameHint(props); name != "" {
		return name
	}
	if physicalID != nil {
		return *physicalID
	}
	return ""
}
