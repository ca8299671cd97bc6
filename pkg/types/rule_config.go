package types

// Values accepted for RuleConfig.AppliesTo
const (
	AppliesToFile   = "file"
	AppliesToFolder = "folder"
	AppliesToAny    = "any"
)

// DefaultPriority is used for rules that do not declare one
const DefaultPriority = 1000

// RuleConfig is one rule as read from configuration, before its conditions
// are turned into predicates.
type RuleConfig struct {
	Target     string            `yaml:"target"`               // Path relative to the target root (e.g. "Documents/PDFs")
	Priority   int               `yaml:"priority"`             // Lower numbers are evaluated first
	AppliesTo  string            `yaml:"applies_to,omitempty"` // file, folder or any
	Conditions map[string]string `yaml:"conditions,omitempty"` // Condition key (e.g. "extension") to raw value
}
