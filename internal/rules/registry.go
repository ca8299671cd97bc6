package rules

import (
	"sort"
	"strings"
	"time"

	serr "dirsort/internal/errors"
	"dirsort/internal/log"
	"dirsort/pkg/types"
)

// Condition keys understood by the default registry
const (
	KeyExtension       = "EXTENSION"
	KeySizeGreaterThan = "SIZE_GREATER_THAN"
	KeySizeLessThan    = "SIZE_LESS_THAN"
	KeyAgeOlderThan    = "AGE_OLDER_THAN"
	KeyAgeNewerThan    = "AGE_NEWER_THAN"
	KeyNameMatches     = "NAME_MATCHES"
)

// ConditionFactory builds a condition from its configured string value
type ConditionFactory func(value string) (Condition, error)

// Registry maps condition keys to the factories that build them.
// Keys are case-insensitive.
type Registry struct {
	factories map[string]ConditionFactory
	clock     func() time.Time
}

// NewRegistry returns a registry with the default condition types
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]ConditionFactory)}
	r.registerDefaults()
	return r
}

// SetClock makes age conditions built by this registry read time from now
func (r *Registry) SetClock(now func() time.Time) {
	r.clock = now
}

// Register adds or replaces the factory for key
func (r *Registry) Register(key string, factory ConditionFactory) {
	r.factories[normalizeKey(key)] = factory
	log.Debugf("Registered condition type: %s", normalizeKey(key))
}

// Keys returns the registered condition keys, sorted
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewCondition builds the condition registered under key from value
func (r *Registry) NewCondition(key, value string) (Condition, error) {
	factory, ok := r.factories[normalizeKey(key)]
	if !ok {
		return Condition{}, serr.NewRuleError("unknown condition type", key, serr.UnknownCondition, nil)
	}

	c, err := factory(value)
	if err != nil {
		return Condition{}, serr.NewRuleError("invalid condition value", key+"="+value, serr.InvalidValue, err)
	}
	if c.kind == ConditionAge && r.clock != nil {
		c = c.WithClock(r.clock)
	}
	return c, nil
}

// NewRule builds a rule from its configuration. Conditions are added in
// sorted key order. Unknown keys and unparsable values reject the rule.
func (r *Registry) NewRule(cfg types.RuleConfig) (*Rule, error) {
	if strings.TrimSpace(cfg.Target) == "" {
		return nil, serr.NewRuleError("rule has no target path", "", serr.InvalidRule, nil)
	}

	rule := NewRule(cfg.Target, cfg.Priority)
	if cfg.AppliesTo != "" {
		rule.appliesTo = cfg.AppliesTo
	}

	keys := make([]string, 0, len(cfg.Conditions))
	for k := range cfg.Conditions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		c, err := r.NewCondition(k, cfg.Conditions[k])
		if err != nil {
			return nil, serr.NewRuleError("invalid rule", cfg.Target, serr.KindOf(err), err)
		}
		rule.AddCondition(c)
	}

	log.Debugf("Created rule: %s (priority: %d)", cfg.Target, cfg.Priority)
	return rule, nil
}

// NewRuleSet builds every configured rule. All failures are reported
// together; no rule set is returned if any rule is invalid.
func (r *Registry) NewRuleSet(cfgs []types.RuleConfig) (*RuleSet, error) {
	built := make([]*Rule, 0, len(cfgs))
	var errs []error
	for _, cfg := range cfgs {
		rule, err := r.NewRule(cfg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		built = append(built, rule)
	}
	if len(errs) > 0 {
		return nil, serr.Join(errs...)
	}

	set := NewRuleSet(built...)
	log.Debugf("Created %d rules from configuration", set.Len())
	return set, nil
}

func (r *Registry) registerDefaults() {
	r.Register(KeyExtension, func(value string) (Condition, error) {
		return NewExtensionCondition(value), nil
	})
	r.Register(KeySizeGreaterThan, sizeFactory(SizeGreaterThan))
	r.Register(KeySizeLessThan, sizeFactory(SizeLessThan))
	r.Register(KeyAgeOlderThan, ageFactory(AgeOlderThan))
	r.Register(KeyAgeNewerThan, ageFactory(AgeNewerThan))
	r.Register(KeyNameMatches, NewNameCondition)
}

func sizeFactory(op SizeComparison) ConditionFactory {
	return func(value string) (Condition, error) {
		n, err := ParseSize(value)
		if err != nil {
			return Condition{}, err
		}
		return NewSizeCondition(op, n), nil
	}
}

func ageFactory(op AgeComparison) ConditionFactory {
	return func(value string) (Condition, error) {
		d, err := ParseAge(value)
		if err != nil {
			return Condition{}, err
		}
		return NewAgeCondition(op, d), nil
	}
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
