package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	serr "dirsort/internal/errors"
	"dirsort/internal/log"
	"dirsort/pkg/types"
)

// Block markers of the classic format
const (
	markerRule          = "RULE:"
	markerEndRule       = "END_RULE"
	markerConditions    = "CONDITIONS:"
	markerEndConditions = "END_CONDITIONS"
)

// classicParser reads the line oriented format:
//
//	SOURCE_DIR: /home/me/Downloads
//	TARGET_BASE_DIR: /home/me/Sorted
//	RULE:
//	  TARGET_PATH: documents/pdf
//	  PRIORITY: 10
//	  CONDITIONS:
//	    EXTENSION: .pdf
//	  END_CONDITIONS
//	END_RULE
type classicParser struct {
	name   string
	cfg    *Config
	errs   []error
	line   int
	rule   *types.RuleConfig
	inCond bool
	start  int
}

// ParseClassic parses a configuration in the classic KEY: value format.
// name is used in error messages. Every malformed line is reported; the
// errors are returned together.
func ParseClassic(r io.Reader, name string) (*Config, error) {
	p := &classicParser{name: name, cfg: defaultConfig()}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		p.parseLine(strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, serr.NewConfigError("error reading config file", name, serr.InvalidConfig, err)
	}
	// An unterminated block at end of input still counts
	if p.rule != nil {
		p.finishRule()
	}

	if len(p.errs) > 0 {
		return nil, serr.NewConfigError("error parsing config file", name, serr.InvalidConfig, serr.Join(p.errs...))
	}
	return p.cfg, nil
}

func (p *classicParser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf("line %d: %s", p.line, fmt.Sprintf(format, args...))
	p.errs = append(p.errs, serr.NewConfigError(msg, "", serr.InvalidConfig, nil))
}

func (p *classicParser) parseLine(line string) {
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	if p.rule == nil {
		if line == markerRule {
			p.rule = &types.RuleConfig{Priority: types.DefaultPriority, Conditions: map[string]string{}}
			p.inCond = false
			p.start = p.line
			return
		}
		p.parseSetting(line)
		return
	}

	switch line {
	case markerEndRule:
		p.finishRule()
		return
	case markerConditions:
		p.inCond = true
		return
	case markerEndConditions:
		p.inCond = false
		return
	}

	key, value, ok := splitKeyValue(line)
	if !ok {
		return
	}
	// An empty condition value is meaningful: EXTENSION: matches no extension
	if p.inCond {
		p.rule.Conditions[key] = value
		return
	}
	if value == "" {
		return
	}

	switch key {
	case "TARGET_PATH":
		p.rule.Target = value
	case "PRIORITY":
		priority, err := strconv.Atoi(value)
		if err != nil {
			p.errorf("invalid priority value: %s", value)
			priority = types.DefaultPriority
		}
		p.rule.Priority = priority
	case "APPLIES_TO":
		p.rule.AppliesTo = value
	default:
		log.Warnf("%s:%d: ignoring unknown rule key %s", p.name, p.line, key)
	}
}

func (p *classicParser) parseSetting(line string) {
	key, value, ok := splitKeyValue(line)
	if !ok || value == "" {
		return
	}

	s := &p.cfg.Settings
	switch key {
	case "SOURCE_DIR":
		s.SourceDir = value
	case "TARGET_BASE_DIR":
		s.TargetDir = value
	case "DRY_RUN":
		switch strings.ToLower(value) {
		case "true", "yes", "1":
			s.DryRun = true
		default:
			s.DryRun = false
		}
	case "LOG_LEVEL":
		level, err := log.ParseLevel(value)
		if err != nil {
			log.Warnf("%s:%d: unknown log level %s, using info", p.name, p.line, value)
			level = log.LevelInfo
		}
		s.LogLevel = level.String()
	case "LOG_FILE":
		s.LogFile = value
	case "LOG_FORMAT":
		s.LogFormat = strings.ToLower(value)
	case "EXCLUDE":
		for _, pattern := range strings.Split(value, ",") {
			if pattern = strings.TrimSpace(pattern); pattern != "" {
				s.Exclude = append(s.Exclude, pattern)
			}
		}
	default:
		log.Warnf("%s:%d: ignoring unknown setting %s", p.name, p.line, key)
	}
}

func (p *classicParser) finishRule() {
	rule := *p.rule
	p.rule = nil
	p.inCond = false

	if rule.Target == "" {
		p.errorf("rule starting at line %d is missing TARGET_PATH", p.start)
		return
	}

	rule.AppliesTo = normalizeAppliesTo(rule.AppliesTo)
	switch rule.AppliesTo {
	case types.AppliesToFile, types.AppliesToFolder, types.AppliesToAny:
	default:
		p.errorf("invalid APPLIES_TO value: %s (must be 'file', 'folder', or 'any')", rule.AppliesTo)
		return
	}

	p.cfg.Rules = append(p.cfg.Rules, rule)
}

// splitKeyValue splits "KEY: value" at the first colon
func splitKeyValue(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}
