package rules

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/RanceJen/roguelike-sg7/internal/game/skill"
)

// Rules is the fully loaded content of a rules file.
type Rules struct {
	Params  Params
	Catalog *skill.Catalog
	// Warnings lists every value that was ignored or replaced by a default.
	Warnings []string
}

// Load reads and parses the rules file at path.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns Rules whose Params pass Validate and whose Catalog
// holds at least one skill, or a non-nil error.
func Load(path string, logger *zap.Logger) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	r, err := LoadFromBytes(data, logger)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return r, nil
}

// LoadFromBytes parses rules file content.
//
// Precondition: logger must be non-nil.
// Postcondition: same as Load.
func LoadFromBytes(data []byte, logger *zap.Logger) (*Rules, error) {
	p := &parser{
		rules:  &Rules{Params: DefaultParams(), Catalog: skill.NewCatalog()},
		logger: logger,
	}

	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if err := p.line(lineNo, strings.TrimSpace(sc.Text())); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning rules: %w", err)
	}

	p.reconcileTiers()

	if err := p.rules.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if p.rules.Catalog.Len() == 0 {
		return nil, fmt.Errorf("no skills defined under any section")
	}
	return p.rules, nil
}

type parser struct {
	rules   *Rules
	logger  *zap.Logger
	section *skill.Category
}

func (p *parser) warn(lineNo int, msg string, fields ...zap.Field) {
	if lineNo > 0 {
		msg = fmt.Sprintf("line %d: %s", lineNo, msg)
		fields = append(fields, zap.Int("line", lineNo))
	}
	p.rules.Warnings = append(p.rules.Warnings, msg)
	p.logger.Warn(msg, fields...)
}

func (p *parser) line(lineNo int, line string) error {
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	if cat, ok := skill.ParseCategory(line); ok {
		p.section = &cat
		return nil
	}

	eq := strings.Index(line, "=")
	semi := strings.Index(line, ";")
	if eq >= 0 && (semi < 0 || eq < semi) {
		key, value, _ := strings.Cut(line, "=")
		p.setting(lineNo, strings.TrimSpace(key), strings.TrimSpace(value))
		return nil
	}

	if semi < 0 {
		p.warn(lineNo, "unrecognised line ignored", zap.String("text", line))
		return nil
	}
	if p.section == nil {
		p.warn(lineNo, "skill line outside any section ignored", zap.String("text", line))
		return nil
	}
	return p.skill(lineNo, line)
}

func (p *parser) skill(lineNo int, line string) error {
	parts := strings.Split(line, ";")
	if len(parts) < 4 {
		return fmt.Errorf("line %d: skill needs id;name;description;value, got %d field(s)", lineNo, len(parts))
	}
	id, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return fmt.Errorf("line %d: invalid skill id %q: %w", lineNo, parts[0], err)
	}
	value, err := strconv.ParseInt(strings.TrimSpace(parts[3]), 10, 32)
	if err != nil {
		return fmt.Errorf("line %d: invalid skill value %q: %w", lineNo, parts[3], err)
	}
	def := skill.Definition{
		ID:          uint32(id),
		Name:        strings.TrimSpace(parts[1]),
		Description: strings.TrimSpace(parts[2]),
		Value:       int32(value),
	}
	if err := p.rules.Catalog.Add(*p.section, def); err != nil {
		return fmt.Errorf("line %d: %w", lineNo, err)
	}
	return nil
}

func (p *parser) setting(lineNo int, key, value string) {
	params := &p.rules.Params
	switch key {
	case "pick_limit":
		p.intValue(lineNo, key, value, &params.PickLimit)
	case "reroll_limit":
		p.intValue(lineNo, key, value, &params.RerollLimit)
	case "extra_attribute":
		p.intValue(lineNo, key, value, &params.ExtraAttribute)
	case "str_rate":
		p.floatValue(lineNo, key, value, &params.StrRate)
	case "int_rate":
		p.floatValue(lineNo, key, value, &params.IntRate)
	case "random_extra_attribute_min":
		p.intValue(lineNo, key, value, &params.RandomExtraMin)
	case "random_extra_attribute_max":
		p.intValue(lineNo, key, value, &params.RandomExtraMax)
	case "str_random_rate":
		p.floatValue(lineNo, key, value, &params.StrRandomRate)
	case "int_random_rate":
		p.floatValue(lineNo, key, value, &params.IntRandomRate)
	case "exist_attribute_rate":
		p.floatValue(lineNo, key, value, &params.ExistAttributeRate)
	case "last_character_number":
		p.intValue(lineNo, key, value, &params.LastCharacterNumber)
	case "attribute_thresholds":
		var th []int32
		if err := yaml.Unmarshal([]byte(value), &th); err != nil || th == nil {
			p.warn(lineNo, fmt.Sprintf("invalid attribute_thresholds format %q, using default", value))
			params.AttributeThresholds = DefaultThresholds()
			return
		}
		params.AttributeThresholds = th
	case "attribute_rates":
		var rates []float64
		if err := yaml.Unmarshal([]byte(value), &rates); err != nil || rates == nil || !allFinite(rates) {
			p.warn(lineNo, fmt.Sprintf("invalid attribute_rates format %q, using default", value))
			params.AttributeRates = DefaultRates()
			return
		}
		params.AttributeRates = rates
	default:
		p.warn(lineNo, fmt.Sprintf("unknown setting %q ignored", key))
	}
}

func (p *parser) intValue(lineNo int, key, value string, dst *int) {
	v, err := strconv.Atoi(value)
	if err != nil {
		p.warn(lineNo, fmt.Sprintf("invalid %s value %q, keeping %d", key, value, *dst))
		return
	}
	*dst = v
}

func (p *parser) floatValue(lineNo int, key, value string, dst *float64) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || !finite(v) {
		p.warn(lineNo, fmt.Sprintf("invalid %s value %q, keeping %g", key, value, *dst))
		return
	}
	*dst = v
}

// reconcileTiers restores defaults for tier arrays that are unusable once the
// whole file has been read, so that setting order in the file does not matter.
func (p *parser) reconcileTiers() {
	params := &p.rules.Params
	if !ascending(params.AttributeThresholds) {
		p.warn(0, fmt.Sprintf("attribute_thresholds %v not ascending, using default", params.AttributeThresholds))
		params.AttributeThresholds = DefaultThresholds()
	}
	if want := len(params.AttributeThresholds) + 1; len(params.AttributeRates) != want {
		p.warn(0, fmt.Sprintf("attribute_rates should have %d values, got %d, using default",
			want, len(params.AttributeRates)))
		params.AttributeRates = DefaultRates()
	}
}
