package pricing

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var hundred = decimal.NewFromInt(100)

type rawConfig struct {
	Game              string                       `yaml:"game"`
	Name              string                       `yaml:"name"`
	Currency          string                       `yaml:"currency"`
	PointsLabel       string                       `yaml:"points_label"`
	Tiers             []string                     `yaml:"tiers"`
	Divisions         []string                     `yaml:"divisions"`
	DivisionPointsMax int                          `yaml:"division_points_max"`
	Ladder            map[string]map[string]string `yaml:"ladder"`
	Capped            struct {
		EntryPrice     string `yaml:"entry_price"`
		PointPrice     string `yaml:"point_price"`
		MinPointsDelta int    `yaml:"min_points_delta"`
		MaxPoints      int    `yaml:"max_points"`
	} `yaml:"capped"`
	Discounts struct {
		Bands    []int    `yaml:"bands"`
		SameRank []string `yaml:"same_rank"`
		NextRank []string `yaml:"next_rank"`
	} `yaml:"discounts"`
	Extras []struct {
		Key     string `yaml:"key"`
		Label   string `yaml:"label"`
		Percent string `yaml:"percent"`
	} `yaml:"extras"`
	TimeTax struct {
		Percent  string   `yaml:"percent"`
		TierSpan int      `yaml:"tier_span"`
		LowTiers []string `yaml:"low_tiers"`
	} `yaml:"time_tax"`
	CappedJumpFee struct {
		PerTier     string            `yaml:"per_tier"`
		Multipliers map[string]string `yaml:"multipliers"`
	} `yaml:"capped_jump_fee"`
	CashbackPercent string `yaml:"cashback_percent"`
}

type Extra struct {
	Key     string
	Label   string
	Percent decimal.Decimal
}

type edge struct {
	from int
	to   int
}

// GameConfig is the validated, immutable pricing table of one game. The last
// tier is the capped tier.
type GameConfig struct {
	Game              Game
	Name              string
	Currency          string
	PointsLabel       string
	Tiers             []string
	Divisions         []string
	DivisionPointsMax int

	CappedEntryPrice decimal.Decimal
	CappedPointPrice decimal.Decimal
	MinPointsDelta   int
	MaxCappedPoints  int

	DiscountBands    []int
	SameRankDiscount []decimal.Decimal
	NextRankDiscount []decimal.Decimal

	Extras []Extra

	TimeTaxPercent  decimal.Decimal
	TimeTaxTierSpan int
	LowTiers        []string

	CappedJumpPerTier     decimal.Decimal
	CappedJumpMultipliers map[string]decimal.Decimal

	CashbackPercent decimal.Decimal

	ladder map[edge]decimal.Decimal
}

// ParseConfig decodes and validates one game's YAML table.
func ParseConfig(data []byte) (*GameConfig, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode pricing yaml: %w", err)
	}
	return raw.build()
}

func (r rawConfig) build() (*GameConfig, error) {
	game, ok := ParseGame(r.Game)
	if !ok {
		return nil, fmt.Errorf("unknown game %q", r.Game)
	}
	if len(r.Tiers) < 2 {
		return nil, fmt.Errorf("%s: at least two tiers are required", game)
	}
	if len(r.Divisions) == 0 {
		return nil, fmt.Errorf("%s: divisions are required", game)
	}
	if hasDuplicateFold(r.Tiers) || hasDuplicateFold(r.Divisions) {
		return nil, fmt.Errorf("%s: tiers and divisions must be unique", game)
	}

	cfg := &GameConfig{
		Game:                  game,
		Name:                  strings.TrimSpace(r.Name),
		Currency:              strings.ToLower(strings.TrimSpace(r.Currency)),
		PointsLabel:           strings.TrimSpace(r.PointsLabel),
		Tiers:                 slices.Clone(r.Tiers),
		Divisions:             slices.Clone(r.Divisions),
		DivisionPointsMax:     r.DivisionPointsMax,
		MinPointsDelta:        r.Capped.MinPointsDelta,
		MaxCappedPoints:       r.Capped.MaxPoints,
		TimeTaxTierSpan:       r.TimeTax.TierSpan,
		CappedJumpMultipliers: make(map[string]decimal.Decimal, len(r.CappedJumpFee.Multipliers)),
		ladder:                make(map[edge]decimal.Decimal),
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.DivisionPointsMax <= 0 {
		cfg.DivisionPointsMax = 100
	}
	if cfg.MaxCappedPoints <= 0 {
		return nil, fmt.Errorf("%s: capped.max_points must be positive", game)
	}
	if cfg.MinPointsDelta < 0 {
		return nil, fmt.Errorf("%s: capped.min_points_delta must not be negative", game)
	}

	var errs []error
	amount := func(field, raw string) decimal.Decimal {
		v, err := parseAmount(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %s: %w", game, field, err))
		}
		return v
	}
	percent := func(field, raw string) decimal.Decimal {
		v := amount(field, raw)
		if v.GreaterThan(hundred) {
			errs = append(errs, fmt.Errorf("%s: %s: percent above 100", game, field))
		}
		return v
	}

	cfg.CappedEntryPrice = amount("capped.entry_price", r.Capped.EntryPrice)
	cfg.CappedPointPrice = amount("capped.point_price", r.Capped.PointPrice)
	cfg.TimeTaxPercent = percent("time_tax.percent", r.TimeTax.Percent)
	cfg.CappedJumpPerTier = amount("capped_jump_fee.per_tier", r.CappedJumpFee.PerTier)
	cfg.CashbackPercent = percent("cashback_percent", r.CashbackPercent)

	bands := r.Discounts.Bands
	if len(bands) == 0 || len(r.Discounts.SameRank) != len(bands) || len(r.Discounts.NextRank) != len(bands) {
		errs = append(errs, fmt.Errorf("%s: discount tables must match the %d bands", game, len(bands)))
	}
	if !slices.IsSorted(bands) {
		errs = append(errs, fmt.Errorf("%s: discount bands must ascend", game))
	}
	cfg.DiscountBands = slices.Clone(bands)
	for i, raw := range r.Discounts.SameRank {
		cfg.SameRankDiscount = append(cfg.SameRankDiscount, percent("discounts.same_rank["+strconv.Itoa(i)+"]", raw))
	}
	for i, raw := range r.Discounts.NextRank {
		cfg.NextRankDiscount = append(cfg.NextRankDiscount, percent("discounts.next_rank["+strconv.Itoa(i)+"]", raw))
	}

	seenExtras := make(map[string]struct{}, len(r.Extras))
	for _, e := range r.Extras {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			errs = append(errs, fmt.Errorf("%s: extra key is required", game))
			continue
		}
		if _, dup := seenExtras[key]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate extra %q", game, key))
			continue
		}
		seenExtras[key] = struct{}{}
		label := strings.TrimSpace(e.Label)
		if label == "" {
			label = key
		}
		cfg.Extras = append(cfg.Extras, Extra{Key: key, Label: label, Percent: amount("extras."+key, e.Percent)})
	}

	for _, tier := range r.TimeTax.LowTiers {
		idx := cfg.tierIndex(tier)
		if idx < 0 || idx == cfg.cappedTierIndex() {
			errs = append(errs, fmt.Errorf("%s: time_tax.low_tiers: unknown tier %q", game, tier))
			continue
		}
		cfg.LowTiers = append(cfg.LowTiers, cfg.Tiers[idx])
	}
	for tier, raw := range r.CappedJumpFee.Multipliers {
		idx := cfg.tierIndex(tier)
		if idx < 0 || idx == cfg.cappedTierIndex() {
			errs = append(errs, fmt.Errorf("%s: capped_jump_fee.multipliers: unknown tier %q", game, tier))
			continue
		}
		cfg.CappedJumpMultipliers[cfg.Tiers[idx]] = amount("capped_jump_fee.multipliers."+tier, raw)
	}

	for fromLabel, targets := range r.Ladder {
		from, ok := cfg.ParsePosition(fromLabel, 0)
		if !ok || cfg.IsCapped(from) {
			errs = append(errs, fmt.Errorf("%s: ladder: bad origin %q", game, fromLabel))
			continue
		}
		for toLabel, raw := range targets {
			to, ok := cfg.ParsePosition(toLabel, 0)
			if !ok || cfg.IsCapped(to) {
				errs = append(errs, fmt.Errorf("%s: ladder: bad target %q", game, toLabel))
				continue
			}
			if cfg.stepIndex(to) != cfg.stepIndex(from)+1 {
				errs = append(errs, fmt.Errorf("%s: ladder: %q -> %q is not a forward adjacent step", game, fromLabel, toLabel))
				continue
			}
			cfg.ladder[edge{from: cfg.stepIndex(from), to: cfg.stepIndex(to)}] = amount("ladder."+fromLabel, raw)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *GameConfig) CappedTier() string {
	return c.Tiers[len(c.Tiers)-1]
}

// ExtraByKey looks up a configured extra; unknown keys are reported as absent.
func (c *GameConfig) ExtraByKey(key string) (Extra, bool) {
	for _, e := range c.Extras {
		if e.Key == key {
			return e, true
		}
	}
	return Extra{}, false
}

// ParsePosition reads labels such as "Silver III", "gold 2" or "Master".
// Tier and division match case-insensitively and come back canonical.
// Points outside the allowed range make the position invalid.
func (c *GameConfig) ParsePosition(label string, points int) (Position, bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 || points < 0 {
		return Position{}, false
	}

	// Tier names may contain spaces, so the division is always the last field.
	tierIdx := c.tierIndex(strings.Join(fields, " "))
	division := ""
	if tierIdx < 0 && len(fields) > 1 {
		tierIdx = c.tierIndex(strings.Join(fields[:len(fields)-1], " "))
		division = fields[len(fields)-1]
	}
	if tierIdx < 0 {
		return Position{}, false
	}

	pos := Position{Tier: c.Tiers[tierIdx], Points: points}
	if tierIdx == c.cappedTierIndex() {
		if division != "" || points > c.MaxCappedPoints {
			return Position{}, false
		}
		return pos, true
	}

	divIdx := c.divisionIndex(division)
	if divIdx < 0 || points > c.DivisionPointsMax {
		return Position{}, false
	}
	pos.Division = c.Divisions[divIdx]
	return pos, true
}

func (c *GameConfig) IsCapped(p Position) bool {
	return strings.EqualFold(p.Tier, c.CappedTier())
}

func (c *GameConfig) tierIndex(tier string) int {
	tier = strings.TrimSpace(tier)
	for i, t := range c.Tiers {
		if strings.EqualFold(t, tier) {
			return i
		}
	}
	return -1
}

func (c *GameConfig) divisionIndex(div string) int {
	div = strings.TrimSpace(div)
	for i, d := range c.Divisions {
		if strings.EqualFold(d, div) {
			return i
		}
	}
	return -1
}

func (c *GameConfig) cappedTierIndex() int {
	return len(c.Tiers) - 1
}

// stepIndex linearizes a non-capped position; the capped tier sits one past
// the top division of the tier below it.
func (c *GameConfig) stepIndex(p Position) int {
	tierIdx := c.tierIndex(p.Tier)
	if tierIdx == c.cappedTierIndex() {
		return tierIdx * len(c.Divisions)
	}
	return tierIdx*len(c.Divisions) + c.divisionIndex(p.Division)
}

func (c *GameConfig) positionAt(step int) Position {
	return Position{
		Tier:     c.Tiers[step/len(c.Divisions)],
		Division: c.Divisions[step%len(c.Divisions)],
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %q: %w", raw, err)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %q", raw)
	}
	return v, nil
}

func hasDuplicateFold(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if _, ok := seen[key]; ok || key == "" {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}
