package configsource

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

// document is the on-disk/on-object shape of a group topology file,
// decoded by both FileSource and S3Source before being converted into
// groups.Options. Field names match the YAML keys an operator edits
// by hand, mirroring the teacher's Config struct's mapstructure/yaml
// tag pairing (pkg/config/config.go).
type document struct {
	GlobalSlots int                 `yaml:"global_slots" validate:"required,gt=0"`
	Default     groupDocument       `yaml:"default" validate:"required"`
	Leechers    groupDocument       `yaml:"leechers" validate:"required"`
	Groups      []userGroupDocument `yaml:"groups" validate:"dive"`
}

type groupDocument struct {
	Slots    int    `yaml:"slots" validate:"required,gt=0"`
	Strategy string `yaml:"strategy" validate:"required,oneof=fifo round_robin"`
}

type userGroupDocument struct {
	Name     string `yaml:"name" validate:"required"`
	Priority int    `yaml:"priority" validate:"gte=0"`
	Slots    int    `yaml:"slots" validate:"required,gt=0"`
	Strategy string `yaml:"strategy" validate:"required,oneof=fifo round_robin"`
}

var docValidator = validator.New(validator.WithRequiredStructEnabled())

func decodeDocument(doc document) (groups.Options, error) {
	if err := docValidator.Struct(doc); err != nil {
		return groups.Options{}, fmt.Errorf("configsource: invalid document: %w", err)
	}

	defaultStrategy, err := groups.ParseStrategy(doc.Default.Strategy)
	if err != nil {
		return groups.Options{}, fmt.Errorf("configsource: default group: %w", err)
	}
	leecherStrategy, err := groups.ParseStrategy(doc.Leechers.Strategy)
	if err != nil {
		return groups.Options{}, fmt.Errorf("configsource: leechers group: %w", err)
	}

	opts := groups.Options{
		GlobalSlots: doc.GlobalSlots,
		Default: groups.Spec{
			Name:     "default",
			Priority: 10,
			Slots:    doc.Default.Slots,
			Strategy: defaultStrategy,
		},
		Leechers: groups.Spec{
			Name:     "leechers",
			Priority: 20,
			Slots:    doc.Leechers.Slots,
			Strategy: leecherStrategy,
		},
		UserDefined: make(map[string]groups.Spec, len(doc.Groups)),
	}

	for _, g := range doc.Groups {
		strategy, err := groups.ParseStrategy(g.Strategy)
		if err != nil {
			return groups.Options{}, fmt.Errorf("configsource: group %q: %w", g.Name, err)
		}
		if _, dup := opts.UserDefined[g.Name]; dup {
			return groups.Options{}, fmt.Errorf("configsource: duplicate group name %q", g.Name)
		}
		opts.UserDefined[g.Name] = groups.Spec{
			Name:     g.Name,
			Priority: g.Priority,
			Slots:    g.Slots,
			Strategy: strategy,
		}
	}

	return opts, nil
}
