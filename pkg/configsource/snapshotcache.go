package configsource

import (
	"context"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"gopkg.in/yaml.v3"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

// snapshotKey is the single badger key this cache ever writes. One
// process owns one topology, so there is no need for a keyspace.
var snapshotKey = []byte("configsource/last-good-snapshot")

// BadgerSnapshotCache persists the last successfully decoded group
// topology to an embedded BadgerDB, grounded on the teacher's
// pkg/metadata/store/badger CRUD style: a View/Update transaction per
// operation, values decoded inside the Item.Value callback.
type BadgerSnapshotCache struct {
	db *badger.DB
}

// NewBadgerSnapshotCache opens (creating if needed) a BadgerDB at dir.
func NewBadgerSnapshotCache(dir string) (*BadgerSnapshotCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("configsource: open badger cache: %w", err)
	}
	return &BadgerSnapshotCache{db: db}, nil
}

// Close releases the underlying BadgerDB handle.
func (c *BadgerSnapshotCache) Close() error {
	return c.db.Close()
}

// Load returns the last stored snapshot. The bool return is false
// when no snapshot has ever been stored.
func (c *BadgerSnapshotCache) Load(_ context.Context) (groups.Options, bool, error) {
	var opts groups.Options
	var found bool

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			var doc document
			if err := yaml.Unmarshal(val, &doc); err != nil {
				return err
			}
			opts, err = decodeDocument(doc)
			return err
		})
	})
	if err != nil {
		return groups.Options{}, false, fmt.Errorf("configsource: load cached snapshot: %w", err)
	}
	return opts, found, nil
}

// Store overwrites the cached snapshot. The caller is expected to
// call this only with an Options value that has already passed
// Configure successfully, so a later Load never hands back a
// topology the scheduler is known to reject.
func (c *BadgerSnapshotCache) Store(_ context.Context, opts groups.Options) error {
	doc := toDocument(opts)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("configsource: marshal snapshot: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	})
}

// strategyDocString renders a Strategy the way document's validate
// tag (oneof=fifo round_robin) expects, which is not the same as
// Strategy.String()'s human-readable form.
func strategyDocString(s groups.Strategy) string {
	if s == groups.RoundRobin {
		return "round_robin"
	}
	return "fifo"
}

func toDocument(opts groups.Options) document {
	doc := document{
		GlobalSlots: opts.GlobalSlots,
		Default: groupDocument{
			Slots:    opts.Default.Slots,
			Strategy: strategyDocString(opts.Default.Strategy),
		},
		Leechers: groupDocument{
			Slots:    opts.Leechers.Slots,
			Strategy: strategyDocString(opts.Leechers.Strategy),
		},
	}
	for _, spec := range opts.Specs()[2:] {
		doc.Groups = append(doc.Groups, userGroupDocument{
			Name:     spec.Name,
			Priority: spec.Priority,
			Slots:    spec.Slots,
			Strategy: strategyDocString(spec.Strategy),
		})
	}
	return doc
}
