package indexstore

import (
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"symgraph/internal/errors"
	"symgraph/internal/paths"
	"symgraph/internal/symbol"
)

// fixtureFile is a hand-written index in TOML, used by tests and for
// trying queries without running an indexer:
//
//	[[symbol]]
//	usr = "c:Base"
//	name = "Base"
//	kind = "class"
//
//	[[occurrence]]
//	usr = "c:Base"
//	path = "Sources/Base.swift"
//	line = 1
//	column = 7
//	roles = "definition|canonical"
type fixtureFile struct {
	Symbols     []fixtureSymbol     `toml:"symbol"`
	Occurrences []fixtureOccurrence `toml:"occurrence"`
}

type fixtureSymbol struct {
	USR      string      `toml:"usr"`
	Name     string      `toml:"name"`
	Kind     symbol.Kind `toml:"kind"`
	Language string      `toml:"language"`
}

type fixtureOccurrence struct {
	USR       string            `toml:"usr"`
	Path      string            `toml:"path"`
	Module    string            `toml:"module"`
	Line      int               `toml:"line"`
	Column    int               `toml:"column"`
	Offset    int               `toml:"offset"`
	Roles     symbol.Role       `toml:"roles"`
	System    bool              `toml:"system"`
	Relations []fixtureRelation `toml:"relations"`
}

type fixtureRelation struct {
	USR   string      `toml:"usr"`
	Roles symbol.Role `toml:"roles"`
}

// decodeFixture builds a snapshot from TOML fixture data. Relative paths are
// joined with root. Occurrence order is the order written; canonical roles
// are added only for symbols the fixture left without one.
func decodeFixture(source, root string, data []byte) (*Snapshot, error) {
	var f fixtureFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.New(errors.IndexLoadFailed, fmt.Sprintf("failed to parse fixture %s", source), err)
	}
	if root == "" {
		root = filepath.Dir(source)
	}

	snap := NewSnapshot(source, root)
	for _, s := range f.Symbols {
		if s.USR == "" {
			return nil, errors.Newf(errors.IndexLoadFailed, "fixture %s: symbol without usr", source)
		}
		snap.AddSymbol(symbol.Symbol{USR: s.USR, Name: s.Name, Kind: s.Kind, Language: s.Language})
	}

	lookup := func(usr string) (symbol.Symbol, error) {
		sym, ok := snap.Symbol(usr)
		if !ok {
			return symbol.Symbol{}, errors.Newf(errors.IndexLoadFailed, "fixture %s: undeclared symbol %q", source, usr)
		}
		return sym, nil
	}

	for i, o := range f.Occurrences {
		sym, err := lookup(o.USR)
		if err != nil {
			return nil, err
		}
		path := o.Path
		if path != "" {
			path = paths.JoinProjectPath(root, path)
		}
		if o.Roles.IsEmpty() {
			return nil, errors.Newf(errors.IndexLoadFailed, "fixture %s: occurrence %d of %q has no roles", source, i, o.USR)
		}

		occ := symbol.Occurrence{
			Symbol:   sym,
			Location: symbol.NewLocation(path, o.Module, o.Line, o.Column, o.Offset),
			Roles:    o.Roles,
		}
		occ.Location.IsSystem = o.System
		for _, r := range o.Relations {
			relSym, err := lookup(r.USR)
			if err != nil {
				return nil, err
			}
			occ.Relations = append(occ.Relations, symbol.Relation{Symbol: relSym, Roles: r.Roles})
		}
		snap.AddOccurrence(occ)
	}

	snap.markCanonical()
	return snap, nil
}
