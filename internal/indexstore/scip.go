package indexstore

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"
	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/proto"

	"symgraph/internal/errors"
	"symgraph/internal/paths"
	"symgraph/internal/symbol"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// readIndexFile reads path, failing with IndexMissing when it does not exist.
func readIndexFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.IndexMissing, fmt.Sprintf("index not found at %s", path), err)
	}
	if err != nil {
		return nil, errors.New(errors.IndexLoadFailed, fmt.Sprintf("failed to read index from %s", path), err)
	}
	return data, nil
}

// decodeSCIP unmarshals a SCIP index, decompressing zstd input first.
func decodeSCIP(path string, data []byte) (*scippb.Index, error) {
	if strings.HasSuffix(path, ".zst") || bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, errors.New(errors.IndexLoadFailed, fmt.Sprintf("failed to decompress %s", path), err)
		}
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, errors.New(errors.IndexLoadFailed, fmt.Sprintf("failed to parse SCIP index from %s", path), err)
	}
	return &index, nil
}

// scipImporter converts a SCIP index into a Snapshot, synthesising the
// relation shapes the query layer walks: childOf from enclosing symbols,
// baseOf from implementation relationships, extendedBy for extensions and
// calledBy for references inside function bodies.
type scipImporter struct {
	root    string
	exclude []string
	workers int
	logger  *slog.Logger

	info    map[string]*scippb.SymbolInformation
	parsed  map[string]*scipSymbol
	kinds   map[string]symbol.Kind
	lang    map[string]string
	parents map[string]string

	// extension symbol -> extended type
	extTargets map[string]string
	extMembers map[string]bool
}

func newSCIPImporter(opts Options, logger *slog.Logger) *scipImporter {
	return &scipImporter{
		exclude:    opts.Exclude,
		workers:    max(opts.ImportWorkers, 1),
		root:       opts.ProjectDir,
		logger:     logger,
		info:       make(map[string]*scippb.SymbolInformation),
		parsed:     make(map[string]*scipSymbol),
		kinds:      make(map[string]symbol.Kind),
		lang:       make(map[string]string),
		parents:    make(map[string]string),
		extTargets: make(map[string]string),
		extMembers: make(map[string]bool),
	}
}

// importSCIP builds a snapshot from a decoded index.
func (im *scipImporter) importSCIP(ctx context.Context, source string, index *scippb.Index) (*Snapshot, error) {
	if im.root == "" && index.Metadata != nil {
		im.root = strings.TrimPrefix(index.Metadata.ProjectRoot, "file://")
	}
	if im.root == "" {
		im.root = filepath.Dir(source)
	}

	im.collectSymbols(index)

	results := make([][]symbol.Occurrence, len(index.Documents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i, doc := range index.Documents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = im.convertDocument(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := NewSnapshot(source, im.root)
	for _, doc := range index.Documents {
		for _, si := range doc.Symbols {
			if im.droppedExtension(si.Symbol) || im.parsed[si.Symbol] == nil {
				continue
			}
			snap.AddSymbol(im.symbolFor(si.Symbol))
		}
	}
	for _, occs := range results {
		for _, occ := range occs {
			snap.AddOccurrence(occ)
		}
	}
	for _, si := range index.ExternalSymbols {
		if sym, ok := im.parsed[si.Symbol]; ok && !im.droppedExtension(si.Symbol) {
			snap.AddOccurrence(symbol.Occurrence{
				Symbol:   im.symbolFor(si.Symbol),
				Location: symbol.Location{ModuleName: sym.pkg, IsSystem: true},
				Roles:    symbol.RoleDeclaration,
			})
		}
	}

	snap.refreshRelationSymbols()
	snap.markCanonical()

	im.logger.Debug("Converted SCIP index",
		"documents", len(index.Documents),
		"externalSymbols", len(index.ExternalSymbols),
		"symbols", len(snap.Symbols()),
		"occurrences", len(snap.Occurrences()),
	)
	return snap, nil
}

// collectSymbols parses every symbol and resolves kinds, parents and
// extension targets before documents are converted in parallel.
func (im *scipImporter) collectSymbols(index *scippb.Index) {
	register := func(si *scippb.SymbolInformation, language string) {
		if si == nil || si.Symbol == "" {
			return
		}
		if _, ok := im.info[si.Symbol]; !ok {
			im.info[si.Symbol] = si
		}
		if language != "" && im.lang[si.Symbol] == "" {
			im.lang[si.Symbol] = strings.ToLower(language)
		}
	}
	for _, doc := range index.Documents {
		for _, si := range doc.Symbols {
			register(si, doc.Language)
		}
	}
	for _, si := range index.ExternalSymbols {
		register(si, "")
	}

	// symbols that only occur without SymbolInformation
	for _, doc := range index.Documents {
		for _, occ := range doc.Occurrences {
			im.parse(occ.Symbol)
		}
	}
	for _, si := range im.info {
		for _, rel := range si.Relationships {
			im.parse(rel.Symbol)
		}
		im.parse(si.EnclosingSymbol)
	}
	for usr, si := range im.info {
		sym := im.parse(usr)
		if sym == nil {
			continue
		}
		im.kinds[usr] = kindFromSCIP(si.Kind.String(), sym)
		if si.EnclosingSymbol != "" {
			im.parents[usr] = si.EnclosingSymbol
		}
	}

	for usr, kind := range im.kinds {
		if kind != symbol.KindExtension {
			continue
		}
		for _, rel := range im.info[usr].Relationships {
			if rel.Symbol != "" && rel.Symbol != usr && im.parsed[rel.Symbol] != nil {
				im.extTargets[usr] = rel.Symbol
				break
			}
		}
	}
	for usr := range im.parsed {
		if parent := im.parentOf(usr); parent != "" && im.kinds[parent] == symbol.KindExtension {
			im.extMembers[parent] = true
		}
	}
}

// parse memoises parseSCIPSymbol. Local and malformed symbols return nil.
// It writes importer state and must not run during document conversion.
func (im *scipImporter) parse(usr string) *scipSymbol {
	if usr == "" {
		return nil
	}
	if sym, ok := im.parsed[usr]; ok {
		return sym
	}
	sym, err := parseSCIPSymbol(usr)
	if err != nil || sym.local {
		if err != nil {
			im.logger.Debug("Skipping unparseable SCIP symbol", "symbol", usr, "error", err)
		}
		return nil
	}
	im.parsed[usr] = sym
	if _, ok := im.kinds[usr]; !ok {
		im.kinds[usr] = sym.inferKind()
	}
	return sym
}

func (im *scipImporter) parentOf(usr string) string {
	if p, ok := im.parents[usr]; ok {
		return p
	}
	if sym := im.parsed[usr]; sym != nil {
		return sym.ParentUSR()
	}
	return ""
}

func (im *scipImporter) kindOf(usr string) symbol.Kind {
	if k, ok := im.kinds[usr]; ok {
		return k
	}
	return symbol.KindUnsupported
}

func (im *scipImporter) isFunction(usr string) bool {
	return im.kindOf(usr).IsFunction() || isFunctionSymbol(usr)
}

// droppedExtension reports an extension without members. It is represented
// only by a bare reference to the extended type.
func (im *scipImporter) droppedExtension(usr string) bool {
	return im.extTargets[usr] != "" && !im.extMembers[usr]
}

func (im *scipImporter) symbolFor(usr string) symbol.Symbol {
	sym := im.parsed[usr]
	name := ""
	if si := im.info[usr]; si != nil {
		name = si.DisplayName
	}
	if target := im.extTargets[usr]; target != "" {
		name = im.symbolName(target)
	}
	if name == "" && sym != nil {
		name = sym.Name()
	}
	language := im.lang[usr]
	if language == "" && sym != nil {
		language = sym.Language()
	}
	return symbol.Symbol{USR: usr, Name: name, Kind: im.kindOf(usr), Language: language}
}

func (im *scipImporter) symbolName(usr string) string {
	if si := im.info[usr]; si != nil && si.DisplayName != "" {
		return si.DisplayName
	}
	if sym := im.parsed[usr]; sym != nil {
		return sym.Name()
	}
	return ""
}

func (im *scipImporter) excluded(relativePath string) bool {
	for _, pattern := range im.exclude {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(relativePath)); ok {
			return true
		}
	}
	return false
}

// documentModule names the package that defines symbols in doc.
func (im *scipImporter) documentModule(doc *scippb.Document) string {
	for _, occ := range doc.Occurrences {
		if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) == 0 {
			continue
		}
		if sym := im.parsed[occ.Symbol]; sym != nil && sym.pkg != "" {
			return sym.pkg
		}
	}
	return ""
}

// convertDocument converts one document. It only reads importer state.
func (im *scipImporter) convertDocument(doc *scippb.Document) []symbol.Occurrence {
	if im.excluded(doc.RelativePath) {
		return nil
	}
	path := paths.JoinProjectPath(im.root, doc.RelativePath)
	module := im.documentModule(doc)
	spans := buildFunctionSpans(doc, im.isFunction)

	occs := make([]*scippb.Occurrence, 0, len(doc.Occurrences))
	for _, occ := range doc.Occurrences {
		if len(occ.Range) >= 3 && im.parsed[occ.Symbol] != nil {
			occs = append(occs, occ)
		}
	}
	slices.SortStableFunc(occs, func(a, b *scippb.Occurrence) int {
		return cmp.Or(cmp.Compare(a.Range[0], b.Range[0]), cmp.Compare(a.Range[1], b.Range[1]))
	})

	out := make([]symbol.Occurrence, 0, len(occs))
	for _, occ := range occs {
		loc := symbol.NewLocation(path, module, int(occ.Range[0])+1, int(occ.Range[1])+1, 0)
		roles := convertRoles(occ.SymbolRoles)
		usr := occ.Symbol

		if roles.Intersects(symbol.RoleDefinition | symbol.RoleDeclaration) {
			out = im.appendDefinition(out, usr, loc, roles)
			continue
		}

		o := symbol.Occurrence{Symbol: im.symbolFor(usr), Location: loc, Roles: roles}
		if fn := spans.enclosing(int(occ.Range[0])); fn != "" && fn != usr {
			if im.isFunction(usr) {
				o.Roles |= symbol.RoleCall
				o.Relations = []symbol.Relation{{Symbol: im.symbolFor(fn), Roles: symbol.RoleCalledBy | symbol.RoleContainedBy}}
			} else {
				o.Relations = []symbol.Relation{{Symbol: im.symbolFor(fn), Roles: symbol.RoleContainedBy}}
			}
		}
		out = append(out, o)
	}
	return out
}

// appendDefinition emits a definition occurrence and the synthetic
// occurrences derived from its relationships.
func (im *scipImporter) appendDefinition(out []symbol.Occurrence, usr string, loc symbol.Location, roles symbol.Role) []symbol.Occurrence {
	if target := im.extTargets[usr]; target != "" && !im.extMembers[usr] {
		return append(out, symbol.Occurrence{Symbol: im.symbolFor(target), Location: loc, Roles: symbol.RoleReference})
	}

	def := symbol.Occurrence{Symbol: im.symbolFor(usr), Location: loc, Roles: roles}
	if parent := im.parentOf(usr); parent != "" && im.parsed[parent] != nil {
		def.Roles |= symbol.RoleChildOf
		def.Relations = append(def.Relations, symbol.Relation{Symbol: im.symbolFor(parent), Roles: symbol.RoleChildOf})
	}

	var synthetic []symbol.Occurrence
	if target := im.extTargets[usr]; target != "" {
		synthetic = append(synthetic, symbol.Occurrence{
			Symbol:    im.symbolFor(target),
			Location:  loc,
			Roles:     symbol.RoleReference | symbol.RoleExtendedBy,
			Relations: []symbol.Relation{{Symbol: def.Symbol, Roles: symbol.RoleExtendedBy}},
		})
	} else if si := im.info[usr]; si != nil {
		for _, rel := range si.Relationships {
			if !rel.IsImplementation || rel.Symbol == usr || im.parsed[rel.Symbol] == nil {
				continue
			}
			if im.isFunction(usr) {
				def.Relations = append(def.Relations, symbol.Relation{Symbol: im.symbolFor(rel.Symbol), Roles: symbol.RoleOverrideOf})
				continue
			}
			synthetic = append(synthetic, symbol.Occurrence{
				Symbol:    im.symbolFor(rel.Symbol),
				Location:  loc,
				Roles:     symbol.RoleReference | symbol.RoleBaseOf,
				Relations: []symbol.Relation{{Symbol: def.Symbol, Roles: symbol.RoleBaseOf}},
			})
		}
	}

	out = append(out, def)
	return append(out, synthetic...)
}

// convertRoles maps SCIP symbol roles onto the role set.
func convertRoles(scipRoles int32) symbol.Role {
	var roles symbol.Role
	switch {
	case scipRoles&int32(scippb.SymbolRole_Definition) != 0:
		roles = symbol.RoleDefinition
	case scipRoles&int32(scippb.SymbolRole_ForwardDefinition) != 0:
		roles = symbol.RoleDeclaration
	default:
		// Plain references count as reads. A bare reference role is
		// reserved for empty extensions.
		roles = symbol.RoleReference
		write := scipRoles&int32(scippb.SymbolRole_WriteAccess) != 0
		if write {
			roles |= symbol.RoleWrite
		}
		if !write || scipRoles&int32(scippb.SymbolRole_ReadAccess) != 0 {
			roles |= symbol.RoleRead
		}
	}
	if scipRoles&int32(scippb.SymbolRole_Generated) != 0 {
		roles |= symbol.RoleImplicit
	}
	return roles
}
