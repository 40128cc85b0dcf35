// Package overlay loads architecture overlay (.aro) files: declarative
// JSON documents describing a target's origin address, symbol table,
// and vector table layout, so the inference engine in internal/hac65
// never has to know a target architecture's specifics in code.
//
// Grounded on original_source/Loader.cpp's Loader::LoadAroJson /
// LoadAroStream / LoadAroFile / LoadBuiltinArchitecture pipeline.
package overlay

import (
	"bufio"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"

	"hac65/internal/hac65"
)

// MaxObjectSize is the largest object image LoadObjectFile accepts,
// matching the 6502's full 64K address space.
const MaxObjectSize = 0x10000

// LoadObjectFile reads the [startPosition, endPosition] byte range of
// filename (endPosition of -1 means "to the end of the file") and
// returns its bytes together with their MD5 fingerprint, matching
// Loader::LoadObjectFile's partial-read and size-validation rules.
func LoadObjectFile(filename string, startPosition, endPosition int64) ([]byte, hac65.Fingerprint, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, hac65.Fingerprint{}, hac65.NewUsageError("cannot find object-file '%s'", filename)
	}
	size := info.Size()

	if startPosition >= size {
		return nil, hac65.Fingerprint{}, hac65.NewUsageError(
			"invalid start position $%X (exceeds object file size $%X)", startPosition, size)
	}
	if endPosition == -1 {
		endPosition = size - 1
	}
	if endPosition < startPosition {
		return nil, hac65.Fingerprint{}, hac65.NewUsageError(
			"invalid start position $%X (exceeds end position $%X)", startPosition, endPosition)
	}
	if endPosition >= size {
		return nil, hac65.Fingerprint{}, hac65.NewUsageError(
			"invalid end position $%X (exceeds object file size $%X)", endPosition, size)
	}

	objectSize := endPosition - startPosition + 1
	if objectSize > MaxObjectSize {
		return nil, hac65.Fingerprint{}, hac65.NewUsageError(
			"invalid object size $%X (exceeds max object size $%X)", objectSize, MaxObjectSize)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, hac65.Fingerprint{}, hac65.NewUsageError("cannot find object-file '%s'", filename)
	}
	defer f.Close()

	data := make([]byte, objectSize)
	if _, err := f.ReadAt(data, startPosition); err != nil {
		return nil, hac65.Fingerprint{}, hac65.NewUsageError("error reading object-file '%s': %v", filename, err)
	}

	return data, hac65.Fingerprint(md5.Sum(data)), nil
}

// Declarer is the subset of *hac65.Analyzer the loader populates. It
// exists so this package depends only on the declarations it actually
// issues, not on the full analyzer (mirroring the original's IAnalyzer
// interface boundary between Loader and Analyzer).
type Declarer interface {
	HasOriginAddress() bool
	DeclareOriginAddress(addr hac65.Address)
	DeclareEquate(equate string, value hac65.Address)
	DeclareCodeLabel(label string, addr hac65.Address)
	DeclareDataLabel(label string, addr hac65.Address)
	DeclareNormalVectorTable(addr hac65.Address, count uint16)
	DeclareIndirectVectorTable(addr hac65.Address, count uint16)
	DeclareKeyedVectorTable(addr hac65.Address, count uint16)
	DeclareKeyedIndirectVectorTable(addr hac65.Address, count uint16)
	DeclareKeyedIndirectMinusOneVectorTable(addr hac65.Address, count uint16)
	DeclareJumpVectorTable(addr hac65.Address, count uint16)
	DeclareMinusOneVectorTable(addr hac65.Address, count uint16)
	DeclareSplitVectorTable(addr hac65.Address, count uint16)
	DeclareLand(addr hac65.Address) bool
	DeclareLeap(addr hac65.Address) bool
}

// structureKind identifies one of the eight JSON "structures" keys.
type structureKind int

const (
	skUnknown structureKind = iota
	skNormalVectorTable
	skIndirectVectorTable
	skKeyedVectorTable
	skKeyedIndirectVectorTable
	skKeyedIndirectMinusOneVectorTable
	skJumpVectorTable
	skMinusOneVectorTable
	skSplitVectorTable
)

var structureKinds = map[string]structureKind{
	"normal_vector_tables":                   skNormalVectorTable,
	"indirect_vector_tables":                 skIndirectVectorTable,
	"keyed_vector_tables":                    skKeyedVectorTable,
	"keyed_indirect_vector_tables":           skKeyedIndirectVectorTable,
	"keyed_indirect_minus_one_vector_tables": skKeyedIndirectMinusOneVectorTable,
	"jump_vector_tables":                     skJumpVectorTable,
	"minus_one_vector_tables":                skMinusOneVectorTable,
	"split_vector_tables":                    skSplitVectorTable,
}

func lookupStructureKind(key string) structureKind {
	if k, ok := structureKinds[key]; ok {
		return k
	}
	return skUnknown
}

// DefaultArchitecture is used when the caller never names one
// explicitly (the CLI's -A/--arch flag).
const DefaultArchitecture = "Builtin_MOS6502"

// builtinMOS6502 is the one architecture overlay baked into the binary:
// a generic 6502 image has no OS-specific vector layout to speak of,
// only the CPU's own three-entry NMI/RESET/IRQ vector at $FFFA.
var builtinMOS6502 = map[string]interface{}{
	"structures": map[string]interface{}{
		"normal_vector_tables": map[string]interface{}{
			"$FFFA": 3,
		},
	},
}

var includeDirective = regexp.MustCompile(`(?i)^\s*@include\s*"([A-Za-z0-9._-]{1,20})"\s*$`)

const maxIncludeDepth = 10

// Overlay records one successfully-loaded architecture document, kept
// for the "-R o" overlays report.
type Overlay struct {
	Architecture string
	Document     map[string]interface{}
}

// Loader reads .aro overlay files and issues the declarations they
// describe against a Declarer.
type Loader struct {
	// FS is consulted for .aro files before falling back to builtin
	// architectures; defaults to the OS filesystem via os.DirFS(".")
	// semantics when nil.
	FS fs.FS

	// Trace enables the overlay include trace: a log.Printf line to
	// stderr each time an architecture (or an @include target) is
	// resolved, whether from a file or a builtin. Gated by the CLI's
	// -R o report flag, not printed otherwise.
	Trace bool

	overlays []Overlay
}

// New returns a Loader reading .aro files relative to the current
// directory.
func New() *Loader {
	return &Loader{}
}

// Overlays returns every architecture document loaded so far, most
// recently loaded first (an includer precedes the files it includes).
func (l *Loader) Overlays() []Overlay {
	return append([]Overlay(nil), l.overlays...)
}

// LoadArchitecture loads the named architecture overlay (an
// "<architecture>.aro" file, falling back to a builtin if no such file
// exists) and issues its declarations against d.
func (l *Loader) LoadArchitecture(architecture string, d Declarer) error {
	return l.loadAroFile(architecture, 1, d)
}

func (l *Loader) loadAroFile(architecture string, depth int, d Declarer) error {
	if l.Trace {
		log.Printf("overlay: resolving architecture %q (depth %d)", architecture, depth)
	}

	data, err := l.readFile(architecture + ".aro")
	if err == nil {
		if l.Trace {
			log.Printf("overlay: loaded %s.aro", architecture)
		}
		return l.loadAroStream(data, architecture, depth, d)
	}
	if loaded, berr := l.loadBuiltinArchitecture(architecture, d); berr != nil {
		return berr
	} else if loaded {
		if l.Trace {
			log.Printf("overlay: loaded builtin architecture %s", architecture)
		}
		return nil
	}
	return hac65.NewOverlayError("cannot find .aro file for '%s'", architecture)
}

func (l *Loader) readFile(name string) ([]byte, error) {
	if l.FS != nil {
		return fs.ReadFile(l.FS, name)
	}
	return os.ReadFile(name)
}

func (l *Loader) loadBuiltinArchitecture(architecture string, d Declarer) (bool, error) {
	if architecture != DefaultArchitecture {
		return false, nil
	}
	raw, err := json.Marshal(builtinMOS6502)
	if err != nil {
		return false, hac65.NewOverlayError("internal error marshaling builtin architecture %s: %v", architecture, err)
	}
	return true, l.loadAroJSON(architecture, raw, d)
}

// loadAroStream strips '#' comments and expands '@include "name"'
// directives line by line, then parses the remaining text as one JSON
// document.
func (l *Loader) loadAroStream(content []byte, architecture string, depth int, d Declarer) error {
	if depth > maxIncludeDepth {
		return hac65.NewOverlayError("max architecture overlay depth of %d exceeded by %s", maxIncludeDepth, architecture)
	}

	var jsonText strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		if m := includeDirective.FindStringSubmatch(line); m != nil {
			if err := l.loadAroFile(m[1], depth+1, d); err != nil {
				return err
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			return hac65.NewOverlayError("invalid architecture overlay directive '%s' in %s", line, architecture)
		}
		jsonText.WriteString(line)
		jsonText.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return hac65.NewOverlayError("architecture overlay %s: %v", architecture, err)
	}

	return l.loadAroJSON(architecture, []byte(jsonText.String()), d)
}

func (l *Loader) loadAroJSON(architecture string, raw []byte, d Declarer) error {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return hac65.NewOverlayError("architecture overlay %s: %v", architecture, err)
	}
	if err := applyAroDocument(architecture, doc, d); err != nil {
		return err
	}
	l.overlays = append([]Overlay{{Architecture: architecture, Document: doc}}, l.overlays...)
	return nil
}

// sortedKeys returns a map's string keys in ascending lexical order.
// json.Unmarshal produces map[string]interface{}, and Go deliberately
// randomizes map iteration order; the original's nlohmann::json object
// type is std::map-backed, so its key iteration is alphabetical and
// deterministic. Every place this package walks a JSON object whose
// key order can affect declaration order (and, for lands/labels sharing
// an address, which declaration wins) sorts first to match.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func applyAroDocument(architecture string, doc map[string]interface{}, d Declarer) error {
	for _, key := range sortedKeys(doc) {
		value := doc[key]
		var err error
		switch key {
		case "origin":
			err = applyOrigin(value, d)
		case "equates":
			err = applyEquates(value, d)
		case "code_labels":
			err = applyCodeLabels(value, d)
		case "data_labels":
			err = applyDataLabels(value, d)
		case "structures":
			err = applyStructures(value, d)
		case "expert":
			err = applyExpert(value, d)
		default:
			err = hac65.NewOverlayError("unknown spec: %s", key)
		}
		if err != nil {
			return fmt.Errorf("architecture overlay %s: %w", architecture, err)
		}
	}
	return nil
}

func applyOrigin(value interface{}, d Declarer) error {
	addr, err := jsonValueToAddress(value, "origin")
	if err != nil {
		return err
	}
	if !d.HasOriginAddress() {
		d.DeclareOriginAddress(addr)
	}
	return nil
}

func applyEquates(value interface{}, d Declarer) error {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return hac65.NewOverlayError("malformed equates spec: %v", value)
	}
	for _, name := range sortedKeys(obj) {
		addr, err := jsonValueToAddress(obj[name], "equate "+name)
		if err != nil {
			return err
		}
		d.DeclareEquate(name, addr)
	}
	return nil
}

func applyCodeLabels(value interface{}, d Declarer) error {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return hac65.NewOverlayError("malformed code labels spec: %v", value)
	}
	for _, name := range sortedKeys(obj) {
		addr, err := jsonValueToAddress(obj[name], "code label "+name)
		if err != nil {
			return err
		}
		d.DeclareCodeLabel(name, addr)
	}
	return nil
}

func applyDataLabels(value interface{}, d Declarer) error {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return hac65.NewOverlayError("malformed data labels spec: %v", value)
	}
	for _, name := range sortedKeys(obj) {
		addr, err := jsonValueToAddress(obj[name], "data label "+name)
		if err != nil {
			return err
		}
		d.DeclareDataLabel(name, addr)
	}
	return nil
}

func applyStructures(value interface{}, d Declarer) error {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return hac65.NewOverlayError("malformed structures spec: %v", value)
	}
	for _, structureKey := range sortedKeys(obj) {
		kind := lookupStructureKind(structureKey)
		if kind == skUnknown {
			return hac65.NewOverlayError("unknown vector table kind: %s", structureKey)
		}
		tables, ok := obj[structureKey].(map[string]interface{})
		if !ok {
			return hac65.NewOverlayError("malformed tables spec: %v", obj[structureKey])
		}
		for _, addrKey := range sortedKeys(tables) {
			addr, err := jsonValueToAddress(addrKey, structureKey)
			if err != nil {
				return err
			}
			count, err := jsonValueToAddress(tables[addrKey], structureKey)
			if err != nil {
				return err
			}
			switch kind {
			case skNormalVectorTable:
				d.DeclareNormalVectorTable(addr, uint16(count))
			case skIndirectVectorTable:
				d.DeclareIndirectVectorTable(addr, uint16(count))
			case skKeyedVectorTable:
				d.DeclareKeyedVectorTable(addr, uint16(count))
			case skKeyedIndirectVectorTable:
				d.DeclareKeyedIndirectVectorTable(addr, uint16(count))
			case skKeyedIndirectMinusOneVectorTable:
				d.DeclareKeyedIndirectMinusOneVectorTable(addr, uint16(count))
			case skJumpVectorTable:
				d.DeclareJumpVectorTable(addr, uint16(count))
			case skMinusOneVectorTable:
				d.DeclareMinusOneVectorTable(addr, uint16(count))
			case skSplitVectorTable:
				d.DeclareSplitVectorTable(addr, uint16(count))
			}
		}
	}
	return nil
}

func applyExpert(value interface{}, d Declarer) error {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return hac65.NewOverlayError("malformed expert spec: %v", value)
	}
	for _, expertKey := range sortedKeys(obj) {
		arr, ok := obj[expertKey].([]interface{})
		if !ok {
			return hac65.NewOverlayError("malformed %s spec: %v", expertKey, obj[expertKey])
		}
		switch expertKey {
		case "lands":
			for _, v := range arr {
				addr, err := jsonValueToAddress(v, "land")
				if err != nil {
					return err
				}
				d.DeclareLand(addr)
			}
		case "leaps":
			for _, v := range arr {
				addr, err := jsonValueToAddress(v, "leap")
				if err != nil {
					return err
				}
				d.DeclareLeap(addr)
			}
		default:
			return hac65.NewOverlayError("unknown expert spec: %s", expertKey)
		}
	}
	return nil
}

// jsonValueToAddress accepts a JSON number or a flex-int string ("100",
// "0x64", "$64", "'A"), matching Loader::JsonValueToUint16.
func jsonValueToAddress(value interface{}, context string) (hac65.Address, error) {
	switch v := value.(type) {
	case float64:
		return hac65.Address(v), nil
	case string:
		addr, ok := hac65.FlexIntToUint16(v)
		if !ok {
			return 0, hac65.NewOverlayError("malformed value for %s: %q", context, v)
		}
		return addr, nil
	default:
		return 0, hac65.NewOverlayError("malformed value for %s: %v", context, value)
	}
}
