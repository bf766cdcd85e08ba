package meta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	crerrors "github.com/provide-io/crafter/pkg/errors"
	"github.com/provide-io/crafter/pkg/platform"
)

// Download locates one remote artifact. SHA1 and Size are carried but never
// checked against the bytes received.
type Download struct {
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

// LibraryDownloads holds a library's primary jar and its classifier
// variants.
type LibraryDownloads struct {
	Artifact    *Download           `json:"artifact,omitempty"`
	Classifiers map[string]Download `json:"classifiers,omitempty"`
}

// Extract lists archive paths that must not be unpacked from a natives
// archive.
type Extract struct {
	Exclude []string `json:"exclude,omitempty"`
}

// NativeEntry is one OS → classifier key pair of a library's natives map.
type NativeEntry struct {
	OS         platform.OSName
	Classifier string
}

// Natives keeps natives map entries in wire order, duplicates included, so
// that ambiguous maps can be detected rather than silently collapsed.
type Natives []NativeEntry

func (n *Natives) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("natives: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("natives must be an object, got %v", tok)
	}

	entries := Natives{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("natives key: %w", err)
		}
		key, _ := keyTok.(string)
		var classifier string
		if err := dec.Decode(&classifier); err != nil {
			return fmt.Errorf("natives[%s]: %w", key, err)
		}
		entries = append(entries, NativeEntry{OS: platform.OSName(key), Classifier: classifier})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("natives: %w", err)
	}
	*n = entries
	return nil
}

func (n Natives) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(string(e.OS))
		value, _ := json.Marshal(e.Classifier)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Library is one entry of a descriptor's library list.
type Library struct {
	Name      string           `json:"name,omitempty"`
	Downloads LibraryDownloads `json:"downloads"`
	Extract   *Extract         `json:"extract,omitempty"`
	Natives   Natives          `json:"natives,omitempty"`
	Rules     []platform.Rule  `json:"rules,omitempty"`
}

// Allowed reports whether every rule of the library allows p.
func (l *Library) Allowed(p platform.Platform) bool {
	return platform.AllAllowed(l.Rules, p)
}

// ExtractExcludes returns the declared extraction exclusions, if any.
func (l *Library) ExtractExcludes() []string {
	if l.Extract == nil {
		return nil
	}
	return l.Extract.Exclude
}

// PlatformNative resolves the natives archive for p through the classifiers
// map. It returns nil without error when the library has no natives for p.
func (l *Library) PlatformNative(p platform.Platform) (*Download, error) {
	if len(l.Natives) == 0 || l.Downloads.Classifiers == nil {
		return nil, nil
	}

	var key string
	found := 0
	for _, e := range l.Natives {
		if e.OS == p.OS {
			key = e.Classifier
			found++
		}
	}
	switch {
	case found == 0:
		return nil, nil
	case found > 1:
		return nil, &crerrors.DescriptorError{
			Source: fmt.Sprintf("library %s", l.Name),
			Err:    crerrors.ErrAmbiguousNative,
		}
	}

	key = strings.ReplaceAll(key, "${arch}", archBits(p.Arch))
	dl, ok := l.Downloads.Classifiers[key]
	if !ok {
		return nil, &crerrors.DescriptorError{
			Source: fmt.Sprintf("library %s classifier %q", l.Name, key),
			Err:    crerrors.ErrMissingClassifier,
		}
	}
	return &dl, nil
}

// archBits is the value old descriptors expect for the ${arch} token in
// natives classifier keys.
func archBits(a platform.Arch) string {
	if a == platform.X86 {
		return "32"
	}
	return "64"
}

// JavaVersion is the runtime a descriptor asks for.
type JavaVersion struct {
	Component    string `json:"component,omitempty"`
	MajorVersion int    `json:"majorVersion"`
}

// ClientDownloads holds the downloadable jars of a version.
type ClientDownloads struct {
	Client Download  `json:"client"`
	Server *Download `json:"server,omitempty"`
}

// AssetIndexRef points at a version's asset index.
type AssetIndexRef struct {
	ID        string `json:"id,omitempty"`
	TotalSize int64  `json:"totalSize,omitempty"`
	Download
}

// ClientDescriptor is the per-version client.json document.
type ClientDescriptor struct {
	ID          string
	Type        VersionKind
	Arguments   Arguments
	AssetIndex  AssetIndexRef
	Assets      string
	Downloads   ClientDownloads
	JavaVersion *JavaVersion
	Libraries   []Library
	MainClass   string
}

type descriptorWire struct {
	ID                 string           `json:"id,omitempty"`
	Type               VersionKind      `json:"type,omitempty"`
	Arguments          *json.RawMessage `json:"arguments,omitempty"`
	MinecraftArguments *string          `json:"minecraftArguments,omitempty"`
	AssetIndex         AssetIndexRef    `json:"assetIndex"`
	Assets             string           `json:"assets"`
	Downloads          ClientDownloads  `json:"downloads"`
	JavaVersion        *JavaVersion     `json:"javaVersion,omitempty"`
	Libraries          []Library        `json:"libraries"`
	MainClass          string           `json:"mainClass"`
}

var errMissingArguments = errors.New("descriptor declares neither arguments nor minecraftArguments")

func (d *ClientDescriptor) UnmarshalJSON(data []byte) error {
	var wire descriptorWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var args Arguments
	switch {
	case wire.Arguments != nil && !bytes.Equal(bytes.TrimSpace(*wire.Arguments), []byte("null")):
		if err := json.Unmarshal(*wire.Arguments, &args); err != nil {
			return err
		}
	case wire.MinecraftArguments != nil:
		args = NewLegacyArguments(*wire.MinecraftArguments)
	default:
		return errMissingArguments
	}

	*d = ClientDescriptor{
		ID:          wire.ID,
		Type:        wire.Type,
		Arguments:   args,
		AssetIndex:  wire.AssetIndex,
		Assets:      wire.Assets,
		Downloads:   wire.Downloads,
		JavaVersion: wire.JavaVersion,
		Libraries:   wire.Libraries,
		MainClass:   wire.MainClass,
	}
	return nil
}

func (d ClientDescriptor) MarshalJSON() ([]byte, error) {
	wire := descriptorWire{
		ID:          d.ID,
		Type:        d.Type,
		AssetIndex:  d.AssetIndex,
		Assets:      d.Assets,
		Downloads:   d.Downloads,
		JavaVersion: d.JavaVersion,
		Libraries:   d.Libraries,
		MainClass:   d.MainClass,
	}
	if d.Arguments.Kind == LegacyArguments {
		legacy := d.Arguments.Legacy
		wire.MinecraftArguments = &legacy
	} else {
		raw, err := json.Marshal(d.Arguments)
		if err != nil {
			return nil, err
		}
		msg := json.RawMessage(raw)
		wire.Arguments = &msg
	}
	return json.Marshal(wire)
}

// DecodeDescriptor parses client.json bytes. source names where the bytes
// came from for error reporting.
func DecodeDescriptor(data []byte, source string) (*ClientDescriptor, error) {
	var d ClientDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, &crerrors.DescriptorError{Source: source, Err: err}
	}
	return &d, nil
}

// AllowedLibraries returns the libraries whose rules allow p, in declared
// order.
func (d *ClientDescriptor) AllowedLibraries(p platform.Platform) []Library {
	var libs []Library
	for _, l := range d.Libraries {
		if l.Allowed(p) {
			libs = append(libs, l)
		}
	}
	return libs
}
