package meta

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// AssetObject is a content-addressed asset. Only Hash decides where it is
// stored and fetched from.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// StoragePath is the object's path relative to the assets root, using
// forward slashes: objects/<first two hex digits>/<hash>.
func (o AssetObject) StoragePath() string {
	return path.Join("objects", o.Hash[:2], o.Hash)
}

// URL is the object's location under the asset CDN base URL.
func (o AssetObject) URL(base string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), o.Hash[:2], o.Hash)
}

// AssetIndex maps logical asset names to objects.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

// DecodeAssetIndex parses an asset index and rejects hashes that could not
// name a storage path.
func DecodeAssetIndex(data []byte, source string) (*AssetIndex, error) {
	var idx AssetIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, &crerrors.DescriptorError{Source: source, Err: err}
	}
	for name, obj := range idx.Objects {
		if !isHexHash(obj.Hash) {
			return nil, &crerrors.DescriptorError{
				Source: source,
				Err:    fmt.Errorf("asset %q has invalid hash %q", name, obj.Hash),
			}
		}
	}
	return &idx, nil
}

// UniqueObjects returns each distinct object once, ordered by hash. Several
// names may share one object.
func (idx *AssetIndex) UniqueObjects() []AssetObject {
	seen := make(map[string]bool, len(idx.Objects))
	objects := make([]AssetObject, 0, len(idx.Objects))
	for _, obj := range idx.Objects {
		if seen[obj.Hash] {
			continue
		}
		seen[obj.Hash] = true
		objects = append(objects, obj)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Hash < objects[j].Hash })
	return objects
}

func isHexHash(s string) bool {
	if len(s) < 2 {
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
