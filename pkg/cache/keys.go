package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
)

// keyVersion is mixed into every digest. Bump it when the diagram or
// artifact encoding changes so stale entries stop matching.
const keyVersion = "kubetopo/v1"

// Keyer derives cache keys. Keys have the form [namespace:]kind:digest where
// digest covers everything that affects the cached value, so equal inputs
// share an entry.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

type keyer struct {
	namespace string
}

// NewDefaultKeyer returns a keyer without a namespace.
func NewDefaultKeyer() Keyer {
	return keyer{}
}

// NewNamespacedKeyer returns a keyer whose keys start with namespace, so
// several clusters or environments can share one Redis or MongoDB backend
// without reading each other's layouts. An empty namespace is the default
// keyer.
func NewNamespacedKeyer(namespace string) Keyer {
	return keyer{namespace: strings.Trim(namespace, ":")}
}

func (k keyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.key("layout", struct {
		Graph string `json:"graph"`
		LayoutKeyOpts
	}{graphHash, opts})
}

func (k keyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.key("artifact", struct {
		Layout string `json:"layout"`
		ArtifactKeyOpts
	}{layoutHash, opts})
}

func (k keyer) key(kind string, v any) string {
	h := sha256.New()
	io.WriteString(h, keyVersion)
	h.Write([]byte{0})
	// Encoding a struct of strings, bools and floats cannot fail.
	_ = json.NewEncoder(h).Encode(v)
	key := kind + ":" + hex.EncodeToString(h.Sum(nil))
	if k.namespace != "" {
		key = k.namespace + ":" + key
	}
	return key
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// KeyType returns the kind segment of a key ("layout", "artifact"),
// ignoring any namespace.
func KeyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
