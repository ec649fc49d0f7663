package mirror

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

// Codec defines the serialization contract for the mirrored file.
// Each load and save round-trips the whole value through the codec.
// Implement this interface to use formats not provided here.
type Codec interface {
	// Marshal serializes a value into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes bytes into a value.
	Unmarshal(data []byte, v any) error

	// ContentType returns the MIME type for observability and debugging.
	ContentType() string
}

// prettyOptions renders two-space indented JSON with object keys sorted.
var prettyOptions = &pretty.Options{
	Width:    80,
	Indent:   "  ",
	SortKeys: true,
}

// JSONCodec implements Codec using encoding/json. Output is pretty-printed
// with object keys sorted so the file diffs cleanly.
type JSONCodec struct{}

// Marshal serializes v into indented, key-sorted JSON.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(data, prettyOptions), nil
}

// Unmarshal deserializes JSON bytes into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string {
	return "application/json"
}

// Ensure JSONCodec implements Codec.
var _ Codec = JSONCodec{}

// YAMLCodec implements Codec using gopkg.in/yaml.v3.
type YAMLCodec struct{}

// Marshal serializes v into YAML.
func (YAMLCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal deserializes YAML bytes into v.
func (YAMLCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// ContentType returns the YAML MIME type.
func (YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

// Ensure YAMLCodec implements Codec.
var _ Codec = YAMLCodec{}

// TOMLCodec implements Codec using pelletier/go-toml. The value must
// serialize to a table (a struct or a map).
type TOMLCodec struct{}

// Marshal serializes v into TOML.
func (TOMLCodec) Marshal(v any) ([]byte, error) {
	return toml.Marshal(v)
}

// Unmarshal deserializes TOML bytes into v.
func (TOMLCodec) Unmarshal(data []byte, v any) error {
	return toml.Unmarshal(data, v)
}

// ContentType returns the TOML MIME type.
func (TOMLCodec) ContentType() string {
	return "application/toml"
}

// Ensure TOMLCodec implements Codec.
var _ Codec = TOMLCodec{}

// PlistCodec implements Codec as a binary property list.
type PlistCodec struct{}

// Marshal serializes v into a binary property list.
func (PlistCodec) Marshal(v any) ([]byte, error) {
	return plist.Marshal(v, plist.BinaryFormat)
}

// Unmarshal deserializes property list bytes into v. XML, OpenStep and
// binary plists are all accepted.
func (PlistCodec) Unmarshal(data []byte, v any) error {
	_, err := plist.Unmarshal(data, v)
	return err
}

// ContentType returns the binary plist MIME type.
func (PlistCodec) ContentType() string {
	return "application/x-bplist"
}

// Ensure PlistCodec implements Codec.
var _ Codec = PlistCodec{}

// cborMode encodes with canonical (sorted, shortest-form) CBOR so equal
// values always produce equal bytes.
var cborMode = func() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// cborDecMode decodes untyped maps with string keys, matching the other
// codecs, so a CBOR file can be decoded into map[string]any at any depth.
var cborDecMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// CBORCodec implements Codec as canonical CBOR.
type CBORCodec struct{}

// Marshal serializes v into canonical CBOR.
func (CBORCodec) Marshal(v any) ([]byte, error) {
	return cborMode.Marshal(v)
}

// Unmarshal deserializes CBOR bytes into v.
func (CBORCodec) Unmarshal(data []byte, v any) error {
	return cborDecMode.Unmarshal(data, v)
}

// ContentType returns the CBOR MIME type.
func (CBORCodec) ContentType() string {
	return "application/cbor"
}

// Ensure CBORCodec implements Codec.
var _ Codec = CBORCodec{}

// CodecFuncs adapts a pair of caller-supplied functions to the Codec
// interface. A nil MarshalFunc or UnmarshalFunc fails every call in that
// direction.
type CodecFuncs struct {
	MarshalFunc   func(v any) ([]byte, error)
	UnmarshalFunc func(data []byte, v any) error
	Type          string
}

// Marshal calls MarshalFunc.
func (c CodecFuncs) Marshal(v any) ([]byte, error) {
	if c.MarshalFunc == nil {
		return nil, errNoMarshal
	}
	return c.MarshalFunc(v)
}

// Unmarshal calls UnmarshalFunc.
func (c CodecFuncs) Unmarshal(data []byte, v any) error {
	if c.UnmarshalFunc == nil {
		return errNoUnmarshal
	}
	return c.UnmarshalFunc(data, v)
}

// ContentType returns Type, or application/octet-stream when unset.
func (c CodecFuncs) ContentType() string {
	if c.Type == "" {
		return "application/octet-stream"
	}
	return c.Type
}

// Ensure CodecFuncs implements Codec.
var _ Codec = CodecFuncs{}

// CodecForPath picks a built-in codec from the file extension.
// Unknown extensions get JSONCodec.
func CodecForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLCodec{}
	case ".toml":
		return TOMLCodec{}
	case ".plist":
		return PlistCodec{}
	case ".cbor":
		return CBORCodec{}
	default:
		return JSONCodec{}
	}
}

// CodecByName resolves a format name ("json", "yaml", "toml", "plist",
// "cbor") to a built-in codec. The boolean is false for unknown names.
func CodecByName(name string) (Codec, bool) {
	switch strings.ToLower(name) {
	case "json":
		return JSONCodec{}, true
	case "yaml", "yml":
		return YAMLCodec{}, true
	case "toml":
		return TOMLCodec{}, true
	case "plist":
		return PlistCodec{}, true
	case "cbor":
		return CBORCodec{}, true
	default:
		return nil, false
	}
}
