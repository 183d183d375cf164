// Package keyvalue contains data types for the `caplink:keyvalue` capability:
// scalar keys, atomic counters, lists and sets.
package keyvalue

const (
	OpAdd            = "Add"
	OpGet            = "Get"
	OpSet            = "Set"
	OpDel            = "Del"
	OpClear          = "Clear"
	OpRange          = "Range"
	OpPush           = "Push"
	OpListItemDelete = "ListItemDelete"
	OpSetAdd         = "SetAdd"
	OpSetRemove      = "SetRemove"
	OpSetUnion       = "SetUnion"
	OpSetIntersect   = "SetIntersection"
	OpSetQuery       = "SetQuery"
	OpKeyExists      = "KeyExists"
)

// GetRequest fetches the value of a scalar key.
type GetRequest struct {
	Key string `cbor:"key"`
}

// GetResponse distinguishes a missing key from an empty value.
type GetResponse struct {
	Value  string `cbor:"value"`
	Exists bool   `cbor:"exists"`
}

// SetRequest writes a scalar key. ExpiresSeconds 0 means no expiration.
type SetRequest struct {
	Key            string `cbor:"key"`
	Value          string `cbor:"value"`
	ExpiresSeconds int32  `cbor:"expiresSeconds"`
}

type SetResponse struct {
	Value string `cbor:"value"`
}

// AddRequest atomically adds to a numeric key and returns the new value.
type AddRequest struct {
	Key   string `cbor:"key"`
	Value int32  `cbor:"value"`
}

type AddResponse struct {
	Value int32 `cbor:"value"`
}

type DelRequest struct {
	Key string `cbor:"key"`
}

type DelResponse struct {
	Key string `cbor:"key"`
}

// ListRangeRequest fetches items Start..Stop (inclusive) of a list key.
type ListRangeRequest struct {
	Key   string `cbor:"key"`
	Start int32  `cbor:"start"`
	Stop  int32  `cbor:"stop"`
}

type ListRangeResponse struct {
	Values []string `cbor:"values,omitempty"`
}

type ListPushRequest struct {
	Key   string `cbor:"key"`
	Value string `cbor:"value"`
}

type ListClearRequest struct {
	Key string `cbor:"key"`
}

type ListDelItemRequest struct {
	Key   string `cbor:"key"`
	Value string `cbor:"value"`
}

type SetAddRequest struct {
	Key   string `cbor:"key"`
	Value string `cbor:"value"`
}

type SetRemoveRequest struct {
	Key   string `cbor:"key"`
	Value string `cbor:"value"`
}

type SetUnionRequest struct {
	Keys []string `cbor:"keys,omitempty"`
}

type SetIntersectionRequest struct {
	Keys []string `cbor:"keys,omitempty"`
}

type SetQueryRequest struct {
	Key string `cbor:"key"`
}

type SetQueryResponse struct {
	Values []string `cbor:"values,omitempty"`
}

type KeyExistsQuery struct {
	Key string `cbor:"key"`
}
