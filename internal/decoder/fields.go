package decoder

import (
	"github.com/tidwall/gjson"

	"github.com/feral-file/ff-social/internal/objectstore"
)

// TableID extracts the handle of a nested table, accepting both the
// {fields:{id:{id}}} and the flattened {id:{id}} renderings.
func TableID(v gjson.Result) string {
	if id := v.Get("fields.id.id"); id.Type == gjson.String {
		return id.String()
	}
	if id := v.Get("id.id"); id.Type == gjson.String {
		return id.String()
	}
	return ""
}

// ReadVector reads a vector of strings rendered either as a JSON array
// or as {fields:{contents:[...]}}. Non-string members are dropped.
func ReadVector(v gjson.Result) []string {
	arr := v
	if !arr.IsArray() {
		arr = v.Get("fields.contents")
	}
	if !arr.IsArray() {
		return []string{}
	}
	out := make([]string, 0, len(arr.Array()))
	for _, item := range arr.Array() {
		if item.Type == gjson.String {
			out = append(out, item.String())
		}
	}
	return out
}

// EntryValue returns the value member of a dynamic field entry object
func EntryValue(o *objectstore.Object) gjson.Result {
	if o == nil || len(o.Fields) == 0 {
		return gjson.Result{}
	}
	f := gjson.ParseBytes(o.Fields)
	if v := f.Get("value"); v.Exists() {
		return v
	}
	return f.Get("val")
}

// EntryVector reads an entry whose value is a vector of ids
func EntryVector(o *objectstore.Object) []string {
	return ReadVector(EntryValue(o))
}

// EntryCount reads an entry whose value is an unsigned counter; absent or malformed values are 0
func EntryCount(o *objectstore.Object) uint64 {
	v := EntryValue(o)
	switch v.Type {
	case gjson.Number, gjson.String:
		return v.Uint()
	}
	return 0
}

// EntryID reads an entry whose value is a single id
func EntryID(o *objectstore.Object) string {
	v := EntryValue(o)
	if v.Type == gjson.String {
		return v.String()
	}
	if id := v.Get("fields.contents"); id.Type == gjson.String {
		return id.String()
	}
	if id := v.Get("fields.id"); id.Type == gjson.String {
		return id.String()
	}
	return ""
}
