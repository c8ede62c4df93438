package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StructureEntry declares where one concept should sit in a scheme
type StructureEntry struct {
	ID        int64
	Parent    *int64 // nil declares a top concept
	HasParent bool   // false when the input carried no parent key at all
	Remove    bool
}

// Structure is a declared flat tree; slice order is the sibling order
type Structure []StructureEntry

// ParentOf returns the declared parent id, or 0 for top concepts
func (e StructureEntry) ParentOf() int64 {
	if e.Parent == nil {
		return 0
	}
	return *e.Parent
}

// ParseStructure decodes a structure from JSON. Two shapes are accepted: an
// array of {"id", "parent", "remove"} objects, or an object keyed by concept
// id whose key order is kept.
func ParseStructure(data []byte) (Structure, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty structure")
	}

	switch trimmed[0] {
	case '[':
		var raw []map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("decode structure: %w", err)
		}
		out := make(Structure, 0, len(raw))
		for i, fields := range raw {
			idRaw, ok := fields["id"]
			if !ok {
				return nil, fmt.Errorf("entry %d: missing id", i)
			}
			id, err := decodeID(idRaw)
			if err != nil || id == nil {
				return nil, fmt.Errorf("entry %d: invalid id %s", i, string(idRaw))
			}
			entry, err := decodeEntry(*id, fields)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			out = append(out, entry)
		}
		return out, nil

	case '{':
		return parseStructureObject(trimmed)

	default:
		return nil, fmt.Errorf("structure must be a JSON array or object")
	}
}

func parseStructureObject(data []byte) (Structure, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode structure: %w", err)
	}

	var out Structure
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode structure: %w", err)
		}
		key, _ := tok.(string)
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid concept id %q", key)
		}

		var fields map[string]json.RawMessage
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("concept %d: %w", id, err)
		}
		entry, err := decodeEntry(id, fields)
		if err != nil {
			return nil, fmt.Errorf("concept %d: %w", id, err)
		}
		out = append(out, entry)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode structure: %w", err)
	}
	return out, nil
}

func decodeEntry(id int64, fields map[string]json.RawMessage) (StructureEntry, error) {
	entry := StructureEntry{ID: id}

	if raw, ok := fields["parent"]; ok {
		entry.HasParent = true
		parent, err := decodeID(raw)
		if err != nil {
			return entry, fmt.Errorf("invalid parent %s", string(raw))
		}
		entry.Parent = parent
	}

	if raw, ok := fields["remove"]; ok {
		remove, err := decodeBool(raw)
		if err != nil {
			return entry, fmt.Errorf("invalid remove flag %s", string(raw))
		}
		entry.Remove = remove
	}

	return entry, nil
}

// decodeID accepts null, numbers and numeric strings. Null, "" and 0 mean no id.
func decodeID(raw json.RawMessage) (*int64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}

	var id int64
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		id = int64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		id = n
	default:
		return nil, fmt.Errorf("unexpected %T", v)
	}

	if id == 0 {
		return nil, nil
	}
	return &id, nil
}

func decodeBool(raw json.RawMessage) (bool, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, err
	}
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case float64:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "0", "false", "no":
			return false, nil
		default:
			return true, nil
		}
	default:
		return false, fmt.Errorf("unexpected %T", v)
	}
}
