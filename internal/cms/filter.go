package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Match evaluates a query filter against obj. Supported forms:
//
//	"id" | "slug" | "title": value          exact match
//	"metadata.<field>": value               equality, or membership when the
//	                                        stored field is an array (array
//	                                        elements may be ids or objects
//	                                        carrying an "id")
//	"<key>": {"$regex": p, "$options": "i"} regular expression match
//	"$or": [filter, ...]                    any sub-filter matches
//
// All top-level keys must match. The "type" key is ignored; callers select
// the type before filtering.
func Match(obj Object, filter map[string]any) (bool, error) {
	var metadata map[string]any
	if len(obj.Metadata) > 0 {
		if err := json.Unmarshal(obj.Metadata, &metadata); err != nil {
			return false, fmt.Errorf("invalid metadata for %s: %w", obj.ID, err)
		}
	}
	return matchFilter(obj, metadata, filter)
}

func matchFilter(obj Object, metadata map[string]any, filter map[string]any) (bool, error) {
	for key, want := range filter {
		var ok bool
		var err error

		switch {
		case key == "type":
			continue
		case key == "$or":
			ok, err = matchAny(obj, metadata, want)
		default:
			got, present := fieldValue(obj, metadata, key)
			ok, err = matchValue(got, present, want)
		}
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchAny(obj Object, metadata map[string]any, clauses any) (bool, error) {
	list, ok := clauses.([]any)
	if !ok {
		if maps, isMaps := clauses.([]map[string]any); isMaps {
			list = make([]any, len(maps))
			for i, m := range maps {
				list[i] = m
			}
		} else {
			return false, fmt.Errorf("$or expects a list of filters, got %T", clauses)
		}
	}

	for _, clause := range list {
		sub, ok := clause.(map[string]any)
		if !ok {
			return false, fmt.Errorf("$or clause must be a filter, got %T", clause)
		}
		matched, err := matchFilter(obj, metadata, sub)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func fieldValue(obj Object, metadata map[string]any, key string) (any, bool) {
	switch key {
	case "id":
		return obj.ID, true
	case "slug":
		return obj.Slug, true
	case "title":
		return obj.Title, true
	}

	field, ok := strings.CutPrefix(key, "metadata.")
	if !ok || metadata == nil {
		return nil, false
	}
	value, ok := metadata[field]
	return value, ok
}

func matchValue(got any, present bool, want any) (bool, error) {
	if op, ok := want.(map[string]any); ok {
		if pattern, isRegex := op["$regex"]; isRegex {
			return matchRegex(got, present, pattern, op["$options"])
		}
	}
	if !present {
		return false, nil
	}

	if list, ok := got.([]any); ok {
		for _, elem := range list {
			if m, isMap := elem.(map[string]any); isMap {
				elem = m["id"]
			}
			if equalValues(elem, want) {
				return true, nil
			}
		}
		return false, nil
	}
	if m, ok := got.(map[string]any); ok {
		if id, hasID := m["id"]; hasID && equalValues(id, want) {
			return true, nil
		}
	}
	return equalValues(got, want), nil
}

func matchRegex(got any, present bool, pattern, options any) (bool, error) {
	p, ok := pattern.(string)
	if !ok {
		return false, fmt.Errorf("$regex expects a string, got %T", pattern)
	}
	if opts, _ := options.(string); strings.Contains(opts, "i") {
		p = "(?i)" + p
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return false, fmt.Errorf("invalid $regex %q: %w", pattern, err)
	}

	if !present {
		return false, nil
	}
	s, ok := got.(string)
	if !ok {
		return false, nil
	}
	return re.MatchString(s), nil
}

// equalValues compares by JSON encoding so 5 and 5.0 are equal.
func equalValues(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
