// Package extract turns free-form model output into curriculum records.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencePattern         = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n(.*?)```")
	trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)
	quoteReplacer        = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`,
		"‘", "'", "’", "'",
	)
)

// ErrNoJSON is returned when the text holds no JSON object or array.
var ErrNoJSON = errors.New("no JSON object or array found")

// JSON locates the JSON payload in raw model output and decodes it into
// target. It tolerates markdown code fences, prose around the payload,
// typographic quotes and trailing commas. Fenced blocks win over bare text;
// within each, the longest value that parses wins.
func JSON(raw string, target any) error {
	fenced, bare := candidates(raw)
	if len(fenced) == 0 && len(bare) == 0 {
		return ErrNoJSON
	}

	payload, ok := longestValid(fenced)
	if !ok {
		payload, ok = longestValid(bare)
	}
	if !ok {
		first := append(fenced, bare...)[0]
		return fmt.Errorf("parse JSON: %w", json.Unmarshal([]byte(first), target))
	}

	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	return nil
}

// maxStarts caps how many opening brackets are tried in bare text.
const maxStarts = 64

// candidates returns the balanced JSON spans found inside code fences and in
// the text as a whole.
func candidates(s string) (fenced, bare []string) {
	for _, m := range fencePattern.FindAllStringSubmatch(s, -1) {
		if c, ok := balanced(m[1]); ok {
			fenced = append(fenced, c)
		}
	}

	offset := 0
	for n := 0; n < maxStarts; n++ {
		i := strings.IndexAny(s[offset:], "{[")
		if i == -1 {
			break
		}
		if c, ok := balanced(s[offset+i:]); ok {
			bare = append(bare, c)
		}
		offset += i + 1
	}
	return fenced, bare
}

// longestValid returns the longest candidate that is valid JSON, repairing
// candidates that are not.
func longestValid(cands []string) (string, bool) {
	best := ""
	for _, c := range cands {
		if len(c) <= len(best) {
			continue
		}
		if json.Valid([]byte(c)) {
			best = c
			continue
		}
		if r := repair(c); json.Valid([]byte(r)) && len(r) > len(best) {
			best = r
		}
	}
	return best, best != ""
}

// balanced returns the first complete JSON object or array in s. Brackets
// inside string literals are ignored. When the value is never closed it falls
// back to the span ending at the last closing bracket.
func balanced(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return "", false
	}

	var stack []byte
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return fallbackSpan(s, start)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], true
			}
		}
	}
	return fallbackSpan(s, start)
}

func fallbackSpan(s string, start int) (string, bool) {
	end := strings.LastIndexAny(s, "}]")
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// repair fixes the defects models most often introduce into JSON.
func repair(s string) string {
	s = quoteReplacer.Replace(s)
	return trailingCommaPattern.ReplaceAllString(s, "$1")
}

// list decodes a JSON array from raw. Models sometimes wrap the array in an
// object, so {"<key>": [...]} and objects with a single array field are
// accepted too.
func list(raw, key string) ([]json.RawMessage, error) {
	var value json.RawMessage
	if err := JSON(raw, &value); err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(value, &items); err == nil {
		return items, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(value, &obj); err != nil {
		return nil, fmt.Errorf("expected a JSON array: %w", err)
	}
	if inner, ok := obj[key]; ok {
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("field %q is not an array: %w", key, err)
		}
		return items, nil
	}

	var found []json.RawMessage
	arrays := 0
	for _, v := range obj {
		var arr []json.RawMessage
		if json.Unmarshal(v, &arr) == nil {
			found = arr
			arrays++
		}
	}
	if arrays != 1 {
		return nil, fmt.Errorf("expected a JSON array or an object with a %q array", key)
	}
	return found, nil
}
