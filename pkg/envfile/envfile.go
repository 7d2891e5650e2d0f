package envfile

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Map holds key/value pairs resolved from a secrets file and the calling
// environment.
type Map map[string]string

// Load reads a secrets/env file into a Map. A missing file is not an error;
// required keys are validated later against the merged view.
//
// Line rules: blank lines and lines whose first non-space byte is '#' are
// skipped. Every other line splits on the FIRST '='; the key is trimmed of
// surrounding whitespace (a leading "export " is tolerated and stripped),
// the value is the raw remainder, not trimmed, so intentional trailing
// content survives. Lines without '=' are skipped.
func Load(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Map{}, nil
		}
		return nil, fmt.Errorf("failed to open env file %s: %w", path, err)
	}
	defer f.Close()

	vals := Map{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		if key == "" {
			continue
		}
		vals[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return vals, nil
}

// Merge overlays the calling-process environment over file values. The file
// supplies defaults only for keys the environment does not already set; the
// calling environment always wins. environ entries are "KEY=value" as
// returned by os.Environ.
func Merge(fileVals Map, environ []string) Map {
	merged := make(Map, len(fileVals)+len(environ))
	for k, v := range fileVals {
		merged[k] = v
	}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		merged[k] = v
	}
	return merged
}

// Write renders vals as KEY=value lines, sorted by key, with 0600
// permissions. Values are written verbatim so Load reads back exactly what
// was given. Used by setup to create the initial secrets file; never called
// on files the operator already owns.
func Write(path string, vals Map) error {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, vals[k])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write env file %s: %w", path, err)
	}
	return nil
}
