package cors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfigRead means the policy document could not be read from disk.
	ErrConfigRead = errors.New("cors: config read failed")
	// ErrConfigParse means the policy document is not well-formed.
	ErrConfigParse = errors.New("cors: config parse failed")
)

// Rule is a single CORS rule as stored in the policy document.
type Rule struct {
	Origins         []string `json:"origin" yaml:"origin"`
	Methods         []string `json:"method" yaml:"method"`
	ResponseHeaders []string `json:"responseHeader" yaml:"responseHeader"`
	MaxAgeSeconds   int      `json:"maxAgeSeconds" yaml:"maxAgeSeconds"`
}

// Policy is an ordered list of rules. Remote services may reorder it.
type Policy []Rule

// Load reads and parses the policy document at path. YAML documents are
// recognized by extension; anything else is parsed as JSON.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigRead, path, err)
	}

	var policy Policy
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &policy)
	default:
		err = json.Unmarshal(data, &policy)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigParse, path, err)
	}
	if policy == nil {
		policy = Policy{}
	}

	return policy, nil
}

// Resolve maps a relative document path onto baseDir, the directory of the
// invoking executable. When the file does not exist there the path is left
// relative to the working directory.
func Resolve(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	candidate := filepath.Join(baseDir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

// ExecutableDir returns the directory holding the running binary, or "" if
// it cannot be determined.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// Equal reports whether two policies hold the same rules, ignoring rule order
// and the order of values inside each rule.
func Equal(a, b Policy) bool {
	return cmp.Equal(normalize(a), normalize(b), cmpopts.SortSlices(lessRule))
}

// Diff returns a human readable difference between two policies, empty when
// they are Equal.
func Diff(want, got Policy) string {
	return cmp.Diff(normalize(want), normalize(got), cmpopts.SortSlices(lessRule))
}

func normalize(p Policy) Policy {
	out := make(Policy, 0, len(p))
	for _, r := range p {
		out = append(out, Rule{
			Origins:         sortedSet(r.Origins),
			Methods:         sortedSet(r.Methods),
			ResponseHeaders: sortedSet(r.ResponseHeaders),
			MaxAgeSeconds:   r.MaxAgeSeconds,
		})
	}
	return out
}

func sortedSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func lessRule(a, b Rule) bool {
	return compareRules(a, b) < 0
}

// compareRules orders normalized rules field by field.
func compareRules(a, b Rule) int {
	if c := slices.Compare(a.Origins, b.Origins); c != 0 {
		return c
	}
	if c := slices.Compare(a.Methods, b.Methods); c != 0 {
		return c
	}
	if c := slices.Compare(a.ResponseHeaders, b.ResponseHeaders); c != 0 {
		return c
	}
	switch {
	case a.MaxAgeSeconds < b.MaxAgeSeconds:
		return -1
	case a.MaxAgeSeconds > b.MaxAgeSeconds:
		return 1
	}
	return 0
}
