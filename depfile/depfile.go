// Package depfile parses make-style ".d" dependency files as emitted by
// "-MMD", returning the header paths a compile unit depends on.
package depfile

import (
	"fmt"
	"os"
	"strings"
)

// Parse reads the dependency file at path and returns the header paths
// listed in its single rule. It handles backslash line continuations,
// skips everything up to and including the first ':', and skips the first
// ".cpp"-suffixed token after the colon (the rule's own source file).
func Parse(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("depfile: open %s: %w", path, err)
	}

	var joined strings.Builder
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasSuffix(line, "\\") {
			joined.WriteString(strings.TrimSuffix(line, "\\"))
		} else {
			joined.WriteString(line)
			joined.WriteByte(' ')
		}
	}

	tokens := strings.Fields(joined.String())

	var headers []string
	afterColon := false
	sawRuleSource := false
	for _, tok := range tokens {
		if !afterColon {
			idx := strings.Index(tok, ":")
			if idx == -1 {
				continue
			}
			afterColon = true
			tok = tok[idx+1:]
			if tok == "" {
				continue
			}
		}

		if !sawRuleSource && strings.HasSuffix(tok, ".cpp") {
			sawRuleSource = true
			continue
		}

		headers = append(headers, tok)
	}

	return headers, nil
}
