package notify

import (
	"regexp"
	"strings"
)

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// ExtractMentionNames pulls @mention tokens out of a comment body and maps
// them back to display names: tokens use underscores where display names use
// spaces ("@jane_doe" mentions "Jane Doe"). Matching is case-insensitive;
// names are returned lowercased and deduplicated.
func ExtractMentionNames(body string) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		name := strings.ToLower(strings.ReplaceAll(m[1], "_", " "))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
