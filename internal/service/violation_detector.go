package service

import (
	"sort"
	"strings"

	"classguard-be/internal/entity"
)

// ViolationMatch is one taxonomy hit against a submitted process name or URL.
type ViolationMatch struct {
	Category string
	Detail   string
	Severity entity.ViolationSeverity
}

// ViolationDetector scans process lists and browser URLs against a keyword
// taxonomy. Matching is case-insensitive substring containment.
type ViolationDetector struct {
	keywords map[string][]string
	severity map[string]entity.ViolationSeverity
}

// DefaultKeywords is the built-in taxonomy of off-task activity.
func DefaultKeywords() map[string][]string {
	return map[string][]string{
		"game":         {"minecraft", "roblox", "fortnite", "valorant", "dota", "steam", "epicgames", "mobile legends", "genshin"},
		"social_media": {"facebook", "instagram", "twitter", "tiktok", "whatsapp", "telegram", "discord"},
		"video":        {"youtube", "netflix", "twitch", "bilibili", "vimeo"},
	}
}

func NewViolationDetector(keywords map[string][]string) *ViolationDetector {
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	return &ViolationDetector{
		keywords: keywords,
		severity: map[string]entity.ViolationSeverity{
			"game":         entity.ViolationSeverityHigh,
			"social_media": entity.ViolationSeverityMedium,
			"video":        entity.ViolationSeverityMedium,
		},
	}
}

// Scan reports one match per offending process and per offending URL.
// Repeated hits in the same category are not merged.
func (d *ViolationDetector) Scan(processes, urls []string) []ViolationMatch {
	var matches []ViolationMatch

	categories := make([]string, 0, len(d.keywords))
	for category := range d.keywords {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		words := d.keywords[category]
		for _, process := range processes {
			if containsAny(process, words) {
				matches = append(matches, ViolationMatch{
					Category: category,
					Detail:   "Detected process: " + process,
					Severity: d.severityFor(category),
				})
			}
		}
		for _, url := range urls {
			if containsAny(url, words) {
				matches = append(matches, ViolationMatch{
					Category: category,
					Detail:   "Detected URL: " + url,
					Severity: d.severityFor(category),
				})
			}
		}
	}

	return matches
}

func containsAny(entry string, words []string) bool {
	lowered := strings.ToLower(entry)
	for _, word := range words {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

func (d *ViolationDetector) severityFor(category string) entity.ViolationSeverity {
	if s, ok := d.severity[category]; ok {
		return s
	}
	return entity.ViolationSeverityLow
}
