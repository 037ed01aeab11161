package codehost

import (
	"sort"
	"strings"
)

// frameworkKeywords maps a keyword found in repository names, descriptions
// or topics to the framework it indicates. Order matters for deterministic
// output, so the table is a slice.
var frameworkKeywords = []struct {
	keyword   string
	framework string
}{
	{"react", "React"},
	{"nextjs", "Next.js"},
	{"next.js", "Next.js"},
	{"vue", "Vue"},
	{"angular", "Angular"},
	{"django", "Django"},
	{"flask", "Flask"},
	{"fastapi", "FastAPI"},
	{"rails", "Ruby on Rails"},
	{"spring", "Spring"},
	{"express", "Express"},
	{"kubernetes", "Kubernetes"},
	{"terraform", "Terraform"},
	{"tensorflow", "TensorFlow"},
	{"pytorch", "PyTorch"},
}

// AnalyzeRepositories builds a language histogram and detects frameworks
// from repository metadata. Forks are excluded from language counts so the
// histogram reflects the user's own work.
func AnalyzeRepositories(repos []Repository) RepoAnalysis {
	out := RepoAnalysis{
		TotalRepos: len(repos),
		Languages:  make(map[string]int),
	}

	seenFrameworks := make(map[string]bool)
	for _, r := range repos {
		out.TotalStars += r.Stars

		if !r.Fork && r.Language != "" {
			out.Languages[r.Language]++
		}

		haystack := strings.ToLower(r.Name + " " + r.Description + " " + strings.Join(r.Topics, " "))
		for _, fk := range frameworkKeywords {
			if seenFrameworks[fk.framework] {
				continue
			}
			if strings.Contains(haystack, fk.keyword) {
				seenFrameworks[fk.framework] = true
				out.Frameworks = append(out.Frameworks, fk.framework)
			}
		}
	}

	out.TopLanguages = topLanguages(out.Languages, 3)
	return out
}

func topLanguages(histogram map[string]int, n int) []string {
	type entry struct {
		lang  string
		count int
	}
	entries := make([]entry, 0, len(histogram))
	for lang, count := range histogram {
		entries = append(entries, entry{lang, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].lang < entries[j].lang
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.lang
	}
	return out
}
