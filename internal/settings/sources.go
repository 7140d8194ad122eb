package settings

import "path/filepath"

const (
	settingsDir = "settings"
	primaryFile = "configuration.toml"
)

// optionalFiles follow the three base files, in merge order.
var optionalFiles = []string{
	"pr_reviewer_prompts.toml",
	"pr_questions_prompts.toml",
	"pr_line_questions_prompts.toml",
	"pr_description_prompts.toml",
	"pr_code_suggestions_prompts.toml",
	"pr_code_suggestions_reflect_prompts.toml",
	"pr_sort_code_suggestions_prompts.toml",
	"pr_information_from_user_prompts.toml",
	"pr_update_changelog_prompts.toml",
	"pr_custom_labels.toml",
	"pr_add_docs.toml",
	"custom_labels.toml",
	"pr_help_prompts.toml",
	".secrets.toml",
}

// DefaultSources is the shipped source stack under root, lowest precedence
// first.  The three base files are required; prompt, label, and secrets
// files are optional.
func DefaultSources(root string) []Source {
	dir := filepath.Join(root, settingsDir)
	src := func(name string, optional bool) Source {
		return Source{Name: name, Path: filepath.Join(dir, name), Optional: optional}
	}

	out := []Source{
		src(primaryFile, false),
		src("ignore.toml", false),
		src("language_extensions.toml", false),
	}
	for _, name := range optionalFiles {
		out = append(out, src(name, true))
	}
	return append(out, Source{
		Name:     "settings_prod/.secrets.toml",
		Path:     filepath.Join(root, "settings_prod", ".secrets.toml"),
		Optional: true,
	})
}
