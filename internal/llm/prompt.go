package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/harper-ld/relnotes/internal/model"
)

// maxBodyLen bounds how much of a PR description is forwarded to the
// engine so prompts stay within reasonable context limits.
const maxBodyLen = 800

// maxComments bounds how many discussion comments are forwarded per PR.
const maxComments = 3

const categoryDefinitions = `### Category Definitions:

- **BC Breaking**: All commits that are BC-breaking. These are the most important commits. If any pre-sorted commit is actually BC-breaking, move it to this section. Each commit should contain a paragraph explaining the rationale behind the change as well as an example for how to update user code.
- **Deprecations**: All commits introducing deprecation. Each commit should include a small example explaining what should be done to update user code.
- **New Features**: All commits introducing a new feature (new functions, new submodule, new supported platform, etc.).
- **Improvements**: All commits providing improvements to existing features (new backend for a function, new argument, better numerical stability).
- **Bug Fixes**: All commits that fix bugs and behaviors that do not match the documentation.
- **Performance**: All commits that are added mainly for performance (separated from improvements to make it easier for users to look for).
- **Documentation**: All commits that add/update documentation.
- **Developers**: All commits that are not end-user facing but still impact people that compile from source, develop into the project, or extend it.`

const exampleOutput = `### Example Output:

## Improvements:
- [inductor][AOTI] Adds broadcast support for key-value batch dimensions in FlexAttention to enhance flexibility and performance (#135505).

## Bug Fixes:
- [inductor][AOTI] Fixes an edge case in remove_split_with_size_one to enhance stability (#135962).

## New Features:
- [inductor][AOTI] Introduces a new backend for faster computation in Triton kernels (#135530).

## Deprecations:
- [inductor][AOTI] Deprecates the old stride order configuration in favor of the new method (#136367).

## BC Breaking:
- [inductor][AOTI] Changes the layout constraint which requires users to update their code as follows: ...

## Performance:
- [inductor][AOTI] Optimizes the kernel to reduce computation time by 20% (#135239).

## Documentation:
- [inductor][AOTI] Updates the documentation to include new layout constraints (#135581).

## Developers:
- [inductor][AOTI] Refactors the cache management system to improve extensibility (#138239).`

// BuildPrompt assembles the categorization request for one batch: the
// fixed taxonomy instruction, the tag-preservation requirement, and each
// entry with whatever enrichment context could be fetched for it.
func BuildPrompt(entries []model.EnrichedEntry) string {
	var b strings.Builder

	b.WriteString("You are a release notes generator. ")
	b.WriteString("Your task is to categorize a list of Pull Requests (PRs) into the following categories based on the definitions provided below:\n\n")
	b.WriteString(categoryDefinitions)
	b.WriteString("\n\n")
	b.WriteString("Each PR should be summarized in one sentence and placed under the appropriate category. ")
	b.WriteString("Use the format '- [Tags] one sentence summary of the PR (#PR_Number)'. ")
	b.WriteString("Preserve the bracketed tags from the original title exactly as given. ")
	b.WriteString("Ensure that the output is in valid Markdown format and that the PR number is placed at the end of each entry.\n\n")
	b.WriteString(exampleOutput)
	b.WriteString("\n\nHere is the list of PRs:\n")

	for _, entry := range entries {
		fmt.Fprintf(&b, "- %s\n", entry.SourceLine)
		if entry.Detail == nil {
			continue
		}
		if entry.Detail.Title != "" && entry.Detail.Title != entry.Title {
			fmt.Fprintf(&b, "  Title: %s\n", entry.Detail.Title)
		}
		if body := truncate(entry.Detail.Body, maxBodyLen); body != "" {
			fmt.Fprintf(&b, "  Description: %s\n", body)
		}
		for i, comment := range entry.Detail.Comments {
			if i >= maxComments {
				break
			}
			fmt.Fprintf(&b, "  Comment (%s): %s\n", comment.User, truncate(comment.Body, maxBodyLen))
		}
	}

	return b.String()
}

// truncate cuts on a rune boundary so multi-byte text stays valid UTF-8.
func truncate(s string, limit int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
