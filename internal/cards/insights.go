package cards

// GenerateDevInsightCard wraps a developer-authored note (save_insight) in
// the standard card shape. Unlike the structural card types, the content
// here is already prose supplied by the caller; no LLM replacement runs.
func GenerateDevInsightCard(flow, title, content string, files []SourceFile) Card {
	data := struct {
		Title   string
		Content string
		Files   []string
	}{Title: title, Content: content, Files: displayPaths(files)}

	rendered, err := render(insightCardTemplate, data)
	if err != nil {
		rendered = content
	}

	c := Card{
		Flow:     flow,
		Title:    title,
		Content:  rendered,
		CardType: CardDevInsight,
		Tags:     computeTags(files, "dev_insight"),
	}
	return finalize(c, files)
}

// GenerateConvInsightCard captures a noteworthy fact surfaced during a
// context()/search() session rather than explicitly saved by a developer.
// Same shape as a dev_insight card, tagged separately so callers (and
// specificity scoring) can tell automatic capture from a deliberate note.
func GenerateConvInsightCard(flow, title, content string, files []SourceFile) Card {
	data := struct {
		Title   string
		Content string
		Files   []string
	}{Title: title, Content: content, Files: displayPaths(files)}

	rendered, err := render(insightCardTemplate, data)
	if err != nil {
		rendered = content
	}

	c := Card{
		Flow:     flow,
		Title:    title,
		Content:  rendered,
		CardType: CardConvInsight,
		Tags:     computeTags(files, "conv_insight"),
	}
	return finalize(c, files)
}
