package dto

type SummaryRequest struct {
	Transcript string `json:"transcript"`
	Prompt     string `json:"prompt"`
	Model      string `json:"model"`
}

type SummaryResponse struct {
	Success     bool   `json:"success"`
	SummaryHTML string `json:"summary_html"`
}

type RelatedKeywordsRequest struct {
	Query      string `json:"query"`
	TargetLang string `json:"target_lang"`
}

// RelatedKeyword is one suggestion in the target language with its Korean
// gloss.
type RelatedKeyword struct {
	Original string `json:"original"`
	Korean   string `json:"korean"`
}

type RelatedKeywords struct {
	Keywords []RelatedKeyword `json:"keywords"`
}

type RelatedKeywordsResponse struct {
	Success         bool            `json:"success"`
	Data            RelatedKeywords `json:"data"`
	TranslatedQuery string          `json:"translated_query"`
}
