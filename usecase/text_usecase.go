package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"benchly/domain/dto"
	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/logger"
)

var (
	timestampPattern = regexp.MustCompile(`\[\d{1,2}:\d{2}(?::\d{2})?(?:[.,]\d{1,3})?\]`)
	asidePattern     = regexp.MustCompile(`[\(\[].*?[\)\]]`)
	tagPattern       = regexp.MustCompile(`</?.*?>`)
	spacePattern     = regexp.MustCompile(`\s+`)
	boldPattern      = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

var languageNames = map[string]string{
	"ko": "Korean",
	"en": "English",
	"ja": "Japanese",
}

const translationPrompt = "Translate the following text to %s. Return only the translated text, without any additional explanations or quotation marks.\n\n%s"

const keywordPrompt = `You are an expert in analyzing YouTube content trends and generating search keywords for a specific language market. Your user is a YouTube creator looking for their next content idea.
Your task is to take the user's search query and generate a total of 10 related keywords, divided into two categories:
1. Directly Related Keywords (5 keywords): specific variations or synonyms of the user's full search query.
2. Expansion Keywords (5 keywords): combine the core concept of the query with other popular, related subjects.
The user's translated search query is: "%s"
The target language for the output keywords is: %s
You MUST generate the "original" keywords strictly in %s. Do NOT output keywords in English unless the target language is English.
After generating all 10 keywords, also provide the Korean translation for each keyword.
Return the results ONLY as a single raw JSON object with one key named "keywords" holding an array of 10 objects. Each object must have two keys: "original" (the keyword in %s) and "korean" (the Korean translation).`

type ITextUseCase interface {
	Summarize(ctx context.Context, req dto.SummaryRequest) (string, error)
	RelatedKeywords(ctx context.Context, req dto.RelatedKeywordsRequest) (*dto.RelatedKeywordsResponse, error)
}

type TextUseCase struct {
	textModel    repository.ITextModel
	allowed      map[string]bool
	keywordModel string
}

// NewTextUseCase accepts summaries on either model; keyword suggestions and
// translations always use the fast one.
func NewTextUseCase(textModel repository.ITextModel, fastModel, proModel string) ITextUseCase {
	return &TextUseCase{
		textModel:    textModel,
		allowed:      map[string]bool{fastModel: true, proModel: true},
		keywordModel: fastModel,
	}
}

// PreprocessTranscript strips timestamps, bracketed asides and markup and
// collapses whitespace.
func PreprocessTranscript(text string) string {
	if text == "" {
		return ""
	}
	text = timestampPattern.ReplaceAllString(text, " ")
	text = asidePattern.ReplaceAllString(text, " ")
	text = tagPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// RenderSummaryHTML escapes model output and converts line breaks and
// **bold** runs to HTML.
func RenderSummaryHTML(text string) string {
	out := html.EscapeString(text)
	out = strings.ReplaceAll(out, "\n", "<br>")
	return boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
}

func (u *TextUseCase) Summarize(ctx context.Context, req dto.SummaryRequest) (string, error) {
	if strings.TrimSpace(req.Transcript) == "" || strings.TrimSpace(req.Prompt) == "" || req.Model == "" {
		return "", model.NewInvalidQueryError("transcript, prompt and model are required")
	}
	if !u.allowed[req.Model] {
		return "", model.NewInvalidQueryError(fmt.Sprintf("model %q is not allowed", req.Model))
	}

	prompt := fmt.Sprintf("%s\n\n--- transcript start ---\n%s\n--- transcript end ---", req.Prompt, PreprocessTranscript(req.Transcript))
	answer, err := u.textModel.Complete(ctx, req.Model, prompt)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Summary generation failed")
		return "", textModelError(err)
	}
	return RenderSummaryHTML(answer), nil
}

func (u *TextUseCase) RelatedKeywords(ctx context.Context, req dto.RelatedKeywordsRequest) (*dto.RelatedKeywordsResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, model.NewInvalidQueryError("query is required")
	}
	lang := req.TargetLang
	if lang == "" {
		lang = "ko"
	}
	languageName, ok := languageNames[lang]
	if !ok {
		languageName = languageNames["ko"]
	}

	translated := query
	if lang != "ko" {
		answer, err := u.textModel.Complete(ctx, u.keywordModel, fmt.Sprintf(translationPrompt, languageName, query))
		if err != nil {
			return nil, textModelError(err)
		}
		if t := strings.ReplaceAll(strings.TrimSpace(answer), `"`, ""); t != "" {
			translated = t
		}
	}

	answer, err := u.textModel.Complete(ctx, u.keywordModel, fmt.Sprintf(keywordPrompt, translated, languageName, languageName, languageName))
	if err != nil {
		return nil, textModelError(err)
	}
	keywords, err := ParseKeywords(answer)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"error": err, "answer": answer}).Warn("Unusable keyword answer")
		return nil, model.NewUpstreamError(http.StatusBadGateway, "could not read keywords from the model answer", err)
	}

	return &dto.RelatedKeywordsResponse{
		Success:         true,
		Data:            dto.RelatedKeywords{Keywords: keywords},
		TranslatedQuery: translated,
	}, nil
}

// ParseKeywords extracts the keyword list from a model answer. The JSON
// object may be wrapped in prose or code fences. The "keywords" field is
// preferred, otherwise the first array field in key order is used.
func ParseKeywords(answer string) ([]dto.RelatedKeyword, error) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in answer")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(answer[start:end+1]), &fields); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if name != "keywords" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := fields["keywords"]; ok {
		names = append([]string{"keywords"}, names...)
	}

	for _, name := range names {
		var list []dto.RelatedKeyword
		if err := json.Unmarshal(fields[name], &list); err != nil || list == nil {
			continue
		}
		out := list[:0]
		for _, kw := range list {
			if strings.TrimSpace(kw.Original) != "" {
				out = append(out, kw)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("no keyword list in answer")
}

func textModelError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.NewTimeoutError("text model", err)
	}
	return model.NewUpstreamError(http.StatusBadGateway, "text model request failed", err)
}
