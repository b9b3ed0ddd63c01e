package notes

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// minSummarizeLen is the minimum trimmed content length (in characters)
// that justifies a model call. Content of exactly this length proceeds.
const minSummarizeLen = 50

// Advisory messages returned without calling the model.
const (
	SummaryEmptyContent = "Note content is empty, nothing to summarize."
	SummaryTooShort     = "Note content is too short to provide a meaningful summary."
)

// Error messages reported through the result union.
const (
	MsgMustBeLoggedIn  = "You must be logged in to summarize a note."
	MsgSummaryFailed   = "AI failed to generate a summary."
	MsgSummarizeErrors = "Summarization Error"
)

// SummarizeResult is the result union of the summarize action:
// exactly one of Summary or ErrorMessage is non-nil.
type SummarizeResult struct {
	Summary      *string `json:"summary"`
	ErrorMessage *string `json:"errorMessage"`
}

func summaryOf(s string) *SummarizeResult {
	return &SummarizeResult{Summary: &s}
}

// SummarizeFailure builds a result carrying only an error message.
func SummarizeFailure(msg string) *SummarizeResult {
	return &SummarizeResult{ErrorMessage: &msg}
}

// Summarize loads the caller's note and produces a short synopsis of its
// content. Every failure — auth, storage, provider — is folded into the
// result union; the method never returns an error to the caller.
func (s *Service) Summarize(ctx context.Context, authorID bson.ObjectID, noteID bson.ObjectID) *SummarizeResult {
	if authorID.IsZero() {
		return SummarizeFailure(MsgMustBeLoggedIn)
	}

	snippet, err := s.repo.GetForSummary(ctx, authorID, noteID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return SummarizeFailure(ErrNoteNotFound.Error())
		}
		s.log.Error("failed to load note for summary", "error", err, "author_id", authorID.Hex(), "note_id", noteID.Hex())
		return SummarizeFailure(err.Error())
	}

	content := strings.TrimSpace(snippet.Content)
	if content == "" {
		return summaryOf(SummaryEmptyContent)
	}
	if utf8.RuneCountInString(content) < minSummarizeLen {
		return summaryOf(SummaryTooShort)
	}

	s.log.Info("summarizing note", "title", snippet.Title, "note_id", noteID.Hex())

	summary, err := s.summarizer.Summarize(ctx, snippet.Content)
	if err != nil {
		s.log.Error(MsgSummarizeErrors, "error", err, "note_id", noteID.Hex())
		return SummarizeFailure(err.Error())
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return SummarizeFailure(MsgSummaryFailed)
	}

	s.log.Info("summary generated", "title", snippet.Title, "note_id", noteID.Hex())
	return summaryOf(summary)
}
