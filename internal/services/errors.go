package services

import "errors"

var (
	// ErrEmptyMessage is returned when a chat message has no text.
	ErrEmptyMessage = errors.New("message text is required")
	// ErrNotInsightCategory is returned for categories that cannot be cached
	// as insights, such as general_chat.
	ErrNotInsightCategory = errors.New("category is not an insight category")
	// ErrInvalidGoal is returned when an explicit goal lacks a title or a positive target.
	ErrInvalidGoal = errors.New("goal requires a title and a positive target")
	// ErrNoTransactions is returned when a spending analysis has nothing to analyze.
	ErrNoTransactions = errors.New("at least one transaction is required")
	ErrMissingPage    = errors.New("page is required")
	// ErrUnknownSuggestionKind is returned for kinds other than proactive and help.
	ErrUnknownSuggestionKind = errors.New("kind must be proactive or help")
)
