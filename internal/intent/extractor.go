package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pecunia-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Fallbacks used when a value cannot be read from the text.
const (
	DefaultTravelBudget      = 2000.0
	DefaultTravelDestination = "flexible"
	DefaultTravelDuration    = "1 week"
	DefaultGroupSize         = 1
	DefaultGoalTarget        = 10000.0
	DefaultGoalTitle         = "Savings Goal"
	DefaultGoalHorizonMonths = 12
	deadlineLayout           = "2006-01-02"
)

var (
	// A number only counts as money when it carries a currency marker:
	// a leading "$", a "k"/"thousand" multiplier, or a trailing currency word.
	amountRe = regexp.MustCompile(`(?i)(\$)?\s?(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)(?:\s?(k|thousand)\b)?(?:\s?(dollars|usd|bucks)\b)?`)

	// Retirement account names look like k-suffixed amounts.
	accountNameRe = regexp.MustCompile(`(?i)^(?:401|403|457)k$`)

	destinationRe = regexp.MustCompile(`\b(?:to|in|visit|visiting)\s+([A-Z][a-zA-Z'-]*(?:\s+[A-Z][a-zA-Z'-]*)*)`)
	durationRe    = regexp.MustCompile(`(?i)\b(\d+)\s*-?\s*(day|night|week|month)s?\b`)
	groupRe       = regexp.MustCompile(`(?i)\b(\d+)\s+(?:people|persons|travelers|travellers|adults|friends|of us)\b`)
	familyRe      = regexp.MustCompile(`(?i)\bfamily of (\d+)\b`)
	coupleRe      = regexp.MustCompile(`(?i)\b(?:with my (?:partner|wife|husband|girlfriend|boyfriend|spouse)|for two|couple)\b`)
	horizonRe     = regexp.MustCompile(`(?i)\b(?:in|within)\s+(\d+)\s+(month|year)s?\b`)
	byYearRe      = regexp.MustCompile(`(?i)\bby\s+(20\d{2})\b`)
)

type keywordLabel struct {
	re    *regexp.Regexp
	label string
}

func wordsRe(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`)
}

var interestTable = []keywordLabel{
	{wordsRe("beach", "beaches", "island", "surf"), "beach"},
	{wordsRe("food", "cuisine", "restaurants", "eating"), "food"},
	{wordsRe("hike", "hiking", "trek", "trekking", "mountains"), "hiking"},
	{wordsRe("museum", "museums", "history", "culture", "art"), "culture"},
	{wordsRe("nightlife", "bars", "clubs"), "nightlife"},
	{wordsRe("shopping", "markets"), "shopping"},
	{wordsRe("ski", "skiing", "snowboarding"), "skiing"},
	{wordsRe("nature", "wildlife", "national park", "national parks"), "nature"},
	{wordsRe("adventure", "diving", "scuba"), "adventure"},
}

var goalTitleTable = []keywordLabel{
	{wordsRe("down payment", "house", "home", "apartment", "condo"), "House Down Payment"},
	{wordsRe("emergency"), "Emergency Fund"},
	{wordsRe("car", "vehicle"), "New Car"},
	{wordsRe("wedding"), "Wedding"},
	{wordsRe("retire", "retirement"), "Retirement"},
	{wordsRe("college", "education", "tuition", "school"), "Education"},
	{wordsRe("debt", "pay off", "loan", "loans", "credit card"), "Debt Payoff"},
}

// FirstAmount returns the first monetary amount in text. Bare numbers without a
// currency marker ("3 days") and account names ("my 401k") are skipped.
func FirstAmount(text string) (float64, bool) {
	for _, m := range amountRe.FindAllStringSubmatch(text, -1) {
		dollar, number, multiplier, word := m[1], m[2], m[3], m[4]
		if dollar == "" && multiplier == "" && word == "" {
			continue
		}
		if dollar == "" && word == "" && accountNameRe.MatchString(strings.TrimSpace(m[0])) {
			continue
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(number, ",", ""))
		if err != nil {
			continue
		}
		if multiplier != "" {
			amount = amount.Mul(decimal.NewFromInt(1000))
		}
		return amount.InexactFloat64(), true
	}
	return 0, false
}

// ExtractTravel builds a travel plan payload from text, falling back to
// defaults for anything it cannot find.
func ExtractTravel(text string, _ models.Profile) models.TravelPayload {
	payload := models.TravelPayload{
		Budget:      DefaultTravelBudget,
		Destination: DefaultTravelDestination,
		Duration:    DefaultTravelDuration,
		Interests:   []string{},
		GroupSize:   DefaultGroupSize,
	}

	if amount, ok := FirstAmount(text); ok && amount > 0 {
		payload.Budget = amount
	}
	if m := destinationRe.FindStringSubmatch(text); m != nil {
		payload.Destination = m[1]
	}
	if m := durationRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			payload.Duration = pluralize(n, strings.ToLower(m[2]))
		}
	} else if strings.Contains(strings.ToLower(text), "weekend") {
		payload.Duration = "2 days"
	}
	for _, entry := range interestTable {
		if entry.re.MatchString(text) {
			payload.Interests = append(payload.Interests, entry.label)
		}
	}
	payload.GroupSize = groupSize(text)

	return payload
}

func groupSize(text string) int {
	if m := familyRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if m := groupRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if coupleRe.MatchString(text) {
		return 2
	}
	return DefaultGroupSize
}

// ExtractGoal builds a goal strategy payload from text. The current amount
// comes from a profile goal with the same title, if there is one.
func ExtractGoal(text string, profile models.Profile, now time.Time) models.GoalPayload {
	payload := models.GoalPayload{
		Title:         DefaultGoalTitle,
		Target:        DefaultGoalTarget,
		Deadline:      now.AddDate(0, DefaultGoalHorizonMonths, 0).Format(deadlineLayout),
		MonthlyIncome: profile.MonthlyIncome,
	}

	for _, entry := range goalTitleTable {
		if entry.re.MatchString(text) {
			payload.Title = entry.label
			break
		}
	}
	if amount, ok := FirstAmount(text); ok && amount > 0 {
		payload.Target = amount
	}
	if deadline, ok := extractDeadline(text, now); ok {
		payload.Deadline = deadline
	}
	for _, g := range profile.Goals {
		if strings.EqualFold(g.Title, payload.Title) {
			payload.Current = g.Current
			break
		}
	}

	return payload
}

func extractDeadline(text string, now time.Time) (string, bool) {
	if m := horizonRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return "", false
		}
		if strings.EqualFold(m[2], "year") {
			return now.AddDate(n, 0, 0).Format(deadlineLayout), true
		}
		return now.AddDate(0, n, 0).Format(deadlineLayout), true
	}
	if m := byYearRe.FindStringSubmatch(text); m != nil {
		year, err := strconv.Atoi(m[1])
		if err == nil && year >= now.Year() {
			return fmt.Sprintf("%d-12-31", year), true
		}
	}
	return "", false
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
