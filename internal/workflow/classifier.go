package workflow

import "strings"

// Category is a semantic bucket that one or more raw status labels belong to.
type Category string

const (
	CategoryQueue   Category = "queue"
	CategoryWork    Category = "work"
	CategoryReview  Category = "review"
	CategoryTesting Category = "testing"
	CategoryWaiting Category = "waiting"
	CategoryDone    Category = "done"
)

// Set is the collection of categories assigned to one status.
type Set map[Category]bool

// Has reports whether the set contains the category.
func (s Set) Has(c Category) bool {
	return s[c]
}

// Config holds the user-confirmed status-to-category mapping.
// A status mapped to an empty list is an explicit "no category" decision
// and must never be overridden by heuristics.
type Config struct {
	StatusCategories map[string][]Category `json:"statusCategories"`
}

// Classifier resolves a status label into its semantic categories.
type Classifier interface {
	Categories(status string) Set
}

// NewClassifier returns the layered classifier: the explicit mapping is
// authoritative, keyword heuristics apply only to statuses the mapping has
// never seen.
func NewClassifier(cfg Config) Classifier {
	return &layered{
		explicit: &explicit{mapping: cfg.StatusCategories},
		fallback: &keywordFallback{rules: defaultKeywordRules},
	}
}

// NewExplicitClassifier returns a classifier without the heuristic layer.
func NewExplicitClassifier(cfg Config) Classifier {
	return &explicit{mapping: cfg.StatusCategories}
}

type layered struct {
	explicit *explicit
	fallback Classifier
}

func (l *layered) Categories(status string) Set {
	name := strings.TrimSpace(status)
	if categories, known := l.explicit.lookup(name); known {
		return categories
	}
	return l.fallback.Categories(name)
}

type explicit struct {
	mapping map[string][]Category
}

func (e *explicit) Categories(status string) Set {
	categories, _ := e.lookup(strings.TrimSpace(status))
	return categories
}

// lookup returns the mapped set and whether the status has any entry at all.
// An entry mapped to an empty list yields (empty set, true).
func (e *explicit) lookup(name string) (Set, bool) {
	mapped, ok := e.mapping[name]
	if !ok {
		return Set{}, false
	}
	set := make(Set, len(mapped))
	for _, c := range mapped {
		set[c] = true
	}
	return set, true
}

// keywordRule binds a category to the substrings that suggest it.
// Keywords are mixed English/Russian because real boards are.
type keywordRule struct {
	category Category
	keywords []string
}

// Rule order is fixed: terminal states first so that labels like
// "Testing Done" resolve as done before testing is considered.
var defaultKeywordRules = []keywordRule{
	{CategoryDone, []string{"done", "closed", "resolved", "complete", "готово", "закрыт", "решен"}},
	{CategoryWork, []string{"progress", "develop", "implement", "работ", "разработ", "выполн"}},
	{CategoryTesting, []string{"test", "qa", "тест"}},
	{CategoryReview, []string{"review", "ревью", "обзор"}},
	{CategoryWaiting, []string{"wait", "blocked", "hold", "ожидан", "блок"}},
	{CategoryQueue, []string{"queue", "to do", "todo", "open", "backlog", "new", "очеред", "откры", "нов"}},
}

type keywordFallback struct {
	rules []keywordRule
}

func (k *keywordFallback) Categories(status string) Set {
	lower := strings.ToLower(strings.TrimSpace(status))
	set := Set{}
	for _, rule := range k.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				set[rule.category] = true
				break
			}
		}
	}
	return set
}
