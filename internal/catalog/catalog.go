// Package catalog holds the static reference data of the tracker: display
// categories, default budgets, classifier keyword rules and saving tips.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// Rule is one classifier category with the lower-case keywords that select it.
type Rule struct {
	Name     string
	Keywords []string
	Color    string
}

// OtherRule is returned by the classifier when no keyword matches.
var OtherRule = Rule{Name: "Other", Color: "#6C757D"}

var categories = []core.Category{
	{Name: "Food", Color: "#FF6B6B", Icon: "🍔"},
	{Name: "Transport", Color: "#4ECDC4", Icon: "🚌"},
	{Name: "Entertainment", Color: "#FFD166", Icon: "🎬"},
	{Name: "Books", Color: "#06D6A0", Icon: "📚"},
	{Name: "Other", Color: "#118AB2", Icon: "📦"},
	{Name: "Income", Color: "#073B4C", Icon: "💰"},
}

var defaultBudgets = []struct {
	category string
	limit    int64
}{
	{"Food", 300},
	{"Transport", 100},
	{"Entertainment", 150},
	{"Books", 200},
	{"Other", 100},
}

var rules = []Rule{
	{
		Name: "Food & Dining",
		Keywords: []string{
			"restaurant", "cafe", "coffee", "starbucks", "mcdonald", "kfc", "burger",
			"pizza", "domino", "subway", "groceries", "supermarket", "aldi", "lidl",
			"tesco", "food", "lunch", "dinner", "breakfast", "bakery", "baker",
		},
		Color: "#FF6B6B",
	},
	{
		Name: "Transport",
		Keywords: []string{
			"uber", "bolt", "taxi", "train", "rail", "bus", "metro", "subway",
			"fuel", "petrol", "gas", "parking", "ticket", "transport", "commute",
			"flight", "airport", "trainstation",
		},
		Color: "#4ECDC4",
	},
	{
		Name: "Entertainment",
		Keywords: []string{
			"netflix", "spotify", "youtube", "disney", "prime", "cinema", "movie",
			"concert", "theatre", "pub", "bar", "club", "party", "game", "steam",
			"playstation", "xbox", "hobby", "sports",
		},
		Color: "#FFD166",
	},
	{
		Name: "Study & Education",
		Keywords: []string{
			"amazon", "book", "textbook", "library", "university", "college",
			"course", "online", "udemy", "coursera", "stationery", "pen", "paper",
			"printer", "ink", "software", "license", "student", "tuition",
		},
		Color: "#06D6A0",
	},
	{
		Name: "Shopping",
		Keywords: []string{
			"shop", "store", "mall", "clothes", "fashion", "zara", "h&m",
			"nike", "adidas", "electronics", "phone", "laptop", "accessory",
			"decoration", "furniture", "ikea", "purchase", "buy",
		},
		Color: "#118AB2",
	},
	{
		Name: "Healthcare",
		Keywords: []string{
			"pharmacy", "medicine", "drug", "clinic", "doctor", "hospital",
			"dental", "optician", "glasses", "vitamin", "supplement", "health",
		},
		Color: "#9D4EDD",
	},
	{
		Name: "Utilities",
		Keywords: []string{
			"electricity", "water", "gas", "internet", "wifi", "mobile", "phone",
			"bill", "rent", "housing", "apartment", "maintenance", "repair",
		},
		Color: "#FF9E6D",
	},
}

var tips = []string{
	"💰 Save 10% of your income first, spend later",
	"📱 Use student discounts whenever possible",
	"🍱 Meal prep to save on food",
	"🚶 Walk or bike instead of taking transport",
	"📚 Buy used textbooks instead of new ones",
	"☕ Make coffee at home, save €3/day = €90/month",
	"🎓 Many apps have student pricing - use it!",
	"💡 Turn off lights to save electricity",
	"🛒 Make a shopping list and stick to it",
	"🏦 Set up automatic savings transfer",
}

var categoryTips = map[string]string{
	"food":          "Try meal prepping to save on food!",
	"transport":     "Consider public transport to save money",
	"entertainment": "Look for student discounts",
	"shopping":      "Wait 24h before buying non-essentials",
	"books":         "Check the library before buying a book",
	"bills":         "Turn off lights to save electricity",
	"health":        "Prevention is cheaper than cure!",
	"other":         "Track this expense for a week",
}

const defaultCategoryTip = "Keep up the good tracking!"

// Categories returns the display catalog.
func Categories() []core.Category {
	return append([]core.Category(nil), categories...)
}

// LookupCategory finds a display category by name, case-insensitively.
func LookupCategory(name string) (core.Category, bool) {
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return core.Category{}, false
}

// DefaultBudgets returns the limits seeded into an empty store.
func DefaultBudgets() []core.BudgetLimit {
	out := make([]core.BudgetLimit, len(defaultBudgets))
	for i, b := range defaultBudgets {
		out[i] = core.BudgetLimit{Category: b.category, Limit: decimal.NewFromInt(b.limit)}
	}
	return out
}

// KeywordRules returns the classifier catalog in declaration order.
func KeywordRules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Name: r.Name, Color: r.Color, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Tips returns the static money-saving tips.
func Tips() []string {
	return append([]string(nil), tips...)
}

// CategoryTip returns a spending tip for a category name.
func CategoryTip(category string) string {
	if tip, ok := categoryTips[strings.ToLower(strings.TrimSpace(category))]; ok {
		return tip
	}
	return defaultCategoryTip
}
