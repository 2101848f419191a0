// Package grocery guesses a food category from an item name.
package grocery

import "strings"

// Other is returned when nothing matches.
const Other = "other"

// Categorize returns the food category for the given item name.
// Matching is case-insensitive: exact match first, then substring match.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return Other
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}
	return Other
}

var exactMatch = buildExact(map[string][]string{
	"fruits": {
		"apple", "apples", "banana", "bananas", "orange", "oranges", "lemon", "lemons",
		"lime", "limes", "avocado", "avocados", "grapes", "strawberries", "blueberries",
		"raspberries", "watermelon", "pineapple", "mango", "peach", "peaches", "pear", "pears",
		"kiwi", "cherries", "plums",
	},
	"vegetables": {
		"tomato", "tomatoes", "potato", "potatoes", "onion", "onions", "garlic", "lettuce",
		"spinach", "kale", "broccoli", "carrot", "carrots", "celery", "cucumber", "cucumbers",
		"peppers", "mushrooms", "corn", "zucchini", "asparagus", "green beans", "cabbage",
		"cauliflower", "peas", "cilantro", "basil", "parsley", "ginger",
	},
	"dairy": {
		"milk", "eggs", "butter", "cheese", "yogurt", "cream cheese", "sour cream",
		"heavy cream", "half and half", "cottage cheese", "kefir",
	},
	"meat": {
		"chicken", "beef", "pork", "turkey", "bacon", "sausage", "ham", "steak", "salmon",
		"shrimp", "tuna", "fish", "ground beef", "ground turkey", "hot dogs", "deli meat",
		"lamb", "crab", "tofu",
	},
	"grains": {
		"bread", "bagels", "tortillas", "rolls", "buns", "rice", "pasta", "spaghetti",
		"flour", "oats", "oatmeal", "cereal", "quinoa", "couscous", "noodles",
	},
	"snacks": {
		"chips", "crackers", "cookies", "popcorn", "pretzels", "nuts", "granola bars",
		"chocolate", "candy", "trail mix",
	},
	"beverages": {
		"coffee", "tea", "juice", "soda", "water", "sparkling water", "beer", "wine",
		"kombucha", "lemonade",
	},
})

func buildExact(byCategory map[string][]string) map[string]string {
	m := make(map[string]string)
	for cat, names := range byCategory {
		for _, n := range names {
			m[n] = cat
		}
	}
	return m
}

type substringEntry struct {
	keyword  string
	category string
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	// Multi-word and compound phrases that would otherwise hit a shorter keyword
	{"peanut butter", "snacks"},
	{"almond milk", "beverages"},
	{"oat milk", "beverages"},
	{"soy milk", "beverages"},
	{"coconut water", "beverages"},
	{"ice cream", "dairy"},
	{"chicken broth", "other"},
	{"rice cake", "snacks"},
	{"granola bar", "snacks"},
	{"fish sticks", "meat"},
	{"orange juice", "beverages"},
	{"apple juice", "beverages"},

	{"yogurt", "dairy"},
	{"cheese", "dairy"},
	{"cream", "dairy"},
	{"milk", "dairy"},
	{"butter", "dairy"},
	{"egg", "dairy"},

	{"chicken", "meat"},
	{"beef", "meat"},
	{"pork", "meat"},
	{"turkey", "meat"},
	{"salmon", "meat"},
	{"shrimp", "meat"},
	{"sausage", "meat"},
	{"bacon", "meat"},
	{"steak", "meat"},
	{"fillet", "meat"},

	{"bread", "grains"},
	{"pasta", "grains"},
	{"rice", "grains"},
	{"flour", "grains"},
	{"cereal", "grains"},
	{"oat", "grains"},
	{"noodle", "grains"},
	{"tortilla", "grains"},
	{"bagel", "grains"},

	{"juice", "beverages"},
	{"water", "beverages"},
	{"soda", "beverages"},
	{"coffee", "beverages"},
	{"tea", "beverages"},
	{"beer", "beverages"},
	{"wine", "beverages"},

	{"chip", "snacks"},
	{"cracker", "snacks"},
	{"cookie", "snacks"},
	{"chocolate", "snacks"},
	{"candy", "snacks"},
	{"nut", "snacks"},

	{"berr", "fruits"},
	{"apple", "fruits"},
	{"banana", "fruits"},
	{"grape", "fruits"},
	{"melon", "fruits"},
	{"citrus", "fruits"},
	{"orange", "fruits"},
	{"lemon", "fruits"},

	{"spinach", "vegetables"},
	{"lettuce", "vegetables"},
	{"salad", "vegetables"},
	{"tomato", "vegetables"},
	{"potato", "vegetables"},
	{"onion", "vegetables"},
	{"pepper", "vegetables"},
	{"carrot", "vegetables"},
	{"broccoli", "vegetables"},
	{"bean", "vegetables"},
	{"mushroom", "vegetables"},
	{"squash", "vegetables"},
	{"herb", "vegetables"},
}
