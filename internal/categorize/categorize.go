// Package categorize assigns catalog categories to products from their
// free-text descriptions using keyword matching. It backs bulk imports and
// the quick-add flow; users can always override the suggestion.
package categorize

import "strings"

const (
	CategoryBeverage = "Beverage"
	CategoryFood     = "Food"
	SubCategoryOther = "Other"
)

type subCategory struct {
	name     string
	keywords []string
}

// subCategories is scanned in order; on equal scores the earlier entry wins,
// so more specific buckets come before catch-alls like Other Whisky.
var subCategories = []subCategory{
	{"Vodka", []string{"vodka", "smirnoff", "grey goose", "belvedere", "absolut", "ketel one"}},
	{"Gin", []string{"gin", "tanqueray", "bombay", "hendricks", "beefeater", "gordon", "sapphire"}},
	{"Rum", []string{"rum", "bacardi", "captain morgan", "malibu", "mount gay", "appleton", "havana"}},
	{"Tequila", []string{"tequila", "patron", "don julio", "jose cuervo", "herradura", "1800"}},
	{"Liqueur", []string{"liqueur", "baileys", "kahlua", "cointreau", "grand marnier", "amaretto", "frangelico", "chambord"}},
	{"Brandy", []string{"brandy", "cognac", "hennessy", "remy martin", "courvoisier", "martell"}},
	{"Cognac", []string{"cognac", "hennessy", "remy martin", "courvoisier", "martell", "hine"}},
	{"Armagnac", []string{"armagnac"}},
	{"Calvados", []string{"calvados"}},
	{"Grappa", []string{"grappa"}},
	{"Pisco", []string{"pisco"}},
	{"American Whiskey", []string{"bourbon", "tennessee", "jack daniel", "jim beam", "maker mark", "wild turkey", "woodford"}},
	{"Irish Whiskey", []string{"irish whiskey", "jameson", "bushmills", "tullamore", "redbreast"}},
	{"Scotch Blended Whisky", []string{"scotch", "blended", "johnnie walker", "chivas", "ballantines", "famous grouse", "j&b"}},
	{"Scotch Single Malt", []string{"single malt", "glenlivet", "macallan", "glenfiddich", "lagavulin", "ardbeg", "laphroaig"}},
	{"Japanese Whiskey", []string{"japanese whiskey", "yamazaki", "hibiki", "hakushu", "nikka"}},
	{"Indian Whisky", []string{"indian whisky", "amrut", "paul john", "radico"}},
	{"Other Whisky", []string{"whisky", "whiskey", "rye", "canadian"}},
	{"Amaro", []string{"amaro", "aperol", "campari", "fernet", "cynar"}},
	{"Vermouth", []string{"vermouth", "martini", "noilly prat", "dolin"}},
	{"Red Wine", []string{"red wine", "cabernet", "merlot", "pinot noir", "shiraz", "syrah", "malbec", "zinfandel", "sangiovese"}},
	{"White Wine", []string{"white wine", "chardonnay", "sauvignon blanc", "pinot grigio", "riesling", "moscato", "gewurztraminer"}},
	{"Rose Wine", []string{"rose wine", "rosé", "provence"}},
	{"Sparkling Wine", []string{"sparkling", "champagne", "prosecco", "cava", "spumante"}},

	{"Syrup", []string{"syrup", "simple syrup", "grenadine", "agave", "honey syrup", "maple syrup"}},
	{"Puree", []string{"puree", "purée", "mango puree", "strawberry puree", "passion fruit puree"}},
	{"Frozen Puree", []string{"frozen puree", "frozen purée"}},
	{"Frozen Berry", []string{"frozen berry", "frozen berries", "frozen strawberry", "frozen blueberry"}},
	{"Fresh Berry", []string{"fresh berry", "fresh berries", "strawberry", "blueberry", "raspberry", "blackberry"}},
	{"Fresh Juice", []string{"fresh juice", "fresh orange juice", "fresh lemon juice", "fresh lime juice", "fresh grapefruit juice"}},
	{"Packet Juice", []string{"packet juice", "boxed juice", "tetra pack juice", "canned juice"}},
	{"Water", []string{"water", "mineral water", "sparkling water", "still water"}},
	{"Soft Beverage", []string{"soft drink", "soda", "cola", "pepsi", "coca cola", "fanta", "sprite", "7up"}},
	{"Areated Beverage", []string{"aerated", "carbonated", "soda water", "tonic water", "ginger ale"}},

	{"Fruit", []string{"fruit", "apple", "banana", "orange", "lemon", "lime", "grapefruit", "pineapple", "mango", "papaya"}},
	{"Vegetable", []string{"vegetable", "tomato", "cucumber", "onion", "garlic", "pepper", "carrot", "celery", "lettuce"}},
	{"Spice", []string{"spice", "cinnamon", "nutmeg", "clove", "cardamom", "star anise", "vanilla bean", "peppercorn"}},
	{"Herb", []string{"herb", "basil", "mint", "rosemary", "thyme", "oregano", "sage", "parsley", "cilantro", "dill"}},
	{"Fresh Herbs", []string{"fresh herb", "fresh basil", "fresh mint", "fresh rosemary", "fresh thyme"}},
	{"Fish", []string{"fish", "salmon", "tuna", "cod", "sea bass", "snapper", "mackerel"}},
	{"Shell Fish", []string{"shellfish", "shrimp", "prawn", "lobster", "crab", "scallop", "mussel", "oyster", "clam"}},
	{"Seafood", []string{"seafood", "squid", "octopus", "cuttlefish"}},
	{"Meat", []string{"meat", "beef", "chicken", "pork", "lamb", "veal", "turkey", "duck"}},
	{"Egg", []string{"egg", "eggs", "quail egg", "duck egg"}},
	{"Dry Fruits", []string{"dry fruit", "dried fruit", "raisin", "date", "prune", "apricot", "fig"}},
	{"Dry Nuts", []string{"dry nut", "dried nut", "almond", "walnut", "cashew", "pistachio", "hazelnut", "pecan"}},
	{"Nuts", []string{"nut", "almond", "walnut", "cashew", "pistachio", "hazelnut", "pecan", "macadamia"}},
	{"Milk", []string{"milk", "whole milk", "skim milk", "full cream milk"}},
	{"Plant base Milk", []string{"plant milk", "almond milk", "soy milk", "oat milk", "coconut milk", "rice milk", "cashew milk"}},
	{"Cheese", []string{"cheese", "cheddar", "mozzarella", "parmesan", "feta", "goat cheese", "brie", "camembert"}},
	{"Yoghurt", []string{"yoghurt", "yogurt", "greek yogurt", "plain yogurt"}},
	{"Molecular", []string{"molecular", "spherification", "foam", "gel", "agar", "sodium alginate"}},
	{"Tea", []string{"tea", "black tea", "green tea", "oolong", "jasmine tea", "earl grey", "chai"}},
	{"Coffee", []string{"coffee", "espresso", "arabica", "robusta", "coffee bean", "ground coffee"}},
	{"Sugar", []string{"sugar", "white sugar", "brown sugar", "caster sugar", "icing sugar", "demerara"}},
	{"Salt", []string{"salt", "sea salt", "rock salt", "kosher salt", "himalayan salt"}},
	{"Flower", []string{"flower", "edible flower", "lavender", "rose petal", "hibiscus", "elderflower"}},
	{"Seed", []string{"seed", "sesame seed", "chia seed", "flax seed", "pumpkin seed", "sunflower seed"}},
	{"Jam", []string{"jam", "preserve", "marmalade", "fruit jam"}},
	{"Dry Goods", []string{"dry good", "flour", "rice", "pasta", "noodle", "couscous", "quinoa", "barley"}},
	{"Chocolate", []string{"chocolate", "dark chocolate", "milk chocolate", "white chocolate", "cocoa", "cacao"}},
}

var alcoholKeywords = []string{
	"vodka", "gin", "rum", "tequila", "whiskey", "whisky", "bourbon", "scotch",
	"red wine", "white wine", "rose wine", "sparkling wine", "champagne", "prosecco",
	"beer", "lager", "ale", "cider", "stout", "ipa",
	"brandy", "cognac", "armagnac", "calvados", "grappa", "pisco",
	"liqueur", "amaro", "vermouth", "sake", "soju", "mezcal",
}

var softBeverageKeywords = []string{
	"juice", "syrup", "soda", "cola", "water", "tonic", "ginger ale",
	"soft drink", "mocktail", "smoothie", "milkshake", "lemonade", "iced tea",
}

var foodKeywords = []string{
	"meat", "chicken", "beef", "pork", "lamb", "fish", "seafood", "shellfish",
	"vegetable", "fruit", "berry", "cheese", "milk", "yoghurt", "yogurt",
	"egg", "flour", "rice", "pasta", "noodle", "spice", "herb", "seed",
	"chocolate", "sugar", "salt", "tea", "coffee", "jam", "puree",
	"nut", "almond", "walnut", "cashew", "dry fruit", "dry nut",
}

// Categorize suggests a (category, subCategory) pair for a product
// description. Either value may be empty when nothing matches.
func Categorize(description string) (string, string) {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return "", ""
	}

	category := mainCategory(desc)
	sub := bestSubCategory(desc)
	if sub == "" && category != "" {
		sub = SubCategoryOther
	}
	return category, sub
}

func mainCategory(desc string) string {
	if containsAny(desc, alcoholKeywords) {
		return CategoryBeverage
	}
	if containsAny(desc, softBeverageKeywords) {
		return CategoryBeverage
	}
	if containsAny(desc, foodKeywords) {
		return CategoryFood
	}
	return ""
}

// bestSubCategory scores every bucket by its matched keywords: longer
// keywords count more, and whole-word matches get a further bonus over bare
// substring hits ("gin" inside "original" should not beat a real match).
func bestSubCategory(desc string) string {
	best := ""
	bestScore := 0.0
	for _, sc := range subCategories {
		score := 0.0
		for _, keyword := range sc.keywords {
			if !strings.Contains(desc, keyword) {
				continue
			}
			keywordScore := float64(len(keyword)) * 2
			if containsWholeWord(desc, keyword) {
				keywordScore *= 1.5
			}
			score += keywordScore
		}
		if score > bestScore {
			bestScore = score
			best = sc.name
		}
	}
	return best
}

func containsAny(desc string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(desc, keyword) {
			return true
		}
	}
	return false
}

func containsWholeWord(text, keyword string) bool {
	for start := 0; start <= len(text)-len(keyword); {
		idx := strings.Index(text[start:], keyword)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(keyword)
		beforeOK := idx == 0 || !isWordByte(text[idx-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
