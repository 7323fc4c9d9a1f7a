// Package pins builds Pinterest pins for catalog products, queues them and
// publishes due pins in the background.
package pins

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

// ShopNowLine closes every full pin caption.
const ShopNowLine = "🔗 Shop now and help street pets!"

var captionTemplates = []string{
	"This {product} helps feed {meals} street cats and dogs 🐾❤️ Shop with purpose!",
	"Every purchase makes a difference! This {product} generates {meals} meals for homeless pets 💚",
	"Help street pets while shopping for your own! {product} = {meals} meals donated 🍖",
	"Shopping that saves lives. Get this {product} and feed {meals} hungry street animals 🐕🐈",
	"Your purchase = Their meal. This {product} helps provide {meals} meals to street pets ❤️",
}

var hashtagSets = [][]string{
	{"PetsOfInstagram", "CatsOfInstagram", "DogsOfInstagram", "PetLovers", "RescuePets"},
	{"AdoptDontShop", "AnimalRescue", "StreetAnimals", "PetCharity", "HelpAnimals"},
	{"PetProducts", "AmazonPets", "PetAccessories", "PetSupplies", "PetLife"},
	{"CatLover", "DogLover", "PetParent", "FurBaby", "PetCare"},
}

// Captioner picks caption templates, hashtag sets and estimate figures. It is
// safe for concurrent use; a seeded source makes its output reproducible.
type Captioner struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewCaptioner uses src for every random choice. A nil src seeds from the
// runtime's random generator.
func NewCaptioner(src rand.Source) *Captioner {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Captioner{rnd: rand.New(src)}
}

// Caption fills a random template with product and meals.
func (c *Captioner) Caption(product string, meals int64) string {
	tmpl := captionTemplates[c.IntN(len(captionTemplates))]
	return FillTemplate(tmpl, product, meals)
}

// Hashtags returns a random hashtag set rendered as "#A #B ...".
func (c *Captioner) Hashtags() string {
	return FormatHashtags(hashtagSets[c.IntN(len(hashtagSets))])
}

// IntN returns a value in [0, n).
func (c *Captioner) IntN(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.IntN(n)
}

// Between returns a value in [lo, hi).
func (c *Captioner) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + c.IntN(hi-lo)
}

// Int64N returns a value in [0, n).
func (c *Captioner) Int64N(n int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Int64N(n)
}

// FillTemplate substitutes {product} and {meals} in one pass, so a product
// title containing a placeholder is left as written.
func FillTemplate(tmpl, product string, meals int64) string {
	return strings.NewReplacer("{product}", product, "{meals}", strconv.FormatInt(meals, 10)).Replace(tmpl)
}

// FormatHashtags renders tags as space separated hashtags.
func FormatHashtags(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(tag, "#"))
		if tag == "" {
			continue
		}
		parts = append(parts, "#"+tag)
	}
	return strings.Join(parts, " ")
}

// FullCaption joins the caption, hashtags and the closing call to action.
func FullCaption(caption, hashtags string) string {
	return caption + "\n\n" + hashtags + "\n\n" + ShopNowLine
}
