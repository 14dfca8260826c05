package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"smm-planner/internal/adapters/htmltext"
	"smm-planner/internal/domain"
)

// MaxImages ограничивает число изображений у продукта.
const MaxImages = 3

// priceRe ищет цену в рандах: «R 1 299,00», «R499».
var priceRe = regexp.MustCompile(`(?i)R\s?\d+[\d.,]*`)

// Extract извлекает продукты из страниц и убирает дубли по паре (title, url).
// Страница без заголовков h2/h3 продукта не даёт.
func Extract(pages []domain.CrawledPage) []domain.Product {
	products := make([]domain.Product, 0, len(pages))
	for _, page := range pages {
		product, ok := ExtractPage(page)
		if !ok {
			continue
		}
		products = append(products, product)
	}
	return DeduplicateByTitleURL(products)
}

// ExtractPage строит продукт по одной странице.
func ExtractPage(page domain.CrawledPage) (domain.Product, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return domain.Product{}, false
	}

	title := firstHeading(doc)
	if title == "" {
		return domain.Product{}, false
	}

	return domain.Product{
		Title:   title,
		URL:     page.URL,
		Summary: htmltext.SummarizeHTML(page.HTML),
		Price:   priceRe.FindString(page.HTML),
		Images:  imageSources(doc, MaxImages),
		Tags:    htmltext.GuessTags(page.HTML),
	}, true
}

func firstHeading(doc *goquery.Document) string {
	var title string
	doc.Find("h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title = htmltext.Strip(s.Text())
		return title == ""
	})
	return title
}

func imageSources(doc *goquery.Document, limit int) []string {
	images := make([]string, 0, limit)
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src != "" {
			images = append(images, src)
		}
		return len(images) < limit
	})
	return images
}

// DeduplicateByTitleURL оставляет первый продукт для каждой пары (title, url).
func DeduplicateByTitleURL(products []domain.Product) []domain.Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		key := p.Title + "|" + p.URL
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
