package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// Article is the extracted payload of one news page.
type Article struct {
	Title    string
	Content  string
	Summary  string
	ImageURL string
}

// minContentChars filters out pages where extraction only caught
// navigation noise.
const minContentChars = 30

// Elements stripped before content extraction. Chrome, ads and social
// widgets pollute the text otherwise.
var removeSelectors = []string{
	"script", "style", "nav", "header", "footer", "aside",
	".ads", ".publicidad", "#comentarios", ".comments", ".sidebar", ".menu",
	".relacionadas", ".tags", ".share", ".social", ".author-box",
	".newsletter", ".subscription", ".breadcrumb",
}

// Content containers tried in order; the first match with substance
// wins.
var contentSelectors = []string{
	"article", ".article-body", ".story-body", ".content-body",
	".nota-contenido", ".post-content", ".entry-content",
	"#main-content", ".cuerpo-noticia", "main",
	"div[itemprop=\"articleBody\"]", ".article__body",
}

var leadSelectors = []string{
	".bajada", ".lead", ".excerpt", ".resumen", ".epigraph", ".article-lead", ".intro",
}

// ExtractArticle parses a news page into its title, body and lead.
func ExtractArticle(r io.Reader) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse article page")
	}

	for _, sel := range removeSelectors {
		doc.Find(sel).Remove()
	}

	article := &Article{
		Title:    extractTitle(doc),
		Content:  extractContent(doc),
		Summary:  firstText(doc, leadSelectors),
		ImageURL: extractImage(doc),
	}

	if article.Title == "" {
		return nil, errors.New("article has no title")
	}
	if len(article.Content) < minContentChars {
		return nil, errors.Errorf("article content too short (%d chars)", len(article.Content))
	}

	return article, nil
}

func extractTitle(doc *goquery.Document) string {
	if title, ok := doc.Find("meta[property=\"og:title\"]").First().Attr("content"); ok {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractContent(doc *goquery.Document) string {
	for _, sel := range contentSelectors {
		text := collapseWhitespace(doc.Find(sel).First().Text())
		if len(text) > 100 {
			return text
		}
	}

	// Fallback: gather substantial paragraphs.
	var paragraphs []string
	doc.Find("p").Each(func(i int, p *goquery.Selection) {
		text := collapseWhitespace(p.Text())
		if len(text) > 60 {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

func extractImage(doc *goquery.Document) string {
	if img, ok := doc.Find("meta[property=\"og:image\"]").First().Attr("content"); ok {
		return strings.TrimSpace(img)
	}
	if img, ok := doc.Find("article img").First().Attr("src"); ok {
		return strings.TrimSpace(img)
	}
	return ""
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := collapseWhitespace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
