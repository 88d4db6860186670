package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pricewatch/internal/app/pricewatch/entity"

	"github.com/PuerkitoBio/goquery"
)

// Селекторы макета страницы товара
const (
	titleSelector = "#productTitle"
	priceSelector = ".a-price .a-offscreen"
)

// ScraperClient реализует PriceFetcher поверх HTTP.
// Отвечает только за загрузку и разбор одной страницы товара.
type ScraperClient struct {
	httpClient *http.Client
	userAgent  string
}

// NewScraperClient создает новый клиент загрузки страниц товаров
func NewScraperClient(userAgent string, timeoutSec int) *ScraperClient {
	return &ScraperClient{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		userAgent: userAgent,
	}
}

// Fetch загружает страницу товара и извлекает название и текущую цену
func (c *ScraperClient) Fetch(ctx context.Context, url string) (*entity.ProductSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, err)
	}

	title := strings.TrimSpace(doc.Find(titleSelector).First().Text())
	if title == "" {
		return nil, ErrTitleNotFound
	}

	priceText := doc.Find(priceSelector).First().Text()
	if strings.TrimSpace(priceText) == "" {
		return nil, ErrPriceNotFound
	}

	price, err := parsePrice(priceText)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrPriceUnparseable, strings.TrimSpace(priceText))
	}

	return &entity.ProductSnapshot{
		Name:  title,
		Price: price,
		URL:   url,
	}, nil
}

// parsePrice извлекает целую цену из текста вида "¥1,234" или "$56.00".
// Оставляем только цифры - знак валюты и разделители разрядов отбрасываются.
func parsePrice(text string) (int, error) {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("no digits in price text")
	}
	return strconv.Atoi(digits.String())
}
