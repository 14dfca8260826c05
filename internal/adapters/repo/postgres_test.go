package repo

import (
	"strings"
	"testing"
)

func TestListQueriesOrder(t *testing.T) {
	// Прогон пишется одним батчем с общим created_at, порядок извлечения держит id ASC.
	if !strings.Contains(listProductsSQL, "ORDER BY created_at DESC, id ASC") {
		t.Fatalf("продукты должны идти в порядке извлечения внутри прогона: %s", listProductsSQL)
	}
	if !strings.Contains(listSeoPagesSQL, "ORDER BY last_checked DESC, id DESC") {
		t.Fatalf("страницы SEO должны упорядочиваться детерминированно: %s", listSeoPagesSQL)
	}
}
