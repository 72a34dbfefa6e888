package services

import (
	"tajimart/internal/domain"
	"tajimart/internal/repos"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) ListProductsByCategory(catID string, page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Prods.ListByCategory(catID, pageSize, offset)
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

func (s *CatalogService) Search(q, category string, page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Prods.Search(q, category, pageSize, offset)
}

// SetDiscount updates a product's promotional discount (admin).
func (s *CatalogService) SetDiscount(productID string, pct int) error {
	return s.Prods.SetDiscount(productID, pct)
}

// SetStock replaces a product's stock level (admin).
func (s *CatalogService) SetStock(productID string, qty int) error {
	return s.Prods.SetStock(productID, qty)
}

// Stock reports the available quantity for one product.
func (s *CatalogService) Stock(productID string) (int, error) {
	return s.Prods.Stock(productID)
}
