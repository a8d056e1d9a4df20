// Package news serves published editorial articles and the newsletter
// subscription list.
package news

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/pkg/db"
	"github.com/atelierno/storefront-backend/pkg/db/models"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/pagination"
)

// Repository encapsulates news persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a news repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListPublished returns published articles, newest first, optionally limited
// to one category.
func (r *Repository) ListPublished(ctx context.Context, categorySlug string, params pagination.Params) ([]models.NewsArticle, string, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	decodedCursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Preload("Category").
		Where("published = ?", true)
	if categorySlug != "" {
		query = query.Where("category_id IN (?)",
			r.db.Model(&models.NewsCategory{}).Select("id").Where("slug = ?", categorySlug))
	}
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var articles []models.NewsArticle
	err = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&articles).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(articles) > normalizedLimit {
		articles = articles[:normalizedLimit]
		last := articles[len(articles)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return articles, nextCursor, nil
}

// FindPublishedBySlug loads one published article.
func (r *Repository) FindPublishedBySlug(ctx context.Context, slug string) (*models.NewsArticle, error) {
	var article models.NewsArticle
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND published = ?", slug, true).
		First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// categoryCount pairs a category with its published article count.
type categoryCount struct {
	models.NewsCategory
	PublishedCount int64 `gorm:"column:published_count"`
}

// ListCategoriesWithCounts returns categories with their published article counts.
func (r *Repository) ListCategoriesWithCounts(ctx context.Context) ([]categoryCount, error) {
	var rows []categoryCount
	err := r.db.WithContext(ctx).
		Table("news_categories").
		Select("news_categories.*, COUNT(news_articles.id) AS published_count").
		Joins("LEFT JOIN news_articles ON news_articles.category_id = news_categories.id AND news_articles.published = ?", true).
		Group("news_categories.id").
		Order("news_categories.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Subscribe inserts a subscriber row.
func (r *Repository) Subscribe(ctx context.Context, subscriber *models.NewsSubscriber) error {
	return r.db.WithContext(ctx).Create(subscriber).Error
}

// ArticleDTO is a published article.
type ArticleDTO struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Content      string     `json:"content,omitempty"`
	CategorySlug string     `json:"category_slug,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ArticlePage is a cursor-paginated article listing.
type ArticlePage struct {
	Items      []ArticleDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CategoryDTO is a news category with its published article count.
type CategoryDTO struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	PublishedCount int64     `json:"published_count"`
}

// ServiceParams groups dependencies for the news service.
type ServiceParams struct {
	Repo *Repository
}

// Service exposes the public news surface.
type Service interface {
	ListArticles(ctx context.Context, categorySlug string, params pagination.Params) (ArticlePage, error)
	GetArticle(ctx context.Context, slug string) (ArticleDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	Subscribe(ctx context.Context, email string) error
}

type service struct {
	repo *Repository
}

// NewService builds a news service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "news repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// ListArticles returns published articles, optionally scoped to a category.
func (s *service) ListArticles(ctx context.Context, categorySlug string, params pagination.Params) (ArticlePage, error) {
	articles, nextCursor, err := s.repo.ListPublished(ctx, categorySlug, params)
	if err != nil {
		return ArticlePage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list articles")
	}

	items := make([]ArticleDTO, 0, len(articles))
	for _, article := range articles {
		items = append(items, toArticleDTO(article, false))
	}
	return ArticlePage{Items: items, NextCursor: nextCursor}, nil
}

// GetArticle returns one published article with its content.
func (s *service) GetArticle(ctx context.Context, slug string) (ArticleDTO, error) {
	if strings.TrimSpace(slug) == "" {
		return ArticleDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "article slug is required")
	}
	article, err := s.repo.FindPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ArticleDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "article not found")
		}
		return ArticleDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article")
	}
	return toArticleDTO(*article, true), nil
}

// ListCategories returns news categories with published article counts.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategoriesWithCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list news categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryDTO{
			ID:             row.ID,
			Title:          row.Title,
			Slug:           row.Slug,
			PublishedCount: row.PublishedCount,
		})
	}
	return out, nil
}

// Subscribe records a newsletter signup; resubscribing is a no-op.
func (s *service) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}

	subscriber := &models.NewsSubscriber{ID: uuid.New(), Email: email, IsActive: true}
	if err := s.repo.Subscribe(ctx, subscriber); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe")
	}
	return nil
}

func toArticleDTO(article models.NewsArticle, includeContent bool) ArticleDTO {
	dto := ArticleDTO{
		ID:          article.ID,
		Title:       article.Title,
		Slug:        article.Slug,
		PublishedAt: article.PublishedAt,
		CreatedAt:   article.CreatedAt,
	}
	if includeContent {
		dto.Content = article.Content
	}
	if article.Category != nil {
		dto.CategorySlug = article.Category.Slug
	}
	return dto
}
