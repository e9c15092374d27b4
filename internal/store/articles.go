package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aguilarm/mobiliario/internal/model"
)

// articleColumns selects article fields plus the derived under-review
// holdback (sum of open repair revisions) and the category name.
const articleColumns = `
	a.id, a.name, a.category_id, a.quantity, a.image_mime,
	a.created_at, a.updated_at, a.deleted_at,
	c.name AS category_name,
	COALESCE((SELECT SUM(r.revision) FROM repairs r WHERE r.article_id = a.id), 0) AS under_review`

// CreateArticle creates a new article.
func CreateArticle(ctx context.Context, db *sql.DB, name string, categoryID int64, quantity int) (*model.Article, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO articles (name, category_id, quantity) VALUES (?, ?, ?)`,
		name, categoryID, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("creating article: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting article id: %w", err)
	}

	return GetArticle(ctx, db, id)
}

// GetArticle returns an article by ID, including its repair holdback.
func GetArticle(ctx context.Context, db *sql.DB, id int64) (*model.Article, error) {
	a := &model.Article{}
	var imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+articleColumns+`
		 FROM articles a JOIN categories c ON c.id = a.category_id
		 WHERE a.id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.CategoryID, &a.Quantity, &imageMime,
		&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt, &a.CategoryName, &a.UnderReview)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting article: %w", err)
	}
	a.ImageMime = imageMime.String
	return a, nil
}

// ListArticles returns all non-deleted articles, optionally filtered by category.
func ListArticles(ctx context.Context, db *sql.DB, categoryID int64) ([]model.Article, error) {
	query := `SELECT ` + articleColumns + `
	          FROM articles a JOIN categories c ON c.id = a.category_id
	          WHERE a.deleted_at IS NULL`
	var args []any

	if categoryID > 0 {
		query += ` AND a.category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY a.name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var articles []model.Article
	for rows.Next() {
		var a model.Article
		var imageMime sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.CategoryID, &a.Quantity, &imageMime,
			&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt, &a.CategoryName, &a.UnderReview); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		a.ImageMime = imageMime.String
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// UpdateArticle updates an article's metadata and owned quantity.
func UpdateArticle(ctx context.Context, db *sql.DB, id int64, name string, categoryID int64, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}

	_, err := db.ExecContext(ctx,
		`UPDATE articles SET name = ?, category_id = ?, quantity = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		name, categoryID, quantity, id,
	)
	if err != nil {
		return fmt.Errorf("updating article: %w", err)
	}
	return nil
}

// DeleteArticle soft-deletes an article.
func DeleteArticle(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE articles SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	return nil
}

// SetArticleImage sets an article's image data.
func SetArticleImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE articles SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting article image: %w", err)
	}
	return nil
}

// GetArticleImage returns an article's image data and MIME type.
func GetArticleImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM articles WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting article image: %w", err)
	}
	return image, mime.String, nil
}

// ArticleHoldbacks returns per-article units held out by open repairs.
func ArticleHoldbacks(ctx context.Context, db *sql.DB) (map[int64]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT article_id, SUM(revision) FROM repairs GROUP BY article_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading repair holdbacks: %w", err)
	}
	defer rows.Close()

	holdback := make(map[int64]int)
	for rows.Next() {
		var articleID int64
		var held int
		if err := rows.Scan(&articleID, &held); err != nil {
			return nil, fmt.Errorf("scanning repair holdback: %w", err)
		}
		holdback[articleID] = held
	}
	return holdback, rows.Err()
}
