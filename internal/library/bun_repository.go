package library

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunBookRepository persists books through go-repository-bun.
type BunBookRepository struct {
	repo repository.Repository[*Book]
}

// NewBunBookRepository constructs a book repository without caching.
func NewBunBookRepository(db *bun.DB) *BunBookRepository {
	return NewBunBookRepositoryWithCache(db, nil, nil)
}

// NewBunBookRepositoryWithCache constructs a book repository with optional caching.
func NewBunBookRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunBookRepository {
	base := NewBookModelRepository(db)
	return &BunBookRepository{repo: wrapWithCache(base, cacheService, keySerializer)}
}

func (r *BunBookRepository) Upsert(ctx context.Context, record *Book) (*Book, error) {
	existing, err := r.repo.GetByIdentifier(ctx, record.IdentHash)
	if err != nil {
		if !isRepositoryNotFound(err) {
			return nil, mapRepositoryError(err, "book", record.IdentHash)
		}
		created, err := r.repo.Create(ctx, record)
		if err != nil {
			return nil, mapRepositoryError(err, "book", record.IdentHash)
		}
		return created, nil
	}
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "book", record.IdentHash)
	}
	return updated, nil
}

func (r *BunBookRepository) GetByIdentHash(ctx context.Context, identHash string) (*Book, error) {
	result, err := r.repo.GetByIdentifier(ctx, identHash)
	if err != nil {
		return nil, mapRepositoryError(err, "book", identHash)
	}
	return result, nil
}

func (r *BunBookRepository) List(ctx context.Context) ([]*Book, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunBookRepository) Delete(ctx context.Context, identHash string) error {
	existing, err := r.repo.GetByIdentifier(ctx, identHash)
	if err != nil {
		return mapRepositoryError(err, "book", identHash)
	}
	if err := r.repo.Delete(ctx, existing); err != nil {
		return mapRepositoryError(err, "book", identHash)
	}
	return nil
}

// BunDocRepository persists documents through go-repository-bun.
type BunDocRepository struct {
	repo repository.Repository[*Doc]
}

// NewBunDocRepository constructs a document repository without caching.
func NewBunDocRepository(db *bun.DB) *BunDocRepository {
	return NewBunDocRepositoryWithCache(db, nil, nil)
}

// NewBunDocRepositoryWithCache constructs a document repository with optional caching.
func NewBunDocRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunDocRepository {
	base := NewDocModelRepository(db)
	return &BunDocRepository{repo: wrapWithCache(base, cacheService, keySerializer)}
}

func (r *BunDocRepository) Upsert(ctx context.Context, record *Doc) (*Doc, error) {
	existing, err := r.repo.GetByIdentifier(ctx, record.Ident)
	if err != nil {
		if !isRepositoryNotFound(err) {
			return nil, mapRepositoryError(err, "doc", record.Ident)
		}
		created, err := r.repo.Create(ctx, record)
		if err != nil {
			return nil, mapRepositoryError(err, "doc", record.Ident)
		}
		return created, nil
	}
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "doc", record.Ident)
	}
	return updated, nil
}

func (r *BunDocRepository) GetByIdent(ctx context.Context, ident string) (*Doc, error) {
	result, err := r.repo.GetByIdentifier(ctx, ident)
	if err != nil {
		return nil, mapRepositoryError(err, "doc", ident)
	}
	return result, nil
}

// BunAssetRepository persists resources through go-repository-bun.
type BunAssetRepository struct {
	repo repository.Repository[*Asset]
}

// NewBunAssetRepository constructs an asset repository without caching.
func NewBunAssetRepository(db *bun.DB) *BunAssetRepository {
	return NewBunAssetRepositoryWithCache(db, nil, nil)
}

// NewBunAssetRepositoryWithCache constructs an asset repository with optional caching.
func NewBunAssetRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunAssetRepository {
	base := NewAssetModelRepository(db)
	return &BunAssetRepository{repo: wrapWithCache(base, cacheService, keySerializer)}
}

func (r *BunAssetRepository) Upsert(ctx context.Context, record *Asset) (*Asset, error) {
	existing, err := r.repo.GetByIdentifier(ctx, record.Digest)
	if err != nil {
		if !isRepositoryNotFound(err) {
			return nil, mapRepositoryError(err, "asset", record.Digest)
		}
		created, err := r.repo.Create(ctx, record)
		if err != nil {
			return nil, mapRepositoryError(err, "asset", record.Digest)
		}
		return created, nil
	}
	// Content-addressed rows never change once written.
	return existing, nil
}

func (r *BunAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "asset", id.String())
	}
	return result, nil
}

func (r *BunAssetRepository) GetByDigest(ctx context.Context, digest string) (*Asset, error) {
	result, err := r.repo.GetByIdentifier(ctx, digest)
	if err != nil {
		return nil, mapRepositoryError(err, "asset", digest)
	}
	return result, nil
}

// BunBookDocRepository maintains book to document join rows with direct bun queries.
type BunBookDocRepository struct {
	db *bun.DB
}

// NewBunBookDocRepository constructs the join repository.
func NewBunBookDocRepository(db *bun.DB) *BunBookDocRepository {
	return &BunBookDocRepository{db: db}
}

func (r *BunBookDocRepository) Replace(ctx context.Context, bookID uuid.UUID, docIDs []uuid.UUID) error {
	if err := r.DeleteByBook(ctx, bookID); err != nil {
		return err
	}
	if len(docIDs) == 0 {
		return nil
	}
	rows := make([]*BookDoc, 0, len(docIDs))
	for i, docID := range docIDs {
		rows = append(rows, &BookDoc{
			ID:       uuid.New(),
			BookID:   bookID,
			DocID:    docID,
			Position: i,
		})
	}
	if _, err := r.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("book_docs replace: %w", err)
	}
	return nil
}

func (r *BunBookDocRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*BookDoc, error) {
	var rows []*BookDoc
	err := r.db.NewSelect().Model(&rows).
		Where("book_id = ?", bookID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("book_docs list: %w", err)
	}
	return rows, nil
}

func (r *BunBookDocRepository) DeleteByBook(ctx context.Context, bookID uuid.UUID) error {
	if _, err := r.db.NewDelete().Model((*BookDoc)(nil)).
		Where("book_id = ?", bookID).
		Exec(ctx); err != nil {
		return fmt.Errorf("book_docs delete: %w", err)
	}
	return nil
}

// BunBookAssetRepository maintains book to resource join rows with direct bun queries.
type BunBookAssetRepository struct {
	db *bun.DB
}

// NewBunBookAssetRepository constructs the join repository.
func NewBunBookAssetRepository(db *bun.DB) *BunBookAssetRepository {
	return &BunBookAssetRepository{db: db}
}

func (r *BunBookAssetRepository) Replace(ctx context.Context, bookID uuid.UUID, assetIDs []uuid.UUID) error {
	if err := r.DeleteByBook(ctx, bookID); err != nil {
		return err
	}
	if len(assetIDs) == 0 {
		return nil
	}
	rows := make([]*BookAsset, 0, len(assetIDs))
	for i, assetID := range assetIDs {
		rows = append(rows, &BookAsset{
			ID:       uuid.New(),
			BookID:   bookID,
			AssetID:  assetID,
			Position: i,
		})
	}
	if _, err := r.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("book_assets replace: %w", err)
	}
	return nil
}

func (r *BunBookAssetRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*BookAsset, error) {
	var rows []*BookAsset
	err := r.db.NewSelect().Model(&rows).
		Where("book_id = ?", bookID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("book_assets list: %w", err)
	}
	return rows, nil
}

func (r *BunBookAssetRepository) DeleteByBook(ctx context.Context, bookID uuid.UUID) error {
	if _, err := r.db.NewDelete().Model((*BookAsset)(nil)).
		Where("book_id = ?", bookID).
		Exec(ctx); err != nil {
		return fmt.Errorf("book_assets delete: %w", err)
	}
	return nil
}

// BunDocAssetRepository maintains document to resource join rows with direct bun queries.
type BunDocAssetRepository struct {
	db *bun.DB
}

// NewBunDocAssetRepository constructs the join repository.
func NewBunDocAssetRepository(db *bun.DB) *BunDocAssetRepository {
	return &BunDocAssetRepository{db: db}
}

func (r *BunDocAssetRepository) Replace(ctx context.Context, docID uuid.UUID, assetIDs []uuid.UUID) error {
	if _, err := r.db.NewDelete().Model((*DocAsset)(nil)).
		Where("doc_id = ?", docID).
		Exec(ctx); err != nil {
		return fmt.Errorf("doc_assets delete: %w", err)
	}
	if len(assetIDs) == 0 {
		return nil
	}
	rows := make([]*DocAsset, 0, len(assetIDs))
	for i, assetID := range assetIDs {
		rows = append(rows, &DocAsset{
			ID:       uuid.New(),
			DocID:    docID,
			AssetID:  assetID,
			Position: i,
		})
	}
	if _, err := r.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("doc_assets replace: %w", err)
	}
	return nil
}

func (r *BunDocAssetRepository) ListByDoc(ctx context.Context, docID uuid.UUID) ([]*DocAsset, error) {
	var rows []*DocAsset
	err := r.db.NewSelect().Model(&rows).
		Where("doc_id = ?", docID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("doc_assets list: %w", err)
	}
	return rows, nil
}

// CreateTables provisions the library schema. Tests and embedded consumers
// call this against sqlite; production deployments own their migrations.
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Book)(nil),
		(*Doc)(nil),
		(*Asset)(nil),
		(*BookDoc)(nil),
		(*BookAsset)(nil),
		(*DocAsset)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("library create tables: %w", err)
		}
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if isRepositoryNotFound(err) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func isRepositoryNotFound(err error) bool {
	return goerrors.IsCategory(err, repository.CategoryDatabaseNotFound)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
