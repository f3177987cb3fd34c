// Package library stores adapted books in repository-backed storage: the
// tree shape on the book row, page content and resources content-addressed
// in their own tables, join rows preserving reading order.
package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/identity"
	"github.com/goliatone/go-epub/internal/logging"
	"github.com/goliatone/go-epub/internal/validation"
	"github.com/goliatone/go-epub/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	ErrBookIdentRequired = errors.New("library: book ident-hash is required")
	ErrBinderRequired    = errors.New("library: binder is required")
)

// Service exposes archive storage use-cases.
type Service interface {
	Store(ctx context.Context, binder *book.Binder) (*Book, error)
	Load(ctx context.Context, identHash string) (*book.Binder, error)
	List(ctx context.Context) ([]*Book, error)
	Delete(ctx context.Context, identHash string) error
}

// ServiceOption customises service construction.
type ServiceOption func(*service)

// WithLogger injects the logger used by the service. Defaults to no-op.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

type service struct {
	books      BookRepository
	docs       DocRepository
	assets     AssetRepository
	bookDocs   BookDocRepository
	bookAssets BookAssetRepository
	docAssets  DocAssetRepository
	logger     interfaces.Logger
	clock      func() time.Time
}

// NewService wires the archive storage service over the supplied repositories.
func NewService(
	books BookRepository,
	docs DocRepository,
	assets AssetRepository,
	bookDocs BookDocRepository,
	bookAssets BookAssetRepository,
	docAssets DocAssetRepository,
	opts ...ServiceOption,
) Service {
	s := &service{
		books:      books,
		docs:       docs,
		assets:     assets,
		bookDocs:   bookDocs,
		bookAssets: bookAssets,
		docAssets:  docAssets,
		logger:     logging.NoOp(),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Store(ctx context.Context, binder *book.Binder) (*Book, error) {
	if binder == nil {
		return nil, ErrBinderRequired
	}
	identHash := binder.IdentHash()
	if identHash == "" {
		return nil, ErrBookIdentRequired
	}

	tree := book.ModelToTree(binder)
	treeMap, err := toJSONMap(tree)
	if err != nil {
		return nil, fmt.Errorf("library: encode tree: %w", err)
	}
	if err := validation.ValidateTreeMap(treeMap); err != nil {
		return nil, fmt.Errorf("library: tree for %s: %w", identHash, err)
	}

	metadataMap, err := binder.Metadata().AsMap()
	if err != nil {
		return nil, fmt.Errorf("library: encode metadata: %w", err)
	}

	now := s.clock()
	record := &Book{
		ID:        identity.BookUUID(identHash),
		IdentHash: identHash,
		Title:     binder.Metadata().Title,
		Metadata:  metadataMap,
		Tree:      treeMap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := s.books.Upsert(ctx, record)
	if err != nil {
		return nil, err
	}

	logger := logging.WithBookContext(s.logger, identHash, "", "store")

	docIDs := make([]uuid.UUID, 0)
	for _, node := range book.FlattenModel(binder) {
		var (
			doc       *book.Document
			mediaType string
		)
		switch n := node.(type) {
		case *book.CompositeDocument:
			doc, mediaType = &n.Document, book.CompositeDocumentMediaType
		case *book.Document:
			doc, mediaType = n, book.DocumentMediaType
		default:
			continue
		}
		docRecord, err := s.storeDoc(ctx, doc, mediaType, now)
		if err != nil {
			return nil, err
		}
		docIDs = append(docIDs, docRecord.ID)
	}
	if err := s.bookDocs.Replace(ctx, stored.ID, docIDs); err != nil {
		return nil, err
	}

	// Binder-level resources (covers, collation rulesets) live on the book
	// itself, not on any page.
	assetIDs, err := s.storeAssets(ctx, binder.Resources(), now)
	if err != nil {
		return nil, err
	}
	if err := s.bookAssets.Replace(ctx, stored.ID, assetIDs); err != nil {
		return nil, err
	}

	logger.Info("library.store.success", "doc_count", len(docIDs), "resource_count", len(assetIDs))
	return stored, nil
}

func (s *service) storeDoc(ctx context.Context, doc *book.Document, mediaType string, now time.Time) (*Doc, error) {
	ident := docIdent(doc)
	metadataMap, err := doc.Metadata().AsMap()
	if err != nil {
		return nil, fmt.Errorf("library: encode doc %s metadata: %w", ident, err)
	}

	record := &Doc{
		ID:        identity.DocUUID(ident),
		Ident:     ident,
		MediaType: mediaType,
		Content:   doc.Content(),
		Metadata:  metadataMap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := s.docs.Upsert(ctx, record)
	if err != nil {
		return nil, err
	}

	assetIDs, err := s.storeAssets(ctx, doc.Resources(), now)
	if err != nil {
		return nil, err
	}
	if err := s.docAssets.Replace(ctx, stored.ID, assetIDs); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *service) storeAssets(ctx context.Context, resources []*book.Resource, now time.Time) ([]uuid.UUID, error) {
	assetIDs := make([]uuid.UUID, 0, len(resources))
	for _, res := range resources {
		asset := &Asset{
			ID:        identity.AssetUUID(res.Digest()),
			Digest:    res.Digest(),
			Filename:  res.Filename(),
			MediaType: res.MediaType(),
			Data:      res.Data(),
			CreatedAt: now,
		}
		stored, err := s.assets.Upsert(ctx, asset)
		if err != nil {
			return nil, err
		}
		assetIDs = append(assetIDs, stored.ID)
	}
	return assetIDs, nil
}

func (s *service) Load(ctx context.Context, identHash string) (*book.Binder, error) {
	record, err := s.books.GetByIdentHash(ctx, identHash)
	if err != nil {
		return nil, err
	}

	tree, err := treeFromMap(record.Tree)
	if err != nil {
		return nil, fmt.Errorf("library: decode tree for %s: %w", identHash, err)
	}

	metadata, err := book.MetadataFromMap(record.Metadata)
	if err != nil {
		return nil, fmt.Errorf("library: decode metadata for %s: %w", identHash, err)
	}

	id, _, err := book.SplitIdentHash(record.IdentHash)
	if err != nil {
		id = record.IdentHash
	}
	binder := book.NewBinder(id, metadata)
	if err := s.loadChildren(ctx, &binder.TranslucentBinder, tree.Contents); err != nil {
		return nil, err
	}

	rows, err := s.bookAssets.ListByBook(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	assetIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		assetIDs = append(assetIDs, row.AssetID)
	}
	resources, err := s.resolveAssets(ctx, assetIDs)
	if err != nil {
		return nil, err
	}
	binder.SetResources(resources...)
	return binder, nil
}

func (s *service) loadChildren(ctx context.Context, parent *book.TranslucentBinder, nodes []*book.TreeNode) error {
	for _, node := range nodes {
		child, err := s.loadNode(ctx, node)
		if err != nil {
			return err
		}
		parent.Append(child)
		if node.Title != "" && node.Title != child.Metadata().Title {
			if err := parent.SetTitleForNode(child, node.Title); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *service) loadNode(ctx context.Context, node *book.TreeNode) (book.Node, error) {
	if node.ID == book.TranslucentBinderID || len(node.Contents) > 0 {
		sub := book.NewTranslucentBinder(book.Metadata{Title: node.Title})
		if err := s.loadChildren(ctx, sub, node.Contents); err != nil {
			return nil, err
		}
		return sub, nil
	}

	record, err := s.docs.GetByIdent(ctx, node.ID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			// Leaves without stored content point at documents published
			// elsewhere.
			return book.NewDocumentPointer(node.ID, book.Metadata{Title: node.Title}), nil
		}
		return nil, err
	}
	return s.rebuildDocument(ctx, record)
}

func (s *service) rebuildDocument(ctx context.Context, record *Doc) (book.Node, error) {
	metadata, err := book.MetadataFromMap(record.Metadata)
	if err != nil {
		return nil, fmt.Errorf("library: decode metadata for doc %s: %w", record.Ident, err)
	}

	resources, err := s.loadResources(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	id := record.Ident
	if split, _, err := book.SplitIdentHash(record.Ident); err == nil && split != "" {
		id = split
	}

	if record.MediaType == book.CompositeDocumentMediaType {
		return book.NewCompositeDocument(id, record.Content, metadata, resources...)
	}
	return book.NewDocument(id, record.Content, metadata, resources...)
}

func (s *service) loadResources(ctx context.Context, docID uuid.UUID) ([]*book.Resource, error) {
	rows, err := s.docAssets.ListByDoc(ctx, docID)
	if err != nil {
		return nil, err
	}
	assetIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		assetIDs = append(assetIDs, row.AssetID)
	}
	return s.resolveAssets(ctx, assetIDs)
}

func (s *service) resolveAssets(ctx context.Context, assetIDs []uuid.UUID) ([]*book.Resource, error) {
	resources := make([]*book.Resource, 0, len(assetIDs))
	for _, assetID := range assetIDs {
		asset, err := s.assets.GetByID(ctx, assetID)
		if err != nil {
			return nil, err
		}
		res, err := book.NewResource(asset.Filename, bytes.NewReader(asset.Data), asset.MediaType, asset.Filename)
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, nil
}

func (s *service) List(ctx context.Context) ([]*Book, error) {
	return s.books.List(ctx)
}

func (s *service) Delete(ctx context.Context, identHash string) error {
	record, err := s.books.GetByIdentHash(ctx, identHash)
	if err != nil {
		return err
	}
	// Docs and assets stay: they are content-addressed and may be shared
	// with other stored books.
	if err := s.bookDocs.DeleteByBook(ctx, record.ID); err != nil {
		return err
	}
	if err := s.bookAssets.DeleteByBook(ctx, record.ID); err != nil {
		return err
	}
	if err := s.books.Delete(ctx, identHash); err != nil {
		return err
	}
	logging.WithBookContext(s.logger, identHash, "", "delete").Info("library.delete.success")
	return nil
}

func docIdent(doc *book.Document) string {
	if ident := doc.IdentHash(); ident != "" {
		return ident
	}
	return doc.ID()
}

func toJSONMap(value any) (map[string]any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func fromJSONMap(src map[string]any, dst any) error {
	if src == nil {
		return nil
	}
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func treeFromMap(src map[string]any) (*book.TreeNode, error) {
	var tree book.TreeNode
	if err := fromJSONMap(src, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}
