package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models"
)

// Record is implemented by pointers to the resource models (see models.Base).
type Record[T any] interface {
	*T
	GetID() int64
	SetID(id int64)
}

// Linker is implemented by models with many-to-many links exposed as id lists.
type Linker interface {
	Links() []models.Link
}

// Store is plain CRUD over one resource table.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	FindBy(ctx context.Context, column string, value any) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, id int64, item *T) error
	Delete(ctx context.Context, id int64) error
}

// GormStore implements Store with gorm. preloads name the associations loaded on read.
type GormStore[T any, P Record[T]] struct {
	db       *gorm.DB
	preloads []string
}

func NewGormStore[T any, P Record[T]](db *gorm.DB, preloads ...string) *GormStore[T, P] {
	return &GormStore[T, P]{db: db, preloads: preloads}
}

func (s *GormStore[T, P]) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	for _, name := range s.preloads {
		q = q.Preload(name)
	}
	return q
}

func (s *GormStore[T, P]) List(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	if err := s.query(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list records", err)
	}
	return items, nil
}

func (s *GormStore[T, P]) Get(ctx context.Context, id int64) (*T, error) {
	var item T
	if err := s.query(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateStoreError(err, "get record")
	}
	return &item, nil
}

// FindBy returns the first row whose column equals value. column must not come from user input.
func (s *GormStore[T, P]) FindBy(ctx context.Context, column string, value any) (*T, error) {
	var item T
	err := s.query(ctx).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Order("id").First(&item).Error
	if err != nil {
		return nil, translateStoreError(err, "find record")
	}
	return &item, nil
}

func (s *GormStore[T, P]) Create(ctx context.Context, item *T) error {
	P(item).SetID(0)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return translateStoreError(err, "create record")
		}
		return replaceLinks(tx, item)
	})
}

// Update replaces every column of row id with item.
func (s *GormStore[T, P]) Update(ctx context.Context, id int64, item *T) error {
	P(item).SetID(id)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(item).Select("*").Omit("id", clause.Associations).Updates(item)
		if result.Error != nil {
			return translateStoreError(result.Error, "update record")
		}
		if result.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "Not found.")
		}
		return replaceLinks(tx, item)
	})
}

func (s *GormStore[T, P]) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return translateStoreError(result.Error, "delete record")
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Not found.")
	}
	return nil
}

func replaceLinks(tx *gorm.DB, item any) error {
	linker, ok := item.(Linker)
	if !ok {
		return nil
	}
	for _, link := range linker.Links() {
		if err := checkLinkTargets(tx, link); err != nil {
			return err
		}
		if err := tx.Model(item).Association(link.Association).Replace(link.Targets); err != nil {
			return translateStoreError(err, "replace "+link.Association)
		}
	}
	return nil
}

// checkLinkTargets rejects links to rows that do not exist instead of letting
// the association upsert create empty ones.
func checkLinkTargets(tx *gorm.DB, link models.Link) error {
	if len(link.IDs) == 0 {
		return nil
	}
	var found []int64
	if err := tx.Model(link.Targets).Where("id IN ?", link.IDs).Pluck("id", &found).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "check linked records", err)
	}
	present := make(map[int64]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	for _, id := range link.IDs {
		if !present[id] {
			return apperr.New(apperr.Validation, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	return nil
}

func translateStoreError(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New(apperr.NotFound, "Not found.")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Wrap(apperr.Validation, "Referenced object does not exist.", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.Validation, "Record already exists.", err)
	}
	return apperr.Wrap(apperr.Internal, op, err)
}
