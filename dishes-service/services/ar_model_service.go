package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models/menu"
	"restaurant-backend/shared/database/repositories"
	"restaurant-backend/shared/logger"
)

var arModelExtensions = map[string]bool{
	".glb":  true,
	".gltf": true,
	".usdz": true,
	".obj":  true,
}

// ARModelService stores the AR model of a dish and keeps Dish.LinkAR pointing at it.
type ARModelService struct {
	dishes  repositories.Store[menu.Dish]
	storage ObjectStorage
	maxSize int64
	log     zerolog.Logger
}

func NewARModelService(dishes repositories.Store[menu.Dish], storage ObjectStorage, maxSize int64, log zerolog.Logger) *ARModelService {
	return &ARModelService{
		dishes:  dishes,
		storage: storage,
		maxSize: maxSize,
		log:     logger.Component(log, "ar_model"),
	}
}

// ValidateUpload checks size and extension of an uploaded model file.
func (s *ARModelService) ValidateUpload(fileName string, size int64) error {
	if size <= 0 {
		return apperr.New(apperr.Validation, "File is empty")
	}
	if s.maxSize > 0 && size > s.maxSize {
		return apperr.New(apperr.Validation, fmt.Sprintf("File size exceeds %dMB limit", s.maxSize>>20))
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !arModelExtensions[ext] {
		return apperr.New(apperr.Validation, fmt.Sprintf("Unsupported file type '%s'", ext))
	}
	return nil
}

// Upload stores file as the AR model of dish dishID and returns the updated dish.
// The object is removed again when the dish cannot be updated.
func (s *ARModelService) Upload(ctx context.Context, dishID int64, file io.Reader, fileName string, size int64, contentType string) (*menu.Dish, error) {
	if err := s.ValidateUpload(fileName, size); err != nil {
		return nil, err
	}

	dish, err := s.dishes.Get(ctx, dishID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("dishes/%d/%s%s", dishID, uuid.New().String(), strings.ToLower(filepath.Ext(fileName)))
	link, err := s.storage.Upload(ctx, key, file, size, contentType)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "upload AR model", err)
	}

	dish.LinkAR = link
	if err := s.dishes.Update(ctx, dishID, dish); err != nil {
		if rmErr := s.storage.Remove(ctx, key); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("key", key).Msg("failed to clean up AR model")
		}
		return nil, err
	}

	s.log.Info().Int64("dish_id", dishID).Str("key", key).Msg("AR model uploaded")
	return dish, nil
}
