package usecase

import (
	"context"
	"fmt"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
	"strings"
)

type GetPropertyBySlugUseCase struct {
	catalog port.PropertyCatalogPort
}

func NewGetPropertyBySlugUseCase(catalog port.PropertyCatalogPort) *GetPropertyBySlugUseCase {
	return &GetPropertyBySlugUseCase{catalog: catalog}
}

func (uc *GetPropertyBySlugUseCase) Execute(ctx context.Context, slug string) (*domain.Property, error) {
	slug = strings.TrimSpace(slug)
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetPropertyBySlug",
		"slug":     slug,
	})

	if slug == "" {
		return nil, fmt.Errorf("%w: empty slug", domain.ErrInvalidInput)
	}

	property, err := uc.catalog.GetPropertyBySlug(ctx, slug)
	if err != nil {
		logger.Error("Failed to load property", err, nil)
		return nil, err
	}
	if property == nil {
		logger.Warn("Property not found", nil)
		return nil, domain.ErrNotFound
	}
	return property, nil
}
