package core

import (
	"context"
	"fmt"

	"bookdist/internal/persistence"
	"bookdist/pkg/domain"
)

// UpdateSettings validates and stores new settings.
func (s *Service) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	err := s.run(ctx, "update_settings", func(ctx context.Context) error {
		if err := persistence.ValidateSettings(settings); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		s.settings = settings
		if err := s.adapter.SaveSettings(ctx, settings); err != nil {
			s.logger.Error("persist settings", "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		return s.Settings(), err
	}
	return settings, nil
}
