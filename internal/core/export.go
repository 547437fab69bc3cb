package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"bookdist/internal/blob"
	"bookdist/internal/export"
	"bookdist/pkg/domain"
)

const exportPrefix = "exports"

// PublishedExport pairs a rendered artifact with where it was stored.
type PublishedExport struct {
	Artifact export.Artifact `json:"artifact"`
	Blob     blob.Info       `json:"blob"`
}

// Render produces one export file without publishing it. An empty
// snapshotID renders the current data.
func (s *Service) Render(ctx context.Context, snapshotID string, format export.Format) (export.Artifact, []byte, error) {
	var (
		artifact export.Artifact
		payload  []byte
	)
	err := s.run(ctx, "render", func(context.Context) error {
		tree, ref, err := s.exportSource(snapshotID)
		if err != nil {
			return err
		}
		artifact, payload, err = export.NewRenderer(s.location).Render(format, tree, ref)
		return err
	})
	return artifact, payload, err
}

// Export renders each format and publishes it to the blob store under
// exports/current/ or exports/<snapshotID>/. Existing objects are replaced.
// No formats means the xls and doc pair.
func (s *Service) Export(ctx context.Context, snapshotID string, formats ...export.Format) ([]PublishedExport, error) {
	if len(formats) == 0 {
		formats = export.DefaultFormats()
	}
	var out []PublishedExport
	err := s.run(ctx, "export", func(ctx context.Context) error {
		tree, ref, err := s.exportSource(snapshotID)
		if err != nil {
			return err
		}
		renderer := export.NewRenderer(s.location)
		dir := "current"
		if snapshotID != "" {
			dir = snapshotID
		}
		for _, format := range formats {
			artifact, payload, err := renderer.Render(format, tree, ref)
			if err != nil {
				return err
			}
			key := path.Join(exportPrefix, dir, artifact.FileName)
			info, err := s.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
				ContentType: artifact.ContentType,
				Metadata:    map[string]string{"format": string(artifact.Format)},
			})
			if err != nil {
				return fmt.Errorf("publish %s: %w", artifact.FileName, err)
			}
			if url, err := s.blobs.PresignURL(ctx, key, blob.SignedURLOptions{}); err == nil {
				info.URL = url
			} else if !errors.Is(err, blob.ErrUnsupported) {
				s.logger.Warn("presign export", "key", key, "error", err)
			}
			s.logger.Info("export published", "format", artifact.Format, "key", key, "bytes", artifact.SizeBytes)
			out = append(out, PublishedExport{Artifact: artifact, Blob: info})
		}
		return nil
	})
	return out, err
}

// PublishedExports lists every published export file ordered by key.
func (s *Service) PublishedExports(ctx context.Context) ([]blob.Info, error) {
	var out []blob.Info
	err := s.run(ctx, "list_exports", func(ctx context.Context) error {
		infos, err := s.blobs.List(ctx, exportPrefix+"/")
		if err != nil {
			return err
		}
		out = infos
		return nil
	})
	return out, err
}

// ExportInfo returns the metadata of one published file. name is relative
// to the exports directory, e.g. "current/<file>".
func (s *Service) ExportInfo(ctx context.Context, name string) (blob.Info, error) {
	var info blob.Info
	err := s.run(ctx, "stat_export", func(ctx context.Context) error {
		key, err := exportKey(name)
		if err != nil {
			return err
		}
		info, err = s.blobs.Head(ctx, key)
		return notFound(key, err)
	})
	return info, err
}

// OpenExport streams one published file. The caller closes the reader.
func (s *Service) OpenExport(ctx context.Context, name string) (blob.Info, io.ReadCloser, error) {
	var (
		info blob.Info
		rc   io.ReadCloser
	)
	err := s.run(ctx, "open_export", func(ctx context.Context) error {
		key, err := exportKey(name)
		if err != nil {
			return err
		}
		info, rc, err = s.blobs.Get(ctx, key)
		return notFound(key, err)
	})
	return info, rc, err
}

// removeSnapshotExports deletes the files published for the given snapshots.
// With no ids every snapshot directory goes; exports/current/ is kept.
// Failures are logged because the log change is already committed.
func (s *Service) removeSnapshotExports(ctx context.Context, ids ...string) {
	prefixes := make([]string, 0, len(ids))
	for _, id := range ids {
		prefixes = append(prefixes, path.Join(exportPrefix, id)+"/")
	}
	if len(ids) == 0 {
		prefixes = append(prefixes, exportPrefix+"/")
	}
	current := path.Join(exportPrefix, "current") + "/"
	for _, prefix := range prefixes {
		infos, err := s.blobs.List(ctx, prefix)
		if err != nil {
			s.logger.Warn("list snapshot exports", "prefix", prefix, "error", err)
			continue
		}
		for _, info := range infos {
			if strings.HasPrefix(info.Key, current) {
				continue
			}
			if _, err := s.blobs.Delete(ctx, info.Key); err != nil {
				s.logger.Warn("delete snapshot export", "key", info.Key, "error", err)
				continue
			}
			s.logger.Info("snapshot export removed", "key", info.Key)
		}
	}
}

func exportKey(name string) (string, error) {
	key := path.Join(exportPrefix, strings.TrimPrefix(name, "/"))
	if !strings.HasPrefix(key, exportPrefix+"/") {
		return "", fmt.Errorf("export %q: %w", name, ErrNotFound)
	}
	return key, nil
}

func notFound(key string, err error) error {
	if errors.Is(err, blob.ErrNotFound) {
		return fmt.Errorf("export %s: %w", key, ErrNotFound)
	}
	return err
}

// exportSource returns the tree to export and, for snapshots, the archive
// timestamp. Callers hold the lock.
func (s *Service) exportSource(snapshotID string) ([]domain.School, *time.Time, error) {
	if snapshotID == "" {
		return domain.CloneSchools(s.schools), nil, nil
	}
	entry, ok := s.log.Find(snapshotID)
	if !ok {
		return nil, nil, fmt.Errorf("log entry %s: %w", snapshotID, ErrNotFound)
	}
	date := entry.Date
	return entry.Data, &date, nil
}
