// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package resource stores uploaded files by content.
//
// An upload streams into a private temp file while its SHA-256 is computed.
// Once the declared size and hash check out, the bytes are either matched to
// an existing file with the same fingerprint or moved to a sharded path under
// the upload directory. Several resource rows may share one file; the file is
// unlinked when the last row referencing it goes away.
package resource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/config"
	"github.com/tomtom215/inkwell/internal/logging"
	"github.com/tomtom215/inkwell/internal/metrics"
	"github.com/tomtom215/inkwell/internal/models"
	"github.com/tomtom215/inkwell/internal/validation"
)

const (
	tempFilePrefix = "inkwell-"
	copyBufferSize = 32 * 1024
)

// Queries is the resource slice of database.Queries. Both *database.DB and
// *database.Tx satisfy it.
type Queries interface {
	InsertResource(ctx context.Context, r *models.Resource) error
	DeleteResource(ctx context.Context, id string) error
	FindResource(ctx context.Context, id string) (*models.Resource, error)
	FindDuplicateResource(ctx context.Context, sha256 string, size uint64) (*models.Resource, error)
	CountResourcesByPath(ctx context.Context, path string) (int64, error)
	UpdateResourcePath(ctx context.Context, id, path string) error
}

// UploadMeta is what the client declares about an upload up front.
type UploadMeta struct {
	Name     string `json:"name" validate:"required,notblank,max=255,filename"`
	Size     uint64 `json:"size" validate:"gt=0"`
	MimeType string `json:"mime_type" validate:"required,mediatype"`
	SHA256   string `json:"sha256" validate:"required,len=64,hexadecimal"`
}

// UploadOptions control the stored row.
type UploadOptions struct {
	ResourceID string
	IsPublic   bool
}

// Staged is an upload whose row has been written through the caller's
// queries. A newly stored file stays owned by the caller until Keep, so a
// transaction that fails to commit can Discard it. Discard after Keep does
// nothing.
type Staged struct {
	Resource *models.Resource
	file     *FileGuard
}

// Keep hands the stored file over to the resource row.
func (u *Staged) Keep() {
	if u.file != nil {
		u.file.Keep()
	}
}

// Discard removes the stored file unless it was kept. Deduplicated uploads
// own no file and leave the shared one alone.
func (u *Staged) Discard() {
	if u.file != nil {
		u.file.Cleanup()
	}
}

// Service runs the upload pipeline.
type Service struct {
	db        Queries
	uploadDir string
	maxSize   int64
	tempDir   string
	clock     clock.Clock
}

// NewService returns a resource service writing under cfg.UploadDir.
func NewService(db Queries, cfg *config.ResourceConfig, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:        db,
		uploadDir: cfg.UploadDir,
		maxSize:   cfg.UploadFileMaxSize,
		tempDir:   os.TempDir(),
		clock:     clk,
	}
}

// MaxSize returns the upload size limit in bytes.
func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// Upload stores a public resource under a fresh id.
func (s *Service) Upload(ctx context.Context, meta UploadMeta, body io.Reader) (*models.Resource, error) {
	staged, err := s.UploadWith(ctx, s.db, meta, body, UploadOptions{ResourceID: uuid.NewString(), IsPublic: true})
	if err != nil {
		return nil, err
	}
	staged.Keep()
	return staged.Resource, nil
}

// UploadWith runs the pipeline with q, so callers can make the metadata
// insert part of their own transaction. The caller keeps the result once
// that transaction commits and discards it otherwise.
func (s *Service) UploadWith(ctx context.Context, q Queries, meta UploadMeta, body io.Reader, opts UploadOptions) (*Staged, error) {
	if meta.Size > uint64(s.maxSize) {
		metrics.RecordUpload("rejected", meta.Size)
		return nil, apperr.TooLarge(s.maxSize)
	}
	if err := validation.Validate(&meta); err != nil {
		metrics.RecordUpload("rejected", meta.Size)
		return nil, err
	}
	meta.SHA256 = strings.ToLower(meta.SHA256)

	staged, outcome, err := s.upload(ctx, q, meta, body, opts)
	if err != nil {
		if apperr.IsKind(err, apperr.BadRequest) {
			metrics.RecordUpload("rejected", meta.Size)
		} else {
			metrics.RecordUpload("failed", meta.Size)
		}
		return nil, err
	}
	metrics.RecordUpload(outcome, meta.Size)
	return staged, nil
}

func (s *Service) upload(ctx context.Context, q Queries, meta UploadMeta, body io.Reader, opts UploadOptions) (*Staged, string, error) {
	temp, err := s.receive(ctx, meta, body)
	if err != nil {
		return nil, "", err
	}
	defer temp.Cleanup()

	outcome := "stored"
	path, err := s.findReusablePath(ctx, q, meta)
	if err != nil {
		return nil, "", err
	}

	var placed *FileGuard
	if path != "" {
		outcome = "deduplicated"
		logging.Ctx(ctx).Debug().Str("path", path).Str("sha256", meta.SHA256).Msg("Reusing stored file")
	} else {
		placed, err = s.commit(temp)
		if err != nil {
			return nil, "", err
		}
		path = placed.Path()
	}

	res := &models.Resource{
		ID:        opts.ResourceID,
		Name:      meta.Name,
		Extension: extension(meta.Name),
		Path:      path,
		Size:      meta.Size,
		MimeType:  meta.MimeType,
		IsPublic:  opts.IsPublic,
		SHA256:    meta.SHA256,
		CreatedAt: s.clock.Now().UTC().Truncate(time.Second),
	}
	if err := q.InsertResource(ctx, res); err != nil {
		if placed != nil {
			placed.Cleanup()
		}
		return nil, "", err
	}

	// A concurrent remove may have unlinked the reused file after the lookup.
	if placed == nil && !isFile(path) {
		placed, err = s.commit(temp)
		if err != nil {
			if delErr := q.DeleteResource(ctx, res.ID); delErr != nil {
				logging.Ctx(ctx).Warn().Err(delErr).Str("resource_id", res.ID).Msg("Failed to drop resource row without a file")
			}
			return nil, "", err
		}
		if err := q.UpdateResourcePath(ctx, res.ID, placed.Path()); err != nil {
			placed.Cleanup()
			return nil, "", err
		}
		res.Path = placed.Path()
		outcome = "stored"
		logging.Ctx(ctx).Warn().Str("resource_id", res.ID).Str("sha256", meta.SHA256).
			Msg("Reused file vanished during upload, stored a new copy")
	}

	return &Staged{Resource: res, file: placed}, outcome, nil
}

// receive streams body into a new temp file and verifies size and hash. The
// returned guard still owns the file.
func (s *Service) receive(ctx context.Context, meta UploadMeta, body io.Reader) (*FileGuard, error) {
	path := filepath.Join(s.tempDir, tempFilePrefix+uuid.NewString())
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	guard := NewFileGuard(path)

	ok := false
	defer func() {
		if !ok {
			guard.Cleanup()
		}
	}()
	defer closeFile(f)

	remaining := meta.Size
	hasher := sha256.New()
	buf := make([]byte, copyBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if uint64(n) > remaining {
				return nil, apperr.New(apperr.BadRequest, "Uploaded data is larger than the declared file size")
			}
			remaining -= uint64(n)
			if _, err := f.Write(buf[:n]); err != nil {
				return nil, fmt.Errorf("failed to write temp file: %w", err)
			}
			hasher.Write(buf[:n])
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read upload: %w", readErr)
		}
	}

	if remaining != 0 {
		return nil, apperr.New(apperr.BadRequest, "Upload is incomplete, the connection may have been interrupted")
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync temp file: %w", err)
	}
	if actual := hex.EncodeToString(hasher.Sum(nil)); actual != meta.SHA256 {
		return nil, apperr.New(apperr.BadRequest, "SHA-256 checksum mismatch")
	}

	ok = true
	return guard, nil
}

// findReusablePath returns the path of an existing file with the same
// content, or "" when there is none on disk.
func (s *Service) findReusablePath(ctx context.Context, q Queries, meta UploadMeta) (string, error) {
	dup, err := q.FindDuplicateResource(ctx, meta.SHA256, meta.Size)
	if err != nil {
		return "", err
	}
	if dup == nil || !isFile(dup.Path) {
		return "", nil
	}
	return dup.Path, nil
}

// commit moves the temp file to a new sharded path. The returned guard owns
// the final file until the caller keeps it.
func (s *Service) commit(temp *FileGuard) (*FileGuard, error) {
	path := storagePath(s.uploadDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Reserve the name; O_EXCL guarantees an existing file is never replaced.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve storage path: %w", err)
	}
	closeFile(f)
	placed := NewFileGuard(path)

	if err := os.Rename(temp.Path(), path); err != nil {
		// Cross-device: copy and let the temp guard remove the source.
		if err := copyFile(temp.Path(), path); err != nil {
			placed.Cleanup()
			return nil, fmt.Errorf("failed to move upload into place: %w", err)
		}
	} else {
		temp.Keep()
	}
	return placed, nil
}

// storagePath fans files out over two directory levels taken from a random
// hex id: upload_dir/ab/cd/abcd....
func storagePath(uploadDir string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return filepath.Join(uploadDir, id[0:2], id[2:4], id)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer closeFile(in)

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		closeFile(out)
		return err
	}
	if err := out.Sync(); err != nil {
		closeFile(out)
		return err
	}
	return out.Close()
}

// Find returns the resource if its row exists and its file is on disk.
func (s *Service) Find(ctx context.Context, id string) (*models.Resource, error) {
	return s.FindWith(ctx, s.db, id)
}

// FindWith is Find using q.
func (s *Service) FindWith(ctx context.Context, q Queries, id string) (*models.Resource, error) {
	res, err := q.FindResource(ctx, id)
	if err != nil || res == nil {
		return nil, err
	}
	if !isFile(res.Path) {
		logging.Ctx(ctx).Warn().Str("resource_id", id).Str("path", res.Path).Msg("Resource file is missing")
		return nil, nil
	}
	return res, nil
}

// Remove deletes the resource row, and the file once nothing references it.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.RemoveWith(ctx, s.db, id)
}

// RemoveWith is Remove using q. Missing resources are not an error.
func (s *Service) RemoveWith(ctx context.Context, q Queries, id string) error {
	res, err := q.FindResource(ctx, id)
	if err != nil || res == nil {
		return err
	}
	if err := q.DeleteResource(ctx, id); err != nil {
		return err
	}

	refs, err := q.CountResourcesByPath(ctx, res.Path)
	if err != nil {
		return err
	}
	if refs > 0 {
		return nil
	}
	if err := os.Remove(res.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Ctx(ctx).Warn().Err(err).Str("path", res.Path).Msg("Failed to remove resource file")
	}
	return nil
}

// Open opens the stored file for reading.
func (s *Service) Open(res *models.Resource) (*os.File, error) {
	f, err := os.Open(res.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open resource %s: %w", res.ID, err)
	}
	return f, nil
}

// extension returns what follows the last dot of name, or "".
func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func closeFile(f *os.File) {
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		logging.Warn().Err(err).Str("path", f.Name()).Msg("Failed to close file")
	}
}
