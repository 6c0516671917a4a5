// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package article

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/auth"
	"github.com/tomtom215/inkwell/internal/database"
	"github.com/tomtom215/inkwell/internal/logging"
	"github.com/tomtom215/inkwell/internal/models"
	"github.com/tomtom215/inkwell/internal/resource"
	"github.com/tomtom215/inkwell/internal/visitor"
)

// listAttachments joins an article's attachments with their resources,
// newest first. A missing resource row means the store is inconsistent.
func (s *Service) listAttachments(ctx context.Context, articleID string) ([]Attachment, error) {
	atts, err := s.db.ListAttachmentsByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if len(atts) == 0 {
		return []Attachment{}, nil
	}

	ids := make([]string, len(atts))
	for i, att := range atts {
		ids[i] = att.ResourceID
	}
	resources, err := s.db.ListResourcesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Resource, len(resources))
	for _, res := range resources {
		byID[res.ID] = res
	}

	out := make([]Attachment, 0, len(atts))
	for _, att := range atts {
		res, ok := byID[att.ResourceID]
		if !ok {
			return nil, fmt.Errorf("attachment %s of article %s references missing resource %s",
				att.ID, articleID, att.ResourceID)
		}
		out = append(out, newAttachment(att, res))
	}

	slices.SortFunc(out, func(a, b Attachment) int {
		return cmp.Or(cmp.Compare(b.CreatedAt, a.CreatedAt), cmp.Compare(a.AttachmentID, b.AttachmentID))
	})
	return out, nil
}

// UploadAttachment stores a private resource and links it to the article.
// A newly stored file is kept only once the rows have committed.
func (s *Service) UploadAttachment(ctx context.Context, articleID string, meta resource.UploadMeta, body io.Reader) (*Attachment, error) {
	var (
		out    *Attachment
		staged *resource.Staged
	)
	defer func() {
		if staged != nil {
			staged.Discard()
		}
	}()

	err := s.db.RunInTx(ctx, func(tx *database.Tx) error {
		a, err := tx.FindArticle(ctx, articleID)
		if err != nil {
			return err
		}
		if a == nil {
			return apperr.New(apperr.NotFound, "Article not found")
		}

		att := &models.ArticleAttachment{
			ID:         uuid.NewString(),
			ArticleID:  a.ID,
			ResourceID: uuid.NewString(),
			CreatedAt:  s.now(),
		}
		if err := tx.InsertAttachment(ctx, att); err != nil {
			return err
		}

		staged, err = s.resources.UploadWith(ctx, tx, meta, body, resource.UploadOptions{
			ResourceID: att.ResourceID,
			IsPublic:   false,
		})
		if err != nil {
			return err
		}

		attachment := newAttachment(att, staged.Resource)
		out = &attachment
		return nil
	})
	if err != nil {
		return nil, err
	}
	staged.Keep()

	logging.Ctx(ctx).Info().Str("article_id", articleID).Str("attachment_id", out.AttachmentID).
		Uint64("size", out.Size).Msg("Attachment uploaded")
	return out, nil
}

// RemoveAttachment unlinks an attachment and releases its resource.
// Removing a missing attachment succeeds.
func (s *Service) RemoveAttachment(ctx context.Context, articleID, attachmentID string) error {
	return s.db.RunInTx(ctx, func(tx *database.Tx) error {
		att, err := tx.FindAttachment(ctx, attachmentID)
		if err != nil || att == nil {
			return err
		}
		if att.ArticleID != articleID {
			return apperr.New(apperr.BadRequest, "Attachment does not belong to this article")
		}
		if err := tx.DeleteAttachment(ctx, att.ID); err != nil {
			return err
		}
		return s.resources.RemoveWith(ctx, tx, att.ResourceID)
	})
}

// DownloadAttachment returns the resource behind an attachment, or nil when
// the pair does not exist. The article's password applies; its status does
// not.
func (s *Service) DownloadAttachment(ctx context.Context, admin *auth.Admin, v visitor.Identity, articleID, attachmentID string) (*models.Resource, error) {
	att, err := s.db.FindAttachment(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if att == nil || att.ArticleID != articleID {
		return nil, nil
	}

	a, err := s.db.FindArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("attachment %s references missing article %s", att.ID, articleID)
	}
	if err := s.policy.CheckUnlocked(ctx, admin, v.VisitorID, a); err != nil {
		return nil, err
	}

	res, err := s.resources.FindWith(ctx, s.db, att.ResourceID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("attachment %s references missing resource %s", att.ID, att.ResourceID)
	}
	return res, nil
}
