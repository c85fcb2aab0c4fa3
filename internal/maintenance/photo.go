package maintenance

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"maintenance-records-backend/internal/logging"
	"maintenance-records-backend/internal/model"
	"maintenance-records-backend/internal/parse"
)

// PhotoUpload is an image to attach to a record.
type PhotoUpload struct {
	Type        model.PhotoType
	Filename    string
	ContentType string
	Data        []byte
}

func (u PhotoUpload) validate() error {
	if !u.Type.IsValid() {
		return invalid("unknown photo type", goerr.V("type", u.Type))
	}
	if len(u.Data) == 0 {
		return goerr.Wrap(ErrInvalidAttachment, "empty upload")
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(u.ContentType)), "image/") {
		return goerr.Wrap(ErrInvalidAttachment, "not an image", goerr.V("content_type", u.ContentType))
	}
	return nil
}

// objectPath builds <prefix>/<recordID>/<before|after>/<unixMillis>-<safeName>.
func (s *Service) objectPath(recordID int64, u PhotoUpload) string {
	return fmt.Sprintf("%s/%d/%s/%d-%s",
		s.objectPrefix, recordID, u.Type.Folder(), s.now().UnixMilli(), parse.Filename(u.Filename))
}

// AddPhoto uploads the image and then records its metadata. Photos may be added in any status.
// If the metadata write fails the uploaded object is left in place and its URL is logged.
func (s *Service) AddPhoto(ctx context.Context, machineID, recordID int64, upload PhotoUpload, createdBy int64) (*model.MaintenancePhoto, error) {
	if err := upload.validate(); err != nil {
		return nil, err
	}
	if _, err := s.getRecord(ctx, machineID, recordID); err != nil {
		return nil, err
	}

	path := s.objectPath(recordID, upload)
	url, err := s.attachments.Put(ctx, path, upload.Data, upload.ContentType)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upload photo", goerr.V("record_id", recordID), goerr.V("object", path))
	}

	photo := &model.MaintenancePhoto{
		MaintenanceRecordID: recordID,
		Type:                upload.Type,
		FileURL:             url,
		CreatedBy:           createdBy,
	}
	if err := s.store.CreatePhoto(ctx, photo); err != nil {
		logging.From(ctx).Error("photo uploaded but metadata write failed, object is orphaned",
			append([]any{"record_id", recordID, "url", url}, logging.ErrAttrs(err)...)...)
		return nil, err
	}
	return photo, nil
}

// ListPhotos returns the record's photos, newest first.
func (s *Service) ListPhotos(ctx context.Context, machineID, recordID int64) ([]model.MaintenancePhoto, error) {
	if _, err := s.getRecord(ctx, machineID, recordID); err != nil {
		return nil, err
	}
	return s.store.ListPhotos(ctx, recordID)
}

// RemovePhoto deletes a photo of a PENDING record. The stored object is removed on a best-effort basis;
// the metadata row is deleted even if that fails.
func (s *Service) RemovePhoto(ctx context.Context, machineID, recordID, photoID int64) (*model.MaintenancePhoto, error) {
	record, err := s.getRecord(ctx, machineID, recordID)
	if err != nil {
		return nil, err
	}
	if record.IsDone() {
		return nil, goerr.Wrap(ErrAlreadyFinished, "cannot remove photo", goerr.V("record_id", recordID))
	}

	photo, err := s.store.GetPhoto(ctx, recordID, photoID)
	if err != nil {
		return nil, translate(err, ErrPhotoNotFound, goerr.V("record_id", recordID), goerr.V("photo_id", photoID))
	}

	bestEffort(ctx, "failed to delete photo object",
		func() error { return s.attachments.Delete(ctx, photo.FileURL) },
		"record_id", recordID, "photo_id", photoID, "url", photo.FileURL)

	if err := s.store.DeletePhoto(ctx, recordID, photoID); err != nil {
		return nil, translate(err, ErrPhotoNotFound, goerr.V("record_id", recordID), goerr.V("photo_id", photoID))
	}
	return photo, nil
}
