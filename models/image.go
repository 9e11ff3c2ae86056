package models

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/utils"
	"github.com/disintegration/imaging"
)

// Image records an uploaded object so admin widgets can attach it
// to sponsors, instructors, tournaments etc. by reference.
type Image struct {
	ID            int    `gorm:"primary_key" json:"id"`
	ImageUrl      string `json:"image_url"`
	ThumbnailUrl  string `json:"thumbnail_url"`
	ReferenceType string `gorm:"size:50;index" json:"reference_type"`
	ReferenceID   int    `gorm:"index" json:"reference_id"`
}

type UploadResponse struct {
	ImageUrl     string `json:"image_url"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

// UploadImage stores the original and a thumbnail under uploads/ and
// returns both access URLs.
func UploadImage(ctx context.Context, filename string, file io.Reader) (*UploadResponse, error) {

	if file == nil {
		return nil, errors.New("nil file provided")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil, errors.New("file has no extension")
	}

	contentType := "image/jpeg"
	if ext == ".png" {
		contentType = "image/png"
	}

	storagePath := "uploads/"
	uniqueFilename := utils.GenerateUniqueFilename() + ext
	originalObjectKey := filepath.Join(storagePath, uniqueFilename)
	thumbnailObjectKey := filepath.Join(storagePath, "thumbnails", uniqueFilename)

	if err := utils.UploadBytesToGCS(ctx, originalObjectKey, data, contentType); err != nil {
		return nil, err
	}

	thumbnailData, err := GenerateThumbnail(data)
	if err != nil {
		return nil, err
	}
	if err := utils.UploadBytesToGCS(ctx, thumbnailObjectKey, thumbnailData, "image/jpeg"); err != nil {
		return nil, err
	}

	return &UploadResponse{
		ImageUrl:     utils.BuildObjectAccessURL(originalObjectKey),
		ThumbnailUrl: utils.BuildObjectAccessURL(thumbnailObjectKey),
	}, nil
}

// RemoveImage deletes the object and its thumbnail, refusing when the
// url is still referenced from the database.
func RemoveImage(ctx context.Context, fullUrl string) (*UploadResponse, error) {

	var count int64
	db := config.GetDB()
	if err := db.Model(&Image{}).WithContext(ctx).Where("image_url = ?", fullUrl).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("cannot delete image associated with database")
	}

	objectKey := utils.ExtractObjectKeyFromURL(fullUrl)
	if objectKey == "" {
		return nil, errors.New("invalid url")
	}
	if ok, err := utils.ObjectExistsInGCS(ctx, objectKey); !ok || err != nil {
		return nil, errors.New("object does not exist")
	}

	if err := utils.DeleteImageFromGCS(ctx, objectKey); err != nil {
		return nil, err
	}

	dir, filename := filepath.Split(objectKey)
	thumbnailObjectKey := filepath.Join(dir, "thumbnails", filename)
	if err := utils.DeleteImageFromGCS(ctx, thumbnailObjectKey); err != nil {
		return nil, err
	}

	return &UploadResponse{
		ImageUrl:     utils.BuildObjectAccessURL(objectKey),
		ThumbnailUrl: utils.BuildObjectAccessURL(thumbnailObjectKey),
	}, nil
}

// GenerateThumbnail resizes to a 300px-wide JPEG.
func GenerateThumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
