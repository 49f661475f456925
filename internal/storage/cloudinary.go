// Package storage adapts the Cloudinary object store to the upload
// interface used by evidence certification.
package storage

import (
    "bytes"
    "context"
    "fmt"
    "path"
    "strings"

    "github.com/cloudinary/cloudinary-go/v2"
    "github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads evidence files to Cloudinary and returns the
// secure delivery URL.  Evidence objects are write-once: no overwrite,
// no transformation, names are chosen by the caller.
type CloudinaryStore struct {
    cld *cloudinary.Cloudinary
}

// NewCloudinaryStore builds a store from credentials.  All three values
// are required.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
    if cloudName == "" || apiKey == "" || apiSecret == "" {
        return nil, fmt.Errorf("storage: cloudinary credentials are missing")
    }
    cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
    if err != nil {
        return nil, fmt.Errorf("storage: initialize cloudinary: %w", err)
    }
    return &CloudinaryStore{cld: cld}, nil
}

// Upload stores data under folder/name and returns the secure URL.
// Video uploads use the video resource type; everything else is treated
// as an image.
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, folder, name string) (string, error) {
    overwrite := false
    res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
        PublicID:     strings.TrimSuffix(name, path.Ext(name)),
        Folder:       folder,
        Overwrite:    &overwrite,
        ResourceType: resourceType(name),
    })
    if err != nil {
        return "", fmt.Errorf("storage: upload %s/%s: %w", folder, name, err)
    }
    return res.SecureURL, nil
}

func resourceType(name string) string {
    switch strings.ToLower(path.Ext(name)) {
    case ".mp4", ".mov", ".webm", ".mkv", ".avi":
        return "video"
    }
    return "image"
}
