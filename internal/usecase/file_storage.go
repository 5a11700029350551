package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/monjez/monjez/internal/config"
)

// GetTempUploadURL returns a presigned upload URL plus the object name
// the client must reference when creating the daily update. The name is
// prefixed with the caller and a timestamp so concurrent uploads of the
// same file name do not collide.
func (u Usecase) GetTempUploadURL(ctx context.Context, name string) (string, string, error) {
	userID, ok := ctx.Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	if !ok {
		return "", "", fmt.Errorf("user id not found in context")
	}
	path := fmt.Sprintf("%s-%d/%s", userID.String()[:8], time.Now().Unix(), name)
	return u.fileStorageProvider.GetTempUploadURL(ctx, path)
}

func (u Usecase) GetAttachmentURL(ctx context.Context, updateID uuid.UUID, fileName string) (string, error) {
	return u.fileStorageProvider.GetPresignedURL(ctx, fmt.Sprintf("updates/%s/%s", updateID, fileName))
}
