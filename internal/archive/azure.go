// Package archive persists critique artifacts (the optimized image and the
// parsed critique) to Azure Blob Storage when configured. Uploads are
// best-effort: a failure is logged by the caller and never fails the request.
package archive

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/google/uuid"
)

// Store saves critique artifacts
type Store interface {
	SaveCritique(ctx context.Context, image, critique []byte) (string, error)
}

type azureArchive struct {
	client    *azblob.Client
	container string
}

func NewAzureArchive(accountName, accountKey, container string) (Store, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureArchive{client: client, container: container}, nil
}

// SaveCritique uploads the optimized image and the critique JSON under a
// fresh shared prefix and returns that prefix
func (a *azureArchive) SaveCritique(ctx context.Context, image, critique []byte) (string, error) {
	prefix := fmt.Sprintf("critiques/%s", uuid.NewString())
	if _, err := a.client.UploadBuffer(ctx, a.container, prefix+"/image.jpg", image, nil); err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	if _, err := a.client.UploadBuffer(ctx, a.container, prefix+"/critique.json", critique, nil); err != nil {
		return "", fmt.Errorf("critique upload failed: %w", err)
	}
	return prefix, nil
}
