package azure

import (
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/aldress/medallion/pipeline/blobstore"
	"github.com/aldress/medallion/pkg/errors"
)

// Type is the storage engine identifier for this engine.
const Type = "AZURE"

// Package-specific error codes for Azure blob storage.
var (
	ErrListFailed     = errors.MustNewCode("azure.list_failed")
	ErrDownloadFailed = errors.MustNewCode("azure.download_failed")
	ErrUploadFailed   = errors.MustNewCode("azure.upload_failed")
)

// Store implements the blob store over Azure Blob Storage, the backend the
// medallion deployment runs against in production.
type Store struct {
	client *azblob.Client
}

// NewStoreFromConnectionString creates an Azure blob store from a storage
// account connection string. A failure here is the one fatal startup
// condition for a pipeline run.
func NewStoreFromConnectionString(connectionString string) (*Store, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, errors.New(blobstore.ErrConnectionFailed, "failed to create azure blob client", err)
	}
	return &Store{client: client}, nil
}

// NewStore wraps an existing azblob client.
func NewStore(client *azblob.Client) *Store {
	return &Store{client: client}
}

// Type returns the storage engine identifier.
func (s *Store) Type() string { return Type }

// EnsureContainer creates the container, tolerating one that already exists.
func (s *Store) EnsureContainer(ctx context.Context, container string) error {
	_, err := s.client.CreateContainer(ctx, container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return errors.New(blobstore.ErrConnectionFailed, "failed to create container", err).AddContext("container", container)
	}
	return nil
}

// List pages through the container's flat blob listing for the prefix.
func (s *Store) List(ctx context.Context, container, prefix string) ([]blobstore.BlobInfo, error) {
	pager := s.client.NewListBlobsFlatPager(container, &azblob.ListBlobsFlatOptions{
		Prefix:  &prefix,
		Include: azblob.ListBlobsInclude{Metadata: true},
	})

	var infos []blobstore.BlobInfo
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if bloberror.HasCode(err, bloberror.ContainerNotFound) {
				return nil, errors.Newf(blobstore.ErrContainerNotFound, "container %q does not exist", container)
			}
			return nil, errors.New(ErrListFailed, "failed to list blobs", err).AddContext("container", container)
		}
		for _, item := range page.Segment.BlobItems {
			info := blobstore.BlobInfo{Name: *item.Name}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					info.Size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					info.LastModified = *item.Properties.LastModified
				}
			}
			if len(item.Metadata) > 0 {
				info.Metadata = make(map[string]string, len(item.Metadata))
				for k, v := range item.Metadata {
					if v != nil {
						info.Metadata[k] = *v
					}
				}
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// Get downloads a blob's full content.
func (s *Store) Get(ctx context.Context, container, name string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, errors.Newf(blobstore.ErrBlobNotFound, "blob %q not found", name).AddContext("container", container)
		}
		return nil, errors.New(ErrDownloadFailed, "failed to download blob", err).AddContext("blob", name)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(ErrDownloadFailed, "failed to read blob stream", err).AddContext("blob", name)
	}
	return data, nil
}

// Put uploads a blob with user metadata. When overwrite is false the upload
// is conditioned on the blob not existing.
func (s *Store) Put(ctx context.Context, container, name string, data []byte, metadata map[string]string, overwrite bool) error {
	opts := &azblob.UploadBufferOptions{}
	if len(metadata) > 0 {
		opts.Metadata = make(map[string]*string, len(metadata))
		for k, v := range metadata {
			opts.Metadata[k] = to.Ptr(v)
		}
	}
	if !overwrite {
		opts.AccessConditions = &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{
				IfNoneMatch: to.Ptr(azcore.ETagAny),
			},
		}
	}

	_, err := s.client.UploadBuffer(ctx, container, name, data, opts)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
			return errors.Newf(blobstore.ErrBlobExists, "blob %q already exists", name).AddContext("container", container)
		}
		return errors.New(ErrUploadFailed, "failed to upload blob", err).AddContext("blob", name)
	}
	return nil
}
