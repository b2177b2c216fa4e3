package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// maxRecordBytes bounds a single downloaded record.
const maxRecordBytes = 4 << 20

// blobAPI is the subset of *azblob.Client used by BlobSource.
type blobAPI interface {
	NewListBlobsFlatPager(containerName string, o *azblob.ListBlobsFlatOptions) *runtime.Pager[azblob.ListBlobsFlatResponse]
	DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// BlobSource reads records stored as blobs under a prefix of an Azure
// Storage container.
type BlobSource struct {
	client    blobAPI
	container string
	prefix    string
}

// NewBlobSource connects to accountURL using the default Azure credential chain.
func NewBlobSource(accountURL, containerName, prefix string) (*BlobSource, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating azure credential: %w", err)
	}
	return NewBlobSourceWithCredential(accountURL, containerName, prefix, cred)
}

// NewBlobSourceWithCredential connects to accountURL with an explicit credential.
func NewBlobSourceWithCredential(accountURL, containerName, prefix string, cred azcore.TokenCredential) (*BlobSource, error) {
	if accountURL == "" || containerName == "" {
		return nil, fmt.Errorf("blob catalog requires an account URL and a container")
	}
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &BlobSource{client: client, container: containerName, prefix: prefix}, nil
}

// List implements Source. Only blobs directly under the prefix are returned.
func (s *BlobSource) List(ctx context.Context) ([]string, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if s.prefix != "" {
		opts.Prefix = &s.prefix
	}

	var names []string
	pager := s.client.NewListBlobsFlatPager(s.container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing container %s: %w", s.container, err)
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			name := *item.Name
			if strings.Contains(strings.TrimPrefix(name, s.prefix), "/") {
				continue
			}
			if _, ok := KeyFromName(name); ok {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// Read implements Source.
func (s *BlobSource) Read(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", name, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRecordBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) > maxRecordBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, maxRecordBytes)
	}
	return data, nil
}
