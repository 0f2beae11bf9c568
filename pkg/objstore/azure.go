package objstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
)

// Azure reads blobs from one Azure storage account. Object paths are
// container-qualified: "container/path/to/blob".
type Azure struct {
	client *azblob.Client
}

// newAzureFromEnv builds an Azure byte source for an az://container/ style
// URL. The storage account name has no place in the URL, so it must come
// from AZURE_STORAGE_ACCOUNT_NAME or AZURE_STORAGE_ACCOUNT.
func newAzureFromEnv(rawURL string) (*Azure, error) {
	account := os.Getenv("AZURE_STORAGE_ACCOUNT_NAME")
	if account == "" {
		account = os.Getenv("AZURE_STORAGE_ACCOUNT")
	}
	if account == "" {
		return nil, geoerrors.Parse("Azure URL requires AZURE_STORAGE_ACCOUNT_NAME or AZURE_STORAGE_ACCOUNT to be set", rawURL)
	}
	return newAzureFromServiceURL(fmt.Sprintf("https://%s.blob.core.windows.net", account))
}

// newAzureFromServiceURL builds an Azure byte source rooted at a blob
// service endpoint. A connection string or shared key from the environment
// is used when present; otherwise the client is anonymous so public
// containers remain readable.
func newAzureFromServiceURL(serviceURL string) (*Azure, error) {
	if conn := os.Getenv("AZURE_STORAGE_CONNECTION_STRING"); conn != "" {
		client, err := azblob.NewClientFromConnectionString(conn, nil)
		if err != nil {
			return nil, geoerrors.Io(err, serviceURL)
		}
		return &Azure{client: client}, nil
	}

	account := os.Getenv("AZURE_STORAGE_ACCOUNT_NAME")
	if account == "" {
		account = os.Getenv("AZURE_STORAGE_ACCOUNT")
	}
	key := os.Getenv("AZURE_STORAGE_ACCOUNT_KEY")
	if key == "" {
		key = os.Getenv("AZURE_STORAGE_ACCESS_KEY")
	}
	if account != "" && key != "" {
		cred, err := azblob.NewSharedKeyCredential(account, key)
		if err != nil {
			return nil, geoerrors.Io(err, serviceURL)
		}
		client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, geoerrors.Io(err, serviceURL)
		}
		return &Azure{client: client}, nil
	}

	client, err := azblob.NewClientWithNoCredential(serviceURL, nil)
	if err != nil {
		return nil, geoerrors.Io(err, serviceURL)
	}
	return &Azure{client: client}, nil
}

func (a *Azure) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	container, blob, err := splitContainerPath(path)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, geoerrors.Io(err, path)
	}
	return resp.Body, nil
}

func (a *Azure) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	container, blobPrefix, err := splitContainerPath(prefix)
	if err != nil {
		return nil, err
	}

	var results []ObjectInfo
	pager := a.client.NewListBlobsFlatPager(container, &azblob.ListBlobsFlatOptions{
		Prefix: &blobPrefix,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, geoerrors.Io(err, prefix)
		}
		for _, item := range page.Segment.BlobItems {
			info := ObjectInfo{Path: container + "/" + *item.Name, Size: -1}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					info.Size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					info.ModTime = *item.Properties.LastModified
				}
			}
			results = append(results, info)
		}
	}
	return results, nil
}

func splitContainerPath(path string) (container, blob string, err error) {
	container, blob, found := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if !found || container == "" {
		return "", "", geoerrors.Parse("Azure object path must be container-qualified", path)
	}
	return container, blob, nil
}
